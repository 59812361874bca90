package leadtable

// Field is an editable column of a row.
type Field string

const (
	FieldName          Field = "name"
	FieldStage         Field = "stage"
	FieldAutomation    Field = "automation"
	FieldAdvertisement Field = "advertisement"
)

// Fields lists the editable columns in display order.
func Fields() []Field {
	return []Field{FieldName, FieldStage, FieldAutomation, FieldAdvertisement}
}

// FieldState is where a field is in its edit cycle:
// synced -> editing -> saving -> synced | reload-pending.
type FieldState string

const (
	StateSynced        FieldState = "synced"
	StateEditing       FieldState = "editing"
	StateSaving        FieldState = "saving"
	StateReloadPending FieldState = "reload-pending"
)

// fieldState tags a state with the write that produced it, so a late
// completion cannot clobber the state of a newer edit.
type fieldState struct {
	state FieldState
	seq   uint64
}
