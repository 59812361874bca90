package domain

// Patch is a partial update. Only non-nil fields are written.
type Patch struct {
	Name   *string
	Paused *bool
	Stage  *Stage
	FromAd *bool
}

// NamePatch updates the display name.
func NamePatch(name string) Patch { return Patch{Name: &name} }

// PausedPatch updates the inverted automation flag.
func PausedPatch(paused bool) Patch { return Patch{Paused: &paused} }

// StagePatch moves the lead to another stage.
func StagePatch(s Stage) Patch { return Patch{Stage: &s} }

// FromAdPatch updates the advertisement flag.
func FromAdPatch(fromAd bool) Patch { return Patch{FromAd: &fromAd} }

// Empty reports whether the patch carries no fields.
func (p Patch) Empty() bool {
	return p.Name == nil && p.Paused == nil && p.Stage == nil && p.FromAd == nil
}

// Validate rejects empty patches and unknown stages.
func (p Patch) Validate() error {
	if p.Empty() {
		return ErrEmptyPatch
	}
	if p.Stage != nil && !p.Stage.Known() {
		return ErrInvalidStage
	}
	return nil
}

// Fields returns the patch keyed by stored column name.
func (p Patch) Fields() map[string]any {
	f := make(map[string]any, 4)
	if p.Name != nil {
		f[FieldName] = *p.Name
	}
	if p.Paused != nil {
		f[FieldPaused] = *p.Paused
	}
	if p.Stage != nil {
		f[FieldStage] = p.Stage.String()
	}
	if p.FromAd != nil {
		f[FieldFromAd] = *p.FromAd
	}
	return f
}

// Apply writes the patch onto l.
func (p Patch) Apply(l *Lead) {
	if p.Name != nil {
		l.Name = *p.Name
	}
	if p.Paused != nil {
		l.Paused = *p.Paused
	}
	if p.Stage != nil {
		l.SetStage(*p.Stage)
	}
	if p.FromAd != nil {
		l.FromAd = *p.FromAd
	}
}
