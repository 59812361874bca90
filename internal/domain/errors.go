package domain

import "errors"

// Sentinel errors shared by the views.
var (
	ErrInvalidStage = errors.New("invalid pipeline stage")
	ErrEmptyPatch   = errors.New("patch has no fields")
	// ErrLeadNotFound means the lead is not in the view's local snapshot.
	ErrLeadNotFound = errors.New("lead not in snapshot")
)
