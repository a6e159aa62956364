package apperrors

import "errors"

var (
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("conflict")
	ErrEmptyBrandName  = errors.New("brand name is empty or placeholder")
	ErrNoMembers       = errors.New("consolidation requires at least one member brand")
	ErrUnknownRegistry = errors.New("unknown producer registry")
)
