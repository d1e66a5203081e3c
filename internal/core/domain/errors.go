package domain

import "errors"

var (
	ErrNotFound       = errors.New("not found")
	ErrEmptyPatch     = errors.New("no fields to update")
	ErrPageOutOfRange = errors.New("page number out of range")
	ErrInvalidQuery   = errors.New("invalid query")
	ErrInvalidItem    = errors.New("invalid item")
	ErrDisabled       = errors.New("component is disabled")
)
