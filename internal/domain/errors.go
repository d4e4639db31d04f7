package domain

import "errors"

var (
	// ErrMeshFormat reports a malformed or truncated fort.14 file.
	ErrMeshFormat = errors.New("mesh format error")

	// ErrAttributeFormat reports a malformed or truncated fort.13 file.
	ErrAttributeFormat = errors.New("attribute format error")

	// ErrInvalidChoice reports an unknown criterion or modifier selection.
	ErrInvalidChoice = errors.New("invalid choice")
)
