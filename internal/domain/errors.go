package domain

import "errors"

var (
	ErrNotFound        = errors.New("resource not found")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrForbidden       = errors.New("forbidden")
	ErrConflict        = errors.New("resource conflict")
)
