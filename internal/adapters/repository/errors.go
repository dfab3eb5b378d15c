package repository

import "errors"

// Sentinel kinds for store errors.
var (
	ErrNotFound         = errors.New("record not found")
	ErrAlreadyExists    = errors.New("record already exists")
	ErrInvalidScore     = errors.New("dimension score out of range")
	ErrDuplicateSession = errors.New("interview already owns a chat session")
	ErrAlreadyAnswered  = errors.New("turn already answered")
	ErrAlreadyScored    = errors.New("turn already scored")
)
