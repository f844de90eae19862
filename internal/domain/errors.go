package domain

import "errors"

var (
	ErrNotFound          = errors.New("not found")
	ErrInvalidTransition = errors.New("invalid transition")
	ErrAlreadyCompleted  = errors.New("request already completed")
	ErrFieldNotAllowed   = errors.New("field not allowed")
	ErrDraftIncomplete   = errors.New("draft incomplete")
)
