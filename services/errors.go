package services

import "errors"

// Sentinel errors for the core engine. Callers branch with errors.Is, the
// same way handlers branch on gorm.ErrRecordNotFound.
var (
	ErrValidation          = errors.New("validation failed")
	ErrNotFound            = errors.New("resource not found")
	ErrConflict            = errors.New("conflict")
	ErrSlotUnavailable     = errors.New("slot unavailable")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrUnauthorized        = errors.New("unauthorized")
)
