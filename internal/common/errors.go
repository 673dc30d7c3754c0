package common

import "errors"

// Business logic errors
var (
	// General errors
	ErrNotFound  = errors.New("resource not found")
	ErrForbidden = errors.New("forbidden")

	// Post errors
	ErrPostNotFound = errors.New("post not found")
	ErrSlugTaken    = errors.New("slug already in use")

	// Draft errors
	ErrDraftNotFound = errors.New("no pending draft for this tier")
	ErrInvalidTier   = errors.New("unknown draft tier")

	// Module errors
	ErrModuleNotFound    = errors.New("module instance not found")
	ErrPlacementNotFound = errors.New("module placement not found")
	ErrPlacementLocked   = errors.New("module placement is locked")

	// Auth errors
	ErrUnauthorized = errors.New("unauthorized")
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("expired token")

	// Validation errors
	ErrInvalidInput = errors.New("invalid input")
)
