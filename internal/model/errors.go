package model

import "errors"

// Common errors used across the application
var (
	// Request errors
	ErrInvalidRequest = errors.New("invalid request")

	// Room errors
	ErrRoomNotFound     = errors.New("room not found")
	ErrTokenExhausted   = errors.New("could not allocate a unique room token")
	ErrMutationConflict = errors.New("room was modified concurrently too many times")

	// Wire errors
	ErrEncodingFailure = errors.New("payload does not match the room snapshot format")
)
