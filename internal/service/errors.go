package service

import "errors"

var (
	// ErrSessionNotFound is returned when a session ID is unknown or has expired
	ErrSessionNotFound = errors.New("session not found")

	// ErrInvalidRequest is returned when request data is invalid or incomplete
	ErrInvalidRequest = errors.New("invalid request")

	// ErrInvalidStep is returned when an action does not belong to the session's current wizard step
	ErrInvalidStep = errors.New("action not allowed at current step")

	// ErrNotAnImage is returned when an uploaded screenshot is not an image
	ErrNotAnImage = errors.New("screenshot is not an image")

	// ErrUploadTooLarge is returned when an uploaded screenshot exceeds the size limit
	ErrUploadTooLarge = errors.New("screenshot too large")

	// ErrSpinInProgress is returned when the wheel is anticipating or spinning
	ErrSpinInProgress = errors.New("spin in progress")

	// ErrAlreadySettled is returned when spinning a wheel whose prize is already revealed
	ErrAlreadySettled = errors.New("prize already revealed")
)
