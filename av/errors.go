package av

import "errors"

// Sentinel errors for av package operations.
// These errors enable reliable error classification using errors.Is().

// Startup errors.
var (
	// ErrBindFailed indicates a receive socket could not be bound. Only the
	// affected receive loop ends; the rest of the session keeps running.
	ErrBindFailed = errors.New("receive socket bind failed")

	// ErrSenderUnavailable indicates a send socket could not be created.
	ErrSenderUnavailable = errors.New("send socket unavailable")

	// ErrMissingDevice indicates a required collaborator was not supplied.
	ErrMissingDevice = errors.New("required device not provided")

	// ErrAlreadyRunning is returned when Run is called on a session twice.
	ErrAlreadyRunning = errors.New("session is already running")
)

// Runtime errors.
var (
	// ErrDecodeFailed indicates a valid packet whose payload could not be decoded.
	ErrDecodeFailed = errors.New("payload decode failed")

	// ErrCaptureFailed indicates the camera returned an empty frame.
	ErrCaptureFailed = errors.New("could not capture frame")

	// ErrEncodeFailed indicates a local frame could not be encoded for sending.
	ErrEncodeFailed = errors.New("frame encode failed")
)
