package domain

import "errors"

// ErrSessionNotFound is returned when a session ID cannot be found in the store.
var ErrSessionNotFound = errors.New("session not found")

// ErrNotAwaitingInput is returned when resume is called on a session that is not paused.
var ErrNotAwaitingInput = errors.New("session not awaiting input")

// ErrSessionComplete is returned when a mutation is attempted on a terminal session.
var ErrSessionComplete = errors.New("session already complete")

// ErrMalformedTransition is returned when a conditional edge cannot map the
// current session state to a declared next stage.
var ErrMalformedTransition = errors.New("malformed transition")

// ErrInvalidInput is returned when supplied human input does not match the
// input kind the session is paused on.
var ErrInvalidInput = errors.New("invalid input for pending interrupt")

// ErrUnsupportedType is returned when no text extractor is registered for a content type.
var ErrUnsupportedType = errors.New("unsupported content type")

// ErrExtractionFailed is returned when readable text cannot be obtained from a document.
var ErrExtractionFailed = errors.New("text extraction failed")

// ErrProviderUnavailable is returned when the analysis provider cannot be reached.
var ErrProviderUnavailable = errors.New("analysis provider unavailable")

// ErrMalformedResponse is returned when a provider response does not match the expected shape.
var ErrMalformedResponse = errors.New("malformed provider response")

// ErrTimeout is returned when an analysis call exceeds the caller-supplied deadline.
var ErrTimeout = errors.New("analysis timed out")
