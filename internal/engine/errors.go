package engine

import "errors"

// Configuration errors. A session is never started when one of these is returned.
var (
	ErrNoQuestions           = errors.New("no questions available for this test")
	ErrInsufficientQuestions = errors.New("not enough questions for this test format")
	ErrInvalidQuestion       = errors.New("invalid question in question list")
	ErrInvalidDuration       = errors.New("test duration must be positive")
)

// Runtime errors returned by session operations.
var (
	ErrTimeUp          = errors.New("test time is over")
	ErrSessionClosed   = errors.New("test session is no longer active")
	ErrSubmitting      = errors.New("submission in progress")
	ErrIndexOutOfRange = errors.New("question index out of range")
	ErrUnknownOption   = errors.New("option does not belong to the current question")
	ErrNoCurrentUser   = errors.New("no signed-in user to attribute the result to")
	ErrSaveFailed      = errors.New("saving test result failed")
)
