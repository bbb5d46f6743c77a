package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Authentication ────────────────────────────────────────────────
	ErrTokenRequired ErrCode = "TOKEN_REQUIRED"
	ErrTokenInvalid  ErrCode = "TOKEN_INVALID"

	// ─── Authorization ─────────────────────────────────────────────────
	ErrForbidden ErrCode = "FORBIDDEN"

	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation     ErrCode = "VALIDATION_ERROR"
	ErrInvalidID      ErrCode = "INVALID_ID"
	ErrInvalidPayload ErrCode = "INVALID_PAYLOAD"
	ErrUnknownFormat  ErrCode = "UNKNOWN_FORMAT"

	// ─── Resources ─────────────────────────────────────────────────────
	ErrNotFound        ErrCode = "NOT_FOUND"
	ErrSessionNotFound ErrCode = "SESSION_NOT_FOUND"
	ErrSessionActive   ErrCode = "SESSION_ALREADY_ACTIVE"

	// ─── Test session ──────────────────────────────────────────────────
	ErrNoQuestions           ErrCode = "NO_QUESTIONS"
	ErrInsufficientQuestions ErrCode = "INSUFFICIENT_QUESTIONS"
	ErrInvalidQuestion       ErrCode = "INVALID_QUESTION"
	ErrInvalidDuration       ErrCode = "INVALID_DURATION"
	ErrTimeUp                ErrCode = "TIME_UP"
	ErrSessionClosed         ErrCode = "SESSION_CLOSED"
	ErrSubmitting            ErrCode = "SUBMISSION_IN_PROGRESS"
	ErrIndexOutOfRange       ErrCode = "INDEX_OUT_OF_RANGE"
	ErrUnknownOption         ErrCode = "UNKNOWN_OPTION"
	ErrNoCurrentUser         ErrCode = "NO_CURRENT_USER"
	ErrSaveFailed            ErrCode = "SAVE_FAILED"

	// ─── Rate limiting ─────────────────────────────────────────────────
	ErrRateLimitExceeded ErrCode = "RATE_LIMIT_EXCEEDED"

	// ─── Server ────────────────────────────────────────────────────────
	ErrInternal ErrCode = "INTERNAL_ERROR"
)

// GetMessage returns a human-readable message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	case ErrTokenRequired:
		return "Authentication token is required."
	case ErrTokenInvalid:
		return "Authentication token is invalid or expired."

	case ErrForbidden:
		return "You do not have access to this resource."

	case ErrValidation:
		return "Validation failed. Please check your input."
	case ErrInvalidID:
		return "Invalid ID format."
	case ErrInvalidPayload:
		return "Invalid request payload."
	case ErrUnknownFormat:
		return "Unknown test format."

	case ErrNotFound:
		return "Resource not found."
	case ErrSessionNotFound:
		return "Test session not found."
	case ErrSessionActive:
		return "You already have a test in progress."

	case ErrNoQuestions:
		return "No questions are available for this test."
	case ErrInsufficientQuestions:
		return "Not enough questions are available for this test format."
	case ErrInvalidQuestion:
		return "The question set for this test is invalid."
	case ErrInvalidDuration:
		return "The test duration must be positive."
	case ErrTimeUp:
		return "Time is up for this test."
	case ErrSessionClosed:
		return "This test is no longer active."
	case ErrSubmitting:
		return "Your test is being submitted."
	case ErrIndexOutOfRange:
		return "Question number is out of range."
	case ErrUnknownOption:
		return "The option does not belong to the current question."
	case ErrNoCurrentUser:
		return "Sign in to submit your test."
	case ErrSaveFailed:
		return "Your test could not be saved. Please try submitting again."

	case ErrRateLimitExceeded:
		return "Too many requests. Please slow down."

	case ErrInternal:
		return "An internal server error occurred."
	default:
		return "An unexpected error occurred."
	}
}
