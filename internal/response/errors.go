package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Authentication ────────────────────────────────────────────────
	ErrInvalidCredentials ErrCode = "INVALID_CREDENTIALS"
	ErrTokenRequired      ErrCode = "TOKEN_REQUIRED"
	ErrTokenInvalid       ErrCode = "TOKEN_INVALID"
	ErrUsernameTaken      ErrCode = "USERNAME_TAKEN"

	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation ErrCode = "VALIDATION_ERROR"
	ErrInvalidID  ErrCode = "INVALID_ID"

	// ─── Resources ─────────────────────────────────────────────────────
	ErrNotFound ErrCode = "NOT_FOUND"

	// ─── Quiz-specific ─────────────────────────────────────────────────
	ErrQuizCompleted    ErrCode = "QUIZ_ALREADY_COMPLETED"
	ErrQuizAbandoned    ErrCode = "QUIZ_ABANDONED"
	ErrAlreadyAnswered  ErrCode = "QUESTION_ALREADY_ANSWERED"
	ErrGenerationFailed ErrCode = "GENERATION_FAILED"
	ErrInvalidContent   ErrCode = "INVALID_CONTENT"

	// ─── Rate Limiting ─────────────────────────────────────────────────
	ErrRateLimitExceeded ErrCode = "RATE_LIMIT_EXCEEDED"

	// ─── Server ────────────────────────────────────────────────────────
	ErrInternal ErrCode = "INTERNAL_ERROR"
)

// GetMessage returns a human-readable message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	// ─── Authentication ────────────────────────────────────────────────
	case ErrInvalidCredentials:
		return "Incorrect username or password."
	case ErrTokenRequired:
		return "Authentication token is required."
	case ErrTokenInvalid:
		return "Authentication token is invalid or expired."
	case ErrUsernameTaken:
		return "Username or email is already registered."

	// ─── Validation ────────────────────────────────────────────────────
	case ErrValidation:
		return "Validation failed. Please check your input."
	case ErrInvalidID:
		return "Invalid ID format."

	// ─── Resources ─────────────────────────────────────────────────────
	case ErrNotFound:
		return "Resource not found."

	// ─── Quiz-specific ─────────────────────────────────────────────────
	case ErrQuizCompleted:
		return "This quiz has already been completed."
	case ErrQuizAbandoned:
		return "This quiz was abandoned."
	case ErrAlreadyAnswered:
		return "This question has already been answered."
	case ErrGenerationFailed:
		return "Could not generate questions from this content."
	case ErrInvalidContent:
		return "The content has no usable text."

	// ─── Rate Limiting ─────────────────────────────────────────────────
	case ErrRateLimitExceeded:
		return "Too many requests. Please try again later."

	// ─── Server ────────────────────────────────────────────────────────
	case ErrInternal:
		return "Internal server error."
	default:
		return "An unexpected error occurred."
	}
}
