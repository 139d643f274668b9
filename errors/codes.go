package errors

// ErrorCode represents a specific error condition.
// Error codes are string-based for debuggability and natural JSON serialization.
type ErrorCode string

const (
	// Resource errors.

	// CodeNotFound indicates a requested resource does not exist.
	CodeNotFound ErrorCode = "NOT_FOUND"

	// CodeConflict indicates a resource state conflict that prevents the operation.
	CodeConflict ErrorCode = "CONFLICT"

	// Permission errors.

	// CodeUnauthorized indicates the request lacks valid authentication credentials.
	CodeUnauthorized ErrorCode = "UNAUTHORIZED"

	// CodeForbidden indicates the authenticated user lacks permission for the operation.
	CodeForbidden ErrorCode = "FORBIDDEN"

	// Validation errors.

	// CodeInvalidInput indicates the provided input is invalid or malformed.
	CodeInvalidInput ErrorCode = "INVALID_INPUT"

	// CodeInvalidConfig indicates a configuration error prevents the operation.
	CodeInvalidConfig ErrorCode = "INVALID_CONFIGURATION"

	// Infrastructure errors.

	// CodeNetwork indicates a network operation failed.
	CodeNetwork ErrorCode = "NETWORK_ERROR"

	// CodeTimeout indicates an operation exceeded its time limit.
	CodeTimeout ErrorCode = "TIMEOUT"

	// CodeRateLimit indicates the rate limit has been exceeded.
	CodeRateLimit ErrorCode = "RATE_LIMIT_EXCEEDED"

	// CodeStorage indicates reading or writing local cache state failed.
	CodeStorage ErrorCode = "STORAGE_ERROR"

	// Execution errors.

	// CodeExecutionFailed indicates a subprocess exited unsuccessfully.
	CodeExecutionFailed ErrorCode = "EXECUTION_FAILED"

	// CodeLockFailed indicates an exclusive file lock could not be acquired.
	CodeLockFailed ErrorCode = "LOCK_FAILED"

	// Repository errors.

	// CodeRepositoryPrivate indicates the remote requires authentication that
	// was not supplied or was rejected.
	CodeRepositoryPrivate ErrorCode = "REPOSITORY_PRIVATE"

	// CodeRepositoryNotFound indicates the remote has no such repository.
	CodeRepositoryNotFound ErrorCode = "REPOSITORY_NOT_FOUND"

	// CodeReferenceNotFound indicates the repository exists but the reference
	// is neither a branch nor a commit.
	CodeReferenceNotFound ErrorCode = "REFERENCE_NOT_FOUND"

	// System errors.

	// CodeInternal indicates an internal system error occurred.
	CodeInternal ErrorCode = "INTERNAL_ERROR"

	// CodeUnavailable indicates the service is temporarily unavailable.
	CodeUnavailable ErrorCode = "SERVICE_UNAVAILABLE"

	// Generic errors.

	// CodeUnknown indicates an unknown or unclassified error occurred.
	CodeUnknown ErrorCode = "UNKNOWN"
)
