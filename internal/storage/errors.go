package storage

import "fmt"

const (
	codeInvalid  = "invalid"
	codeNotFound = "not_found"
)

// StorageError represents a storage-specific error with a code and message.
type StorageError struct {
	Code    string
	Message string
}

func (e *StorageError) Error() string {
	return e.Message
}

// ErrorCode returns the error code.
func (e *StorageError) ErrorCode() string {
	return e.Code
}

func newStorageError(code, message string) *StorageError {
	return &StorageError{Code: code, Message: message}
}

var (
	// ErrRemoteNotConfigured is returned for s3:// locations when no S3 client exists.
	ErrRemoteNotConfigured = newStorageError(codeInvalid, "S3 location given but no S3 storage is configured")

	// ErrS3CredentialsIncomplete is returned when only one half of a static key pair is set.
	ErrS3CredentialsIncomplete = newStorageError(codeInvalid, "S3 access key ID and secret key must be set together")
)

// ErrFileNotFound creates an error for when a file is not found.
func ErrFileNotFound(key string) error {
	return &StorageError{
		Code:    codeNotFound,
		Message: fmt.Sprintf("file not found: %s", key),
	}
}
