package db

import (
	"errors"

	"github.com/lib/pq"
)

// Postgres error codes the services care about.
const (
	CodeUniqueViolation      = "23505"
	CodeSerializationFailure = "40001"
	CodeDeadlockDetected     = "40P01"
)

func IsUniqueViolation(err error) bool {
	return hasCode(err, CodeUniqueViolation)
}

// IsSerializationFailure reports whether the error is a retryable
// serialization or deadlock failure.
func IsSerializationFailure(err error) bool {
	return hasCode(err, CodeSerializationFailure) || hasCode(err, CodeDeadlockDetected)
}

func hasCode(err error, code string) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code) == code
	}
	return false
}
