package db

import (
	"errors"
	"fmt"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

func TestIsUniqueViolation(t *testing.T) {
	t.Run("UniqueViolation", func(t *testing.T) {
		err := &pq.Error{Code: pq.ErrorCode(CodeUniqueViolation)}
		assert.True(t, IsUniqueViolation(err))
	})

	t.Run("Wrapped", func(t *testing.T) {
		err := fmt.Errorf("insert failed: %w", &pq.Error{Code: pq.ErrorCode(CodeUniqueViolation)})
		assert.True(t, IsUniqueViolation(err))
	})

	t.Run("OtherError", func(t *testing.T) {
		assert.False(t, IsUniqueViolation(errors.New("boom")))
	})
}

func TestIsSerializationFailure(t *testing.T) {
	t.Run("Serialization", func(t *testing.T) {
		err := &pq.Error{Code: pq.ErrorCode(CodeSerializationFailure)}
		assert.True(t, IsSerializationFailure(err))
	})

	t.Run("Deadlock", func(t *testing.T) {
		err := &pq.Error{Code: pq.ErrorCode(CodeDeadlockDetected)}
		assert.True(t, IsSerializationFailure(err))
	})

	t.Run("UniqueViolationIsNotRetryable", func(t *testing.T) {
		err := &pq.Error{Code: pq.ErrorCode(CodeUniqueViolation)}
		assert.False(t, IsSerializationFailure(err))
	})
}
