package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"invalid due date", ErrInvalidDueDate, KindValidation},
		{"not found", New(ErrCodeBookNotFound, "x"), KindNotFound},
		{"duplicate reservation", NewReason(ErrCodeDuplicateReservation, ReasonDuplicateReservation, "x"), KindConflict},
		{"forbidden", ErrForbidden, KindConflict},
		{"no copy", NewReason(ErrCodeNoCopyAvailable, ReasonNoCopy, "x"), KindUnavailable},
		{"token expired", ErrTokenExpired, KindUnauthorized},
		{"wrapped driver error", Wrap(errors.New("connection reset"), "x"), KindStorage},
		{"plain error", errors.New("boom"), KindStorage},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.err))
		})
	}
}

func TestIsMatchesCodeAndReasonThroughWrapping(t *testing.T) {
	wrapped := fmt.Errorf("checkout item 3: %w", ErrInvalidDueDate)
	assert.ErrorIs(t, wrapped, ErrInvalidDueDate)

	copyOf := NewReason(ErrCodeInvalidDueDate, ReasonInvalidDueDate, "another message")
	assert.ErrorIs(t, copyOf, ErrInvalidDueDate)
	assert.NotErrorIs(t, copyOf, ErrInvalidParams)
}

func TestGetAppError(t *testing.T) {
	raw := errors.New("disk full")
	appErr := GetAppError(raw)
	assert.Equal(t, ErrCodeInternal, appErr.Code)
	assert.Equal(t, ReasonStorage, appErr.Reason)
	assert.ErrorIs(t, appErr, raw)

	assert.Same(t, ErrForbidden, GetAppError(ErrForbidden))
}

func TestDefaultReason(t *testing.T) {
	assert.Equal(t, ReasonNotFound, New(ErrCodeLoanNotFound, "x").Reason)
	assert.Equal(t, ReasonInvalidParams, New(ErrCodeBindError, "x").Reason)
	assert.Equal(t, ReasonInternal, New(ErrCodeDatabaseError, "x").Reason)
}
