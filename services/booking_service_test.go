package services

import (
	"errors"
	"testing"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckTypeCapacity(t *testing.T) {
	w := DateRange{
		From: time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC),
		To:   time.Date(2026, 5, 3, 0, 0, 0, 0, time.UTC),
	}

	assert.NoError(t, checkTypeCapacity("Double", 2, 2, w))
	assert.NoError(t, checkTypeCapacity("Double", 2, 1, w))

	// Two physical Doubles, one already reserved for the window, two asked.
	err := checkTypeCapacity("Double", 1, 2, w)
	require.Error(t, err)
	assert.Equal(t, KindCapacityConflict, KindOf(err))
	assert.EqualError(t, err, "only 1 Double room(s) remaining for 2026-05-01 - 2026-05-03, 2 requested")
}

func TestIsDuplicateKey(t *testing.T) {
	assert.True(t, isDuplicateKey(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry"}))
	assert.False(t, isDuplicateKey(&mysql.MySQLError{Number: 1452, Message: "FK violation"}))

	// Non-driver errors fall back to string matching.
	assert.True(t, isDuplicateKey(errors.New("UNIQUE constraint failed: bookings.code")))
	assert.False(t, isDuplicateKey(errors.New("connection refused")))
}

func TestServiceErrorKinds(t *testing.T) {
	assert.Equal(t, KindNotFound, KindOf(NotFoundf("booking not found")))
	assert.Equal(t, KindValidation, KindOf(Validationf("bad input")))
	assert.Equal(t, KindInvalidTransition, KindOf(InvalidTransitionf("already completed")))
	assert.Equal(t, KindInternal, KindOf(errors.New("plain")))

	// Kind survives wrapping.
	wrapped := &Error{Kind: KindInternal, Message: "datastore error on booking", Err: NotFoundf("inner")}
	assert.Equal(t, KindInternal, KindOf(wrapped))
}
