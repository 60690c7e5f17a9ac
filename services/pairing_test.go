package services

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPairingCreateAttachClaim(t *testing.T) {
	store := NewPairingStore(time.Minute, nil)

	session := store.Create(7)
	require.NotEmpty(t, session.ID)
	assert.Equal(t, uint(7), session.BookingID)
	assert.Equal(t, 1, store.Len())

	payload := map[string]interface{}{"fullName": "Jane Roe", "idNumber": "AB123456"}
	require.NoError(t, store.Attach(session.ID, payload))

	claimed, ok := store.Claim(session.ID)
	require.True(t, ok)
	assert.Equal(t, "Jane Roe", claimed.Payload["fullName"])
	assert.Equal(t, 0, store.Len())

	// A claimed session is gone.
	_, ok = store.Claim(session.ID)
	assert.False(t, ok)
}

func TestPairingAttachUnknownSession(t *testing.T) {
	store := NewPairingStore(time.Minute, nil)
	err := store.Attach("no-such-id", map[string]interface{}{})
	assert.Error(t, err)
}

func TestPairingExpiry(t *testing.T) {
	var mu sync.Mutex
	expired := []string{}

	store := NewPairingStore(20*time.Millisecond, func(id string) {
		mu.Lock()
		expired = append(expired, id)
		mu.Unlock()
	})

	session := store.Create(1)

	assert.Eventually(t, func() bool {
		return store.Len() == 0
	}, time.Second, 5*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, expired, 1)
	assert.Equal(t, session.ID, expired[0])

	_, ok := store.Claim(session.ID)
	assert.False(t, ok)
}
