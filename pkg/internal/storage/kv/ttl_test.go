package kv

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTTLEnvelope(t *testing.T) {
	raw := []byte("plain")

	out, wrapped, err := encodeWithTTL(raw, 0)
	require.NoError(t, err)
	assert.False(t, wrapped)
	assert.Equal(t, raw, out)

	out, wrapped, err = encodeWithTTL(raw, 1500*time.Millisecond)
	require.NoError(t, err)
	assert.True(t, wrapped)

	now := time.Now()

	v, expired, wrapped, err := decodeWithTTL(out, now)
	require.NoError(t, err)
	assert.True(t, wrapped)
	assert.False(t, expired)
	assert.Equal(t, raw, v)

	v, expired, _, err = decodeWithTTL(out, now.Add(2*time.Second))
	require.NoError(t, err)
	assert.True(t, expired)
	assert.Nil(t, v)

	_, _, wrapped, err = decodeWithTTL(append(append([]byte{}, ttlPrefix...), '{'), now)
	assert.True(t, wrapped)
	assert.Error(t, err)
}
