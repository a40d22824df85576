package pagination

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeEmptyTokenIsFirstPage(t *testing.T) {
	c, err := Decode("")
	require.NoError(t, err)
	assert.True(t, c.IsZero())
}

func TestEncodeDecode(t *testing.T) {
	token, err := Encode(Cursor{ID: 42, CreatedUnix: 1700000000123})
	require.NoError(t, err)

	c, err := Decode(token)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), c.ID)
	assert.Equal(t, int64(1700000000123), c.CreatedUnix)
	assert.False(t, c.IsZero())
}

func TestDecodeGarbage(t *testing.T) {
	_, err := Decode("%%%")
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = Decode("bm90LWpzb24") // "not-json"
	assert.ErrorIs(t, err, ErrInvalidToken)
}
