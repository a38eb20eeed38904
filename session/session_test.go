package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseID(t *testing.T) {
	valid := []string{
		"3f2504e0-4f89-41d3-9a0c-0305e82c3301",
		"3F2504E0-4F89-41D3-9A0C-0305E82C3301",
		" 3f2504e0-4f89-41d3-9a0c-0305e82c3301 ",
	}
	for _, raw := range valid {
		id, err := ParseID(raw)
		require.NoError(t, err, raw)
		assert.Equal(t, "3f2504e0-4f89-41d3-9a0c-0305e82c3301", id)
	}

	invalid := []string{
		"",
		"not-a-uuid",
		"3f2504e04f8941d39a0c0305e82c3301",
		"{3f2504e0-4f89-41d3-9a0c-0305e82c3301}",
		"urn:uuid:3f2504e0-4f89-41d3-9a0c-0305e82c3301",
		"3f2504e0-4f89-41d3-9a0c-0305e82c330z",
	}
	for _, raw := range invalid {
		_, err := ParseID(raw)
		assert.ErrorIs(t, err, ErrInvalidSession, raw)
	}
}

func TestNewIDIsValid(t *testing.T) {
	id, err := ParseID(NewID())
	require.NoError(t, err)
	assert.Len(t, id, 36)
}
