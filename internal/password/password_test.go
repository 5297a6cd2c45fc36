package password

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndVerify(t *testing.T) {
	digest, err := Hash("Abcd1234")
	require.NoError(t, err)
	assert.NotEqual(t, "Abcd1234", digest)
	assert.True(t, strings.HasPrefix(digest, "$2a$12$"))

	assert.True(t, Verify("Abcd1234", digest))
	assert.False(t, Verify("abcd1234", digest))
	assert.False(t, Verify("", digest))
}

func TestHashSaltsFreshly(t *testing.T) {
	first, err := Hash("Abcd1234")
	require.NoError(t, err)
	second, err := Hash("Abcd1234")
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
}

func TestVerifyMalformedDigest(t *testing.T) {
	assert.False(t, Verify("Abcd1234", ""))
	assert.False(t, Verify("Abcd1234", "not-a-bcrypt-digest"))
}
