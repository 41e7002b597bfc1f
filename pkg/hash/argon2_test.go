package hash

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// cheap parameters keep the test suite fast
var testParams = Params{
	Memory:      16 * 1024,
	Iterations:  1,
	Parallelism: 1,
	SaltLength:  16,
	KeyLength:   32,
}

func TestPasswordRoundTrip(t *testing.T) {
	encoded, err := PasswordWithParams("correct horse battery staple", testParams)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(encoded, "$argon2id$"))

	ok, err := Verify("correct horse battery staple", encoded)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = Verify("wrong password", encoded)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPasswordHashesAreSalted(t *testing.T) {
	a, err := PasswordWithParams("same password", testParams)
	require.NoError(t, err)
	b, err := PasswordWithParams("same password", testParams)
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

func TestVerifyRejectsMalformedHashes(t *testing.T) {
	for _, encoded := range []string{
		"",
		"plaintext",
		"$argon2id$v=19$m=16384,t=1,p=1$onlyfourparts",
		"$bcrypt$v=19$m=16384,t=1,p=1$c2FsdA$aGFzaA",
	} {
		_, err := Verify("password", encoded)
		assert.Error(t, err, "encoded=%q", encoded)
	}
}
