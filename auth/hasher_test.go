package auth_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jrsteele09/go-blog-server/auth"
)

func TestHashAndVerify(t *testing.T) {
	hasher := auth.NewArgon2idHasher()

	hash, err := hasher.Hash("correct horse battery staple")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(hash, "$argon2id$"))

	require.True(t, hasher.Verify("correct horse battery staple", hash))
	require.False(t, hasher.Verify("incorrect horse", hash))
}

func TestHashIsSalted(t *testing.T) {
	hasher := auth.NewArgon2idHasher()

	first, err := hasher.Hash("same-password")
	require.NoError(t, err)
	second, err := hasher.Hash("same-password")
	require.NoError(t, err)

	require.NotEqual(t, first, second)
	require.True(t, hasher.Verify("same-password", first))
	require.True(t, hasher.Verify("same-password", second))
}

func TestHashEmptyPassword(t *testing.T) {
	hasher := auth.NewArgon2idHasher()

	_, err := hasher.Hash("")
	require.Error(t, err)
}

// A malformed hash must verify as false, never panic or error out, so the
// login path can't leak whether the stored credential was readable.
func TestVerifyMalformedHash(t *testing.T) {
	hasher := auth.NewArgon2idHasher()

	malformed := []string{
		"",
		"plaintext",
		"$argon2id$",
		"$bcrypt$v=19$m=65536,t=1,p=4$c2FsdA$aGFzaA",
		"$argon2id$v=19$m=65536,t=1,p=4$not-base64!$aGFzaA",
		"$argon2id$v=19$garbage$c2FsdA$aGFzaA",
		"$argon2id$v=19$m=65536,t=1,p=999$c2FsdA$aGFzaA",
	}
	for _, hash := range malformed {
		require.False(t, hasher.Verify("password", hash), "hash %q", hash)
	}
}
