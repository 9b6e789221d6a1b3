package token_test

import (
	"testing"
	"time"

	"github.com/jrsteele09/go-blog-server/token"
	"github.com/stretchr/testify/require"
)

const (
	accessSecret  = "test-access-secret"
	refreshSecret = "test-refresh-secret"
)

func TestIssueAndVerify(t *testing.T) {
	signer, err := token.NewSigner(accessSecret, 15*time.Minute)
	require.NoError(t, err)

	payload := token.Payload{Subject: "user-1", Email: "john.doe@example.com"}
	raw, err := signer.Issue(payload)
	require.NoError(t, err)
	require.NotEmpty(t, raw)

	verified, err := signer.Verify(raw)
	require.NoError(t, err)
	require.Equal(t, payload, verified)
}

func TestVerifyWithWrongSecretFails(t *testing.T) {
	accessSigner, err := token.NewSigner(accessSecret, 15*time.Minute)
	require.NoError(t, err)
	refreshSigner, err := token.NewSigner(refreshSecret, 7*24*time.Hour)
	require.NoError(t, err)

	raw, err := accessSigner.Issue(token.Payload{Subject: "user-1", Email: "john.doe@example.com"})
	require.NoError(t, err)

	_, err = refreshSigner.Verify(raw)
	require.ErrorIs(t, err, token.ErrInvalidSignature)
}

func TestVerifyExpiredToken(t *testing.T) {
	now := time.Now()
	issueTime := func() time.Time { return now.Add(-time.Hour) }

	signer, err := token.NewSigner(accessSecret, 15*time.Minute, token.WithNowTime(issueTime))
	require.NoError(t, err)

	raw, err := signer.Issue(token.Payload{Subject: "user-1"})
	require.NoError(t, err)

	verifier, err := token.NewSigner(accessSecret, 15*time.Minute)
	require.NoError(t, err)

	_, err = verifier.Verify(raw)
	require.ErrorIs(t, err, token.ErrTokenExpired)
}

func TestVerifyMalformedToken(t *testing.T) {
	signer, err := token.NewSigner(accessSecret, 15*time.Minute)
	require.NoError(t, err)

	_, err = signer.Verify("not-a-token")
	require.ErrorIs(t, err, token.ErrMalformedToken)
}

func TestRotatedTokensDiffer(t *testing.T) {
	signer, err := token.NewSigner(refreshSecret, 7*24*time.Hour)
	require.NoError(t, err)

	payload := token.Payload{Subject: "user-1", Email: "john.doe@example.com"}
	first, err := signer.Issue(payload)
	require.NoError(t, err)
	second, err := signer.Issue(payload)
	require.NoError(t, err)

	require.NotEqual(t, first, second)
}

func TestNewSignerValidation(t *testing.T) {
	_, err := token.NewSigner("", 15*time.Minute)
	require.Error(t, err)

	_, err = token.NewSigner(accessSecret, 0)
	require.Error(t, err)
}
