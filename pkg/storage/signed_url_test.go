package storage

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSignedURLSignerGenerateAndParse(t *testing.T) {
	signer := NewSignedURLSigner("secret", time.Hour)
	token, expiresAt, err := signer.Generate("job-1", "exports/room_list_20240301.pdf")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := signer.Parse(token, false)
	require.NoError(t, err)
	require.Equal(t, "job-1", claims.JobID)
	require.Equal(t, "exports/room_list_20240301.pdf", claims.Path)
	require.WithinDuration(t, expiresAt, claims.ExpiresAt, time.Second)
}

func TestSignedURLSignerExpired(t *testing.T) {
	signer := NewSignedURLSigner("secret", time.Minute)
	token, _, err := signer.Generate("job-1", "exports/file.csv")
	require.NoError(t, err)

	signer.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
	_, err = signer.Parse(token, false)
	require.ErrorIs(t, err, ErrTokenExpired)

	claims, err := signer.Parse(token, true)
	require.NoError(t, err)
	require.Equal(t, "exports/file.csv", claims.Path)
}

func TestSignedURLSignerRejectsTampering(t *testing.T) {
	signer := NewSignedURLSigner("secret", time.Hour)
	token, _, err := signer.Generate("job-1", "exports/file.csv")
	require.NoError(t, err)

	parts := strings.Split(token, ".")
	parts[1] = "9999999999"
	_, err = signer.Parse(strings.Join(parts, "."), false)
	require.ErrorIs(t, err, ErrTokenSignature)

	_, err = NewSignedURLSigner("other", time.Hour).Parse(token, false)
	require.ErrorIs(t, err, ErrTokenSignature)

	_, err = signer.Parse("garbage", false)
	require.ErrorIs(t, err, ErrTokenMalformed)
}
