package storage

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Token errors.
var (
	ErrTokenMalformed = errors.New("download token malformed")
	ErrTokenSignature = errors.New("download token signature mismatch")
	ErrTokenExpired   = errors.New("download token expired")
)

// DownloadClaims is the content of a signed download token.
type DownloadClaims struct {
	JobID     string
	Path      string
	ExpiresAt time.Time
}

// SignedURLSigner creates and validates HMAC-signed download tokens.
type SignedURLSigner struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewSignedURLSigner constructs a signer with the provided secret and TTL.
func NewSignedURLSigner(secret string, ttl time.Duration) *SignedURLSigner {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &SignedURLSigner{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

// TTL returns the lifetime of generated tokens.
func (s *SignedURLSigner) TTL() time.Duration {
	return s.ttl
}

// Generate returns a token for the job's stored file.
func (s *SignedURLSigner) Generate(jobID, path string) (string, time.Time, error) {
	if jobID == "" || path == "" {
		return "", time.Time{}, fmt.Errorf("jobID and path required")
	}
	if len(s.secret) == 0 {
		return "", time.Time{}, fmt.Errorf("signing secret missing")
	}
	expiresAt := s.now().Add(s.ttl).Truncate(time.Second)
	payload := strings.Join([]string{
		base64.RawURLEncoding.EncodeToString([]byte(jobID)),
		strconv.FormatInt(expiresAt.Unix(), 10),
		base64.RawURLEncoding.EncodeToString([]byte(path)),
	}, ".")
	return payload + "." + s.sign(payload), expiresAt, nil
}

// Parse validates a token. allowExpired skips the expiry check so cleanup
// can still resolve stale tokens.
func (s *SignedURLSigner) Parse(token string, allowExpired bool) (DownloadClaims, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 4 {
		return DownloadClaims{}, ErrTokenMalformed
	}
	payload := strings.Join(parts[:3], ".")
	if !hmac.Equal([]byte(s.sign(payload)), []byte(parts[3])) {
		return DownloadClaims{}, ErrTokenSignature
	}

	jobID, err := base64.RawURLEncoding.DecodeString(parts[0])
	if err != nil {
		return DownloadClaims{}, ErrTokenMalformed
	}
	expUnix, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return DownloadClaims{}, ErrTokenMalformed
	}
	path, err := base64.RawURLEncoding.DecodeString(parts[2])
	if err != nil {
		return DownloadClaims{}, ErrTokenMalformed
	}

	claims := DownloadClaims{JobID: string(jobID), Path: string(path), ExpiresAt: time.Unix(expUnix, 0)}
	if !allowExpired && s.now().After(claims.ExpiresAt) {
		return claims, ErrTokenExpired
	}
	return claims, nil
}

func (s *SignedURLSigner) sign(payload string) string {
	mac := hmac.New(sha256.New, s.secret)
	_, _ = mac.Write([]byte(payload))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}
