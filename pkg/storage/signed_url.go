package storage

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var (
	// ErrInvalidToken covers malformed and tampered download tokens.
	ErrInvalidToken = errors.New("invalid download token")
	// ErrTokenExpired is returned for well-formed tokens past their expiry.
	ErrTokenExpired = errors.New("download token expired")
)

// SignedURLSigner creates and validates signed snapshot download tokens.
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
	return &SignedURLSigner{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// TTL reports how long generated tokens stay valid.
func (s *SignedURLSigner) TTL() time.Duration {
	return s.ttl
}

// Generate returns a token binding a snapshot id to its stored file name.
func (s *SignedURLSigner) Generate(snapshotID, name string) (string, time.Time, error) {
	if snapshotID == "" || name == "" {
		return "", time.Time{}, fmt.Errorf("snapshot id and file name required")
	}
	if strings.Contains(snapshotID, ".") {
		return "", time.Time{}, fmt.Errorf("snapshot id must not contain '.'")
	}
	if len(s.secret) == 0 {
		return "", time.Time{}, fmt.Errorf("signing secret missing")
	}
	expiresAt := s.now().Add(s.ttl).Truncate(time.Second)
	ts := strconv.FormatInt(expiresAt.Unix(), 10)
	encodedName := base64.RawURLEncoding.EncodeToString([]byte(name))
	token := strings.Join([]string{snapshotID, ts, encodedName, s.sign(snapshotID, ts, encodedName)}, ".")
	return token, expiresAt, nil
}

// Parse validates a token and returns the embedded snapshot id and file name.
// With allowExpired the expiry check is skipped, for cleanup routines.
func (s *SignedURLSigner) Parse(token string, allowExpired bool) (snapshotID, name string, expiresAt time.Time, err error) {
	parts := strings.Split(token, ".")
	if len(parts) != 4 {
		return "", "", time.Time{}, ErrInvalidToken
	}
	snapshotID, ts, encodedName, signature := parts[0], parts[1], parts[2], parts[3]

	if !hmac.Equal([]byte(s.sign(snapshotID, ts, encodedName)), []byte(signature)) {
		return "", "", time.Time{}, ErrInvalidToken
	}
	rawName, err := base64.RawURLEncoding.DecodeString(encodedName)
	if err != nil {
		return "", "", time.Time{}, fmt.Errorf("%w: decode file name", ErrInvalidToken)
	}
	expUnix, err := strconv.ParseInt(ts, 10, 64)
	if err != nil {
		return "", "", time.Time{}, fmt.Errorf("%w: expiry", ErrInvalidToken)
	}
	expiresAt = time.Unix(expUnix, 0)
	if !allowExpired && s.now().After(expiresAt) {
		return "", "", time.Time{}, ErrTokenExpired
	}
	return snapshotID, string(rawName), expiresAt, nil
}

func (s *SignedURLSigner) sign(snapshotID, ts, encodedName string) string {
	mac := hmac.New(sha256.New, s.secret)
	_, _ = mac.Write([]byte(snapshotID + "|" + ts + "|" + encodedName))
	return hex.EncodeToString(mac.Sum(nil))
}
