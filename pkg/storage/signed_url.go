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

// Token verification failures.
var (
	ErrTokenMalformed = errors.New("storage: malformed token")
	ErrTokenSignature = errors.New("storage: bad token signature")
	ErrTokenExpired   = errors.New("storage: token expired")
)

// Grant is what a download token authorises: one stored file of one job, until ExpiresAt.
type Grant struct {
	JobID     string
	Path      string
	ExpiresAt time.Time
}

// SignedURLSigner issues and verifies HMAC-SHA256 download tokens of the form
// <job>.<unix expiry>.<base64 path>.<hex mac>.
type SignedURLSigner struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewSignedURLSigner constructs a signer. A non-positive ttl defaults to one day.
func NewSignedURLSigner(secret string, ttl time.Duration) *SignedURLSigner {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &SignedURLSigner{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// TTL returns how long issued tokens stay valid.
func (s *SignedURLSigner) TTL() time.Duration { return s.ttl }

// Sign issues a token for path of jobID.
func (s *SignedURLSigner) Sign(jobID, path string) (string, Grant, error) {
	if jobID == "" || path == "" || strings.Contains(jobID, ".") {
		return "", Grant{}, fmt.Errorf("sign: job id and path required")
	}
	if len(s.secret) == 0 {
		return "", Grant{}, fmt.Errorf("sign: secret missing")
	}
	g := Grant{JobID: jobID, Path: path, ExpiresAt: s.now().Add(s.ttl).Truncate(time.Second)}
	body := strings.Join([]string{jobID, strconv.FormatInt(g.ExpiresAt.Unix(), 10), base64.RawURLEncoding.EncodeToString([]byte(path))}, ".")
	return body + "." + s.mac(body), g, nil
}

// Verify checks token and returns its grant. With allowExpired the expiry is not
// enforced, which lets cleanup resolve old files.
func (s *SignedURLSigner) Verify(token string, allowExpired bool) (Grant, error) {
	idx := strings.LastIndex(token, ".")
	if idx <= 0 {
		return Grant{}, ErrTokenMalformed
	}
	body, sig := token[:idx], token[idx+1:]
	parts := strings.Split(body, ".")
	if len(parts) != 3 {
		return Grant{}, ErrTokenMalformed
	}
	if !hmac.Equal([]byte(s.mac(body)), []byte(sig)) {
		return Grant{}, ErrTokenSignature
	}
	exp, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return Grant{}, ErrTokenMalformed
	}
	path, err := base64.RawURLEncoding.DecodeString(parts[2])
	if err != nil {
		return Grant{}, ErrTokenMalformed
	}
	g := Grant{JobID: parts[0], Path: string(path), ExpiresAt: time.Unix(exp, 0)}
	if !allowExpired && s.now().After(g.ExpiresAt) {
		return g, ErrTokenExpired
	}
	return g, nil
}

func (s *SignedURLSigner) mac(body string) string {
	m := hmac.New(sha256.New, s.secret)
	_, _ = m.Write([]byte(body))
	return hex.EncodeToString(m.Sum(nil))
}
