package domain

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"strings"
	"time"
)

var (
	ErrBadToken     = errors.New("malformed token")
	ErrTokenExpired = errors.New("token expired")
)

// Claims is the payload carried inside a signed token.
type Claims struct {
	UserID    string    `json:"userId"`
	TenantID  string    `json:"tenantId"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// SignToken produces a compact base64(payload).base64(hmac-sha256)
// token. Not a JWT: there is no header and no algorithm agility, the
// server is the only party that ever verifies it.
func SignToken(claims Claims, secret []byte) (string, error) {
	payload, err := json.Marshal(claims)
	if err != nil {
		return "", err
	}
	encoded := base64.RawURLEncoding.EncodeToString(payload)
	return encoded + "." + sign(encoded, secret), nil
}

// VerifyToken checks the signature and expiry and returns the claims.
func VerifyToken(token string, secret []byte, now time.Time) (*Claims, error) {
	encoded, signature, ok := strings.Cut(token, ".")
	if !ok {
		return nil, ErrBadToken
	}
	if !hmac.Equal([]byte(sign(encoded, secret)), []byte(signature)) {
		return nil, ErrBadToken
	}
	payload, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return nil, ErrBadToken
	}
	var claims Claims
	if err := json.Unmarshal(payload, &claims); err != nil {
		return nil, ErrBadToken
	}
	if now.After(claims.ExpiresAt) {
		return nil, ErrTokenExpired
	}
	return &claims, nil
}

func sign(encoded string, secret []byte) string {
	mac := hmac.New(sha256.New, secret)
	mac.Write([]byte(encoded))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}
