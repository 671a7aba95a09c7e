package utils // package utils provides helpers for token creation, parsing and hashing

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is returned by ParseAccessToken for any token that does
// not verify or lacks the expected claims.
var ErrInvalidToken = errors.New("invalid token")

// AccessToken is a signed JWT together with its expiry.
type AccessToken struct {
	Token string    // the serialized JWT string
	Exp   time.Time // the UTC expiration time
}

// RefreshToken is the raw long-lived token handed to the client.  Only its
// SHA-256 hash is persisted.
type RefreshToken struct {
	Raw string
	Exp time.Time
}

// AccessClaims are the claims the API reads back from an access token.
type AccessClaims struct {
	UserID uint64
	Role   uint8
}

// NewAccessToken builds and signs an HS256 JWT carrying sub (user id),
// role (1 admin, 2 user), exp and iat.
func NewAccessToken(secret string, userID uint64, role uint8, ttlMin int) (AccessToken, error) {
	now := time.Now().UTC()
	exp := now.Add(time.Duration(ttlMin) * time.Minute)
	claims := jwt.MapClaims{
		"sub":  strconv.FormatUint(userID, 10),
		"role": role,
		"exp":  exp.Unix(),
		"iat":  now.Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return AccessToken{}, err
	}
	return AccessToken{Token: signed, Exp: exp}, nil
}

// ParseAccessToken verifies raw with secret and extracts its claims.  Only
// HMAC-signed tokens are accepted.
func ParseAccessToken(secret, raw string) (AccessClaims, error) {
	tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(secret), nil
	}, jwt.WithExpirationRequired())
	if err != nil || !tok.Valid {
		return AccessClaims{}, ErrInvalidToken
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return AccessClaims{}, ErrInvalidToken
	}

	var out AccessClaims
	// sub may arrive as a string or, from older tokens, a JSON number.
	switch sub := claims["sub"].(type) {
	case string:
		id, err := strconv.ParseUint(sub, 10, 64)
		if err != nil {
			return AccessClaims{}, ErrInvalidToken
		}
		out.UserID = id
	case float64:
		out.UserID = uint64(sub)
	default:
		return AccessClaims{}, ErrInvalidToken
	}
	role, ok := claims["role"].(float64)
	if !ok || role < 1 || role > 255 {
		return AccessClaims{}, ErrInvalidToken
	}
	out.Role = uint8(role)
	if out.UserID == 0 {
		return AccessClaims{}, ErrInvalidToken
	}
	return out, nil
}

// NewRefreshToken returns 48 random bytes, hex encoded, valid for ttlDays.
func NewRefreshToken(ttlDays int) (RefreshToken, error) {
	raw, err := randomHex(48)
	if err != nil {
		return RefreshToken{}, err
	}
	return RefreshToken{
		Raw: raw,
		Exp: time.Now().UTC().Add(time.Duration(ttlDays) * 24 * time.Hour),
	}, nil
}

// HashRefreshRaw returns the hex SHA-256 of a raw refresh token.
func HashRefreshRaw(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

func randomHex(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
