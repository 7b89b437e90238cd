package utils // package utils provides helper functions for session tokens, hashing and ids

import (
    "errors"  // sentinel errors for token validation
    "strconv" // converting the numeric subject claim
    "time"    // time utilities for generating expirations

    "github.com/golang-jwt/jwt/v5" // JWT library for creating signed tokens
)

// ErrInvalidToken is returned by ParseSessionToken for any token that cannot
// be trusted: bad signature, wrong algorithm, expired or malformed claims.
var ErrInvalidToken = errors.New("invalid session token")

// SessionToken represents a signed admin session JWT along with its expiry.
// The Token field is what ends up in the admin_session cookie.
type SessionToken struct {
    Token string    // the serialized JWT string
    Exp   time.Time // the UTC expiration time
}

// SessionClaims are the values carried by an admin session.
type SessionClaims struct {
    UserID uint64
    Email  string
    Role   string
}

// NewSessionToken builds and signs an HS256 JWT for an admin user.  The
// subject (sub) carries the user ID as a decimal string; role and email are
// custom claims; exp and iat are standard.
func NewSessionToken(secret string, userID uint64, email, role string, ttlMin int) (SessionToken, error) {
    now := time.Now().UTC()
    exp := now.Add(time.Duration(ttlMin) * time.Minute)
    claims := jwt.MapClaims{
        "sub":   strconv.FormatUint(userID, 10),
        "email": email,
        "role":  role,
        "exp":   exp.Unix(),
        "iat":   now.Unix(),
    }
    t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
    signed, err := t.SignedString([]byte(secret))
    if err != nil {
        return SessionToken{}, err
    }
    return SessionToken{Token: signed, Exp: exp}, nil
}

// ParseSessionToken verifies raw with secret and returns its claims.  Only
// HMAC-signed tokens are accepted.
func ParseSessionToken(secret, raw string) (SessionClaims, error) {
    tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
        // Reject any non-HMAC algorithm (e.g. "none" or RS256 with a forged key).
        if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
            return nil, ErrInvalidToken
        }
        return []byte(secret), nil
    })
    if err != nil || !tok.Valid {
        return SessionClaims{}, ErrInvalidToken
    }
    claims, ok := tok.Claims.(jwt.MapClaims)
    if !ok {
        return SessionClaims{}, ErrInvalidToken
    }
    sub, _ := claims["sub"].(string)
    id, err := strconv.ParseUint(sub, 10, 64)
    if err != nil || id == 0 {
        return SessionClaims{}, ErrInvalidToken
    }
    role, _ := claims["role"].(string)
    email, _ := claims["email"].(string)
    if role == "" {
        return SessionClaims{}, ErrInvalidToken
    }
    return SessionClaims{UserID: id, Email: email, Role: role}, nil
}
