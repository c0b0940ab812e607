package utils // package utils provides helper functions for token creation and hashing

import (
    "errors"  // sentinel errors for token parsing
    "strconv" // user IDs travel as decimal strings in the sub claim
    "time"    // expirations

    "github.com/golang-jwt/jwt/v5" // JWT library for creating and verifying signed tokens
)

// ErrInvalidToken is returned for any token that fails parsing, signature
// verification, expiry, or carries an unusable subject.
var ErrInvalidToken = errors.New("invalid token")

// AccessToken represents a signed JWT access token along with its expiry.
type AccessToken struct {
    Token string    // the serialized JWT string
    Exp   time.Time // the UTC expiration time
}

// Claims are the custom claims carried by access tokens.  Subject holds the
// user ID; Role is informational only, the middleware reloads the user.
type Claims struct {
    Role string `json:"role"`
    jwt.RegisteredClaims
}

// TokenIssuer signs and verifies HS256 access tokens.
type TokenIssuer struct {
    Secret []byte
    TTL    time.Duration
}

// NewTokenIssuer builds an issuer from the configured secret and TTL in minutes.
func NewTokenIssuer(secret string, ttlMin int) *TokenIssuer {
    return &TokenIssuer{Secret: []byte(secret), TTL: time.Duration(ttlMin) * time.Minute}
}

// Issue builds and signs a token for the user.  The token includes the
// standard subject, expiry and issued-at claims plus the role.
func (i *TokenIssuer) Issue(userID uint64, role string) (AccessToken, error) {
    now := time.Now().UTC()
    exp := now.Add(i.TTL)
    claims := Claims{
        Role: role,
        RegisteredClaims: jwt.RegisteredClaims{
            Subject:   strconv.FormatUint(userID, 10),
            ExpiresAt: jwt.NewNumericDate(exp),
            IssuedAt:  jwt.NewNumericDate(now),
        },
    }
    signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.Secret)
    if err != nil {
        return AccessToken{}, err
    }
    return AccessToken{Token: signed, Exp: exp}, nil
}

// Parse verifies raw and returns the user ID and role it was issued for.
// Only HMAC signing methods are accepted.
func (i *TokenIssuer) Parse(raw string) (uint64, string, error) {
    var claims Claims
    tok, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (interface{}, error) {
        if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
            return nil, ErrInvalidToken
        }
        return i.Secret, nil
    }, jwt.WithExpirationRequired())
    if err != nil || !tok.Valid {
        return 0, "", ErrInvalidToken
    }
    uid, err := strconv.ParseUint(claims.Subject, 10, 64)
    if err != nil || uid == 0 {
        return 0, "", ErrInvalidToken
    }
    return uid, claims.Role, nil
}
