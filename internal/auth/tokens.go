package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrNoSecret is returned when a token is signed or verified without a key.
var ErrNoSecret = errors.New("token secret is not configured")

// Claims identify a session. ID (jti) is the sessions row id and Subject
// the user id.
type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// Tokens signs and verifies HS256 session tokens.
type Tokens struct {
	Secret []byte
	Issuer string
	// Now overrides the clock used to check expiry. Nil means time.Now.
	Now func() time.Time
}

func (t Tokens) Sign(sessionID, userID, email string, issuedAt, expiresAt time.Time) (string, error) {
	if len(t.Secret) == 0 {
		return "", ErrNoSecret
	}

	claims := Claims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        sessionID,
			Subject:   userID,
			Issuer:    t.Issuer,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			NotBefore: jwt.NewNumericDate(issuedAt.Add(-5 * time.Second)),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(t.Secret)
}

func (t Tokens) Verify(token string) (*Claims, error) {
	if len(t.Secret) == 0 {
		return nil, ErrNoSecret
	}

	opts := []jwt.ParserOption{jwt.WithIssuer(t.Issuer), jwt.WithExpirationRequired()}
	if t.Now != nil {
		opts = append(opts, jwt.WithTimeFunc(t.Now))
	}

	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(tok *jwt.Token) (any, error) {
		if tok.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return t.Secret, nil
	}, opts...)
	if err != nil {
		return nil, err
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid || claims.ID == "" || claims.Subject == "" {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}
