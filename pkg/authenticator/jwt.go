package authenticator

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/tensaku-lab/backend/config"
)

const issuer = "tensaku"

var errInvalidIssuer = errors.New("invalid token issuer")

type claims[T any] struct {
	jwt.RegisteredClaims
	Object T `json:"obj,omitempty"`
}

type jwtTokenEngine[T any] struct {
	secret     []byte
	expiration time.Duration
}

// NewTokenEngine signs tokens with HS256 and a random jti.
func NewTokenEngine[T any](secret string, cfg config.TokenConfigs) *jwtTokenEngine[T] {
	return &jwtTokenEngine[T]{secret: []byte(secret), expiration: cfg.Expiration}
}

func (e *jwtTokenEngine[T]) Generate(sub string, obj T) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims[T]{
		Object: obj,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    issuer,
			Subject:   sub,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(e.expiration)),
		},
	})

	return token.SignedString(e.secret)
}

func (e *jwtTokenEngine[T]) Verify(token string) (T, error) {
	var c claims[T]
	_, err := jwt.ParseWithClaims(token, &c,
		func(*jwt.Token) (any, error) { return e.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	)
	if err != nil {
		var zero T
		return zero, err
	}

	if !c.VerifyIssuer(issuer, true) {
		var zero T
		return zero, errInvalidIssuer
	}

	return c.Object, nil
}
