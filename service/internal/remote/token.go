package remote

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrBadToken is returned for a token that fails verification.
var ErrBadToken = errors.New("bad reconnect token")

// Claims binds a reconnect token to one seat of one table.
type Claims struct {
	TableID string `json:"tid"`
	Seat    int    `json:"seat"`
	jwt.RegisteredClaims
}

// IssueToken signs an HS256 reconnect token for seat at tableID.
func IssueToken(secret []byte, tableID uuid.UUID, seat uint8, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		TableID: tableID.String(),
		Seat:    int(seat),
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return s, nil
}

// ParseToken verifies tok and returns its table and seat.
func ParseToken(secret []byte, tok string) (uuid.UUID, uint8, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(tok, &claims, func(*jwt.Token) (any, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return uuid.Nil, 0, fmt.Errorf("%w: %v", ErrBadToken, err)
	}
	id, err := uuid.Parse(claims.TableID)
	if err != nil || claims.Seat < 0 || claims.Seat > 3 {
		return uuid.Nil, 0, fmt.Errorf("%w: bad table or seat claim", ErrBadToken)
	}
	return id, uint8(claims.Seat), nil
}
