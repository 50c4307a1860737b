package jwt

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	"github.com/promptgate/promptgate/pkg/config"
	"github.com/promptgate/promptgate/pkg/domain/session"
)

var ErrInvalidToken = errors.New("invalid token")

type Claims struct {
	SessionID      string `json:"session_id"`
	ClientIdentity string `json:"client_identity"`
	jwt.RegisteredClaims
}

//go:generate mockery --name=Manager --dir=. --output=./mocks --filename=jwt_manager_mock.go --case=underscore
type (
	Manager interface {
		CreateToken(s *session.Session) (string, error)
		DecodeToken(tokenString string) (*Claims, error)
	}
	manager struct {
		secretKey []byte
	}
)

func NewJwtManager(cfg config.AuthConfig) Manager {
	return &manager{
		secretKey: []byte(cfg.SecretKey),
	}
}

func (m *manager) CreateToken(s *session.Session) (string, error) {
	claims := &Claims{
		SessionID:      s.ID.String(),
		ClientIdentity: s.ClientIdentity,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(s.IssuedAt),
			ExpiresAt: jwt.NewNumericDate(s.ExpiresAt),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secretKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// DecodeToken verifies the signature only. Expiry and revocation are the
// session store's concern: the durable session row is the single source of
// truth for lifecycle, so a token that outlives its session (or the other
// way around) can never be accepted by one layer and rejected by the other.
func (m *manager) DecodeToken(tokenString string) (*Claims, error) {
	claims := new(Claims)
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return m.secretKey, nil
	}, jwt.WithoutClaimsValidation())
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
