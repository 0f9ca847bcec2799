package auth

import (
	"errors"
	"time"

	"github.com/erp/pricing/internal/infrastructure/config"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrInvalidToken     = errors.New("invalid token")
	ErrExpiredToken     = errors.New("token has expired")
	ErrInvalidClaims    = errors.New("invalid token claims")
	ErrTokenNotYetValid = errors.New("token is not yet valid")
	ErrMissingTenantID  = errors.New("missing tenant_id in claims")
	ErrMissingUserID    = errors.New("missing user_id in claims")
)

// Claims carries the identity asserted by the platform's identity service.
// The pricing service only verifies tokens, it never refreshes them.
type Claims struct {
	jwt.RegisteredClaims
	TenantID     string   `json:"tenant_id"`
	UserID       string   `json:"user_id"`
	Username     string   `json:"username"`
	Roles        []string `json:"roles,omitempty"`
	TerritoryIDs []string `json:"territory_ids,omitempty"`
}

// JWTService signs and verifies access tokens
type JWTService struct {
	secret     []byte
	expiration time.Duration
	issuer     string
}

// NewJWTService creates a new JWT service
func NewJWTService(cfg config.JWTConfig) *JWTService {
	return &JWTService{
		secret:     []byte(cfg.Secret),
		expiration: cfg.AccessTokenExpiration,
		issuer:     cfg.Issuer,
	}
}

// GenerateTokenInput contains input for token generation
type GenerateTokenInput struct {
	TenantID     uuid.UUID
	UserID       uuid.UUID
	Username     string
	Roles        []string
	TerritoryIDs []uuid.UUID
}

// GenerateAccessToken issues a signed access token. Used by tests and by
// service-to-service callers that hold the shared secret.
func (s *JWTService) GenerateAccessToken(input GenerateTokenInput) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(s.expiration)

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, s.newClaims(input, now, expiresAt)).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return token, expiresAt, nil
}

func (s *JWTService) newClaims(input GenerateTokenInput, now, expiresAt time.Time) *Claims {
	territoryIDs := make([]string, len(input.TerritoryIDs))
	for i, tid := range input.TerritoryIDs {
		territoryIDs[i] = tid.String()
	}

	return &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Issuer:    s.issuer,
			Subject:   input.UserID.String(),
			Audience:  jwt.ClaimStrings{s.issuer},
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			NotBefore: jwt.NewNumericDate(now),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		TenantID:     input.TenantID.String(),
		UserID:       input.UserID.String(),
		Username:     input.Username,
		Roles:        input.Roles,
		TerritoryIDs: territoryIDs,
	}
}

// ValidateAccessToken verifies the signature and required claims
func (s *JWTService) ValidateAccessToken(tokenString string) (*Claims, error) {
	keyFunc := func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.secret, nil
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, keyFunc)
	if err != nil {
		return nil, translateParseError(err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidClaims
	}
	if err := claims.checkIdentity(); err != nil {
		return nil, err
	}
	return claims, nil
}

func translateParseError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrExpiredToken
	case errors.Is(err, jwt.ErrTokenNotValidYet):
		return ErrTokenNotYetValid
	default:
		return ErrInvalidToken
	}
}

// checkIdentity enforces that tokens carry the multi-tenant identity
// fields; a token without them cannot be scoped to any tenant's data.
func (c *Claims) checkIdentity() error {
	if c.TenantID == "" {
		return ErrMissingTenantID
	}
	if c.UserID == "" {
		return ErrMissingUserID
	}
	return nil
}

// GetTenantUUID extracts and parses the tenant ID from claims
func (c *Claims) GetTenantUUID() (uuid.UUID, error) { return uuid.Parse(c.TenantID) }

// GetUserUUID extracts and parses the user ID from claims
func (c *Claims) GetUserUUID() (uuid.UUID, error) { return uuid.Parse(c.UserID) }

// HasRole checks if the claims contain a specific role
func (c *Claims) HasRole(role string) bool {
	for _, r := range c.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// HasAnyRole checks if the claims contain any of the specified roles
func (c *Claims) HasAnyRole(roles ...string) bool {
	for _, required := range roles {
		if c.HasRole(required) {
			return true
		}
	}
	return false
}

// GetTerritoryUUIDs extracts and parses the territory IDs from claims.
// Unparseable entries are skipped rather than failing the whole claim set.
func (c *Claims) GetTerritoryUUIDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(c.TerritoryIDs))
	for _, tid := range c.TerritoryIDs {
		if id, err := uuid.Parse(tid); err == nil {
			ids = append(ids, id)
		}
	}
	return ids
}
