package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"tabula-backend/pkg/common"
	pkgerrors "tabula-backend/pkg/errors"
)

// JWTConfig holds JWT validation settings
type JWTConfig struct {
	SecretKey string
	Issuer    string
	Audience  []string
}

// UserContext carries the authenticated caller's identity
type UserContext struct {
	UserID string
	Email  string
}

// JWTValidator validates bearer tokens and extracts user identity
type JWTValidator struct {
	config JWTConfig
	parser *jwt.Parser
}

// NewJWTValidator creates a validator for HS256 tokens
func NewJWTValidator(config JWTConfig) (*JWTValidator, error) {
	if config.SecretKey == "" {
		return nil, fmt.Errorf("jwt secret key is required")
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithLeeway(30 * time.Second),
	}
	if config.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(config.Issuer))
	}
	if len(config.Audience) > 0 {
		opts = append(opts, jwt.WithAudience(config.Audience[0]))
	}

	return &JWTValidator{
		config: config,
		parser: jwt.NewParser(opts...),
	}, nil
}

// Validate parses the token string and returns the user context
func (v *JWTValidator) Validate(tokenString string) (*UserContext, error) {
	claims := jwt.MapClaims{}

	token, err := v.parser.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(v.config.SecretKey), nil
	})
	if err != nil {
		return nil, pkgerrors.NewUnauthorizedError("invalid token").WithCause(err)
	}
	if !token.Valid {
		return nil, pkgerrors.NewUnauthorizedError("invalid token")
	}

	sub, _ := claims["sub"].(string)
	if sub == "" {
		return nil, pkgerrors.NewUnauthorizedError("token missing subject")
	}
	email, _ := claims["email"].(string)

	return &UserContext{UserID: sub, Email: email}, nil
}

// WithUser stores the user context on the request context
func WithUser(ctx context.Context, user *UserContext) context.Context {
	return common.WithUserID(ctx, user.UserID)
}

// GetUserFromContext extracts the authenticated user from the context
func GetUserFromContext(ctx context.Context) (*UserContext, error) {
	userID, ok := common.GetUserID(ctx)
	if !ok || userID == "" {
		return nil, pkgerrors.NewUnauthorizedError("no authenticated user in context")
	}
	return &UserContext{UserID: userID}, nil
}
