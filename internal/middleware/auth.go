package middleware

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	apperrors "github.com/rush-skills/plane/pkg/errors"
	"github.com/rush-skills/plane/pkg/httputil"
)

const ContextUserID = "user_id"

// Claims is the access token payload. The caller id is read from user_id, falling back to sub.
type Claims struct {
	UserID string `json:"user_id,omitempty"`
	jwt.RegisteredClaims
}

type AuthConfig struct {
	Secret string
	Issuer string
}

// Authenticate verifies the bearer token and stores the caller id in the context.
// It does not load the user; authorisation is the scoping done by each operation.
func Authenticate(config AuthConfig) gin.HandlerFunc {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name})}
	if config.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(config.Issuer))
	}
	parser := jwt.NewParser(opts...)

	return func(c *gin.Context) {
		userID, err := callerFromHeader(parser, config.Secret, c.GetHeader("Authorization"))
		if err != nil {
			httputil.RespondWithError(c, apperrors.Unauthorized(err))
			return
		}

		c.Set(ContextUserID, userID)
		c.Next()
	}
}

func callerFromHeader(parser *jwt.Parser, secret, header string) (uuid.UUID, error) {
	if header == "" {
		return uuid.Nil, errors.New("missing authorization header")
	}

	raw, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || raw == "" {
		return uuid.Nil, errors.New("invalid authorization format")
	}

	claims := &Claims{}
	_, err := parser.ParseWithClaims(raw, claims, func(*jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	})
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid token: %w", err)
	}

	subject := claims.UserID
	if subject == "" {
		subject = claims.Subject
	}
	userID, err := uuid.Parse(subject)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid user id in token: %w", err)
	}
	return userID, nil
}
