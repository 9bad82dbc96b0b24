package middleware

import (
	"context"
	"fmt"
	"log"
	"time"

	"agroledger/internal/common"
	"agroledger/internal/services"

	"github.com/MicahParks/keyfunc/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
)

// ClaimsContextKey is where TokenContext stores the validated claims on the echo context
const ClaimsContextKey = "token_claims"

// NewJWKS fetches a remote key set for verifying tokens signed by an external
// identity provider. The keys are refreshed in the background.
func NewJWKS(url string) (*keyfunc.JWKS, error) {
	jwks, err := keyfunc.Get(url, keyfunc.Options{
		RefreshInterval:   time.Hour,
		RefreshRateLimit:  5 * time.Minute,
		RefreshTimeout:    10 * time.Second,
		RefreshUnknownKID: true,
		RefreshErrorHandler: func(err error) {
			log.Printf("Failed to refresh JWKS from %s: %v", url, err)
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load JWKS: %w", err)
	}
	return jwks, nil
}

// JWTConfig verifies HS256 tokens issued by AuthService and, when jwks is
// set, asymmetric tokens from the key set.
func JWTConfig(jwtSecret string, jwks *keyfunc.JWKS) echojwt.Config {
	secret := []byte(jwtSecret)
	return echojwt.Config{
		NewClaimsFunc: func(c echo.Context) jwt.Claims {
			return new(services.TokenClaims)
		},
		KeyFunc: func(token *jwt.Token) (interface{}, error) {
			if token.Method == jwt.SigningMethodHS256 {
				return secret, nil
			}
			if jwks != nil {
				return jwks.Keyfunc(token)
			}
			return nil, fmt.Errorf("unexpected signing method %s", token.Header["alg"])
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return common.SendUnauthorizedError(c)
		},
	}
}

// TokenContext runs after the echo-jwt middleware. It rejects revoked tokens
// and copies the user id and role into the request context.
func TokenContext(authService services.AuthService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, ok := c.Get("user").(*jwt.Token)
			if !ok {
				return common.SendUnauthorizedError(c)
			}
			claims, ok := token.Claims.(*services.TokenClaims)
			if !ok {
				return common.SendUnauthorizedError(c)
			}

			tokenID := claims.TokenID
			if tokenID == "" {
				tokenID = claims.ID
			}
			if tokenID != "" {
				revoked, err := authService.IsRevoked(c.Request().Context(), tokenID)
				if err != nil {
					log.Printf("Failed to check token blacklist: %v", err)
				}
				if revoked {
					return common.SendUnauthorizedError(c)
				}
			}

			sub := claims.UserID
			if sub == "" {
				sub = claims.Subject
			}
			userID, err := uuid.Parse(sub)
			if err != nil {
				return common.SendUnauthorizedError(c)
			}

			ctx := context.WithValue(c.Request().Context(), common.UserIDKey, userID)
			ctx = context.WithValue(ctx, common.RoleKey, claims.Role)
			c.SetRequest(c.Request().WithContext(ctx))
			c.Set(ClaimsContextKey, claims)

			return next(c)
		}
	}
}
