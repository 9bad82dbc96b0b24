package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"agroledger/internal/caching"
	"agroledger/internal/models"
	"agroledger/internal/repositories"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/gommon/random"
	"golang.org/x/crypto/bcrypt"
)

const (
	tokenIssuer   = "agroledger-auth"
	tokenAudience = "agroledger-api"
)

// AuthService handles password login and JWT token management
type AuthService interface {
	Login(ctx context.Context, email, password string) (*models.TokenResponse, *models.User, error)
	GenerateTokens(ctx context.Context, user *models.User) (*models.TokenResponse, error)
	RefreshToken(ctx context.Context, refreshToken string) (*models.TokenResponse, error)
	ValidateToken(ctx context.Context, token string) (*TokenClaims, error)
	RevokeAccessToken(ctx context.Context, claims *TokenClaims) error
	RevokeRefreshToken(ctx context.Context, refreshToken string) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
	CurrentUser(ctx context.Context, userID uuid.UUID) (*models.User, error)
	// EnsureUser creates the user when no account with that email exists yet
	EnsureUser(ctx context.Context, username, email, password, name, role string) error
}

type authService struct {
	users      repositories.UserRepository
	cacheSvc   caching.CacheService
	jwtSecret  []byte
	tokenTTL   int // Access token TTL in seconds
	refreshTTL int // Refresh token TTL in seconds
}

// TokenClaims represents JWT claims
type TokenClaims struct {
	UserID  string `json:"user_id"`
	Role    string `json:"role,omitempty"`
	TokenID string `json:"token_id"`
	jwt.RegisteredClaims
}

// NewAuthService creates a new authentication service
func NewAuthService(users repositories.UserRepository, cacheSvc caching.CacheService, jwtSecret string, tokenTTLSeconds, refreshTTLSeconds int) AuthService {
	return &authService{
		users:      users,
		cacheSvc:   cacheSvc,
		jwtSecret:  []byte(jwtSecret),
		tokenTTL:   tokenTTLSeconds,
		refreshTTL: refreshTTLSeconds,
	}
}

func refreshTokenKey(hash string) string {
	return fmt.Sprintf("agroledger:refresh_token:%s", hash)
}

func blacklistKey(tokenID string) string {
	return fmt.Sprintf("agroledger:token_blacklist:%s", tokenID)
}

func (s *authService) Login(ctx context.Context, email, password string) (*models.TokenResponse, *models.User, error) {
	user, err := s.users.GetByEmail(ctx, strings.TrimSpace(email))
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, nil, err
	}
	if !user.IsActive {
		return nil, nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, nil, ErrInvalidCredentials
	}

	tokens, err := s.GenerateTokens(ctx, user)
	if err != nil {
		return nil, nil, err
	}
	return tokens, user, nil
}

// GenerateTokens generates access and refresh tokens for a user
func (s *authService) GenerateTokens(ctx context.Context, user *models.User) (*models.TokenResponse, error) {
	now := time.Now()
	tokenID := uuid.NewString()

	claims := TokenClaims{
		UserID:  user.ID.String(),
		Role:    user.Role,
		TokenID: tokenID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			Subject:   user.ID.String(),
			Audience:  jwt.ClaimStrings{tokenAudience},
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(s.tokenTTL) * time.Second)),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        tokenID,
		},
	}

	accessToken := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	accessTokenString, err := accessToken.SignedString(s.jwtSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign JWT: %w", err)
	}

	refreshToken := random.String(48, random.Alphanumeric)
	refreshTokenData := fmt.Sprintf("%s:%d", user.ID.String(), now.Unix()+int64(s.refreshTTL))
	if err := s.cacheSvc.SetString(ctx, refreshTokenKey(hashToken(refreshToken)), refreshTokenData, time.Duration(s.refreshTTL)*time.Second); err != nil {
		return nil, fmt.Errorf("failed to store refresh token: %w", err)
	}

	return &models.TokenResponse{
		AccessToken:  accessTokenString,
		TokenType:    "Bearer",
		ExpiresIn:    s.tokenTTL,
		RefreshToken: refreshToken,
		UserID:       user.ID.String(),
		TokenID:      tokenID,
		IssuedAt:     now,
	}, nil
}

// RefreshToken rotates a refresh token into a new token pair
func (s *authService) RefreshToken(ctx context.Context, refreshToken string) (*models.TokenResponse, error) {
	cacheKey := refreshTokenKey(hashToken(refreshToken))
	tokenData, err := s.cacheSvc.GetString(ctx, cacheKey)
	if err != nil {
		return nil, err
	}
	if tokenData == "" {
		return nil, ErrInvalidToken
	}

	parts := strings.Split(tokenData, ":")
	if len(parts) != 2 {
		return nil, ErrInvalidToken
	}
	expiry, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil || time.Now().Unix() > expiry {
		s.cacheSvc.Delete(ctx, cacheKey)
		return nil, ErrInvalidToken
	}

	userID, err := uuid.Parse(parts[0])
	if err != nil {
		return nil, ErrInvalidToken
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil || !user.IsActive {
		return nil, ErrInvalidToken
	}

	// Refresh tokens are single use
	if err := s.cacheSvc.Delete(ctx, cacheKey); err != nil {
		log.Printf("Failed to delete used refresh token: %v", err)
	}
	return s.GenerateTokens(ctx, user)
}

// ValidateToken validates a locally issued access token
func (s *authService) ValidateToken(ctx context.Context, token string) (*TokenClaims, error) {
	jwtToken, err := jwt.ParseWithClaims(token, &TokenClaims{}, func(token *jwt.Token) (interface{}, error) {
		return s.jwtSecret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	if claims, ok := jwtToken.Claims.(*TokenClaims); ok && jwtToken.Valid {
		return claims, nil
	}
	return nil, ErrInvalidToken
}

// RevokeAccessToken blacklists the token id until the token would expire anyway
func (s *authService) RevokeAccessToken(ctx context.Context, claims *TokenClaims) error {
	tokenID := claims.TokenID
	if tokenID == "" {
		tokenID = claims.ID
	}
	ttl := time.Duration(s.tokenTTL) * time.Second
	if claims.ExpiresAt != nil {
		ttl = time.Until(claims.ExpiresAt.Time)
	}
	if ttl <= 0 {
		return nil
	}
	return s.cacheSvc.SetString(ctx, blacklistKey(tokenID), "revoked", ttl)
}

func (s *authService) RevokeRefreshToken(ctx context.Context, refreshToken string) error {
	return s.cacheSvc.Delete(ctx, refreshTokenKey(hashToken(refreshToken)))
}

func (s *authService) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	val, err := s.cacheSvc.GetString(ctx, blacklistKey(tokenID))
	if err != nil {
		return false, err
	}
	return val != "", nil
}

func (s *authService) CurrentUser(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	return s.users.GetByID(ctx, userID)
}

func (s *authService) EnsureUser(ctx context.Context, username, email, password, name, role string) error {
	_, err := s.users.GetByEmail(ctx, email)
	if err == nil {
		return nil
	}
	if !errors.Is(err, repositories.ErrNotFound) {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	return s.users.Create(ctx, &models.User{
		ID:           uuid.New(),
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		Name:         name,
		Role:         role,
		IsActive:     true,
	})
}

// hashToken creates a SHA-256 hash of the token for storage
func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
