package handlers

import (
	"net/http"

	"agroledger/internal/common"
	"agroledger/internal/middleware"
	"agroledger/internal/models"
	"agroledger/internal/services"

	"github.com/labstack/echo/v4"
)

// AuthHandlers handles authentication-related HTTP requests
type AuthHandlers struct {
	authService services.AuthService
}

func NewAuthHandlers(authService services.AuthService) *AuthHandlers {
	return &AuthHandlers{authService: authService}
}

// LoginResponse represents the login response
type LoginResponse struct {
	models.TokenResponse
	User *models.User `json:"user"`
}

// LoginRequest represents the login request payload
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Login handles user login with email and password
// @Summary Login
// @Tags auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Credentials"
// @Success 200 {object} LoginResponse
// @Failure 401 {object} common.ErrorResponse
// @Router /auth/login [post]
func (h *AuthHandlers) Login(c echo.Context) error {
	var req LoginRequest
	if err := bindRequest(c, &req); err != nil {
		return err
	}

	tokens, user, err := h.authService.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return handleError(err, "User")
	}
	return c.JSON(http.StatusOK, LoginResponse{TokenResponse: *tokens, User: user})
}

// RefreshToken exchanges a refresh token for a new token pair
// @Summary Refresh tokens
// @Tags auth
// @Accept json
// @Produce json
// @Param request body models.RefreshTokenRequest true "Refresh token"
// @Success 200 {object} models.TokenResponse
// @Router /auth/refresh [post]
func (h *AuthHandlers) RefreshToken(c echo.Context) error {
	var req models.RefreshTokenRequest
	if err := bindRequest(c, &req); err != nil {
		return err
	}

	tokens, err := h.authService.RefreshToken(c.Request().Context(), req.RefreshToken)
	if err != nil {
		return handleError(err, "Token")
	}
	return c.JSON(http.StatusOK, tokens)
}

// Logout revokes the presented access token and, when given, the refresh token
func (h *AuthHandlers) Logout(c echo.Context) error {
	ctx := c.Request().Context()

	var req models.RevokeTokenRequest
	if err := c.Bind(&req); err != nil {
		return apiError(http.StatusBadRequest, "CLIENT_ERROR", "Invalid request format", nil)
	}

	if claims, ok := c.Get(middleware.ClaimsContextKey).(*services.TokenClaims); ok {
		if err := h.authService.RevokeAccessToken(ctx, claims); err != nil {
			return handleError(err, "Token")
		}
	}
	if req.RefreshToken != "" {
		if err := h.authService.RevokeRefreshToken(ctx, req.RefreshToken); err != nil {
			return handleError(err, "Token")
		}
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Logged out successfully"})
}

// Me returns the authenticated user
func (h *AuthHandlers) Me(c echo.Context) error {
	userID, ok := common.GetUserIDFromContext(c.Request().Context())
	if !ok {
		return apiError(http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required", nil)
	}
	user, err := h.authService.CurrentUser(c.Request().Context(), userID)
	if err != nil {
		return handleError(err, "User")
	}
	return c.JSON(http.StatusOK, user)
}
