package services

import (
	"context"
	"testing"

	"agroledger/internal/caching"
	"agroledger/testhelpers"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

type AuthServiceTestSuite struct {
	suite.Suite
	ctx     context.Context
	service AuthService
}

func (suite *AuthServiceTestSuite) SetupTest() {
	suite.ctx = context.Background()
	store := testhelpers.NewMemStore()
	suite.service = NewAuthService(store.Repos().Users, caching.NewLocalCacheService(), "test-secret", 900, 3600)
	suite.Require().NoError(suite.service.EnsureUser(suite.ctx, "admin", "admin@agroledger.local", "s3cret", "Admin", "admin"))
}

func TestAuthServiceTestSuite(t *testing.T) {
	suite.Run(t, new(AuthServiceTestSuite))
}

func (suite *AuthServiceTestSuite) TestEnsureUser_IsIdempotent() {
	err := suite.service.EnsureUser(suite.ctx, "admin", "admin@agroledger.local", "other", "Admin", "admin")
	suite.Require().NoError(err)

	_, _, err = suite.service.Login(suite.ctx, "admin@agroledger.local", "s3cret")
	assert.NoError(suite.T(), err)
}

func (suite *AuthServiceTestSuite) TestLogin_Success() {
	tokens, user, err := suite.service.Login(suite.ctx, " admin@agroledger.local ", "s3cret")
	suite.Require().NoError(err)

	assert.Equal(suite.T(), "admin", user.Role)
	assert.Equal(suite.T(), "Bearer", tokens.TokenType)
	assert.Equal(suite.T(), 900, tokens.ExpiresIn)
	assert.Len(suite.T(), tokens.RefreshToken, 48)

	claims, err := suite.service.ValidateToken(suite.ctx, tokens.AccessToken)
	suite.Require().NoError(err)
	assert.Equal(suite.T(), user.ID.String(), claims.UserID)
	assert.Equal(suite.T(), tokens.TokenID, claims.TokenID)
	assert.Equal(suite.T(), "agroledger-auth", claims.Issuer)
}

func (suite *AuthServiceTestSuite) TestLogin_WrongPassword() {
	_, _, err := suite.service.Login(suite.ctx, "admin@agroledger.local", "nope")
	assert.ErrorIs(suite.T(), err, ErrInvalidCredentials)

	_, _, err = suite.service.Login(suite.ctx, "ghost@agroledger.local", "s3cret")
	assert.ErrorIs(suite.T(), err, ErrInvalidCredentials)
}

func (suite *AuthServiceTestSuite) TestRefreshToken_IsSingleUse() {
	tokens, _, err := suite.service.Login(suite.ctx, "admin@agroledger.local", "s3cret")
	suite.Require().NoError(err)

	rotated, err := suite.service.RefreshToken(suite.ctx, tokens.RefreshToken)
	suite.Require().NoError(err)
	assert.NotEqual(suite.T(), tokens.RefreshToken, rotated.RefreshToken)

	_, err = suite.service.RefreshToken(suite.ctx, tokens.RefreshToken)
	assert.ErrorIs(suite.T(), err, ErrInvalidToken)
}

func (suite *AuthServiceTestSuite) TestRevokeRefreshToken() {
	tokens, _, err := suite.service.Login(suite.ctx, "admin@agroledger.local", "s3cret")
	suite.Require().NoError(err)

	suite.Require().NoError(suite.service.RevokeRefreshToken(suite.ctx, tokens.RefreshToken))

	_, err = suite.service.RefreshToken(suite.ctx, tokens.RefreshToken)
	assert.ErrorIs(suite.T(), err, ErrInvalidToken)
}

func (suite *AuthServiceTestSuite) TestRevokeAccessToken() {
	tokens, _, err := suite.service.Login(suite.ctx, "admin@agroledger.local", "s3cret")
	suite.Require().NoError(err)
	claims, err := suite.service.ValidateToken(suite.ctx, tokens.AccessToken)
	suite.Require().NoError(err)

	revoked, err := suite.service.IsRevoked(suite.ctx, claims.TokenID)
	suite.Require().NoError(err)
	assert.False(suite.T(), revoked)

	suite.Require().NoError(suite.service.RevokeAccessToken(suite.ctx, claims))

	revoked, err = suite.service.IsRevoked(suite.ctx, claims.TokenID)
	suite.Require().NoError(err)
	assert.True(suite.T(), revoked)
}

func (suite *AuthServiceTestSuite) TestValidateToken_RejectsForeignSignature() {
	claims := TokenClaims{UserID: uuid.NewString(), TokenID: "x"}
	forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("other-secret"))
	suite.Require().NoError(err)

	_, err = suite.service.ValidateToken(suite.ctx, forged)
	assert.ErrorIs(suite.T(), err, ErrInvalidToken)
}
