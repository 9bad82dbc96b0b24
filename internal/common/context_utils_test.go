package common

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateUUID(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		expectError bool
	}{
		{name: "Valid UUID", input: "550e8400-e29b-41d4-a716-446655440000"},
		{name: "Whitespace trimmed", input: " 550e8400-e29b-41d4-a716-446655440000 "},
		{name: "Upper case", input: "550E8400-E29B-41D4-A716-446655440000"},
		{name: "Empty string", input: "   ", expectError: true},
		{name: "Too short", input: "550e8400-e29b-41d4-a716-44665544000", expectError: true},
		{name: "Braced form rejected", input: "{550e8400-e29b-41d4-a716-446655440000}", expectError: true},
		{name: "Invalid character", input: "550e8400-e29b-41d4-g716-446655440000", expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := ValidateUUID(tt.input, "id")
			if tt.expectError {
				assert.Error(t, err)
				assert.Equal(t, uuid.Nil, id)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, uuid.MustParse("550e8400-e29b-41d4-a716-446655440000"), id)
		})
	}
}

func TestOptionalUUID(t *testing.T) {
	id, err := OptionalUUID("", "party_id")
	require.NoError(t, err)
	assert.Nil(t, id)

	_, err = OptionalUUID("nope", "party_id")
	assert.Error(t, err)
}

func TestParseDate(t *testing.T) {
	day, err := ParseDate("2024-03-01", "date")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), day)

	ts, err := ParseDate("2024-03-01T10:30:00+05:30", "date")
	require.NoError(t, err)
	assert.Equal(t, 5, ts.UTC().Hour())

	_, err = ParseDate("01/03/2024", "date")
	assert.EqualError(t, err, "date must be in YYYY-MM-DD or RFC3339 format")
}

func TestContextValues(t *testing.T) {
	userID := uuid.New()
	ctx := context.WithValue(context.Background(), UserIDKey, userID)
	ctx = context.WithValue(ctx, RoleKey, "admin")

	got, ok := GetUserIDFromContext(ctx)
	assert.True(t, ok)
	assert.Equal(t, userID, got)
	assert.Equal(t, "admin", GetRoleFromContext(ctx))

	_, ok = GetUserIDFromContext(context.Background())
	assert.False(t, ok)
}

func TestSendUnauthorizedError(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

	require.NoError(t, SendUnauthorizedError(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "UNAUTHORIZED", resp.Error.Code)
	assert.Equal(t, "Unauthorized access", resp.Error.Message)
	assert.Empty(t, resp.Error.Details)
}
