package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func TestGenerateAndParse(t *testing.T) {
	token, err := GenerateJWT("user-1", "Ann", testSecret, 1)
	require.NoError(t, err)

	claims, err := ParseToken(token, testSecret)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "Ann", claims.Name)

	_, err = ParseToken(token, "other-secret")
	assert.Error(t, err)
}

func TestParseRejectsExpiredAndForeignTokens(t *testing.T) {
	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		UserID: "user-1",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	})
	signed, err := expired.SignedString([]byte(testSecret))
	require.NoError(t, err)
	_, err = ParseToken(signed, testSecret)
	assert.Error(t, err)

	anonymous, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{}).SignedString([]byte(testSecret))
	require.NoError(t, err)
	_, err = ParseToken(anonymous, testSecret)
	assert.Error(t, err, "tokens without a user are refused")

	_, err = ParseToken("", testSecret)
	assert.Error(t, err)
}

func TestJWTMiddleware(t *testing.T) {
	e := echo.New()
	handler := JWTMiddleware(testSecret)(func(c echo.Context) error {
		return c.String(http.StatusOK, c.Get(ContextUserID).(string)+"/"+c.Get(ContextUserName).(string))
	})

	token, err := GenerateJWT("user-1", "Ann", testSecret, 1)
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		query  string
		status int
	}{
		{"bearer header", "Bearer " + token, "", http.StatusOK},
		{"query parameter", "", "?token=" + token, http.StatusOK},
		{"missing", "", "", http.StatusUnauthorized},
		{"garbage", "Bearer nope", "", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/"+tt.query, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			err := handler(e.NewContext(req, rec))

			if tt.status == http.StatusOK {
				require.NoError(t, err)
				assert.Equal(t, "user-1/Ann", rec.Body.String())
				return
			}
			var he *echo.HTTPError
			require.ErrorAs(t, err, &he)
			assert.Equal(t, tt.status, he.Code)
		})
	}
}
