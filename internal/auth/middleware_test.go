package auth_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/cezarfuhr/pix-payout-api/internal/auth"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func protectedRouter(secret, iss, aud string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/protected", auth.RequireBearer(secret, iss, aud), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"operator_id": c.GetString("operator_id")})
	})
	return r
}

func get(r *gin.Engine, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestBearerRoundTripWithoutAudience(t *testing.T) {
	// the default deployment: no JWT_AUD configured on either side
	issuer, err := auth.NewJWTIssuer(testSecret, "pix-payout-api", "", 15*time.Minute)
	require.NoError(t, err)

	token, _, err := issuer.Issue(uuid.NewString())
	require.NoError(t, err)

	w := get(protectedRouter(testSecret, "pix-payout-api", ""), token)
	assert.Equal(t, http.StatusOK, w.Code, "self-issued token must verify: %s", w.Body.String())
}

func TestBearerRoundTripWithAudience(t *testing.T) {
	issuer, err := auth.NewJWTIssuer(testSecret, "pix-payout-api", "payout-dashboard", 15*time.Minute)
	require.NoError(t, err)

	token, _, err := issuer.Issue(uuid.NewString())
	require.NoError(t, err)

	w := get(protectedRouter(testSecret, "pix-payout-api", "payout-dashboard"), token)
	assert.Equal(t, http.StatusOK, w.Code, "body: %s", w.Body.String())
}

func TestBearerRejectsMissingAudience(t *testing.T) {
	// verifier demands an audience the token does not carry
	issuer, err := auth.NewJWTIssuer(testSecret, "pix-payout-api", "", 15*time.Minute)
	require.NoError(t, err)

	token, _, err := issuer.Issue(uuid.NewString())
	require.NoError(t, err)

	w := get(protectedRouter(testSecret, "pix-payout-api", "payout-dashboard"), token)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestBearerRejectsBadTokens(t *testing.T) {
	r := protectedRouter(testSecret, "pix-payout-api", "")

	// no token at all
	assert.Equal(t, http.StatusUnauthorized, get(r, "").Code)

	// token signed with a different secret
	other, err := auth.NewJWTIssuer("another-secret-another-secret-ab", "pix-payout-api", "", 15*time.Minute)
	require.NoError(t, err)
	token, _, err := other.Issue(uuid.NewString())
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, get(r, token).Code)

	// wrong issuer
	elsewhere, err := auth.NewJWTIssuer(testSecret, "some-other-service", "", 15*time.Minute)
	require.NoError(t, err)
	token, _, err = elsewhere.Issue(uuid.NewString())
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, get(r, token).Code)

	// subject that is not a UUID
	issuer, err := auth.NewJWTIssuer(testSecret, "pix-payout-api", "", 15*time.Minute)
	require.NoError(t, err)
	token, _, err = issuer.Issue("not-a-uuid")
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, get(r, token).Code)
}
