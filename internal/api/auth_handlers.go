package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/cezarfuhr/pix-payout-api/internal/storage"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// TokenIssuer abstracts JWT emission.
type TokenIssuer interface {
	Issue(operatorID string) (string, time.Time, error)
}

// AuthHandlers handles operator register/login for the read-side routes.
type AuthHandlers struct {
	Log       *zap.Logger
	Operators storage.OperatorRepo
	V         *validator.Validate
	Tokens    TokenIssuer
}

// Register godoc
// @Summary      Register an operator account
// @Description  Creates an account for the reporting endpoints.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        payload  body      RegisterRequest  true  "Register payload"
// @Success      201      {object}  map[string]any
// @Failure      400      {object}  map[string]string
// @Failure      409      {object}  map[string]string
// @Router       /auth/register [post]
func (h *AuthHandlers) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if err := h.V.Struct(req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "validation failed"})
		return
	}

	id := uuid.New()
	email := strings.ToLower(strings.TrimSpace(req.Email))
	pwHash, _ := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)

	op := storage.Operator{ID: id, Name: req.Name, Email: email, PasswordHash: string(pwHash)}
	if err := h.Operators.CreateOperator(c.Request.Context(), op); err != nil {
		status := http.StatusInternalServerError
		if err == storage.ErrOperatorExists {
			status = http.StatusConflict
		}
		h.Log.Warn("register failed", zap.Error(err))
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"id":    id.String(),
		"name":  req.Name,
		"email": email,
	})
}

// Login godoc
// @Summary      Login with email and password
// @Description  Returns a short-lived JWT access token.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        payload  body      LoginRequest  true  "Login payload"
// @Success      200      {object}  map[string]any
// @Failure      400      {object}  map[string]string
// @Failure      401      {object}  map[string]string
// @Router       /auth/login [post]
func (h *AuthHandlers) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if err := h.V.Struct(req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "validation failed"})
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	op, err := h.Operators.GetOperatorByEmail(c.Request.Context(), email)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(op.PasswordHash), []byte(req.Password)) != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	token, exp, err := h.Tokens.Issue(op.ID.String())
	if err != nil {
		h.Log.Error("jwt issue failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "token issue failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"access_token": token,
		"token_type":   "Bearer",
		"expires_in":   int(time.Until(exp).Seconds()),
		"operator": gin.H{
			"id":    op.ID.String(),
			"name":  op.Name,
			"email": op.Email,
		},
	})
}
