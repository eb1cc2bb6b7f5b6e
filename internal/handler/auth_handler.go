// Package handler provides HTTP handlers for API endpoints.
package handler

import (
	"bytes"
	"encoding/json"
	"net/http"

	"travelwise/internal/transport/httpdto"
	"travelwise/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	RegisterPlaceholderMsg = "User registration placeholder"
	PlaceholderToken       = "sample_jwt_token"
)

// AuthHandler serves the placeholder authentication endpoints. Nothing is
// validated, hashed, signed, or stored.
type AuthHandler struct {
	logger *logger.Logger
}

// NewAuthHandler creates an auth handler.
func NewAuthHandler(l *logger.Logger) *AuthHandler {
	return &AuthHandler{logger: l}
}

// Routes mounts the handler under its group.
func (h *AuthHandler) Routes(rg *gin.RouterGroup) {
	rg.POST("/register", h.Register)
	rg.POST("/login", h.Login)
}

// Register handles user registration.
func (h *AuthHandler) Register(c *gin.Context) {
	body, ok := readLooseJSON(c)
	if !ok {
		return
	}
	req := httpdto.RegisterRequest{
		Name:  stringField(body, "name"),
		Email: stringField(body, "email"),
	}

	h.logger.WithContext(c.Request.Context()).Info("Registering user",
		zap.String("name", req.Name),
		zap.String("email", req.Email),
	)

	c.JSON(http.StatusCreated, httpdto.RegisterResponse{Msg: RegisterPlaceholderMsg})
}

// Login handles user authentication. The token is the same for every caller.
func (h *AuthHandler) Login(c *gin.Context) {
	body, ok := readLooseJSON(c)
	if !ok {
		return
	}
	req := httpdto.LoginRequest{Email: stringField(body, "email")}

	h.logger.WithContext(c.Request.Context()).Info("Logging in user",
		zap.String("email", req.Email),
	)

	c.JSON(http.StatusOK, httpdto.LoginResponse{Token: PlaceholderToken})
}

// readLooseJSON accepts any well-formed JSON body, or none at all. Field types
// are not checked; only a body that is not valid JSON is answered with 400.
func readLooseJSON(c *gin.Context) (map[string]any, bool) {
	raw, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid request body", httpdto.CodeInvalidRequest))
		return nil, false
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, true
	}
	var body any
	if err := json.Unmarshal(raw, &body); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid request body", httpdto.CodeInvalidRequest))
		return nil, false
	}
	obj, _ := body.(map[string]any)
	return obj, true
}

// stringField returns body[key] when it is a string, and "" otherwise.
func stringField(body map[string]any, key string) string {
	s, _ := body[key].(string)
	return s
}
