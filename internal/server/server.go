// Package server is the HTTP boundary: request validation, bearer auth, and
// the mapping of evaluation error kinds onto transport status codes.
package server

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/expensedesk/claims-engine/internal/claims"
	"github.com/expensedesk/claims-engine/internal/common"
)

// Server wires the claim engine into gin handlers.
type Server struct {
	engine *claims.Engine
	issuer *TokenIssuer
	secret string
	logger *slog.Logger
}

func New(engine *claims.Engine, issuer *TokenIssuer, accessKey string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{engine: engine, issuer: issuer, secret: accessKey, logger: logger}
}

// Router builds the route tree. The evaluation endpoint sits behind the
// bearer middleware; token issue and health do not.
func (s *Server) Router() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.POST("/v1/tokens", s.handleIssueToken)

	v1 := r.Group("/v1", requireToken(s.issuer))
	v1.POST("/claims/evaluate", s.handleEvaluate)
	return r
}

type tokenRequest struct {
	ClaimantCode string `json:"claimant_code"`
	AccessKey    string `json:"access_key"`
}

func (s *Server) handleIssueToken(c *gin.Context) {
	var req tokenRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.ClaimantCode == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "claimant_code and access_key are required"})
		return
	}
	if req.AccessKey != s.secret {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid access key"})
		return
	}
	token, expiry, err := s.issuer.Issue(req.ClaimantCode)
	if err != nil {
		s.logger.Error("token issue failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not issue token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"token":      token,
		"expires_at": expiry.UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleEvaluate(c *gin.Context) {
	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, 32<<20))
	if err != nil {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "request body too large"})
		return
	}
	if err := validateEvaluateBody(body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	var wire evaluateRequest
	if err := unmarshalStrictNumbers(body, &wire); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	req, err := toClaimRequest(wire)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	result, err := s.engine.Evaluate(c.Request.Context(), req)
	if err != nil {
		s.logger.Error("evaluation failed", "claimant", req.ClaimantCode, "error", err)
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}

// statusFor maps evaluation error kinds onto HTTP statuses.
func statusFor(err error) int {
	switch {
	case errors.Is(err, common.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, common.ErrInvalidInput),
		errors.Is(err, common.ErrUnsupportedFileType):
		return http.StatusBadRequest
	case errors.Is(err, common.ErrInvalidDocument),
		errors.Is(err, common.ErrMissingRequiredColumns):
		return http.StatusUnprocessableEntity
	case errors.Is(err, common.ErrStoreUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
