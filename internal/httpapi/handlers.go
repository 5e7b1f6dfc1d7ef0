package httpapi

import (
	"net/http"
	"strconv"
	"time"

	"call-cascade/internal/auth"
	"call-cascade/internal/cascade"
	"call-cascade/internal/recordings"

	"github.com/gin-gonic/gin"
)

// Handlers groups HTTP handlers for dependency injection.
// Keep these thin: parse/validate input, call internal services, return JSON.

type Handlers struct {
	Auth       *auth.Manager
	Recordings *recordings.Service

	Plan            cascade.Plan
	NotifierEnabled bool
}

// --- Health / introspection ---

// Healthz is public and read-only: candidate count and ring timeout only,
// never the numbers themselves.
func (h Handlers) Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":               "ok",
		"candidates":           h.Plan.Size(),
		"ring_timeout_seconds": int(h.Plan.RingTimeout / time.Second),
		"voicemail_enabled":    h.Plan.VoicemailEnabled,
		"notifier_enabled":     h.NotifierEnabled,
	})
}

// --- Auth ---

type loginRequest struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
}

// Login issues a JWT token pair.
//
// NOTE: This is a skeleton-only endpoint. Real deployments must validate credentials.
func (h Handlers) Login(c *gin.Context) {
	if h.Auth == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "auth not configured"})
		return
	}
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if req.UserID == "" || req.Role == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "user_id, role required"})
		return
	}
	pair, err := h.Auth.IssuePair(time.Now(), req.UserID, req.Role)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "token issuance failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"access_token": pair.AccessToken, "refresh_token": pair.RefreshToken})
}

// --- Recordings ---

func (h Handlers) ListRecordings(c *gin.Context) {
	if h.Recordings == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "recordings not configured"})
		return
	}
	limit, _ := strconv.Atoi(c.Query("limit"))
	recs, err := h.Recordings.List(c.Request.Context(), limit)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "listing failed"})
		return
	}
	if recs == nil {
		recs = []recordings.Recording{}
	}
	c.JSON(http.StatusOK, gin.H{"recordings": recs})
}

// --- Cascade plan ---

// GetCascadePlan exposes the plan to authenticated operators with
// candidate numbers redacted to their suffixes.
func (h Handlers) GetCascadePlan(c *gin.Context) {
	masked := make([]string, 0, h.Plan.Size())
	for _, n := range h.Plan.Candidates {
		masked = append(masked, maskNumber(n))
	}
	c.JSON(http.StatusOK, gin.H{
		"candidates":           masked,
		"ring_timeout_seconds": int(h.Plan.RingTimeout / time.Second),
		"voicemail_enabled":    h.Plan.VoicemailEnabled,
	})
}

func maskNumber(n string) string {
	const keep = 4
	if len(n) <= keep {
		return n
	}
	masked := make([]byte, len(n)-keep)
	for i := range masked {
		masked[i] = '*'
	}
	return string(masked) + n[len(n)-keep:]
}
