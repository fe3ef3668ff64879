package tier

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/shelfmark/shelfmark-web/internal/logger"
	"github.com/shelfmark/shelfmark-web/internal/token"
)

type Handler struct {
	resolver *Resolver
	store    Store
	catalog  *Catalog
	logger   *logger.Logger
}

func NewHandler(log *logger.Logger, resolver *Resolver, store Store, catalog *Catalog) *Handler {
	if log == nil {
		log = logger.Production()
	}
	return &Handler{
		resolver: resolver,
		store:    store,
		catalog:  catalog,
		logger:   log,
	}
}

// GetMyTier handles GET /v1/tiers/me
func (h *Handler) GetMyTier(c *gin.Context) {
	user, ok := token.UserFrom(c)
	if !ok {
		abortWithError(c, http.StatusInternalServerError, "internal_error", "user context not found")
		return
	}

	data, err := h.resolver.UserData(c.Request.Context(), user.UserID)
	if err != nil {
		h.logger.Error("Failed to resolve tier data", "user", user.UserID, "error", err)
		abortWithError(c, http.StatusInternalServerError, "internal_error", "failed to resolve tier")
		return
	}

	c.JSON(http.StatusOK, data)
}

// RequireAdmin rejects callers whose profile is not flagged as admin.
func (h *Handler) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := token.UserFrom(c)
		if !ok {
			abortWithError(c, http.StatusUnauthorized, "unauthorized", "not authenticated")
			return
		}

		isAdmin, err := h.resolver.IsAdmin(c.Request.Context(), user.UserID)
		if err != nil {
			h.logger.Error("Failed to check admin flag", "user", user.UserID, "error", err)
			abortWithError(c, http.StatusInternalServerError, "internal_error", "failed to check authorization")
			return
		}
		if !isAdmin {
			abortWithError(c, http.StatusForbidden, "forbidden", "not authorized")
			return
		}

		c.Next()
	}
}

// ListFeatures handles GET /v1/admin/tiers/features
func (h *Handler) ListFeatures(c *gin.Context) {
	rows, err := h.store.ListFeatures(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to list tier features", "error", err)
		abortWithError(c, http.StatusInternalServerError, "internal_error", "failed to list tier features")
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": rows})
}

// ListLimits handles GET /v1/admin/tiers/limits
func (h *Handler) ListLimits(c *gin.Context) {
	rows, err := h.store.ListAllLimits(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to list tier limits", "error", err)
		abortWithError(c, http.StatusInternalServerError, "internal_error", "failed to list tier limits")
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": rows})
}

// ToggleFeature handles PUT /v1/admin/tiers/:tier/features/:feature
func (h *Handler) ToggleFeature(c *gin.Context) {
	tierName, ok := h.tierParam(c)
	if !ok {
		return
	}

	var req ToggleFeatureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "bad_request", err.Error())
		return
	}

	feature := c.Param("feature")
	err := h.store.SetFeatureEnabled(c.Request.Context(), tierName, feature, *req.Enabled)
	h.respondMutation(c, err, "toggle feature", "tier", tierName, "feature", feature)
}

// AddFeature handles POST /v1/admin/tiers/:tier/features
func (h *Handler) AddFeature(c *gin.Context) {
	tierName, ok := h.tierParam(c)
	if !ok {
		return
	}

	var req AddFeatureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	feature := strings.TrimSpace(req.Feature)
	if feature == "" {
		abortWithError(c, http.StatusBadRequest, "bad_request", "feature is required")
		return
	}

	err := h.store.AddFeature(c.Request.Context(), tierName, feature)
	h.respondMutation(c, err, "add feature", "tier", tierName, "feature", feature)
}

// RemoveFeature handles DELETE /v1/admin/tiers/:tier/features/:feature
func (h *Handler) RemoveFeature(c *gin.Context) {
	tierName, ok := h.tierParam(c)
	if !ok {
		return
	}

	feature := c.Param("feature")
	err := h.store.RemoveFeature(c.Request.Context(), tierName, feature)
	h.respondMutation(c, err, "remove feature", "tier", tierName, "feature", feature)
}

// UpdateLimit handles PUT /v1/admin/tiers/:tier/limits/:key
func (h *Handler) UpdateLimit(c *gin.Context) {
	tierName, ok := h.tierParam(c)
	if !ok {
		return
	}

	var req UpdateLimitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	if *req.Value < Unlimited {
		abortWithError(c, http.StatusBadRequest, "bad_request", "value must be -1 (unlimited) or greater")
		return
	}

	key := c.Param("key")
	err := h.store.SetLimit(c.Request.Context(), tierName, key, *req.Value)
	h.respondMutation(c, err, "update limit", "tier", tierName, "limit", key)
}

func (h *Handler) tierParam(c *gin.Context) (string, bool) {
	name := c.Param("tier")
	if !h.catalog.Has(name) {
		err := &UnknownTierError{Tier: name}
		abortWithError(c, http.StatusBadRequest, "bad_request", err.Error())
		return "", false
	}
	return name, true
}

func (h *Handler) respondMutation(c *gin.Context, err error, action string, keysAndValues ...any) {
	if err == nil {
		user, _ := token.UserFrom(c)
		h.logger.Info("Tier configuration changed",
			append([]any{"action", action, "admin", userID(user)}, keysAndValues...)...,
		)
		c.JSON(http.StatusOK, SuccessResponse{Success: true})
		return
	}

	switch {
	case errors.Is(err, ErrNotFound):
		abortWithError(c, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, ErrAlreadyExists):
		abortWithError(c, http.StatusConflict, "conflict", err.Error())
	default:
		h.logger.Error("Failed to "+action, append([]any{"error", err}, keysAndValues...)...)
		abortWithError(c, http.StatusInternalServerError, "internal_error", "failed to "+action)
	}
}

func userID(u *token.UserContext) string {
	if u == nil {
		return ""
	}
	return u.UserID
}

func abortWithError(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, ErrorResponse{
		Error:   code,
		Message: message,
	})
}
