package handlers

import (
	"bytes"
	"context"
	"net/http"

	"github.com/a-h/templ"
	"github.com/gin-gonic/gin"

	"github.com/shelfmark/shelfmark-web/internal/logger"
	"github.com/shelfmark/shelfmark-web/internal/tier"
	"github.com/shelfmark/shelfmark-web/internal/token"
	"github.com/shelfmark/shelfmark-web/internal/view"
)

const (
	appTitle        = "Shelfmark"
	htmlContentType = "text/html; charset=utf-8"
)

// TierObserver is notified of the tier bound to each rendered page.
type TierObserver interface {
	ObserveTier(tier string)
}

// PagesHandler serves the server-rendered app pages.
type PagesHandler struct {
	resolver *tier.Resolver
	catalog  *tier.Catalog
	observer TierObserver
	logger   *logger.Logger
}

// NewPagesHandler creates a new pages handler. observer may be nil.
func NewPagesHandler(log *logger.Logger, resolver *tier.Resolver, catalog *tier.Catalog, observer TierObserver) *PagesHandler {
	if log == nil {
		log = logger.Production()
	}
	return &PagesHandler{
		resolver: resolver,
		catalog:  catalog,
		observer: observer,
		logger:   log,
	}
}

// Shell handles GET /app.
func (h *PagesHandler) Shell(c *gin.Context) {
	h.render(c, http.StatusOK, view.AppShell(appTitle))
}

// Loading handles GET /app/loading.
func (h *PagesHandler) Loading(c *gin.Context) {
	h.render(c, http.StatusOK, view.Loading())
}

// Content handles GET /app/content. Each request is its own render pass with the caller's
// tier data bound for the whole page body.
func (h *PagesHandler) Content(c *gin.Context) {
	user, ok := token.UserFrom(c)
	if !ok {
		h.logger.Error("User context not found in request")
		h.renderError(c, "Your session could not be read. Please sign in again.")
		return
	}

	log := h.logger.With("user", user.UserID)

	data, err := h.resolver.UserData(c.Request.Context(), user.UserID)
	if err != nil {
		log.Error("Failed to resolve tier data", "error", err)
		h.renderError(c, "Your plan could not be loaded.")
		return
	}
	usage, err := h.resolver.Usage(c.Request.Context(), user.UserID)
	if err != nil {
		log.Error("Failed to load usage", "error", err)
		h.renderError(c, "Your plan could not be loaded.")
		return
	}
	if h.observer != nil {
		h.observer.ObserveTier(data.Tier)
	}
	log.Debug("Rendering app content", "tier", data.Tier, "features", len(data.Features))

	ctx := templ.WithChildren(c.Request.Context(), view.Dashboard(h.catalog, usage))
	h.renderContext(ctx, c, http.StatusOK, view.TierProviderWrapper(data))
}

func (h *PagesHandler) render(c *gin.Context, status int, component templ.Component) {
	h.renderContext(c.Request.Context(), c, status, component)
}

// renderContext buffers the output so a failed render never sends a partial page.
func (h *PagesHandler) renderContext(ctx context.Context, c *gin.Context, status int, component templ.Component) {
	var buf bytes.Buffer
	if err := component.Render(ctx, &buf); err != nil {
		h.logger.Error("Failed to render page",
			"path", c.Request.URL.Path,
			"error", err,
		)
		h.renderError(c, "This page could not be displayed.")
		return
	}
	c.Data(status, htmlContentType, buf.Bytes())
}

// renderError answers with an HTML fragment, since htmx swaps the body into the page as is.
func (h *PagesHandler) renderError(c *gin.Context, message string) {
	var buf bytes.Buffer
	if err := view.ErrorNotice(message).Render(c.Request.Context(), &buf); err != nil {
		c.String(http.StatusInternalServerError, message)
		return
	}
	c.Data(http.StatusInternalServerError, htmlContentType, buf.Bytes())
}
