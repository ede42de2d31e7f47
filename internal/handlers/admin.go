package handlers

import (
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"yatube/internal/authz"
	"yatube/internal/cache"
	"yatube/internal/middleware"
)

type AdminHandler struct {
	cache  cache.Store
	logger *zap.Logger
}

func NewAdminHandler(store cache.Store, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{cache: store, logger: logger}
}

// ClearCache empties the page cache. Staff only.
func (h *AdminHandler) ClearCache(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if !authz.CanClearCache(user) {
		RenderError(c, http.StatusForbidden, "You do not have permission to clear the cache.")
		return
	}

	if err := h.cache.Clear(c.Request.Context()); err != nil {
		fail(c, h.logger, err)
		return
	}
	h.logger.Info("Page cache cleared", zap.String("by", user.Username))
	flash(c, "Cache cleared.")

	back := "/"
	if ref, err := url.Parse(c.Request.Referer()); err == nil && ref.Host == c.Request.Host && localPath(ref.Path) {
		back = ref.RequestURI()
	}
	c.Redirect(http.StatusFound, back)
}
