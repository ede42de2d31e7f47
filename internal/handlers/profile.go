package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"yatube/internal/authz"
	"yatube/internal/middleware"
	"yatube/internal/services"
)

type ProfileHandler struct {
	listing *services.Listing
	follows *services.Follows
	logger  *zap.Logger
}

func NewProfileHandler(listing *services.Listing, follows *services.Follows, logger *zap.Logger) *ProfileHandler {
	return &ProfileHandler{listing: listing, follows: follows, logger: logger}
}

func (h *ProfileHandler) Profile(c *gin.Context) {
	viewer := middleware.CurrentUser(c)
	profile, err := h.listing.Profile(c.Request.Context(), viewer, c.Param("username"), pageNumber(c))
	if err != nil {
		fail(c, h.logger, err)
		return
	}
	Render(c, http.StatusOK, "posts/profile.html", gin.H{
		"Profile":   profile,
		"Page":      profile.Page,
		"ShowGroup": true,
		"CanFollow": authz.CanFollow(viewer, profile.Author),
	})
}

// Feed lists posts by the authors the current user follows.
func (h *ProfileHandler) Feed(c *gin.Context) {
	page, err := h.listing.Feed(c.Request.Context(), middleware.CurrentUser(c), pageNumber(c))
	if err != nil {
		fail(c, h.logger, err)
		return
	}
	Render(c, http.StatusOK, "posts/follow.html", gin.H{
		"Page":      page,
		"ShowGroup": true,
	})
}

func (h *ProfileHandler) Follow(c *gin.Context) {
	author, err := h.follows.Follow(c.Request.Context(), middleware.CurrentUser(c), c.Param("username"))
	if err != nil {
		fail(c, h.logger, err)
		return
	}
	c.Redirect(http.StatusFound, profileURL(author.Username))
}

func (h *ProfileHandler) Unfollow(c *gin.Context) {
	author, err := h.follows.Unfollow(c.Request.Context(), middleware.CurrentUser(c), c.Param("username"))
	if err != nil {
		fail(c, h.logger, err)
		return
	}
	c.Redirect(http.StatusFound, profileURL(author.Username))
}
