package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"yatube/internal/middleware"
	"yatube/internal/paginator"
	"yatube/internal/services"
)

// Render injects the current user, path and pending flash message.
func Render(c *gin.Context, code int, name string, obj gin.H) {
	if obj == nil {
		obj = gin.H{}
	}

	if user := middleware.CurrentUser(c); user != nil {
		obj["CurrentUser"] = user
	}
	obj["CurrentPath"] = c.Request.URL.Path

	session := sessions.Default(c)
	if flashes := session.Flashes(); len(flashes) > 0 {
		obj["Flash"] = flashes[0]
		_ = session.Save()
	}

	c.HTML(code, name, obj)
}

func RenderError(c *gin.Context, code int, message string) {
	Render(c, code, "error.html", gin.H{"Error": message})
}

// NotFound renders the custom 404 page. Also used as the NoRoute handler.
func NotFound(c *gin.Context) {
	Render(c, http.StatusNotFound, "core/404.html", nil)
}

func flash(c *gin.Context, message string) {
	session := sessions.Default(c)
	session.AddFlash(message)
	_ = session.Save()
}

// fail maps a service error to a response: 404 page, login redirect or a
// logged 500.
func fail(c *gin.Context, logger *zap.Logger, err error) {
	switch {
	case errors.Is(err, services.ErrNotFound):
		NotFound(c)
	case errors.Is(err, services.ErrForbidden):
		middleware.RedirectToLogin(c)
	default:
		logger.Error("Request failed", zap.String("path", c.Request.URL.Path), zap.Error(err))
		_ = c.Error(err)
		RenderError(c, http.StatusInternalServerError, "Something went wrong. Please try again later.")
	}
}

func pageNumber(c *gin.Context) int {
	return paginator.ParseNumber(c.Query("page"))
}

// paramID reads a positive numeric path parameter.
func paramID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// localPath accepts only same-site absolute paths, so next= cannot send the
// user to another host.
func localPath(p string) bool {
	return strings.HasPrefix(p, "/") && !strings.HasPrefix(p, "//") && !strings.HasPrefix(p, "/\\")
}

func postURL(id uint) string {
	return "/posts/" + strconv.FormatUint(uint64(id), 10) + "/"
}

func profileURL(username string) string {
	return "/profile/" + username + "/"
}
