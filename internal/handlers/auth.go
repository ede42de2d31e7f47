package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"yatube/internal/forms"
	"yatube/internal/middleware"
	"yatube/internal/models"
	"yatube/internal/services"
)

type AuthHandler struct {
	users  *services.Users
	logger *zap.Logger
}

func NewAuthHandler(users *services.Users, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{users: users, logger: logger}
}

func (h *AuthHandler) ShowSignup(c *gin.Context) {
	Render(c, http.StatusOK, "users/signup.html", gin.H{
		"Form":   forms.SignupForm{},
		"Errors": forms.FieldErrors{},
	})
}

func (h *AuthHandler) Signup(c *gin.Context) {
	var form forms.SignupForm
	errs := forms.Bind(c, &form)
	if errs == nil {
		user, err := h.users.Signup(c.Request.Context(), services.SignupInput{
			FirstName: form.FirstName,
			LastName:  form.LastName,
			Username:  form.Username,
			Email:     form.Email,
			Password:  form.Password1,
		})
		switch {
		case errors.Is(err, services.ErrUsernameTaken):
			errs = forms.FieldErrors{"username": "A user with that username already exists."}
		case err != nil:
			fail(c, h.logger, err)
			return
		default:
			h.login(c, user)
			c.Redirect(http.StatusFound, "/")
			return
		}
	}

	form.Password1, form.Password2 = "", ""
	Render(c, http.StatusOK, "users/signup.html", gin.H{"Form": form, "Errors": errs})
}

func (h *AuthHandler) ShowLogin(c *gin.Context) {
	Render(c, http.StatusOK, "users/login.html", gin.H{
		"Form":   forms.LoginForm{},
		"Errors": forms.FieldErrors{},
		"Next":   c.Query("next"),
	})
}

// Login starts a session and follows next when it is a local path.
func (h *AuthHandler) Login(c *gin.Context) {
	next := c.PostForm("next")

	var form forms.LoginForm
	errs := forms.Bind(c, &form)
	if errs == nil {
		user, err := h.users.Authenticate(c.Request.Context(), form.Username, form.Password)
		switch {
		case errors.Is(err, services.ErrInvalidCredentials):
			errs = forms.FieldErrors{forms.FormErrorKey: "Please enter a correct username and password. Note that both fields may be case-sensitive."}
		case err != nil:
			fail(c, h.logger, err)
			return
		default:
			h.login(c, user)
			if !localPath(next) {
				next = "/"
			}
			c.Redirect(http.StatusFound, next)
			return
		}
	}

	form.Password = ""
	Render(c, http.StatusOK, "users/login.html", gin.H{"Form": form, "Errors": errs, "Next": next})
}

func (h *AuthHandler) Logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	_ = session.Save()
	c.Redirect(http.StatusFound, "/")
}

func (h *AuthHandler) login(c *gin.Context, user *models.User) {
	session := sessions.Default(c)
	session.Clear()
	session.Set(middleware.SessionUserKey, user.ID)
	if err := session.Save(); err != nil {
		h.logger.Sugar().Errorf("save session for %s: %v", user.Username, err)
	}
}
