package router

import (
	"io/fs"
	"net/http"

	"github.com/gin-contrib/gzip"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"yatube/internal/cache"
	"yatube/internal/config"
	"yatube/internal/handlers"
	"yatube/internal/middleware"
	"yatube/internal/repository"
	"yatube/internal/services"
	"yatube/internal/storage"
	"yatube/internal/views"
	"yatube/web"
)

type Deps struct {
	Config  *config.Config
	Logger  *zap.Logger
	Repo    *repository.Repository
	Cache   cache.Store
	Storage storage.Store
}

// New builds the engine with templates, sessions and every route.
func New(deps Deps) (*gin.Engine, error) {
	cfg := deps.Config

	v, err := views.New(web.FS, views.FuncMap(deps.Storage.URL))
	if err != nil {
		return nil, err
	}
	static, err := fs.Sub(web.FS, "static")
	if err != nil {
		return nil, err
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(gzip.Gzip(gzip.DefaultCompression))

	store := cookie.NewStore([]byte(cfg.Server.SessionSecret))
	store.Options(sessions.Options{Path: "/", MaxAge: 14 * 24 * 3600, HttpOnly: true, SameSite: http.SameSiteLaxMode})
	r.Use(sessions.Sessions(cfg.Server.SessionName, store))

	r.HTMLRender = v.Renderer()

	r.StaticFS("/static", http.FS(static))
	if local, ok := deps.Storage.(*storage.Local); ok {
		r.Static(local.URLPrefix(), local.Dir())
	}

	r.Use(middleware.LoadUser(deps.Repo.Users))

	listing := services.NewListing(deps.Repo, cfg.Listing.PageSize, deps.Logger)
	postHandler := handlers.NewPostHandler(
		listing,
		services.NewPosts(deps.Repo, deps.Storage, deps.Logger),
		services.NewComments(deps.Repo, deps.Logger),
		deps.Cache, cfg.Cache.TTL, v, deps.Logger,
	)
	profileHandler := handlers.NewProfileHandler(listing, services.NewFollows(deps.Repo, deps.Logger), deps.Logger)
	authHandler := handlers.NewAuthHandler(services.NewUsers(deps.Repo, deps.Logger), deps.Logger)
	adminHandler := handlers.NewAdminHandler(deps.Cache, deps.Logger)

	// Public
	r.GET("/", postHandler.Index)                        // global listing, cached
	r.GET("/group/:slug/", postHandler.GroupPosts)       // posts of one group
	r.GET("/profile/:username/", profileHandler.Profile) // posts of one author
	r.GET("/posts/:id/", postHandler.Detail)             // post with comments

	r.GET("/auth/signup/", authHandler.ShowSignup)
	r.POST("/auth/signup/", authHandler.Signup)
	r.GET("/auth/login/", authHandler.ShowLogin)
	r.POST("/auth/login/", authHandler.Login)
	r.GET("/auth/logout/", authHandler.Logout)

	// Logged-in users only; anonymous requests go to the login page
	authorized := r.Group("/")
	authorized.Use(middleware.AuthRequired())
	{
		authorized.GET("/create/", postHandler.ShowCreate)
		authorized.POST("/create/", postHandler.Create)
		authorized.GET("/posts/:id/edit/", postHandler.ShowEdit) // non-authors are sent to the detail page
		authorized.POST("/posts/:id/edit/", postHandler.Edit)
		authorized.POST("/posts/:id/comment/", postHandler.AddComment)

		authorized.GET("/follow/", profileHandler.Feed)
		authorized.GET("/profile/:username/follow/", profileHandler.Follow)
		authorized.POST("/profile/:username/follow/", profileHandler.Follow)
		authorized.GET("/profile/:username/unfollow/", profileHandler.Unfollow)
		authorized.POST("/profile/:username/unfollow/", profileHandler.Unfollow)

		authorized.POST("/admin/cache/clear/", adminHandler.ClearCache) // staff only
	}

	r.NoRoute(handlers.NotFound)

	return r, nil
}
