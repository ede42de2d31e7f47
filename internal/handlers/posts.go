package handlers

import (
	"context"
	"errors"
	"html/template"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"yatube/internal/authz"
	"yatube/internal/cache"
	"yatube/internal/forms"
	"yatube/internal/middleware"
	"yatube/internal/services"
	"yatube/internal/views"
)

type PostHandler struct {
	listing  *services.Listing
	posts    *services.Posts
	comments *services.Comments
	cache    cache.Store
	cacheTTL time.Duration
	views    *views.Views
	logger   *zap.Logger
}

func NewPostHandler(listing *services.Listing, posts *services.Posts, comments *services.Comments,
	store cache.Store, cacheTTL time.Duration, v *views.Views, logger *zap.Logger) *PostHandler {
	return &PostHandler{
		listing:  listing,
		posts:    posts,
		comments: comments,
		cache:    store,
		cacheTTL: cacheTTL,
		views:    v,
		logger:   logger,
	}
}

// Index serves the global listing. The rendered post list is cached per page
// number for cacheTTL and served verbatim until it expires or the cache is
// cleared, even if posts change meanwhile. Out-of-range numbers share the
// entry of the page they clamp to.
func (h *PostHandler) Index(c *gin.Context) {
	ctx := c.Request.Context()
	number := max(pageNumber(c), 1)

	if cached, ok := h.cachedIndex(ctx, number); ok {
		Render(c, http.StatusOK, "posts/index.html", gin.H{"PostList": template.HTML(cached)})
		return
	}

	page, err := h.listing.Index(ctx, number)
	if err != nil {
		fail(c, h.logger, err)
		return
	}
	if page.Number != number {
		if cached, ok := h.cachedIndex(ctx, page.Number); ok {
			Render(c, http.StatusOK, "posts/index.html", gin.H{"PostList": template.HTML(cached)})
			return
		}
	}
	fragment, err := h.views.Fragment("post_list", gin.H{"Page": page, "ShowGroup": true})
	if err != nil {
		fail(c, h.logger, err)
		return
	}
	key := cache.IndexPage(page.Number)
	if err := h.cache.Set(ctx, key, fragment, h.cacheTTL); err != nil {
		h.logger.Sugar().Errorf("write page cache %s: %v", key, err)
	}

	Render(c, http.StatusOK, "posts/index.html", gin.H{"PostList": template.HTML(fragment)})
}

func (h *PostHandler) cachedIndex(ctx context.Context, number int) ([]byte, bool) {
	key := cache.IndexPage(number)
	cached, ok, err := h.cache.Get(ctx, key)
	if err != nil {
		h.logger.Sugar().Errorf("read page cache %s: %v", key, err)
		return nil, false
	}
	return cached, ok
}

func (h *PostHandler) GroupPosts(c *gin.Context) {
	listing, err := h.listing.Group(c.Request.Context(), c.Param("slug"), pageNumber(c))
	if err != nil {
		fail(c, h.logger, err)
		return
	}
	Render(c, http.StatusOK, "posts/group_list.html", gin.H{
		"Group":     listing.Group,
		"Page":      listing.Page,
		"ShowGroup": false,
	})
}

func (h *PostHandler) Detail(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		NotFound(c)
		return
	}
	h.renderDetail(c, id, forms.CommentForm{}, forms.FieldErrors{})
}

func (h *PostHandler) renderDetail(c *gin.Context, id uint, form forms.CommentForm, errs forms.FieldErrors) {
	detail, err := h.listing.Detail(c.Request.Context(), id)
	if err != nil {
		fail(c, h.logger, err)
		return
	}
	Render(c, http.StatusOK, "posts/post_detail.html", gin.H{
		"Post":            detail.Post,
		"Comments":        detail.Comments,
		"AuthorPostCount": detail.AuthorPostCount,
		"CanEdit":         authz.CanEditPost(middleware.CurrentUser(c), detail.Post),
		"Form":            form,
		"Errors":          errs,
	})
}

func (h *PostHandler) ShowCreate(c *gin.Context) {
	h.renderForm(c, gin.H{"IsEdit": false}, forms.PostForm{}, forms.FieldErrors{})
}

func (h *PostHandler) Create(c *gin.Context) {
	user := middleware.CurrentUser(c)
	page := gin.H{"IsEdit": false}

	var form forms.PostForm
	if errs := forms.Bind(c, &form); errs != nil {
		h.renderForm(c, page, form, errs)
		return
	}
	upload, errs := readUpload(c)
	if errs != nil {
		h.renderForm(c, page, form, errs)
		return
	}
	if upload != nil {
		defer upload.close()
	}

	_, err := h.posts.Create(c.Request.Context(), user, services.PostInput{
		Text:    form.Text,
		GroupID: form.Group,
		Image:   upload.input(),
	})
	if errs := formErrors(err); errs != nil {
		h.renderForm(c, page, form, errs)
		return
	}
	if err != nil {
		fail(c, h.logger, err)
		return
	}

	c.Redirect(http.StatusFound, profileURL(user.Username))
}

func (h *PostHandler) ShowEdit(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		NotFound(c)
		return
	}
	post, err := h.posts.Get(c.Request.Context(), id)
	if err != nil {
		fail(c, h.logger, err)
		return
	}
	if !authz.CanEditPost(middleware.CurrentUser(c), post) {
		c.Redirect(http.StatusFound, postURL(id))
		return
	}

	form := forms.PostForm{Text: post.Text}
	if post.GroupID != nil {
		form.Group = *post.GroupID
	}
	h.renderForm(c, gin.H{"IsEdit": true, "PostID": id, "Image": post.Image}, form, forms.FieldErrors{})
}

// Edit updates the post for its author. Anyone else is sent to the detail
// page before the form is even read.
func (h *PostHandler) Edit(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		NotFound(c)
		return
	}
	ctx := c.Request.Context()
	user := middleware.CurrentUser(c)

	post, err := h.posts.Get(ctx, id)
	if err != nil {
		fail(c, h.logger, err)
		return
	}
	if !authz.CanEditPost(user, post) {
		c.Redirect(http.StatusFound, postURL(id))
		return
	}

	page := gin.H{"IsEdit": true, "PostID": id, "Image": post.Image}
	var form forms.PostForm
	if errs := forms.Bind(c, &form); errs != nil {
		h.renderForm(c, page, form, errs)
		return
	}
	upload, errs := readUpload(c)
	if errs != nil {
		h.renderForm(c, page, form, errs)
		return
	}
	if upload != nil {
		defer upload.close()
	}

	_, err = h.posts.Update(ctx, user, id, services.PostInput{
		Text:    form.Text,
		GroupID: form.Group,
		Image:   upload.input(),
	})
	if errors.Is(err, services.ErrForbidden) {
		c.Redirect(http.StatusFound, postURL(id))
		return
	}
	if errs := formErrors(err); errs != nil {
		h.renderForm(c, page, form, errs)
		return
	}
	if err != nil {
		fail(c, h.logger, err)
		return
	}

	c.Redirect(http.StatusFound, postURL(id))
}

func (h *PostHandler) AddComment(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		NotFound(c)
		return
	}

	var form forms.CommentForm
	if errs := forms.Bind(c, &form); errs != nil {
		h.renderDetail(c, id, form, errs)
		return
	}

	if _, err := h.comments.Add(c.Request.Context(), middleware.CurrentUser(c), id, form.Text); err != nil {
		fail(c, h.logger, err)
		return
	}
	c.Redirect(http.StatusFound, postURL(id))
}

func (h *PostHandler) renderForm(c *gin.Context, page gin.H, form forms.PostForm, errs forms.FieldErrors) {
	groups, err := h.posts.Groups(c.Request.Context())
	if err != nil {
		fail(c, h.logger, err)
		return
	}
	page["Form"] = form
	page["Errors"] = errs
	page["Groups"] = groups
	Render(c, http.StatusOK, "posts/create_post.html", page)
}

// formErrors turns the service's input errors into field messages.
func formErrors(err error) forms.FieldErrors {
	switch {
	case errors.Is(err, services.ErrInvalidGroup):
		return forms.FieldErrors{"group": "Select a valid choice. That choice is not one of the available choices."}
	case errors.Is(err, services.ErrInvalidImage):
		return forms.FieldErrors{"image": "Upload a valid image. The file you uploaded was either not an image or a corrupted image."}
	}
	return nil
}

type upload struct {
	file   multipart.File
	header *multipart.FileHeader
	mime   string
}

// readUpload opens the optional image field. The content type is sniffed
// from the bytes, not taken from the client.
func readUpload(c *gin.Context) (*upload, forms.FieldErrors) {
	header, err := c.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return nil, nil
	}
	if err != nil {
		return nil, forms.FieldErrors{"image": "The submitted file could not be read."}
	}
	if header.Size == 0 {
		return nil, nil
	}

	f, err := header.Open()
	if err != nil {
		return nil, forms.FieldErrors{"image": "The submitted file could not be read."}
	}
	mt, err := mimetype.DetectReader(f)
	if err == nil {
		_, err = f.Seek(0, io.SeekStart)
	}
	if err != nil {
		f.Close()
		return nil, forms.FieldErrors{"image": "The submitted file could not be read."}
	}
	return &upload{file: f, header: header, mime: mt.String()}, nil
}

func (u *upload) input() *services.Upload {
	if u == nil {
		return nil
	}
	return &services.Upload{
		Filename:    u.header.Filename,
		ContentType: u.mime,
		Size:        u.header.Size,
		Body:        u.file,
	}
}

func (u *upload) close() {
	u.file.Close()
}
