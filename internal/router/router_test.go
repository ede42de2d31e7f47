package router

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"yatube/internal/cache"
	"yatube/internal/config"
	"yatube/internal/models"
	"yatube/internal/repository"
	"yatube/internal/services"
	"yatube/internal/storage"
	"yatube/internal/testutil"
)

const password = "correct-horse"

type site struct {
	t     *testing.T
	srv   *httptest.Server
	db    *gorm.DB
	repo  *repository.Repository
	cache *cache.Memory
	media *storage.Local
}

func newSite(t *testing.T) *site {
	t.Helper()
	gdb := testutil.NewDB(t)
	repo := repository.New(gdb)
	pageCache, err := cache.NewMemory(100)
	require.NoError(t, err)
	media, err := storage.NewLocal(t.TempDir(), "/media")
	require.NoError(t, err)

	cfg := &config.Config{
		Server:  config.ServerConfig{SessionSecret: "test-secret", SessionName: "yatube_test"},
		Cache:   config.CacheConfig{TTL: time.Minute},
		Listing: config.ListingConfig{PageSize: 10},
	}
	engine, err := New(Deps{Config: cfg, Logger: zap.NewNop(), Repo: repo, Cache: pageCache, Storage: media})
	require.NoError(t, err)

	srv := httptest.NewServer(engine)
	t.Cleanup(srv.Close)
	return &site{t: t, srv: srv, db: gdb, repo: repo, cache: pageCache, media: media}
}

func (s *site) newUser(username string, staff bool) *models.User {
	s.t.Helper()
	hash, err := services.HashPassword(password)
	require.NoError(s.t, err)
	user := &models.User{Username: username, Password: hash, IsStaff: staff}
	require.NoError(s.t, s.db.Create(user).Error)
	return user
}

// client keeps cookies and does not follow redirects.
func (s *site) client() *http.Client {
	s.t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(s.t, err)
	return &http.Client{
		Jar: jar,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

func (s *site) loginAs(username string) *http.Client {
	s.t.Helper()
	c := s.client()
	resp, _ := s.post(c, "/auth/login/", url.Values{"username": {username}, "password": {password}})
	require.Equal(s.t, http.StatusFound, resp.StatusCode)
	return c
}

func (s *site) get(c *http.Client, path string) (*http.Response, string) {
	s.t.Helper()
	resp, err := c.Get(s.srv.URL + path)
	require.NoError(s.t, err)
	return resp, readBody(s.t, resp)
}

func (s *site) post(c *http.Client, path string, form url.Values) (*http.Response, string) {
	s.t.Helper()
	resp, err := c.PostForm(s.srv.URL+path, form)
	require.NoError(s.t, err)
	return resp, readBody(s.t, resp)
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(body)
}

func (s *site) countComments(postID uint) int64 {
	s.t.Helper()
	n, err := s.repo.Comments.CountByPost(context.Background(), postID)
	require.NoError(s.t, err)
	return n
}

func (s *site) countFollowing(userID uint) int64 {
	s.t.Helper()
	n, err := s.repo.Follows.CountFollowing(context.Background(), userID)
	require.NoError(s.t, err)
	return n
}

func TestCreatedPostIsNewestOnIndex(t *testing.T) {
	s := newSite(t)
	other := s.newUser("other", false)
	testutil.CreatePost(t, s.db, other, nil, "Older post", time.Now().Add(-time.Hour))
	s.newUser("author", false)
	c := s.loginAs("author")

	resp, _ := s.post(c, "/create/", url.Values{"text": {"Created post text"}})
	require.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/profile/author/", resp.Header.Get("Location"))

	resp, body := s.get(c, "/")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, strings.Count(body, "Created post text"))
	assert.Less(t, strings.Index(body, "Created post text"), strings.Index(body, "Older post"))
}

func TestCreatePostValidation(t *testing.T) {
	s := newSite(t)
	user := s.newUser("author", false)
	c := s.loginAs("author")

	resp, body := s.post(c, "/create/", url.Values{"text": {"   "}})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "This field is required.")

	resp, body = s.post(c, "/create/", url.Values{"text": {"hi"}, "group": {"42"}})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Select a valid choice.")

	n, err := s.repo.Posts.CountByAuthor(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestAnonymousCannotCreateOrComment(t *testing.T) {
	s := newSite(t)
	author := s.newUser("author", false)
	post := testutil.CreatePost(t, s.db, author, nil, "post", time.Now())
	anon := s.client()

	resp, _ := s.post(anon, "/posts/"+itoa(post.ID)+"/comment/", url.Values{"text": {"anonymous comment"}})
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.True(t, strings.HasPrefix(resp.Header.Get("Location"), "/auth/login/?next="))
	assert.Zero(t, s.countComments(post.ID))

	resp, _ = s.post(anon, "/posts/"+itoa(post.ID)+"/comment/", url.Values{"text": {""}})
	assert.Equal(t, http.StatusFound, resp.StatusCode, "redirect happens before validation")

	resp, _ = s.get(anon, "/create/")
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/auth/login/?next=%2Fcreate%2F", resp.Header.Get("Location"))
}

func TestCommentFlow(t *testing.T) {
	s := newSite(t)
	author := s.newUser("author", false)
	s.newUser("reader", false)
	post := testutil.CreatePost(t, s.db, author, nil, "post", time.Now())
	c := s.loginAs("reader")
	path := "/posts/" + itoa(post.ID) + "/"

	_, body := s.get(c, path)
	assert.Contains(t, body, "<title>Post post</title>")

	resp, body := s.post(c, path+"comment/", url.Values{"text": {"  "}})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "This field is required.")
	assert.Zero(t, s.countComments(post.ID))

	resp, _ = s.post(c, path+"comment/", url.Values{"text": {"Nice one"}})
	require.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, path, resp.Header.Get("Location"))
	assert.Equal(t, int64(1), s.countComments(post.ID))

	_, body = s.get(c, path)
	assert.Contains(t, body, "Nice one")

	resp, _ = s.post(c, "/posts/999/comment/", url.Values{"text": {"lost"}})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestEditByNonAuthorRedirects(t *testing.T) {
	s := newSite(t)
	author := s.newUser("author", false)
	s.newUser("intruder", false)
	post := testutil.CreatePost(t, s.db, author, nil, "original", time.Now())
	c := s.loginAs("intruder")
	path := "/posts/" + itoa(post.ID) + "/"

	resp, _ := s.get(c, path+"edit/")
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, path, resp.Header.Get("Location"))

	resp, _ = s.post(c, path+"edit/", url.Values{"text": {"hijacked"}})
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, path, resp.Header.Get("Location"))

	stored, err := s.repo.Posts.GetByID(context.Background(), post.ID)
	require.NoError(t, err)
	assert.Equal(t, "original", stored.Text)

	_, body := s.get(c, path)
	assert.NotContains(t, body, path+"edit/")
}

func TestEditByAuthor(t *testing.T) {
	s := newSite(t)
	author := s.newUser("author", false)
	group := testutil.CreateGroup(t, s.db, "cats")
	post := testutil.CreatePost(t, s.db, author, nil, "original", time.Now())
	c := s.loginAs("author")
	path := "/posts/" + itoa(post.ID) + "/"

	resp, body := s.get(c, path+"edit/")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, ">original</textarea>")

	resp, _ = s.post(c, path+"edit/", url.Values{"text": {"edited"}, "group": {itoa(group.ID)}})
	require.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, path, resp.Header.Get("Location"))

	stored, err := s.repo.Posts.GetByID(context.Background(), post.ID)
	require.NoError(t, err)
	assert.Equal(t, "edited", stored.Text)
	require.NotNil(t, stored.GroupID)
	assert.Equal(t, group.ID, *stored.GroupID)

	_, body = s.get(c, "/group/cats/")
	assert.Contains(t, body, "edited")
}

func TestFollowFlow(t *testing.T) {
	s := newSite(t)
	reader := s.newUser("reader", false)
	author := s.newUser("author", false)
	testutil.CreatePost(t, s.db, author, nil, "followed author post", time.Now())
	c := s.loginAs("reader")

	resp, _ := s.get(c, "/profile/reader/follow/")
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Zero(t, s.countFollowing(reader.ID), "self-follow")

	resp, _ = s.get(c, "/profile/author/unfollow/")
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Zero(t, s.countFollowing(reader.ID), "unfollow without edge")

	_, body := s.get(c, "/follow/")
	assert.NotContains(t, body, "followed author post")

	_, body = s.get(c, "/profile/author/")
	assert.Contains(t, body, "/profile/author/follow/")

	for i := 0; i < 2; i++ {
		resp, _ = s.post(c, "/profile/author/follow/", nil)
		assert.Equal(t, http.StatusFound, resp.StatusCode)
		assert.Equal(t, "/profile/author/", resp.Header.Get("Location"))
	}
	assert.Equal(t, int64(1), s.countFollowing(reader.ID))

	_, body = s.get(c, "/profile/author/")
	assert.Contains(t, body, "/profile/author/unfollow/")
	_, body = s.get(c, "/follow/")
	assert.Equal(t, 1, strings.Count(body, "followed author post"))

	s.get(c, "/profile/author/unfollow/")
	assert.Zero(t, s.countFollowing(reader.ID))

	resp, _ = s.get(s.client(), "/follow/")
	assert.Equal(t, http.StatusFound, resp.StatusCode)
}

func TestIndexCacheIsStaleUntilCleared(t *testing.T) {
	s := newSite(t)
	author := s.newUser("author", false)
	s.newUser("admin", true)
	testutil.CreatePost(t, s.db, author, nil, "first post", time.Now().Add(-time.Minute))
	c := s.client()

	_, body := s.get(c, "/")
	require.Contains(t, body, "first post")

	testutil.CreatePost(t, s.db, author, nil, "fresh post", time.Now())
	_, body = s.get(c, "/")
	assert.NotContains(t, body, "fresh post")

	_, body = s.get(c, "/?page=1")
	assert.NotContains(t, body, "fresh post", "same cache key")

	resp, _ := s.post(s.loginAs("author"), "/admin/cache/clear/", nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	_, body = s.get(c, "/")
	assert.NotContains(t, body, "fresh post")

	resp, _ = s.post(s.loginAs("admin"), "/admin/cache/clear/", nil)
	assert.Equal(t, http.StatusFound, resp.StatusCode)

	_, body = s.get(c, "/")
	assert.Contains(t, body, "fresh post")
}

func TestIndexPagination(t *testing.T) {
	s := newSite(t)
	author := s.newUser("author", false)
	testutil.CreatePosts(t, s.db, author, nil, "post", 13)
	c := s.client()

	_, body := s.get(c, "/")
	assert.Contains(t, body, "post 13")
	assert.NotContains(t, body, "post 3<")
	assert.Contains(t, body, `href="?page=2"`)

	_, body = s.get(c, "/?page=2")
	for _, text := range []string{"post 1<", "post 2<", "post 3<"} {
		assert.Contains(t, body, text)
	}
	assert.NotContains(t, body, "post 4<")
	assert.Contains(t, body, "11-13 of 13")

	resp, body := s.get(c, "/?page=99")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "post 1<")
}

func TestOutOfRangePagesShareClampedCacheEntry(t *testing.T) {
	s := newSite(t)
	author := s.newUser("author", false)
	testutil.CreatePosts(t, s.db, author, nil, "post", 13)
	c := s.client()

	_, body := s.get(c, "/?page=99")
	require.Contains(t, body, "post 1<")
	_, body = s.get(c, "/")
	require.Contains(t, body, "post 13<")

	testutil.CreatePost(t, s.db, author, nil, "fresh post", time.Now().Add(time.Minute))

	_, body = s.get(c, "/?page=2")
	assert.NotContains(t, body, "post 4<", "page 2 was cached by the ?page=99 request")
	for _, path := range []string{"/?page=0", "/?page=-3", "/?page=abc"} {
		_, body = s.get(c, path)
		assert.NotContains(t, body, "fresh post", path)
	}
	_, body = s.get(c, "/?page=99")
	assert.NotContains(t, body, "post 4<")
}

func TestNotFoundPages(t *testing.T) {
	s := newSite(t)
	c := s.client()

	for _, path := range []string{"/no/such/page/", "/group/missing/", "/profile/ghost/", "/posts/999/", "/posts/abc/"} {
		resp, body := s.get(c, path)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode, path)
		assert.Contains(t, body, "Page not found", path)
	}
}

func TestSignupLoginLogout(t *testing.T) {
	s := newSite(t)
	c := s.client()

	resp, body := s.post(c, "/auth/signup/", url.Values{
		"username":  {"leo"},
		"password1": {"short"},
		"password2": {"short"},
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "at least 8")

	resp, _ = s.post(c, "/auth/signup/", url.Values{
		"first_name": {"Leo"},
		"username":   {"leo"},
		"email":      {"leo@example.com"},
		"password1":  {"war-and-peace"},
		"password2":  {"war-and-peace"},
	})
	require.Equal(t, http.StatusFound, resp.StatusCode)

	resp, _ = s.get(c, "/create/")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	s.get(c, "/auth/logout/")
	resp, _ = s.get(c, "/create/")
	assert.Equal(t, http.StatusFound, resp.StatusCode)

	resp, body = s.post(c, "/auth/login/", url.Values{"username": {"leo"}, "password": {"wrong"}})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Please enter a correct username and password.")

	resp, _ = s.post(c, "/auth/login/", url.Values{"username": {"leo"}, "password": {"war-and-peace"}, "next": {"/follow/"}})
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/follow/", resp.Header.Get("Location"))

	resp, _ = s.post(s.client(), "/auth/login/", url.Values{"username": {"leo"}, "password": {"war-and-peace"}, "next": {"//evil.example.com/"}})
	assert.Equal(t, "/", resp.Header.Get("Location"))
}

var smallGIF = []byte{
	0x47, 0x49, 0x46, 0x38, 0x39, 0x61, 0x02, 0x00,
	0x01, 0x00, 0x80, 0x00, 0x00, 0x00, 0x00, 0x00,
	0xFF, 0xFF, 0xFF, 0x21, 0xF9, 0x04, 0x00, 0x00,
	0x00, 0x00, 0x00, 0x2C, 0x00, 0x00, 0x00, 0x00,
	0x02, 0x00, 0x01, 0x00, 0x00, 0x02, 0x02, 0x0C,
	0x0A, 0x00, 0x3B,
}

func multipartPost(t *testing.T, c *http.Client, target, text, filename string, data []byte) (*http.Response, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	require.NoError(t, w.WriteField("text", text))
	part, err := w.CreateFormFile("image", filename)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	resp, err := c.Post(target, w.FormDataContentType(), &buf)
	require.NoError(t, err)
	return resp, readBody(t, resp)
}

func TestCreatePostWithImage(t *testing.T) {
	s := newSite(t)
	user := s.newUser("author", false)
	c := s.loginAs("author")

	resp, body := multipartPost(t, c, s.srv.URL+"/create/", "not a picture", "notes.gif", []byte("plain text"))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Upload a valid image.")

	resp, _ = multipartPost(t, c, s.srv.URL+"/create/", "with a picture", "small.gif", smallGIF)
	require.Equal(t, http.StatusFound, resp.StatusCode)

	page, err := s.repo.Posts.ListByAuthor(context.Background(), user.ID, 10, 1)
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	post := page.Items[0]
	assert.True(t, strings.HasPrefix(post.Image, storage.PostsPrefix))

	_, body = s.get(c, "/posts/"+itoa(post.ID)+"/")
	assert.Contains(t, body, s.media.URL(post.Image))

	resp, body = s.get(c, s.media.URL(post.Image))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, string(smallGIF), body)
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
