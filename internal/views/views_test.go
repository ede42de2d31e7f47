package views

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"yatube/internal/forms"
	"yatube/internal/models"
	"yatube/internal/paginator"
	"yatube/web"
)

func loadViews(t *testing.T) *Views {
	t.Helper()
	v, err := New(web.FS, FuncMap(func(key string) string { return "/media/" + key }))
	require.NoError(t, err)
	return v
}

func TestAllPagesParse(t *testing.T) {
	v := loadViews(t)
	for _, name := range Pages {
		assert.Contains(t, v.Renderer(), name)
	}
}

func TestPostListFragment(t *testing.T) {
	v := loadViews(t)
	author := &models.User{ID: 1, Username: "leo", FirstName: "Leo"}
	group := &models.Group{ID: 2, Title: "Cats", Slug: "cats"}
	authorID, groupID := author.ID, group.ID
	posts := []models.Post{
		{ID: 3, Text: "second *post*", PubDate: time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC), AuthorID: &authorID, Author: author, GroupID: &groupID, Group: group, Image: "posts/a.gif"},
		{ID: 2, Text: "first post", PubDate: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)},
	}
	page := paginator.Slice(posts, 1, 1)

	out, err := v.Fragment("post_list", map[string]any{"Page": page, "ShowGroup": true})
	require.NoError(t, err)
	html := string(out)

	assert.Contains(t, html, "<em>post</em>")
	assert.NotContains(t, html, "first post")
	assert.Contains(t, html, `href="/profile/leo/"`)
	assert.Contains(t, html, `href="/group/cats/"`)
	assert.Contains(t, html, `src="/media/posts/a.gif"`)
	assert.Contains(t, html, "02 May 2024")
	assert.Contains(t, html, `href="?page=2"`)
}

func TestPostListFragmentEmpty(t *testing.T) {
	v := loadViews(t)
	page := paginator.Slice([]models.Post{}, 10, 1)

	out, err := v.Fragment("post_list", map[string]any{"Page": page})
	require.NoError(t, err)
	assert.Contains(t, string(out), "No posts yet.")
	assert.NotContains(t, string(out), "paginator")
}

func TestCreatePostPageRenders(t *testing.T) {
	v := loadViews(t)
	tmpl := v.Renderer()["posts/create_post.html"]
	require.NotNil(t, tmpl)

	var buf bytes.Buffer
	err := tmpl.Execute(&buf, map[string]any{
		"CurrentPath": "/create/",
		"IsEdit":      false,
		"Form":        forms.PostForm{Text: "draft", Group: 2},
		"Errors":      forms.FieldErrors{"text": "This field is required."},
		"Groups":      []models.Group{{ID: 1, Title: "Dogs"}, {ID: 2, Title: "Cats"}},
	})
	require.NoError(t, err)
	html := buf.String()

	assert.Contains(t, html, "<title>New post</title>")
	assert.Contains(t, html, `<option value="2" selected>Cats</option>`)
	assert.Contains(t, html, "This field is required.")
	assert.Contains(t, html, ">draft</textarea>")
}

func TestMarkdown(t *testing.T) {
	assert.Equal(t, "", string(Markdown("   ")))

	out := string(Markdown("hello\nworld"))
	assert.Contains(t, out, "<p>hello<br")

	out = string(Markdown("<script>alert(1)</script>\n\n**bold**"))
	assert.NotContains(t, out, "<script>")
	assert.Contains(t, out, "<strong>bold</strong>")

	out = string(Markdown("![cat](https://example.com/cat.png)"))
	assert.Contains(t, out, `loading="lazy"`)
	assert.Contains(t, out, `referrerpolicy="no-referrer"`)
	assert.True(t, strings.HasPrefix(out, "<p>"))
}
