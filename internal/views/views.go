// Package views loads the HTML templates.
//
// Every page is parsed together with layouts/base.html and all includes, so
// a page only defines the "title" and "content" blocks. The includes are
// also parsed on their own as fragments that handlers can render to bytes.
package views

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"path"
	"time"

	"github.com/gin-contrib/multitemplate"
)

const (
	baseLayout   = "templates/layouts/base.html"
	includesGlob = "templates/includes/*.html"
)

// Pages maps the name handlers render to its file under templates/.
var Pages = []string{
	"posts/index.html",
	"posts/group_list.html",
	"posts/profile.html",
	"posts/post_detail.html",
	"posts/create_post.html",
	"posts/follow.html",
	"users/login.html",
	"users/signup.html",
	"core/404.html",
	"error.html",
}

// URLFunc maps a stored image key to its public URL.
type URLFunc func(key string) string

type Views struct {
	pages     multitemplate.Render
	fragments *template.Template
}

func FuncMap(imageURL URLFunc) template.FuncMap {
	return template.FuncMap{
		"dict": func(values ...interface{}) (map[string]interface{}, error) {
			if len(values)%2 != 0 {
				return nil, fmt.Errorf("invalid dict call")
			}
			dict := make(map[string]interface{}, len(values)/2)
			for i := 0; i < len(values); i += 2 {
				key, ok := values[i].(string)
				if !ok {
					return nil, fmt.Errorf("dict keys must be strings")
				}
				dict[key] = values[i+1]
			}
			return dict, nil
		},
		"add": func(a, b int) int {
			return a + b
		},
		"date": func(t time.Time) string {
			return t.Format("02 Jan 2006")
		},
		"datetime": func(t time.Time) string {
			return t.Format("02 Jan 2006 15:04")
		},
		"markdown": Markdown,
		"imageURL": func(key string) string {
			if key == "" {
				return ""
			}
			return imageURL(key)
		},
		"derefUint": func(v *uint) uint {
			if v == nil {
				return 0
			}
			return *v
		},
	}
}

func New(fsys fs.FS, funcs template.FuncMap) (*Views, error) {
	includes, err := fs.Glob(fsys, includesGlob)
	if err != nil {
		return nil, err
	}

	pages := multitemplate.New()
	for _, name := range Pages {
		files := append([]string{baseLayout}, includes...)
		files = append(files, "templates/"+name)
		tmpl, err := template.New(path.Base(baseLayout)).Funcs(funcs).ParseFS(fsys, files...)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", name, err)
		}
		pages.Add(name, tmpl)
	}

	fragments, err := template.New("fragments").Funcs(funcs).ParseFS(fsys, includesGlob)
	if err != nil {
		return nil, fmt.Errorf("parse fragments: %w", err)
	}

	return &Views{pages: pages, fragments: fragments}, nil
}

// Renderer is the gin HTMLRender for the pages.
func (v *Views) Renderer() multitemplate.Render {
	return v.pages
}

// Fragment executes a named include block.
func (v *Views) Fragment(name string, data any) ([]byte, error) {
	var buf bytes.Buffer
	if err := v.fragments.ExecuteTemplate(&buf, name, data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
