// Package web renders the server-side pages from embedded templates.
package web

import (
	"embed"
	"io/fs"
	"net/http"

	"github.com/bizfish/tag-a-meal-app/domain"
	"github.com/gofiber/template/html/v2"
)

//go:embed templates/*.html
var templates embed.FS

// PageState is everything a page template may read. Handlers build it per
// request; templates never reach for global state.
type PageState struct {
	Title      string
	User       string
	Query      string
	Recipes    []domain.Recipe
	Recipe     *domain.Recipe
	Pagination *domain.Pagination
	Units      *domain.UnitsResponse
	Error      string
}

func (s PageState) HasPrev() bool {
	return s.Pagination != nil && s.Pagination.Page > 1
}

func (s PageState) HasNext() bool {
	return s.Pagination != nil && int64(s.Pagination.Page) < s.Pagination.TotalPages
}

// NewEngine builds the html/template engine over the embedded templates.
func NewEngine() *html.Engine {
	sub, err := fs.Sub(templates, "templates")
	if err != nil {
		panic(err)
	}
	engine := html.NewFileSystem(http.FS(sub), ".html")
	engine.AddFunc("stars", func(avg float64) string {
		out := ""
		for i := 1; i <= 5; i++ {
			if float64(i) <= avg+0.5 {
				out += "★"
			} else {
				out += "☆"
			}
		}
		return out
	})
	engine.AddFunc("deref", func(p *string) string {
		if p == nil {
			return ""
		}
		return *p
	})
	engine.AddFunc("add", func(a, b int) int { return a + b })
	return engine
}
