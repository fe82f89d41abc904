// Package view renders the server-side HTML pages.
package view

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"net/http"

	"github.com/vibast-solutions/ms-go-webauth/app/entity"

	"github.com/gorilla/csrf"
	"github.com/labstack/echo/v4"
)

//go:embed templates/*.html
var templateFS embed.FS

// Page names.
const (
	Home        = "home"
	Login       = "login"
	Signup      = "signup"
	Reset       = "reset"
	NewPassword = "new-password"
	Error       = "error"
)

var pages = []string{Home, Login, Signup, Reset, NewPassword, Error}

// Page is the data every template receives.
type Page struct {
	Path      string
	Title     string
	User      *entity.SessionUser
	Error     string
	Info      string
	Old       map[string]string
	Invalid   map[string]bool
	CSRFField template.HTML

	Status  int
	Message string
}

// Renderer implements echo.Renderer.
type Renderer struct {
	templates map[string]*template.Template
}

func NewRenderer() (*Renderer, error) {
	layout, err := template.ParseFS(templateFS, "templates/layout.html")
	if err != nil {
		return nil, fmt.Errorf("parse layout: %w", err)
	}

	r := &Renderer{templates: make(map[string]*template.Template, len(pages))}
	for _, name := range pages {
		t, err := layout.Clone()
		if err != nil {
			return nil, err
		}
		if t, err = t.ParseFS(templateFS, "templates/"+name+".html"); err != nil {
			return nil, fmt.Errorf("parse %s: %w", name, err)
		}
		r.templates[name] = t
	}
	return r, nil
}

func (r *Renderer) Render(w io.Writer, name string, data interface{}, c echo.Context) error {
	t, ok := r.templates[name]
	if !ok {
		return fmt.Errorf("unknown template %q", name)
	}

	page, ok := data.(*Page)
	if !ok {
		return fmt.Errorf("template %q expects *view.Page, got %T", name, data)
	}
	if page.Old == nil {
		page.Old = map[string]string{}
	}
	if page.Invalid == nil {
		page.Invalid = map[string]bool{}
	}
	if c != nil && page.CSRFField == "" {
		page.CSRFField = csrf.TemplateField(c.Request())
	}

	return t.ExecuteTemplate(w, "layout", page)
}

// ErrorPage builds the page shown for unhandled errors.
func ErrorPage(status int) *Page {
	return &Page{
		Title:   http.StatusText(status),
		Status:  status,
		Message: errorMessage(status),
	}
}

func errorMessage(status int) string {
	switch {
	case status == http.StatusNotFound:
		return "The page you are looking for does not exist."
	case status == http.StatusForbidden:
		return "Your request could not be verified. Please reload the page and try again."
	case status >= http.StatusInternalServerError:
		return "Something went wrong on our side. Please try again later."
	default:
		return http.StatusText(status)
	}
}
