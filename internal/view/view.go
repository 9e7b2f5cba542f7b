// Package view renders storefront pages and the fragments htmx swaps in.
package view

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"net/url"
	"path"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/utafrali/litreads/internal/domain"
)

//go:embed templates
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// Page names.
const (
	PageHome     = "home"
	PageProducts = "products"
	PageDetail   = "detail"
	PageCart     = "cart"
	PageCheckout = "checkout"
	PageContact  = "contact"
	PageAbout    = "about"
	PageError    = "error"
)

// Fragment names.
const (
	FragmentFeatured   = "featured"
	FragmentGrid       = "grid"
	FragmentDetail     = "detail"
	FragmentCart       = "cart"
	FragmentNewsletter = "newsletter"
)

var pageNames = []string{PageHome, PageProducts, PageDetail, PageCart, PageCheckout, PageContact, PageAbout, PageError}

// Money formats a price the way the storefront shows it: R548.00.
func Money(d decimal.Decimal) string {
	return "R" + d.StringFixed(2)
}

func funcs() template.FuncMap {
	return template.FuncMap{
		"money":      Money,
		"productURL": func(id int) string { return "/product?id=" + strconv.Itoa(id) },
		"imageURL":   imageURL,
		"selected":   func(a, b string) bool { return domain.NormalizeCategory(a) == domain.NormalizeCategory(b) },
		"field":      func(f FormState, name string) Field { return Field{Name: name, Form: f} },
	}
}

// imageURL roots a catalog image path under /images/ so it resolves the
// same from every page.
func imageURL(p string) string {
	if p == "" || strings.Contains(p, "://") {
		return p
	}
	u := url.URL{Path: path.Join("/", p)}
	return u.EscapedPath()
}

// Renderer executes the embedded templates. It is safe for concurrent use.
type Renderer struct {
	fragments *template.Template
	pages     map[string]*template.Template
	about     template.HTML
}

// New parses every template and renders the About content once.
func New() (*Renderer, error) {
	base, err := template.New("_root").Funcs(funcs()).ParseFS(templateFS, "templates/layout.html", "templates/partials/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse layout templates: %w", err)
	}

	r := &Renderer{fragments: base, pages: make(map[string]*template.Template, len(pageNames))}
	for _, name := range pageNames {
		t, err := base.Clone()
		if err != nil {
			return nil, fmt.Errorf("clone layout for %s: %w", name, err)
		}
		if _, err := t.ParseFS(templateFS, "templates/pages/"+name+".html"); err != nil {
			return nil, fmt.Errorf("parse page %s: %w", name, err)
		}
		r.pages[name] = t
	}

	r.about, err = RenderMarkdown(aboutMarkdown)
	if err != nil {
		return nil, fmt.Errorf("render about content: %w", err)
	}
	return r, nil
}

// StaticFS serves stylesheet and script assets.
func StaticFS() fs.FS {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return sub
}

// About returns the sanitized About page body.
func (r *Renderer) About() template.HTML {
	return r.about
}

// HomeFeatured renders the featured cards.
func (r *Renderer) HomeFeatured(products []domain.Product) (string, error) {
	return r.fragmentString(FragmentFeatured, products)
}

// Grid renders the product grid, or the #no-results indicator when products is empty.
func (r *Renderer) Grid(products []domain.Product) (string, error) {
	return r.fragmentString(FragmentGrid, products)
}

// Detail renders one product, or "Product not found." when p is nil.
func (r *Renderer) Detail(p *domain.Product) (string, error) {
	return r.fragmentString(FragmentDetail, p)
}

// Cart renders cart rows and the grand total.
func (r *Renderer) Cart(v domain.CartView) (string, error) {
	return r.fragmentString(FragmentCart, v)
}

// WriteFragment renders a fragment to w. Output is buffered so a template
// error never leaves half a response.
func (r *Renderer) WriteFragment(w io.Writer, name string, data any) error {
	var buf bytes.Buffer
	if err := r.fragments.ExecuteTemplate(&buf, name, data); err != nil {
		return fmt.Errorf("render fragment %s: %w", name, err)
	}
	_, err := buf.WriteTo(w)
	return err
}

// WritePage renders a full page to w.
func (r *Renderer) WritePage(w io.Writer, name string, data PageData) error {
	t, ok := r.pages[name]
	if !ok {
		return fmt.Errorf("unknown page %q", name)
	}
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", data); err != nil {
		return fmt.Errorf("render page %s: %w", name, err)
	}
	_, err := buf.WriteTo(w)
	return err
}

func (r *Renderer) fragmentString(name string, data any) (string, error) {
	var sb strings.Builder
	if err := r.WriteFragment(&sb, name, data); err != nil {
		return "", err
	}
	return sb.String(), nil
}
