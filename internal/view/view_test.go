package view

import (
	"context"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/litreads/internal/catalog"
	"github.com/utafrali/litreads/internal/domain"
	"github.com/utafrali/litreads/pkg/validator"
)

func newRenderer(t *testing.T) *Renderer {
	t.Helper()
	r, err := New()
	require.NoError(t, err)
	return r
}

func shipped(t *testing.T) *catalog.Catalog {
	t.Helper()
	c, err := catalog.Load(context.Background(), catalog.EmbeddedSource{})
	require.NoError(t, err)
	return c
}

func parse(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return doc
}

func TestMoney(t *testing.T) {
	assert.Equal(t, "R548.00", Money(decimal.NewFromInt(548)))
	assert.Equal(t, "R0.00", Money(decimal.Zero))
	assert.Equal(t, "R89.90", Money(decimal.RequireFromString("89.9")))
}

// ---------------------------------------------------------------------------
// Fragments
// ---------------------------------------------------------------------------

func TestHomeFeatured(t *testing.T) {
	r := newRenderer(t)
	html, err := r.HomeFeatured(shipped(t).Featured(catalog.FeaturedCount))
	require.NoError(t, err)

	doc := parse(t, html)
	titles := doc.Find(".card .title").Map(func(_ int, s *goquery.Selection) string { return s.Text() })
	assert.Equal(t, []string{"The Last Library", "Science for Everyone", "Tiny Tales", "Business Basics"}, titles)
	assert.Equal(t, "R199.00", doc.Find(".card .price").First().Text())

	href, _ := doc.Find(".card a.btn").First().Attr("href")
	assert.Equal(t, "/product?id=1", href)
}

func TestGrid_Cards(t *testing.T) {
	r := newRenderer(t)
	c := shipped(t)
	p, _ := c.Get(3)

	html, err := r.Grid([]domain.Product{p})
	require.NoError(t, err)
	doc := parse(t, html)

	assert.Equal(t, 1, doc.Find("#product-grid .card").Length())
	assert.Equal(t, 0, doc.Find("#no-results").Length())
	assert.Equal(t, "M. Child • Children", doc.Find(".card .meta").Text())
	assert.Equal(t, "R85.00", doc.Find(".card .price").Text())

	src, _ := doc.Find(".card img").Attr("src")
	assert.Equal(t, "/images/tiny%20tales.jpeg", src)

	form := doc.Find(`form[action="/cart/add"]`)
	id, _ := form.Find(`input[name="id"]`).Attr("value")
	qty, _ := form.Find(`input[name="quantity"]`).Attr("value")
	assert.Equal(t, "3", id)
	assert.Equal(t, "1", qty)
}

func TestGrid_EmptyShowsNoResults(t *testing.T) {
	r := newRenderer(t)

	html, err := r.Grid(nil)
	require.NoError(t, err)
	doc := parse(t, html)

	assert.Equal(t, 1, doc.Find("#no-results").Length())
	assert.Equal(t, 0, doc.Find("#product-grid").Length())
}

func TestGrid_EscapesText(t *testing.T) {
	r := newRenderer(t)
	hostile := domain.Product{
		ID:       9,
		Title:    `<script>alert("x")</script>`,
		Author:   `O'Brien & Sons`,
		Category: `<b>bold</b>`,
		Price:    decimal.NewFromInt(10),
	}

	html, err := r.Grid([]domain.Product{hostile})
	require.NoError(t, err)

	assert.NotContains(t, html, "<script>")
	assert.NotContains(t, html, "<b>bold</b>")
	assert.Contains(t, html, "&lt;script&gt;")
	assert.Contains(t, html, "O&#39;Brien &amp; Sons")

	doc := parse(t, html)
	assert.Equal(t, `<script>alert("x")</script>`, doc.Find(".card .title").Text())
	alt, _ := doc.Find(".card img").Attr("alt")
	assert.Equal(t, `<script>alert("x")</script>`, alt)
}

func TestDetail_Found(t *testing.T) {
	r := newRenderer(t)
	p, _ := shipped(t).Get(6)

	html, err := r.Detail(&p)
	require.NoError(t, err)
	doc := parse(t, html)

	assert.Equal(t, "Space Explained", doc.Find("h2").Text())
	assert.Equal(t, "A visual guide to the universe.", doc.Find(".info p").Text())
	assert.Equal(t, "R220.00", doc.Find(".price").Text())

	qty := doc.Find("#pd-qty")
	minAttr, _ := qty.Attr("min")
	val, _ := qty.Attr("value")
	assert.Equal(t, "1", minAttr)
	assert.Equal(t, "1", val)
}

func TestDetail_NotFound(t *testing.T) {
	r := newRenderer(t)

	html, err := r.Detail(nil)
	require.NoError(t, err)
	assert.Equal(t, "Product not found.", parse(t, html).Find("p").Text())
}

func TestCart_RowsAndTotal(t *testing.T) {
	r := newRenderer(t)
	c := shipped(t)
	cart := domain.Cart{Lines: []domain.CartLine{{ProductID: 1, Quantity: 2}, {ProductID: 4, Quantity: 1}}}

	html, err := r.Cart(domain.PriceCart(cart, c.Get))
	require.NoError(t, err)
	doc := parse(t, html)

	rows := doc.Find(".cart-item")
	require.Equal(t, 2, rows.Length())
	assert.Equal(t, "R548.00", doc.Find("#cart-total").Text())

	first := rows.First()
	assert.Equal(t, "The Last Library", first.Find(".title").Text())
	assert.Equal(t, "2", first.Find(".qty").Text())
	assert.Equal(t, "R398.00", first.Find(".subtotal").Text())

	dec, _ := first.Find("button.decrement").Parent().Find(`input[name="quantity"]`).Attr("value")
	inc, _ := first.Find("button.increment").Parent().Find(`input[name="quantity"]`).Attr("value")
	assert.Equal(t, "1", dec)
	assert.Equal(t, "3", inc)

	// Decrement never drops below 1.
	second := rows.Eq(1)
	dec, _ = second.Find("button.decrement").Parent().Find(`input[name="quantity"]`).Attr("value")
	assert.Equal(t, "1", dec)
}

func TestCart_SkipsOrphans(t *testing.T) {
	r := newRenderer(t)
	cart := domain.Cart{Lines: []domain.CartLine{{ProductID: 2, Quantity: 1}, {ProductID: 77, Quantity: 5}}}

	html, err := r.Cart(domain.PriceCart(cart, shipped(t).Get))
	require.NoError(t, err)
	doc := parse(t, html)

	assert.Equal(t, 1, doc.Find(".cart-item").Length())
	assert.Equal(t, "R120.00", doc.Find("#cart-total").Text())
}

func TestCart_Empty(t *testing.T) {
	r := newRenderer(t)

	html, err := r.Cart(domain.CartView{Total: decimal.Zero})
	require.NoError(t, err)
	doc := parse(t, html)

	assert.Equal(t, 0, doc.Find(".cart-item").Length())
	assert.Contains(t, doc.Find("#cart-items").Text(), "Your cart is empty.")
	href, _ := doc.Find("#cart-items a").Attr("href")
	assert.Equal(t, "/products", href)
	assert.Equal(t, "R0.00", doc.Find("#cart-total").Text())
}

// ---------------------------------------------------------------------------
// Pages
// ---------------------------------------------------------------------------

func renderPage(t *testing.T, r *Renderer, name string, data PageData) *goquery.Document {
	t.Helper()
	var sb strings.Builder
	require.NoError(t, r.WritePage(&sb, name, data))
	return parse(t, sb.String())
}

func TestPage_LayoutCarriesBadgeAndDarkMode(t *testing.T) {
	r := newRenderer(t)
	c := shipped(t)

	doc := renderPage(t, r, PageHome, PageData{
		Title:      "Home",
		Active:     "home",
		CartCount:  3,
		DarkMode:   true,
		Categories: c.Categories(),
		Content:    HomeContent{Featured: c.Featured(catalog.FeaturedCount)},
	})

	assert.Equal(t, "3", doc.Find("#cart-count").Text())
	assert.True(t, doc.Find("body").HasClass("dark-mode"))
	assert.True(t, doc.Find("html").HasClass("dark-mode"))
	assert.Equal(t, 4, doc.Find("#home-featured .card").Length())
	assert.Equal(t, 1, doc.Find("#newsletter-form").Length())
	assert.Equal(t, "Home | LitReads", doc.Find("title").Text())
	assert.Equal(t, 4, doc.Find("ul.categories li").Length())
}

func TestPage_LightModeHasNoClass(t *testing.T) {
	r := newRenderer(t)
	doc := renderPage(t, r, PageAbout, PageData{Content: AboutContent{Body: r.About()}})

	assert.False(t, doc.Find("body").HasClass("dark-mode"))
	assert.Equal(t, "About LitReads", doc.Find("article.about h1").Text())
}

func TestPage_ProductsControls(t *testing.T) {
	r := newRenderer(t)
	c := shipped(t)

	criteria := domain.FilterCriteria{Category: "science", Sort: domain.SortPriceDesc}
	doc := renderPage(t, r, PageProducts, PageData{
		Categories: c.Categories(),
		Content:    NewProductsContent(criteria, nil, c.MaxPrice()),
	})

	options := doc.Find("#category-filter option")
	assert.Equal(t, 5, options.Length())
	assert.Equal(t, "Science", doc.Find("#category-filter option[selected]").Text())
	sortVal, _ := doc.Find("#sort option[selected]").Attr("value")
	assert.Equal(t, "high", sortVal)

	maxAttr, _ := doc.Find("#price-filter").Attr("max")
	val, _ := doc.Find("#price-filter").Attr("value")
	assert.Equal(t, "220", maxAttr)
	assert.Equal(t, "220", val)
	assert.Equal(t, "220", doc.Find("#price-value").Text())
	assert.Equal(t, 1, doc.Find("#grid-region #no-results").Length())
}

func TestPage_ProductsSliderFollowsMaxPrice(t *testing.T) {
	r := newRenderer(t)
	c := shipped(t)
	limit := decimal.NewFromInt(150)

	doc := renderPage(t, r, PageProducts, PageData{
		Categories: c.Categories(),
		Content:    NewProductsContent(domain.FilterCriteria{MaxPrice: &limit}, c.All(), c.MaxPrice()),
	})

	val, _ := doc.Find("#price-filter").Attr("value")
	assert.Equal(t, "150", val)
	assert.Equal(t, 6, doc.Find("#product-grid .card").Length())
}

func TestPage_CheckoutInvalidFocusesFirstField(t *testing.T) {
	r := newRenderer(t)

	form := domain.CheckoutForm{FullName: "Thandi", Email: "nope", Address: "1 Main Rd"}
	err := validator.Validate(form)
	var ve *validator.ValidationError
	require.ErrorAs(t, err, &ve)

	values := map[string]string{"full_name": form.FullName, "email": form.Email, "address": form.Address}
	doc := renderPage(t, r, PageCheckout, PageData{Content: CheckoutContent{Form: Invalid(values, ve)}})

	email := doc.Find("#email")
	_, focused := email.Attr("autofocus")
	invalid, _ := email.Attr("aria-invalid")
	value, _ := email.Attr("value")
	assert.True(t, focused)
	assert.Equal(t, "true", invalid)
	assert.Equal(t, "nope", value)
	assert.Equal(t, "must be a valid email address", doc.Find("#email-error").Text())

	_, cityFocused := doc.Find("#city").Attr("autofocus")
	cityInvalid, _ := doc.Find("#city").Attr("aria-invalid")
	assert.False(t, cityFocused)
	assert.Equal(t, "true", cityInvalid)

	_, nameInvalid := doc.Find("#full_name").Attr("aria-invalid")
	assert.False(t, nameInvalid)
	assert.Equal(t, 0, doc.Find("#checkout-confirm").Length())
}

func TestPage_CheckoutConfirmed(t *testing.T) {
	r := newRenderer(t)
	order := domain.CartView{Total: decimal.NewFromInt(548), Count: 3}

	doc := renderPage(t, r, PageCheckout, PageData{Content: CheckoutContent{Form: Confirmed(), Order: order}})

	confirm := doc.Find("#checkout-confirm")
	require.Equal(t, 1, confirm.Length())
	assert.Contains(t, confirm.Text(), "R548.00")

	value, _ := doc.Find("#full_name").Attr("value")
	assert.Empty(t, value)
}

func TestPage_ContactConfirmed(t *testing.T) {
	r := newRenderer(t)
	doc := renderPage(t, r, PageContact, PageData{Content: ContactContent{Form: Confirmed()}})

	assert.Equal(t, 1, doc.Find("#contact-confirm").Length())
	assert.Empty(t, doc.Find("#message").Text())
}

func TestPage_Detail(t *testing.T) {
	r := newRenderer(t)
	doc := renderPage(t, r, PageDetail, PageData{Content: DetailContent{}})
	assert.Equal(t, "Product not found.", doc.Find("#product-detail p").Text())
}

func TestPage_Unknown(t *testing.T) {
	r := newRenderer(t)
	var sb strings.Builder
	assert.Error(t, r.WritePage(&sb, "nope", PageData{}))
}

func TestNewsletterFragment_Confirmed(t *testing.T) {
	r := newRenderer(t)
	var sb strings.Builder
	require.NoError(t, r.WriteFragment(&sb, FragmentNewsletter, Confirmed()))

	doc := parse(t, sb.String())
	assert.Equal(t, "Thanks for subscribing! (simulated)", doc.Find("#newsletter-confirm").Text())
	value, _ := doc.Find("#newsletter-email").Attr("value")
	assert.Empty(t, value)
}

func TestStaticFS(t *testing.T) {
	f, err := StaticFS().Open("site.css")
	require.NoError(t, err)
	require.NoError(t, f.Close())
}
