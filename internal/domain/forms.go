package domain

import (
	"net/url"
	"strings"
)

// CheckoutForm is the simulated checkout submission.
type CheckoutForm struct {
	FullName   string `form:"full_name" json:"full_name" validate:"required,max=120"`
	Email      string `form:"email" json:"email" validate:"required,email"`
	Address    string `form:"address" json:"address" validate:"required,max=200"`
	City       string `form:"city" json:"city" validate:"required,max=80"`
	PostalCode string `form:"postal_code" json:"postal_code" validate:"required,max=10"`
	Phone      string `form:"phone" json:"phone" validate:"omitempty,max=20"`
}

// ContactForm is the simulated contact message.
type ContactForm struct {
	Name    string `form:"name" json:"name" validate:"required,max=120"`
	Email   string `form:"email" json:"email" validate:"required,email"`
	Message string `form:"message" json:"message" validate:"required,min=10,max=2000"`
}

// NewsletterForm is the simulated newsletter signup.
type NewsletterForm struct {
	Email string `form:"email" json:"email" validate:"required,email"`
}

func field(v url.Values, name string) string {
	return strings.TrimSpace(v.Get(name))
}

// CheckoutFormFrom reads a posted checkout form.
func CheckoutFormFrom(v url.Values) CheckoutForm {
	return CheckoutForm{
		FullName:   field(v, "full_name"),
		Email:      field(v, "email"),
		Address:    field(v, "address"),
		City:       field(v, "city"),
		PostalCode: field(v, "postal_code"),
		Phone:      field(v, "phone"),
	}
}

// ContactFormFrom reads a posted contact form.
func ContactFormFrom(v url.Values) ContactForm {
	return ContactForm{
		Name:    field(v, "name"),
		Email:   field(v, "email"),
		Message: field(v, "message"),
	}
}

// NewsletterFormFrom reads a posted newsletter form.
func NewsletterFormFrom(v url.Values) NewsletterForm {
	return NewsletterForm{Email: field(v, "email")}
}
