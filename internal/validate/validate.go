// Package validate holds the client-side input checks applied before a
// request leaves the process. The backend validates again; this layer
// exists to surface field problems without a round trip.
package validate

import (
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/mhotoys/shopctl/internal/models"
	"github.com/mhotoys/shopctl/internal/session"
)

// Credentials checks a sign-in request.
func Credentials(c session.Credentials) error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Username, validation.Required, validation.Length(3, 20)),
		validation.Field(&c.Password, validation.Required, validation.Length(6, 40)),
	)
}

// Signup checks a sign-up request.
func Signup(s session.Signup) error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.Username, validation.Required, validation.Length(3, 20)),
		validation.Field(&s.Email, validation.Required, validation.Length(6, 100), is.Email),
		validation.Field(&s.Password, validation.Required, validation.Length(6, 40)),
	)
}

// Product checks a catalog entry before an admin create or update.
func Product(p models.Product) error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Name, validation.Required, validation.Length(1, 100)),
		validation.Field(&p.Description, validation.Length(0, 500)),
		validation.Field(&p.Price, validation.Min(0.0)),
		validation.Field(&p.AgeRange, validation.Length(0, 50)),
		validation.Field(&p.ImageURL, is.URL),
	)
}
