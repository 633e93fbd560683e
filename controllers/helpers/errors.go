package helpers

import (
	"errors"

	"github.com/gookit/validate"

	"github.com/zenithex/zenithex/errs"
)

type Errors struct {
	Errors []string `json:"errors"`
}

func (e *Errors) Size() int {
	return len(e.Errors)
}

func (e *Errors) Add(msg string) {
	e.Errors = append(e.Errors, msg)
}

// Validate runs the payload's gookit validators and collects the
// messages in the response shape.
func Validate(payload interface{}, errors *Errors) {
	v := validate.Struct(payload)

	if !v.Validate() {
		for _, msg := range v.Errors.All() {
			for _, m := range msg {
				errors.Add(m)
			}
		}
	}
}

// StatusOf maps the domain error taxonomy onto HTTP status codes.
func StatusOf(err error) int {
	switch {
	case errors.Is(err, errs.ErrNotFound):
		return 404
	case errors.Is(err, errs.ErrTradeStateConflict), errors.Is(err, errs.ErrReferenceTaken):
		return 409
	case errs.Expected(err):
		return 422
	default:
		return 500
	}
}
