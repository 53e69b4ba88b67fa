package epaper

import (
	"math"

	"github.com/go-playground/validator/v10"
)

const rectEpsilon = 1e-9

var rectValidate = validator.New()

// Rect is a region in normalized image coordinates.
type Rect struct {
	X float64 `validate:"gte=0,lte=1"`
	Y float64 `validate:"gte=0,lte=1"`
	W float64 `validate:"gt=0,lte=1"`
	H float64 `validate:"gt=0,lte=1"`
}

// Rounded returns r with every component rounded to six decimals, the
// precision of the stored columns.
func (r Rect) Rounded() Rect {
	return Rect{X: round6(r.X), Y: round6(r.Y), W: round6(r.W), H: round6(r.H)}
}

// Problems returns a message per offending field, or nil when r is valid.
func (r Rect) Problems() map[string]string {
	out := map[string]string{}
	if err := rectValidate.Struct(r); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok {
			for _, fe := range verrs {
				out[lowerField(fe.Field())] = rangeMessage(fe)
			}
		}
	}
	if _, bad := out["w"]; !bad && r.X+r.W > 1+rectEpsilon {
		out["w"] = "x + w must be less than or equal to 1."
	}
	if _, bad := out["h"]; !bad && r.Y+r.H > 1+rectEpsilon {
		out["h"] = "y + h must be less than or equal to 1."
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func rangeMessage(fe validator.FieldError) string {
	name := lowerField(fe.Field())
	if fe.Tag() == "gt" {
		return name + " must be greater than 0."
	}
	return name + " must be between 0 and 1."
}

func lowerField(f string) string {
	switch f {
	case "X":
		return "x"
	case "Y":
		return "y"
	case "W":
		return "w"
	case "H":
		return "h"
	}
	return f
}

func round6(v float64) float64 {
	return math.Round(v*1e6) / 1e6
}
