package epaper

import "testing"

func TestRectProblems(t *testing.T) {
	tests := []struct {
		name   string
		rect   Rect
		fields []string
	}{
		{name: "inside", rect: Rect{X: 0.1, Y: 0.2, W: 0.3, H: 0.4}},
		{name: "touching edges", rect: Rect{X: 0.5, Y: 0.25, W: 0.5, H: 0.75}},
		{name: "overflow right", rect: Rect{X: 0.8, Y: 0, W: 0.3, H: 0.1}, fields: []string{"w"}},
		{name: "overflow bottom", rect: Rect{X: 0, Y: 0.95, W: 0.1, H: 0.1}, fields: []string{"h"}},
		{name: "negative x", rect: Rect{X: -0.1, Y: 0, W: 0.1, H: 0.1}, fields: []string{"x"}},
		{name: "zero width", rect: Rect{X: 0, Y: 0, W: 0, H: 0.1}, fields: []string{"w"}},
		{name: "y above one", rect: Rect{X: 0, Y: 1.5, W: 0.1, H: 0.1}, fields: []string{"y", "h"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.rect.Rounded().Problems()
			if len(got) != len(tt.fields) {
				t.Fatalf("problems = %v, want fields %v", got, tt.fields)
			}
			for _, f := range tt.fields {
				if _, ok := got[f]; !ok {
					t.Fatalf("problems = %v, missing field %q", got, f)
				}
			}
		})
	}
}

func TestRectRounded(t *testing.T) {
	r := Rect{X: 0.1234564, Y: 0.1234566, W: 0.5, H: 0.5}.Rounded()
	if r.X != 0.123456 || r.Y != 0.123457 {
		t.Fatalf("rounded = %+v", r)
	}
}
