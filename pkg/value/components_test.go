package value

import (
	"math"
	"testing"

	"github.com/go-drift/motion/pkg/errors"
)

func TestAlignPairScalarKinds(t *testing.T) {
	tests := []struct {
		name       string
		start, end Value
		from, to   []float64
	}{
		{"scalar", Scalar(0.2), Scalar(0.8), []float64{0.2}, []float64{0.8}},
		{"length", Length(10), Length(90), []float64{10}, []float64{90}},
		{
			"color", RGBA(255, 0, 0, 255), RGBA(0, 0, 255, 0),
			[]float64{1, 0, 0, 1}, []float64{0, 0, 1, 0},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			template, from, to, err := AlignPair(tt.start, tt.end)
			if err != nil {
				t.Fatal(err)
			}
			if len(from) != len(tt.from) || len(to) != len(tt.to) {
				t.Fatalf("component counts %d/%d, want %d/%d", len(from), len(to), len(tt.from), len(tt.to))
			}
			for i := range from {
				if from[i] != tt.from[i] || to[i] != tt.to[i] {
					t.Errorf("component %d = %v->%v, want %v->%v", i, from[i], to[i], tt.from[i], tt.to[i])
				}
			}
			if got := Recompose(template, from); got.String() != tt.start.String() {
				t.Errorf("Recompose(from) = %v, want %v", got, tt.start)
			}
			if got := Recompose(template, to); got.String() != tt.end.String() {
				t.Errorf("Recompose(to) = %v, want %v", got, tt.end)
			}
		})
	}
}

func TestAlignPairAngleUsesRadians(t *testing.T) {
	_, from, to, err := AlignPair(Angle(0), Angle(180))
	if err != nil {
		t.Fatal(err)
	}
	if from[0] != 0 || math.Abs(to[0]-math.Pi) > 1e-12 {
		t.Errorf("components = %v -> %v, want 0 -> pi", from[0], to[0])
	}

	template, _, _, _ := AlignPair(Angle(0), Angle(180))
	back := Recompose(template, []float64{math.Pi / 2})
	if got := float64(back.(Angle)); math.Abs(got-90) > 1e-9 {
		t.Errorf("Recompose(pi/2) = %vdeg, want 90deg", got)
	}
}

func TestAlignPairCompositeIdentityFill(t *testing.T) {
	start := Composite{{Name: TranslateX, Value: 100}}
	end := Composite{
		{Name: TranslateX, Value: 200},
		{Name: ScaleUniform, Value: 3},
	}
	template, from, to, err := AlignPair(start, end)
	if err != nil {
		t.Fatal(err)
	}
	tc := template.(Composite)
	if len(tc) != 2 || tc[0].Name != TranslateX || tc[1].Name != ScaleUniform {
		t.Fatalf("template = %v, want [translateX scale]", tc)
	}
	if from[0] != 100 || to[0] != 200 {
		t.Errorf("translateX = %v->%v, want 100->200", from[0], to[0])
	}
	// The scale missing from start fills in from identity 1.
	if from[1] != 1 || to[1] != 3 {
		t.Errorf("scale = %v->%v, want 1->3", from[1], to[1])
	}
}

func TestAlignPairMismatch(t *testing.T) {
	if _, _, _, err := AlignPair(Scalar(0), Length(1)); errors.KindOf(err) != errors.KindTypeMismatch {
		t.Errorf("AlignPair(scalar, length) error = %v, want type mismatch", err)
	}
}
