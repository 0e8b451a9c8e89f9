package house

import "testing"

func TestSurfaceValidate(t *testing.T) {
	tests := []struct {
		name    string
		surface Surface
		want    error
	}{
		{"valid", Surface{Area: 10, RValue: 5}, nil},
		{"zero area is allowed", Surface{Area: 0, RValue: 5}, nil},
		{"negative area", Surface{Area: -1, RValue: 5}, ErrNegativeSurfaceArea},
		{"zero R", Surface{Area: 10, RValue: 0}, ErrNonPositiveRValue},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.surface.Validate(); got != tt.want {
				t.Errorf("Got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSurfaceFlowDirection(t *testing.T) {
	tests := []struct {
		name     string
		interior float64
		ambient  float64
		want     func(float64) bool
	}{
		{
			name:     "Heat leaves when outdoor temperature is less",
			interior: 70,
			ambient:  40,
			want:     func(flow float64) bool { return flow > 0 },
		},
		{
			name:     "Heat enters when outdoor temperature is more",
			interior: 70,
			ambient:  90,
			want:     func(flow float64) bool { return flow < 0 },
		},
		{
			name:     "No flow when temperatures are equal",
			interior: 70,
			ambient:  70,
			want:     func(flow float64) bool { return flow == 0 },
		},
	}

	s := Surface{Area: 100, RValue: 3.4}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := s.Flow(tt.interior, tt.ambient)
			if !tt.want(result) {
				t.Errorf("Test %q failed: got %v", tt.name, result)
			}
		})
	}
}

func TestSurfaceFlowIsAntisymmetric(t *testing.T) {
	s := Surface{Area: 1150, RValue: 20}
	if got, want := s.Flow(40, 70), -s.Flow(70, 40); got != want {
		t.Fatalf("Flow(40,70)=%v want %v", got, want)
	}
}

func TestConductiveLossWeights(t *testing.T) {
	env := newTestEnvelope(t)
	w := DefaultCalibration().Weights

	got := ConductiveLoss(env, w, 70, 40)
	want := 0.30*100*30/3.4 + 0.40*1150*30/20 + 0.30*2500*30/49
	if !almostEqual(got, want, 1e-9) {
		t.Fatalf("ConductiveLoss()=%v want %v", got, want)
	}
}

func TestSurfaceWeightsValidate(t *testing.T) {
	w := SurfaceWeights{Pane: 0.3, Wall: -0.4, Roof: 0.3}
	if err := w.Validate(); err != ErrInvalidCalibration {
		t.Fatalf("expected ErrInvalidCalibration, got %v", err)
	}
}
