package house

import "testing"

func TestMassStoreAddRelease(t *testing.T) {
	var m MassStore
	m.Add(1000)
	if m.Stored() != 1000 {
		t.Fatalf("Stored()=%v want 1000", m.Stored())
	}

	released := m.Release(0.3525)
	if !almostEqual(released, 352.5, 1e-9) {
		t.Fatalf("Release()=%v want 352.5", released)
	}
	if !almostEqual(m.Stored(), 647.5, 1e-9) {
		t.Fatalf("Stored()=%v want 647.5", m.Stored())
	}
}

func TestMassStoreIgnoresNegativeAdd(t *testing.T) {
	m := NewMassStore(10)
	m.Add(-50)
	if m.Stored() != 10 {
		t.Fatalf("Stored()=%v want 10", m.Stored())
	}
	empty := NewMassStore(-1)
	if empty.Stored() != 0 {
		t.Fatal("negative initial store should be empty")
	}
}

func TestMassStoreReleaseClampsRate(t *testing.T) {
	tests := []struct {
		name         string
		rate         float64
		wantReleased float64
		wantStored   float64
	}{
		{"zero rate", 0, 0, 100},
		{"negative rate", -0.5, 0, 100},
		{"full rate", 1, 100, 0},
		{"rate above one", 3, 100, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewMassStore(100)
			got := m.Release(tt.rate)
			if got != tt.wantReleased || m.Stored() != tt.wantStored {
				t.Fatalf("Release(%v)=%v stored=%v, want %v stored=%v",
					tt.rate, got, m.Stored(), tt.wantReleased, tt.wantStored)
			}
		})
	}
}

func TestMassStoreNeverNegative(t *testing.T) {
	var m MassStore
	adds := []float64{0, 1e-9, 5, 1280, 0, 1e6, 3.3}
	rates := []float64{0, 0.3525, 1, 0.999999, 0.5, 0.1, 1}
	for i := 0; i < 200; i++ {
		m.Add(adds[i%len(adds)])
		m.Release(rates[i%len(rates)])
		if m.Stored() < 0 {
			t.Fatalf("stored heat went negative at iteration %d: %v", i, m.Stored())
		}
	}
}
