package house

// MassStore tracks solar heat captured by the structure and not yet released.
// The zero value is an empty store. Stored heat never goes negative.
type MassStore struct {
	stored float64
}

func NewMassStore(btu float64) MassStore {
	var m MassStore
	m.Add(btu)
	return m
}

func (m *MassStore) Stored() float64 {
	return m.stored
}

// Add accumulates btu. Non-positive amounts are ignored.
func (m *MassStore) Add(btu float64) {
	if btu > 0 {
		m.stored += btu
	}
}

// Release removes rate*stored from the store and returns it. rate is clamped
// to [0, 1].
func (m *MassStore) Release(rate float64) float64 {
	rate = min(max(rate, 0), 1)
	released := rate * m.stored
	m.stored -= released
	if m.stored < 0 {
		m.stored = 0
	}
	return released
}
