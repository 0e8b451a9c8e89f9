package house

// Surface is one conducting face of the envelope.
type Surface struct {
	Area   float64 // ft²
	RValue float64 // ft²·°F·hr/BTU
}

func (s *Surface) Validate() error {
	if s.Area < 0 {
		return ErrNegativeSurfaceArea
	}
	if !(s.RValue > 0) {
		return ErrNonPositiveRValue
	}
	return nil
}

// Flow returns the heat flow in BTU/hr through the surface. Positive means
// heat leaving the interior, so a colder ambient always yields a positive flow.
func (s Surface) Flow(interior, ambient float64) float64 {
	return s.Area * (interior - ambient) / s.RValue
}

// SurfaceWeights is the share of the envelope loss attributed to each surface.
type SurfaceWeights struct {
	Pane float64
	Wall float64
	Roof float64
}

func (w *SurfaceWeights) Validate() error {
	if w.Pane < 0 || w.Wall < 0 || w.Roof < 0 {
		return ErrInvalidCalibration
	}
	return nil
}

// ConductiveLoss is the weighted heat flow out of the interior in BTU/hr.
func ConductiveLoss(env Envelope, w SurfaceWeights, interior, ambient float64) float64 {
	return w.Pane*env.Pane.Flow(interior, ambient) +
		w.Wall*env.Wall.Flow(interior, ambient) +
		w.Roof*env.Roof.Flow(interior, ambient)
}
