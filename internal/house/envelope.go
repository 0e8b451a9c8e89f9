package house

import "math"

// DefaultPaneFraction is the share of the floor area glazed when no explicit
// pane area is given.
const DefaultPaneFraction = 0.08

// EnvelopeParams describes a rectangular-prism house. Lengths are in feet,
// R-values in ft²·°F·hr/BTU, mass in lb and specific heat in BTU/lb/°F.
type EnvelopeParams struct {
	SideLength   float64
	Height       float64
	PaneArea     float64 // explicit window area; 0 means PaneFraction * floor area
	PaneFraction float64
	PaneR        float64
	WallR        float64
	RoofR        float64
	Mass         float64
	SpecificHeat float64
	MinTemp      float64
	MaxTemp      float64
}

func (p *EnvelopeParams) paneArea() float64 {
	if p.PaneArea != 0 {
		return p.PaneArea
	}
	fraction := p.PaneFraction
	if fraction == 0 {
		fraction = DefaultPaneFraction
	}
	return fraction * p.SideLength * p.SideLength
}

func (p *EnvelopeParams) Validate() error {
	if !(p.SideLength > 0) || math.IsInf(p.SideLength, 0) {
		return ErrNonPositiveSideLength
	}
	if !(p.Height > 0) || math.IsInf(p.Height, 0) {
		return ErrNonPositiveHeight
	}
	pane := p.paneArea()
	if pane < 0 || p.PaneFraction < 0 {
		return ErrNegativePaneArea
	}
	if p.SideLength*p.Height-pane < 0 {
		return ErrNegativeWallArea
	}
	if !(p.PaneR > 0) || !(p.WallR > 0) || !(p.RoofR > 0) {
		return ErrNonPositiveRValue
	}
	if !(p.Mass > 0) {
		return ErrNonPositiveMass
	}
	if !(p.SpecificHeat > 0) {
		return ErrNonPositiveSpecificHeat
	}
	if p.MinTemp > p.MaxTemp {
		return ErrInvalidComfortBand
	}
	return nil
}

// Envelope is the static description of a house, computed once from
// EnvelopeParams and read-only afterwards.
type Envelope struct {
	SideLength float64
	Height     float64
	Area       float64
	Volume     float64

	Pane Surface
	Wall Surface
	Roof Surface

	Mass         float64
	SpecificHeat float64
	MinTemp      float64
	MaxTemp      float64
}

func NewEnvelope(params EnvelopeParams) (Envelope, error) {
	if err := params.Validate(); err != nil {
		return Envelope{}, err
	}
	area := params.SideLength * params.SideLength
	pane := params.paneArea()
	return Envelope{
		SideLength:   params.SideLength,
		Height:       params.Height,
		Area:         area,
		Volume:       area * params.Height,
		Pane:         Surface{Area: pane, RValue: params.PaneR},
		Wall:         Surface{Area: params.SideLength*params.Height - pane, RValue: params.WallR},
		Roof:         Surface{Area: area, RValue: params.RoofR},
		Mass:         params.Mass,
		SpecificHeat: params.SpecificHeat,
		MinTemp:      params.MinTemp,
		MaxTemp:      params.MaxTemp,
	}, nil
}

// ThermalCapacity is the lumped heat capacity of the structure in BTU/°F.
// It is unrelated to the solar MassStore.
func (e Envelope) ThermalCapacity() float64 {
	return e.Mass * e.SpecificHeat
}

func (e Envelope) Classify(temp float64) Comfort {
	switch {
	case temp > e.MaxTemp:
		return ComfortTooHot
	case temp < e.MinTemp:
		return ComfortTooCold
	default:
		return ComfortFine
	}
}

func (e Envelope) validate() error {
	for _, s := range []Surface{e.Pane, e.Wall, e.Roof} {
		if err := s.Validate(); err != nil {
			return err
		}
	}
	if !(e.ThermalCapacity() > 0) {
		return ErrNonPositiveMass
	}
	if e.MinTemp > e.MaxTemp {
		return ErrInvalidComfortBand
	}
	return nil
}
