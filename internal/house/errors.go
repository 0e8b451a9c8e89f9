package house

import "errors"

var (
	ErrNonPositiveSideLength   = errors.New("side length must be positive")
	ErrNonPositiveHeight       = errors.New("height must be positive")
	ErrNegativePaneArea        = errors.New("pane surface area must not be negative")
	ErrNegativeWallArea        = errors.New("pane surface area exceeds wall area")
	ErrNegativeSurfaceArea     = errors.New("surface area must not be negative")
	ErrNonPositiveRValue       = errors.New("R-values must be positive")
	ErrNonPositiveMass         = errors.New("thermal mass must be positive")
	ErrNonPositiveSpecificHeat = errors.New("specific heat capacity must be positive")
	ErrInvalidComfortBand      = errors.New("invalid min/max comfort temperatures")
	ErrNegativeAuxOutput       = errors.New("auxiliary heater output must not be negative")
	ErrZeroAuxDivisor          = errors.New("auxiliary heater divisor must not be zero")
	ErrNonPositiveAuxDivisor   = errors.New("auxiliary heater divisor must be a positive finite number")
	ErrInvalidCalibration      = errors.New("invalid calibration")
	ErrInvalidTimestep         = errors.New("timestep must be a positive number of hours")
	ErrInvalidSample           = errors.New("environment sample is not a finite temperature")
	ErrInvalidComfort          = errors.New("invalid comfort classification")
)
