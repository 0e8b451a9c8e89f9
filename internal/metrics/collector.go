package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Agrid-Dev/thermohouse/internal/sim"
)

// Collector exports per-house simulation gauges on its own registry.
// It implements sim.Observer.
type Collector struct {
	registry *prometheus.Registry

	interior   *prometheus.GaugeVec
	ambient    *prometheus.GaugeVec
	storedHeat *prometheus.GaugeVec
	auxOn      *prometheus.GaugeVec
	comfort    *prometheus.GaugeVec
	steps      *prometheus.CounterVec
	auxSteps   *prometheus.CounterVec
	auxEnergy  *prometheus.CounterVec
}

func NewCollector() *Collector {
	labels := []string{"house"}
	c := &Collector{
		registry: prometheus.NewRegistry(),
		interior: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "thermohouse_interior_temperature_fahrenheit",
			Help: "Interior temperature after the last step.",
		}, labels),
		ambient: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "thermohouse_ambient_temperature_fahrenheit",
			Help: "Ambient temperature of the last step.",
		}, labels),
		storedHeat: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "thermohouse_stored_heat_btu",
			Help: "Solar heat held in the thermal mass store.",
		}, labels),
		auxOn: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "thermohouse_aux_on",
			Help: "1 if the auxiliary heater fired on the last step.",
		}, labels),
		comfort: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "thermohouse_comfort",
			Help: "Comfort classification (1 fine, 2 too hot, 3 too cold).",
		}, labels),
		steps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "thermohouse_steps_total",
			Help: "Simulation steps completed.",
		}, labels),
		auxSteps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "thermohouse_aux_steps_total",
			Help: "Steps on which the auxiliary heater fired.",
		}, labels),
		auxEnergy: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "thermohouse_aux_energy_btu_total",
			Help: "Heat delivered by the auxiliary heater.",
		}, labels),
	}
	c.registry.MustRegister(
		c.interior,
		c.ambient,
		c.storedHeat,
		c.auxOn,
		c.comfort,
		c.steps,
		c.auxSteps,
		c.auxEnergy,
	)
	return c
}

func (c *Collector) OnStep(s sim.Step) {
	id := s.HouseID
	c.interior.WithLabelValues(id).Set(s.Result.Temp)
	c.ambient.WithLabelValues(id).Set(s.Tick.Sample.Ambient)
	c.storedHeat.WithLabelValues(id).Set(s.State.StoredHeat())
	c.comfort.WithLabelValues(id).Set(float64(s.Result.Comfort))
	c.steps.WithLabelValues(id).Inc()

	if s.Result.UsedAux {
		c.auxOn.WithLabelValues(id).Set(1)
		c.auxSteps.WithLabelValues(id).Inc()
		c.auxEnergy.WithLabelValues(id).Add(s.Result.Breakdown.Aux)
	} else {
		c.auxOn.WithLabelValues(id).Set(0)
	}
}

func (c *Collector) Registry() *prometheus.Registry { return c.registry }

func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
