package httpctrl

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/Agrid-Dev/thermohouse/internal/house"
	"github.com/Agrid-Dev/thermohouse/internal/ports"
)

type Server struct {
	svc     ports.HouseService
	srv     *http.Server
	houseID string
}

// New returns a runnable server. metrics may be nil.
func New(svc ports.HouseService, addr string, houseID string, metrics http.Handler) *Server {
	mux := http.NewServeMux()
	s := &Server{svc: svc, houseID: houseID}

	// Read only: the simulation is driven by its weather schedule.
	mux.HandleFunc("GET /v1", s.handleGet)
	mux.HandleFunc("GET /v1/{field}", s.handleGetField)

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	if metrics != nil {
		mux.Handle("GET /metrics", metrics)
	}

	s.srv = &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.srv.Shutdown(shutdownCtx)
		return ctx.Err()
	case err := <-errCh:
		return err
	}
}

// ---- DTOs ----

type snapshotDTO struct {
	HouseID             string  `json:"house_id"`
	Step                int     `json:"step"`
	ElapsedHours        float64 `json:"elapsed_hours"`
	Day                 int     `json:"day"`
	Week                int     `json:"week"`
	InteriorTemperature float64 `json:"interior_temperature"`
	AmbientTemperature  float64 `json:"ambient_temperature"`
	SunOut              bool    `json:"sun_out"`
	StoredHeat          float64 `json:"stored_heat"`
	UsedAux             bool    `json:"used_aux"`
	AuxEnabled          bool    `json:"aux_enabled"`
	AuxSetpoint         float64 `json:"aux_setpoint"`
	AuxSteps            int     `json:"aux_steps"`
	AuxEnergy           float64 `json:"aux_energy"`
	Comfort             string  `json:"comfort"`
	MinTemp             float64 `json:"min_temp"`
	MaxTemp             float64 `json:"max_temp"`
}

func toDTO(s house.Snapshot) snapshotDTO {
	return snapshotDTO{
		Step:                s.Step,
		ElapsedHours:        s.ElapsedHours,
		Day:                 s.Day,
		Week:                s.Week,
		InteriorTemperature: s.InteriorTemperature,
		AmbientTemperature:  s.AmbientTemperature,
		SunOut:              s.SunOut,
		StoredHeat:          s.StoredHeat,
		UsedAux:             s.UsedAux,
		AuxEnabled:          s.AuxEnabled,
		AuxSetpoint:         s.AuxSetpoint,
		AuxSteps:            s.AuxSteps,
		AuxEnergy:           s.AuxEnergy,
		Comfort:             s.Comfort.String(),
		MinTemp:             s.MinTemp,
		MaxTemp:             s.MaxTemp,
	}
}

// fields exposes single variables at GET /v1/{field}.
var fields = map[string]func(house.Snapshot) any{
	"interior_temperature": func(s house.Snapshot) any { return s.InteriorTemperature },
	"ambient_temperature":  func(s house.Snapshot) any { return s.AmbientTemperature },
	"sun_out":              func(s house.Snapshot) any { return s.SunOut },
	"stored_heat":          func(s house.Snapshot) any { return s.StoredHeat },
	"used_aux":             func(s house.Snapshot) any { return s.UsedAux },
	"comfort":              func(s house.Snapshot) any { return s.Comfort.String() },
	"step":                 func(s house.Snapshot) any { return s.Step },
}

// ---- Handlers ----

func (s *Server) handleGet(w http.ResponseWriter, _ *http.Request) {
	dto := toDTO(s.svc.Get())
	dto.HouseID = s.houseID
	writeJSON(w, http.StatusOK, dto)
}

func (s *Server) handleGetField(w http.ResponseWriter, r *http.Request) {
	get, ok := fields[r.PathValue("field")]
	if !ok {
		writeErr(w, http.StatusNotFound, "unknown field")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"value": get(s.svc.Get())})
}

// ---- generic helpers ----

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}
