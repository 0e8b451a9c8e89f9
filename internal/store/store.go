package store

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/Agrid-Dev/thermohouse/internal/house"
	"github.com/Agrid-Dev/thermohouse/internal/sim"
)

const (
	metadataFile = "metadata.json"
	traceFile    = "trace.csv"
)

var (
	ErrRunNotFound    = errors.New("run not found")
	ErrMalformedTrace = errors.New("malformed trace")
)

var traceHeader = []string{
	"step", "elapsed_hours", "day", "week",
	"ambient", "sun_out", "interior", "stored_heat", "used_aux", "comfort",
}

// Store keeps one directory per run under baseDir.
type Store struct {
	baseDir string
	now     func() time.Time
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir, now: time.Now}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0o755)
}

type EnvelopeSummary struct {
	Area            float64 `json:"area_ft2"`
	Volume          float64 `json:"volume_ft3"`
	PaneArea        float64 `json:"pane_area_ft2"`
	WallArea        float64 `json:"wall_area_ft2"`
	RoofArea        float64 `json:"roof_area_ft2"`
	ThermalCapacity float64 `json:"thermal_capacity_btu_per_f"`
	MinTemp         float64 `json:"min_temp"`
	MaxTemp         float64 `json:"max_temp"`
}

func Summarize(env house.Envelope) EnvelopeSummary {
	return EnvelopeSummary{
		Area:            env.Area,
		Volume:          env.Volume,
		PaneArea:        env.Pane.Area,
		WallArea:        env.Wall.Area,
		RoofArea:        env.Roof.Area,
		ThermalCapacity: env.ThermalCapacity(),
		MinTemp:         env.MinTemp,
		MaxTemp:         env.MaxTemp,
	}
}

type RunMetadata struct {
	ID          string          `json:"id"`
	HouseID     string          `json:"house_id"`
	Timestamp   time.Time       `json:"timestamp"`
	WeatherFile string          `json:"weather_file,omitempty"`
	StepHours   float64         `json:"step_hours"`
	StartTemp   float64         `json:"start_temp"`
	AuxEnabled  bool            `json:"aux_enabled"`
	AuxSetpoint float64         `json:"aux_setpoint"`
	Envelope    EnvelopeSummary `json:"envelope"`
	Report      sim.Report      `json:"report"`
}

// TraceRow is one line of trace.csv.
type TraceRow struct {
	Step         int
	ElapsedHours float64
	Day          int
	Week         int
	Ambient      float64
	SunOut       bool
	Interior     float64
	StoredHeat   float64
	UsedAux      bool
	Comfort      house.Comfort
}

func RowFromStep(s sim.Step) TraceRow {
	return TraceRow{
		Step:         s.Tick.Index,
		ElapsedHours: s.Tick.ElapsedHours,
		Day:          s.Tick.Day,
		Week:         s.Tick.Week,
		Ambient:      s.Tick.Sample.Ambient,
		SunOut:       s.Tick.Sample.Sun,
		Interior:     s.Result.Temp,
		StoredHeat:   s.State.StoredHeat(),
		UsedAux:      s.Result.UsedAux,
		Comfort:      s.Result.Comfort,
	}
}

// Save writes metadata and trace for a run and returns the new run id.
func (s *Store) Save(meta RunMetadata, steps []sim.Step) (string, error) {
	meta.ID = uuid.NewString()
	if meta.Timestamp.IsZero() {
		meta.Timestamp = s.now().UTC()
	}
	runDir := filepath.Join(s.baseDir, meta.ID)
	if err := os.MkdirAll(runDir, 0o755); err != nil {
		return "", err
	}

	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", fmt.Errorf("write metadata: %w", err)
	}
	if err := writeTrace(filepath.Join(runDir, traceFile), steps); err != nil {
		return "", fmt.Errorf("write trace: %w", err)
	}
	return meta.ID, nil
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeTrace(path string, steps []sim.Step) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(traceHeader); err != nil {
		return err
	}
	for _, s := range steps {
		r := RowFromStep(s)
		if err := w.Write([]string{
			strconv.Itoa(r.Step),
			strconv.FormatFloat(r.ElapsedHours, 'f', -1, 64),
			strconv.Itoa(r.Day),
			strconv.Itoa(r.Week),
			strconv.FormatFloat(r.Ambient, 'f', 6, 64),
			strconv.FormatBool(r.SunOut),
			strconv.FormatFloat(r.Interior, 'f', 6, 64),
			strconv.FormatFloat(r.StoredHeat, 'f', 6, 64),
			strconv.FormatBool(r.UsedAux),
			r.Comfort.String(),
		}); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// List returns all readable runs, oldest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}
	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.Before(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, err
	}
	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("decode metadata %s: %w", runID, err)
	}
	return &meta, nil
}

func (s *Store) LoadTrace(runID string) ([]TraceRow, error) {
	f, err := os.Open(filepath.Join(s.baseDir, runID, traceFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = len(traceHeader)
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedTrace, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: missing header", ErrMalformedTrace)
	}

	rows := make([]TraceRow, 0, len(records)-1)
	for i, rec := range records[1:] {
		row, err := parseTraceRow(rec)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrMalformedTrace, i+2, err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func parseTraceRow(rec []string) (TraceRow, error) {
	var (
		row TraceRow
		err error
	)
	if row.Step, err = strconv.Atoi(rec[0]); err != nil {
		return row, err
	}
	if row.ElapsedHours, err = strconv.ParseFloat(rec[1], 64); err != nil {
		return row, err
	}
	if row.Day, err = strconv.Atoi(rec[2]); err != nil {
		return row, err
	}
	if row.Week, err = strconv.Atoi(rec[3]); err != nil {
		return row, err
	}
	if row.Ambient, err = strconv.ParseFloat(rec[4], 64); err != nil {
		return row, err
	}
	if row.SunOut, err = strconv.ParseBool(rec[5]); err != nil {
		return row, err
	}
	if row.Interior, err = strconv.ParseFloat(rec[6], 64); err != nil {
		return row, err
	}
	if row.StoredHeat, err = strconv.ParseFloat(rec[7], 64); err != nil {
		return row, err
	}
	if row.UsedAux, err = strconv.ParseBool(rec[8]); err != nil {
		return row, err
	}
	if row.Comfort, err = house.ParseComfort(rec[9]); err != nil {
		return row, err
	}
	return row, nil
}
