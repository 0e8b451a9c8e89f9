package app

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/json"
	kyaml "github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	"gopkg.in/yaml.v3"

	"github.com/Agrid-Dev/thermohouse/internal/house"
	"github.com/Agrid-Dev/thermohouse/internal/logging"
	"github.com/Agrid-Dev/thermohouse/internal/sim"
)

const envPrefix = "THERMOHOUSE_"

var ErrUnsupportedExtension = errors.New("unsupported config extension")

type Config struct {
	HouseID     string            `koanf:"house_id" yaml:"house_id"`
	Logging     LoggingConfig     `koanf:"logging" yaml:"logging"`
	Building    BuildingConfig    `koanf:"building" yaml:"building"`
	Aux         AuxConfig         `koanf:"aux" yaml:"aux"`
	Calibration CalibrationConfig `koanf:"calibration" yaml:"calibration"`
	Simulation  SimulationConfig  `koanf:"simulation" yaml:"simulation"`
	Controllers ControllersConfig `koanf:"controllers" yaml:"controllers"`
}

type LoggingConfig struct {
	Level  string `koanf:"level" yaml:"level"`
	Format string `koanf:"format" yaml:"format"` // "text" | "json"
	Path   string `koanf:"path" yaml:"path"`
}

type BuildingConfig struct {
	SideLength   float64 `koanf:"side_length" yaml:"side_length"`
	Height       float64 `koanf:"height" yaml:"height"`
	PaneArea     float64 `koanf:"pane_area" yaml:"pane_area"` // 0 derives it from pane_fraction
	PaneFraction float64 `koanf:"pane_fraction" yaml:"pane_fraction"`
	PaneR        float64 `koanf:"pane_r" yaml:"pane_r"`
	WallR        float64 `koanf:"wall_r" yaml:"wall_r"`
	RoofR        float64 `koanf:"roof_r" yaml:"roof_r"`
	Mass         float64 `koanf:"mass" yaml:"mass"`
	SpecificHeat float64 `koanf:"specific_heat" yaml:"specific_heat"`
	MinTemp      float64 `koanf:"min_temp" yaml:"min_temp"`
	MaxTemp      float64 `koanf:"max_temp" yaml:"max_temp"`
}

type AuxConfig struct {
	Enabled   bool    `koanf:"enabled" yaml:"enabled"`
	Setpoint  float64 `koanf:"setpoint" yaml:"setpoint"`
	MaxOutput float64 `koanf:"max_output" yaml:"max_output"`
	Divisor   float64 `koanf:"divisor" yaml:"divisor"`
}

type CalibrationConfig struct {
	SolarCoefficient    float64 `koanf:"solar_coefficient" yaml:"solar_coefficient"`
	DirectSolarFraction float64 `koanf:"direct_solar_fraction" yaml:"direct_solar_fraction"`
	ReleaseRate         float64 `koanf:"release_rate" yaml:"release_rate"`
	PaneWeight          float64 `koanf:"pane_weight" yaml:"pane_weight"`
	WallWeight          float64 `koanf:"wall_weight" yaml:"wall_weight"`
	RoofWeight          float64 `koanf:"roof_weight" yaml:"roof_weight"`
}

type SimulationConfig struct {
	WeatherFile    string        `koanf:"weather_file" yaml:"weather_file"`
	StepHours      float64       `koanf:"step_hours" yaml:"step_hours"`
	MaxSteps       int           `koanf:"max_steps" yaml:"max_steps"`
	StartTemp      float64       `koanf:"start_temp" yaml:"start_temp"`
	DataDir        string        `koanf:"data_dir" yaml:"data_dir"`
	ReplayInterval time.Duration `koanf:"replay_interval" yaml:"replay_interval"`
}

type ControllersConfig struct {
	HTTP   HTTPConfig   `koanf:"http" yaml:"http"`
	MQTT   MQTTConfig   `koanf:"mqtt" yaml:"mqtt"`
	Modbus ModbusConfig `koanf:"modbus" yaml:"modbus"`
	Kafka  KafkaConfig  `koanf:"kafka" yaml:"kafka"`
}

type HTTPConfig struct {
	Enabled bool   `koanf:"enabled" yaml:"enabled"`
	Addr    string `koanf:"addr" yaml:"addr"`
}

type MQTTConfig struct {
	Enabled         bool          `koanf:"enabled" yaml:"enabled"`
	BrokerURL       string        `koanf:"broker_url" yaml:"broker_url"`
	ClientID        string        `koanf:"client_id" yaml:"client_id"`
	BaseTopic       string        `koanf:"base_topic" yaml:"base_topic"`
	QoS             byte          `koanf:"qos" yaml:"qos"`
	RetainSnapshot  bool          `koanf:"retain_snapshot" yaml:"retain_snapshot"`
	PublishInterval time.Duration `koanf:"publish_interval" yaml:"publish_interval"`
	Username        string        `koanf:"username" yaml:"username"`
	Password        string        `koanf:"password" yaml:"password"`
}

type ModbusConfig struct {
	Enabled bool   `koanf:"enabled" yaml:"enabled"`
	Addr    string `koanf:"addr" yaml:"addr"`
	UnitID  byte   `koanf:"unit_id" yaml:"unit_id"`
}

type KafkaConfig struct {
	Enabled bool     `koanf:"enabled" yaml:"enabled"`
	Brokers []string `koanf:"brokers" yaml:"brokers"`
	Topic   string   `koanf:"topic" yaml:"topic"`
}

// Default is the lowest configuration layer.
func Default() Config {
	cal := house.DefaultCalibration()
	return Config{
		HouseID: "default",
		Logging: LoggingConfig{Level: "info", Format: "text"},
		Building: BuildingConfig{
			SideLength:   50,
			Height:       25,
			PaneFraction: house.DefaultPaneFraction,
			PaneR:        3.4,
			WallR:        20,
			RoofR:        49,
			Mass:         100000,
			SpecificHeat: 0.2,
			MinTemp:      65,
			MaxTemp:      75,
		},
		Aux: AuxConfig{
			Setpoint:  65,
			MaxOutput: 40000,
			Divisor:   house.DefaultAuxDivisor,
		},
		Calibration: CalibrationConfig{
			SolarCoefficient:    cal.SolarCoefficient,
			DirectSolarFraction: cal.DirectSolarFraction,
			ReleaseRate:         cal.ReleaseRate,
			PaneWeight:          cal.Weights.Pane,
			WallWeight:          cal.Weights.Wall,
			RoofWeight:          cal.Weights.Roof,
		},
		Simulation: SimulationConfig{
			WeatherFile:    "weather.csv",
			StepHours:      1,
			StartTemp:      68,
			DataDir:        "runs",
			ReplayInterval: time.Second,
		},
		Controllers: ControllersConfig{
			HTTP: HTTPConfig{Enabled: true, Addr: ":8080"},
			MQTT: MQTTConfig{
				BrokerURL:       "tcp://localhost:1883",
				PublishInterval: time.Second,
			},
			Modbus: ModbusConfig{Addr: "127.0.0.1:1502", UnitID: 1},
			Kafka: KafkaConfig{
				Brokers: []string{"localhost:9092"},
				Topic:   "thermohouse.readings",
			},
		},
	}
}

// LoadConfig layers defaults, the optional config file and THERMOHOUSE_*
// environment variables. A missing file falls back to defaults.
func LoadConfig(path string) (Config, error) {
	return loadConfig(path, os.Environ)
}

func loadConfig(path string, environ func() []string) (Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return Config{}, fmt.Errorf("load defaults: %w", err)
	}

	if path != "" {
		if err := loadFile(k, path); err != nil {
			return Config{}, err
		}
	}

	envProvider := env.Provider(".", env.Opt{
		Prefix:        envPrefix,
		TransformFunc: envTransform,
		EnvironFunc:   environ,
	})
	if err := k.Load(envProvider, nil); err != nil {
		return Config{}, fmt.Errorf("load env: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	return cfg, nil
}

func loadFile(k *koanf.Koanf, path string) error {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			// Config file missing → use defaults
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}

	var parser koanf.Parser
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml":
		parser = kyaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		return fmt.Errorf("%w %q", ErrUnsupportedExtension, ext)
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

func envTransform(k, v string) (string, any) {
	key := envKeyTransform(strings.TrimPrefix(k, envPrefix))
	if strings.HasSuffix(key, ".brokers") {
		return key, splitList(v)
	}
	return key, v
}

// sectionDepth is the number of key levels under each config section.
var sectionDepth = map[string]int{
	"logging":     2,
	"building":    2,
	"aux":         2,
	"calibration": 2,
	"simulation":  2,
	"controllers": 3,
}

// envKeyTransform maps an env var name without prefix to a koanf key path,
// e.g. CONTROLLERS_MQTT_BROKER_URL → controllers.mqtt.broker_url. Keys that
// are not inside a known section, or too short for it, are only lowercased.
func envKeyTransform(k string) string {
	k = strings.ToLower(strings.TrimSpace(k))
	if k == "" {
		return ""
	}
	parts := strings.Split(k, "_")
	depth, ok := sectionDepth[parts[0]]
	if !ok || len(parts) < depth {
		return k
	}
	return strings.Join(parts[:depth-1], ".") + "." + strings.Join(parts[depth-1:], "_")
}

func splitList(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func (c Config) LoggingOptions() logging.Options {
	return logging.Options{Level: c.Logging.Level, Format: c.Logging.Format, Path: c.Logging.Path}
}

func (c Config) EnvelopeParams() house.EnvelopeParams {
	b := c.Building
	return house.EnvelopeParams{
		SideLength:   b.SideLength,
		Height:       b.Height,
		PaneArea:     b.PaneArea,
		PaneFraction: b.PaneFraction,
		PaneR:        b.PaneR,
		WallR:        b.WallR,
		RoofR:        b.RoofR,
		Mass:         b.Mass,
		SpecificHeat: b.SpecificHeat,
		MinTemp:      b.MinTemp,
		MaxTemp:      b.MaxTemp,
	}
}

func (c Config) Envelope() (house.Envelope, error) {
	return house.NewEnvelope(c.EnvelopeParams())
}

func (c Config) AuxConfig() house.AuxConfig {
	return house.AuxConfig{
		Enabled:   c.Aux.Enabled,
		Setpoint:  c.Aux.Setpoint,
		MaxOutput: c.Aux.MaxOutput,
		Divisor:   c.Aux.Divisor,
	}
}

func (c Config) CalibrationValues() house.Calibration {
	return house.Calibration{
		SolarCoefficient:    c.Calibration.SolarCoefficient,
		DirectSolarFraction: c.Calibration.DirectSolarFraction,
		ReleaseRate:         c.Calibration.ReleaseRate,
		Weights: house.SurfaceWeights{
			Pane: c.Calibration.PaneWeight,
			Wall: c.Calibration.WallWeight,
			Roof: c.Calibration.RoofWeight,
		},
	}
}

// Engine builds the validated step engine for this house.
func (c Config) Engine() (*house.Engine, error) {
	env, err := c.Envelope()
	if err != nil {
		return nil, fmt.Errorf("building: %w", err)
	}
	e, err := house.NewEngine(env, c.AuxConfig(), c.CalibrationValues())
	if err != nil {
		return nil, fmt.Errorf("engine: %w", err)
	}
	return e, nil
}

func (c Config) SimConfig() sim.Config {
	return sim.Config{
		HouseID:   c.HouseID,
		StepHours: c.Simulation.StepHours,
		MaxSteps:  c.Simulation.MaxSteps,
		StartTemp: c.Simulation.StartTemp,
	}
}

// YAML renders the effective configuration.
func (c Config) YAML() ([]byte, error) {
	return yaml.Marshal(c)
}
