package app

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/Agrid-Dev/thermohouse/internal/house"
)

func TestEnvKeyTransform_TopLevel(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"HOUSE_ID", "house_id"},
		{"CONTROLLER", "controller"},
		{"ADDR", "addr"},
		{"", ""},
		{"   ", ""},
	}

	for _, tt := range tests {
		got := envKeyTransform(tt.in)
		if got != tt.want {
			t.Fatalf("envKeyTransform(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestEnvKeyTransform_Controllers(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"CONTROLLERS_HTTP_ADDR", "controllers.http.addr"},
		{"CONTROLLERS_MQTT_PUBLISH_INTERVAL", "controllers.mqtt.publish_interval"},
		{"CONTROLLERS_MQTT_BROKER_URL", "controllers.mqtt.broker_url"},
		{"CONTROLLERS_MODBUS_UNIT_ID", "controllers.modbus.unit_id"},
		{"CONTROLLERS_KAFKA_BROKERS", "controllers.kafka.brokers"},
		{"CONTROLLERS_HTTP", "controllers_http"},   // not enough parts -> fallback
		{"CONTROLLERS__ADDR", "controllers..addr"}, // edge case
		{"controllers_HTTP_addr", "controllers.http.addr"},
	}

	for _, tt := range tests {
		got := envKeyTransform(tt.in)
		if got != tt.want {
			t.Fatalf("envKeyTransform(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestEnvKeyTransform_Sections(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"BUILDING_SIDE_LENGTH", "building.side_length"},
		{"BUILDING_PANE_R", "building.pane_r"},
		{"AUX_MAX_OUTPUT", "aux.max_output"},
		{"AUX_ENABLED", "aux.enabled"},
		{"CALIBRATION_DIRECT_SOLAR_FRACTION", "calibration.direct_solar_fraction"},
		{"SIMULATION_STEP_HOURS", "simulation.step_hours"},
		{"LOGGING_LEVEL", "logging.level"},
		{"BUILDING", "building"}, // not enough parts -> passthrough
		{"AUX", "aux"},
	}

	for _, tt := range tests {
		got := envKeyTransform(tt.in)
		if got != tt.want {
			t.Fatalf("envKeyTransform(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestEnvTransformSplitsBrokers(t *testing.T) {
	key, v := envTransform("THERMOHOUSE_CONTROLLERS_KAFKA_BROKERS", "a:9092, b:9092,")
	if key != "controllers.kafka.brokers" {
		t.Fatalf("unexpected key %q", key)
	}
	if !reflect.DeepEqual(v, []string{"a:9092", "b:9092"}) {
		t.Fatalf("unexpected brokers %v", v)
	}
}

func noEnv() []string { return nil }

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := loadConfig("", noEnv)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(cfg, Default()) {
		t.Fatalf("expected defaults, got %+v", cfg)
	}
}

func TestLoadConfig_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := loadConfig(filepath.Join(t.TempDir(), "absent.yaml"), noEnv)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Building.SideLength != 50 || cfg.Simulation.StartTemp != 68 {
		t.Fatalf("expected defaults, got %+v", cfg)
	}
}

func TestLoadConfig_YAMLOverridesDefaults(t *testing.T) {
	path := writeFile(t, "house.yaml", `
house_id: cabin
building:
  side_length: 30
  pane_area: 120
aux:
  enabled: true
  setpoint: 66
controllers:
  mqtt:
    enabled: true
    publish_interval: 5s
  kafka:
    brokers: ["k1:9092", "k2:9092"]
`)
	cfg, err := loadConfig(path, noEnv)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.HouseID != "cabin" || cfg.Building.SideLength != 30 || cfg.Building.PaneArea != 120 {
		t.Fatalf("file values not applied: %+v", cfg)
	}
	if cfg.Building.Height != 25 {
		t.Fatalf("expected default height kept, got %v", cfg.Building.Height)
	}
	if !cfg.Aux.Enabled || cfg.Aux.Setpoint != 66 || cfg.Aux.Divisor != house.DefaultAuxDivisor {
		t.Fatalf("aux not merged: %+v", cfg.Aux)
	}
	if !cfg.Controllers.MQTT.Enabled || cfg.Controllers.MQTT.PublishInterval != 5*time.Second {
		t.Fatalf("mqtt not merged: %+v", cfg.Controllers.MQTT)
	}
	if !reflect.DeepEqual(cfg.Controllers.Kafka.Brokers, []string{"k1:9092", "k2:9092"}) {
		t.Fatalf("brokers not merged: %v", cfg.Controllers.Kafka.Brokers)
	}
}

func TestLoadConfig_JSON(t *testing.T) {
	path := writeFile(t, "house.json", `{"house_id":"json-house","simulation":{"step_hours":0.5}}`)
	cfg, err := loadConfig(path, noEnv)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.HouseID != "json-house" || cfg.Simulation.StepHours != 0.5 {
		t.Fatalf("json values not applied: %+v", cfg)
	}
}

func TestLoadConfig_UnsupportedExtension(t *testing.T) {
	path := writeFile(t, "house.toml", "house_id = 'x'")
	_, err := loadConfig(path, noEnv)
	if !errors.Is(err, ErrUnsupportedExtension) {
		t.Fatalf("expected ErrUnsupportedExtension, got %v", err)
	}
}

func TestLoadConfig_EnvOverridesFile(t *testing.T) {
	path := writeFile(t, "house.yaml", "house_id: from-file\nbuilding:\n  side_length: 30\n")
	environ := func() []string {
		return []string{
			"THERMOHOUSE_HOUSE_ID=from-env",
			"THERMOHOUSE_BUILDING_SIDE_LENGTH=40",
			"THERMOHOUSE_AUX_ENABLED=true",
			"THERMOHOUSE_CONTROLLERS_MODBUS_UNIT_ID=7",
			"THERMOHOUSE_CONTROLLERS_KAFKA_BROKERS=a:1,b:2",
			"THERMOHOUSE_SIMULATION_REPLAY_INTERVAL=250ms",
			"OTHER_HOUSE_ID=ignored",
		}
	}
	cfg, err := loadConfig(path, environ)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.HouseID != "from-env" {
		t.Fatalf("expected env house id, got %q", cfg.HouseID)
	}
	if cfg.Building.SideLength != 40 {
		t.Fatalf("expected env side length, got %v", cfg.Building.SideLength)
	}
	if !cfg.Aux.Enabled {
		t.Fatal("expected aux enabled from env")
	}
	if cfg.Controllers.Modbus.UnitID != 7 {
		t.Fatalf("expected unit id 7, got %d", cfg.Controllers.Modbus.UnitID)
	}
	if !reflect.DeepEqual(cfg.Controllers.Kafka.Brokers, []string{"a:1", "b:2"}) {
		t.Fatalf("unexpected brokers %v", cfg.Controllers.Kafka.Brokers)
	}
	if cfg.Simulation.ReplayInterval != 250*time.Millisecond {
		t.Fatalf("unexpected replay interval %v", cfg.Simulation.ReplayInterval)
	}
}

func TestDefaultEngine(t *testing.T) {
	e, err := Default().Engine()
	if err != nil {
		t.Fatal(err)
	}
	env := e.Envelope()
	if env.Pane.Area != 200 {
		t.Fatalf("expected derived pane area 200, got %v", env.Pane.Area)
	}
	if env.Wall.Area != 1050 {
		t.Fatalf("expected wall area 1050, got %v", env.Wall.Area)
	}
	if env.ThermalCapacity() != 20000 {
		t.Fatalf("expected capacity 20000, got %v", env.ThermalCapacity())
	}
	if e.Calibration() != house.DefaultCalibration() {
		t.Fatalf("expected default calibration, got %+v", e.Calibration())
	}
}

func TestEngineRejectsInvalidBuilding(t *testing.T) {
	cfg := Default()
	cfg.Building.SideLength = 0
	_, err := cfg.Engine()
	if !errors.Is(err, house.ErrNonPositiveSideLength) {
		t.Fatalf("expected ErrNonPositiveSideLength, got %v", err)
	}

	cfg = Default()
	cfg.Aux.Divisor = 0
	_, err = cfg.Engine()
	if !errors.Is(err, house.ErrZeroAuxDivisor) {
		t.Fatalf("expected ErrZeroAuxDivisor, got %v", err)
	}
}

func TestEngineRejectsNegativeDivisorFromEnv(t *testing.T) {
	environ := func() []string {
		return []string{"THERMOHOUSE_AUX_ENABLED=true", "THERMOHOUSE_AUX_DIVISOR=-60"}
	}
	cfg, err := loadConfig("", environ)
	if err != nil {
		t.Fatalf("loadConfig() failed: %v", err)
	}
	if cfg.Aux.Divisor != -60 {
		t.Fatalf("expected divisor -60 from env, got %v", cfg.Aux.Divisor)
	}
	_, err = cfg.Engine()
	if !errors.Is(err, house.ErrNonPositiveAuxDivisor) {
		t.Fatalf("expected ErrNonPositiveAuxDivisor, got %v", err)
	}
}

func TestYAMLDump(t *testing.T) {
	out, err := Default().YAML()
	if err != nil {
		t.Fatal(err)
	}
	s := string(out)
	for _, want := range []string{"house_id: default", "side_length: 50", "replay_interval: 1s"} {
		if !strings.Contains(s, want) {
			t.Fatalf("expected %q in dump:\n%s", want, s)
		}
	}

	var back Config
	if err := yaml.Unmarshal(out, &back); err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(back, Default()) {
		t.Fatalf("dump does not decode back to defaults: %+v", back)
	}
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}
