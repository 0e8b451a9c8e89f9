package mqttctrl

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/Agrid-Dev/thermohouse/internal/house"
	"github.com/Agrid-Dev/thermohouse/internal/ports"
)

type Config struct {
	// Identity
	HouseID string

	// MQTT connection
	BrokerURL string
	ClientID  string

	// Topics
	BaseTopic string

	// Behavior
	QoS             byte
	RetainSnapshot  bool
	PublishInterval time.Duration

	Username string
	Password string
}

// Controller publishes the house snapshot to <base>/snapshot whenever it
// changes. It never subscribes: the house cannot be driven over MQTT.
type Controller struct {
	svc ports.HouseService
	cfg Config

	client    mqtt.Client
	newClient func(*mqtt.ClientOptions) mqtt.Client
}

func New(svc ports.HouseService, cfg Config) (*Controller, error) {
	// ---- defaults ----

	if cfg.BrokerURL == "" {
		cfg.BrokerURL = "tcp://localhost:1883"
	}

	if cfg.HouseID == "" {
		return nil, errors.New("mqtt: HouseID is required")
	}
	if cfg.BaseTopic == "" {
		cfg.BaseTopic = "thermohouse/" + cfg.HouseID
	}
	if cfg.ClientID == "" {
		cfg.ClientID = "thermohouse-" + cfg.HouseID
	}
	if cfg.PublishInterval <= 0 {
		cfg.PublishInterval = 1 * time.Second
	}
	if cfg.QoS > 1 {
		return nil, errors.New("mqtt: QoS must be 0 or 1")
	}
	return &Controller{
		svc:       svc,
		cfg:       cfg,
		newClient: mqtt.NewClient,
	}, nil
}

func (c *Controller) Run(ctx context.Context) error {
	opts := mqtt.NewClientOptions().
		AddBroker(c.cfg.BrokerURL).
		SetClientID(c.cfg.ClientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(2 * time.Second)

	if c.cfg.Username != "" {
		opts.SetUsername(c.cfg.Username)
		opts.SetPassword(c.cfg.Password)
	}

	c.client = c.newClient(opts)
	tok := c.client.Connect()
	tok.Wait()
	if err := tok.Error(); err != nil {
		return fmt.Errorf("mqtt connect: %w", err)
	}

	ticker := time.NewTicker(c.cfg.PublishInterval)
	defer ticker.Stop()

	// publish immediately once
	last := c.svc.Get()
	c.publish(last)

	for {
		select {
		case <-ctx.Done():
			c.client.Disconnect(250)
			return ctx.Err()

		case <-ticker.C:
			last = c.publishIfChanged(last)
		}
	}
}

func (c *Controller) publishIfChanged(last house.Snapshot) house.Snapshot {
	cur := c.svc.Get()
	if cur != last {
		c.publish(cur)
	}
	return cur
}

func (c *Controller) publish(s house.Snapshot) {
	dto := snapshotDTO{
		HouseID:             c.cfg.HouseID,
		Step:                s.Step,
		ElapsedHours:        s.ElapsedHours,
		InteriorTemperature: s.InteriorTemperature,
		AmbientTemperature:  s.AmbientTemperature,
		SunOut:              s.SunOut,
		StoredHeat:          s.StoredHeat,
		UsedAux:             s.UsedAux,
		AuxSteps:            s.AuxSteps,
		AuxEnergy:           s.AuxEnergy,
		Comfort:             s.Comfort.String(),
	}
	b, _ := json.Marshal(dto)
	c.client.Publish(c.topic("snapshot"), c.cfg.QoS, c.cfg.RetainSnapshot, b)
}

type snapshotDTO struct {
	HouseID             string  `json:"house_id"`
	Step                int     `json:"step"`
	ElapsedHours        float64 `json:"elapsed_hours"`
	InteriorTemperature float64 `json:"interior_temperature"`
	AmbientTemperature  float64 `json:"ambient_temperature"`
	SunOut              bool    `json:"sun_out"`
	StoredHeat          float64 `json:"stored_heat"`
	UsedAux             bool    `json:"used_aux"`
	AuxSteps            int     `json:"aux_steps"`
	AuxEnergy           float64 `json:"aux_energy"`
	Comfort             string  `json:"comfort"`
}

func (c *Controller) topic(suffix string) string {
	return strings.TrimRight(c.cfg.BaseTopic, "/") + "/" + suffix
}
