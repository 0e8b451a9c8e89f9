package kafkactrl

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/Agrid-Dev/thermohouse/internal/sim"
)

// MessageWriter is the subset of *kafka.Writer the publisher needs.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type Config struct {
	Brokers []string
	Topic   string
	Buffer  int
	// BatchSize caps the readings sent per WriteMessages call.
	BatchSize int
	// Blocking makes OnStep wait for queue space instead of dropping the
	// reading. Batch runs need every step; live serving must not stall.
	Blocking bool
	// Epoch is the wall-clock time mapped to elapsed hour 0.
	Epoch time.Time
}

// Reading is the JSON payload of one step.
type Reading struct {
	HouseID      string    `json:"houseId"`
	Step         int       `json:"step"`
	Timestamp    time.Time `json:"timestamp"`
	ElapsedHours float64   `json:"elapsedHours"`
	AmbientF     float64   `json:"ambientF"`
	InteriorF    float64   `json:"interiorF"`
	SunOut       bool      `json:"sunOut"`
	StoredHeat   float64   `json:"storedHeatBtu"`
	UsedAux      bool      `json:"usedAux"`
	AuxBtu       float64   `json:"auxBtu"`
	Comfort      string    `json:"comfort"`
}

// Publisher is a sim.Observer that forwards every step to Kafka, keyed by
// house id. Unless Config.Blocking is set, OnStep never blocks and readings
// are dropped when the buffer is full.
type Publisher struct {
	w         MessageWriter
	log       *slog.Logger
	epoch     time.Time
	batchSize int
	blocking  bool
	queue     chan Reading
	done      chan struct{}

	dropped atomic.Int64
}

func NewWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		BatchTimeout: 5 * time.Millisecond,
	}
}

func New(cfg Config, log *slog.Logger) (*Publisher, error) {
	if len(cfg.Brokers) == 0 {
		return nil, errors.New("kafka: at least one broker is required")
	}
	if cfg.Topic == "" {
		return nil, errors.New("kafka: topic is required")
	}
	return NewWithWriter(NewWriter(cfg.Brokers, cfg.Topic), cfg, log), nil
}

func NewWithWriter(w MessageWriter, cfg Config, log *slog.Logger) *Publisher {
	if cfg.Buffer <= 0 {
		cfg.Buffer = 256
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 100
	}
	if cfg.Epoch.IsZero() {
		cfg.Epoch = time.Now().UTC()
	}
	return &Publisher{
		w:         w,
		log:       log,
		epoch:     cfg.Epoch,
		batchSize: cfg.BatchSize,
		blocking:  cfg.Blocking,
		queue:     make(chan Reading, cfg.Buffer),
		done:      make(chan struct{}),
	}
}

func (p *Publisher) OnStep(s sim.Step) {
	r := Reading{
		HouseID:      s.HouseID,
		Step:         s.Tick.Index,
		Timestamp:    p.epoch.Add(time.Duration(s.Tick.ElapsedHours * float64(time.Hour))),
		ElapsedHours: s.Tick.ElapsedHours,
		AmbientF:     s.Tick.Sample.Ambient,
		InteriorF:    s.Result.Temp,
		SunOut:       s.Tick.Sample.Sun,
		StoredHeat:   s.State.StoredHeat(),
		UsedAux:      s.Result.UsedAux,
		AuxBtu:       s.Result.Breakdown.Aux,
		Comfort:      s.Result.Comfort.String(),
	}
	if !p.blocking {
		select {
		case p.queue <- r:
		default:
			p.dropped.Add(1)
		}
		return
	}
	// Nothing drains the queue once Run has returned.
	select {
	case <-p.done:
		p.dropped.Add(1)
		return
	default:
	}
	select {
	case p.queue <- r:
	case <-p.done:
		p.dropped.Add(1)
	}
}

func (p *Publisher) Dropped() int64 { return p.dropped.Load() }

// Run drains queued readings in batches until ctx is canceled, then flushes
// what is left and closes the writer.
func (p *Publisher) Run(ctx context.Context) error {
	defer func() {
		close(p.done)
		if err := p.w.Close(); err != nil {
			p.log.Error("failed to close kafka writer", "err", err)
		}
	}()
	for {
		if ctx.Err() != nil {
			p.flush(nil)
			return ctx.Err()
		}
		select {
		case <-ctx.Done():
		case r := <-p.queue:
			batch := p.fill([]Reading{r})
			if ctx.Err() != nil {
				p.flush(batch)
				return ctx.Err()
			}
			if err := p.publish(ctx, batch); err != nil && ctx.Err() != nil {
				// Interrupted by shutdown, not by the broker.
				p.flush(batch)
				return ctx.Err()
			}
		}
	}
}

// fill tops batch up from the queue without waiting.
func (p *Publisher) fill(batch []Reading) []Reading {
	for len(batch) < p.batchSize {
		select {
		case r := <-p.queue:
			batch = append(batch, r)
		default:
			return batch
		}
	}
	return batch
}

// flush writes pending and then everything still queued, stopping at the
// first failed batch.
func (p *Publisher) flush(pending []Reading) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	batch := pending
	for {
		batch = p.fill(batch)
		if len(batch) == 0 {
			return
		}
		if err := p.publish(ctx, batch); err != nil {
			return
		}
		batch = nil
	}
}

func (p *Publisher) publish(ctx context.Context, batch []Reading) error {
	msgs := make([]kafka.Message, 0, len(batch))
	for _, r := range batch {
		b, err := json.Marshal(r)
		if err != nil {
			p.log.Error("marshal failed", "err", err)
			return err
		}
		msgs = append(msgs, kafka.Message{Key: []byte(r.HouseID), Value: b, Time: r.Timestamp})
	}
	if err := p.w.WriteMessages(ctx, msgs...); err != nil {
		p.log.Error("kafka write failed", "err", err, "house", batch[0].HouseID, "step", batch[0].Step, "count", len(batch))
		return err
	}
	p.log.Debug("published", "house", batch[0].HouseID, "step", batch[len(batch)-1].Step, "count", len(batch))
	return nil
}
