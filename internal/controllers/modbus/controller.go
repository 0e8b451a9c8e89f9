package modbusctrl

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	mbserver "github.com/tbrandon/mbserver"

	"github.com/Agrid-Dev/thermohouse/internal/ports"
)

// Register map. All addresses are read only.
//
//	coils / discrete inputs: 0 aux used, 1 sun out
//	input registers:         0 interior, 1 ambient (°F x100, signed)
//	                         2 stored heat (BTU, clamped to uint16)
//	                         3 comfort, 4 step (clamped to uint16)
//	holding registers:       0 aux setpoint, 1 min temp, 2 max temp (°F x100)
const (
	coilCount    = 2
	inputCount   = 5
	holdingCount = 3
)

// Config for the Modbus controller.
type Config struct {
	HouseID string
	Addr    string
	UnitID  byte // UnitID (Modbus slave/unit ID). Use an integer 1..247.
}

type Controller struct {
	svc ports.HouseService
	cfg Config

	serv *mbserver.Server
}

func New(svc ports.HouseService, cfg Config) (*Controller, error) {
	if cfg.UnitID == 0 {
		return nil, errors.New("modbus: UnitID is required (non-zero)")
	}
	if cfg.Addr == "" {
		cfg.Addr = "127.0.0.1:1502"
	}
	return &Controller{svc: svc, cfg: cfg}, nil
}

// Run starts the Modbus server and serves reads straight from the house
// snapshot. Every write function answers IllegalFunction. It blocks until ctx
// is canceled.
func (c *Controller) Run(ctx context.Context) error {
	serv := mbserver.NewServer()
	c.serv = serv

	// Register handlers BEFORE starting the TCP listener to avoid races inside mbserver
	// between handler registration and the server's goroutines.
	serv.RegisterFunctionHandler(1, c.readBits)
	serv.RegisterFunctionHandler(2, c.readBits)
	serv.RegisterFunctionHandler(3, c.readHoldingRegisters)
	serv.RegisterFunctionHandler(4, c.readInputRegisters)
	for _, fn := range []uint8{5, 6, 15, 16} {
		serv.RegisterFunctionHandler(fn, rejectWrite)
	}

	if err := serv.ListenTCP(c.cfg.Addr); err != nil {
		return fmt.Errorf("mbserver listen tcp %s: %w", c.cfg.Addr, err)
	}

	// Block until ctx.Done()
	<-ctx.Done()
	serv.Close()
	return ctx.Err()
}

func (c *Controller) readBits(_ *mbserver.Server, frame mbserver.Framer) ([]byte, *mbserver.Exception) {
	start, qty, exc := readRange(frame.GetData(), coilCount, 2000)
	if exc != nil {
		return []byte{}, exc
	}
	snap := c.svc.Get()
	bits := [coilCount]bool{snap.UsedAux, snap.SunOut}

	// response: byte count + packed coil bytes
	var packed byte
	for i := 0; i < qty; i++ {
		if bits[start+i] {
			packed |= 1 << uint(i)
		}
	}
	return []byte{1, packed}, &mbserver.Success
}

func (c *Controller) readInputRegisters(_ *mbserver.Server, frame mbserver.Framer) ([]byte, *mbserver.Exception) {
	start, qty, exc := readRange(frame.GetData(), inputCount, 125)
	if exc != nil {
		return []byte{}, exc
	}
	snap := c.svc.Get()
	regs := [inputCount]uint16{
		encodeTemp(snap.InteriorTemperature),
		encodeTemp(snap.AmbientTemperature),
		encodeCount(snap.StoredHeat),
		uint16(snap.Comfort),
		encodeCount(float64(snap.Step)),
	}
	return registerResponse(regs[start : start+qty]), &mbserver.Success
}

func (c *Controller) readHoldingRegisters(_ *mbserver.Server, frame mbserver.Framer) ([]byte, *mbserver.Exception) {
	start, qty, exc := readRange(frame.GetData(), holdingCount, 125)
	if exc != nil {
		return []byte{}, exc
	}
	snap := c.svc.Get()
	regs := [holdingCount]uint16{
		encodeTemp(snap.AuxSetpoint),
		encodeTemp(snap.MinTemp),
		encodeTemp(snap.MaxTemp),
	}
	return registerResponse(regs[start : start+qty]), &mbserver.Success
}

func rejectWrite(_ *mbserver.Server, _ mbserver.Framer) ([]byte, *mbserver.Exception) {
	return []byte{}, &mbserver.IllegalFunction
}

// readRange decodes the start/quantity header shared by all read functions.
// A nil exception means the range is valid.
func readRange(data []byte, size, maxQty int) (int, int, *mbserver.Exception) {
	if len(data) < 4 {
		return 0, 0, &mbserver.IllegalDataValue
	}
	start := int(binary.BigEndian.Uint16(data[0:2]))
	qty := int(binary.BigEndian.Uint16(data[2:4]))
	if qty == 0 || qty > maxQty {
		return 0, 0, &mbserver.IllegalDataValue
	}
	if start+qty > size {
		return 0, 0, &mbserver.IllegalDataAddress
	}
	return start, qty, nil
}

func registerResponse(regs []uint16) []byte {
	byteCount := len(regs) * 2
	resp := make([]byte, 1+byteCount)
	resp[0] = byte(byteCount)
	for i, r := range regs {
		binary.BigEndian.PutUint16(resp[1+i*2:1+i*2+2], r)
	}
	return resp
}

const TemperatureScale int = 100

func encodeTemp(v float64) uint16 {
	r := min(max(int(math.Round(v*float64(TemperatureScale))), math.MinInt16), math.MaxInt16)
	return uint16(int16(r))
}

func decodeTemp(u uint16) float64 {
	i := int16(u)
	return float64(i) / float64(TemperatureScale)
}

func encodeCount(v float64) uint16 {
	return uint16(min(max(int(math.Round(v)), 0), math.MaxUint16))
}
