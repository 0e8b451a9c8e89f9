package ports

import "github.com/Agrid-Dev/thermohouse/internal/house"

// HouseService is the read-only port used by controllers (HTTP/MQTT/Modbus).
type HouseService interface {
	Get() house.Snapshot
}
