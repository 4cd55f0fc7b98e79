// internal/protocol/connection.go
package protocol

import "time"

// Reader link parameters. Neither is negotiable with the device.
const (
	BaudRate      = 57600
	CollectWindow = 100 * time.Millisecond
)

// SerialConfig represents serial connection configuration
type SerialConfig struct {
	Port     string `json:"port"`
	BaudRate int    `json:"baud_rate"`
}

// NewSerialConfig returns the reader's fixed 57600 8N1 configuration for a port
func NewSerialConfig(port string) *SerialConfig {
	return &SerialConfig{
		Port:     port,
		BaudRate: BaudRate,
	}
}
