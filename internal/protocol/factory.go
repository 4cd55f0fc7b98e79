// internal/protocol/factory.go
package protocol

import "go.uber.org/zap"

// NewSerialFactory returns a Factory producing go.bug.st/serial backed transports
func NewSerialFactory() Factory {
	return func(config *SerialConfig, logger *zap.Logger) Transport {
		logger.Info("Creating serial protocol",
			zap.String("port", config.Port),
			zap.Int("baud_rate", config.BaudRate),
		)
		return NewSerialConnection(config, logger)
	}
}
