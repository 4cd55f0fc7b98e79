// internal/service/poller.go
package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"rfid-service/internal/model"
)

// ReaderScanner is the part of ReaderService the poller drives
type ReaderScanner interface {
	IsConnected() bool
	Scan(ctx context.Context) (*model.TagReading, error)
}

// Poller scans at a fixed interval while the reader is connected. Scans
// run on a single goroutine so they are never pipelined.
type Poller struct {
	reader   ReaderScanner
	interval time.Duration
	logger   *zap.Logger
}

// NewPoller creates a poller
func NewPoller(reader ReaderScanner, interval time.Duration, logger *zap.Logger) *Poller {
	if interval <= 0 {
		interval = time.Second
	}
	return &Poller{
		reader:   reader,
		interval: interval,
		logger:   logger.With(zap.String("component", "poller")),
	}
}

// Run polls until ctx is done
func (p *Poller) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.logger.Info("Poller started", zap.Duration("interval", p.interval))
	defer p.logger.Info("Poller stopped")

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.poll(ctx)
		}
	}
}

func (p *Poller) poll(ctx context.Context) {
	if !p.reader.IsConnected() {
		return
	}

	reading, err := p.reader.Scan(ctx)
	if err != nil {
		if ctx.Err() == nil {
			p.logger.Warn("Poll scan failed", zap.Error(err))
		}
		return
	}

	if ce := p.logger.Check(zap.DebugLevel, "Poll scan"); ce != nil {
		ce.Write(
			zap.String("status", string(reading.Status)),
			zap.String("uid", reading.UID),
		)
	}
}
