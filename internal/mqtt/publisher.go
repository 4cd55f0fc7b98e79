// internal/mqtt/publisher.go
package mqtt

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"rfid-service/internal/config"
	"rfid-service/internal/model"
)

const publishTimeout = 5 * time.Second

// tokenPublisher is the part of paho.Client used to send messages
type tokenPublisher interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token
}

// Publisher forwards reader events to an MQTT broker. It is a no-op when
// no broker host is configured.
type Publisher struct {
	client  paho.Client
	sender  tokenPublisher
	prefix  string
	qos     byte
	enabled bool
	logger  *zap.Logger
}

// New creates a publisher. Returns a disabled publisher if host is empty.
func New(cfg config.MQTTConfig, logger *zap.Logger) (*Publisher, error) {
	p := &Publisher{
		prefix: strings.TrimSuffix(cfg.TopicPrefix, "/"),
		qos:    cfg.QoS,
		logger: logger.With(zap.String("component", "mqtt")),
	}

	if cfg.Host == "" {
		p.logger.Info("MQTT disabled (no host configured)")
		return p, nil
	}
	p.enabled = true

	var broker string
	var tlsConfig *tls.Config

	if cfg.TLSEnabled() {
		broker = fmt.Sprintf("ssl://%s:%d", cfg.Host, cfg.Port)

		var err error
		tlsConfig, err = buildTLSConfig(cfg)
		if err != nil {
			return nil, fmt.Errorf("build TLS config: %w", err)
		}
	} else {
		if cfg.Port == 0 {
			cfg.Port = 1883
		}
		broker = fmt.Sprintf("tcp://%s:%d", cfg.Host, cfg.Port)
	}

	opts := paho.NewClientOptions().
		AddBroker(broker).
		SetClientID(cfg.ClientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetKeepAlive(60 * time.Second).
		SetConnectionLostHandler(p.handleConnectionLost).
		SetOnConnectHandler(p.handleConnect)

	if tlsConfig != nil {
		opts.SetTLSConfig(tlsConfig)
	}

	p.client = paho.NewClient(opts)
	p.sender = p.client

	paho.ERROR = zap.NewStdLog(p.logger.Named("paho"))
	paho.CRITICAL = zap.NewStdLog(p.logger.Named("paho"))
	if stdWarn, err := zap.NewStdLogAt(p.logger.Named("paho"), zapcore.WarnLevel); err == nil {
		paho.WARN = stdWarn
	}

	p.logger.Info("MQTT publisher configured", zap.String("broker", broker))
	return p, nil
}

func buildTLSConfig(cfg config.MQTTConfig) (*tls.Config, error) {
	tlsConfig := &tls.Config{MinVersion: tls.VersionTLS12}

	if cfg.CACert != "" {
		caCert, err := os.ReadFile(cfg.CACert)
		if err != nil {
			return nil, fmt.Errorf("read CA cert: %w", err)
		}
		caPool := x509.NewCertPool()
		if !caPool.AppendCertsFromPEM(caCert) {
			return nil, fmt.Errorf("no certificates found in %s", cfg.CACert)
		}
		tlsConfig.RootCAs = caPool
	}

	if cfg.ClientCert != "" && cfg.ClientKey != "" {
		cert, err := tls.LoadX509KeyPair(cfg.ClientCert, cfg.ClientKey)
		if err != nil {
			return nil, fmt.Errorf("load client cert: %w", err)
		}
		tlsConfig.Certificates = []tls.Certificate{cert}
	}

	return tlsConfig, nil
}

// Connect connects to the broker. The client keeps retrying in the
// background when ctx ends first.
func (p *Publisher) Connect(ctx context.Context) error {
	if !p.enabled {
		return nil
	}

	token := p.client.Connect()
	select {
	case <-token.Done():
		if err := token.Error(); err != nil {
			return fmt.Errorf("connect: %w", err)
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("connect: %w", ctx.Err())
	}
}

// Disconnect disconnects from the broker. No-op if disabled.
func (p *Publisher) Disconnect() {
	if !p.enabled || p.client == nil {
		return
	}
	p.client.Disconnect(250)
	p.logger.Info("MQTT disconnected")
}

// IsEnabled returns whether publishing is enabled
func (p *Publisher) IsEnabled() bool {
	return p.enabled
}

// Run publishes every event received until ctx is done or events is closed
func (p *Publisher) Run(ctx context.Context, events <-chan *model.ReaderEvent) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			if err := p.PublishEvent(event); err != nil {
				p.logger.Warn("Failed to publish event",
					zap.String("event_type", string(event.EventType)),
					zap.Error(err),
				)
			}
		}
	}
}

// PublishEvent sends one event as JSON. No-op if disabled.
func (p *Publisher) PublishEvent(event *model.ReaderEvent) error {
	if !p.enabled {
		return nil
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	topic := TopicFor(p.prefix, event.EventType)
	token := p.sender.Publish(topic, p.qos, false, payload)
	if !token.WaitTimeout(publishTimeout) {
		return fmt.Errorf("publish %s: timed out", topic)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish %s: %w", topic, err)
	}
	return nil
}

// TopicFor maps an event type to its topic under prefix. Tag reads go to
// "<prefix>/reading", other events to "<prefix>/<lower-case type>".
func TopicFor(prefix string, eventType model.EventType) string {
	name := strings.ToLower(string(eventType))
	if eventType == model.EventTagRead {
		name = "reading"
	}
	if prefix == "" {
		return name
	}
	return prefix + "/" + name
}

func (p *Publisher) handleConnect(client paho.Client) {
	p.logger.Info("MQTT connection established")
}

func (p *Publisher) handleConnectionLost(client paho.Client, err error) {
	p.logger.Warn("MQTT connection lost", zap.Error(err))
}
