// Package mqtt receives asynchronous meeting-outcome reports over MQTT and
// feeds them into the engine. The engine itself stays transport-free; this
// adapter is optional and enabled through configuration.
package mqtt

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	"github.com/cscx-ai/meetopt/core/model"
	"github.com/cscx-ai/meetopt/infra/logger"
)

// DefaultTopic is the subscription filter for outcome reports. The second
// segment carries the request ID.
const DefaultTopic = "meetings/+/outcome"

// Config defines the connection parameters for the outcome source.
type Config struct {
	Enabled    bool   `json:"enabled"`
	Broker     string `json:"broker"`
	ClientID   string `json:"client_id"`
	Username   string `json:"username"`
	Password   string `json:"password"`
	Topic      string `json:"topic"`
	QoS        byte   `json:"qos"`
	UseTLS     bool   `json:"use_tls"`
	ClientCert string `json:"client_cert"`
	ClientKey  string `json:"client_key"`
	CABundle   string `json:"ca_bundle"`
}

// Recorder is the slice of the engine the source needs.
type Recorder interface {
	RecordOutcome(ctx context.Context, requestID string, outcome model.OutcomeStatus, latencyHours *float64, acceptedSlot *model.ProposedTime) error
}

// outcomeReport is the wire payload published by the delivery service.
type outcomeReport struct {
	RequestID            string              `json:"request_id"`
	Outcome              model.OutcomeStatus `json:"outcome"`
	ResponseLatencyHours *float64            `json:"response_latency_hours,omitempty"`
	AcceptedSlot         *model.ProposedTime `json:"accepted_slot,omitempty"`
}

// Source subscribes to outcome reports and forwards them to the recorder.
type Source struct {
	cli      paho.Client
	topic    string
	qos      byte
	recorder Recorder
	log      logger.Logger
}

// NewSource connects to the broker and returns a Source ready to Start.
func NewSource(cfg Config, recorder Recorder) (*Source, error) {
	if recorder == nil {
		return nil, fmt.Errorf("recorder required")
	}
	topic := cfg.Topic
	if topic == "" {
		topic = DefaultTopic
	}
	opts, err := clientOptions(cfg)
	if err != nil {
		return nil, err
	}
	log := logger.New("mqtt-outcome-source")
	opts.OnConnectionLost = func(_ paho.Client, err error) {
		log.Errorf("connection lost: %v", err)
	}
	opts.OnReconnecting = func(_ paho.Client, _ *paho.ClientOptions) {
		log.Warnf("reconnecting to MQTT broker")
	}
	cli := paho.NewClient(opts)
	if token := cli.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("mqtt connect: %w", token.Error())
	}
	return &Source{cli: cli, topic: topic, qos: cfg.QoS, recorder: recorder, log: log}, nil
}

// Start subscribes and blocks until the context is cancelled.
func (s *Source) Start(ctx context.Context) error {
	handler := func(_ paho.Client, msg paho.Message) {
		s.handle(ctx, msg.Topic(), msg.Payload())
	}
	if token := s.cli.Subscribe(s.topic, s.qos, handler); token.Wait() && token.Error() != nil {
		return fmt.Errorf("mqtt subscribe: %w", token.Error())
	}
	s.log.Infof("subscribed to %s", s.topic)
	<-ctx.Done()
	return nil
}

// Close disconnects from the broker.
func (s *Source) Close() {
	s.cli.Disconnect(250)
}

func (s *Source) handle(ctx context.Context, topic string, payload []byte) {
	var report outcomeReport
	if err := json.Unmarshal(payload, &report); err != nil {
		s.log.Warnf("malformed outcome report on %s: %v", topic, err)
		return
	}
	if report.RequestID == "" {
		report.RequestID = requestIDFromTopic(topic)
	}
	if report.RequestID == "" || !report.Outcome.Valid() {
		s.log.Warnf("incomplete outcome report on %s", topic)
		return
	}
	if err := s.recorder.RecordOutcome(ctx, report.RequestID, report.Outcome, report.ResponseLatencyHours, report.AcceptedSlot); err != nil {
		s.log.Errorf("record outcome %s: %v", report.RequestID, err)
	}
}

// requestIDFromTopic extracts the request ID from meetings/<id>/outcome.
func requestIDFromTopic(topic string) string {
	parts := strings.Split(topic, "/")
	if len(parts) == 3 && parts[0] == "meetings" && parts[2] == "outcome" {
		return parts[1]
	}
	return ""
}

func clientOptions(cfg Config) (*paho.ClientOptions, error) {
	clientID := cfg.ClientID
	if clientID == "" {
		clientID = "meetopt-" + uuid.NewString()[:8]
	}
	opts := paho.NewClientOptions().AddBroker(cfg.Broker).SetClientID(clientID)
	opts.AutoReconnect = true
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
	}
	if cfg.Password != "" {
		opts.SetPassword(cfg.Password)
	}
	if cfg.UseTLS {
		tlsCfg, err := loadTLSConfig(cfg)
		if err != nil {
			return nil, err
		}
		opts.SetTLSConfig(tlsCfg)
	}
	return opts, nil
}

func loadTLSConfig(cfg Config) (*tls.Config, error) {
	if cfg.ClientCert == "" || cfg.ClientKey == "" || cfg.CABundle == "" {
		return nil, fmt.Errorf("tls config requires client_cert, client_key and ca_bundle")
	}
	cert, err := tls.LoadX509KeyPair(cfg.ClientCert, cfg.ClientKey)
	if err != nil {
		return nil, fmt.Errorf("load cert: %w", err)
	}
	caBytes, err := os.ReadFile(cfg.CABundle)
	if err != nil {
		return nil, fmt.Errorf("read ca: %w", err)
	}
	pool := x509.NewCertPool()
	pool.AppendCertsFromPEM(caBytes)
	return &tls.Config{Certificates: []tls.Certificate{cert}, RootCAs: pool, MinVersion: tls.VersionTLS12}, nil
}
