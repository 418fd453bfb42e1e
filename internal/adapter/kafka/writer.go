// Package kafka broadcasts approved decisions and critical verdicts to the
// district alerting topic.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/hazard-sentinel/internal/config"
	"github.com/couchcryptid/hazard-sentinel/internal/domain"
)

// AlertWriter produces alert messages to the configured Kafka topic.
// It implements engine.AlertSink.
type AlertWriter struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewAlertWriter creates a Kafka producer for the alert topic.
func NewAlertWriter(cfg *config.Config, logger *slog.Logger) *AlertWriter {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaAlertTopic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &AlertWriter{writer: w, logger: logger}
}

// decisionAlert is the wire form of an approved decision broadcast.
type decisionAlert struct {
	Kind       string                  `json:"kind"`
	Proposal   domain.DecisionProposal `json:"proposal"`
	OccurredAt time.Time               `json:"occurred_at"`
}

// verdictAlert is the wire form of a critical verdict broadcast.
type verdictAlert struct {
	Kind       string             `json:"kind"`
	Verdict    domain.RiskVerdict `json:"verdict"`
	Position   domain.Position    `json:"position"`
	OccurredAt time.Time          `json:"occurred_at"`
}

// PublishDecision broadcasts an approved proposal.
func (w *AlertWriter) PublishDecision(ctx context.Context, p domain.DecisionProposal) error {
	msg, err := serializeDecision(p)
	if err != nil {
		return err
	}
	return w.writer.WriteMessages(ctx, msg)
}

// PublishVerdict broadcasts a critical fused verdict for the given zone.
func (w *AlertWriter) PublishVerdict(ctx context.Context, v domain.RiskVerdict, pos domain.Position) error {
	msg, err := serializeVerdict(v, pos)
	if err != nil {
		return err
	}
	return w.writer.WriteMessages(ctx, msg)
}

func (w *AlertWriter) Close() error {
	return w.writer.Close()
}

// serializeDecision marshals an approved proposal into a Kafka message keyed
// by proposal id so replays of the same decision land on one partition.
func serializeDecision(p domain.DecisionProposal) (kafkago.Message, error) {
	data, err := json.Marshal(decisionAlert{Kind: "decision", Proposal: p, OccurredAt: domain.Now()})
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize decision alert: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(p.ID),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "alert_kind", Value: []byte("decision")},
			{Key: "action", Value: []byte(p.Action)},
		},
	}, nil
}

// serializeVerdict marshals a critical verdict keyed by its source so
// consumers can partition by deciding authority.
func serializeVerdict(v domain.RiskVerdict, pos domain.Position) (kafkago.Message, error) {
	data, err := json.Marshal(verdictAlert{Kind: "verdict", Verdict: v, Position: pos, OccurredAt: domain.Now()})
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize verdict alert: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(v.Source),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "alert_kind", Value: []byte("verdict")},
			{Key: "level", Value: []byte(v.Level.String())},
		},
	}, nil
}
