// Пакет events — доменные события управления случаями отсутствия.
// События публикуются после успешной записи; ошибка публикации
// не отменяет уже выполненное изменение.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

// Типы событий.
const (
	CaseOpened           = "case.opened"
	CaseTransitioned     = "case.transitioned"
	ReferralOpened       = "referral.opened"
	ReferralTransitioned = "referral.transitioned"
	MilestoneCompleted   = "milestone.completed"
	MilestoneSkipped     = "milestone.skipped"
)

// Event — доменное событие.
type Event struct {
	ID         string            `json:"id"`
	Type       string            `json:"type"`
	OccurredAt time.Time         `json:"occurred_at"`
	Actor      string            `json:"actor"`
	CaseID     string            `json:"case_id"`
	EntityID   string            `json:"entity_id"`
	From       string            `json:"from,omitempty"`
	To         string            `json:"to,omitempty"`
	Attributes map[string]string `json:"attributes,omitempty"`
}

// New создаёт событие с новым ID и текущим временем.
func New(eventType, actor, caseID, entityID string) Event {
	return Event{
		ID:         uuid.NewString(),
		Type:       eventType,
		OccurredAt: time.Now().UTC(),
		Actor:      actor,
		CaseID:     caseID,
		EntityID:   entityID,
	}
}

// Publisher — получатель доменных событий.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}

// --- Kafka ---

// messageWriter — подмножество *kafka.Writer, нужное издателю.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher публикует события в топик Kafka в формате JSON.
// Ключ сообщения — ID случая: события одного случая попадают
// в одну партицию и сохраняют порядок.
type KafkaPublisher struct {
	writer  messageWriter
	timeout time.Duration
	logger  *slog.Logger
}

// NewKafkaPublisher создаёт издателя для брокеров и топика.
func NewKafkaPublisher(brokers []string, topic string, logger *slog.Logger) *KafkaPublisher {
	writer := kafka.NewWriter(kafka.WriterConfig{
		Brokers:  brokers,
		Topic:    topic,
		Balancer: &kafka.Hash{},
	})
	return newKafkaPublisher(writer, logger)
}

func newKafkaPublisher(w messageWriter, logger *slog.Logger) *KafkaPublisher {
	return &KafkaPublisher{
		writer:  w,
		timeout: 10 * time.Second,
		logger:  logger.With(slog.String("component", "kafka_publisher")),
	}
}

// Publish сериализует событие и записывает его в Kafka.
func (p *KafkaPublisher) Publish(ctx context.Context, e Event) error {
	payload, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("сериализация события %s: %w", e.Type, err)
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	msg := kafka.Message{
		Key:   []byte(e.CaseID),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(e.Type)},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("запись события %s в Kafka: %w", e.Type, err)
	}

	p.logger.Debug("Событие опубликовано",
		slog.String("event_id", e.ID),
		slog.String("type", e.Type),
	)
	return nil
}

// Close закрывает writer.
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// --- Лог ---

// LogPublisher пишет события в slog. Используется без Kafka.
type LogPublisher struct {
	logger *slog.Logger
}

// NewLogPublisher создаёт издателя в лог.
func NewLogPublisher(logger *slog.Logger) *LogPublisher {
	return &LogPublisher{logger: logger.With(slog.String("component", "events"))}
}

// Publish записывает событие в лог уровня info.
func (p *LogPublisher) Publish(_ context.Context, e Event) error {
	attrs := []any{
		slog.String("event_id", e.ID),
		slog.String("type", e.Type),
		slog.String("actor", e.Actor),
		slog.String("case_id", e.CaseID),
		slog.String("entity_id", e.EntityID),
	}
	if e.From != "" || e.To != "" {
		attrs = append(attrs, slog.String("from", e.From), slog.String("to", e.To))
	}
	p.logger.Info("Доменное событие", attrs...)
	return nil
}

// Close — no-op.
func (p *LogPublisher) Close() error { return nil }
