package events

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/Freeeeeet/coach_booking/internal/model"
	"github.com/segmentio/kafka-go"
)

// MessageWriter часть *kafka.Writer, которой пользуется публикатор
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// KafkaPublisher пишет каждое событие в топик с именем его типа
type KafkaPublisher struct {
	writer      MessageWriter
	topicPrefix string
}

func NewKafkaPublisher(writer MessageWriter, topicPrefix string) *KafkaPublisher {
	return &KafkaPublisher{writer: writer, topicPrefix: topicPrefix}
}

// NewKafkaWriter создаёт writer без фиксированного топика, ключ распределяется по хешу
func NewKafkaWriter(brokers string) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(SplitBrokers(brokers)...),
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		AllowAutoTopicCreation: true,
	}
}

// SplitBrokers разбирает список брокеров через запятую
func SplitBrokers(brokers string) []string {
	var out []string
	for _, b := range strings.Split(brokers, ",") {
		if b = strings.TrimSpace(b); b != "" {
			out = append(out, b)
		}
	}
	return out
}

func (p *KafkaPublisher) Name() string { return "kafka" }

func (p *KafkaPublisher) Publish(ctx context.Context, events []*model.OutboxEvent) error {
	msgs := make([]kafka.Message, 0, len(events))
	for _, evt := range events {
		msgs = append(msgs, kafka.Message{
			Topic: p.topicPrefix + evt.EventType,
			// события одной заявки попадают в одну партицию и сохраняют порядок
			Key:   []byte(evt.AggregateType + ":" + strconv.FormatInt(evt.AggregateID, 10)),
			Value: evt.Payload,
			Headers: []kafka.Header{
				{Key: "event_id", Value: []byte(evt.EventID.String())},
				{Key: "event_type", Value: []byte(evt.EventType)},
				{Key: "recipient_id", Value: []byte(strconv.FormatInt(evt.RecipientID, 10))},
			},
		})
	}

	if err := p.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("write kafka messages: %w", err)
	}
	return nil
}
