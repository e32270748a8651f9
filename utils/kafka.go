package utils

import (
	"context"
	"encoding/json"
	"log"

	"github.com/segmentio/kafka-go"

	"github.com/eventtrackpro/eventtrack-backend/config"
)

// KafkaPublisher streams activity records (registrations, attendance
// changes) to a Kafka topic for downstream analytics. Optional; a nil
// publisher means streaming is disabled.
type KafkaPublisher struct {
	Writer *kafka.Writer
}

// InitializeKafka builds the activity publisher, or nil when disabled
func InitializeKafka(cfg *config.Config) *KafkaPublisher {
	if !cfg.KafkaEnabled {
		return nil
	}

	writer := kafka.NewWriter(kafka.WriterConfig{
		Brokers: cfg.KafkaBrokers,
		Topic:   cfg.KafkaTopic,
	})
	log.Printf("✅ Kafka activity stream enabled: topic=%s brokers=%v", cfg.KafkaTopic, cfg.KafkaBrokers)
	return &KafkaPublisher{Writer: writer}
}

// PublishActivity streams one activity record, best-effort
func (p *KafkaPublisher) PublishActivity(ctx context.Context, eventType string, payload map[string]interface{}) {
	record := map[string]interface{}{
		"event_type": eventType,
		"payload":    payload,
	}
	msgBytes, err := json.Marshal(record)
	if err != nil {
		log.Printf("⚠️ Failed to encode activity record: %v", err)
		return
	}

	err = p.Writer.WriteMessages(ctx,
		kafka.Message{
			Key:   []byte(eventType),
			Value: msgBytes,
		},
	)
	if err != nil {
		log.Printf("⚠️ Failed to publish activity to Kafka: %v", err)
	}
}

// Close flushes and shuts down the writer
func (p *KafkaPublisher) Close() {
	if p == nil || p.Writer == nil {
		return
	}
	if err := p.Writer.Close(); err != nil {
		log.Printf("⚠️ Failed to close Kafka writer: %v", err)
	}
}
