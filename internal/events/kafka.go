package events

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/segmentio/kafka-go"
)

// KafkaSink forwards events to a Kafka topic. Writes are asynchronous so
// Notify never blocks the publisher.
type KafkaSink struct {
	writer *kafka.Writer
}

func NewKafkaSink(brokers []string, topic string) *KafkaSink {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		BatchSize:    100,
		BatchTimeout: 10 * time.Millisecond,
		RequiredAcks: kafka.RequireOne,
		Async:        true,
		Completion: func(messages []kafka.Message, err error) {
			if err != nil {
				log.Printf("failed to write %d events to kafka: %v", len(messages), err)
			}
		},
	}
	return &KafkaSink{writer: writer}
}

func (s *KafkaSink) Notify(e Event) {
	msg, err := encodeMessage(e)
	if err != nil {
		log.Printf("failed to encode %s event: %v", e.Type, err)
		return
	}
	// Async writers return immediately; delivery errors go to Completion.
	if err := s.writer.WriteMessages(context.Background(), msg); err != nil {
		log.Printf("failed to queue %s event: %v", e.Type, err)
	}
}

func (s *KafkaSink) Close() error {
	return s.writer.Close()
}

func encodeMessage(e Event) (kafka.Message, error) {
	value, err := json.Marshal(e)
	if err != nil {
		return kafka.Message{}, err
	}
	return kafka.Message{
		Key:   []byte(e.Subject),
		Value: value,
		Time:  e.Timestamp,
		Headers: []kafka.Header{
			{Key: "event-type", Value: []byte(e.Type)},
		},
	}, nil
}
