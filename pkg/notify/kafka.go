package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/confluentinc/confluent-kafka-go/kafka"
	"github.com/gosimple/slug"
)

const ChannelKafka = "kafka"

type kafkaProducer interface {
	Produce(msg *kafka.Message, deliveryChan chan kafka.Event) error
	Flush(timeoutMs int) int
	Close()
}

type kafkaAdmin interface {
	CreateTopics(ctx context.Context, topics []kafka.TopicSpecification, options ...kafka.CreateTopicsAdminOption) ([]kafka.TopicResult, error)
	Close()
}

// KafkaPublisher writes each recipient's alerts to its own topic,
// <prefix>.<slug(email)>, created on first use.
type KafkaPublisher struct {
	producer kafkaProducer
	admin    kafkaAdmin
	prefix   string
}

func NewKafkaPublisher(addrs, prefix string) (*KafkaPublisher, error) {
	if addrs == "" {
		return nil, fmt.Errorf("kafka brokers: %w", ErrNotConfigured)
	}

	producer, err := kafka.NewProducer(&kafka.ConfigMap{
		"bootstrap.servers": addrs,
		"acks":              "all",
	})
	if err != nil {
		return nil, err
	}

	admin, err := kafka.NewAdminClientFromProducer(producer)
	if err != nil {
		producer.Close()
		return nil, err
	}

	return newKafkaPublisher(producer, admin, prefix), nil
}

func newKafkaPublisher(producer kafkaProducer, admin kafkaAdmin, prefix string) *KafkaPublisher {
	if prefix == "" {
		prefix = "license-alerts"
	}
	return &KafkaPublisher{producer: producer, admin: admin, prefix: prefix}
}

func (p *KafkaPublisher) Name() string { return ChannelKafka }

// TopicFor returns the per-recipient topic name.
func (p *KafkaPublisher) TopicFor(destination string) string {
	return p.prefix + "." + slug.Make(destination)
}

func (p *KafkaPublisher) EnsureSubscribed(ctx context.Context, destination string) error {
	results, err := p.admin.CreateTopics(ctx, []kafka.TopicSpecification{{
		Topic:             p.TopicFor(destination),
		NumPartitions:     1,
		ReplicationFactor: 1,
	}})
	if err != nil {
		return err
	}

	for _, r := range results {
		switch r.Error.Code() {
		case kafka.ErrNoError, kafka.ErrTopicAlreadyExists:
		default:
			return r.Error
		}
	}
	return nil
}

type kafkaAlert struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

func (p *KafkaPublisher) Publish(ctx context.Context, destination string, m Message) error {
	value, err := json.Marshal(kafkaAlert{To: m.To, Subject: m.Subject, Body: m.Body})
	if err != nil {
		return err
	}

	topic := p.TopicFor(destination)
	delivery := make(chan kafka.Event, 1)
	err = p.producer.Produce(&kafka.Message{
		TopicPartition: kafka.TopicPartition{Topic: &topic, Partition: kafka.PartitionAny},
		Key:            []byte(destination),
		Value:          value,
	}, delivery)
	if err != nil {
		return err
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case ev := <-delivery:
		msg, ok := ev.(*kafka.Message)
		if !ok {
			return fmt.Errorf("unexpected delivery event %v", ev)
		}
		return msg.TopicPartition.Error
	}
}

func (p *KafkaPublisher) Close() {
	p.producer.Flush(5000)
	p.admin.Close()
	p.producer.Close()
}
