package notify

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/confluentinc/confluent-kafka-go/kafka"
	"github.com/stretchr/testify/require"
)

type fakeProducer struct {
	messages []*kafka.Message
}

func (f *fakeProducer) Produce(msg *kafka.Message, deliveryChan chan kafka.Event) error {
	f.messages = append(f.messages, msg)
	deliveryChan <- msg
	return nil
}

func (f *fakeProducer) Flush(int) int { return 0 }
func (f *fakeProducer) Close()        {}

type fakeAdmin struct {
	created []string
	code    kafka.ErrorCode
}

func (f *fakeAdmin) CreateTopics(_ context.Context, topics []kafka.TopicSpecification, _ ...kafka.CreateTopicsAdminOption) ([]kafka.TopicResult, error) {
	out := make([]kafka.TopicResult, 0, len(topics))
	for _, t := range topics {
		f.created = append(f.created, t.Topic)
		out = append(out, kafka.TopicResult{Topic: t.Topic, Error: kafka.NewError(f.code, "", false)})
	}
	return out, nil
}

func (f *fakeAdmin) Close() {}

func TestKafkaPublisherTopicPerRecipient(t *testing.T) {
	pub := newKafkaPublisher(&fakeProducer{}, &fakeAdmin{}, "alerts")

	a := pub.TopicFor("a@x.com")
	b := pub.TopicFor("b@x.com")
	require.True(t, strings.HasPrefix(a, "alerts."))
	require.NotEqual(t, a, b)
	require.Equal(t, a, pub.TopicFor("a@x.com"))
}

func TestKafkaPublisherEnsureSubscribed(t *testing.T) {
	admin := &fakeAdmin{code: kafka.ErrTopicAlreadyExists}
	pub := newKafkaPublisher(&fakeProducer{}, admin, "alerts")
	require.NoError(t, pub.EnsureSubscribed(context.Background(), "a@x.com"))
	require.Equal(t, []string{pub.TopicFor("a@x.com")}, admin.created)

	admin.code = kafka.ErrTopicAuthorizationFailed
	require.Error(t, pub.EnsureSubscribed(context.Background(), "a@x.com"))
}

func TestKafkaPublisherPublish(t *testing.T) {
	producer := &fakeProducer{}
	pub := newKafkaPublisher(producer, &fakeAdmin{}, "")

	require.NoError(t, pub.Publish(context.Background(), "a@x.com", Message{To: "a@x.com", Subject: "s", Body: "b"}))
	require.Len(t, producer.messages, 1)

	msg := producer.messages[0]
	require.Equal(t, pub.TopicFor("a@x.com"), *msg.TopicPartition.Topic)

	var alert kafkaAlert
	require.NoError(t, json.Unmarshal(msg.Value, &alert))
	require.Equal(t, "b", alert.Body)
}
