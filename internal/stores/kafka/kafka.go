package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/twmb/franz-go/pkg/kgo"
)

// Conf produces domain events to Kafka. Topics are namespaced with the
// configured prefix, e.g. "marketplace.order-created".
type Conf struct {
	client *kgo.Client
	prefix string
}

func NewConf(brokers []string, prefix string) (*Conf, error) {
	if len(brokers) == 0 {
		return nil, fmt.Errorf("no kafka brokers configured")
	}
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.AllowAutoTopicCreation(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka client: %w", err)
	}
	return &Conf{client: client, prefix: prefix}, nil
}

// Topic returns the fully qualified topic name.
func (c *Conf) Topic(topic string) string {
	return QualifiedTopic(c.prefix, topic)
}

func QualifiedTopic(prefix, topic string) string {
	prefix = strings.TrimSuffix(prefix, ".")
	if prefix == "" {
		return topic
	}
	return prefix + "." + topic
}

// ProduceMessage writes one record and waits for the broker to acknowledge it.
func (c *Conf) ProduceMessage(ctx context.Context, topic string, key, value []byte) error {
	record := &kgo.Record{Topic: c.Topic(topic), Key: key, Value: value}
	if err := c.client.ProduceSync(ctx, record).FirstErr(); err != nil {
		return fmt.Errorf("failed to produce message to %s: %w", record.Topic, err)
	}
	return nil
}

// Publish satisfies events.Publisher.
func (c *Conf) Publish(ctx context.Context, topic, key string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal %s event: %w", topic, err)
	}
	return c.ProduceMessage(ctx, topic, []byte(key), data)
}

func (c *Conf) Close() {
	c.client.Close()
}
