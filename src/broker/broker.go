// Package broker carries build lifecycle events to downstream consumers.
package broker

import "context"

// Broker abstracts message publishing and consumption.
// Implemented in memory for local mode and tests, and over Redpanda/Kafka.
type Broker interface {
	// Publish sends a message to a topic. For Redpanda the key selects the
	// partition, so events for one build stay ordered.
	Publish(ctx context.Context, topic string, key string, value []byte) error

	// Subscribe returns a channel for consuming messages from a topic. The
	// channel is closed when ctx is done or the broker closes.
	// groupID is used for consumer group coordination in Kafka; an empty
	// groupID tails the topic. For in-memory broker, groupID is ignored.
	Subscribe(ctx context.Context, topic string, groupID string) (<-chan Message, error)

	// Close shuts down the broker connection gracefully.
	Close() error
}

// Message represents a consumed message from a broker.
type Message struct {
	Topic     string
	Key       string
	Value     []byte
	Offset    int64
	Partition int32
	Timestamp int64
}
