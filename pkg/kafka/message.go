package kafka

import (
	"slices"
	"time"

	kafkago "github.com/segmentio/kafka-go"
)

// Message is a record on a topic. Topic, Partition, Offset and Time are
// filled on consumed messages and ignored when publishing.
type Message struct {
	Key     []byte
	Value   []byte
	Headers map[string]string

	Topic     string
	Partition int
	Offset    int64
	Time      time.Time
}

// toKafka encodes headers in key order so identical messages produce
// identical records.
func toKafka(msg Message) kafkago.Message {
	km := kafkago.Message{Key: msg.Key, Value: msg.Value}
	if len(msg.Headers) == 0 {
		return km
	}
	keys := make([]string, 0, len(msg.Headers))
	for k := range msg.Headers {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	km.Headers = make([]kafkago.Header, 0, len(keys))
	for _, k := range keys {
		km.Headers = append(km.Headers, kafkago.Header{Key: k, Value: []byte(msg.Headers[k])})
	}
	return km
}

// fromKafka decodes a fetched record. A repeated header keeps its last value.
func fromKafka(km kafkago.Message) Message {
	msg := Message{
		Key:       km.Key,
		Value:     km.Value,
		Headers:   make(map[string]string, len(km.Headers)),
		Topic:     km.Topic,
		Partition: km.Partition,
		Offset:    km.Offset,
		Time:      km.Time,
	}
	for _, h := range km.Headers {
		msg.Headers[h.Key] = string(h.Value)
	}
	return msg
}
