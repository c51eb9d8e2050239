package kafka

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	kafkago "github.com/segmentio/kafka-go"
)

const (
	writeTimeout     = 10 * time.Second
	writeMaxAttempts = 5
)

// Producer publishes to any number of topics. Each topic gets its own
// writer, created on first use and hashed by key so records for one
// aggregate stay on one partition.
type Producer struct {
	cfg Config

	mu      sync.Mutex
	writers map[string]*kafkago.Writer
	closed  bool
}

func NewProducer(cfg Config) *Producer {
	return &Producer{cfg: cfg, writers: make(map[string]*kafkago.Writer)}
}

// Publish writes messages to topic as one batch. It blocks until every
// replica acknowledged them or ctx ends.
func (p *Producer) Publish(ctx context.Context, topic string, messages ...Message) error {
	if len(messages) == 0 {
		return nil
	}
	w, err := p.writerFor(topic)
	if err != nil {
		return err
	}
	records := make([]kafkago.Message, len(messages))
	for i, msg := range messages {
		records[i] = toKafka(msg)
	}
	if err := w.WriteMessages(ctx, records...); err != nil {
		return fmt.Errorf("publish %d message(s) to %s: %w", len(records), topic, err)
	}
	return nil
}

// Close flushes and closes every writer. Publishing after Close fails.
func (p *Producer) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var errs []error
	for topic, w := range p.writers {
		if err := w.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close writer for %s: %w", topic, err))
		}
	}
	clear(p.writers)
	p.closed = true
	return errors.Join(errs...)
}

func (p *Producer) writerFor(topic string) (*kafkago.Writer, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil, errors.New("kafka producer is closed")
	}
	if w, ok := p.writers[topic]; ok {
		return w, nil
	}
	w := p.newWriter(topic)
	p.writers[topic] = w
	return w, nil
}

func (p *Producer) newWriter(topic string) *kafkago.Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(p.cfg.Brokers...),
		Topic:        topic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
		MaxAttempts:  writeMaxAttempts,
		WriteTimeout: writeTimeout,
		BatchTimeout: 10 * time.Millisecond,
	}
	if p.cfg.secured() {
		w.Transport = p.cfg.transport()
	}
	return w
}
