package kafka

import (
	"crypto/tls"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/segmentio/kafka-go/sasl"
	"github.com/segmentio/kafka-go/sasl/plain"
	"github.com/segmentio/kafka-go/sasl/scram"
)

// Config holds Kafka connection parameters.
type Config struct {
	ConsumerGroup string
	// FromBeginning makes a consumer group with no committed offset start at
	// the oldest retained message instead of the newest.
	FromBeginning bool

	// SASLMechanism is "PLAIN", "SCRAM-SHA-256" or "SCRAM-SHA-512".
	SASLMechanism string
	SASLUsername  string
	SASLPassword  string

	Brokers []string

	TLS         bool
	SASLEnabled bool
}

// secured reports whether connections need a custom dialer or transport.
func (c Config) secured() bool { return c.TLS || c.SASLEnabled }

func (c Config) tlsConfig() *tls.Config {
	if !c.TLS {
		return nil
	}
	return &tls.Config{MinVersion: tls.VersionTLS12}
}

// saslMechanism resolves the configured mechanism. It returns nil when SASL
// is disabled or the mechanism is unknown.
func (c Config) saslMechanism() sasl.Mechanism {
	if !c.SASLEnabled {
		return nil
	}
	switch c.SASLMechanism {
	case "SCRAM-SHA-256":
		m, err := scram.Mechanism(scram.SHA256, c.SASLUsername, c.SASLPassword)
		if err != nil {
			return nil
		}
		return m
	case "SCRAM-SHA-512":
		m, err := scram.Mechanism(scram.SHA512, c.SASLUsername, c.SASLPassword)
		if err != nil {
			return nil
		}
		return m
	case "PLAIN", "":
		return plain.Mechanism{Username: c.SASLUsername, Password: c.SASLPassword}
	default:
		return nil
	}
}

func (c Config) dialer() *kafkago.Dialer {
	return &kafkago.Dialer{
		Timeout:       10 * time.Second,
		DualStack:     true,
		TLS:           c.tlsConfig(),
		SASLMechanism: c.saslMechanism(),
	}
}

func (c Config) transport() *kafkago.Transport {
	return &kafkago.Transport{
		TLS:  c.tlsConfig(),
		SASL: c.saslMechanism(),
	}
}
