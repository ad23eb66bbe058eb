package events

import (
	"context"
	"fmt"
	"strings"

	"github.com/soltixdb/datahub/internal/config"
	"github.com/soltixdb/datahub/internal/logging"
)

// MessageHandler handles a raw message
type MessageHandler func(data []byte) error

// Transport moves raw messages between publishers and subscribers
type Transport interface {
	Publish(ctx context.Context, subject string, data []byte) error
	Subscribe(subject string, handler MessageHandler) error
	Unsubscribe(subject string) error
	Close() error
}

// Bus types accepted in configuration
const (
	TypeMemory = "memory"
	TypeNATS   = "nats"
	TypeRedis  = "redis"
	TypeKafka  = "kafka"
	TypeNone   = "none"
)

// Open creates the bus described by cfg. An empty type selects the in-memory
// bus.
func Open(cfg config.EventsConfig, logger *logging.Logger) (*Bus, error) {
	t, err := newTransport(cfg)
	if err != nil {
		return nil, err
	}
	return NewBus(t, cfg.Subject, logger), nil
}

func newTransport(cfg config.EventsConfig) (Transport, error) {
	busType := strings.ToLower(cfg.Type)
	if busType == "" {
		busType = TypeMemory
	}

	switch busType {
	case TypeMemory:
		return NewMemoryTransport(), nil

	case TypeNATS:
		return NewNATSTransport(cfg.URL, streamName(cfg.Subject))

	case TypeRedis:
		return NewRedisTransport(RedisConfig{
			URL:      cfg.URL,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			Group:    cfg.RedisGroup,
			Consumer: cfg.RedisConsumer,
		})

	case TypeKafka:
		return NewKafkaTransport(KafkaConfig{
			Brokers: cfg.KafkaBrokers,
			GroupID: cfg.KafkaGroupID,
		})

	case TypeNone:
		return discard{}, nil

	default:
		return nil, fmt.Errorf("unsupported events type: %s (supported: memory, nats, redis, kafka, none)", busType)
	}
}

func streamName(prefix string) string {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return strings.ToUpper(sanitizeName(prefix))
}

// discard drops every message
type discard struct{}

func (discard) Publish(context.Context, string, []byte) error { return nil }
func (discard) Subscribe(string, MessageHandler) error        { return nil }
func (discard) Unsubscribe(string) error                      { return nil }
func (discard) Close() error                                  { return nil }

// sanitizeName replaces characters NATS does not accept in stream and
// consumer names
func sanitizeName(subject string) string {
	result := make([]byte, 0, len(subject))
	for i := 0; i < len(subject); i++ {
		c := subject[i]
		if (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9') || c == '-' || c == '_' {
			result = append(result, c)
		} else {
			result = append(result, '_')
		}
	}
	return string(result)
}
