package config

import "fmt"

const (
	QueueTypeRabbitMQ = "rabbitmq"
	QueueTypeKafka    = "kafka"

	defaultQueueTopic = "ethdemo-events"
)

type QueueConfig struct {
	Type string `mapstructure:"type"`
	// URL is the amqp connection string used by rabbitmq
	URL string `mapstructure:"url"`
	// Brokers is the kafka bootstrap list
	Brokers []string `mapstructure:"brokers"`
	// Topic is the rabbitmq queue name or the kafka topic
	Topic string `mapstructure:"topic"`
}

func (cfg *QueueConfig) Validate() error {
	if cfg.Topic == "" {
		cfg.Topic = defaultQueueTopic
	}

	switch cfg.Type {
	case QueueTypeRabbitMQ:
		if cfg.URL == "" {
			return fmt.Errorf("queue url cannot be empty for rabbitmq")
		}
	case QueueTypeKafka:
		if len(cfg.Brokers) == 0 {
			return fmt.Errorf("queue brokers cannot be empty for kafka")
		}
	default:
		return fmt.Errorf("unsupported queue type %q", cfg.Type)
	}

	return nil
}
