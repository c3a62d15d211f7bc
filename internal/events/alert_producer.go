package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/IBM/sarama"

	"github.com/remessas-global/payment-screening/internal/config"
	"github.com/remessas-global/payment-screening/internal/domain"
)

// AlertProducer publishes compliance alerts for flagged transactions to
// the alert topic, keyed by transaction id.
type AlertProducer struct {
	producer sarama.SyncProducer
	topic    string
}

// NewAlertProducer creates a synchronous Kafka producer for alerts.
func NewAlertProducer(cfg config.KafkaConfig) (*AlertProducer, error) {
	saramaCfg := sarama.NewConfig()
	saramaCfg.Producer.Return.Successes = true
	saramaCfg.Producer.RequiredAcks = sarama.WaitForAll
	saramaCfg.Version = sarama.V2_8_0_0

	producer, err := sarama.NewSyncProducer(cfg.Brokers, saramaCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create alert producer: %w", err)
	}

	return &AlertProducer{
		producer: producer,
		topic:    cfg.AlertTopic,
	}, nil
}

// PublishAlert sends the screening result to the alert topic.
func (p *AlertProducer) PublishAlert(ctx context.Context, result *domain.ScreeningResult) error {
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal alert: %w", err)
	}

	_, _, err = p.producer.SendMessage(&sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(result.TransactionID),
		Value: sarama.ByteEncoder(data),
	})
	if err != nil {
		return fmt.Errorf("failed to publish alert: %w", err)
	}

	return nil
}

func (p *AlertProducer) Close() error {
	return p.producer.Close()
}
