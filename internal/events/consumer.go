package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/IBM/sarama"
	"go.uber.org/zap"

	"github.com/remessas-global/payment-screening/internal/config"
	"github.com/remessas-global/payment-screening/internal/domain"
	"github.com/remessas-global/payment-screening/internal/service"
)

// TransactionConsumer ingests remittance transactions from Kafka and runs
// them through the screening service. It is an alternative entry point to
// the HTTP API for upstream systems that emit transaction events.
type TransactionConsumer struct {
	consumerGroup sarama.ConsumerGroup
	svc           *service.ScreeningService
	topics        []string
	logger        *zap.Logger
}

// NewTransactionConsumer creates a consumer group for the transaction topic.
func NewTransactionConsumer(cfg config.KafkaConfig, svc *service.ScreeningService, logger *zap.Logger) (*TransactionConsumer, error) {
	saramaCfg := sarama.NewConfig()
	saramaCfg.Consumer.Group.Rebalance.Strategy = sarama.BalanceStrategyRoundRobin
	saramaCfg.Consumer.Offsets.Initial = sarama.OffsetOldest
	saramaCfg.Version = sarama.V2_8_0_0

	consumerGroup, err := sarama.NewConsumerGroup(cfg.Brokers, cfg.ConsumerGroup, saramaCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create consumer group: %w", err)
	}

	return &TransactionConsumer{
		consumerGroup: consumerGroup,
		svc:           svc,
		topics:        []string{cfg.TransactionTopic},
		logger:        logger,
	}, nil
}

// Start runs the consume loop until the context is canceled.
func (c *TransactionConsumer) Start(ctx context.Context) error {
	handler := &transactionHandler{
		svc:    c.svc,
		logger: c.logger,
	}

	for {
		if err := c.consumerGroup.Consume(ctx, c.topics, handler); err != nil {
			if ctx.Err() != nil {
				return nil // Context canceled
			}
			c.logger.Error("error from consumer", zap.Error(err))
			time.Sleep(time.Second * 5) // Retry backoff
		}
	}
}

func (c *TransactionConsumer) Close() error {
	return c.consumerGroup.Close()
}

type transactionHandler struct {
	svc    *service.ScreeningService
	logger *zap.Logger
}

func (h *transactionHandler) Setup(_ sarama.ConsumerGroupSession) error   { return nil }
func (h *transactionHandler) Cleanup(_ sarama.ConsumerGroupSession) error { return nil }
func (h *transactionHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for message := range claim.Messages() {
		h.processMessage(session.Context(), message)
		session.MarkMessage(message, "")
	}
	return nil
}

func (h *transactionHandler) processMessage(ctx context.Context, msg *sarama.ConsumerMessage) {
	var req domain.TransactionRequest
	if err := json.Unmarshal(msg.Value, &req); err != nil {
		h.logger.Error("failed to unmarshal transaction event",
			zap.String("topic", msg.Topic),
			zap.Error(err),
		)
		return // Skip malformed
	}
	if req.Timestamp.IsZero() {
		// Screening needs a timezone-aware timestamp; malformed events
		// are the producer's problem, same as malformed HTTP requests.
		h.logger.Error("transaction event missing timestamp", zap.String("topic", msg.Topic))
		return
	}

	result := h.svc.Screen(ctx, req)
	h.logger.Info("event transaction screened",
		zap.String("transaction_id", result.TransactionID),
		zap.String("decision", string(result.Decision)),
		zap.Int("risk_score", result.RiskScore),
	)
}
