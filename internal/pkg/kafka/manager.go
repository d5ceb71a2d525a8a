package kafka

import (
	"Lazo/internal/api/config"
	"Lazo/internal/service"
	"context"
	log "log/slog"

	"github.com/IBM/sarama"
)

// ConsumerManager 管理所有 Kafka 消费者
type ConsumerManager struct {
	repairConsumer sarama.ConsumerGroup
	repairHandler  sarama.ConsumerGroupHandler
}

// NewConsumerManager 构造函数
func NewConsumerManager(
	cfg *config.Config,
	actionSvc service.PostActionService,
) (*ConsumerManager, error) {
	saramaCfg := newSaramaConfig(cfg.Kafka)

	repairConsumer, err := sarama.NewConsumerGroup(cfg.Kafka.Brokers, cfg.KafkaRepairConsumer.GroupID, saramaCfg)
	if err != nil {
		return nil, err
	}
	repairHandler := NewRepairHandler(actionSvc)

	return &ConsumerManager{
		repairConsumer: repairConsumer,
		repairHandler:  repairHandler,
	}, nil
}

// Start 启动所有消费者
func (m *ConsumerManager) Start(ctx context.Context, cfg *config.Config) error {
	go func() {
		topic := cfg.KafkaRepairConsumer.Topic
		log.Info("Repair consumer started", "topic", topic)
		for {
			if err := m.repairConsumer.Consume(ctx, []string{topic}, m.repairHandler); err != nil {
				log.Error("Error from consumer", "err", err)
			}
			if ctx.Err() != nil {
				return
			}
		}
	}()

	<-ctx.Done()
	log.Info("Kafka Manager shutting down...")

	if err := m.repairConsumer.Close(); err != nil {
		log.Error("Failed to close repair consumer", "err", err)
	}
	return nil
}
