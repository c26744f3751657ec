package audit

import (
	"strings"

	"github.com/IBM/sarama"
	jsoniter "github.com/json-iterator/go"
	"github.com/lifafa03/USDw-stablecoin-sub000/errors"
	"github.com/lifafa03/USDw-stablecoin-sub000/settings"
	"github.com/lifafa03/USDw-stablecoin-sub000/ulogger"
)

// Producer publishes audit events to kafka. Publishing is fire and forget,
// delivery errors are logged but never fail the ledger operation that
// produced the event.
type Producer struct {
	logger   ulogger.Logger
	topic    string
	producer sarama.AsyncProducer
}

func NewProducer(logger ulogger.Logger, tSettings *settings.Settings) (*Producer, error) {
	config := sarama.NewConfig()
	config.Producer.Return.Errors = true
	config.Producer.RequiredAcks = sarama.WaitForLocal

	brokers := strings.Split(tSettings.Kafka.Hosts, ",")

	producer, err := sarama.NewAsyncProducer(brokers, config)
	if err != nil {
		return nil, errors.NewServiceError("failed to create kafka producer for %v", brokers, err)
	}

	p := &Producer{
		logger:   logger,
		topic:    tSettings.Kafka.AuditTopic,
		producer: producer,
	}

	go func() {
		for err := range producer.Errors() {
			p.logger.Errorf("failed to publish audit event: %v", err)
		}
	}()

	return p, nil
}

func (p *Producer) Publish(event Event) {
	payload, err := jsoniter.Marshal(event)
	if err != nil {
		p.logger.Errorf("failed to marshal audit event %s: %v", event.EventID, err)
		return
	}

	p.producer.Input() <- &sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(event.Target),
		Value: sarama.ByteEncoder(payload),
	}
}

func (p *Producer) Close() error {
	return p.producer.Close()
}
