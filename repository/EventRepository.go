package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/segmentio/kafka-go"
	log "github.com/sirupsen/logrus"
)

type Event interface {
	Type() string
	Key() string
}

type EventDispatcher interface {
	Dispatch(ctx context.Context, event Event) error
	Close() error
}

type KafkaDispatcher struct {
	w *kafka.Writer
}

func NewKafkaDispatcher(brokers []string, topic string) (*KafkaDispatcher, error) {
	if len(brokers) == 0 {
		return nil, errors.New("at least one broker is required")
	}
	if topic == "" {
		return nil, errors.New("topic must be set")
	}
	return &KafkaDispatcher{
		w: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Topic:                  topic,
			Balancer:               &kafka.Hash{},
			RequiredAcks:           kafka.RequireOne,
			AllowAutoTopicCreation: true,
			BatchTimeout:           10 * time.Millisecond,
		},
	}, nil
}

func (k *KafkaDispatcher) Dispatch(ctx context.Context, event Event) error {
	msg, err := eventMessage(event)
	if err != nil {
		return err
	}
	return k.w.WriteMessages(ctx, msg)
}

func (k *KafkaDispatcher) Close() error {
	return k.w.Close()
}

func eventMessage(event Event) (kafka.Message, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return kafka.Message{}, err
	}
	return kafka.Message{
		Key:   []byte(event.Key()),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "type", Value: []byte(event.Type())},
		},
		Time: time.Now().UTC(),
	}, nil
}

// LogDispatcher is used when no brokers are configured.
type LogDispatcher struct{}

func (LogDispatcher) Dispatch(_ context.Context, event Event) error {
	msg, err := eventMessage(event)
	if err != nil {
		return err
	}
	log.WithFields(log.Fields{
		"type": event.Type(),
		"key":  string(msg.Key),
	}).Info(string(msg.Value))
	return nil
}

func (LogDispatcher) Close() error {
	return nil
}
