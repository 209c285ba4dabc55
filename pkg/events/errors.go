package events

import "errors"

var (
	ErrProducerClosed = errors.New("producer is closed")
	ErrConsumerClosed = errors.New("consumer is closed")
	ErrEmptyKey       = errors.New("message key cannot be empty")
	ErrEmptyValue     = errors.New("message value cannot be empty")
	ErrNoBrokers      = errors.New("at least one broker is required")
	ErrNoTopic        = errors.New("topic cannot be empty")
)
