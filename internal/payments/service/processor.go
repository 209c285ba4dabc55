package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/omise/omise-go"
	"github.com/omise/omise-go/operations"
)

// ChargeOutcome is the processor-neutral view of a charge.
type ChargeOutcome struct {
	ID             string `json:"id"`
	Status         string `json:"status"`
	Amount         int64  `json:"amount"`
	Currency       string `json:"currency"`
	BookingID      string `json:"booking_id,omitempty"`
	FailureCode    string `json:"failure_code,omitempty"`
	FailureMessage string `json:"failure_message,omitempty"`
}

// Settled reports whether the processor reached a final verdict.
// Redirect-based payment methods stay pending until the webhook fires.
func (c *ChargeOutcome) Settled() bool {
	return c.Status == chargeStatusSuccessful || c.Status == chargeStatusFailed
}

const (
	chargeStatusSuccessful = "successful"
	chargeStatusFailed     = "failed"
)

// ProcessorEvent is a webhook notification re-fetched from the processor.
// Fetching by ID authenticates the event; the webhook body itself is
// untrusted input.
type ProcessorEvent struct {
	Key    string
	Charge *ChargeOutcome
}

type Processor interface {
	CreateCharge(ctx context.Context, amount int64, currency, cardToken string, metadata map[string]any) (*ChargeOutcome, error)
	RetrieveCharge(ctx context.Context, id string) (*ChargeOutcome, error)
	RetrieveEvent(ctx context.Context, id string) (*ProcessorEvent, error)
}

type omiseProcessor struct {
	client *omise.Client
}

func NewOmiseProcessor(client *omise.Client) Processor {
	return &omiseProcessor{client: client}
}

func (p *omiseProcessor) CreateCharge(ctx context.Context, amount int64, currency, cardToken string, metadata map[string]any) (*ChargeOutcome, error) {
	charge := &omise.Charge{}
	err := p.client.Do(charge, &operations.CreateCharge{
		Amount:   amount,
		Currency: currency,
		Card:     cardToken,
		Metadata: metadata,
	})
	if err != nil {
		return nil, err
	}
	return outcomeFromCharge(charge), nil
}

func (p *omiseProcessor) RetrieveCharge(ctx context.Context, id string) (*ChargeOutcome, error) {
	charge := &omise.Charge{}
	if err := p.client.Do(charge, &operations.RetrieveCharge{ChargeID: id}); err != nil {
		return nil, err
	}
	return outcomeFromCharge(charge), nil
}

func (p *omiseProcessor) RetrieveEvent(ctx context.Context, id string) (*ProcessorEvent, error) {
	event := &omise.Event{}
	if err := p.client.Do(event, &operations.RetrieveEvent{EventID: id}); err != nil {
		return nil, err
	}

	result := &ProcessorEvent{Key: event.Key}
	if event.Data == nil {
		return result, nil
	}

	// Data comes back untyped, round-trip through JSON to get a Charge
	raw, err := json.Marshal(event.Data)
	if err != nil {
		return nil, fmt.Errorf("failed to re-encode event data: %w", err)
	}
	var charge omise.Charge
	if err := json.Unmarshal(raw, &charge); err != nil {
		return nil, fmt.Errorf("failed to decode event charge: %w", err)
	}
	result.Charge = outcomeFromCharge(&charge)
	return result, nil
}

func outcomeFromCharge(charge *omise.Charge) *ChargeOutcome {
	outcome := &ChargeOutcome{
		ID:       charge.ID,
		Status:   string(charge.Status),
		Amount:   charge.Amount,
		Currency: charge.Currency,
	}
	if bookingID, ok := charge.Metadata["booking_id"].(string); ok {
		outcome.BookingID = bookingID
	}
	if charge.FailureCode != nil {
		outcome.FailureCode = *charge.FailureCode
	}
	if charge.FailureMessage != nil {
		outcome.FailureMessage = *charge.FailureMessage
	}
	return outcome
}
