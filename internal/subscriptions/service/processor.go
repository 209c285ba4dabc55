package service

import (
	"context"

	"github.com/omise/omise-go"
	"github.com/omise/omise-go/operations"
)

// ChargeResult is the slice of a processor charge the purchase flow needs.
type ChargeResult struct {
	ID             string
	Paid           bool
	FailureCode    string
	FailureMessage string
}

// Charger abstracts the payment processor so the purchase flow is testable
// without live credentials.
type Charger interface {
	Charge(ctx context.Context, amount int64, currency, cardToken string, metadata map[string]any) (*ChargeResult, error)
}

type omiseCharger struct {
	client *omise.Client
}

func NewOmiseCharger(client *omise.Client) Charger {
	return &omiseCharger{client: client}
}

// Charge creates a card charge. Amount is in the currency's minor unit,
// the way the processor expects it.
func (c *omiseCharger) Charge(ctx context.Context, amount int64, currency, cardToken string, metadata map[string]any) (*ChargeResult, error) {
	charge := &omise.Charge{}
	err := c.client.Do(charge, &operations.CreateCharge{
		Amount:   amount,
		Currency: currency,
		Card:     cardToken,
		Metadata: metadata,
	})
	if err != nil {
		return nil, err
	}

	result := &ChargeResult{
		ID:   charge.ID,
		Paid: string(charge.Status) == "successful",
	}
	if charge.FailureCode != nil {
		result.FailureCode = *charge.FailureCode
	}
	if charge.FailureMessage != nil {
		result.FailureMessage = *charge.FailureMessage
	}
	return result, nil
}
