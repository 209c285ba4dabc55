package model

import "time"

const (
	UserTypeBuyer      = "buyer"
	UserTypeSeller     = "seller"
	UserTypeSuperAdmin = "superAdmin"
)

const (
	SubscriptionStatusNone    = "none"
	SubscriptionStatusActive  = "active"
	SubscriptionStatusExpired = "expired"
)

// PaymentRecord is one entry in a user's embedded payment history.
type PaymentRecord struct {
	Amount    float64   `json:"amount" bson:"amount" validate:"min=0"`
	Currency  string    `json:"currency" bson:"currency" validate:"required,iso4217"`
	Reference string    `json:"reference" bson:"reference" validate:"required"`
	Purpose   string    `json:"purpose" bson:"purpose" validate:"required,oneof=booking subscription"`
	PaidAt    time.Time `json:"paid_at" bson:"paid_at" validate:"required"`
}

type UserSubscription struct {
	PlanID    string     `json:"plan_id,omitempty" bson:"plan_id,omitempty" validate:"omitempty,mongodb"`
	Status    string     `json:"status" bson:"status" validate:"required,oneof=none active expired"`
	ExpiresAt *time.Time `json:"expires_at,omitempty" bson:"expires_at,omitempty" validate:"omitempty"`
}

type User struct {
	ID             string           `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	Type           string           `json:"type" bson:"type" validate:"required,oneof=buyer seller superAdmin"`
	Name           string           `json:"name" bson:"name" validate:"required,min=2,max=100"`
	Email          string           `json:"email" bson:"email" validate:"required,email"`
	Phone          string           `json:"phone,omitempty" bson:"phone" validate:"omitempty,e164"`
	CompanyName    string           `json:"company_name,omitempty" bson:"company_name" validate:"omitempty,max=200"`
	CompanyVATID   string           `json:"company_vat_id,omitempty" bson:"company_vat_id" validate:"omitempty,max=50"`
	PaymentHistory []PaymentRecord  `json:"payment_history,omitempty" bson:"payment_history" validate:"omitempty,dive"`
	Subscription   UserSubscription `json:"subscription" bson:"subscription" validate:"required"`
	CreatedAt      time.Time        `json:"created_at" bson:"created_at" validate:"omitempty"`
}

type UserUpdate struct {
	Type         string  `json:"type,omitempty" validate:"omitempty,oneof=buyer seller superAdmin"`
	Name         string  `json:"name,omitempty" validate:"omitempty,min=2,max=100"`
	Email        string  `json:"email,omitempty" validate:"omitempty,email"`
	Phone        *string `json:"phone,omitempty" validate:"omitempty,e164"`
	CompanyName  *string `json:"company_name,omitempty" validate:"omitempty,max=200"`
	CompanyVATID *string `json:"company_vat_id,omitempty" validate:"omitempty,max=50"`
}
