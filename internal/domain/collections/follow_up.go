package collections

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/inmobiliaria/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// ContactType is the channel of a collections contact
type ContactType string

const (
	ContactTypePhoneCall        ContactType = "PHONE_CALL"
	ContactTypeWhatsApp         ContactType = "WHATSAPP"
	ContactTypeEmail            ContactType = "EMAIL"
	ContactTypeHomeVisit        ContactType = "HOME_VISIT"
	ContactTypeCollectionLetter ContactType = "COLLECTION_LETTER"
	ContactTypeLegalNotice      ContactType = "LEGAL_NOTICE"
)

// IsValid checks if the contact type is valid
func (t ContactType) IsValid() bool {
	switch t {
	case ContactTypePhoneCall, ContactTypeWhatsApp, ContactTypeEmail,
		ContactTypeHomeVisit, ContactTypeCollectionLetter, ContactTypeLegalNotice:
		return true
	}
	return false
}

// ContactOutcome is the result of a contact attempt
type ContactOutcome string

const (
	ContactOutcomePromiseToPay          ContactOutcome = "PROMISE_TO_PAY"
	ContactOutcomeContactedNoCommitment ContactOutcome = "CONTACTED_NO_COMMITMENT"
	ContactOutcomeNotContacted          ContactOutcome = "NOT_CONTACTED"
	ContactOutcomeWrongNumber           ContactOutcome = "WRONG_NUMBER"
	ContactOutcomeVoicemail             ContactOutcome = "VOICEMAIL"
	ContactOutcomePaymentMade           ContactOutcome = "PAYMENT_MADE"
)

// IsValid checks if the outcome is valid
func (o ContactOutcome) IsValid() bool {
	switch o {
	case ContactOutcomePromiseToPay, ContactOutcomeContactedNoCommitment, ContactOutcomeNotContacted,
		ContactOutcomeWrongNumber, ContactOutcomeVoicemail, ContactOutcomePaymentMade:
		return true
	}
	return false
}

// FollowUp is an append-only log entry of a contact attempt (seguimiento de cobranza)
type FollowUp struct {
	ID             uuid.UUID
	TenantID       uuid.UUID
	AccountID      uuid.UUID
	ContactType    ContactType
	ContactedAt    time.Time
	Description    string
	Outcome        ContactOutcome
	PromisedDate   *time.Time
	PromisedAmount *decimal.Decimal
	NextAction     string
	NextActionDate *time.Time
	UserID         *uuid.UUID
	CreatedAt      time.Time
}

// FollowUpInput carries the fields of a new follow-up
type FollowUpInput struct {
	ContactType    ContactType
	ContactedAt    time.Time
	Description    string
	Outcome        ContactOutcome
	PromisedDate   *time.Time
	PromisedAmount *decimal.Decimal
	NextAction     string
	NextActionDate *time.Time
	UserID         *uuid.UUID
}

// NewFollowUp validates and builds a follow-up for an account
func NewFollowUp(a *DelinquentAccount, in FollowUpInput) (*FollowUp, error) {
	if !in.ContactType.IsValid() {
		return nil, shared.NewValidationError("invalid contact type %q", in.ContactType)
	}
	if in.Outcome != "" && !in.Outcome.IsValid() {
		return nil, shared.NewValidationError("invalid contact outcome %q", in.Outcome)
	}
	if in.PromisedAmount != nil && !in.PromisedAmount.IsPositive() {
		return nil, shared.NewValidationError("promised amount must be positive")
	}
	if in.Outcome == ContactOutcomePromiseToPay && in.PromisedDate == nil {
		return nil, shared.NewValidationError("a payment promise requires a promised date")
	}
	now := time.Now()
	contactedAt := in.ContactedAt
	if contactedAt.IsZero() {
		contactedAt = now
	}
	return &FollowUp{
		ID:             shared.NewID(),
		TenantID:       a.TenantID,
		AccountID:      a.ID,
		ContactType:    in.ContactType,
		ContactedAt:    contactedAt,
		Description:    strings.TrimSpace(in.Description),
		Outcome:        in.Outcome,
		PromisedDate:   dateOrNil(in.PromisedDate),
		PromisedAmount: in.PromisedAmount,
		NextAction:     strings.TrimSpace(in.NextAction),
		NextActionDate: dateOrNil(in.NextActionDate),
		UserID:         in.UserID,
		CreatedAt:      now,
	}, nil
}

// IsPromise reports whether the contact produced a payment promise
func (f *FollowUp) IsPromise() bool {
	return f.Outcome == ContactOutcomePromiseToPay || f.PromisedDate != nil
}

func dateOrNil(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	d := shared.DateOf(*t)
	return &d
}
