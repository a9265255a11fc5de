package session

import (
	"time"
)

// State is the current point of a conversation. The set is closed: every
// transition target must be one of these values.
type State string

const (
	StateInitial              State = "INITIAL"
	StateSendMoneyStarted     State = "SEND_MONEY_STARTED"
	StateAwaitingCountry      State = "AWAITING_COUNTRY"
	StateAwaitingAmount       State = "AWAITING_AMOUNT"
	StateAwaitingConfirmation State = "AWAITING_ACCOUNT_CONFIRMATION"
	StateAwaitingTransferType State = "AWAITING_TRANSFER_TYPE"
	StateCashDelivery         State = "CASH_DELIVERY"
	StateAwaitingBeneficiary  State = "AWAITING_BENEFICIARY_INFO"
	StateAwaitingReceipt      State = "AWAITING_RECEIPT"
	StateKYCRequired          State = "KYC_REQUIRED"
	StateHumanAssistance      State = "HUMAN_ASSISTANCE"
	StateWaitingForResolution State = "WAITING_FOR_RESOLUTION"
	StateDeliveryScheduled    State = "DELIVERY_SCHEDULED"
)

// Valid reports whether s belongs to the closed state set.
func (s State) Valid() bool {
	switch s {
	case StateInitial, StateSendMoneyStarted, StateAwaitingCountry,
		StateAwaitingAmount, StateAwaitingConfirmation, StateAwaitingTransferType,
		StateCashDelivery, StateAwaitingBeneficiary, StateAwaitingReceipt,
		StateKYCRequired, StateHumanAssistance, StateWaitingForResolution,
		StateDeliveryScheduled:
		return true
	}
	return false
}

// Delivery type tags.
const (
	DeliveryBankTransfer = "bank_transfer"
	DeliveryPhysical     = "physical_dollars"
	DeliveryCashDeposit  = "cash_deposit"
)

// Beneficiary is the recipient data accumulated for the active transfer.
type Beneficiary struct {
	Name    string `json:"name,omitempty"`
	Cedula  string `json:"cedula,omitempty"`
	Phone   string `json:"phone,omitempty"`
	Address string `json:"address,omitempty"`
	Account string `json:"account,omitempty"`
	Amount  string `json:"amount,omitempty"`
}

// Escalation is the human-handoff metadata for a paused session.
type Escalation struct {
	Reason         string    `json:"reason,omitempty"`
	Category       string    `json:"category,omitempty"`
	Urgency        string    `json:"urgency,omitempty"`
	TransferTime   time.Time `json:"transferTime,omitempty"`
	LastReminderAt time.Time `json:"lastReminderAt,omitempty"`
	ResolvedAt     time.Time `json:"resolvedAt,omitempty"`
	ResolutionNote string    `json:"resolutionNote,omitempty"`
}

// Data is the typed per-session field record. Field groups are cleared
// together when a new flow starts so stale values cannot leak between a
// physical-delivery flow and a bank-transfer flow.
type Data struct {
	// transfer fields
	Country          string  `json:"country,omitempty"`
	Amount           float64 `json:"amount,omitempty"`
	Currency         string  `json:"currency,omitempty"`
	DeliveryType     string  `json:"deliveryType,omitempty"`
	PhysicalDelivery bool    `json:"physicalDelivery,omitempty"`
	WantsNetAmount   bool    `json:"wantsNetAmount,omitempty"`

	// beneficiary fields
	Beneficiary         *Beneficiary `json:"beneficiary,omitempty"`
	BeneficiaryComplete bool         `json:"beneficiaryComplete,omitempty"`
	PartialBeneficiary  string       `json:"partialBeneficiary,omitempty"`

	// receipt fields
	ReceiptReceived bool `json:"receiptReceived,omitempty"`
	ReceiptSigned   bool `json:"receiptSigned,omitempty"`

	// compliance fields. KYCCompleted is identity-level and survives
	// ResetFlow; KYCRequired belongs to the active transfer.
	KYCRequired  bool `json:"kycRequired,omitempty"`
	KYCCompleted bool `json:"kycCompleted,omitempty"`

	// escalation fields
	BotPaused  bool        `json:"botPaused,omitempty"`
	Escalation *Escalation `json:"escalation,omitempty"`

	// physical delivery scheduling
	TrackingNumber string `json:"trackingNumber,omitempty"`
	ScheduledDate  string `json:"scheduledDate,omitempty"`

	LoopCount int `json:"loopCount,omitempty"`
}

// ResetFlow clears the transfer, beneficiary, receipt and delivery field
// groups for a fresh flow. Escalation metadata and LoopCount survive; they
// have their own lifecycle.
func (d *Data) ResetFlow() {
	d.Country = ""
	d.Amount = 0
	d.Currency = ""
	d.DeliveryType = ""
	d.PhysicalDelivery = false
	d.WantsNetAmount = false
	d.Beneficiary = nil
	d.BeneficiaryComplete = false
	d.PartialBeneficiary = ""
	d.ReceiptReceived = false
	d.ReceiptSigned = false
	d.KYCRequired = false
	d.TrackingNumber = ""
	d.ScheduledDate = ""
}

// SetPhysicalDelivery flips the session into the physical flow, keeping the
// PhysicalDelivery/DeliveryType pair consistent.
func (d *Data) SetPhysicalDelivery() {
	d.PhysicalDelivery = true
	d.DeliveryType = DeliveryPhysical
}

// Session is one participant's conversation.
type Session struct {
	Key          string
	State        State
	Data         Data
	LastActivity time.Time
	CreatedAt    time.Time
}

// New returns a fresh session for a participant key ("channel:chatID").
func New(key string) *Session {
	now := time.Now().UTC()
	return &Session{
		Key:          key,
		State:        StateInitial,
		LastActivity: now,
		CreatedAt:    now,
	}
}

// Touch records inbound activity; drives the retention sweep.
func (s *Session) Touch() {
	s.LastActivity = time.Now().UTC()
}
