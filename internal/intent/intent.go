package intent

// Entities carries the structured values the classifier pulled from a
// message. "unknown" means the model saw nothing usable.
type Entities struct {
	Amount       float64 `json:"amount"`
	Currency     string  `json:"currency"`
	Country      string  `json:"country"`
	TransferType string  `json:"transfer_type"`
}

// Result is one classification of an inbound message.
type Result struct {
	Intent        string   `json:"intent"`
	Confidence    float64  `json:"confidence"`
	Entities      Entities `json:"entities"`
	RequiresHuman bool     `json:"requires_human"`
	Emotion       string   `json:"user_emotion"`
}

// Fallback is the conservative default substituted when classification
// fails or times out: low confidence so the deterministic tiers take over,
// and no human flag so a model outage cannot flood the operators.
func Fallback() Result {
	return Result{Intent: "unknown", Confidence: 0.1, Emotion: "neutral"}
}

// ReceiptVerification is the vision verdict on a submitted receipt image.
type ReceiptVerification struct {
	IsReceipt bool     `json:"isReceipt"`
	IsSigned  bool     `json:"isSigned"`
	HasName   bool     `json:"hasName"`
	HasDigits bool     `json:"hasDigits"`
	Issues    []string `json:"issues"`
}

// SessionSnapshot is the read-only conversation context handed to the
// model collaborators.
type SessionSnapshot struct {
	State            string
	Country          string
	Amount           float64
	Currency         string
	PhysicalDelivery bool
	LoopCount        int
}

// Classifier labels an inbound message with an intent and entities.
type Classifier interface {
	Classify(text string, snap SessionSnapshot) (Result, error)
}

// Generator produces a contextual conversational reply. An empty string
// with nil error tells the caller to use its deterministic fallback.
type Generator interface {
	Generate(text string, snap SessionSnapshot, res Result) (string, error)
}

// ReceiptVerifier inspects a receipt image for a signature matching the
// sender's claimed name and last-4 digits.
type ReceiptVerifier interface {
	Verify(imageData []byte, mimeType, expectedName, expectedDigits string) (ReceiptVerification, error)
}
