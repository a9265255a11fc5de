package intent

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tecnoinversiones/remesabot/internal/config"
)

const classifyPrompt = `You are an assistant for a money transfer service to Venezuela.

ANALYZE the user's message and respond with a strict JSON object:
{
  "intent": "primary_intent",
  "confidence": 0.0-1.0,
  "entities": {
    "amount": number_or_0,
    "currency": "USD|DOP|PEN|COP|CLP|unknown",
    "country": "dominican|peru|ecuador|colombia|chile|unknown",
    "transfer_type": "bank_transfer|cash_deposit|physical_delivery|unknown"
  },
  "requires_human": boolean,
  "user_emotion": "neutral|frustrated|urgent|confused"
}

INTENTS:
- send_money: wants to transfer money (default bank_transfer unless specified)
- physical_delivery: wants physical dollar delivery in Venezuela
- cash_deposit: wants to deposit cash for transfer
- check_rate: wants exchange rates
- human_agent: wants human help
- greeting: hello/hi messages
- complaint: problems or dissatisfaction
- account_confirmation: confirming account ownership
- beneficiary_info: providing recipient details
- receipt_submission: sending payment proof
- kyc_confirmation: claiming identity verification is done
- thanks: gratitude, closing the conversation

Set requires_human=true for explicit requests for a person, supervisors or
managers, strong frustration, or problems the bot cannot resolve.

CURRENT SESSION:
State: %s
Data: %s

USER MESSAGE: %q`

const generatePrompt = `You are a helpful assistant for a money transfer service to Venezuela.

CONTEXT:
- Current session state: %s
- Session data: %s
- Detected intent: %s
- Available origins: Dominican Republic, Peru, Ecuador, Colombia, Chile
- Delivery options: bank transfer in bolívares at the daily rate, or
  physical USD delivery with a fixed 10%% fee and 24-48 hour delivery

RULES:
1. Respond in Spanish, naturally and conversationally
2. Be brief and guide the user to the next step of the flow
3. Acknowledge what the user said before answering
4. For amounts, clarify the currency when it is unclear
5. If the user seems frustrated, offer human assistance
6. Never invent exchange rates or fees

USER MESSAGE: %q

Respond with a strict JSON object: {"reply": "your response in Spanish"}`

const verifyPrompt = `You analyze receipt images to verify they are properly signed.

Respond with a strict JSON object:
{
  "isReceipt": boolean,
  "isSigned": boolean,
  "hasName": boolean,
  "hasDigits": boolean,
  "issues": ["array of issues found"]
}

VERIFICATION CRITERIA:
1. The image must be a payment receipt or voucher
2. It must carry a handwritten signature or written name
3. The name should match: %s
4. It should include the 4 digits: %s`

// Client speaks to an OpenAI-compatible chat-completions endpoint for all
// three model collaborators. Callers own the bounded-failure contract: any
// error from here is replaced with Fallback() or a deterministic path.
type Client struct {
	apiKey      string
	baseURL     string
	model       string
	visionModel string
	maxTokens   int
	httpClient  *http.Client
}

func NewClient(cfg *config.Config) *Client {
	return &Client{
		apiKey:      cfg.Provider.APIKey,
		baseURL:     cfg.Provider.BaseURL,
		model:       cfg.Provider.Model,
		visionModel: cfg.Provider.VisionModel,
		maxTokens:   cfg.Provider.MaxTokens,
		httpClient:  &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *Client) Classify(text string, snap SessionSnapshot) (Result, error) {
	prompt := fmt.Sprintf(classifyPrompt, snap.State, snapshotJSON(snap), text)
	content, err := c.complete(c.model, []map[string]any{
		{"role": "system", "content": prompt},
		{"role": "user", "content": text},
	})
	if err != nil {
		return Result{}, fmt.Errorf("classify: %w", err)
	}

	var out Result
	if err := json.Unmarshal([]byte(content), &out); err != nil {
		return Result{}, fmt.Errorf("parse classification: %w", err)
	}
	return out, nil
}

func (c *Client) Generate(text string, snap SessionSnapshot, res Result) (string, error) {
	prompt := fmt.Sprintf(generatePrompt, snap.State, snapshotJSON(snap), res.Intent, text)
	content, err := c.complete(c.model, []map[string]any{
		{"role": "system", "content": prompt},
		{"role": "user", "content": text},
	})
	if err != nil {
		return "", fmt.Errorf("generate: %w", err)
	}

	var out struct {
		Reply string `json:"reply"`
	}
	if err := json.Unmarshal([]byte(content), &out); err != nil {
		return "", fmt.Errorf("parse generated reply: %w", err)
	}
	return strings.TrimSpace(out.Reply), nil
}

func (c *Client) Verify(imageData []byte, mimeType, expectedName, expectedDigits string) (ReceiptVerification, error) {
	if expectedName == "" {
		expectedName = "any name"
	}
	if expectedDigits == "" {
		expectedDigits = "any 4 digits"
	}
	if mimeType == "" {
		mimeType = "image/jpeg"
	}

	prompt := fmt.Sprintf(verifyPrompt, expectedName, expectedDigits)
	dataURL := fmt.Sprintf("data:%s;base64,%s", mimeType, base64.StdEncoding.EncodeToString(imageData))

	model := c.visionModel
	if model == "" {
		model = c.model
	}

	content, err := c.complete(model, []map[string]any{
		{"role": "system", "content": prompt},
		{"role": "user", "content": []map[string]any{
			{"type": "text", "text": "Analyze this receipt image for signature verification."},
			{"type": "image_url", "image_url": map[string]string{"url": dataURL}},
		}},
	})
	if err != nil {
		return ReceiptVerification{}, fmt.Errorf("verify receipt: %w", err)
	}

	var out ReceiptVerification
	if err := json.Unmarshal([]byte(content), &out); err != nil {
		return ReceiptVerification{}, fmt.Errorf("parse verification: %w", err)
	}
	return out, nil
}

func (c *Client) complete(model string, messages []map[string]any) (string, error) {
	if strings.TrimSpace(c.apiKey) == "" {
		return "", fmt.Errorf("missing api key")
	}
	baseURL := strings.TrimRight(strings.TrimSpace(c.baseURL), "/")
	if baseURL == "" {
		return "", fmt.Errorf("missing base url")
	}
	if model == "" {
		return "", fmt.Errorf("missing model")
	}

	body := map[string]any{
		"model":       model,
		"messages":    messages,
		"max_tokens":  c.maxTokens,
		"temperature": 0.2,
		"response_format": map[string]string{
			"type": "json_object",
		},
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("model http %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
	}

	var decoded struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(respBody, &decoded); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if len(decoded.Choices) == 0 {
		return "", fmt.Errorf("empty choices in response")
	}
	content := strings.TrimSpace(decoded.Choices[0].Message.Content)
	if content == "" {
		return "", fmt.Errorf("empty content in response")
	}
	return content, nil
}

func snapshotJSON(snap SessionSnapshot) string {
	data, err := json.Marshal(map[string]any{
		"country":          snap.Country,
		"amount":           snap.Amount,
		"currency":         snap.Currency,
		"physicalDelivery": snap.PhysicalDelivery,
		"loopCount":        snap.LoopCount,
	})
	if err != nil {
		return "{}"
	}
	return string(data)
}
