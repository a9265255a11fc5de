package intent

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/tecnoinversiones/remesabot/internal/config"
)

func chatServer(t *testing.T, content string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("auth header = %q", got)
		}
		resp := map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"content": content}},
			},
		}
		json.NewEncoder(w).Encode(resp)
	}))
}

func testClient(baseURL string) *Client {
	cfg := config.DefaultConfig()
	cfg.Provider.APIKey = "test-key"
	cfg.Provider.BaseURL = baseURL
	return NewClient(cfg)
}

func TestClassify(t *testing.T) {
	srv := chatServer(t, `{
		"intent": "send_money",
		"confidence": 0.92,
		"entities": {"amount": 5000, "currency": "DOP", "country": "dominican", "transfer_type": "bank_transfer"},
		"requires_human": false,
		"user_emotion": "neutral"
	}`)
	defer srv.Close()

	res, err := testClient(srv.URL).Classify("quiero enviar 5000 pesos", SessionSnapshot{State: "INITIAL"})
	if err != nil {
		t.Fatalf("Classify error: %v", err)
	}
	if res.Intent != "send_money" || res.Confidence != 0.92 {
		t.Errorf("result = %+v", res)
	}
	if res.Entities.Country != "dominican" || res.Entities.Amount != 5000 {
		t.Errorf("entities = %+v", res.Entities)
	}
}

func TestGenerate(t *testing.T) {
	srv := chatServer(t, `{"reply": "¡Hola! ¿En qué puedo ayudarte?"}`)
	defer srv.Close()

	reply, err := testClient(srv.URL).Generate("hola", SessionSnapshot{State: "INITIAL"}, Fallback())
	if err != nil {
		t.Fatalf("Generate error: %v", err)
	}
	if reply != "¡Hola! ¿En qué puedo ayudarte?" {
		t.Errorf("reply = %q", reply)
	}
}

func TestVerify(t *testing.T) {
	srv := chatServer(t, `{"isReceipt": true, "isSigned": false, "hasName": true, "hasDigits": false, "issues": ["no signature visible"]}`)
	defer srv.Close()

	v, err := testClient(srv.URL).Verify([]byte("fake-image"), "image/jpeg", "Juan Pérez", "1234")
	if err != nil {
		t.Fatalf("Verify error: %v", err)
	}
	if !v.IsReceipt || v.IsSigned {
		t.Errorf("verification = %+v", v)
	}
	if len(v.Issues) != 1 {
		t.Errorf("issues = %v", v.Issues)
	}
}

func TestClassifyHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	if _, err := testClient(srv.URL).Classify("hola", SessionSnapshot{}); err == nil {
		t.Error("expected error on http failure")
	}
}

func TestClassifyMissingKey(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Provider.APIKey = ""
	if _, err := NewClient(cfg).Classify("hola", SessionSnapshot{}); err == nil {
		t.Error("expected error without api key")
	}
}

func TestFallbackIsConservative(t *testing.T) {
	f := Fallback()
	if f.RequiresHuman {
		t.Error("fallback must not flag human assistance")
	}
	if f.Confidence >= 0.6 {
		t.Errorf("fallback confidence = %v, must stay below the dispatch threshold", f.Confidence)
	}
}
