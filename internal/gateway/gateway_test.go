package gateway

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"testing"
	"time"

	"github.com/tecnoinversiones/remesabot/internal/bus"
	"github.com/tecnoinversiones/remesabot/internal/config"
	"github.com/tecnoinversiones/remesabot/internal/intent"
	"github.com/tecnoinversiones/remesabot/internal/session"
)

type fakeClassifier struct {
	res intent.Result
	err error
}

func (f *fakeClassifier) Classify(text string, snap intent.SessionSnapshot) (intent.Result, error) {
	return f.res, f.err
}

type fakeGenerator struct {
	reply string
}

func (f *fakeGenerator) Generate(text string, snap intent.SessionSnapshot, res intent.Result) (string, error) {
	return f.reply, nil
}

type fakeVerifier struct {
	verdict intent.ReceiptVerification
	err     error
}

func (f *fakeVerifier) Verify(imageData []byte, mimeType, expectedName, expectedDigits string) (intent.ReceiptVerification, error) {
	return f.verdict, f.err
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Bot.DataDir = t.TempDir()
	cfg.Bot.RatesDir = filepath.Join(cfg.Bot.DataDir, "rates")
	return cfg
}

func newTestGateway(t *testing.T, opts Options) *Gateway {
	t.Helper()
	if opts.Classifier == nil {
		opts.Classifier = &fakeClassifier{res: intent.Fallback()}
	}
	if opts.Generator == nil {
		opts.Generator = &fakeGenerator{}
	}
	if opts.Verifier == nil {
		opts.Verifier = &fakeVerifier{}
	}

	g, err := NewWithOptions(testConfig(t), opts)
	if err != nil {
		t.Fatalf("NewWithOptions error: %v", err)
	}
	t.Cleanup(func() { _ = g.store.Close() })
	return g
}

func TestNewWithOptions(t *testing.T) {
	g := newTestGateway(t, Options{})
	if g.engine == nil {
		t.Error("engine should be set")
	}
	if len(g.channels.EnabledChannels()) != 0 {
		t.Errorf("expected no enabled channels, got %v", g.channels.EnabledChannels())
	}
}

func TestHandleInboundRepliesAndPersists(t *testing.T) {
	g := newTestGateway(t, Options{})

	g.handleInbound(bus.InboundMessage{
		Channel:  "test",
		SenderID: "100",
		ChatID:   "100",
		Content:  "quiero enviar dinero",
	})

	select {
	case out := <-g.bus.Outbound:
		if out.Channel != "test" || out.ChatID != "100" {
			t.Errorf("outbound routed to %s/%s", out.Channel, out.ChatID)
		}
		if out.Content == "" {
			t.Error("expected a reply")
		}
	default:
		t.Fatal("expected an outbound message")
	}

	sess, err := g.store.Get("test:100")
	if err != nil {
		t.Fatalf("session not persisted: %v", err)
	}
	if sess.State != session.StateAwaitingConfirmation {
		t.Errorf("state = %s, want %s", sess.State, session.StateAwaitingConfirmation)
	}
}

func TestHandleInboundSignedReceiptImage(t *testing.T) {
	g := newTestGateway(t, Options{
		Verifier: &fakeVerifier{verdict: intent.ReceiptVerification{IsReceipt: true, IsSigned: true}},
	})

	sess, _ := g.store.GetOrCreate("test:18091234567")
	sess.State = session.StateAwaitingReceipt
	sess.Data.Country = "dominican"
	sess.Data.Amount = 5000
	sess.Data.DeliveryType = session.DeliveryBankTransfer
	sess.Data.BeneficiaryComplete = true
	sess.Data.Beneficiary = &session.Beneficiary{Name: "Juan Pérez"}
	if err := g.store.Save(sess); err != nil {
		t.Fatal(err)
	}

	g.handleInbound(bus.InboundMessage{
		Channel:   "test",
		SenderID:  "18091234567",
		ChatID:    "18091234567",
		ImageData: []byte{0xff, 0xd8},
		ImageMIME: "image/jpeg",
	})

	select {
	case out := <-g.bus.Outbound:
		if !strings.Contains(strings.ToLower(out.Content), "transferencia") {
			t.Errorf("unexpected reply: %q", out.Content)
		}
	default:
		t.Fatal("expected an outbound message")
	}

	after, err := g.store.Get("test:18091234567")
	if err != nil {
		t.Fatal(err)
	}
	if after.State != session.StateInitial {
		t.Errorf("state = %s, want %s", after.State, session.StateInitial)
	}
}

func TestHandleInboundPausedSessionSilent(t *testing.T) {
	g := newTestGateway(t, Options{})

	sess, _ := g.store.GetOrCreate("test:42")
	sess.State = session.StateHumanAssistance
	sess.Data.BotPaused = true
	sess.Data.Escalation = &session.Escalation{
		Reason:         "user_request",
		LastReminderAt: time.Now().UTC(),
	}
	if err := g.store.Save(sess); err != nil {
		t.Fatal(err)
	}

	g.handleInbound(bus.InboundMessage{
		Channel:  "test",
		SenderID: "42",
		ChatID:   "42",
		Content:  "hola?",
	})

	select {
	case out := <-g.bus.Outbound:
		t.Errorf("paused session should swallow input, got %q", out.Content)
	default:
		// OK
	}
}

func TestRunShutdownOnSignal(t *testing.T) {
	sigCh := make(chan os.Signal, 1)
	g := newTestGateway(t, Options{SignalChan: sigCh})

	done := make(chan error, 1)
	go func() {
		done <- g.Run(context.Background())
	}()

	time.Sleep(50 * time.Millisecond)
	sigCh <- syscall.SIGTERM

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run error: %v", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("Run did not return after signal")
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Errorf("truncate = %q", got)
	}
	if got := truncate("a long message here", 6); got != "a long..." {
		t.Errorf("truncate = %q", got)
	}
}
