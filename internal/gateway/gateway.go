package gateway

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tecnoinversiones/remesabot/internal/bus"
	"github.com/tecnoinversiones/remesabot/internal/channel"
	"github.com/tecnoinversiones/remesabot/internal/config"
	"github.com/tecnoinversiones/remesabot/internal/cron"
	"github.com/tecnoinversiones/remesabot/internal/escalate"
	"github.com/tecnoinversiones/remesabot/internal/flow"
	"github.com/tecnoinversiones/remesabot/internal/intent"
	"github.com/tecnoinversiones/remesabot/internal/money"
	"github.com/tecnoinversiones/remesabot/internal/rates"
	"github.com/tecnoinversiones/remesabot/internal/session"
)

// Options for creating a Gateway. The model collaborators can be swapped
// for fakes in tests.
type Options struct {
	Classifier intent.Classifier
	Generator  intent.Generator
	Verifier   intent.ReceiptVerifier
	SignalChan chan os.Signal // for testing signal handling
}

// Gateway wires the channels, the session store and the conversation
// engine together and runs the message loop.
type Gateway struct {
	cfg      *config.Config
	bus      *bus.MessageBus
	store    *session.Store
	rates    *rates.Provider
	engine   *flow.Engine
	channels *channel.ChannelManager
	cron     *cron.Service

	signalChan chan os.Signal // for testing
}

// New creates a Gateway with default options
func New(cfg *config.Config) (*Gateway, error) {
	return NewWithOptions(cfg, Options{})
}

// NewWithOptions creates a Gateway with custom options for testing
func NewWithOptions(cfg *config.Config, opts Options) (*Gateway, error) {
	g := &Gateway{cfg: cfg}

	g.bus = bus.NewMessageBus(config.DefaultBufSize)

	store, err := session.NewStore(cfg.SessionDBPath())
	if err != nil {
		return nil, fmt.Errorf("open session store: %w", err)
	}
	g.store = store

	g.rates = rates.NewProvider(cfg.Bot.RatesDir)

	var conv money.ConversionTable
	if len(cfg.Bot.USDConversions) > 0 {
		conv = money.ConversionTable(cfg.Bot.USDConversions)
	}
	calc := money.NewCalculator(g.rates, conv)

	esc := escalate.NewManager(time.Duration(cfg.Bot.ReminderIntervalMinutes) * time.Minute)

	// One HTTP client backs all three model roles unless a test injects
	// its own.
	client := intent.NewClient(cfg)
	classifier := opts.Classifier
	if classifier == nil {
		classifier = client
	}
	generator := opts.Generator
	if generator == nil {
		generator = client
	}
	verifier := opts.Verifier
	if verifier == nil {
		verifier = client
	}

	g.engine = flow.NewEngine(calc, classifier, generator, verifier, esc, cfg.Bot.TrustKYCAssertion)

	retention := time.Duration(cfg.Bot.SessionRetentionDays) * 24 * time.Hour
	g.cron = cron.NewService(g.rates, g.store, retention)

	chMgr, err := channel.NewChannelManager(cfg.Channels, g.bus)
	if err != nil {
		_ = g.store.Close()
		return nil, fmt.Errorf("create channel manager: %w", err)
	}
	g.channels = chMgr

	g.signalChan = opts.SignalChan

	return g, nil
}

func (g *Gateway) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go g.bus.DispatchOutbound(ctx)

	if err := g.channels.StartAll(ctx); err != nil {
		return fmt.Errorf("start channels: %w", err)
	}
	log.Printf("[gateway] channels started: %v", g.channels.EnabledChannels())

	if err := g.cron.Start(ctx); err != nil {
		log.Printf("[gateway] cron start warning: %v", err)
	}

	go g.processLoop(ctx)

	log.Printf("[gateway] running")

	// Use injected signal channel for testing, or create default
	sigCh := g.signalChan
	if sigCh == nil {
		sigCh = make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	}
	<-sigCh

	log.Printf("[gateway] shutting down...")
	return g.Shutdown()
}

func (g *Gateway) processLoop(ctx context.Context) {
	for {
		select {
		case msg := <-g.bus.Inbound:
			log.Printf("[gateway] inbound from %s/%s: %s", msg.Channel, msg.SenderID, truncate(msg.Content, 80))
			g.handleInbound(msg)
		case <-ctx.Done():
			return
		}
	}
}

// handleInbound runs one conversation turn. The per-key lock serializes
// turns for a session so rapid double-sends cannot interleave state
// transitions.
func (g *Gateway) handleInbound(msg bus.InboundMessage) {
	key := msg.SessionKey()

	mu := g.store.Lock(key)
	mu.Lock()
	defer mu.Unlock()

	sess, err := g.store.GetOrCreate(key)
	if err != nil {
		log.Printf("[gateway] session load error for %s: %v", key, err)
		return
	}
	before := sess.State

	var turn flow.Turn
	if len(msg.ImageData) > 0 {
		turn = g.engine.ProcessImage(sess, msg.ImageData, msg.ImageMIME)
	} else {
		turn = g.engine.Process(sess, msg.Content)
	}

	sess.Touch()
	if err := g.store.Save(sess); err != nil {
		log.Printf("[gateway] session save error for %s: %v", key, err)
	}
	if err := g.store.Audit(session.AuditEntry{
		SessionKey:  key,
		StateBefore: before,
		StateAfter:  sess.State,
		Intent:      turn.Intent,
		Inbound:     msg.Content,
		Reply:       turn.Message,
	}); err != nil {
		log.Printf("[gateway] audit error for %s: %v", key, err)
	}

	if turn.Message != "" {
		g.bus.Outbound <- bus.OutboundMessage{
			Channel: msg.Channel,
			ChatID:  msg.ChatID,
			Content: turn.Message,
		}
	}
}

func (g *Gateway) Shutdown() error {
	g.cron.Stop()
	_ = g.channels.StopAll()
	if err := g.store.Close(); err != nil {
		log.Printf("[gateway] close session store warning: %v", err)
	}
	log.Printf("[gateway] shutdown complete")
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
