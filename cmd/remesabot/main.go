package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/tecnoinversiones/remesabot/internal/config"
	"github.com/tecnoinversiones/remesabot/internal/escalate"
	"github.com/tecnoinversiones/remesabot/internal/gateway"
	"github.com/tecnoinversiones/remesabot/internal/rates"
	"github.com/tecnoinversiones/remesabot/internal/session"
)

var rootCmd = &cobra.Command{
	Use:   "remesabot",
	Short: "remesabot - conversational assistant for money transfers",
}

var gatewayCmd = &cobra.Command{
	Use:   "gateway",
	Short: "Start the bot (channels + message loop + cron)",
	RunE:  runGateway,
}

var onboardCmd = &cobra.Command{
	Use:   "onboard",
	Short: "Initialize config and data directories",
	RunE:  runOnboard,
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show remesabot status",
	RunE:  runStatus,
}

var waitingCmd = &cobra.Command{
	Use:   "waiting",
	Short: "List conversations waiting on a human operator",
	RunE:  runWaiting,
}

var resolveCmd = &cobra.Command{
	Use:   "resolve <channel:chatID> [note...]",
	Short: "Resolve an escalated conversation and resume the bot",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runResolve,
}

func init() {
	rootCmd.AddCommand(gatewayCmd, onboardCmd, statusCmd, waitingCmd, resolveCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runGateway(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if cfg.Provider.APIKey == "" {
		// The deterministic tiers keep working without a model; only the
		// classifier, the reply generator and receipt vision degrade.
		fmt.Fprintln(cmd.ErrOrStderr(), "warning: no API key set, running without intent classification (REMESABOT_API_KEY)")
	}

	gw, err := gateway.New(cfg)
	if err != nil {
		return fmt.Errorf("create gateway: %w", err)
	}

	return gw.Run(context.Background())
}

func runOnboard(cmd *cobra.Command, args []string) error {
	cfgPath := config.ConfigPath()

	if _, err := os.Stat(cfgPath); os.IsNotExist(err) {
		if err := config.SaveConfig(config.DefaultConfig()); err != nil {
			return fmt.Errorf("write config: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Created config: %s\n", cfgPath)
	} else {
		fmt.Fprintf(cmd.OutOrStdout(), "Config already exists: %s\n", cfgPath)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := os.MkdirAll(cfg.Bot.RatesDir, 0755); err != nil {
		return fmt.Errorf("create rates dir: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Data directory ready: %s\n", cfg.Bot.DataDir)
	fmt.Fprintln(out, "\nNext steps:")
	fmt.Fprintf(out, "  1. Edit %s to set your API key and enable channels\n", cfgPath)
	fmt.Fprintf(out, "  2. Drop today's rate file into %s (<YYYY-MM-DD>.json)\n", cfg.Bot.RatesDir)
	fmt.Fprintln(out, "  3. Run 'remesabot gateway' to start the bot")

	return nil
}

func runStatus(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(out, "Config: error (%v)\n", err)
		return nil
	}

	fmt.Fprintf(out, "Config: %s\n", config.ConfigPath())
	fmt.Fprintf(out, "Data dir: %s\n", cfg.Bot.DataDir)
	fmt.Fprintf(out, "Model: %s (vision: %s)\n", cfg.Provider.Model, cfg.Provider.VisionModel)
	if cfg.Provider.APIKey != "" && len(cfg.Provider.APIKey) > 8 {
		masked := cfg.Provider.APIKey[:4] + "..." + cfg.Provider.APIKey[len(cfg.Provider.APIKey)-4:]
		fmt.Fprintf(out, "API Key: %s\n", masked)
	} else if cfg.Provider.APIKey != "" {
		fmt.Fprintln(out, "API Key: set")
	} else {
		fmt.Fprintln(out, "API Key: not set")
	}
	fmt.Fprintf(out, "WhatsApp: enabled=%v\n", cfg.Channels.WhatsApp.Enabled)
	fmt.Fprintf(out, "Telegram: enabled=%v\n", cfg.Channels.Telegram.Enabled)

	table := rates.NewProvider(cfg.Bot.RatesDir).Current()
	fmt.Fprintf(out, "Rate table: %s (%d countries)\n", table.Date, len(table.Countries()))

	store, err := session.NewStore(cfg.SessionDBPath())
	if err != nil {
		fmt.Fprintf(out, "Sessions: error (%v)\n", err)
		return nil
	}
	defer store.Close()

	waiting, err := store.ListByState(session.StateHumanAssistance, session.StateWaitingForResolution)
	if err != nil {
		fmt.Fprintf(out, "Sessions: error (%v)\n", err)
		return nil
	}
	fmt.Fprintf(out, "Waiting on a human: %d\n", len(waiting))

	return nil
}

func runWaiting(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	store, err := session.NewStore(cfg.SessionDBPath())
	if err != nil {
		return fmt.Errorf("open session store: %w", err)
	}
	defer store.Close()

	return printWaiting(store, cmd.OutOrStdout())
}

func printWaiting(store *session.Store, out io.Writer) error {
	sessions, err := store.ListByState(session.StateHumanAssistance, session.StateWaitingForResolution)
	if err != nil {
		return fmt.Errorf("list sessions: %w", err)
	}

	if len(sessions) == 0 {
		fmt.Fprintln(out, "No conversations waiting on a human.")
		return nil
	}

	for _, sess := range sessions {
		reason, urgency := "", ""
		var since time.Time
		if sess.Data.Escalation != nil {
			reason = sess.Data.Escalation.Reason
			urgency = sess.Data.Escalation.Urgency
			since = sess.Data.Escalation.TransferTime
		}
		waited := ""
		if !since.IsZero() {
			waited = time.Since(since).Round(time.Minute).String()
		}
		fmt.Fprintf(out, "%s  state=%s reason=%s urgency=%s waiting=%s\n",
			sess.Key, sess.State, reason, urgency, waited)
	}
	return nil
}

func runResolve(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	store, err := session.NewStore(cfg.SessionDBPath())
	if err != nil {
		return fmt.Errorf("open session store: %w", err)
	}
	defer store.Close()

	key := args[0]
	note := strings.Join(args[1:], " ")
	return resolveSession(store, key, note, cmd.OutOrStdout())
}

func resolveSession(store *session.Store, key, note string, out io.Writer) error {
	sess, err := store.Get(key)
	if err != nil {
		return fmt.Errorf("load session %s: %w", key, err)
	}

	waited, err := escalate.NewManager(0).Resolve(sess, note)
	if err != nil {
		return err
	}
	if err := store.Save(sess); err != nil {
		return fmt.Errorf("save session: %w", err)
	}

	fmt.Fprintf(out, "Resolved %s after %s\n", key, waited.Round(time.Second))
	return nil
}
