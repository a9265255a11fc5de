package cron

import (
	"context"
	"log"
	"time"

	rcron "github.com/robfig/cron/v3"
	"github.com/tecnoinversiones/remesabot/internal/rates"
	"github.com/tecnoinversiones/remesabot/internal/session"
)

// Schedules use the six-field form (with seconds), server-local time.
const (
	ratesReloadSpec   = "0 5 0 * * *" // shortly after midnight, new day file
	sessionSweepSpec  = "0 0 * * * *" // hourly
	waitingReportSpec = "0 0 8 * * *" // morning operator summary
)

// Service runs the fixed housekeeping jobs: the daily rate-table reload,
// the hourly idle-session sweep, and a morning summary of cases waiting on
// a human.
type Service struct {
	rates     *rates.Provider
	store     *session.Store
	retention time.Duration

	cron *rcron.Cron
}

func NewService(p *rates.Provider, store *session.Store, retention time.Duration) *Service {
	return &Service{
		rates:     p,
		store:     store,
		retention: retention,
	}
}

func (s *Service) Start(ctx context.Context) error {
	s.cron = rcron.New(rcron.WithSeconds())

	if _, err := s.cron.AddFunc(ratesReloadSpec, s.ReloadRates); err != nil {
		return err
	}
	if _, err := s.cron.AddFunc(sessionSweepSpec, s.SweepSessions); err != nil {
		return err
	}
	if _, err := s.cron.AddFunc(waitingReportSpec, s.ReportWaiting); err != nil {
		return err
	}

	s.cron.Start()
	log.Printf("[cron] started with %d jobs", len(s.cron.Entries()))

	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	return nil
}

func (s *Service) Stop() {
	if s.cron == nil {
		return
	}
	stopCtx := s.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-time.After(5 * time.Second):
		log.Printf("[cron] stop timeout waiting for running jobs")
	}
	log.Printf("[cron] stopped")
}

// ReloadRates swaps in the rate table for the new day.
func (s *Service) ReloadRates() {
	s.rates.Reload()
	log.Printf("[cron] rate table reloaded")
}

// SweepSessions reaps sessions idle past the retention window. Escalated
// sessions are skipped by the store.
func (s *Service) SweepSessions() {
	n, err := s.store.DeleteInactive(s.retention)
	if err != nil {
		log.Printf("[cron] session sweep error: %v", err)
		return
	}
	if n > 0 {
		log.Printf("[cron] session sweep removed %d idle sessions", n)
	}
}

// ReportWaiting logs the cases parked on a human operator so the morning
// shift sees the backlog.
func (s *Service) ReportWaiting() {
	sessions, err := s.store.ListByState(session.StateHumanAssistance, session.StateWaitingForResolution)
	if err != nil {
		log.Printf("[cron] waiting report error: %v", err)
		return
	}
	if len(sessions) == 0 {
		log.Printf("[cron] no cases waiting on a human")
		return
	}
	log.Printf("[cron] %d cases waiting on a human:", len(sessions))
	for _, sess := range sessions {
		reason := ""
		if sess.Data.Escalation != nil {
			reason = sess.Data.Escalation.Reason
		}
		log.Printf("[cron]   %s state=%s reason=%s idle=%s",
			sess.Key, sess.State, reason, time.Since(sess.LastActivity).Round(time.Minute))
	}
}
