package rules

import (
	"log/slog"
	"time"

	"github.com/farmtrack/farmtrack/config"
	"github.com/farmtrack/farmtrack/types"
)

// Engine evaluates the status transition rules for one target at a time.
// It holds no per-target state; the settings thresholds are the only input
// besides the record itself.
type Engine struct {
	settings config.Settings
	log      *slog.Logger
}

// New creates an Engine with the given thresholds. A nil logger falls back
// to slog.Default().
func New(settings config.Settings, log *slog.Logger) *Engine {
	if log == nil {
		log = slog.Default()
	}
	return &Engine{settings: settings, log: log}
}

// SetSettings swaps the thresholds, e.g. after a settings reload.
func (e *Engine) SetSettings(s config.Settings) {
	e.settings = s
}

// Evaluate runs the ordered rule list against rec and applies the first
// matching transition. It reports whether the record changed. Rules, in
// order:
//
//  1. blacklist on too many consecutive lossy raids
//  2. pause an active target that keeps coming back empty
//  3. re-activate a paused target whose pause has expired
//  4. re-activate a loss-paused target after a clean raid
func (e *Engine) Evaluate(rec *types.TargetRecord, now time.Time) bool {
	s := e.settings

	switch {
	case rec.Metrics.ConsecutiveLosses >= s.MaxLossesBeforeBlacklist:
		if rec.Status == types.StatusBlacklisted {
			return false
		}
		rec.Status = types.StatusBlacklisted
		rec.PauseReason = types.ReasonLosses
		e.log.Warn("target blacklisted",
			"coord", rec.Coord,
			"consecutive_losses", rec.Metrics.ConsecutiveLosses,
		)
		return true

	case rec.Status == types.StatusActive &&
		rec.Metrics.ConsecutiveEmpty >= s.MaxEmptyBeforePause:
		rec.Status = types.StatusPaused
		rec.PauseReason = types.ReasonDry
		rec.PauseUntil = now.Add(s.DryPause())
		e.log.Info("target paused, raids coming back empty",
			"coord", rec.Coord,
			"consecutive_empty", rec.Metrics.ConsecutiveEmpty,
			"until", rec.PauseUntil,
		)
		return true

	case rec.Status == types.StatusPaused &&
		!rec.PauseUntil.IsZero() && !now.Before(rec.PauseUntil):
		e.resume(rec, "pause expired")
		return true

	case rec.Status == types.StatusPaused &&
		rec.PauseReason == types.ReasonLosses &&
		rec.Metrics.ConsecutiveLosses == 0:
		e.resume(rec, "clean raid after losses")
		return true
	}

	return false
}

// ResolveExpiredPause applies only the pause-expiry rule. Read paths that
// list active targets call this first, since time passing alone (without a
// new raid result) can satisfy it. Reports whether the record changed.
func (e *Engine) ResolveExpiredPause(rec *types.TargetRecord, now time.Time) bool {
	if rec.Status != types.StatusPaused || rec.PauseUntil.IsZero() || now.Before(rec.PauseUntil) {
		return false
	}
	e.resume(rec, "pause expired")
	return true
}

func (e *Engine) resume(rec *types.TargetRecord, why string) {
	rec.Status = types.StatusActive
	rec.PauseReason = ""
	rec.PauseUntil = time.Time{}
	e.log.Info("target re-activated", "coord", rec.Coord, "reason", why)
}
