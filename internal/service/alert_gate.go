package service

import (
	"context"
	"gold-pulse/internal/model"
	"gold-pulse/internal/repository"
	"gold-pulse/pkg/utils"
	"sync"
	"time"
)

// AlertGate decides whether a forecast deserves a notification.
//
// The persisted AlertState throttles alerts across restarts. The in-memory
// session guard remembers the signature claimed by the last open decision so
// the same forecast is never announced twice by one process.
type AlertGate interface {
	// ShouldNotify reports whether forecast should be dispatched. A true
	// result claims the forecast's signature; the caller must follow up with
	// Confirm or Release.
	ShouldNotify(ctx context.Context, symbol string, forecast model.Forecast) bool
	// Confirm persists the gate state after a successful dispatch.
	Confirm(ctx context.Context, symbol string, forecast model.Forecast) error
	// Release drops the claim after a failed dispatch so a later cycle may retry.
	Release(symbol string, forecast model.Forecast)
}

type alertGate struct {
	stateRepo repository.AlertStateRepository
	clock     utils.Clock
	cooldown  time.Duration

	mu      sync.Mutex
	session map[string]string
}

func NewAlertGate(stateRepo repository.AlertStateRepository, clock utils.Clock, cooldown time.Duration) AlertGate {
	return &alertGate{
		stateRepo: stateRepo,
		clock:     clock,
		cooldown:  cooldown,
		session:   make(map[string]string),
	}
}

func (g *alertGate) ShouldNotify(ctx context.Context, symbol string, forecast model.Forecast) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	signature := forecast.Signature()
	if g.session[symbol] == signature {
		return false
	}

	state := g.stateRepo.Get(ctx, symbol)
	open := state == nil ||
		g.clock.Now().Sub(time.UnixMilli(state.LastSentAt)) > g.cooldown ||
		(state.LastSentRecommendation != "" && state.LastSentRecommendation != forecast.Recommendation)
	if !open {
		return false
	}

	g.session[symbol] = signature
	return true
}

func (g *alertGate) Confirm(ctx context.Context, symbol string, forecast model.Forecast) error {
	return g.stateRepo.Save(ctx, symbol, model.AlertState{
		LastSentAt:             g.clock.Now().UnixMilli(),
		LastSentRecommendation: forecast.Recommendation,
		Signature:              forecast.Signature(),
	})
}

func (g *alertGate) Release(symbol string, forecast model.Forecast) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.session[symbol] == forecast.Signature() {
		delete(g.session, symbol)
	}
}
