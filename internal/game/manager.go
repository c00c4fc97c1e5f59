package game

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/dodgeshot/backend/internal/config"
	"github.com/redis/go-redis/v9"
)

var (
	// Global match manager instance
	Manager *MatchManager
)

// MatchManager is the token-indexed registry of live matches. Each
// match gets one frame-driver goroutine; the manager is the only thing
// that starts or stops drivers, so a torn-down match can never receive
// a late tick.
type MatchManager struct {
	matches map[string]*Match
	cancels map[string]context.CancelFunc
	rdb     *redis.Client
	config  *config.Config
	mu      sync.RWMutex

	// OnFrame, when set, is invoked after every simulation tick with
	// the match that advanced. The WS layer uses it to stream state.
	OnFrame func(m *Match)

	// OnPhase is invoked whenever a match's phase kind changes.
	OnPhase func(m *Match, phase RoundPhase)

	// OnEnd is invoked once when a match leaves the registry, whatever
	// removed it, so watchers can drop their per-match state.
	OnEnd func(m *Match)
}

// InitializeManager initializes the global match manager and starts its
// background expiry sweeper.
func InitializeManager(ctx context.Context, rdb *redis.Client, cfg *config.Config) {
	Manager = NewMatchManager(rdb, cfg)
	go Manager.StartExpirySweeper(ctx)
}

// NewMatchManager creates a match manager.
func NewMatchManager(rdb *redis.Client, cfg *config.Config) *MatchManager {
	return &MatchManager{
		matches: make(map[string]*Match),
		cancels: make(map[string]context.CancelFunc),
		rdb:     rdb,
		config:  cfg,
	}
}

// generateToken generates a secure random token.
func generateToken(length int) string {
	bytes := make([]byte, length)
	rand.Read(bytes)
	return hex.EncodeToString(bytes)
}

func generateMatchID() string {
	return "match_" + generateToken(8)
}

// CreateMatch builds a match from setup params, registers it, and
// starts its frame driver.
func (mm *MatchManager) CreateMatch(params SetupParams) (*Match, error) {
	sim := DefaultSimConfig()
	if mm.config != nil {
		if mm.config.CountdownSeconds > 0 {
			sim.CountdownSeconds = float64(mm.config.CountdownSeconds)
		}
		if mm.config.ResultDisplaySeconds > 0 {
			sim.ResultSeconds = float64(mm.config.ResultDisplaySeconds)
		}
	}

	m, err := NewMatch(generateMatchID(), generateToken(16), params, sim, nil)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())

	mm.mu.Lock()
	mm.matches[m.Token] = m
	mm.cancels[m.Token] = cancel
	mm.mu.Unlock()

	go mm.runMatch(ctx, m)
	return m, nil
}

// GetMatch looks up a live match by token.
func (mm *MatchManager) GetMatch(token string) (*Match, error) {
	mm.mu.RLock()
	defer mm.mu.RUnlock()
	m, ok := mm.matches[token]
	if !ok {
		return nil, errors.New("match not found")
	}
	return m, nil
}

// EndMatch stops a match's frame driver and removes it from the
// registry. Safe to call more than once.
func (mm *MatchManager) EndMatch(token string) {
	mm.mu.Lock()
	m := mm.matches[token]
	cancel := mm.cancels[token]
	delete(mm.matches, token)
	delete(mm.cancels, token)
	mm.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if m != nil {
		mm.saveMatchToRedis(m)
		if mm.OnEnd != nil {
			mm.OnEnd(m)
		}
		log.Printf("[MATCH] %s ended", m.ID)
	}
}

// ActiveMatchCount returns the number of live matches.
func (mm *MatchManager) ActiveMatchCount() int {
	mm.mu.RLock()
	defer mm.mu.RUnlock()
	return len(mm.matches)
}

// runMatch is the frame driver: the "host render loop" that ticks one
// match at a fixed rate until the match is over or the context is
// cancelled. Cancellation is the teardown guarantee — both phase
// timers live inside Tick, so no callback can outlive the driver.
func (mm *MatchManager) runMatch(ctx context.Context, m *Match) {
	rate := 60
	if mm.config != nil && mm.config.TickRateHz > 0 {
		rate = mm.config.TickRateHz
	}
	dt := 1.0 / float64(rate)

	ticker := time.NewTicker(time.Duration(float64(time.Second) * dt))
	defer ticker.Stop()

	lastKind := m.Phase().Kind

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Tick(dt)

			if phase := m.Phase(); phase.Kind != lastKind {
				lastKind = phase.Kind
				mm.saveMatchToRedis(m)
				if mm.OnPhase != nil {
					mm.OnPhase(m, phase)
				}
			}

			if mm.OnFrame != nil {
				mm.OnFrame(m)
			}

			if m.Over() {
				mm.saveMatchToRedis(m)
				log.Printf("[MATCH] %s finished; driver stopping", m.ID)
				return
			}
		}
	}
}

// saveMatchToRedis stores the latest render-facing snapshot so a
// reconnecting client can recover the view between frames.
func (mm *MatchManager) saveMatchToRedis(m *Match) {
	if mm.rdb == nil {
		return
	}

	data, err := json.Marshal(m.Snapshot())
	if err != nil {
		log.Printf("[REDIS] snapshot marshal failed for %s: %v", m.ID, err)
		return
	}

	ttl := time.Hour
	if mm.config != nil && mm.config.MatchExpiryMinutes > 0 {
		ttl = time.Duration(mm.config.MatchExpiryMinutes) * time.Minute
	}

	key := "match:" + m.Token + ":state"
	if err := mm.rdb.SetEx(context.Background(), key, data, ttl).Err(); err != nil {
		log.Printf("[REDIS] snapshot save failed for %s: %v", m.ID, err)
	}
}

// StartExpirySweeper removes matches that have been idle past the
// configured expiry, including finished ones nobody is reading.
func (mm *MatchManager) StartExpirySweeper(ctx context.Context) {
	interval := 30 * time.Second
	log.Println("[SWEEP] match expiry sweeper started")

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("[SWEEP] match expiry sweeper stopping")
			return
		case <-ticker.C:
			mm.sweepExpired()
		}
	}
}

func (mm *MatchManager) sweepExpired() {
	maxIdle := 10 * time.Minute
	if mm.config != nil && mm.config.MatchExpiryMinutes > 0 {
		maxIdle = time.Duration(mm.config.MatchExpiryMinutes) * time.Minute
	}

	mm.mu.RLock()
	var expired []string
	for token, m := range mm.matches {
		if time.Since(m.IdleSince()) > maxIdle {
			expired = append(expired, token)
		}
	}
	mm.mu.RUnlock()

	for _, token := range expired {
		log.Printf("[SWEEP] expiring idle match token=%s", token[:8])
		mm.EndMatch(token)
	}
}
