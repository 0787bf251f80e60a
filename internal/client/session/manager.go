package session

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dmitrijs2005/siteauth/internal/client/client"
	"github.com/dmitrijs2005/siteauth/internal/client/config"
	"github.com/dmitrijs2005/siteauth/internal/client/guard"
	"github.com/dmitrijs2005/siteauth/internal/client/metrics"
	"github.com/dmitrijs2005/siteauth/internal/client/models"
	"github.com/dmitrijs2005/siteauth/internal/client/tokens"
	"github.com/dmitrijs2005/siteauth/internal/logging"
)

// Store is the credential store as seen by the manager.
type Store interface {
	IsAvailable(ctx context.Context) bool
	Token(ctx context.Context) string
	SetToken(ctx context.Context, token string)
	ClearToken(ctx context.Context)
	User(ctx context.Context) *models.UserProfile
	SetUser(ctx context.Context, u *models.UserProfile)
	Clear(ctx context.Context)
}

// Manager owns the session. It is safe for concurrent use.
type Manager struct {
	client   client.Client
	store    Store
	guard    *guard.Guard
	strategy *tokens.Strategy
	policy   config.VerificationPolicy
	offline  bool
	strict   bool
	logger   logging.Logger
	metrics  *metrics.Metrics

	// commitMu orders every write to the store together with the epoch
	// check that guards it. Network calls never run under it.
	commitMu sync.Mutex

	mu         sync.RWMutex
	user       *models.UserProfile
	inFlight   int
	errMsg     string
	sessionErr bool
	settled    bool
	epoch      uint64

	pubMu   sync.Mutex
	subs    map[int]func(State)
	nextSub int

	reconciling atomic.Bool
}

type Option func(*Manager)

func WithLogger(l logging.Logger) Option {
	return func(m *Manager) { m.logger = l }
}

func WithMetrics(mt *metrics.Metrics) Option {
	return func(m *Manager) { m.metrics = mt }
}

// WithStrategy replaces the default token strategy.
func WithStrategy(s *tokens.Strategy) Option {
	return func(m *Manager) { m.strategy = s }
}

// WithStrictTokenFormat configures the default token strategy; it has no
// effect together with WithStrategy.
func WithStrictTokenFormat(strict bool) Option {
	return func(m *Manager) { m.strict = strict }
}

// WithVerificationPolicy sets what a failed startup verification does.
// The default is config.ForceLogout.
func WithVerificationPolicy(p config.VerificationPolicy) Option {
	return func(m *Manager) { m.policy = p }
}

// WithOfflineLogout makes config.ForceLogout also sign out when the server
// cannot be reached during verification. By default an unreachable server
// keeps the session under either policy.
func WithOfflineLogout(logout bool) Option {
	return func(m *Manager) { m.offline = logout }
}

// New builds a Manager in StatusIdle. Call Init to restore a stored session.
func New(c client.Client, store Store, opts ...Option) *Manager {
	m := &Manager{
		client: c,
		store:  store,
		policy: config.ForceLogout,
		logger: logging.Discard(),
		subs:   map[int]func(State){},
	}
	for _, o := range opts {
		o(m)
	}
	m.logger = m.logger.With("component", "session")

	m.guard = guard.New(store, m.logger, func() {
		if m.metrics != nil {
			m.metrics.Repairs.Inc()
		}
	})

	if m.strategy == nil {
		m.strategy = tokens.NewStrategy(c, m.logger,
			tokens.WithStrictFormat(m.strict),
			tokens.WithExchangeObserver(func(ok bool) {
				if m.metrics != nil {
					m.metrics.RecordExchange(ok)
				}
			}),
		)
	}
	return m
}

// State returns a snapshot of the session.
func (m *Manager) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snapshotLocked()
}

func (m *Manager) snapshotLocked() State {
	s := State{
		User:         m.user.Clone(),
		Loading:      m.inFlight > 0,
		Error:        m.errMsg,
		SessionError: m.sessionErr,
	}
	switch {
	case m.sessionErr:
		s.Status = StatusSessionError
	case m.inFlight > 0:
		s.Status = StatusLoading
	case !m.settled:
		s.Status = StatusIdle
	case m.user != nil:
		s.Status = StatusAuthenticated
	default:
		s.Status = StatusUnauthenticated
	}
	return s
}

// Subscribe registers fn to receive every state change. fn runs
// synchronously and must not call back into the Manager. The returned
// function unsubscribes.
func (m *Manager) Subscribe(fn func(State)) (cancel func()) {
	m.pubMu.Lock()
	id := m.nextSub
	m.nextSub++
	m.subs[id] = fn
	m.pubMu.Unlock()

	return func() {
		m.pubMu.Lock()
		delete(m.subs, id)
		m.pubMu.Unlock()
	}
}

func (m *Manager) publish() {
	m.pubMu.Lock()
	defer m.pubMu.Unlock()
	if len(m.subs) == 0 {
		return
	}
	s := m.State()
	for _, fn := range m.subs {
		fn(s)
	}
}

// IsAdmin reports whether the session user has the admin role.
func (m *Manager) IsAdmin() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.user != nil && m.user.Role == models.RoleAdmin
}

func (m *Manager) IsEmailVerified() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.user != nil && m.user.EmailVerified
}

// Token returns the stored token. It exists for diagnostics in the
// presentation layer; authorization decisions must use State.
func (m *Manager) Token(ctx context.Context) string {
	return m.store.Token(ctx)
}

// begin marks an operation in flight and returns the epoch it runs under.
func (m *Manager) begin() uint64 {
	m.mu.Lock()
	m.inFlight++
	epoch := m.epoch
	m.mu.Unlock()
	m.publish()
	return epoch
}

// end closes an operation started with begin. Failed results set the
// session error message, successful ones clear it; stale results leave it.
func (m *Manager) end(ctx context.Context, op string, started time.Time, res models.Result) {
	m.mu.Lock()
	m.inFlight--
	m.settled = true
	switch {
	case res.Success:
		m.errMsg = ""
	case !isStale(res):
		m.errMsg = res.Message
	}
	m.mu.Unlock()

	if m.metrics != nil {
		m.metrics.RecordOperation(op, res.Success, time.Since(started))
	}
	if !res.Success {
		m.logger.Info(ctx, "operation failed", "operation", op, "error", res.Err)
	}
	m.publish()
}

// staleLocked reports whether epoch is outdated. commitMu must be held.
func (m *Manager) staleLocked(epoch uint64) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.epoch != epoch
}

func (m *Manager) setUser(u *models.UserProfile) {
	m.mu.Lock()
	m.user = u.Clone()
	m.mu.Unlock()
}

func (m *Manager) currentUser() *models.UserProfile {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.user.Clone()
}

// wipeLocked clears storage and memory and bumps the epoch. commitMu must
// be held.
func (m *Manager) wipeLocked(ctx context.Context, repair bool) {
	if repair {
		m.guard.Repair(ctx)
	} else {
		m.store.Clear(ctx)
	}
	m.mu.Lock()
	m.epoch++
	m.user = nil
	m.settled = true
	m.mu.Unlock()
}

// enforceLocked re-checks storage against memory after a write and repairs
// a corrupt pair. commitMu must be held.
func (m *Manager) enforceLocked(ctx context.Context) guard.Verdict {
	tokenPresent := m.store.Token(ctx) != ""
	userPresent := m.store.User(ctx) != nil || m.currentUser() != nil

	v := m.guard.Check(ctx, tokenPresent, userPresent)
	if v == guard.Corrupt {
		m.wipeLocked(ctx, true)
		m.mu.Lock()
		m.sessionErr = true
		m.errMsg = msgRepaired
		m.mu.Unlock()
	}
	return v
}

const msgRepaired = "session state was inconsistent and has been reset; please sign in again"

func isStale(res models.Result) bool {
	return errors.Is(res.Err, ErrStaleSession)
}
