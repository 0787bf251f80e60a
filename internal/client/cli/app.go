package cli

import (
	"bufio"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/dmitrijs2005/siteauth/internal/client/client"
	"github.com/dmitrijs2005/siteauth/internal/client/config"
	"github.com/dmitrijs2005/siteauth/internal/client/connectivity"
	"github.com/dmitrijs2005/siteauth/internal/client/credstore"
	"github.com/dmitrijs2005/siteauth/internal/client/localdb"
	"github.com/dmitrijs2005/siteauth/internal/client/metrics"
	"github.com/dmitrijs2005/siteauth/internal/client/models"
	"github.com/dmitrijs2005/siteauth/internal/client/session"
	"github.com/dmitrijs2005/siteauth/internal/filex"
	"github.com/dmitrijs2005/siteauth/internal/logging"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"
)

// sessionManager is the part of *session.Manager the CLI drives.
type sessionManager interface {
	State() session.State
	Subscribe(fn func(session.State)) (cancel func())
	Init(ctx context.Context)
	Reconcile(ctx context.Context) bool
	Login(ctx context.Context, creds models.Credentials) models.Result
	Register(ctx context.Context, data models.RegisterData) models.Result
	Logout(ctx context.Context)
	ResetSession(ctx context.Context)
	UpdateProfile(ctx context.Context, patch models.ProfilePatch) error
	VerifyEmail(ctx context.Context, token, userID string) models.Result
	ResendVerificationEmail(ctx context.Context, email string) models.Result
	RequestPasswordReset(ctx context.Context, email string) models.Result
	ResetPassword(ctx context.Context, token, userID, password string) models.Result
	IsAdmin() bool
	IsEmailVerified() bool
}

// diagnoser reports the state of the stored token keys.
type diagnoser interface {
	Diagnose(ctx context.Context) credstore.Diagnostics
}

// modeWatcher is the part of *connectivity.Watcher the CLI needs.
type modeWatcher interface {
	Mode() connectivity.Mode
	Run(ctx context.Context) error
}

const metricsShutdownTimeout = 3 * time.Second

type App struct {
	config  *config.Config
	logger  logging.Logger
	session sessionManager
	store   diagnoser
	watcher modeWatcher
	metrics *metrics.Metrics
	db      *sql.DB
	reader  *bufio.Reader
	out     io.Writer

	// last settled status seen by onStateChange
	mu         sync.Mutex
	lastStatus session.Status
}

func NewApp(c *config.Config) (*App, error) {
	ctx := context.Background()

	logger, err := logging.New(os.Stderr, c.LogLevel, c.LogFormat)
	if err != nil {
		return nil, err
	}

	// An unopenable database leaves the store unavailable; the session
	// manager reports that as a session error instead of refusing to start.
	if _, err := filex.EnsureParentDir(c.StorePath); err != nil {
		logger.Warn(ctx, "cannot create store directory", "path", c.StorePath, "error", err)
	}
	db, err := localdb.Open(ctx, c.StorePath)
	if err != nil {
		logger.Error(ctx, "error initializing database", "path", c.StorePath, "error", err)
		db = nil
	}
	store := credstore.New(db, logger)

	apiClient, err := client.New(c.ServerURL, c.RequestTimeout, logger)
	if err != nil {
		if db != nil {
			_ = db.Close()
		}
		return nil, err
	}

	mt := metrics.NewMetrics(prometheus.NewRegistry())

	mgr := session.New(apiClient, store,
		session.WithLogger(logger),
		session.WithMetrics(mt),
		session.WithVerificationPolicy(c.VerificationPolicy),
		session.WithOfflineLogout(c.OfflineLogout),
		session.WithStrictTokenFormat(c.StrictTokenFormat),
	)

	w := connectivity.NewWatcher(apiClient, c.OnlineCheckInterval, logger, connectivity.WithMetrics(mt))

	a := &App{
		config:  c,
		logger:  logger,
		session: mgr,
		store:   store,
		watcher: w,
		metrics: mt,
		db:      db,
		reader:  bufio.NewReader(os.Stdin),
		out:     os.Stdout,
	}

	w.OnChange(a.onModeChange)
	w.OnRestored(func(ctx context.Context) {
		if !a.session.Reconcile(ctx) {
			logger.Debug(ctx, "reconciliation already running")
		}
	})
	return a, nil
}

// Run restores the session, starts the background workers and blocks in
// the REPL until the user exits.
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	defer a.close()

	cancelSub := a.session.Subscribe(a.onStateChange)
	defer cancelSub()

	fmt.Fprintln(a.out, "Welcome to siteauth CLI (type 'help' for commands)")

	a.session.Init(ctx)
	a.printNotice()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return a.watcher.Run(gctx)
	})

	if a.config.MetricsAddr != "" {
		g.Go(func() error {
			return a.serveMetrics(gctx)
		})
	}

	g.Go(func() error {
		defer cancel()
		runREPL(gctx, a, a.getStatus, a.reader)
		return nil
	})

	return g.Wait()
}

func (a *App) close() {
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Error(context.Background(), "close database", "error", err)
		}
	}
}

// serveMetrics exposes the Prometheus registry until ctx is done. A listener
// failure is logged and does not stop the CLI.
func (a *App) serveMetrics(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.Handle("GET /metrics", a.metrics.Handler())

	srv := &http.Server{
		Addr:              a.config.MetricsAddr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), metricsShutdownTimeout)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	a.logger.Info(ctx, "serving metrics", "address", a.config.MetricsAddr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		a.logger.Error(ctx, "metrics listener", "error", err)
	}
	return nil
}

func (a *App) isLoggedIn() bool {
	return a.session.State().User != nil
}

func (a *App) sessionBlocked() bool {
	return a.session.State().SessionError
}

func (a *App) onModeChange(m connectivity.Mode) {
	printlnFn(fmt.Sprintf("Switched to %s mode", m))
}

// onStateChange prints notices for transitions that happen outside a
// command, such as a background re-validation ending the session. It runs
// under the manager's notification lock and must not call back into it.
func (a *App) onStateChange(st session.State) {
	if st.Status == session.StatusLoading || st.Status == session.StatusIdle {
		return
	}

	a.mu.Lock()
	prev := a.lastStatus
	a.lastStatus = st.Status
	a.mu.Unlock()

	if prev == st.Status {
		return
	}
	switch {
	case prev == session.StatusAuthenticated && st.Status == session.StatusUnauthenticated && st.Error != "":
		printlnFn("Signed out:", st.Error)
	case st.Status == session.StatusSessionError:
		printlnFn(sessionErrorNotice)
	}
}

const sessionErrorNotice = "Local session storage is unusable or inconsistent. " +
	"Type 'reset-session' to start over, 'status' for details or 'exit' to quit."

func (a *App) printNotice() {
	st := a.session.State()
	if st.SessionError {
		return
	}
	if st.Error != "" {
		fmt.Fprintln(a.out, st.Error)
	}
	if st.User == nil {
		fmt.Fprintln(a.out, "You are not signed in. Type 'login' or 'register'.")
	}
}

func (a *App) getStatus() string {
	st := a.session.State()
	s := ""
	if st.User != nil {
		s = st.User.Email + " "
	}
	if a.watcher != nil {
		s = s + string(a.watcher.Mode())
	}
	if s != "" {
		s = fmt.Sprintf("(%s)", s)
	}
	return s
}
