package cli

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/dmitrijs2005/siteauth/internal/client/config"
	"github.com/dmitrijs2005/siteauth/internal/client/credstore"
	"github.com/dmitrijs2005/siteauth/internal/client/models"
	"github.com/dmitrijs2005/siteauth/internal/client/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetStatus(t *testing.T) {
	fs := &fakeSession{}
	a, _ := newTestApp(fs, "")
	assert.Equal(t, "(online)", a.getStatus())

	fs.state.User = &models.UserProfile{ID: "1", Email: "neo@matrix.io"}
	assert.Equal(t, "(neo@matrix.io online)", a.getStatus())

	a.watcher = nil
	assert.Equal(t, "(neo@matrix.io )", a.getStatus())
}

func TestWhoAmI(t *testing.T) {
	fs := &fakeSession{}
	a, out := newTestApp(fs, "")
	require.NoError(t, a.WhoAmI(context.Background()))
	assert.Contains(t, out.String(), "Not signed in.")

	out.Reset()
	fs.admin = true
	fs.state.User = &models.UserProfile{ID: "1", Email: "a@x.io", Username: "ada", Name: "Ada", Lastname: "Lovelace", Role: models.RoleAdmin, EmailVerified: true}
	require.NoError(t, a.WhoAmI(context.Background()))
	assert.Contains(t, out.String(), "Ada Lovelace (ada)")
	assert.Contains(t, out.String(), "Verified: true")
	assert.Contains(t, out.String(), "administrator")
}

func TestStatus_PrintsDiagnostics(t *testing.T) {
	fs := &fakeSession{state: session.State{Status: session.StatusAuthenticated, Error: "boom"}}
	a, out := newTestApp(fs, "")
	a.store = fakeDiag{d: credstore.Diagnostics{
		Available: true, PrimaryPresent: true, PrimaryLength: 42,
		BackupPresent: true, BackupMatches: true, RecordedLength: 42, LengthMatches: true, UserPresent: true,
	}}

	require.NoError(t, a.Status(context.Background()))
	s := out.String()
	assert.Contains(t, s, "Session:      authenticated")
	assert.Contains(t, s, "Connectivity: online")
	assert.Contains(t, s, "Last error:   boom")
	assert.Contains(t, s, "present, 42 chars")
	assert.Contains(t, s, "Consistent:   true")

	out.Reset()
	a.store = fakeDiag{}
	require.NoError(t, a.Status(context.Background()))
	assert.Contains(t, out.String(), "Storage:      unavailable")
}

func TestProfile_UpdatesPatch(t *testing.T) {
	fs := &fakeSession{state: session.State{User: &models.UserProfile{ID: "1"}}}
	a, out := newTestApp(fs, "")

	require.NoError(t, a.Profile(context.Background(), []string{"name=Ada", "emailVerified=true"}))
	assert.Equal(t, models.ProfilePatch{"name": "Ada", "emailVerified": true}, fs.patch)
	assert.Contains(t, out.String(), "Profile updated.")

	fs.patchErr = errors.New("disk full")
	require.Error(t, a.Profile(context.Background(), []string{"name=Bob"}))

	require.Error(t, a.Profile(context.Background(), []string{"garbage"}))
}

func TestProfile_SignedOut(t *testing.T) {
	fs := &fakeSession{}
	a, out := newTestApp(fs, "")
	require.NoError(t, a.Profile(context.Background(), []string{"name=Ada"}))
	assert.Nil(t, fs.patch)
	assert.Contains(t, out.String(), "Not signed in.")
}

func TestOnStateChange_Notices(t *testing.T) {
	lines := capturePrintln(t)
	a, _ := newTestApp(&fakeSession{}, "")

	a.onStateChange(session.State{Status: session.StatusAuthenticated})
	a.onStateChange(session.State{Status: session.StatusLoading, Loading: true})
	a.onStateChange(session.State{Status: session.StatusUnauthenticated, Error: "your session has expired, please sign in again"})
	a.onStateChange(session.State{Status: session.StatusSessionError, SessionError: true})
	a.onStateChange(session.State{Status: session.StatusSessionError, SessionError: true})

	assert.Equal(t, []string{
		"Signed out: your session has expired, please sign in again",
		sessionErrorNotice,
	}, *lines)
}

func TestParsePatch(t *testing.T) {
	p, err := parsePatch([]string{"name=Ada", "lastname=", "emailVerified=false"})
	require.NoError(t, err)
	assert.Equal(t, models.ProfilePatch{"name": "Ada", "lastname": "", "emailVerified": false}, p)

	_, err = parsePatch([]string{"=x"})
	require.Error(t, err)
}

func TestNewApp_UnopenableStoreStillStarts(t *testing.T) {
	cfg := &config.Config{}
	cfg.LoadDefaults()
	// a directory cannot be opened as a database file
	cfg.StorePath = t.TempDir()
	cfg.LogLevel = "error"

	a, err := NewApp(cfg)
	require.NoError(t, err)
	t.Cleanup(a.close)

	assert.Nil(t, a.db)
	a.session.Init(context.Background())
	assert.True(t, a.sessionBlocked())
}

func TestNewApp_CreatesStoreDirectory(t *testing.T) {
	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.StorePath = filepath.Join(t.TempDir(), "nested", "session.db")
	cfg.LogLevel = "error"

	a, err := NewApp(cfg)
	require.NoError(t, err)
	t.Cleanup(a.close)

	require.NotNil(t, a.db)
	a.session.Init(context.Background())
	assert.False(t, a.sessionBlocked())
	assert.Equal(t, session.StatusUnauthenticated, a.session.State().Status)
}

func TestNewApp_BadServerURL(t *testing.T) {
	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.StorePath = ":memory:"
	cfg.ServerURL = "ftp://nope"

	_, err := NewApp(cfg)
	require.Error(t, err)
}
