package credstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"strconv"

	"github.com/dmitrijs2005/siteauth/internal/client/models"
	"github.com/dmitrijs2005/siteauth/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/siteauth/internal/dbx"
	"github.com/dmitrijs2005/siteauth/internal/logging"
)

const (
	KeyToken       = "auth.token"
	KeyTokenBackup = "auth.token.backup"
	KeyTokenLength = "auth.token.length"
	KeyUser        = "auth.user"

	keyProbe = "auth.__probe__"
)

// tokenKeys lists every key written by SetToken.
var tokenKeys = []string{KeyToken, KeyTokenBackup, KeyTokenLength}

// Store implements the credential store over the SQLite metadata table.
type Store struct {
	db     *sql.DB
	repo   metadata.Repository
	logger logging.Logger
}

// New returns a store over db. A nil db yields a store that is never
// available and ignores every write.
func New(db *sql.DB, logger logging.Logger) *Store {
	return &Store{
		db:     db,
		repo:   metadata.NewSQLiteRepository(db),
		logger: logger.With("component", "credstore"),
	}
}

// IsAvailable reports whether the store accepts writes, by writing and
// deleting a probe key.
func (s *Store) IsAvailable(ctx context.Context) bool {
	if s.db == nil {
		return false
	}
	if err := s.repo.Set(ctx, keyProbe, []byte("1")); err != nil {
		s.logger.Warn(ctx, "storage probe write failed", "error", err)
		return false
	}
	if err := s.repo.Delete(ctx, keyProbe); err != nil {
		s.logger.Warn(ctx, "storage probe delete failed", "error", err)
		return false
	}
	return true
}

// Token returns the primary token or "" when none is stored.
func (s *Store) Token(ctx context.Context) string {
	if s.db == nil {
		return ""
	}
	v, err := s.repo.Get(ctx, KeyToken)
	if err != nil {
		s.logger.Error(ctx, "read token", "error", err)
		return ""
	}
	return string(v)
}

// SetToken writes the token together with its diagnostic copies in one
// transaction. An empty token clears instead.
func (s *Store) SetToken(ctx context.Context, token string) {
	if s.db == nil {
		return
	}
	if token == "" {
		s.ClearToken(ctx)
		return
	}

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := metadata.NewSQLiteRepository(tx)
		if err := repo.Set(ctx, KeyToken, []byte(token)); err != nil {
			return err
		}
		if err := repo.Set(ctx, KeyTokenBackup, []byte(token)); err != nil {
			return err
		}
		return repo.Set(ctx, KeyTokenLength, []byte(strconv.Itoa(len(token))))
	})
	if err != nil {
		s.logger.Error(ctx, "write token", "error", err, "token_len", len(token))
		return
	}
	s.logger.Debug(ctx, "token stored", "token_len", len(token))
}

// ClearToken removes the token and its diagnostic copies.
func (s *Store) ClearToken(ctx context.Context) {
	if s.db == nil {
		return
	}
	if err := s.repo.Delete(ctx, tokenKeys...); err != nil {
		s.logger.Error(ctx, "clear token", "error", err)
	}
}

// User returns the cached profile; missing or malformed data yields nil.
func (s *Store) User(ctx context.Context) *models.UserProfile {
	if s.db == nil {
		return nil
	}
	v, err := s.repo.Get(ctx, KeyUser)
	if err != nil {
		s.logger.Error(ctx, "read user", "error", err)
		return nil
	}
	if len(v) == 0 {
		return nil
	}

	var u models.UserProfile
	if err := json.Unmarshal(v, &u); err != nil {
		s.logger.Warn(ctx, "cached user is malformed, ignoring", "error", err)
		return nil
	}
	return &u
}

// SetUser caches u; nil removes the cached profile.
func (s *Store) SetUser(ctx context.Context, u *models.UserProfile) {
	if s.db == nil {
		return
	}
	if u == nil {
		if err := s.repo.Delete(ctx, KeyUser); err != nil {
			s.logger.Error(ctx, "clear user", "error", err)
		}
		return
	}

	data, err := json.Marshal(u)
	if err != nil {
		s.logger.Error(ctx, "encode user", "error", err)
		return
	}
	if err := s.repo.Set(ctx, KeyUser, data); err != nil {
		s.logger.Error(ctx, "write user", "error", err)
	}
}

// Clear removes the token, its copies and the cached user.
func (s *Store) Clear(ctx context.Context) {
	if s.db == nil {
		return
	}
	if err := s.repo.Delete(ctx, KeyToken, KeyTokenBackup, KeyTokenLength, KeyUser); err != nil {
		s.logger.Error(ctx, "clear session storage", "error", err)
	}
}
