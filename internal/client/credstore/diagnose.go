package credstore

import (
	"context"
	"strconv"
)

// Diagnostics is a snapshot of the token keys for troubleshooting.
type Diagnostics struct {
	Available      bool
	PrimaryPresent bool
	PrimaryLength  int
	BackupPresent  bool
	BackupMatches  bool
	RecordedLength int
	LengthMatches  bool
	UserPresent    bool
}

// Consistent is true when the backup and recorded length agree with the
// primary token, or when no token keys exist at all.
func (d Diagnostics) Consistent() bool {
	if !d.PrimaryPresent {
		return !d.BackupPresent && d.RecordedLength == 0
	}
	return d.BackupMatches && d.LengthMatches
}

// Diagnose cross-checks the primary token against its backup and recorded
// length.
func (s *Store) Diagnose(ctx context.Context) Diagnostics {
	d := Diagnostics{Available: s.IsAvailable(ctx)}
	if !d.Available {
		return d
	}

	all, err := s.repo.List(ctx)
	if err != nil {
		s.logger.Error(ctx, "diagnose: list keys", "error", err)
		return d
	}

	primary, ok := all[KeyToken]
	d.PrimaryPresent = ok && len(primary) > 0
	d.PrimaryLength = len(primary)

	backup, ok := all[KeyTokenBackup]
	d.BackupPresent = ok && len(backup) > 0
	d.BackupMatches = d.BackupPresent && string(backup) == string(primary)

	if raw, ok := all[KeyTokenLength]; ok {
		n, err := strconv.Atoi(string(raw))
		if err != nil {
			s.logger.Warn(ctx, "diagnose: recorded length is not a number", "value", string(raw))
		}
		d.RecordedLength = n
	}
	d.LengthMatches = d.RecordedLength == d.PrimaryLength

	u, ok := all[KeyUser]
	d.UserPresent = ok && len(u) > 0

	if !d.Consistent() {
		s.logger.Warn(ctx, "token keys disagree",
			"primary_len", d.PrimaryLength,
			"backup_present", d.BackupPresent,
			"backup_matches", d.BackupMatches,
			"recorded_len", d.RecordedLength)
	}
	return d
}
