package config

import "fmt"

// VerificationPolicy decides what a failed startup verification does to a
// restored session.
type VerificationPolicy string

const (
	// KeepSession keeps the stored token and profile; the state stays
	// authenticated.
	KeepSession VerificationPolicy = "keepSession"
	// ForceLogout clears the credential store and the in-memory state.
	ForceLogout VerificationPolicy = "forceLogout"
)

func (p VerificationPolicy) Valid() bool {
	return p == KeepSession || p == ForceLogout
}

func (p VerificationPolicy) String() string { return string(p) }

// UnmarshalText accepts exactly the two policy names.
func (p *VerificationPolicy) UnmarshalText(text []byte) error {
	v := VerificationPolicy(text)
	if !v.Valid() {
		return fmt.Errorf("%w: verification policy %q", ErrInvalidConfig, string(text))
	}
	*p = v
	return nil
}
