package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/siteauth/internal/client/connectivity"
	"github.com/dmitrijs2005/siteauth/internal/client/models"
)

func displayName(u *models.UserProfile) string {
	full := strings.TrimSpace(u.Name + " " + u.Lastname)
	switch {
	case full != "" && u.Username != "":
		return fmt.Sprintf("%s (%s)", full, u.Username)
	case u.Username != "":
		return u.Username
	default:
		return u.Email
	}
}

// WhoAmI prints the signed-in user.
func (a *App) WhoAmI(ctx context.Context) error {
	u := a.session.State().User
	if u == nil {
		fmt.Fprintln(a.out, "Not signed in.")
		return nil
	}

	fmt.Fprintf(a.out, "User:     %s\n", displayName(u))
	fmt.Fprintf(a.out, "ID:       %s\n", u.ID)
	fmt.Fprintf(a.out, "Email:    %s\n", u.Email)
	fmt.Fprintf(a.out, "Role:     %s\n", u.Role)
	fmt.Fprintf(a.out, "Verified: %t\n", a.session.IsEmailVerified())
	if a.session.IsAdmin() {
		fmt.Fprintln(a.out, "You have administrator access.")
	}
	return nil
}

// Status prints the session state, connectivity and storage diagnostics.
func (a *App) Status(ctx context.Context) error {
	st := a.session.State()

	mode := connectivity.ModeUnknown
	if a.watcher != nil {
		mode = a.watcher.Mode()
	}

	fmt.Fprintf(a.out, "Session:      %s\n", st.Status)
	fmt.Fprintf(a.out, "Connectivity: %s\n", mode)
	if st.Error != "" {
		fmt.Fprintf(a.out, "Last error:   %s\n", st.Error)
	}

	if a.store == nil {
		return nil
	}
	d := a.store.Diagnose(ctx)
	if !d.Available {
		fmt.Fprintln(a.out, "Storage:      unavailable")
		return nil
	}
	token := "absent"
	if d.PrimaryPresent {
		token = "present, " + strconv.Itoa(d.PrimaryLength) + " chars"
	}
	fmt.Fprintf(a.out, "Token:        %s\n", token)
	fmt.Fprintf(a.out, "Profile:      %s\n", presence(d.UserPresent))
	fmt.Fprintf(a.out, "Consistent:   %t\n", d.Consistent())
	return nil
}

func presence(ok bool) string {
	if ok {
		return "cached"
	}
	return "absent"
}

// Profile prints the profile, or with key=value arguments updates the
// locally cached copy: profile name=Ada lastname=Lovelace.
func (a *App) Profile(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return a.WhoAmI(ctx)
	}

	patch, err := parsePatch(args)
	if err != nil {
		fmt.Fprintln(a.out, "Error:", err)
		return err
	}
	if a.session.State().User == nil {
		fmt.Fprintln(a.out, "Not signed in.")
		return nil
	}
	if err := a.session.UpdateProfile(ctx, patch); err != nil {
		fmt.Fprintln(a.out, "Error:", err)
		return err
	}
	fmt.Fprintln(a.out, "Profile updated.")
	return nil
}

// parsePatch turns name=value pairs into a profile patch. "true" and
// "false" become booleans.
func parsePatch(args []string) (models.ProfilePatch, error) {
	patch := models.ProfilePatch{}
	for _, arg := range args {
		k, v, ok := strings.Cut(arg, "=")
		k = strings.TrimSpace(k)
		if !ok || k == "" {
			return nil, fmt.Errorf("expected name=value, got %q", arg)
		}
		switch v {
		case "true":
			patch[k] = true
		case "false":
			patch[k] = false
		default:
			patch[k] = v
		}
	}
	return patch, nil
}
