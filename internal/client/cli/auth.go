package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/siteauth/internal/client/models"
	"github.com/dmitrijs2005/siteauth/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// errFailed is returned by commands whose session operation reported a
// failure; the message has already been printed.
var errFailed = errors.New("operation failed")

// report prints the outcome of a session operation.
func (a *App) report(res models.Result) error {
	if res.Success {
		msg := res.Message
		if msg == "" {
			msg = "Success!"
		}
		fmt.Fprintln(a.out, msg)
		return nil
	}
	fmt.Fprintln(a.out, "Error:", res.Message)
	return errFailed
}

// Register prompts for the account details and creates the account. On
// success the new account is signed in.
func (a *App) Register(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	username, err := getSimpleText(a.reader, "Enter username", a.out)
	if err != nil {
		return err
	}
	name, err := getSimpleText(a.reader, "Enter first name (optional)", a.out)
	if err != nil {
		return err
	}
	lastname, err := getSimpleText(a.reader, "Enter last name (optional)", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.reader, "Enter password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	res := a.session.Register(ctx, models.RegisterData{
		Email:    email,
		Password: string(password),
		Username: username,
		Name:     name,
		Lastname: lastname,
	})
	if err := a.report(res); err != nil {
		return err
	}
	if !a.session.IsEmailVerified() {
		fmt.Fprintln(a.out, "Check your inbox and run 'verify <token>' to confirm your email.")
	}
	return nil
}

// Login prompts the user for credentials and signs in.
//
// The prompt buffer is zeroed before returning. The request carries a string
// copy of the password, which Go cannot clear; it lives until collected.
func (a *App) Login(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.reader, "Enter password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	res := a.session.Login(ctx, models.Credentials{Email: email, Password: string(password)})
	if err := a.report(res); err != nil {
		return err
	}
	if u := a.session.State().User; u != nil {
		fmt.Fprintf(a.out, "Signed in as %s\n", displayName(u))
	}
	return nil
}

// Logout drops the session and the stored credentials.
func (a *App) Logout(ctx context.Context) error {
	a.session.Logout(ctx)
	fmt.Fprintln(a.out, "Signed out.")
	return nil
}

// ResetSession wipes local session storage after a session error.
func (a *App) ResetSession(ctx context.Context) error {
	a.session.ResetSession(ctx)
	fmt.Fprintln(a.out, "Local session data cleared. Type 'login' to sign in again.")
	return nil
}

// Verify confirms the email address: verify [token] [userId]. The user id
// defaults to the signed-in user.
func (a *App) Verify(ctx context.Context, args []string) error {
	token, err := argOrPrompt(args, 0, a.reader, "Enter verification token", a.out)
	if err != nil {
		return err
	}

	userID := ""
	if len(args) > 1 {
		userID = args[1]
	} else if u := a.session.State().User; u != nil {
		userID = u.ID
	}
	if userID == "" {
		if userID, err = getSimpleText(a.reader, "Enter user id", a.out); err != nil {
			return err
		}
	}

	return a.report(a.session.VerifyEmail(ctx, token, userID))
}

// Resend asks for a new verification email: resend [email]. The email
// defaults to the signed-in user's.
func (a *App) Resend(ctx context.Context, args []string) error {
	if len(args) == 0 {
		if u := a.session.State().User; u != nil && u.Email != "" {
			args = []string{u.Email}
		}
	}
	email, err := argOrPrompt(args, 0, a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	return a.report(a.session.ResendVerificationEmail(ctx, email))
}

// Forgot requests a password reset email: forgot [email].
func (a *App) Forgot(ctx context.Context, args []string) error {
	email, err := argOrPrompt(args, 0, a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	if err := a.report(a.session.RequestPasswordReset(ctx, email)); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Then run 'reset-password <token> <userId>'.")
	return nil
}

// ResetPassword completes a reset: reset-password [token] [userId].
func (a *App) ResetPassword(ctx context.Context, args []string) error {
	token, err := argOrPrompt(args, 0, a.reader, "Enter reset token", a.out)
	if err != nil {
		return err
	}
	userID, err := argOrPrompt(args, 1, a.reader, "Enter user id", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.reader, "Enter new password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	return a.report(a.session.ResetPassword(ctx, token, userID, string(password)))
}
