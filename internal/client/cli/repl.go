package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	sessionBlocked() bool
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	WhoAmI(ctx context.Context) error
	Status(ctx context.Context) error
	Verify(ctx context.Context, args []string) error
	Resend(ctx context.Context, args []string) error
	Forgot(ctx context.Context, args []string) error
	ResetPassword(ctx context.Context, args []string) error
	Profile(ctx context.Context, args []string) error
	ResetSession(ctx context.Context) error
}

// runREPL starts a simple read–eval–print loop for the siteauth CLI.
//
// It reads a line from reader, parses the first token as the command, and
// dispatches to methods on 'a'. Unknown commands are reported back to the
// user. The loop exits on EOF or when the user types "exit" or "quit".
//
// While the session is in the error state only help, status,
// reset-session and exit are accepted.
//
// Any errors returned by command handlers are ignored here; handlers print
// their own errors. This keeps the REPL loop resilient and focused on I/O.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		if ctx.Err() != nil {
			return
		}
		printlnFn(fmt.Sprintf("sa %s> ", statusFn()))
		line, err := readLine(reader)
		if err != nil {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		if a.sessionBlocked() {
			switch cmd {
			case "help", "status", "reset-session", "exit", "quit":
			default:
				printlnFn(sessionErrorNotice)
				continue
			}
		}

		switch cmd {
		case "help":
			switch {
			case a.sessionBlocked():
				printlnFn("Available commands: status, reset-session, exit")
			case a.isLoggedIn():
				printlnFn("Available commands: whoami, profile [name=value ...], verify [token], resend, status, logout, reset-session, exit")
			default:
				printlnFn("Available commands: register, login, forgot [email], reset-password [token userId], verify [token userId], resend [email], status, exit")
			}

		case "register":
			_ = a.Register(ctx)

		case "login":
			_ = a.Login(ctx)

		case "logout":
			_ = a.Logout(ctx)

		case "whoami":
			_ = a.WhoAmI(ctx)

		case "status":
			_ = a.Status(ctx)

		case "verify":
			_ = a.Verify(ctx, args)

		case "resend":
			_ = a.Resend(ctx, args)

		case "forgot":
			_ = a.Forgot(ctx, args)

		case "reset-password":
			_ = a.ResetPassword(ctx, args)

		case "profile":
			_ = a.Profile(ctx, args)

		case "reset-session":
			_ = a.ResetSession(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}
