package cli

import (
	"context"
	"fmt"
	"strings"
	"testing"
)

type fakeExec struct {
	loggedIn bool
	blocked  bool

	calls []string
	args  [][]string
}

func (f *fakeExec) record(name string, args []string) error {
	f.calls = append(f.calls, name)
	f.args = append(f.args, args)
	return nil
}

func (f *fakeExec) isLoggedIn() bool     { return f.loggedIn }
func (f *fakeExec) sessionBlocked() bool { return f.blocked }
func (f *fakeExec) Register(ctx context.Context) error {
	return f.record("register", nil)
}
func (f *fakeExec) Login(ctx context.Context) error {
	f.loggedIn = true
	return f.record("login", nil)
}
func (f *fakeExec) Logout(ctx context.Context) error {
	f.loggedIn = false
	return f.record("logout", nil)
}
func (f *fakeExec) WhoAmI(ctx context.Context) error { return f.record("whoami", nil) }
func (f *fakeExec) Status(ctx context.Context) error { return f.record("status", nil) }
func (f *fakeExec) Verify(ctx context.Context, args []string) error {
	return f.record("verify", args)
}
func (f *fakeExec) Resend(ctx context.Context, args []string) error {
	return f.record("resend", args)
}
func (f *fakeExec) Forgot(ctx context.Context, args []string) error {
	return f.record("forgot", args)
}
func (f *fakeExec) ResetPassword(ctx context.Context, args []string) error {
	return f.record("reset-password", args)
}
func (f *fakeExec) Profile(ctx context.Context, args []string) error {
	return f.record("profile", args)
}
func (f *fakeExec) ResetSession(ctx context.Context) error {
	f.blocked = false
	return f.record("reset-session", nil)
}

func capturePrintln(t *testing.T) *[]string {
	t.Helper()
	var lines []string
	orig := printlnFn
	printlnFn = func(a ...any) (int, error) {
		lines = append(lines, strings.TrimSpace(fmt.Sprintln(a...)))
		return 0, nil
	}
	t.Cleanup(func() { printlnFn = orig })
	return &lines
}

func TestRunREPL_LoginFlowAndCommands(t *testing.T) {
	capturePrintln(t)

	input := strings.Join([]string{
		"help",
		"login",
		"help",
		"whoami",
		"",
		"verify abc",
		"profile name=Ada",
		"status",
		"logout",
		"foobar",
		"exit",
		"login",
	}, "\n")

	exec := &fakeExec{}
	runREPL(context.Background(), exec, func() string { return "status" }, rdr(input))

	want := []string{"login", "whoami", "verify", "profile", "status", "logout"}
	if strings.Join(exec.calls, ",") != strings.Join(want, ",") {
		t.Fatalf("calls = %v, want %v", exec.calls, want)
	}
	if got := exec.args[2]; len(got) != 1 || got[0] != "abc" {
		t.Fatalf("verify args = %v", got)
	}
}

func TestRunREPL_PasswordFlows(t *testing.T) {
	capturePrintln(t)

	input := "register\nforgot a@b.c\nreset-password tok uid\nresend\nquit\n"
	exec := &fakeExec{}
	runREPL(context.Background(), exec, func() string { return "" }, rdr(input))

	want := []string{"register", "forgot", "reset-password", "resend"}
	if strings.Join(exec.calls, ",") != strings.Join(want, ",") {
		t.Fatalf("calls = %v, want %v", exec.calls, want)
	}
	if got := exec.args[2]; len(got) != 2 || got[1] != "uid" {
		t.Fatalf("reset-password args = %v", got)
	}
}

func TestRunREPL_BlockedSessionOnlyAllowsReset(t *testing.T) {
	lines := capturePrintln(t)

	input := "login\nwhoami\nstatus\nreset-session\nlogin\nexit\n"
	exec := &fakeExec{blocked: true}
	runREPL(context.Background(), exec, func() string { return "" }, rdr(input))

	want := []string{"status", "reset-session", "login"}
	if strings.Join(exec.calls, ",") != strings.Join(want, ",") {
		t.Fatalf("calls = %v, want %v", exec.calls, want)
	}

	notices := 0
	for _, l := range *lines {
		if l == sessionErrorNotice {
			notices++
		}
	}
	if notices != 2 {
		t.Fatalf("want 2 blocking notices, got %d in %v", notices, *lines)
	}
}

func TestRunREPL_StopsOnEOFAndCancel(t *testing.T) {
	capturePrintln(t)

	exec := &fakeExec{}
	runREPL(context.Background(), exec, func() string { return "" }, rdr("status"))
	if len(exec.calls) != 1 {
		t.Fatalf("unexpected calls: %v", exec.calls)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	exec = &fakeExec{}
	runREPL(ctx, exec, func() string { return "" }, rdr("status\n"))
	if len(exec.calls) != 0 {
		t.Fatalf("unexpected calls after cancel: %v", exec.calls)
	}
}
