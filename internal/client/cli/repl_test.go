package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrijs2005/notekeeper/internal/ai"
	"github.com/dmitrijs2005/notekeeper/internal/client/client"
	"github.com/dmitrijs2005/notekeeper/internal/client/view"
)

type fakeExec struct {
	loggedIn bool
	calls    []string
	err      error
}

func (f *fakeExec) rec(call string) error {
	f.calls = append(f.calls, call)
	return f.err
}

func (f *fakeExec) isLoggedIn() bool { return f.loggedIn }
func (f *fakeExec) SignUp(context.Context) error {
	f.loggedIn = true
	return f.rec("signup")
}
func (f *fakeExec) SignIn(context.Context) error {
	f.loggedIn = true
	return f.rec("signin")
}
func (f *fakeExec) SignOut(context.Context) error {
	f.loggedIn = false
	return f.rec("signout")
}
func (f *fakeExec) List(_ context.Context, filter view.Filter) error {
	if filter == view.FilterPinned {
		return f.rec("pinned")
	}
	return f.rec("list")
}
func (f *fakeExec) Search(_ context.Context, q string) error { return f.rec("search " + q) }
func (f *fakeExec) Open(_ context.Context, ref string) error  { return f.rec("open " + ref) }
func (f *fakeExec) Close(context.Context) error               { return f.rec("close") }
func (f *fakeExec) Show(context.Context) error                { return f.rec("show") }
func (f *fakeExec) New(context.Context) error                 { return f.rec("new") }
func (f *fakeExec) Edit(context.Context) error                { return f.rec("edit") }
func (f *fakeExec) Delete(_ context.Context, ref string) error {
	return f.rec("delete " + ref)
}
func (f *fakeExec) Pin(context.Context) error    { return f.rec("pin") }
func (f *fakeExec) Lock(context.Context) error   { return f.rec("lock") }
func (f *fakeExec) Unlock(context.Context) error { return f.rec("unlock") }
func (f *fakeExec) Analyze(_ context.Context, k ai.Kind) error {
	return f.rec("analyze " + string(k))
}
func (f *fakeExec) Hover(_ context.Context, n int) error { return f.rec(fmt.Sprint("hover ", n)) }
func (f *fakeExec) Leave(context.Context) error          { return f.rec("leave") }
func (f *fakeExec) Export(_ context.Context, save bool) error {
	if save {
		return f.rec("export save")
	}
	return f.rec("export")
}

func captureOutput(t *testing.T) *[]string {
	t.Helper()
	var out []string
	orig := printlnFn
	printlnFn = func(a ...any) (int, error) {
		out = append(out, fmt.Sprint(a...))
		return 0, nil
	}
	t.Cleanup(func() { printlnFn = orig })
	return &out
}

func TestRunREPL_DispatchesCommands(t *testing.T) {
	captureOutput(t)

	input := strings.Join([]string{
		"signin",
		"list",
		"pinned",
		"search meeting notes",
		"open 2",
		"analyze Glossary",
		"grammar",
		"hover 3",
		"leave",
		"pin",
		"lock",
		"unlock",
		"edit",
		"delete 4",
		"export",
		"export save",
		"close",
		"signout",
		"exit",
		"list",
	}, "\n")

	exec := &fakeExec{}
	runREPL(context.Background(), exec, func() string { return "" }, rdr(input))

	assert.Equal(t, []string{
		"signin", "list", "pinned", "search meeting notes", "open 2",
		"analyze glossary", "analyze grammar", "hover 3", "leave", "pin", "lock",
		"unlock", "edit", "delete 4", "export", "export save", "close", "signout",
	}, exec.calls)
}

func TestRunREPL_RequiresSignIn(t *testing.T) {
	out := captureOutput(t)

	exec := &fakeExec{}
	runREPL(context.Background(), exec, func() string { return "" }, rdr("list\nfrobnicate\nhelp\n"))

	assert.Empty(t, exec.calls)
	assert.Contains(t, *out, describe(errSignedOut))
	assert.Contains(t, *out, "Error: unknown command: frobnicate")
	assert.Contains(t, *out, helpSignedOut)
}

func TestRunREPL_UsageErrorsAndPrompt(t *testing.T) {
	out := captureOutput(t)

	exec := &fakeExec{loggedIn: true}
	runREPL(context.Background(), exec, func() string { return "me@example.com" },
		rdr("hover x\nanalyze poem\nquit\n"))

	assert.Empty(t, exec.calls)
	assert.Contains(t, *out, "notekeeper (me@example.com)> ")
	assert.Contains(t, *out, "Error: usage: hover <n>")
	assert.Contains(t, *out, "Bye!")
}

func TestRunREPL_ReportsCommandErrors(t *testing.T) {
	out := captureOutput(t)

	exec := &fakeExec{loggedIn: true, err: fmt.Errorf("get note: %w", client.ErrUnavailable)}
	runREPL(context.Background(), exec, func() string { return "" }, rdr("open 1\n"))

	assert.Equal(t, []string{"open 1"}, exec.calls)
	assert.Contains(t, *out, "Server is unreachable. Check your connection and try again.")
}

func TestRunREPL_StopsOnCancelledContext(t *testing.T) {
	captureOutput(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	exec := &fakeExec{loggedIn: true}
	runREPL(ctx, exec, func() string { return "" }, rdr("list\n"))

	assert.Empty(t, exec.calls)
}

func TestDescribe(t *testing.T) {
	assert.Equal(t, "Wrong password.", describe(fmt.Errorf("unlock: %w", client.ErrWrongPassword)))
	assert.Equal(t, "This note is encrypted. Type 'unlock' first.", describe(view.ErrNoteLocked))
	assert.Equal(t, "Error: boom", describe(errors.New("boom")))
}
