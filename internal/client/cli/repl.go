package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/notekeeper/internal/ai"
	"github.com/dmitrijs2005/notekeeper/internal/client/client"
	"github.com/dmitrijs2005/notekeeper/internal/client/view"
	"github.com/dmitrijs2005/notekeeper/internal/common"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	SignUp(ctx context.Context) error
	SignIn(ctx context.Context) error
	SignOut(ctx context.Context) error
	List(ctx context.Context, filter view.Filter) error
	Search(ctx context.Context, query string) error
	Open(ctx context.Context, ref string) error
	Close(ctx context.Context) error
	Show(ctx context.Context) error
	New(ctx context.Context) error
	Edit(ctx context.Context) error
	Delete(ctx context.Context, ref string) error
	Pin(ctx context.Context) error
	Lock(ctx context.Context) error
	Unlock(ctx context.Context) error
	Analyze(ctx context.Context, kind ai.Kind) error
	Hover(ctx context.Context, n int) error
	Leave(ctx context.Context) error
	Export(ctx context.Context, save bool) error
}

const (
	helpSignedOut = "Available commands: signup, signin, exit"
	helpSignedIn  = `Available commands:
  list | l, pinned, search <text>     browse notes
  open <n|id>, show, close            view a note
  new, edit, delete [n|id]            write notes
  pin, lock, unlock                   note flags and encryption
  analyze <summary|tags|grammar|glossary>
  hover <n>, leave                    details of a marked word
  export [save], signout, exit`
)

// runREPL reads commands from reader until EOF, ctx is done, or the user
// types "exit" or "quit". Command errors are reported and the loop goes on.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for ctx.Err() == nil {
		prompt := "notekeeper> "
		if s := statusFn(); s != "" {
			prompt = fmt.Sprintf("notekeeper (%s)> ", s)
		}
		printlnFn(prompt)

		line, err := reader.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || strings.TrimSpace(line) == "") {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := strings.ToLower(parts[0]), parts[1:]

		if cmd == "exit" || cmd == "quit" {
			printlnFn("Bye!")
			return
		}
		if err := dispatch(ctx, a, cmd, args); err != nil {
			printlnFn(describe(err))
		}
	}
}

func dispatch(ctx context.Context, a execIface, cmd string, args []string) error {
	switch cmd {
	case "help":
		if a.isLoggedIn() {
			printlnFn(helpSignedIn)
		} else {
			printlnFn(helpSignedOut)
		}
		return nil
	case "signup", "register":
		return a.SignUp(ctx)
	case "signin", "login":
		return a.SignIn(ctx)
	}

	if !a.isLoggedIn() {
		if _, known := commands[cmd]; known {
			return errSignedOut
		}
		return fmt.Errorf("unknown command: %s", cmd)
	}

	switch cmd {
	case "signout", "logout":
		return a.SignOut(ctx)
	case "l", "list":
		return a.List(ctx, view.FilterAll)
	case "pinned":
		return a.List(ctx, view.FilterPinned)
	case "search":
		return a.Search(ctx, strings.Join(args, " "))
	case "open":
		return a.Open(ctx, first(args))
	case "close":
		return a.Close(ctx)
	case "show":
		return a.Show(ctx)
	case "new":
		return a.New(ctx)
	case "edit":
		return a.Edit(ctx)
	case "delete", "rm":
		return a.Delete(ctx, first(args))
	case "pin":
		return a.Pin(ctx)
	case "lock":
		return a.Lock(ctx)
	case "unlock":
		return a.Unlock(ctx)
	case "analyze":
		kind, err := ai.ParseKind(first(args))
		if err != nil {
			return err
		}
		return a.Analyze(ctx, kind)
	case "summary", "tags", "grammar", "glossary":
		return a.Analyze(ctx, ai.Kind(cmd))
	case "hover":
		n, err := strconv.Atoi(first(args))
		if err != nil {
			return fmt.Errorf("usage: hover <n>")
		}
		return a.Hover(ctx, n)
	case "leave":
		return a.Leave(ctx)
	case "export":
		switch first(args) {
		case "":
			return a.Export(ctx, false)
		case "save":
			return a.Export(ctx, true)
		}
		return fmt.Errorf("usage: export [save]")
	}
	return fmt.Errorf("unknown command: %s", cmd)
}

var commands = map[string]struct{}{
	"signout": {}, "logout": {}, "l": {}, "list": {}, "pinned": {}, "search": {},
	"open": {}, "close": {}, "show": {}, "new": {}, "edit": {}, "delete": {}, "rm": {},
	"pin": {}, "lock": {}, "unlock": {}, "analyze": {}, "summary": {}, "tags": {},
	"grammar": {}, "glossary": {}, "hover": {}, "leave": {}, "export": {},
}

func first(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}

// describe turns an error into a message for the user.
func describe(err error) string {
	switch {
	case errors.Is(err, errSignedOut):
		return "Sign in first ('signin') or create an account ('signup')."
	case errors.Is(err, errNotOpen):
		return "Open a note first ('open <n>')."
	case errors.Is(err, view.ErrNoteLocked):
		return "This note is encrypted. Type 'unlock' first."
	case errors.Is(err, client.ErrUnavailable):
		return "Server is unreachable. Check your connection and try again."
	case errors.Is(err, client.ErrWrongPassword):
		return "Wrong password."
	case errors.Is(err, client.ErrUnauthorized):
		return "Invalid email or password."
	case errors.Is(err, client.ErrConflict):
		return "An account with this email already exists."
	case errors.Is(err, client.ErrNotFound):
		return "Note not found."
	case errors.Is(err, common.ErrorEmptyTitle):
		return "Title is required."
	case errors.Is(err, common.ErrorInvalidLoginFormat):
		return "Please enter a valid email address."
	case errors.Is(err, common.ErrorInvalidPasswordFormat):
		return fmt.Sprintf("Password must be at least %d characters.", common.MinPasswordLength)
	}
	return "Error: " + err.Error()
}
