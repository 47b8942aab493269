package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	Items(ctx context.Context) error
	Outfits(ctx context.Context) error
	Show(ctx context.Context, id string) error
	Search(ctx context.Context, keyword string) error
	Filter(ctx context.Context, field, keyword string) error
}

// runREPL reads commands from r until EOF, "exit" or "quit", or until ctx
// is done, and dispatches them to a.
//
//	Not logged in:
//	  - help                     show available commands
//	  - register                 create an account
//	  - login                    authenticate
//	  - exit | quit              leave the program
//
//	Logged in:
//	  - items | l                list your items
//	  - outfits                  list your outfits
//	  - show <id>                show one item
//	  - search <keyword>         search all text fields
//	  - filter <field> <keyword> filter items on one field
//	  - logout                   log out
//
// Command errors are printed and the loop keeps going.
func runREPL(ctx context.Context, a execIface, statusFn func() string, r *bufio.Reader) {
	for {
		if ctx.Err() != nil {
			return
		}
		printlnFn(fmt.Sprintf("apparel %s> ", statusFn()))

		line, err := r.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		var cmdErr error
		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn("Available commands: (l)items, outfits, show <id>, search <keyword>, filter <field> <keyword>, logout, exit")
			} else {
				printlnFn("Available commands: register, login, exit")
			}

		case "register":
			cmdErr = a.Register(ctx)

		case "login":
			cmdErr = a.Login(ctx)

		case "logout":
			cmdErr = a.Logout(ctx)

		case "l", "items":
			cmdErr = a.Items(ctx)

		case "outfits":
			cmdErr = a.Outfits(ctx)

		case "show":
			if len(args) != 1 {
				printlnFn("Usage: show <id>")
				continue
			}
			cmdErr = a.Show(ctx, args[0])

		case "search":
			if len(args) == 0 {
				printlnFn("Usage: search <keyword>")
				continue
			}
			cmdErr = a.Search(ctx, strings.Join(args, " "))

		case "filter":
			if len(args) < 2 {
				printlnFn("Usage: filter <field> <keyword>")
				continue
			}
			cmdErr = a.Filter(ctx, args[0], strings.Join(args[1:], " "))

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}

		if cmdErr != nil {
			printlnFn("error:", cmdErr)
		}
		if err != nil {
			return
		}
	}
}
