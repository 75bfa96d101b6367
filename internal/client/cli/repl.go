package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for REPL output.
var printlnFn = fmt.Println

// execIface is the command surface the REPL dispatches to. App satisfies it;
// tests use a stub.
type execIface interface {
	isLoggedIn() bool
	RSVP(ctx context.Context) error
	Photos(ctx context.Context) error
	Login(ctx context.Context) error
	Guests(ctx context.Context) error
	Stats(ctx context.Context) error
	Logout(ctx context.Context) error
}

// runREPL reads commands line by line from reader and dispatches them to a.
//
//	Everyone:
//	  - help           show available commands
//	  - rsvp           answer the invitation
//	  - photos         list approved guest photos
//	  - login          admin login
//	  - exit | quit
//
//	Admin:
//	  - guests         list every RSVP
//	  - stats          attendance totals
//	  - logout
//
// Handler errors are ignored here; handlers print their own.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("wedding %s> ", statusFn()))
		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn("Available commands: rsvp, photos, guests, stats, logout, exit")
			} else {
				printlnFn("Available commands: rsvp, photos, login, exit")
			}

		case "rsvp":
			_ = a.RSVP(ctx)

		case "photos":
			_ = a.Photos(ctx)

		case "login":
			_ = a.Login(ctx)

		case "guests":
			_ = a.Guests(ctx)

		case "stats":
			_ = a.Stats(ctx)

		case "logout":
			_ = a.Logout(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}
