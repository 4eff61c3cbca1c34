package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
)

func (a *App) getStatus() string {
	p := a.journal.Profile()
	if p == nil {
		return ""
	}
	name := p.Email
	if p.DisplayName != nil {
		name = *p.DisplayName
	}
	return fmt.Sprintf("(%s)", name)
}

// Root runs the REPL until the user exits or stdin closes.
func (a *App) Root(ctx context.Context) {
	fmt.Fprintln(a.out, "Welcome to Obex (type 'help' for commands)")
	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Fprintf(a.out, "obex %s> ", a.getStatus())
		if !scanner.Scan() {
			break
		}
		line := scanner.Text()
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}

		cmd := parts[0]
		args := parts[1:]

		switch cmd {
		case "help":
			a.help()

		case "register", "signup":
			a.Register(ctx)
		case "login", "signin":
			a.Login(ctx)
		case "logout", "signout":
			a.Logout(ctx)
		case "reset":
			a.Reset(ctx)

		case "write":
			a.write(ctx)
		case "list", "l":
			a.list(ctx)
		case "show":
			if len(args) == 0 {
				fmt.Fprintln(a.out, "Usage: show <id>")
				continue
			}
			a.show(ctx, args[0])
		case "edit":
			if len(args) == 0 {
				fmt.Fprintln(a.out, "Usage: edit <id>")
				continue
			}
			a.edit(ctx, args[0])
		case "delete":
			if len(args) == 0 {
				fmt.Fprintln(a.out, "Usage: delete <id>")
				continue
			}
			a.delete(ctx, args[0])
		case "search":
			a.search(ctx)
		case "attach":
			if len(args) < 2 {
				fmt.Fprintln(a.out, "Usage: attach <id> <audio file>")
				continue
			}
			a.attach(ctx, args[0], args[1])
		case "sync":
			a.sync(ctx)

		case "profile":
			a.profile(ctx)
		case "path":
			a.choosePath(ctx)
		case "name":
			a.setName(ctx)
		case "streak":
			a.streak(ctx)

		case "exit", "quit":
			fmt.Fprintln(a.out, "Bye!")
			return

		default:
			fmt.Fprintln(a.out, "Unknown command:", cmd)
		}
	}
}

func (a *App) help() {
	if a.isSignedIn() {
		fmt.Fprintln(a.out, "Journal:  write, (l)ist, show <id>, edit <id>, delete <id>, search, attach <id> <file>, sync")
		fmt.Fprintln(a.out, "Profile:  profile, path, name, streak")
		fmt.Fprintln(a.out, "Account:  logout, exit")
	} else {
		fmt.Fprintln(a.out, "Available commands: register, login, reset, exit")
	}
}
