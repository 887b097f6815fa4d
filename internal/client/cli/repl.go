package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dmitrijs2005/gophusers/internal/client/api"
)

// execIface is the command surface the REPL dispatches to. App satisfies it;
// tests provide a stub.
type execIface interface {
	isLoggedIn() bool
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Me(ctx context.Context) error
	Update(ctx context.Context) error
	UploadAvatar(ctx context.Context, path string) error
	DeleteAvatar(ctx context.Context) error
	GetAvatar(ctx context.Context, userID, path string) error
	Logout(ctx context.Context) error
	LogoutAll(ctx context.Context) error
	Delete(ctx context.Context) error
}

// runREPL reads commands line by line from reader and dispatches them to a.
// The loop exits on EOF or on "exit"/"quit". Command errors are reported to
// w and the loop carries on.
//
//	Not logged in: register, login, getavatar, help, exit
//	Logged in:     me, update, avatar <file>, rmavatar, getavatar [id] <file>,
//	               logout, logoutall, delete, help, exit
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader, w io.Writer) {
	for {
		fmt.Fprintf(w, "gophusers %s> ", statusFn())
		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
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
				fmt.Fprintln(w, "Available commands: me, update, avatar <file>, rmavatar, getavatar [id] <file>, logout, logoutall, delete, exit")
			} else {
				fmt.Fprintln(w, "Available commands: register, login, getavatar <id> <file>, exit")
			}
		case "register":
			cmdErr = a.Register(ctx)
		case "login":
			cmdErr = a.Login(ctx)
		case "me":
			cmdErr = a.Me(ctx)
		case "update":
			cmdErr = a.Update(ctx)
		case "avatar":
			if len(args) != 1 {
				fmt.Fprintln(w, "Usage: avatar <file.png|file.jpg>")
				continue
			}
			cmdErr = a.UploadAvatar(ctx, args[0])
		case "rmavatar":
			cmdErr = a.DeleteAvatar(ctx)
		case "getavatar":
			switch len(args) {
			case 1:
				cmdErr = a.GetAvatar(ctx, "", args[0])
			case 2:
				cmdErr = a.GetAvatar(ctx, args[0], args[1])
			default:
				fmt.Fprintln(w, "Usage: getavatar [id] <file>")
				continue
			}
		case "logout":
			cmdErr = a.Logout(ctx)
		case "logoutall":
			cmdErr = a.LogoutAll(ctx)
		case "delete":
			cmdErr = a.Delete(ctx)
		case "exit", "quit":
			fmt.Fprintln(w, "Bye!")
			return
		default:
			fmt.Fprintln(w, "Unknown command:", cmd)
			continue
		}

		if cmdErr != nil {
			fmt.Fprintln(w, describe(cmdErr))
		}
	}
}

func describe(err error) string {
	var apiErr *api.Error
	switch {
	case errors.Is(err, api.ErrUnauthorized):
		return "Not logged in (use login or register)"
	case errors.Is(err, api.ErrUnavailable):
		return "Server unavailable, try again later"
	case errors.As(err, &apiErr):
		return "Error: " + apiErr.Message
	}
	return "Error: " + err.Error()
}
