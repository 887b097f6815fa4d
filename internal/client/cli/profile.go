package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/gophusers/internal/client/api"
	"github.com/dmitrijs2005/gophusers/internal/common"
)

func printUser(w io.Writer, u *api.User) {
	fmt.Fprintf(w, "ID:      %s\n", u.ID)
	fmt.Fprintf(w, "Name:    %s\n", u.Name)
	fmt.Fprintf(w, "Email:   %s\n", u.Email)
	fmt.Fprintf(w, "Age:     %d\n", u.Age)
	if !u.CreatedAt.IsZero() {
		fmt.Fprintf(w, "Created: %s\n", u.CreatedAt.Local().Format(time.RFC1123))
	}
	if !u.UpdatedAt.IsZero() {
		fmt.Fprintf(w, "Updated: %s\n", u.UpdatedAt.Local().Format(time.RFC1123))
	}
}

func (a *App) Me(ctx context.Context) error {
	u, err := a.api.Me(ctx)
	if err != nil {
		return a.checkSession(ctx, err)
	}
	printUser(a.out, u)
	return nil
}

// Update asks for each field in turn; an empty answer leaves it unchanged.
func (a *App) Update(ctx context.Context) error {
	fields := map[string]any{}

	for _, f := range []string{"name", "email"} {
		v, err := getSimpleText(a.reader, "New "+f+" (empty to keep)", a.out)
		if err != nil {
			return err
		}
		if v != "" {
			fields[f] = v
		}
	}

	ageText, err := getSimpleText(a.reader, "New age (empty to keep)", a.out)
	if err != nil {
		return err
	}
	if ageText != "" {
		age, err := strconv.Atoi(ageText)
		if err != nil {
			return fmt.Errorf("age must be a number")
		}
		fields["age"] = age
	}

	password, err := getPassword("New password (empty to keep)", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)
	if len(password) > 0 {
		fields["password"] = string(password)
	}

	if len(fields) == 0 {
		fmt.Fprintln(a.out, "Nothing to update")
		return nil
	}

	u, err := a.api.Update(ctx, fields)
	if err != nil {
		return a.checkSession(ctx, err)
	}
	if a.current != nil && a.current.Email != u.Email {
		a.current.Email = u.Email
		if err := a.sessions.Save(ctx, *a.current); err != nil {
			return fmt.Errorf("error saving session: %w", err)
		}
	}
	printUser(a.out, u)
	return nil
}

// Delete removes the account after an explicit confirmation.
func (a *App) Delete(ctx context.Context) error {
	answer, err := getSimpleText(a.reader, "Type 'yes' to delete your account", a.out)
	if err != nil {
		return err
	}
	if !strings.EqualFold(answer, "yes") {
		fmt.Fprintln(a.out, "Cancelled")
		return nil
	}

	u, err := a.api.Delete(ctx)
	if err != nil {
		return a.checkSession(ctx, err)
	}
	if err := a.forget(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Deleted account", u.Email)
	return nil
}

// checkSession drops a saved session the server rejects and returns err.
func (a *App) checkSession(ctx context.Context, err error) error {
	var apiErr *api.Error
	if errors.As(err, &apiErr) && apiErr.Status == 401 && a.current != nil {
		if ferr := a.forget(ctx); ferr != nil {
			return errors.Join(err, ferr)
		}
	}
	return err
}
