package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/dmitrijs2005/gophusers/internal/client/api"
	"github.com/dmitrijs2005/gophusers/internal/client/session"
	"github.com/dmitrijs2005/gophusers/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Register prompts for the profile and a password, creates the account and
// keeps the returned session.
func (a *App) Register(ctx context.Context) error {
	name, err := getSimpleText(a.reader, "Enter name", a.out)
	if err != nil {
		return err
	}
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	ageText, err := getSimpleText(a.reader, "Enter age (optional)", a.out)
	if err != nil {
		return err
	}
	age := 0
	if ageText != "" {
		if age, err = strconv.Atoi(ageText); err != nil {
			return fmt.Errorf("age must be a number")
		}
	}

	password, err := getPassword("Enter password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	s, err := a.api.Register(ctx, name, email, string(password), age)
	if err != nil {
		return err
	}
	if err := a.remember(ctx, s); err != nil {
		return err
	}

	fmt.Fprintln(a.out, "Registered as", s.User.Email)
	return nil
}

// Login prompts for credentials and keeps the returned session.
func (a *App) Login(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword("Enter password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	s, err := a.api.Login(ctx, email, string(password))
	if err != nil {
		return err
	}
	if err := a.remember(ctx, s); err != nil {
		return err
	}

	fmt.Fprintln(a.out, "Logged in as", s.User.Email)
	return nil
}

// Logout revokes the current token. A token the server no longer accepts is
// forgotten locally as well.
func (a *App) Logout(ctx context.Context) error {
	err := a.api.Logout(ctx)
	if err != nil && !errors.Is(err, api.ErrUnauthorized) {
		return err
	}
	if err := a.forget(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Logged out")
	return nil
}

// LogoutAll revokes every token of the account, on all devices.
func (a *App) LogoutAll(ctx context.Context) error {
	err := a.api.LogoutAll(ctx)
	if err != nil && !errors.Is(err, api.ErrUnauthorized) {
		return err
	}
	if err := a.forget(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Logged out everywhere")
	return nil
}

func (a *App) remember(ctx context.Context, s *api.Session) error {
	cur := session.Session{Token: s.Token, UserID: s.User.ID, Email: s.User.Email}
	if err := a.sessions.Save(ctx, cur); err != nil {
		return fmt.Errorf("error saving session: %w", err)
	}
	a.current = &cur
	return nil
}

func (a *App) forget(ctx context.Context) error {
	a.current = nil
	a.api.SetToken("")
	if err := a.sessions.Clear(ctx); err != nil {
		return fmt.Errorf("error clearing session: %w", err)
	}
	return nil
}
