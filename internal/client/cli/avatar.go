package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

func (a *App) UploadAvatar(ctx context.Context, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := a.api.UploadAvatar(ctx, filepath.Base(path), f); err != nil {
		return a.checkSession(ctx, err)
	}
	fmt.Fprintln(a.out, "Avatar uploaded")
	return nil
}

func (a *App) DeleteAvatar(ctx context.Context) error {
	if err := a.api.DeleteAvatar(ctx); err != nil {
		return a.checkSession(ctx, err)
	}
	fmt.Fprintln(a.out, "Avatar removed")
	return nil
}

// GetAvatar saves userID's avatar to path. An empty userID means the
// logged in user.
func (a *App) GetAvatar(ctx context.Context, userID, path string) error {
	if userID == "" {
		if a.current == nil {
			return fmt.Errorf("give a user id or log in first")
		}
		userID = a.current.UserID
	}

	data, err := a.api.Avatar(ctx, userID)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Saved %d bytes to %s\n", len(data), path)
	return nil
}
