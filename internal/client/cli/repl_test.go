package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"

	"github.com/dmitrijs2005/gophusers/internal/client/api"
)

type fakeExec struct {
	loggedIn bool
	calls    []string
	err      error
}

func (f *fakeExec) record(s string) error {
	f.calls = append(f.calls, s)
	return f.err
}

func (f *fakeExec) isLoggedIn() bool                   { return f.loggedIn }
func (f *fakeExec) Register(context.Context) error     { return f.record("register") }
func (f *fakeExec) Me(context.Context) error           { return f.record("me") }
func (f *fakeExec) Update(context.Context) error       { return f.record("update") }
func (f *fakeExec) DeleteAvatar(context.Context) error { return f.record("rmavatar") }
func (f *fakeExec) LogoutAll(context.Context) error    { return f.record("logoutall") }
func (f *fakeExec) Delete(context.Context) error       { return f.record("delete") }
func (f *fakeExec) Login(context.Context) error {
	f.loggedIn = true
	return f.record("login")
}
func (f *fakeExec) Logout(context.Context) error {
	f.loggedIn = false
	return f.record("logout")
}
func (f *fakeExec) UploadAvatar(_ context.Context, path string) error {
	return f.record("avatar " + path)
}
func (f *fakeExec) GetAvatar(_ context.Context, id, path string) error {
	return f.record(fmt.Sprintf("getavatar %q %s", id, path))
}

func TestRunREPL_Dispatch(t *testing.T) {
	input := strings.Join([]string{
		"help",
		"login",
		"",
		"me",
		"update",
		"avatar me.png",
		"avatar",
		"rmavatar",
		"getavatar out.png",
		"getavatar u1 out.png",
		"getavatar",
		"logoutall",
		"logout",
		"delete",
		"foobar",
		"exit",
		"me",
	}, "\n")

	exec := &fakeExec{}
	var out bytes.Buffer
	runREPL(context.Background(), exec, func() string { return "(status)" }, rdr(input), &out)

	want := []string{"login", "me", "update", "avatar me.png", "rmavatar", `getavatar "" out.png`, `getavatar "u1" out.png`, "logoutall", "logout", "delete"}
	if !reflect.DeepEqual(exec.calls, want) {
		t.Fatalf("calls = %v, want %v", exec.calls, want)
	}

	s := out.String()
	for _, frag := range []string{"gophusers (status)> ", "Available commands: register", "Usage: avatar", "Usage: getavatar", "Unknown command: foobar", "Bye!"} {
		if !strings.Contains(s, frag) {
			t.Fatalf("output missing %q:\n%s", frag, s)
		}
	}
}

func TestRunREPL_StopsOnEOF(t *testing.T) {
	exec := &fakeExec{}
	var out bytes.Buffer
	runREPL(context.Background(), exec, func() string { return "" }, rdr("me"), &out)

	if !reflect.DeepEqual(exec.calls, []string{"me"}) {
		t.Fatalf("calls = %v", exec.calls)
	}
}

func TestRunREPL_ReportsErrors(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{api.ErrUnauthorized, "Not logged in"},
		{fmt.Errorf("%w: dial tcp", api.ErrUnavailable), "Server unavailable"},
		{&api.Error{Status: 400, Message: "Invalid updates!"}, "Error: Invalid updates!"},
		{errors.New("age must be a number"), "Error: age must be a number"},
	}
	for _, tt := range tests {
		exec := &fakeExec{err: tt.err}
		var out bytes.Buffer
		runREPL(context.Background(), exec, func() string { return "" }, rdr("update\nexit\n"), &out)
		if !strings.Contains(out.String(), tt.want) {
			t.Fatalf("output %q does not contain %q", out.String(), tt.want)
		}
	}
}
