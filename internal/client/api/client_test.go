package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorded struct {
	method, path, auth, contentType string
	body                            []byte
}

func newServer(t *testing.T, handler func(w http.ResponseWriter, r *http.Request)) (*Client, *[]recorded) {
	t.Helper()
	var calls []recorded
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		calls = append(calls, recorded{r.Method, r.URL.Path, r.Header.Get("Authorization"), r.Header.Get("Content-Type"), body})
		handler(w, r)
	}))
	t.Cleanup(srv.Close)
	return New(srv.URL+"/api/", 2*time.Second), &calls
}

const sessionJSON = `{"user":{"id":"u1","name":"Alice","email":"alice@example.com","age":30,"createdAt":"2026-01-02T03:04:05Z","updatedAt":"2026-01-02T03:04:05Z"},"token":"tok-1"}`

func TestRegisterStoresToken(t *testing.T) {
	c, calls := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, sessionJSON)
	})

	s, err := c.Register(context.Background(), "Alice", "alice@example.com", "s3cret!!", 30)
	require.NoError(t, err)
	assert.Equal(t, "tok-1", s.Token)
	assert.Equal(t, "u1", s.User.ID)
	assert.Equal(t, 30, s.User.Age)
	assert.Equal(t, time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC), s.User.CreatedAt)
	assert.Equal(t, "tok-1", c.Token())

	require.Len(t, *calls, 1)
	got := (*calls)[0]
	assert.Equal(t, http.MethodPost, got.method)
	assert.Equal(t, "/api/users", got.path)
	assert.Empty(t, got.auth)
	assert.Equal(t, "application/json", got.contentType)
	assert.JSONEq(t, `{"name":"Alice","email":"alice@example.com","password":"s3cret!!","age":30}`, string(got.body))
}

func TestAuthenticatedCallsSendBearer(t *testing.T) {
	c, calls := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/users/login":
			_, _ = io.WriteString(w, sessionJSON)
		case "/api/users/me":
			_, _ = io.WriteString(w, `{"id":"u1","name":"Alicia","email":"alice@example.com","age":31}`)
		default:
			w.WriteHeader(http.StatusOK)
		}
	})
	ctx := context.Background()

	_, err := c.Login(ctx, "alice@example.com", "s3cret!!")
	require.NoError(t, err)

	u, err := c.Me(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Alicia", u.Name)

	u, err = c.Update(ctx, map[string]any{"name": "Alicia", "age": 31})
	require.NoError(t, err)
	assert.Equal(t, 31, u.Age)

	require.NoError(t, c.DeleteAvatar(ctx))
	require.NoError(t, c.LogoutAll(ctx))
	assert.Empty(t, c.Token())

	for _, call := range (*calls)[1:] {
		assert.Equal(t, "Bearer tok-1", call.auth, call.path)
	}
	assert.Equal(t, http.MethodPatch, (*calls)[2].method)
	assert.JSONEq(t, `{"name":"Alicia","age":31}`, string((*calls)[2].body))
	assert.Equal(t, "/api/users/logoutAll", (*calls)[4].path)
}

func TestWithoutTokenFailsLocally(t *testing.T) {
	c, calls := newServer(t, func(w http.ResponseWriter, r *http.Request) {})

	_, err := c.Me(context.Background())
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.Empty(t, *calls)
}

func TestErrorResponses(t *testing.T) {
	status := http.StatusBadRequest
	msg := "Unable to login"
	c, _ := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
	})
	ctx := context.Background()

	_, err := c.Login(ctx, "a@example.com", "nope")
	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Equal(t, "Unable to login", apiErr.Message)
	assert.False(t, errors.Is(err, ErrUnauthorized))
	assert.Empty(t, c.Token())

	status, msg = http.StatusUnauthorized, "Please authenticate."
	c.SetToken("stale")
	_, err = c.Me(ctx)
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.Equal(t, "Please authenticate. (401)", err.Error())
}

func TestLogoutKeepsTokenOnFailure(t *testing.T) {
	c, _ := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = io.WriteString(w, `{"error":"Internal server error"}`)
	})
	c.SetToken("tok-1")

	assert.Error(t, c.Logout(context.Background()))
	assert.Equal(t, "tok-1", c.Token())
}

func TestUploadAvatar(t *testing.T) {
	var field, filename, content, auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		mr, err := r.MultipartReader()
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		part, err := mr.NextPart()
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		field, filename = part.FormName(), part.FileName()
		b, _ := io.ReadAll(part)
		content = string(b)
	}))
	defer srv.Close()

	c := New(srv.URL, time.Second)
	c.SetToken("tok-1")

	require.NoError(t, c.UploadAvatar(context.Background(), "me.png", strings.NewReader("PNGDATA")))
	assert.Equal(t, "Bearer tok-1", auth)
	assert.Equal(t, "avatar", field)
	assert.Equal(t, "me.png", filename)
	assert.Equal(t, "PNGDATA", content)
}

func TestAvatar(t *testing.T) {
	c, calls := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/api/users/missing") {
			w.WriteHeader(http.StatusNotFound)
			_, _ = io.WriteString(w, `{"error":"Not found"}`)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write([]byte{0x89, 'P', 'N', 'G'})
	})

	data, err := c.Avatar(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, []byte{0x89, 'P', 'N', 'G'}, data)
	assert.Empty(t, (*calls)[0].auth)

	_, err = c.Avatar(context.Background(), "missing")
	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
}

func TestUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := New(url, time.Second)
	_, err := c.Login(context.Background(), "a@example.com", "x")
	assert.ErrorIs(t, err, ErrUnavailable)
}
