// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
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

// captured records what the test server saw.
type captured struct {
	method      string
	path        string
	contentType string
	auth        string
	requestID   string
	body        string
	form        map[string]string
	files       map[string]string
}

func newServer(t *testing.T, status int, reply string) (*httptest.Server, *captured) {
	t.Helper()
	got := &captured{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got.method = r.Method
		got.path = r.URL.Path
		got.contentType = r.Header.Get("Content-Type")
		got.auth = r.Header.Get("Authorization")
		got.requestID = r.Header.Get("X-Request-ID")

		if strings.HasPrefix(got.contentType, "multipart/form-data") {
			require.NoError(t, r.ParseMultipartForm(1<<20))
			got.form = map[string]string{}
			for k, v := range r.MultipartForm.Value {
				got.form[k] = v[0]
			}
			got.files = map[string]string{}
			for k, fh := range r.MultipartForm.File {
				f, err := fh[0].Open()
				require.NoError(t, err)
				data, _ := io.ReadAll(f)
				f.Close()
				got.files[k] = string(data)
			}
		} else {
			data, _ := io.ReadAll(r.Body)
			got.body = string(data)
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		io.WriteString(w, reply)
	}))
	t.Cleanup(srv.Close)
	return srv, got
}

// =============================================================================
// BODY ENCODING
// =============================================================================

func TestDo_FormDataIsMultipart(t *testing.T) {
	srv, got := newServer(t, http.StatusOK, `{}`)
	c := NewClient(srv.URL, nil)

	payload := NewFormData().Set("username", "alice").AddFile("avatar", "a.png", []byte{0x89, 'P', 'N', 'G'})
	_, err := c.Post(context.Background(), "upload", payload)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(got.contentType, "multipart/form-data; boundary="))
	assert.Equal(t, "alice", got.form["username"])
	assert.Equal(t, "\x89PNG", got.files["avatar"])
}

func TestDo_BytesAreMultipart(t *testing.T) {
	srv, got := newServer(t, http.StatusOK, `{}`)
	_, err := NewClient(srv.URL, nil).Post(context.Background(), "upload", []byte("raw"))
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(got.contentType, "multipart/form-data"))
	assert.Equal(t, "raw", got.files["file"])
}

func TestDo_StringIsURLEncoded(t *testing.T) {
	srv, got := newServer(t, http.StatusOK, `{}`)
	_, err := NewClient(srv.URL, nil).Post(context.Background(), "login", "username=alice&password=pw")
	require.NoError(t, err)

	assert.Equal(t, ContentTypeForm, got.contentType)
	assert.Equal(t, "username=alice&password=pw", got.body)
}

func TestDo_ObjectIsJSON(t *testing.T) {
	srv, got := newServer(t, http.StatusOK, `{}`)
	_, err := NewClient(srv.URL, nil).Post(context.Background(), "admin/assign-role",
		map[string]string{"username": "bob", "role": "security"})
	require.NoError(t, err)

	assert.Equal(t, ContentTypeJSON, got.contentType)
	assert.JSONEq(t, `{"username":"bob","role":"security"}`, got.body)
}

func TestDo_NilBodyKeepsJSONContentType(t *testing.T) {
	srv, got := newServer(t, http.StatusOK, `[]`)
	_, err := NewClient(srv.URL, nil).Get(context.Background(), "admin/users")
	require.NoError(t, err)

	assert.Equal(t, http.MethodGet, got.method)
	assert.Equal(t, ContentTypeJSON, got.contentType)
	assert.Empty(t, got.body)
}

// =============================================================================
// HEADERS AND PATHS
// =============================================================================

func TestDo_BearerOnlyWithToken(t *testing.T) {
	srv, got := newServer(t, http.StatusOK, `{}`)

	_, err := NewClient(srv.URL, StaticToken("t1")).Get(context.Background(), "user/profile")
	require.NoError(t, err)
	assert.Equal(t, "Bearer t1", got.auth)

	_, err = NewClient(srv.URL, StaticToken("")).Get(context.Background(), "user/profile")
	require.NoError(t, err)
	assert.Empty(t, got.auth)

	_, err = NewClient(srv.URL, nil).Get(context.Background(), "user/profile")
	require.NoError(t, err)
	assert.Empty(t, got.auth)
}

func TestDo_RequestIDs(t *testing.T) {
	srv, got := newServer(t, http.StatusOK, `{}`)
	c := NewClient(srv.URL, nil).WithRequestIDs(true)
	_, err := c.Get(context.Background(), "logs")
	require.NoError(t, err)
	assert.Len(t, got.requestID, 36)
}

func TestURL_JoinsWithOneSlash(t *testing.T) {
	tests := []struct {
		base, path, want string
	}{
		{"http://h/api", "login", "http://h/api/login"},
		{"http://h/api/", "login", "http://h/api/login"},
		{"http://h/api", "/user/create-mfa-pin", "http://h/api/user/create-mfa-pin"},
		{"http://h/api//", "//logs", "http://h/api/logs"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NewClient(tt.base, nil).URL(tt.path))
	}
}

func TestDo_LeadingSlashPathStaysUnderBase(t *testing.T) {
	srv, got := newServer(t, http.StatusOK, `{}`)
	_, err := NewClient(srv.URL+"/api", nil).Post(context.Background(), "/user/update-passwrod", map[string]string{})
	require.NoError(t, err)
	assert.Equal(t, "/api/user/update-passwrod", got.path)
}

// =============================================================================
// ERROR CLASSIFICATION
// =============================================================================

func TestDo_ServerRejected(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		reply   string
		message string
	}{
		{"error field", 400, `{"error":"Username taken"}`, "Username taken"},
		{"message field", 403, `{"message":"Forbidden role"}`, "Forbidden role"},
		{"detail field", 401, `{"detail":"Invalid credentials"}`, "Invalid credentials"},
		{"plain text", 500, `boom`, "boom"},
		{"empty body", 404, ``, "Not Found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _ := newServer(t, tt.status, tt.reply)
			_, err := NewClient(srv.URL, nil).Get(context.Background(), "x")

			reqErr, ok := AsRequestError(err)
			require.True(t, ok)
			assert.Equal(t, ServerRejected, reqErr.Kind)
			assert.Equal(t, tt.status, reqErr.Status)
			assert.Equal(t, tt.message, reqErr.Error())
			assert.Equal(t, tt.reply, string(reqErr.Payload))
		})
	}
}

func TestDo_NoResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := NewClient(url, nil).Get(context.Background(), "x")
	reqErr, ok := AsRequestError(err)
	require.True(t, ok)
	assert.Equal(t, NoResponse, reqErr.Kind)
	assert.Equal(t, MsgNoResponse, reqErr.Error())
	assert.NotNil(t, reqErr.Unwrap())
}

func TestDo_TimeoutIsNoResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, nil).WithTimeout(50 * time.Millisecond)
	_, err := c.Get(context.Background(), "x")
	assert.Equal(t, NoResponse, KindOf(err))
}

func TestDo_SetupFailed(t *testing.T) {
	t.Run("bad url", func(t *testing.T) {
		_, err := NewClient("http://[::1", nil).Get(context.Background(), "x")
		assert.Equal(t, RequestSetupFailed, KindOf(err))
		assert.Equal(t, MsgSetupFailed, err.Error())
	})

	t.Run("unencodable body", func(t *testing.T) {
		srv, _ := newServer(t, http.StatusOK, `{}`)
		_, err := NewClient(srv.URL, nil).Post(context.Background(), "x", map[string]interface{}{"ch": make(chan int)})
		assert.Equal(t, RequestSetupFailed, KindOf(err))
	})

	t.Run("limiter refuses cancelled context", func(t *testing.T) {
		srv, _ := newServer(t, http.StatusOK, `{}`)
		c := NewClient(srv.URL, nil).WithRateLimit(0.001)
		_, err := c.Get(context.Background(), "x")
		require.NoError(t, err)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err = c.Get(ctx, "x")
		assert.Equal(t, RequestSetupFailed, KindOf(err))
	})
}

func TestIsUnauthorized(t *testing.T) {
	srv, _ := newServer(t, http.StatusUnauthorized, `{"detail":"expired"}`)
	_, err := NewClient(srv.URL, StaticToken("old")).Get(context.Background(), "admin/users")
	assert.True(t, IsUnauthorized(err))
	assert.Equal(t, http.StatusUnauthorized, StatusOf(err))

	assert.False(t, IsUnauthorized(errors.New("plain")))
	assert.False(t, IsUnauthorized(noResponse(nil)))
}

func TestResponse_Decode(t *testing.T) {
	srv, _ := newServer(t, http.StatusOK, `{"message":"User created successfully","id":7}`)
	resp, err := NewClient(srv.URL, nil).Post(context.Background(), "admin/create-user", map[string]string{})
	require.NoError(t, err)

	var out struct {
		Message string `json:"message"`
		ID      int    `json:"id"`
	}
	require.NoError(t, resp.Decode(&out))
	assert.Equal(t, 7, out.ID)

	assert.Error(t, (&Response{}).Decode(&out))
}
