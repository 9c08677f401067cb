package roblox

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStubClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClientWithBase(server.Client(), server.URL, server.URL)
}

func TestGetIDByUsername(t *testing.T) {
	client := newStubClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/usernames/users", r.URL.Path)
		w.Write([]byte(`{"data":[{"id":156,"name":"Builderman"}]}`))
	})

	id, err := client.GetIDByUsername("Builderman")
	require.NoError(t, err)
	assert.Equal(t, int64(156), id)
}

func TestGetIDByUsernameNotFound(t *testing.T) {
	client := newStubClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":[]}`))
	})

	_, err := client.GetIDByUsername("NoSuchUser")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestGetIDByUsernameServerError(t *testing.T) {
	client := newStubClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := client.GetIDByUsername("Builderman")
	assert.Error(t, err)
}

func TestGetUsernameDegrades(t *testing.T) {
	client := newStubClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/v1/users/156" {
			w.Write([]byte(`{"name":"Builderman"}`))
			return
		}
		w.WriteHeader(http.StatusNotFound)
	})

	assert.Equal(t, "Builderman", client.GetUsername(156))
	assert.Equal(t, "Unknown User", client.GetUsername(157))
}

func TestGetAvatarURL(t *testing.T) {
	client := newStubClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/users/avatar-headshot", r.URL.Path)
		assert.Equal(t, "156", r.URL.Query().Get("userIds"))
		w.Write([]byte(`{"data":[{"imageUrl":"https://cdn.example.com/headshot.png"}]}`))
	})

	assert.Equal(t, "https://cdn.example.com/headshot.png", client.GetAvatarURL(156))
}

func TestGetAvatarURLDegrades(t *testing.T) {
	client := newStubClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	assert.Equal(t, "", client.GetAvatarURL(156))
}
