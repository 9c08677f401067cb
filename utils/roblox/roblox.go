// Package roblox resolves Roblox usernames, IDs and avatars through the
// public users/thumbnails APIs.
package roblox

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"

	"punishment-bot/utils"
)

const (
	usersBaseURL      = "https://users.roblox.com"
	thumbnailsBaseURL = "https://thumbnails.roblox.com"
)

// ErrUserNotFound is returned when no Roblox account matches a username.
var ErrUserNotFound = errors.New("roblox user not found")

// Client is the identity resolver over the Roblox web APIs.
type Client struct {
	http     *http.Client
	usersURL string
	thumbURL string
}

// NewClient builds a resolver on the shared HTTP pool.
func NewClient() *Client {
	return &Client{
		http:     utils.GlobalHTTPClient,
		usersURL: usersBaseURL,
		thumbURL: thumbnailsBaseURL,
	}
}

// NewClientWithBase is used by tests to point the resolver at a stub server.
func NewClientWithBase(httpClient *http.Client, usersURL, thumbURL string) *Client {
	return &Client{http: httpClient, usersURL: usersURL, thumbURL: thumbURL}
}

type usernameLookupRequest struct {
	Usernames []string `json:"usernames"`
}

type usernameLookupResponse struct {
	Data []struct {
		ID   int64  `json:"id"`
		Name string `json:"name"`
	} `json:"data"`
}

// GetIDByUsername resolves a username to a Roblox user ID. Transient API
// failures are indistinguishable from unknown users for the caller and are
// reported the same way.
func (c *Client) GetIDByUsername(username string) (int64, error) {
	body, err := json.Marshal(usernameLookupRequest{Usernames: []string{username}})
	if err != nil {
		return 0, err
	}

	resp, err := c.http.Post(c.usersURL+"/v1/usernames/users", "application/json", bytes.NewBuffer(body))
	if err != nil {
		return 0, fmt.Errorf("username lookup failed for %s: %w", username, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("username lookup for %s returned status %s", username, resp.Status)
	}

	var result usernameLookupResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return 0, fmt.Errorf("failed to decode username lookup for %s: %w", username, err)
	}
	if len(result.Data) == 0 {
		return 0, ErrUserNotFound
	}
	return result.Data[0].ID, nil
}

type userResponse struct {
	Name string `json:"name"`
}

// GetUsername resolves a user ID to a display name, degrading to
// "Unknown User" when the lookup fails.
func (c *Client) GetUsername(userID int64) string {
	resp, err := c.http.Get(fmt.Sprintf("%s/v1/users/%d", c.usersURL, userID))
	if err != nil {
		log.Printf("Error fetching Roblox username for %d: %v", userID, err)
		return "Unknown User"
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "Unknown User"
	}

	var result userResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil || result.Name == "" {
		return "Unknown User"
	}
	return result.Name
}

type thumbnailResponse struct {
	Data []struct {
		ImageURL string `json:"imageUrl"`
	} `json:"data"`
}

// GetAvatarURL returns a 150x150 headshot thumbnail URL, or "" when
// unavailable.
func (c *Client) GetAvatarURL(userID int64) string {
	url := fmt.Sprintf("%s/v1/users/avatar-headshot?userIds=%d&size=150x150&format=Png&isCircular=false", c.thumbURL, userID)
	resp, err := c.http.Get(url)
	if err != nil {
		log.Printf("Error fetching Roblox avatar for %d: %v", userID, err)
		return ""
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return ""
	}

	var result thumbnailResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil || len(result.Data) == 0 {
		return ""
	}
	return result.Data[0].ImageURL
}
