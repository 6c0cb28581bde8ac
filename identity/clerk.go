package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/learnify/backend/models"
)

// Client talks to the identity provider's backend API.
type Client struct {
	baseURL   string
	secretKey string
	http      *http.Client
}

// NewClient uses a short timeout so a slow provider cannot stall the request guard.
func NewClient(baseURL, secretKey string) *Client {
	return &Client{
		baseURL:   baseURL,
		secretKey: secretKey,
		http:      &http.Client{Timeout: 10 * time.Second},
	}
}

// User is the subset of the provider's user object the service reads.
type User struct {
	ID             string   `json:"id"`
	FirstName      string   `json:"first_name"`
	LastName       string   `json:"last_name"`
	UnsafeMetadata Metadata `json:"unsafe_metadata"`
	PublicMetadata Metadata `json:"public_metadata"`
}

func (u *User) Role() (models.Role, error) {
	return RoleClaim(u.UnsafeMetadata, u.PublicMetadata)
}

// Metadata is the user-writable metadata that carries the role claim.
type Metadata struct {
	Role string `json:"role,omitempty"`
	Bio  string `json:"bio,omitempty"`
}

// ProfileUpdate is written during profile completion.
type ProfileUpdate struct {
	FirstName string
	LastName  string
	Role      models.Role
	Bio       string
}

func (c *Client) GetUser(ctx context.Context, userID string) (*User, error) {
	var u User
	if err := c.do(ctx, http.MethodGet, "/v1/users/"+url.PathEscape(userID), nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *Client) UpdateUser(ctx context.Context, userID string, upd ProfileUpdate) error {
	body := map[string]interface{}{
		"first_name": upd.FirstName,
		"last_name":  upd.LastName,
		"unsafe_metadata": Metadata{
			Role: string(upd.Role),
			Bio:  upd.Bio,
		},
	}
	return c.do(ctx, http.MethodPatch, "/v1/users/"+url.PathEscape(userID), body, nil)
}

func (c *Client) do(ctx context.Context, method, path string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return models.ErrUserNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("identity provider %s %s: status %d: %s", method, path, resp.StatusCode, bytes.TrimSpace(snippet))
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
