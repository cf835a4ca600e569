package identity

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
)

// User is the identity provider's view of an account. Admin is derived from
// Role by the session middleware, not returned by the provider.
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	Admin    bool   `json:"admin"`
}

type IdentityClient interface {
	GetSessionUser(ctx context.Context, accessToken string) (*User, error)
	SearchUsers(ctx context.Context, query string, limit int) ([]User, error)
}

type Client struct {
	baseURL  string
	apiToken string
	client   *http.Client
	cache    *cache.Cache
}

func NewClient(baseURL, apiToken string) *Client {
	client := &http.Client{
		Timeout: 10 * time.Second,
	}
	return &Client{
		baseURL:  strings.TrimSuffix(baseURL, "/"),
		apiToken: apiToken,
		client:   client,
		cache:    cache.New(1*time.Minute, 5*time.Minute),
	}
}

// GetSessionUser resolves a session access token to the user it belongs to.
// Lookups are cached briefly so every request does not round-trip to the
// identity provider.
func (c *Client) GetSessionUser(ctx context.Context, accessToken string) (*User, error) {
	cachedUser, found := c.cache.Get(accessToken)

	if found {
		return cachedUser.(*User), nil
	}

	sessionURL, err := c.getURL("v1", "sessions", "me")

	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, "GET", sessionURL, http.NoBody)

	if err != nil {
		return nil, fmt.Errorf("failed create new request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+accessToken)

	res, err := c.client.Do(req)

	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}

	defer res.Body.Close()

	bodyBytes, readErr := io.ReadAll(res.Body)

	if res.StatusCode != http.StatusOK {
		if readErr != nil {
			return nil, fmt.Errorf("request failed with status %d; also failed reading body: %w", res.StatusCode, readErr)
		}
		return nil, fmt.Errorf("request failed with status '%v' and body:\n%v", res.StatusCode, string(bodyBytes))
	}

	if readErr != nil {
		return nil, fmt.Errorf("failed to read body: %w", readErr)
	}

	var user = User{}
	err = json.Unmarshal(bodyBytes, &user)

	if err != nil {
		return nil, fmt.Errorf("failed reading body: %w", err)
	}

	c.cache.Set(accessToken, &user, cache.DefaultExpiration)

	return &user, nil
}

// SearchUsers looks up users by name prefix with the service API token.
func (c *Client) SearchUsers(ctx context.Context, query string, limit int) ([]User, error) {
	query = strings.TrimSpace(query)
	cachedUsers, found := c.cache.Get("search:" + query)

	if found {
		return cachedUsers.([]User), nil
	}

	searchURL, err := c.getURL("v1", "users", "search")

	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, "GET", searchURL, http.NoBody)

	if err != nil {
		return nil, fmt.Errorf("failed create new request: %w", err)
	}

	q := req.URL.Query()
	q.Add("query", query)
	q.Add("limit", strconv.Itoa(limit))
	req.URL.RawQuery = q.Encode()

	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiToken)

	res, err := c.client.Do(req)

	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}

	defer res.Body.Close()

	bodyBytes, readErr := io.ReadAll(res.Body)

	if res.StatusCode != http.StatusOK {
		if readErr != nil {
			return nil, fmt.Errorf("request failed with status %d; also failed reading body: %w", res.StatusCode, readErr)
		}
		return nil, fmt.Errorf("request failed with status '%v' and body:\n%v", res.StatusCode, string(bodyBytes))
	}

	if readErr != nil {
		return nil, fmt.Errorf("failed to read body: %w", readErr)
	}

	var users = []User{}
	err = json.Unmarshal(bodyBytes, &users)

	if err != nil {
		return nil, fmt.Errorf("failed reading body: %w", err)
	}

	c.cache.Set("search:"+query, users, cache.DefaultExpiration)

	return users, nil
}

func (c *Client) getURL(elem ...string) (string, error) {
	clientURL, err := url.JoinPath(c.baseURL, elem...)
	if err != nil {
		return "", fmt.Errorf("failed to create URL: %w", err)
	}

	return clientURL, nil
}
