package feed

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"meal-scheduler/internal/config"

	"github.com/golang-jwt/jwt/v5"
)

// Post represents a single recipe post from the content API.
type Post struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	HTML      string `json:"html"`
	UpdatedAt string `json:"updated_at"`
}

// PostsResponse is the top-level structure of the content API response.
type PostsResponse struct {
	Posts []Post `json:"posts"`
}

// Client fetches recipe posts from a Ghost-compatible CMS.
type Client interface {
	FetchRecipes() ([]Post, error)
}

type feedClient struct {
	httpClient *http.Client
	config     *config.Config
}

// NewClient creates a new recipe feed client.
func NewClient(cfg *config.Config) Client {
	return &feedClient{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		config:     cfg,
	}
}

// FetchRecipes fetches all recipe posts. Public feeds are read through the
// content API key; private feeds fall back to a short-lived admin JWT.
func (c *feedClient) FetchRecipes() ([]Post, error) {
	var req *http.Request
	var err error

	if c.config.FeedContentKey != "" {
		url := fmt.Sprintf("%s/ghost/api/v3/content/posts/?key=%s", c.config.FeedURL, c.config.FeedContentKey)
		req, err = http.NewRequest("GET", url, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
	} else {
		token, tokenErr := c.createAdminToken()
		if tokenErr != nil {
			return nil, fmt.Errorf("failed to create admin token: %w", tokenErr)
		}

		url := fmt.Sprintf("%s/ghost/api/v3/admin/posts/", c.config.FeedURL)
		req, err = http.NewRequest("GET", url, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Authorization", "Ghost "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("feed api error: status %d", resp.StatusCode)
	}

	var postsResponse PostsResponse
	if err := json.NewDecoder(resp.Body).Decode(&postsResponse); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return postsResponse.Posts, nil
}

// createAdminToken generates a short-lived JWT for the admin API.
func (c *feedClient) createAdminToken() (string, error) {
	keyParts := strings.Split(c.config.FeedAdminKey, ":")
	if len(keyParts) != 2 {
		return "", fmt.Errorf("invalid admin key format: expected id:secret")
	}

	id := keyParts[0]
	secret, err := hex.DecodeString(keyParts[1])
	if err != nil {
		return "", fmt.Errorf("failed to decode secret hex: %w", err)
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"iat": time.Now().Unix(),
		"exp": time.Now().Add(5 * time.Minute).Unix(),
		"aud": "/v3/admin/",
	})
	token.Header["kid"] = id

	return token.SignedString(secret)
}
