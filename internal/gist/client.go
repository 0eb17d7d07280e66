// Package gist stores the year documents in a GitHub gist. The gist API is
// plain JSON over HTTP; the client retries transient failures and maps the
// interesting status codes to sentinel errors so callers can decide whether
// falling back to the local store makes sense.
package gist

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"time"

	"go.uber.org/zap"
)

const (
	// DefaultAPIEndpoint is the public GitHub API.
	DefaultAPIEndpoint = "https://api.github.com"

	// DocumentFilename is the gist file written by this client. Reads take
	// whatever file the gist holds, preferring this one.
	DocumentFilename = "holidays.json"

	defaultTimeout = 30 * time.Second
	defaultRetries = 3
)

// Sentinel errors for the failure modes callers distinguish.
var (
	ErrUnauthorized = errors.New("gist: token rejected")
	ErrNotFound     = errors.New("gist: not found")
	ErrRateLimited  = errors.New("gist: rate limited")
	ErrMalformed    = errors.New("gist: malformed document")
)

// Client talks to the gist API for a single gist.
type Client struct {
	baseURL    string
	token      string
	gistID     string
	httpClient *http.Client
	logger     *zap.Logger

	// authScheme is "Bearer" until a 401 proves the token needs the older
	// "token" scheme (classic personal access tokens on some deployments).
	authScheme string
}

// NewClient creates a gist client. baseURL may be empty for the public API.
func NewClient(baseURL, token, gistID string, logger *zap.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultAPIEndpoint
	}
	return &Client{
		baseURL: baseURL,
		token:   token,
		gistID:  gistID,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
		logger:     logger,
		authScheme: "Bearer",
	}
}

// GistID returns the gist this client reads and writes.
func (c *Client) GistID() string {
	return c.gistID
}

type gistFile struct {
	Filename  string `json:"filename"`
	Content   string `json:"content"`
	Truncated bool   `json:"truncated"`
	RawURL    string `json:"raw_url"`
}

type gistResponse struct {
	ID    string              `json:"id"`
	Files map[string]gistFile `json:"files"`
}

type userResponse struct {
	Login string `json:"login"`
}

// TestToken verifies the token by fetching the authenticated user and returns
// the login name.
func (c *Client) TestToken() (string, error) {
	var user userResponse
	if err := c.doRequest("GET", "/user", nil, &user); err != nil {
		return "", fmt.Errorf("token check failed: %w", err)
	}

	c.logger.Info("Token verified", zap.String("login", user.Login))
	return user.Login, nil
}

// ReadDocument fetches the gist and decodes its document. The document is
// read from the holidays file when present, otherwise from the first file in
// name order.
func (c *Client) ReadDocument() (*Document, error) {
	var resp gistResponse
	if err := c.doRequest("GET", "/gists/"+c.gistID, nil, &resp); err != nil {
		return nil, fmt.Errorf("failed to read gist: %w", err)
	}

	file, ok := pickDocumentFile(resp.Files)
	if !ok {
		c.logger.Warn("Gist has no files, treating as empty",
			zap.String("gist_id", c.gistID))
		return NewDocument(), nil
	}

	content := file.Content
	if file.Truncated {
		raw, err := c.fetchRaw(file.RawURL)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch truncated file %s: %w", file.Filename, err)
		}
		content = string(raw)
	}

	doc, err := ParseDocument([]byte(content))
	if err != nil {
		return nil, err
	}

	c.logger.Info("Gist document loaded",
		zap.String("gist_id", c.gistID),
		zap.String("file", file.Filename),
		zap.Int("years", len(doc.Years)))

	return doc, nil
}

// WriteDocument encodes the document and patches it into the gist.
func (c *Client) WriteDocument(doc *Document) error {
	content, err := doc.Encode()
	if err != nil {
		return fmt.Errorf("failed to encode document: %w", err)
	}

	req := map[string]interface{}{
		"files": map[string]interface{}{
			DocumentFilename: map[string]string{
				"content": string(content),
			},
		},
	}

	if err := c.doRequest("PATCH", "/gists/"+c.gistID, req, nil); err != nil {
		return fmt.Errorf("failed to write gist: %w", err)
	}

	c.logger.Info("Gist document saved",
		zap.String("gist_id", c.gistID),
		zap.Int("years", len(doc.Years)))

	return nil
}

// pickDocumentFile chooses the file to read the document from.
func pickDocumentFile(files map[string]gistFile) (gistFile, bool) {
	if len(files) == 0 {
		return gistFile{}, false
	}
	if file, ok := files[DocumentFilename]; ok {
		return file, true
	}
	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)
	return files[names[0]], true
}

// doRequest performs an HTTP request with retries. Authentication, not-found
// and rate-limit failures are final and returned immediately.
func (c *Client) doRequest(method, path string, body interface{}, result interface{}) error {
	var jsonData []byte
	if body != nil {
		var err error
		jsonData, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
	}

	url := c.baseURL + path

	var lastErr error
	for attempt := 1; attempt <= defaultRetries; attempt++ {
		var bodyReader io.Reader
		if jsonData != nil {
			bodyReader = bytes.NewReader(jsonData)
		}

		err := c.doRequestOnce(method, url, bodyReader, result)
		if err == nil {
			return nil
		}
		if errors.Is(err, ErrUnauthorized) || errors.Is(err, ErrNotFound) || errors.Is(err, ErrRateLimited) {
			return err
		}

		lastErr = err
		c.logger.Warn("Gist request failed, retrying",
			zap.Int("attempt", attempt),
			zap.Int("max_retries", defaultRetries),
			zap.Error(err))

		if attempt < defaultRetries {
			// Exponential backoff: 1s, 2s, 4s, ...
			time.Sleep(time.Second << (attempt - 1))
		}
	}

	return fmt.Errorf("request failed after %d attempts: %w", defaultRetries, lastErr)
}

// doRequestOnce performs a single HTTP request. A 401 under the Bearer scheme
// switches the client to the older "token" scheme and retries once, since
// classic tokens on some installations reject Bearer.
func (c *Client) doRequestOnce(method, url string, body io.Reader, result interface{}) error {
	status, respBody, err := c.send(method, url, body, c.authScheme)
	if err != nil {
		return err
	}

	if status == http.StatusUnauthorized && c.authScheme == "Bearer" {
		c.logger.Info("Bearer auth rejected, retrying with token scheme")
		status, respBody, err = c.send(method, url, body, "token")
		if err != nil {
			return err
		}
		if status < 300 {
			c.authScheme = "token"
		}
	}

	switch {
	case status == http.StatusUnauthorized:
		return ErrUnauthorized
	case status == http.StatusForbidden:
		// Rate-limited 403s were remapped to 429 in send. What remains is a
		// token without the gist scope.
		return ErrUnauthorized
	case status == http.StatusNotFound:
		return ErrNotFound
	case status == http.StatusTooManyRequests:
		return ErrRateLimited
	case status < 200 || status >= 300:
		return fmt.Errorf("API request failed with status %d: %s", status, string(respBody))
	}

	if result != nil {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("failed to parse response: %w", err)
		}
	}

	return nil
}

// send executes one request and returns the status and body.
func (c *Client) send(method, url string, body io.Reader, scheme string) (int, []byte, error) {
	if seeker, ok := body.(io.Seeker); ok {
		if _, err := seeker.Seek(0, io.SeekStart); err != nil {
			return 0, nil, fmt.Errorf("failed to rewind request body: %w", err)
		}
	}

	req, err := http.NewRequest(method, url, body)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to create request: %w", err)
	}

	if c.token != "" {
		req.Header.Set("Authorization", scheme+" "+c.token)
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode == http.StatusForbidden && resp.Header.Get("X-RateLimit-Remaining") == "0" {
		return http.StatusTooManyRequests, respBody, nil
	}

	return resp.StatusCode, respBody, nil
}

// fetchRaw downloads a raw file URL without decoding.
func (c *Client) fetchRaw(url string) ([]byte, error) {
	req, err := http.NewRequest("GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if c.token != "" {
		req.Header.Set("Authorization", c.authScheme+" "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("raw fetch failed with status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}
