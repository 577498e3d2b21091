package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

const (
	shadertoyAPIURL = "https://www.shadertoy.com/api/v1"
	shadertoyRawURL = "https://www.shadertoy.com/shadertoy"
)

// ErrUnsupportedShader is returned for shaders that need more than one
// full-screen pass or any input channel.
var ErrUnsupportedShader = errors.New("unsupported shader")

// --- Structs for Shadertoy API Response ---

type ShadertoyResponse struct {
	Shader *Shader `json:"Shader"`
	Error  string  `json:"Error,omitempty"`
}

type Shader struct {
	Info       ShaderInfo   `json:"info"`
	RenderPass []RenderPass `json:"renderpass"`
}

type ShaderInfo struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Username string `json:"username"`
}

type RenderPass struct {
	Inputs []json.RawMessage `json:"inputs"`
	Code   string            `json:"code"`
	Name   string            `json:"name"`
	Type   string            `json:"type"`
}

// Client fetches shaders from Shadertoy. The public API needs a key and only
// serves shaders published as public+api; anything else falls back to the
// endpoint the website itself uses.
type Client struct {
	APIKey   string
	APIURL   string
	RawURL   string
	CacheDir string // optional; fetched shaders are stored as <id>.json
	HTTP     *http.Client
}

// NewClient returns a client for the live site using the SHADERTOY_KEY
// environment variable when apiKey is empty.
func NewClient(apiKey, cacheDir string) *Client {
	if apiKey == "" {
		apiKey = os.Getenv("SHADERTOY_KEY")
	}
	return &Client{
		APIKey:   apiKey,
		APIURL:   shadertoyAPIURL,
		RawURL:   shadertoyRawURL,
		CacheDir: cacheDir,
		HTTP:     http.DefaultClient,
	}
}

// ShaderID accepts a bare ID or a shadertoy.com/view/<id> URL.
func ShaderID(idOrURL string) string {
	return filepath.Base(strings.TrimSuffix(idOrURL, "/"))
}

// Fetch returns the shader, reading and filling the cache when enabled.
func (c *Client) Fetch(ctx context.Context, idOrURL string) (*Shader, error) {
	id := ShaderID(idOrURL)
	if s, ok := c.cached(id); ok {
		return s, nil
	}

	var s *Shader
	var err error
	if c.APIKey != "" {
		s, err = c.fetchAPI(ctx, id)
		if err != nil {
			log.Printf("Warning: Shadertoy API failed for %s: %v (is it public+api?)", id, err)
		}
	}
	if s == nil {
		s, err = c.fetchRaw(ctx, id)
		if err != nil {
			return nil, err
		}
	}
	c.store(id, s)
	return s, nil
}

func (c *Client) fetchAPI(ctx context.Context, id string) (*Shader, error) {
	apiURL := fmt.Sprintf("%s/shaders/%s?key=%s", c.APIURL, url.PathEscape(id), url.QueryEscape(c.APIKey))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	body, err := c.do(req)
	if err != nil {
		return nil, err
	}
	var resp ShadertoyResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode shader JSON: %w", err)
	}
	if resp.Error != "" {
		return nil, errors.New(resp.Error)
	}
	if resp.Shader == nil {
		return nil, fmt.Errorf("invalid JSON response: 'Shader' key is missing")
	}
	return resp.Shader, nil
}

// The raw endpoint takes a form value s={"shaders":["<id>"]} and answers with an array.
func (c *Client) fetchRaw(ctx context.Context, id string) (*Shader, error) {
	form := url.Values{}
	form.Set("s", fmt.Sprintf(`{"shaders":[%q]}`, id))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.RawURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Origin", "https://www.shadertoy.com")
	req.Header.Set("Referer", "https://www.shadertoy.com/browse")

	body, err := c.do(req)
	if err != nil {
		return nil, err
	}
	var shaders []Shader
	if err := json.Unmarshal(body, &shaders); err != nil {
		return nil, fmt.Errorf("failed to decode raw shader JSON: %w", err)
	}
	if len(shaders) == 0 {
		return nil, fmt.Errorf("raw shader response is empty for %s", id)
	}
	return &shaders[0], nil
}

func (c *Client) do(req *http.Request) ([]byte, error) {
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request to shadertoy failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("bad response status: %s", resp.Status)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	return body, nil
}

func (c *Client) cachePath(id string) string {
	return filepath.Join(c.CacheDir, id+".json")
}

func (c *Client) cached(id string) (*Shader, bool) {
	if c.CacheDir == "" {
		return nil, false
	}
	data, err := os.ReadFile(c.cachePath(id))
	if err != nil {
		return nil, false
	}
	var s Shader
	if err := json.Unmarshal(data, &s); err != nil {
		log.Printf("Warning: ignoring corrupt cache entry %s: %v", c.cachePath(id), err)
		return nil, false
	}
	return &s, true
}

func (c *Client) store(id string, s *Shader) {
	if c.CacheDir == "" {
		return
	}
	data, err := json.Marshal(s)
	if err == nil {
		if err = os.MkdirAll(c.CacheDir, 0o755); err == nil {
			err = os.WriteFile(c.cachePath(id), data, 0o644)
		}
	}
	if err != nil {
		log.Printf("Warning: failed to cache shader %s: %v", id, err)
	}
}

// ImageSource returns the code for a single-pass shader: the common pass,
// if any, followed by the image pass.
func (s *Shader) ImageSource() (string, error) {
	var image, common string
	var haveImage bool
	for _, pass := range s.RenderPass {
		if len(pass.Inputs) > 0 {
			return "", fmt.Errorf("%w: pass %q reads input channels", ErrUnsupportedShader, pass.Name)
		}
		switch pass.Type {
		case "image":
			image, haveImage = pass.Code, true
		case "common":
			common = pass.Code
		default:
			return "", fmt.Errorf("%w: %s pass %q", ErrUnsupportedShader, pass.Type, pass.Name)
		}
	}
	if !haveImage {
		return "", fmt.Errorf("%w: no image pass", ErrUnsupportedShader)
	}
	if common == "" {
		return image, nil
	}
	return common + "\n" + image, nil
}

// Title formats the shader name the way the site does.
func (s *Shader) Title() string {
	return fmt.Sprintf(`"%s" by %s`, s.Info.Name, s.Info.Username)
}
