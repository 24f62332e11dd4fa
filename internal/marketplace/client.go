// Package marketplace talks to the job-marketplace REST API. Every resource
// is served by one generic client parameterized by its base path and the
// collection key its bulk-sequence endpoint expects.
package marketplace

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"github.com/madhava-poojari/jobs-admin-console/internal/logger"
	"github.com/madhava-poojari/jobs-admin-console/internal/models"
)

const maxBodyBytes = 8 << 20

type Config struct {
	BaseURL string
	Token   string
	Timeout time.Duration
	// HTTPClient is the transport used underneath the bearer token. Nil
	// means http.DefaultClient.
	HTTPClient *http.Client
}

type Client struct {
	baseURL string
	http    *http.Client
	log     *logger.Logger
}

func New(cfg Config, log *logger.Logger) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		return nil, errors.New("marketplace base url is required")
	}
	if _, err := url.ParseRequestURI(base); err != nil {
		return nil, fmt.Errorf("marketplace base url: %w", err)
	}
	if log == nil {
		log = logger.Default()
	}

	hc := cfg.HTTPClient
	if cfg.Token != "" {
		ctx := context.Background()
		if hc != nil {
			ctx = context.WithValue(ctx, oauth2.HTTPClient, hc)
		}
		hc = oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{
			AccessToken: cfg.Token,
			TokenType:   "Bearer",
		}))
	} else if hc == nil {
		hc = &http.Client{}
	} else {
		// the timeout below must not leak into the caller's client
		cp := *hc
		hc = &cp
	}
	if cfg.Timeout > 0 {
		hc.Timeout = cfg.Timeout
	}

	return &Client{baseURL: base, http: hc, log: log.Named("marketplace")}, nil
}

type envelope struct {
	Success *bool           `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Meta    *models.Meta    `json:"meta"`
}

// do performs one call and decodes the {success, data, message, meta}
// envelope. out may be nil when the caller does not need data.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out interface{}) (*models.Meta, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return nil, fmt.Errorf("build %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Warnf("%s %s failed after %s: %v", method, path, time.Since(start), err)
		return nil, fmt.Errorf("marketplace %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read %s %s: %w", method, path, err)
	}
	c.log.Debugf("%s %s -> %d in %s", method, path, resp.StatusCode, time.Since(start))

	var env envelope
	if len(bytes.TrimSpace(raw)) > 0 {
		if err := json.Unmarshal(raw, &env); err != nil && resp.StatusCode < 300 {
			return nil, fmt.Errorf("decode %s %s: %w", method, path, err)
		}
	}

	if resp.StatusCode >= 300 || (env.Success != nil && !*env.Success) {
		return nil, &APIError{Status: resp.StatusCode, Message: env.Message, Method: method, Path: path}
	}

	if out != nil && len(env.Data) > 0 && string(env.Data) != "null" {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return nil, fmt.Errorf("decode %s %s data: %w", method, path, err)
		}
	}
	return env.Meta, nil
}

type translateReq struct {
	Text   string `json:"text"`
	Source string `json:"source"`
	Target string `json:"target"`
}

// Translate calls the marketplace translation proxy.
func (c *Client) Translate(ctx context.Context, text, source, target string) (string, error) {
	var out struct {
		TranslatedText string `json:"translated_text"`
	}
	if _, err := c.do(ctx, http.MethodPost, "/translate", nil, translateReq{Text: text, Source: source, Target: target}, &out); err != nil {
		return "", err
	}
	return out.TranslatedText, nil
}
