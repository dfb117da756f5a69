package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/dgallion1/outliner/internal/presenter"
)

// Client delivers highlight and focus requests to the extension bridge,
// which forwards them to the content script of the given tab.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Request is the body posted to the bridge.
type Request struct {
	TabID   string `json:"tab_id"`
	Ordinal int    `json:"ordinal"`
	Label   string `json:"label,omitempty"`
}

// Highlight asks the page to draw the highlight overlay around a heading.
func (c *Client) Highlight(ctx context.Context, tabID string, h presenter.Highlight) error {
	return c.post(ctx, tabID, "highlight", Request{TabID: tabID, Ordinal: h.Ordinal, Label: h.Label})
}

// Focus asks the page to scroll to and focus a heading.
func (c *Client) Focus(ctx context.Context, tabID string, h presenter.Highlight) error {
	return c.post(ctx, tabID, "focus", Request{TabID: tabID, Ordinal: h.Ordinal, Label: h.Label})
}

func (c *Client) post(ctx context.Context, tabID, action string, req Request) error {
	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", action, err)
	}
	u := c.baseURL + "/tabs/" + url.PathEscape(tabID) + "/" + action
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("%s: %w", action, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusAccepted && resp.StatusCode != http.StatusNoContent {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("%s %s/%d: status %d: %s", action, tabID, req.Ordinal, resp.StatusCode, string(respBody))
	}
	return nil
}

// Close releases idle connections.
func (c *Client) Close() {
	c.httpClient.CloseIdleConnections()
}

// Tab binds a client to one tab so it satisfies presenter.Highlighter.
type Tab struct {
	Client *Client
	TabID  string
	Focus  bool // send focus instead of highlight
}

func (t Tab) Highlight(ctx context.Context, h presenter.Highlight) error {
	if t.Focus {
		return t.Client.Focus(ctx, t.TabID, h)
	}
	return t.Client.Highlight(ctx, t.TabID, h)
}

// LogHighlighter is used when no bridge is configured.
type LogHighlighter struct {
	Log   *slog.Logger
	TabID string
}

func (l LogHighlighter) Highlight(_ context.Context, h presenter.Highlight) error {
	l.Log.Info("highlight requested without bridge", "tab_id", l.TabID, "ordinal", h.Ordinal, "label", h.Label)
	return nil
}
