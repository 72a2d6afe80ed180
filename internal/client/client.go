package client

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/ndedov/go-stash-sync/internal/logger"
	"github.com/ndedov/go-stash-sync/internal/utils"
	"github.com/ndedov/go-stash-sync/models"
)

// Families addressable through the sync API. The server exposes one route
// per family.
const (
	FamilyNotes     = "notes"
	FamilyBookmarks = "bookmarks"
	FamilyFiles     = "files"
)

// SyncOutcome is the client-side view of one reconciliation round trip.
// Entity payloads stay raw because their concrete shape depends on the
// family; callers decode them into the model they expect.
type SyncOutcome struct {
	AppliedIDs         []string          `json:"applied_ids"`
	Entities           []json.RawMessage `json:"entities"`
	Conflicts          []json.RawMessage `json:"conflicts"`
	UpdatedEntities    []json.RawMessage `json:"updated_entities"`
	ServerUpdatedSince time.Time         `json:"server_updated_since"`
}

// RecentOutcome is the client-side view of a recent-activity listing.
type RecentOutcome struct {
	Entities []json.RawMessage `json:"entities"`
	Length   int               `json:"length"`
}

// SyncClient talks to the sync API over HTTP. It remembers the watermark
// returned by each family's last successful sync and sends it back on the
// next call, so every exchange after the first is a delta.
//
// SyncClient is safe for concurrent use.
type SyncClient struct {
	http    *utils.HTTPClient
	baseURL string

	mu         sync.Mutex
	token      string
	watermarks map[string]time.Time

	logger *logger.Logger
}

// NewSyncClient constructs a SyncClient for the API at baseURL.
func NewSyncClient(baseURL string, timeout time.Duration, log *logger.Logger) *SyncClient {
	httpClient := utils.NewHTTPClient()
	if timeout > 0 {
		httpClient.SetTimeout(timeout)
	}

	return &SyncClient{
		http:       httpClient,
		baseURL:    baseURL,
		watermarks: make(map[string]time.Time),
		logger:     log,
	}
}

// SetToken stores the bearer token attached to every subsequent request.
func (c *SyncClient) SetToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
}

// Watermark returns the stored watermark for the family and whether one
// exists yet. Before the first successful sync there is none and the server
// answers with a full resync.
func (c *SyncClient) Watermark(family string) (time.Time, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	mark, ok := c.watermarks[family]
	return mark, ok
}

// Sync submits the given operations for one family and returns the
// reconciliation outcome. A nil or empty ops slice is a pure pull: no edits
// are sent but the delta and a fresh watermark still come back.
func (c *SyncClient) Sync(ctx context.Context, family string, ops []models.Operation) (SyncOutcome, error) {
	c.mu.Lock()
	token := c.token
	var lastSync json.RawMessage
	if mark, ok := c.watermarks[family]; ok {
		lastSync = json.RawMessage(strconv.Quote(mark.Format(time.RFC3339Nano)))
	}
	c.mu.Unlock()

	request := models.SyncRequest{
		LastSync:   lastSync,
		Operations: ops,
	}
	if request.Operations == nil {
		request.Operations = []models.Operation{}
	}

	var outcome SyncOutcome
	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(token).
		SetHeader("Content-Type", "application/json").
		SetBody(request).
		SetResult(&outcome).
		Post(c.baseURL + "/api/sync/" + family)
	if err != nil {
		return SyncOutcome{}, fmt.Errorf("sync request for %q: %w", family, err)
	}
	if resp.IsError() {
		return SyncOutcome{}, fmt.Errorf("sync request for %q: server answered %s: %s", family, resp.Status(), resp.String())
	}

	c.mu.Lock()
	c.watermarks[family] = outcome.ServerUpdatedSince
	c.mu.Unlock()

	c.logger.Debug().
		Str("func", "SyncClient.Sync").
		Str("family", family).
		Int("operations", len(ops)).
		Int("delta", len(outcome.UpdatedEntities)).
		Msg("batch synchronized")

	return outcome, nil
}

// Recent fetches the server's recent-activity listing for one family.
func (c *SyncClient) Recent(ctx context.Context, family string) (RecentOutcome, error) {
	c.mu.Lock()
	token := c.token
	c.mu.Unlock()

	var outcome RecentOutcome
	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(token).
		SetResult(&outcome).
		Get(c.baseURL + "/api/recent/" + family)
	if err != nil {
		return RecentOutcome{}, fmt.Errorf("recent request for %q: %w", family, err)
	}
	if resp.IsError() {
		return RecentOutcome{}, fmt.Errorf("recent request for %q: server answered %s", family, resp.Status())
	}

	return outcome, nil
}

// ServerVersion fetches the server's version string.
func (c *SyncClient) ServerVersion(ctx context.Context) (string, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		Get(c.baseURL + "/api/version/")
	if err != nil {
		return "", fmt.Errorf("version request: %w", err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("version request: server answered %s", resp.Status())
	}

	return resp.String(), nil
}
