package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/username/dealsync/src/logger"
	"github.com/username/dealsync/src/models"
	"golang.org/x/time/rate"
)

// ErrNoItems signals that the fetch succeeded but the board holds no items.
// Callers treat this as a no-records run, not a failure.
var ErrNoItems = errors.New("no items returned for board")

const itemsPageLimit = 100

// Client is the record store boundary: one batch read, one per-item write.
type Client interface {
	FetchItems() ([]models.Item, error)
	UpdateItem(itemID string, columnValues map[string]json.RawMessage) error
}

// Options configures the Monday client. MaxAttempts and BaseDelay drive the
// retry loop; Sleep is injectable so tests run without real delays.
type Options struct {
	APIURL            string
	APIKey            string
	BoardID           string
	MaxAttempts       int
	BaseDelay         time.Duration
	RequestsPerSecond float64
	Burst             int
	Timeout           time.Duration
	Sleep             func(time.Duration)
}

type mondayClientImpl struct {
	apiURL      string
	apiKey      string
	boardID     string
	maxAttempts int
	baseDelay   time.Duration
	httpClient  *http.Client
	limiter     *rate.Limiter
	sleep       func(time.Duration)
}

// NewMondayClient creates a client for Monday's GraphQL API.
func NewMondayClient(opts Options) Client {
	if opts.MaxAttempts < 1 {
		opts.MaxAttempts = 1
	}
	if opts.BaseDelay <= 0 {
		opts.BaseDelay = 1 * time.Second
	}
	if opts.RequestsPerSecond <= 0 {
		opts.RequestsPerSecond = 5
	}
	if opts.Burst < 1 {
		opts.Burst = 1
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	sleep := opts.Sleep
	if sleep == nil {
		sleep = time.Sleep
	}
	return &mondayClientImpl{
		apiURL:      opts.APIURL,
		apiKey:      opts.APIKey,
		boardID:     opts.BoardID,
		maxAttempts: opts.MaxAttempts,
		baseDelay:   opts.BaseDelay,
		httpClient:  &http.Client{Timeout: opts.Timeout},
		limiter:     rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), opts.Burst),
		sleep:       sleep,
	}
}

type graphqlRequest struct {
	Query string `json:"query"`
}

type graphqlError struct {
	Message string `json:"message"`
}

type itemsResponse struct {
	Data struct {
		Boards []struct {
			ItemsPage struct {
				Items []models.Item `json:"items"`
			} `json:"items_page"`
		} `json:"boards"`
	} `json:"data"`
	Errors []graphqlError `json:"errors"`
}

type mutationResponse struct {
	Errors []graphqlError `json:"errors"`
}

// FetchItems runs the batch items query for the configured board.
func (c *mondayClientImpl) FetchItems() ([]models.Item, error) {
	query := fmt.Sprintf(`query {
  boards(ids: %s) {
    items_page(limit: %d) {
      items {
        id
        name
        column_values {
          id
          text
          value
        }
      }
    }
  }
}`, c.boardID, itemsPageLimit)

	body, err := c.postWithRetries(query)
	if err != nil {
		return nil, fmt.Errorf("fetching items for board %s: %w", c.boardID, err)
	}

	var parsed itemsResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("decoding items response for board %s: %w", c.boardID, err)
	}
	if len(parsed.Errors) > 0 {
		return nil, fmt.Errorf("items query for board %s returned an error: %s", c.boardID, parsed.Errors[0].Message)
	}
	if len(parsed.Data.Boards) == 0 {
		return nil, ErrNoItems
	}
	items := parsed.Data.Boards[0].ItemsPage.Items
	if len(items) == 0 {
		return nil, ErrNoItems
	}
	return items, nil
}

// UpdateItem writes one item's output columns in a single mutation. A value
// of {} clears the column; anything else is the column's typed payload.
func (c *mondayClientImpl) UpdateItem(itemID string, columnValues map[string]json.RawMessage) error {
	cvJSON, err := json.Marshal(columnValues)
	if err != nil {
		return fmt.Errorf("encoding column values for item %s: %w", itemID, err)
	}
	// The API takes column_values as a JSON string argument, so the encoded
	// map is embedded as an escaped string literal.
	quoted, err := json.Marshal(string(cvJSON))
	if err != nil {
		return fmt.Errorf("quoting column values for item %s: %w", itemID, err)
	}

	mutation := fmt.Sprintf(`mutation {
  change_multiple_column_values(item_id: %s, board_id: %s, column_values: %s) {
    id
  }
}`, itemID, c.boardID, string(quoted))

	body, err := c.postWithRetries(mutation)
	if err != nil {
		return fmt.Errorf("updating item %s: %w", itemID, err)
	}

	var parsed mutationResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return fmt.Errorf("decoding update response for item %s: %w", itemID, err)
	}
	if len(parsed.Errors) > 0 {
		return fmt.Errorf("update for item %s returned an error: %s", itemID, parsed.Errors[0].Message)
	}
	return nil
}

// postWithRetries performs the POST, retrying transport and HTTP-status
// failures with a doubling delay until the attempt cap is reached.
func (c *mondayClientImpl) postWithRetries(query string) ([]byte, error) {
	delay := c.baseDelay
	var lastErr error
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		body, err := c.post(query)
		if err == nil {
			return body, nil
		}
		lastErr = err
		if attempt < c.maxAttempts {
			logger.L.Warn("Store request failed, retrying",
				"attempt", attempt,
				"maxAttempts", c.maxAttempts,
				"delay", delay.String(),
				"error", err)
			c.sleep(delay)
			delay *= 2
		}
	}
	return nil, fmt.Errorf("request failed after %d attempts: %w", c.maxAttempts, lastErr)
}

func (c *mondayClientImpl) post(query string) ([]byte, error) {
	if err := c.limiter.Wait(context.Background()); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	payload, err := json.Marshal(graphqlRequest{Query: query})
	if err != nil {
		return nil, fmt.Errorf("encoding request: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, c.apiURL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Authorization", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("posting to store API: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading store API response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("store API returned status %d: %s", resp.StatusCode, string(body))
	}
	return body, nil
}
