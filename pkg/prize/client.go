package prize

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/GTDGit/prize_address/internal/models"
	"github.com/GTDGit/prize_address/internal/utils"
)

const (
	// DefaultURL is the production prize-fulfillment endpoint.
	DefaultURL = "https://b-api.thaideal.co/api/prize"

	// GenericErrorMessage is reported when the API rejects a submission
	// without an error message of its own.
	GenericErrorMessage = "An error occurred"

	// TransportErrorMessage is reported when no usable response was received.
	TransportErrorMessage = "An error occurred. Please try again."

	// SignatureHeader carries the hex HMAC-SHA256 of the request body.
	SignatureHeader = "X-Signature"
)

// ErrTransport wraps network and response-decoding failures.
var ErrTransport = errors.New("PRIZE_TRANSPORT_ERROR")

// APIError is a non-200 answer from the prize API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("prize api returned %d: %s", e.StatusCode, e.Message)
}

// Result is the decoded body of a successful submission.
type Result struct {
	StatusCode int
	Body       map[string]any
}

// Client posts address payloads to the prize API. It performs exactly one
// request per Submit and never retries.
type Client struct {
	httpClient *http.Client
	url        string
	secret     string
	debug      bool
}

// NewClient constructs a new prize API client with sane defaults.
func NewClient(url string) *Client {
	if url == "" {
		url = DefaultURL
	}
	return &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		url:        url,
		debug:      os.Getenv("ENV") == "development",
	}
}

// WithSigningSecret makes the client sign every request body.
func (c *Client) WithSigningSecret(secret string) *Client {
	c.secret = secret
	return c
}

// Submit sends payload as JSON. Only HTTP 200 with a JSON body is a success.
// Other statuses yield *APIError carrying the body's "error" field or
// GenericErrorMessage; network or decode failures wrap ErrTransport.
func (c *Client) Submit(ctx context.Context, payload *models.PrizePayload) (*Result, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	// Debug logging for development
	if c.debug {
		log.Debug().
			Str("endpoint", c.url).
			RawJSON("request", body).
			Msg("[PRIZE] Outgoing request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.secret != "" {
		req.Header.Set(SignatureHeader, utils.GenerateSignature(body, c.secret))
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: request failed: %v", ErrTransport, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response: %v", ErrTransport, err)
	}

	if c.debug {
		log.Debug().
			Int("status_code", resp.StatusCode).
			Str("response", string(respBody)).
			Msg("[PRIZE] Incoming response")
	}

	// The body is decoded before the status is looked at: an undecodable
	// body is a transport failure whatever the status.
	var decoded any
	if err := json.Unmarshal(respBody, &decoded); err != nil {
		return nil, fmt.Errorf("%w: failed to decode response: %v", ErrTransport, err)
	}
	obj, _ := decoded.(map[string]any)

	if resp.StatusCode != http.StatusOK {
		msg, _ := obj["error"].(string)
		if msg == "" {
			msg = GenericErrorMessage
		}
		return nil, &APIError{StatusCode: resp.StatusCode, Message: msg}
	}

	return &Result{StatusCode: resp.StatusCode, Body: obj}, nil
}
