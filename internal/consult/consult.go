package consult

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/wagiedev/agent-bridge-go/internal/errors"
	"github.com/wagiedev/agent-bridge-go/internal/tool"
)

const (
	// ToolName is the name of the lookup tool exposed to the remote peer.
	ToolName = "consultAPI"

	// DefaultEndpoint is the consultant chat endpoint.
	DefaultEndpoint = "http://localhost:8088/v1/consultant/chat_api/"

	// Mode is sent with every request.
	Mode = "book"

	defaultTimeout = 30 * time.Second

	// maxResponseSize bounds the response body read from the service.
	maxResponseSize = 4 * 1024 * 1024 // 4MB
)

// Request is the body posted to the consultant service.
type Request struct {
	Category string `json:"category"`
	Message  string `json:"message"`
	Mode     string `json:"mode"`
}

// Response is the body returned by the consultant service.
type Response struct {
	Response any `json:"response"`
}

// Config configures the consultant client.
type Config struct {
	// Endpoint is the full URL requests are posted to.
	Endpoint string

	// Token is sent as a bearer token. An empty token is still sent.
	Token string

	// HTTPClient is used for requests. If nil, a client with a 30s timeout is used.
	HTTPClient *http.Client

	Logger *slog.Logger
}

// Client calls the consultant service.
type Client struct {
	log        *slog.Logger
	endpoint   string
	token      string
	httpClient *http.Client
}

// NewClient creates a consultant client.
func NewClient(cfg Config) *Client {
	log := cfg.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}

	return &Client{
		log:        log.With("component", "consult"),
		endpoint:   endpoint,
		token:      cfg.Token,
		httpClient: httpClient,
	}
}

// Ask posts a question and returns the service's response value.
//
// A non-2xx status is reported as *errors.CollaboratorError with the
// status code; network and decoding failures are wrapped in one too.
func (c *Client) Ask(ctx context.Context, category, message string) (any, error) {
	body, err := json.Marshal(Request{Category: category, Message: message, Mode: Mode})
	if err != nil {
		return nil, fmt.Errorf("marshal consult request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, &errors.CollaboratorError{Endpoint: c.endpoint, Err: err}
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)

	c.log.Debug("Consulting", "category", category, "message_len", len(message))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &errors.CollaboratorError{Endpoint: c.endpoint, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseSize))

		c.log.Warn("Consultant request failed", "status", resp.StatusCode)

		return nil, &errors.CollaboratorError{Endpoint: c.endpoint, StatusCode: resp.StatusCode}
	}

	var out Response
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseSize)).Decode(&out); err != nil {
		return nil, &errors.CollaboratorError{
			Endpoint:   c.endpoint,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("decode consultant response: %w", err),
		}
	}

	return out.Response, nil
}

// Tool returns the consultAPI tool backed by c.
//
// Collaborator failures are returned as Failure results carrying the error
// message, so they never reach the protocol layer as errors.
func (c *Client) Tool() tool.Tool {
	return tool.New(
		ToolName,
		"Ask a question and get information based on a category.",
		tool.ObjectSchema(map[string]tool.Param{
			"category": {
				Type:        "string",
				Description: "Category of the question (e.g., History, Science, Technology, etc.)",
			},
			"message": {
				Type:        "string",
				Description: "The question or topic you want to learn about.",
			},
		}, "message"),
		func(ctx context.Context, args map[string]any) (tool.Result, error) {
			category, _ := args["category"].(string)
			message, _ := args["message"].(string)

			answer, err := c.Ask(ctx, category, message)
			if err != nil {
				return tool.Failure(err.Error()), nil
			}

			return tool.Success(map[string]any{"response": answer}), nil
		},
	)
}
