package rtc

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
)

const (
	// ConnectPath is appended to the signaling base URL for the offer exchange.
	ConnectPath = "/api/rtc-connect"

	sdpContentType = "application/sdp"

	// maxAnswerSize bounds the answer body read from the relay.
	maxAnswerSize = 1024 * 1024 // 1MB
)

// SignalingClient exchanges a local session description for the remote one.
type SignalingClient struct {
	log        *slog.Logger
	endpoint   string
	httpClient *http.Client
}

// NewSignalingClient creates a client posting offers to baseURL + ConnectPath.
func NewSignalingClient(log *slog.Logger, baseURL string, httpClient *http.Client) *SignalingClient {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &SignalingClient{
		log:        log.With("component", "signaling"),
		endpoint:   strings.TrimRight(baseURL, "/") + ConnectPath,
		httpClient: httpClient,
	}
}

// Endpoint returns the URL offers are posted to.
func (c *SignalingClient) Endpoint() string {
	return c.endpoint
}

// Exchange posts the offer SDP and returns the answer SDP.
func (c *SignalingClient) Exchange(ctx context.Context, offer string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewBufferString(offer))
	if err != nil {
		return "", fmt.Errorf("build signaling request: %w", err)
	}

	req.Header.Set("Content-Type", sdpContentType)

	c.log.Debug("Posting offer", "endpoint", c.endpoint, "offer_len", len(offer))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("post offer: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxAnswerSize))
	if err != nil {
		return "", fmt.Errorf("read answer: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("signaling request failed with status: %d: %s",
			resp.StatusCode, strings.TrimSpace(string(body)))
	}

	answer := string(body)
	if strings.TrimSpace(answer) == "" {
		return "", fmt.Errorf("signaling returned an empty answer")
	}

	c.log.Debug("Received answer", "answer_len", len(answer))

	return answer, nil
}
