package stacks

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// CallReadClient performs unauthenticated read-only contract calls
// against a Stacks node's REST API.
type CallReadClient struct {
	baseURL    string
	httpClient *http.Client
	log        *zap.Logger
}

func NewCallReadClient(baseURL string, log *zap.Logger) *CallReadClient {
	return &CallReadClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		log: log,
	}
}

type callReadRequest struct {
	Sender    string   `json:"sender"`
	Arguments []string `json:"arguments"`
}

type callReadResponse struct {
	Okay   bool   `json:"okay"`
	Result string `json:"result"`
	Cause  string `json:"cause"`
}

// CallRead POSTs a read-only function call and returns the
// hex-encoded Clarity result. Arguments are pre-encoded hex values.
func (c *CallReadClient) CallRead(ctx context.Context, contractAddr, contractName, function, sender string, args []string) (string, error) {
	if args == nil {
		args = []string{}
	}
	body, err := json.Marshal(callReadRequest{Sender: sender, Arguments: args})
	if err != nil {
		return "", err
	}

	url := fmt.Sprintf("%s/v2/contracts/call-read/%s/%s/%s", c.baseURL, contractAddr, contractName, function)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("stacks node unavailable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("stacks node returned %d: %s", resp.StatusCode, string(b))
	}

	var out callReadResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}
	if !out.Okay {
		return "", fmt.Errorf("call-read %s failed: %s", function, out.Cause)
	}
	return out.Result, nil
}
