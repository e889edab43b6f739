package stacks

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// ContractCallRequest is the payload of a wallet-mediated
// stx_callContract call.
type ContractCallRequest struct {
	Contract     string   `json:"contract"`
	FunctionName string   `json:"functionName"`
	FunctionArgs []string `json:"functionArgs"`
}

// WalletSession submits contract-call transactions over an
// established multi-chain wallet session. A user-side cancel in the
// wallet surfaces as an error here, not a distinct state.
type WalletSession interface {
	CallContract(ctx context.Context, req ContractCallRequest) (txID string, err error)
}

// RPCSession talks JSON-RPC to a wallet bridge endpoint using the
// generic stx_callContract method.
type RPCSession struct {
	endpoint   string
	httpClient *http.Client
	log        *zap.Logger
	seq        atomic.Int64
}

func NewRPCSession(endpoint string, log *zap.Logger) *RPCSession {
	return &RPCSession{
		endpoint: endpoint,
		httpClient: &http.Client{
			// Long timeout: the call blocks until the user signs or
			// rejects in the wallet UI.
			Timeout: 2 * time.Minute,
		},
		log: log,
	}
}

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      int64  `json:"id"`
	Method  string `json:"method"`
	Params  any    `json:"params"`
}

type rpcResponse struct {
	Result *struct {
		TxID string `json:"txid"`
	} `json:"result"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (s *RPCSession) CallContract(ctx context.Context, call ContractCallRequest) (string, error) {
	if call.FunctionArgs == nil {
		call.FunctionArgs = []string{}
	}
	body, err := json.Marshal(rpcRequest{
		JSONRPC: "2.0",
		ID:      s.seq.Add(1),
		Method:  "stx_callContract",
		Params:  call,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("wallet session unavailable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("wallet bridge returned %d: %s", resp.StatusCode, string(b))
	}

	var out rpcResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}
	if out.Error != nil {
		return "", fmt.Errorf("wallet rejected call: %s", out.Error.Message)
	}
	if out.Result == nil || out.Result.TxID == "" {
		return "", fmt.Errorf("wallet returned no transaction id")
	}
	return out.Result.TxID, nil
}
