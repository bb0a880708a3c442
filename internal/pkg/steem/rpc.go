package steem

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"
)

const attemptsPerNode = 2

type rpcRequest struct {
	JSONRPC string      `json:"jsonrpc"`
	Method  string      `json:"method"`
	Params  interface{} `json:"params"`
	ID      int         `json:"id"`
}

type rpcError struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

func (e *rpcError) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *rpcError       `json:"error"`
}

// call walks the node list in order, giving each node attemptsPerNode tries
// on transport failure. An RPC-level error returns immediately: the node
// answered, so retrying elsewhere would not change the outcome.
func (c *Client) call(ctx context.Context, method string, params interface{}, out interface{}) error {
	payload, err := json.Marshal(rpcRequest{JSONRPC: "2.0", Method: method, Params: params, ID: 1})
	if err != nil {
		return err
	}

	var lastErr error
	for _, node := range c.nodes {
		for attempt := 1; attempt <= attemptsPerNode; attempt++ {
			result, err := c.post(ctx, node, payload)
			if err == nil {
				if out == nil {
					return nil
				}
				return json.Unmarshal(result, out)
			}

			var rpcErr *rpcError
			if errors.As(err, &rpcErr) {
				return err
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}

			lastErr = err
			c.logger.Warn("node call failed",
				zap.String("node", node),
				zap.String("method", method),
				zap.Int("attempt", attempt),
				zap.Error(err),
			)
		}
	}
	return fmt.Errorf("%w: %v", ErrAllNodesFailed, lastErr)
}

func (c *Client) post(ctx context.Context, node string, payload []byte) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, node, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("node %s returned %d: %s", node, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var rpcResp rpcResponse
	if err := json.NewDecoder(resp.Body).Decode(&rpcResp); err != nil {
		return nil, fmt.Errorf("decode response from %s: %w", node, err)
	}
	if rpcResp.Error != nil {
		return nil, rpcResp.Error
	}
	return rpcResp.Result, nil
}
