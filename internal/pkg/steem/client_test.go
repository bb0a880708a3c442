package steem

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"go.uber.org/zap"
)

const testHeadBlockID = "0000303901020304000000000000000000000000"

// fakeNode answers the condenser-API calls SubmitPost makes.
func fakeNode(t *testing.T, accountExists bool) http.HandlerFunc {
	t.Helper()
	return func(w http.ResponseWriter, r *http.Request) {
		var req rpcRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode rpc request: %v", err)
			return
		}

		var result interface{}
		switch req.Method {
		case "condenser_api.get_accounts":
			if accountExists {
				result = []map[string]string{{"name": "alice"}}
			} else {
				result = []map[string]string{}
			}
		case "condenser_api.get_dynamic_global_properties":
			result = map[string]interface{}{
				"head_block_number": 12345,
				"head_block_id":     testHeadBlockID,
				"time":              "2024-05-01T12:00:00",
			}
		case "condenser_api.broadcast_transaction_synchronous":
			result = map[string]interface{}{"id": "abc123", "block_num": 42}
		default:
			t.Errorf("unexpected method %s", req.Method)
			return
		}

		json.NewEncoder(w).Encode(map[string]interface{}{"jsonrpc": "2.0", "id": req.ID, "result": result})
	}
}

func submitRequest() *SubmitRequest {
	return &SubmitRequest{
		Author:       "alice",
		Permlink:     "hello-world-1714564800-abc123",
		Title:        "Hello World",
		Body:         "content",
		Tags:         []string{"steemit"},
		JSONMetadata: `{"tags":["steemit"],"app":"steem-gate/1.0","format":"markdown"}`,
	}
}

func TestSubmitPost(t *testing.T) {
	node := httptest.NewServer(fakeNode(t, true))
	defer node.Close()

	client, err := New([]string{node.URL}, testWIF, zap.NewNop())
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	receipt, err := client.SubmitPost(context.Background(), submitRequest())
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if receipt.ID != "abc123" || receipt.BlockNum != 42 {
		t.Fatalf("unexpected receipt: %+v", receipt)
	}
}

func TestSubmitPostFailsOverToNextNode(t *testing.T) {
	var badHits atomic.Int32
	bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		badHits.Add(1)
		http.Error(w, "node down", http.StatusServiceUnavailable)
	}))
	defer bad.Close()

	good := httptest.NewServer(fakeNode(t, true))
	defer good.Close()

	client, err := New([]string{bad.URL, good.URL}, testWIF, zap.NewNop())
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	receipt, err := client.SubmitPost(context.Background(), submitRequest())
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if receipt.ID != "abc123" {
		t.Fatalf("unexpected receipt: %+v", receipt)
	}
	if badHits.Load() < 2 {
		t.Fatalf("expected at least one retry against the failing node, got %d hits", badHits.Load())
	}
}

func TestSubmitPostAllNodesFailed(t *testing.T) {
	dead := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	dead.Close() // connection refused from now on

	client, err := New([]string{dead.URL}, testWIF, zap.NewNop())
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	_, err = client.SubmitPost(context.Background(), submitRequest())
	if !errors.Is(err, ErrAllNodesFailed) {
		t.Fatalf("expected ErrAllNodesFailed, got %v", err)
	}
}

func TestSubmitPostAccountNotFound(t *testing.T) {
	node := httptest.NewServer(fakeNode(t, false))
	defer node.Close()

	client, err := New([]string{node.URL}, testWIF, zap.NewNop())
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	_, err = client.SubmitPost(context.Background(), submitRequest())
	if !errors.Is(err, ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}
	if !strings.Contains(err.Error(), "@alice") {
		t.Fatalf("expected author in error, got %q", err.Error())
	}
}

func TestRPCErrorIsNotRetried(t *testing.T) {
	var hits atomic.Int32
	node := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"jsonrpc": "2.0", "id": 1,
			"error": map[string]interface{}{"code": -32000, "message": "missing posting authority"},
		})
	}))
	defer node.Close()

	var unreached atomic.Int32
	spare := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		unreached.Add(1)
	}))
	defer spare.Close()

	client, err := New([]string{node.URL, spare.URL}, testWIF, zap.NewNop())
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	_, err = client.SubmitPost(context.Background(), submitRequest())
	if err == nil || !strings.Contains(err.Error(), "missing posting authority") {
		t.Fatalf("expected rpc error, got %v", err)
	}
	if hits.Load() != 1 {
		t.Fatalf("rpc error should not be retried, got %d hits", hits.Load())
	}
	if unreached.Load() != 0 {
		t.Fatalf("second node should not be consulted, got %d hits", unreached.Load())
	}
}

func TestNewRejectsBadKeyAndEmptyNodes(t *testing.T) {
	if _, err := New(nil, testWIF, zap.NewNop()); err == nil {
		t.Fatalf("expected error for empty node list")
	}
	if _, err := New([]string{"https://api.steemit.com"}, "garbage", zap.NewNop()); err == nil {
		t.Fatalf("expected error for bad posting key")
	}
}
