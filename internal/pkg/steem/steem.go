// Package steem implements a minimal condenser-API client for broadcasting
// signed content-creation transactions, failing over across a fixed list of
// public API nodes.
package steem

import (
	"context"
	"errors"
)

// Broadcaster is the narrow capability the HTTP layer depends on. Handlers
// are tested against a fake implementation; the real one is Client.
type Broadcaster interface {
	SubmitPost(ctx context.Context, req *SubmitRequest) (*Receipt, error)
}

// Beneficiary receives a share of the post rewards. Weight is in basis
// points of the total reward (10000 = 100%).
type Beneficiary struct {
	Account string `json:"account"`
	Weight  uint16 `json:"weight"`
}

// SubmitRequest carries a fully normalized post ready for broadcast.
type SubmitRequest struct {
	Author        string
	Permlink      string
	Title         string
	Body          string
	Tags          []string
	JSONMetadata  string
	Community     string
	SelfVote      bool
	Beneficiaries []Beneficiary
}

// Receipt reports a successful broadcast.
type Receipt struct {
	ID       string
	BlockNum uint32
}

// Sentinel errors surfaced to the handler layer.
var (
	// ErrAccountNotFound means the configured author does not exist on chain.
	ErrAccountNotFound = errors.New("account does not exist")
	// ErrAllNodesFailed means every node failed at the transport level.
	ErrAllNodesFailed = errors.New("all nodes failed")
)
