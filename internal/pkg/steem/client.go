package steem

import (
	"context"
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"go.uber.org/zap"
)

const (
	requestTimeout = 30 * time.Second
	expireAfter    = 30 * time.Second
	selfVoteWeight = 10000
)

// The Steem mainnet chain ID is 32 zero bytes.
var chainID = make([]byte, 32)

// Client broadcasts transactions through an ordered list of condenser-API
// nodes. Safe for concurrent use; the key and node list never change after
// construction.
type Client struct {
	nodes      []string
	key        *secp256k1.PrivateKey
	httpClient *http.Client
	logger     *zap.Logger
}

// New creates a Client from the node list and a WIF-encoded posting key.
func New(nodes []string, postingKeyWIF string, logger *zap.Logger) (*Client, error) {
	if len(nodes) == 0 {
		return nil, errors.New("no nodes configured")
	}
	key, err := decodeWIF(postingKeyWIF)
	if err != nil {
		return nil, fmt.Errorf("posting key: %w", err)
	}
	logger.Info("chain client ready",
		zap.String("public_key", publicKeyString(key)),
		zap.Int("nodes", len(nodes)),
	)
	return &Client{
		nodes:      append([]string(nil), nodes...),
		key:        key,
		httpClient: &http.Client{Timeout: requestTimeout},
		logger:     logger,
	}, nil
}

type globalProperties struct {
	HeadBlockNumber uint32 `json:"head_block_number"`
	HeadBlockID     string `json:"head_block_id"`
	Time            string `json:"time"`
}

// SubmitPost verifies the author exists, builds a comment transaction (plus
// comment_options for beneficiaries and a vote when self-voting), signs it
// canonically and broadcasts it synchronously.
func (c *Client) SubmitPost(ctx context.Context, req *SubmitRequest) (*Receipt, error) {
	if err := c.verifyAccount(ctx, req.Author); err != nil {
		return nil, err
	}

	var props globalProperties
	if err := c.call(ctx, "condenser_api.get_dynamic_global_properties", []interface{}{}, &props); err != nil {
		return nil, err
	}

	tx, err := buildTransaction(req, &props)
	if err != nil {
		return nil, err
	}

	signature, err := c.signCanonical(tx)
	if err != nil {
		return nil, err
	}

	var result struct {
		ID       string `json:"id"`
		BlockNum uint32 `json:"block_num"`
	}
	params := []interface{}{tx.condenserJSON([]string{signature})}
	if err := c.call(ctx, "condenser_api.broadcast_transaction_synchronous", params, &result); err != nil {
		return nil, err
	}

	return &Receipt{ID: result.ID, BlockNum: result.BlockNum}, nil
}

func (c *Client) verifyAccount(ctx context.Context, author string) error {
	var accounts []json.RawMessage
	if err := c.call(ctx, "condenser_api.get_accounts", []interface{}{[]string{author}}, &accounts); err != nil {
		return err
	}
	if len(accounts) == 0 {
		return fmt.Errorf("%w: @%s", ErrAccountNotFound, author)
	}
	return nil
}

func buildTransaction(req *SubmitRequest, props *globalProperties) (*transaction, error) {
	headID, err := hex.DecodeString(props.HeadBlockID)
	if err != nil || len(headID) < 8 {
		return nil, fmt.Errorf("malformed head_block_id %q", props.HeadBlockID)
	}
	headTime, err := time.Parse(chainTimeFormat, props.Time)
	if err != nil {
		return nil, fmt.Errorf("malformed chain time %q: %w", props.Time, err)
	}

	// A top-level post's parent_permlink is the community when posting into
	// one, otherwise the first tag.
	parentPermlink := req.Community
	if parentPermlink == "" && len(req.Tags) > 0 {
		parentPermlink = req.Tags[0]
	}

	tx := &transaction{
		RefBlockNum:    uint16(props.HeadBlockNumber & 0xFFFF),
		RefBlockPrefix: binary.LittleEndian.Uint32(headID[4:8]),
		Expiration:     headTime.Add(expireAfter),
	}

	tx.Operations = append(tx.Operations, &commentOperation{
		ParentPermlink: parentPermlink,
		Author:         req.Author,
		Permlink:       req.Permlink,
		Title:          req.Title,
		Body:           req.Body,
		JSONMetadata:   req.JSONMetadata,
	})
	if len(req.Beneficiaries) > 0 {
		tx.Operations = append(tx.Operations, newCommentOptions(req.Author, req.Permlink, req.Beneficiaries))
	}
	if req.SelfVote {
		tx.Operations = append(tx.Operations, &voteOperation{
			Voter:    req.Author,
			Author:   req.Author,
			Permlink: req.Permlink,
			Weight:   selfVoteWeight,
		})
	}
	return tx, nil
}

// signCanonical signs the transaction, bumping the expiry one second at a
// time until the deterministic signature satisfies the canonicality rule.
func (c *Client) signCanonical(tx *transaction) (string, error) {
	for i := 0; i < 100; i++ {
		sig := signDigest(c.key, tx.digest(chainID))
		if isCanonical(sig) {
			return hex.EncodeToString(sig), nil
		}
		tx.Expiration = tx.Expiration.Add(time.Second)
	}
	return "", errors.New("could not produce a canonical signature")
}
