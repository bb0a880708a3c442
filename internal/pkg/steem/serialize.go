package steem

import (
	"bytes"
	"crypto/sha256"
	"encoding/binary"
	"time"
)

// Operation IDs in the chain protocol.
const (
	opVote           = 0
	opComment        = 1
	opCommentOptions = 19
)

const chainTimeFormat = "2006-01-02T15:04:05"

// encoder accumulates the canonical binary form of a transaction, which is
// what actually gets signed. The JSON sent to the node is a separate,
// human-readable projection of the same data.
type encoder struct {
	buf bytes.Buffer
}

func (e *encoder) writeVarint(v uint64) {
	var tmp [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(tmp[:], v)
	e.buf.Write(tmp[:n])
}

func (e *encoder) writeString(s string) {
	e.writeVarint(uint64(len(s)))
	e.buf.WriteString(s)
}

func (e *encoder) writeUint16(v uint16) {
	var tmp [2]byte
	binary.LittleEndian.PutUint16(tmp[:], v)
	e.buf.Write(tmp[:])
}

func (e *encoder) writeUint32(v uint32) {
	var tmp [4]byte
	binary.LittleEndian.PutUint32(tmp[:], v)
	e.buf.Write(tmp[:])
}

func (e *encoder) writeInt16(v int16) {
	e.writeUint16(uint16(v))
}

func (e *encoder) writeInt64(v int64) {
	var tmp [8]byte
	binary.LittleEndian.PutUint64(tmp[:], uint64(v))
	e.buf.Write(tmp[:])
}

func (e *encoder) writeBool(b bool) {
	if b {
		e.buf.WriteByte(1)
		return
	}
	e.buf.WriteByte(0)
}

// writeAsset encodes amount, precision and the symbol name padded to seven
// bytes with NULs.
func (e *encoder) writeAsset(amount int64, precision uint8, symbol string) {
	e.writeInt64(amount)
	e.buf.WriteByte(precision)
	var sym [7]byte
	copy(sym[:], symbol)
	e.buf.Write(sym[:])
}

// operation is one entry of a transaction, able to render both its binary
// signing form and its condenser-API name.
type operation interface {
	kind() string
	serialize(e *encoder)
}

type commentOperation struct {
	ParentAuthor   string `json:"parent_author"`
	ParentPermlink string `json:"parent_permlink"`
	Author         string `json:"author"`
	Permlink       string `json:"permlink"`
	Title          string `json:"title"`
	Body           string `json:"body"`
	JSONMetadata   string `json:"json_metadata"`
}

func (o *commentOperation) kind() string { return "comment" }

func (o *commentOperation) serialize(e *encoder) {
	e.writeVarint(opComment)
	e.writeString(o.ParentAuthor)
	e.writeString(o.ParentPermlink)
	e.writeString(o.Author)
	e.writeString(o.Permlink)
	e.writeString(o.Title)
	e.writeString(o.Body)
	e.writeString(o.JSONMetadata)
}

type voteOperation struct {
	Voter    string `json:"voter"`
	Author   string `json:"author"`
	Permlink string `json:"permlink"`
	Weight   int16  `json:"weight"`
}

func (o *voteOperation) kind() string { return "vote" }

func (o *voteOperation) serialize(e *encoder) {
	e.writeVarint(opVote)
	e.writeString(o.Voter)
	e.writeString(o.Author)
	e.writeString(o.Permlink)
	e.writeInt16(o.Weight)
}

type commentOptionsOperation struct {
	Author               string        `json:"author"`
	Permlink             string        `json:"permlink"`
	MaxAcceptedPayout    string        `json:"max_accepted_payout"`
	PercentSteemDollars  uint16        `json:"percent_steem_dollars"`
	AllowVotes           bool          `json:"allow_votes"`
	AllowCurationRewards bool          `json:"allow_curation_rewards"`
	Extensions           []interface{} `json:"extensions"`

	beneficiaries []Beneficiary
}

func newCommentOptions(author, permlink string, beneficiaries []Beneficiary) *commentOptionsOperation {
	return &commentOptionsOperation{
		Author:               author,
		Permlink:             permlink,
		MaxAcceptedPayout:    "1000000.000 SBD",
		PercentSteemDollars:  10000,
		AllowVotes:           true,
		AllowCurationRewards: true,
		Extensions: []interface{}{
			[]interface{}{0, map[string]interface{}{"beneficiaries": beneficiaries}},
		},
		beneficiaries: beneficiaries,
	}
}

func (o *commentOptionsOperation) kind() string { return "comment_options" }

func (o *commentOptionsOperation) serialize(e *encoder) {
	e.writeVarint(opCommentOptions)
	e.writeString(o.Author)
	e.writeString(o.Permlink)
	e.writeAsset(1000000000, 3, "SBD")
	e.writeUint16(o.PercentSteemDollars)
	e.writeBool(o.AllowVotes)
	e.writeBool(o.AllowCurationRewards)

	e.writeVarint(uint64(len(o.Extensions)))
	// extension 0: comment_payout_beneficiaries
	e.writeVarint(0)
	e.writeVarint(uint64(len(o.beneficiaries)))
	for _, b := range o.beneficiaries {
		e.writeString(b.Account)
		e.writeUint16(b.Weight)
	}
}

// transaction is an unsigned chain transaction.
type transaction struct {
	RefBlockNum    uint16
	RefBlockPrefix uint32
	Expiration     time.Time
	Operations     []operation
}

// digest returns sha256(chainID || serialized transaction), the value that
// gets signed.
func (t *transaction) digest(chainID []byte) []byte {
	e := &encoder{}
	e.writeUint16(t.RefBlockNum)
	e.writeUint32(t.RefBlockPrefix)
	e.writeUint32(uint32(t.Expiration.UTC().Unix()))
	e.writeVarint(uint64(len(t.Operations)))
	for _, op := range t.Operations {
		op.serialize(e)
	}
	e.writeVarint(0) // transaction extensions

	h := sha256.New()
	h.Write(chainID)
	h.Write(e.buf.Bytes())
	return h.Sum(nil)
}

// condenserJSON renders the signed transaction in the wire shape expected
// by condenser_api.broadcast_transaction_synchronous.
func (t *transaction) condenserJSON(signatures []string) map[string]interface{} {
	ops := make([]interface{}, 0, len(t.Operations))
	for _, op := range t.Operations {
		ops = append(ops, []interface{}{op.kind(), op})
	}
	return map[string]interface{}{
		"ref_block_num":    t.RefBlockNum,
		"ref_block_prefix": t.RefBlockPrefix,
		"expiration":       t.Expiration.UTC().Format(chainTimeFormat),
		"operations":       ops,
		"extensions":       []interface{}{},
		"signatures":       signatures,
	}
}
