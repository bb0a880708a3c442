package steem

import (
	"bytes"
	"crypto/sha256"
	"errors"
	"fmt"

	"github.com/decred/base58"
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	secpecdsa "github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
	"golang.org/x/crypto/ripemd160" //nolint:staticcheck // chain key format requires it
)

const (
	wifVersion      = 0x80
	publicKeyPrefix = "STM"
)

// decodeWIF decodes a base58check-encoded private key in wallet import
// format, the form Steem posting keys are distributed in.
func decodeWIF(wif string) (*secp256k1.PrivateKey, error) {
	raw := base58.Decode(wif)
	if len(raw) != 1+32+4 {
		return nil, errors.New("malformed WIF key")
	}

	payload, checksum := raw[:33], raw[33:]
	if payload[0] != wifVersion {
		return nil, fmt.Errorf("unexpected WIF version byte 0x%02x", payload[0])
	}

	first := sha256.Sum256(payload)
	second := sha256.Sum256(first[:])
	if !bytes.Equal(second[:4], checksum) {
		return nil, errors.New("WIF checksum mismatch")
	}

	return secp256k1.PrivKeyFromBytes(payload[1:]), nil
}

// publicKeyString renders the key's public half in the chain's address
// format: the STM prefix followed by the base58-encoded compressed point
// with a 4-byte RIPEMD-160 checksum.
func publicKeyString(key *secp256k1.PrivateKey) string {
	pub := key.PubKey().SerializeCompressed()
	h := ripemd160.New()
	h.Write(pub)
	checksum := h.Sum(nil)[:4]
	return publicKeyPrefix + base58.Encode(append(pub, checksum...))
}

// signDigest produces a 65-byte compact recoverable signature over the
// transaction digest, with the compressed-key recovery byte first.
func signDigest(key *secp256k1.PrivateKey, digest []byte) []byte {
	return secpecdsa.SignCompact(key, digest, true)
}

// isCanonical reports whether a compact signature satisfies the chain's
// canonicality rule: neither scalar may have its high bit set nor start
// with a zero byte followed by a clear high bit.
func isCanonical(sig []byte) bool {
	return sig[1]&0x80 == 0 &&
		!(sig[1] == 0 && sig[2]&0x80 == 0) &&
		sig[33]&0x80 == 0 &&
		!(sig[33] == 0 && sig[34]&0x80 == 0)
}
