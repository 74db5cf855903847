// Package gmopay implements the GMO Payment Gateway LinkType Plus (hash
// type) integration: checkout URL generation and result notification
// verification.
//
// Flow:
//  1. payment parameter JSON -> Base64 (alpha)
//  2. alpha + ShopPass -> SHA-256 (gamma)
//  3. alpha.gamma -> checkout URL
package gmopay

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
)

// EncodeBase64 returns standard Base64 with padding, no URL-safe
// substitution and no line wrapping, as the gateway's parser expects.
func EncodeBase64(b []byte) string {
	return base64.StdEncoding.EncodeToString(b)
}

// SHA256Hex returns the lowercase hex SHA-256 digest of b.
func SHA256Hex(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}
