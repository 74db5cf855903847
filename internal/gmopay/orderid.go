package gmopay

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
)

const orderIDPrefix = "ENC-"

// NewOrderID mints a gateway order identifier: the fixed prefix followed by
// 16 uppercase hex characters from 8 bytes of a cryptographically secure
// source (gateway constraint: letters, digits and hyphen only). The 64 bits
// of entropy are advisory; global uniqueness is enforced by the unique
// constraint on payment_orders.gateway_order_id.
func NewOrderID() (string, error) {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return "", fmt.Errorf("failed to read random bytes for order id: %w", err)
	}
	return orderIDPrefix + strings.ToUpper(hex.EncodeToString(buf[:])), nil
}
