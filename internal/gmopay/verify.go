package gmopay

import (
	"errors"
	"fmt"
)

var ErrVerificationFailed = errors.New("result notification hash verification failed")

// VerificationMode controls how result notification signatures are checked.
type VerificationMode string

const (
	// VerificationEnforced requires a configured result hash key and rejects
	// notifications whose hash does not match.
	VerificationEnforced VerificationMode = "enforced"
	// VerificationDevelopmentSkip accepts every notification without
	// checking. Development environments only.
	VerificationDevelopmentSkip VerificationMode = "dev_skip"
)

// Verifier recomputes the gateway's result hash for inbound notifications.
type Verifier struct {
	mode    VerificationMode
	hashKey string
}

// NewVerifier builds a Verifier. Enforced mode without a hash key is a
// configuration error: it would otherwise silently degrade to accepting
// unauthenticated notifications.
func NewVerifier(mode VerificationMode, hashKey string) (*Verifier, error) {
	switch mode {
	case VerificationEnforced:
		if hashKey == "" {
			return nil, fmt.Errorf("%w: result hash key required in enforced mode", ErrMissingConfig)
		}
	case VerificationDevelopmentSkip:
	default:
		return nil, fmt.Errorf("%w: unknown verification mode %q", ErrMissingConfig, mode)
	}
	return &Verifier{mode: mode, hashKey: hashKey}, nil
}

// Mode returns the configured verification mode.
func (v *Verifier) Mode() VerificationMode { return v.mode }

// Verify checks receivedHash against
// sha256hex(shopID + orderID + amount + hashKey). The amount is the raw
// string from the notification, not a re-rendered number. Comparison is a
// case-sensitive exact match on the hex string.
//
// In dev_skip mode every notification passes.
func (v *Verifier) Verify(orderID, amount, shopID, receivedHash string) bool {
	if v.mode == VerificationDevelopmentSkip {
		return true
	}
	expected := SHA256Hex([]byte(shopID + orderID + amount + v.hashKey))
	return expected == receivedHash
}
