package chain

import (
	"errors"
	"strings"
)

var (
	// ErrUserRejected is returned when the wallet owner declines to sign.
	ErrUserRejected = errors.New("user rejected the request")
	// ErrProofRejected is returned when the contract refuses a decryption proof.
	ErrProofRejected = errors.New("decryption proof rejected")
	// ErrNotFound is returned for an unknown event id.
	ErrNotFound = errors.New("event not found")
	// ErrUnavailable wraps transport failures talking to the chain or relayer.
	ErrUnavailable = errors.New("service unavailable")
)

// IsUserRejected reports whether err is a signature rejection. Wallets
// that don't wrap ErrUserRejected are matched on their message.
func IsUserRejected(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrUserRejected) {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "user rejected")
}
