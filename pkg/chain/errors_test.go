package chain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsUserRejected(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil", err: nil, want: false},
		{name: "sentinel", err: ErrUserRejected, want: true},
		{name: "wrapped sentinel", err: fmt.Errorf("sign tx: %w", ErrUserRejected), want: true},
		{name: "wallet message", err: errors.New("MetaMask Tx Signature: User rejected transaction"), want: true},
		{name: "other", err: errors.New("insufficient funds"), want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsUserRejected(tt.err))
		})
	}
}
