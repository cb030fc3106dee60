package orchestrators

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseInt(t *testing.T) {
	tests := []struct {
		input string
		want  int64
	}{
		{input: "100", want: 100},
		{input: "12345", want: 12345},
		{input: "  42", want: 42},
		{input: "-7", want: -7},
		{input: "+8", want: 8},
		{input: "100m", want: 100},
		{input: "3.9", want: 3},
		{input: "abc", want: 0},
		{input: "", want: 0},
		{input: "-", want: 0},
		{input: "m100", want: 0},
		{input: "99999999999999999999", want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseInt(tt.input))
		})
	}
}
