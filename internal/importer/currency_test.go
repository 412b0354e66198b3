package importer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseCurrency(t *testing.T) {
	tests := []struct {
		name  string
		input any
		want  float64
	}{
		{name: "plain float passes through", input: 1234.5, want: 1234.5},
		{name: "int passes through", input: 42, want: 42},
		{name: "formatted string", input: "$1,234.50", want: 1234.5},
		{name: "bare numeric string", input: "1234.50", want: 1234.5},
		{name: "negative amount", input: "-75.25", want: -75.25},
		{name: "whitespace trimmed", input: "  900 ", want: 900},
		{name: "unparsable string", input: "abc", want: 0},
		{name: "empty string", input: "", want: 0},
		{name: "nil cell", input: nil, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, ParseCurrency(tt.input), 1e-9)
		})
	}
}
