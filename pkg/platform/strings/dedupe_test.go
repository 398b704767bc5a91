package strings

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCompact(t *testing.T) {
	tests := []struct {
		name     string
		input    []string
		expected []string
	}{
		{name: "nil slice", input: nil, expected: []string{}},
		{name: "only blanks", input: []string{"", "  "}, expected: []string{}},
		{name: "trims whitespace", input: []string{"  Pedido  ", "Factura  "}, expected: []string{"Pedido", "Factura"}},
		{name: "drops repeats keeping order", input: []string{"f-2", "f-1", "f-2", " f-1 "}, expected: []string{"f-2", "f-1"}},
		{name: "case sensitive", input: []string{"Ana", "ana"}, expected: []string{"Ana", "ana"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Compact(tt.input))
		})
	}
}

func TestCompactFold(t *testing.T) {
	assert.Equal(t, []string{"Ana María", "Luis"}, CompactFold([]string{" Ana María", "ana maría ", "Luis", "LUIS"}))
	assert.NotNil(t, CompactFold(nil))
}
