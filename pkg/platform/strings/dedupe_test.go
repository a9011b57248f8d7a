package strings

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSortedUnique(t *testing.T) {
	tests := []struct {
		name  string
		input []string
		want  []string
	}{
		{"nil", nil, []string{}},
		{"single", []string{"John Doe"}, []string{"John Doe"}},
		{"rename keys out of order", []string{"Zed", "Amy"}, []string{"Amy", "Zed"}},
		{"same-name rename", []string{"Amy", "Amy"}, []string{"Amy"}},
		{"drops empty", []string{"", "b", "a", "b", ""}, []string{"a", "b"}},
		{"case sensitive", []string{"amy", "Amy"}, []string{"Amy", "amy"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SortedUnique(tt.input))
		})
	}
}

func TestSortedUnique_DoesNotMutateInput(t *testing.T) {
	in := []string{"b", "a"}
	_ = SortedUnique(in)
	assert.Equal(t, []string{"b", "a"}, in)
}
