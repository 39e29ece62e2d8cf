package robot

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScrollSteps(t *testing.T) {
	tests := []struct {
		in   float64
		want int
	}{
		{0, 0},
		{-3, -3},
		{2.4, 2},
		{2.5, 3},
		{-2.5, -3},
		{0.2, 1},
		{-0.01, -1},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, scrollSteps(tt.in), "scrollSteps(%v)", tt.in)
	}
}
