//go:build unix

package osmem

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestReserveRefusedByOS(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping oversized mapping in short mode")
	}
	if math.MaxInt == math.MaxInt32 {
		t.Skip("needs a 64-bit address space")
	}
	// Page aligned and representable, but far beyond any address space the
	// kernel will hand out in one mapping.
	_, err := Reserve(math.MaxInt / 2)
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrTooLarge)
}
