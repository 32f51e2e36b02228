package selection

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUncategorized(t *testing.T) {
	assert.Equal(t, "", ToSelection(nil))
	assert.Nil(t, FromSelection(""))
}

func TestCategoryRoundTrip(t *testing.T) {
	id := "cat-42"
	display := ToSelection(&id)
	assert.Equal(t, "cat-42", display)

	parsed := FromSelection(display)
	require.NotNil(t, parsed)
	assert.Equal(t, "cat-42", *parsed)
}

// Round-trip law: FromSelection(ToSelection(r)) == r for every reference and
// for nil, and the transform is deterministic.
func TestRoundTripProperty(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	alphabet := []rune("abcdefghijklmnopqrstuvwxyz0123456789-_")

	for trial := 0; trial < 500; trial++ {
		n := rng.Intn(40) + 1
		runes := make([]rune, n)
		for i := range runes {
			runes[i] = alphabet[rng.Intn(len(alphabet))]
		}
		ref := string(runes)

		got := FromSelection(ToSelection(&ref))
		require.NotNil(t, got)
		assert.Equal(t, ref, *got)

		// Selecting the same reference twice yields the same association.
		again := FromSelection(ToSelection(&ref))
		require.NotNil(t, again)
		assert.Equal(t, *got, *again)
	}

	assert.Nil(t, FromSelection(ToSelection(nil)))
}

func TestFromSelectionReturnsCopy(t *testing.T) {
	value := "cat-7"
	ref := FromSelection(value)
	require.NotNil(t, ref)

	value = "changed"
	assert.Equal(t, "cat-7", *ref)
}
