package collection

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEntity struct {
	id string
}

func (f fakeEntity) EntityID() string { return f.id }

func sequence(ids ...string) []fakeEntity {
	out := make([]fakeEntity, len(ids))
	for i, id := range ids {
		out[i] = fakeEntity{id: id}
	}
	return out
}

func ids(seq []fakeEntity) []string {
	out := make([]string, len(seq))
	for i, e := range seq {
		out[i] = e.id
	}
	return out
}

func TestReorderScenarios(t *testing.T) {
	tests := []struct {
		name string
		in   []string
		from int
		to   int
		want []string
	}{
		{
			name: "move first forward",
			in:   []string{"A", "B", "C", "D"},
			from: 0,
			to:   2,
			want: []string{"B", "C", "A", "D"},
		},
		{
			name: "same index is identity",
			in:   []string{"A", "B", "C"},
			from: 1,
			to:   1,
			want: []string{"A", "B", "C"},
		},
		{
			name: "move last to front",
			in:   []string{"A", "B", "C", "D"},
			from: 3,
			to:   0,
			want: []string{"D", "A", "B", "C"},
		},
		{
			name: "move backward by one",
			in:   []string{"A", "B", "C"},
			from: 2,
			to:   1,
			want: []string{"A", "C", "B"},
		},
		{
			name: "single element",
			in:   []string{"A"},
			from: 0,
			to:   0,
			want: []string{"A"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Reorder(sequence(tt.in...), tt.from, tt.to)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ids(got))
		})
	}
}

func TestReorderOutOfRange(t *testing.T) {
	tests := []struct {
		name string
		in   []string
		from int
		to   int
	}{
		{name: "negative from", in: []string{"A", "B"}, from: -1, to: 0},
		{name: "negative to", in: []string{"A", "B"}, from: 0, to: -1},
		{name: "from past end", in: []string{"A", "B"}, from: 2, to: 0},
		{name: "to past end", in: []string{"A", "B"}, from: 0, to: 2},
		{name: "empty sequence", in: nil, from: 0, to: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Reorder(sequence(tt.in...), tt.from, tt.to)
			require.ErrorIs(t, err, ErrIndexOutOfRange)
			assert.Nil(t, got)
		})
	}
}

func TestReorderDoesNotMutateInput(t *testing.T) {
	in := sequence("A", "B", "C", "D")
	_, err := Reorder(in, 0, 3)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B", "C", "D"}, ids(in))
}

// Randomized contract checks: id-set preservation, length preservation,
// target placement, stability of the rest, and single move/move-back
// reversibility.
func TestReorderProperties(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for trial := 0; trial < 500; trial++ {
		n := rng.Intn(20) + 1
		in := make([]fakeEntity, n)
		for i := range in {
			in[i] = fakeEntity{id: string(rune('a' + i%26)) + "-" + string(rune('0'+i/26))}
		}
		from := rng.Intn(n)
		to := rng.Intn(n)

		out, err := Reorder(in, from, to)
		require.NoError(t, err)

		require.Len(t, out, n, "length must be preserved")
		assert.ElementsMatch(t, ids(in), ids(out), "id set must be preserved")
		assert.Equal(t, in[from].id, out[to].id, "moved element must land at target")

		// Every element other than the moved one keeps its relative order.
		var beforeRest, afterRest []string
		for i, e := range in {
			if i != from {
				beforeRest = append(beforeRest, e.id)
			}
		}
		for i, e := range out {
			if i != to {
				afterRest = append(afterRest, e.id)
			}
		}
		assert.Equal(t, beforeRest, afterRest, "unmoved elements must keep relative order")

		// Applying the inverse move restores the original order.
		back, err := Reorder(out, to, from)
		require.NoError(t, err)
		assert.Equal(t, ids(in), ids(back), "move then move-back must restore the order")

		// from == to is elementwise identity.
		same, err := Reorder(in, from, from)
		require.NoError(t, err)
		assert.Equal(t, ids(in), ids(same))
	}
}
