package mix

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samcharles93/calibkit/internal/corpus"
)

func intPtr(n int) *int { return &n }

// tagged builds n samples whose first token identifies the source.
func tagged(tag, n int) corpus.Slice {
	out := make(corpus.Slice, n)
	for i := range out {
		out[i] = corpus.NewSample([]int{tag, i})
	}
	return out
}

func streamed(s corpus.Slice) corpus.Stream {
	return func(yield func(corpus.Sample, error) bool) {
		for _, x := range s {
			if !yield(x, nil) {
				return
			}
		}
	}
}

func countTags(t *testing.T, c corpus.Corpus) map[int]int {
	t.Helper()
	out := map[int]int{}
	for s, err := range c.Samples() {
		require.NoError(t, err)
		out[s.InputIDs[0]]++
	}
	return out
}

func TestAllocateExplicitAndCapped(t *testing.T) {
	t.Parallel()

	alloc := Allocate([]Share{
		{Name: "B", Available: 200, Quota: 30, Explicit: true},
		{Name: "A", Available: 50},
	}, 100)

	want := Allocation{
		{Name: "A", Available: 50, Quota: 50, Selected: 50},
		{Name: "B", Available: 200, Quota: 30, Explicit: true, Selected: 30},
	}
	if diff := cmp.Diff(want, alloc); diff != "" {
		t.Fatalf("allocation mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, 80, alloc.Total())
}

func TestAllocateScarcestFirst(t *testing.T) {
	t.Parallel()

	alloc := Allocate([]Share{
		{Name: "big", Available: 100},
		{Name: "small", Available: 10},
		{Name: "mid", Available: 100},
	}, 90)

	got := map[string]int{}
	for _, s := range alloc {
		got[s.Name] = s.Quota
	}
	assert.Equal(t, map[string]int{"small": 10, "big": 40, "mid": 40}, got)
	assert.Equal(t, []string{"small", "big", "mid"}, []string{alloc[0].Name, alloc[1].Name, alloc[2].Name}, "ties ordered by name")
	assert.LessOrEqual(t, alloc.Total(), 90)
}

func TestAllocateExplicitOverBudget(t *testing.T) {
	t.Parallel()

	alloc := Allocate([]Share{
		{Name: "x", Available: 1000, Quota: 500, Explicit: true},
		{Name: "y", Available: 80},
	}, 100)
	got := map[string]Share{}
	for _, s := range alloc {
		got[s.Name] = s
	}
	assert.Equal(t, 80, got["y"].Quota, "explicit sum over nsamples resets the budget")
	assert.Equal(t, 500, got["x"].Selected)
}

func TestAllocateExplicitCappedAtAvailability(t *testing.T) {
	t.Parallel()

	alloc := Allocate([]Share{
		{Name: "x", Available: 20, Quota: 300, Explicit: true},
		{Name: "y", Available: 5},
	}, 1000)
	for _, s := range alloc {
		if s.Name == "x" {
			assert.Equal(t, 300, s.Quota)
			assert.Equal(t, 20, s.Selected)
		}
	}
}

func TestMixEndToEndQuotas(t *testing.T) {
	t.Parallel()

	parts := []Part{
		{Name: "A", Corpus: tagged(1, 50)},
		{Name: "B", Corpus: streamed(tagged(2, 200)), Quota: intPtr(30)},
	}
	out, alloc, err := Mix(parts, 100, 42, nil)
	require.NoError(t, err)
	assert.Equal(t, map[int]int{1: 50, 2: 30}, countTags(t, out))
	assert.Equal(t, 80, alloc.Total())
}

func TestMixDeterministicAndOrderIndependent(t *testing.T) {
	t.Parallel()

	a := Part{Name: "A", Corpus: tagged(1, 40)}
	b := Part{Name: "B", Corpus: tagged(2, 60)}
	c := Part{Name: "C", Corpus: streamed(tagged(3, 25))}

	first, _, err := Mix([]Part{a, b, c}, 90, 7, nil)
	require.NoError(t, err)
	second, _, err := Mix([]Part{c, a, b}, 90, 7, nil)
	require.NoError(t, err)

	x, err := corpus.Collect(first)
	require.NoError(t, err)
	y, err := corpus.Collect(second)
	require.NoError(t, err)
	if diff := cmp.Diff(x, y); diff != "" {
		t.Fatalf("mix depends on input order (-first +second):\n%s", diff)
	}

	other, _, err := Mix([]Part{a, b, c}, 90, 8, nil)
	require.NoError(t, err)
	z, err := corpus.Collect(other)
	require.NoError(t, err)
	assert.NotEqual(t, x, z, "seed changes the order")
	assert.Equal(t, countTags(t, x), countTags(t, z))
}

func TestMixSinglePartPassThrough(t *testing.T) {
	t.Parallel()

	src := tagged(1, 10)
	out, alloc, err := Mix([]Part{{Name: "only", Corpus: src}}, 3, 42, nil)
	require.NoError(t, err)
	assert.Equal(t, src, out)
	require.Len(t, alloc, 1)
	assert.Equal(t, 10, alloc[0].Available)
}

func TestMixMatchesPartsByPosition(t *testing.T) {
	t.Parallel()

	out, alloc, err := Mix([]Part{
		{Name: "A", Corpus: tagged(1, 3)},
		{Name: "A", Corpus: tagged(2, 5)},
	}, 4, 1, nil)
	require.NoError(t, err)
	require.Len(t, alloc, 2)
	assert.Equal(t, map[int]int{1: 2, 2: 2}, countTags(t, out))
	assert.Equal(t, 3, alloc[0].Available)
	assert.Equal(t, 5, alloc[1].Available)
}
