package source

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samcharles93/calibkit/internal/corpus"
	"github.com/samcharles93/calibkit/internal/hub"
)

func TestSplitLoaderMaterializesShuffledSplit(t *testing.T) {
	t.Parallel()

	rows := &fakeRows{rows: map[string][]hub.Row{
		"NeelNanda/pile-10k/default/train": textRows("p", 40),
	}}
	l := NewSplitLoader(rows, "NeelNanda/pile-10k", "default", []string{"train"}, true, Field("text"), pileRemedy)

	req := testRequest("NeelNanda/pile-10k", 8)
	req.Splits = []string{"test"}
	c, err := l.Load(context.Background(), req)
	require.NoError(t, err)
	require.True(t, corpus.IsMaterialized(c))

	texts := decodeAll(t, c)
	require.Len(t, texts, 40, "forced train split ignores the requested split")

	again, err := l.Load(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, texts, decodeAll(t, again))

	var inOrder []string
	for _, r := range textRows("p", 40) {
		s, _ := r.String("text")
		inOrder = append(inOrder, s)
	}
	assert.NotEqual(t, inOrder, texts, "records are shuffled before tokenization")
}

func TestSplitLoaderMultipleSplitsAndFields(t *testing.T) {
	t.Parallel()

	rows := &fakeRows{rows: map[string][]hub.Row{
		"google-research-datasets/mbpp/full/train": {{"text": "write f", "code": "def f(): pass"}},
		"google-research-datasets/mbpp/full/test":  {{"text": "write g", "code": "def g(): pass"}},
	}}
	l := NewSplitLoader(rows, "google-research-datasets/mbpp", "full",
		[]string{"train", "validation", "test"}, false, Fields("text", "code"), "")

	req := testRequest("mbpp", 64)
	req.Splits = []string{"train", "test"}
	c, err := l.Load(context.Background(), req)
	require.NoError(t, err)
	texts := decodeAll(t, c)
	assert.ElementsMatch(t, []string{"write fdef f(): pass", "write gdef g(): pass"}, texts)
}

func TestSplitLoaderFetchError(t *testing.T) {
	t.Parallel()

	rows := &fakeRows{failSplit: "train"}
	l := NewSplitLoader(rows, "NeelNanda/pile-10k", "default", []string{"train"}, true, Field("text"), pileRemedy)

	_, err := l.Load(context.Background(), testRequest("NeelNanda/pile-10k", 8))
	var fe *FetchError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "NeelNanda/pile-10k", fe.Dataset)
	assert.Equal(t, "train", fe.Split)
	assert.Contains(t, fe.Remedy, "swift/pile-val-backup")
	assert.ErrorIs(t, err, errOffline)
}

func TestSplitLoaderResolvesConfig(t *testing.T) {
	t.Parallel()

	rows := &fakeRows{
		configs: map[string]string{"org/ds/train": "en"},
		rows:    map[string][]hub.Row{"org/ds/en/train": textRows("x", 3)},
	}
	l := NewSplitLoader(rows, "org/ds", "", []string{"train"}, false, Field("text"), "")
	c, err := l.Load(context.Background(), testRequest("org/ds", 8))
	require.NoError(t, err)
	assert.Len(t, decodeAll(t, c), 3)

	req := testRequest("org/ds", 8)
	req.Splits = []string{"missing"}
	_, err = l.Load(context.Background(), req)
	var fe *FetchError
	require.ErrorAs(t, err, &fe)
	assert.ErrorIs(t, err, hub.ErrSplitNotFound)
}

func TestSplitLoaderMissingColumn(t *testing.T) {
	t.Parallel()

	rows := &fakeRows{rows: map[string][]hub.Row{"d/c/train": {{"content": "x"}}}}
	l := NewSplitLoader(rows, "d", "c", []string{"train"}, false, Field("text"), "")
	_, err := l.Load(context.Background(), testRequest("d", 8))
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), `"text"`))
}

func TestStreamLoaderTakesBoundedPrefix(t *testing.T) {
	t.Parallel()

	rows := &fakeRows{rows: map[string][]hub.Row{
		"swift/pile-val-backup/default/validation": textRows("v", 500),
	}}
	l := NewStreamLoader(rows, "swift/pile-val-backup", "default", []string{"validation"}, Field("text"))
	l.TakeCap = 100
	l.ShuffleBuffer = 16
	l.EncodeBatch = 7

	c, err := l.Load(context.Background(), testRequest("swift/pile-val-backup", 8))
	require.NoError(t, err)
	require.False(t, corpus.IsMaterialized(c))
	assert.Zero(t, rows.pulled, "streamed corpora fetch lazily")

	first := decodeAll(t, c)
	assert.Len(t, first, 100)
	assert.Equal(t, 100, rows.pulled, "rows past the cap are never pulled")

	second := decodeAll(t, c)
	assert.Equal(t, first, second, "each traversal replays the same seeded order")

	n, err := corpus.Count(c)
	require.NoError(t, err)
	assert.Equal(t, 100, n)
}

func TestStreamLoaderEarlyStop(t *testing.T) {
	t.Parallel()

	rows := &fakeRows{rows: map[string][]hub.Row{
		"BAAI/CCI3-HQ/default/train": textRows("c", 50),
	}}
	l := NewStreamLoader(rows, "BAAI/CCI3-HQ", "default", []string{"train"}, Field("text"))
	c, err := l.Load(context.Background(), testRequest("BAAI/CCI3-HQ", 8))
	require.NoError(t, err)

	s, err := corpus.Select(c, 5)
	require.NoError(t, err)
	assert.Len(t, s, 5)
}

func TestStreamLoaderSurfacesFetchError(t *testing.T) {
	t.Parallel()

	rows := &fakeRows{
		configs:   map[string]string{},
		failSplit: "train",
	}
	l := NewStreamLoader(rows, "org/ds", "cfg", []string{"train"}, Field("text"))
	c, err := l.Load(context.Background(), testRequest("org/ds", 8))
	require.NoError(t, err)

	_, err = corpus.Count(c)
	var fe *FetchError
	require.ErrorAs(t, err, &fe)
}
