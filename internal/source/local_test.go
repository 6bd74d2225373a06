package source

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samcharles93/calibkit/internal/corpus"
)

func TestReadLocalTextsShapes(t *testing.T) {
	t.Parallel()

	path := writeTemp(t, "mixed.json", `[
		"bare string\n\n",
		{"prompt": "single key  "},
		{"text": "with text", "meta": 1},
		{"input_ids": "raw ids", "meta": 2}
	]`)
	texts, err := ReadLocalTexts(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"bare string", "single key", "with text", "raw ids"}, texts)
}

func TestReadLocalTextsObjectKeepsDocumentOrder(t *testing.T) {
	t.Parallel()

	path := writeTemp(t, "obj.json", `{"z": "first", "a": "second", "m": {"text": "third"}}`)
	texts, err := ReadLocalTexts(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second", "third"}, texts)
}

func TestReadLocalTextsJSONLSkipsBlankLines(t *testing.T) {
	t.Parallel()

	path := writeTemp(t, "d.jsonl", "{\"text\": \"one\"}\n\n{\"text\": \"two\"}")
	texts, err := ReadLocalTexts(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"one", "two"}, texts)
}

func TestReadLocalTextsRejectsNonText(t *testing.T) {
	t.Parallel()

	path := writeTemp(t, "ids.jsonl", `{"input_ids": [1, 2, 3], "attention_mask": [1, 1, 1]}`)
	_, err := ReadLocalTexts(path)
	var re *RecordError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, 0, re.Index)
	assert.Equal(t, "array", re.Got)

	path = writeTemp(t, "null.json", `[{"text": null, "other": 1}]`)
	_, err = ReadLocalTexts(path)
	require.ErrorAs(t, err, &re)
	assert.Equal(t, "object", re.Got)
}

func TestReadLocalTextsNullTextFallsThroughToInputIDs(t *testing.T) {
	t.Parallel()

	path := writeTemp(t, "fallthrough.jsonl", `{"text": null, "input_ids": "from ids  "}`)
	texts, err := ReadLocalTexts(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"from ids"}, texts)
}

func TestReadLocalTextsUnsupportedExtension(t *testing.T) {
	t.Parallel()

	path := writeTemp(t, "data.txt", "plain text")
	_, err := ReadLocalTexts(path)
	var ue *UnsupportedFormatError
	require.ErrorAs(t, err, &ue)
	assert.Equal(t, path, ue.Path)
}

func TestLocalJSONAndJSONLEquivalent(t *testing.T) {
	t.Parallel()

	jsonPath := writeTemp(t, "a.json", `[{"text": "abc"}, {"text": "defg"}, {"text": "hi"}, {"text": "jklmn"}]`)
	jsonlPath := writeTemp(t, "a.jsonl", "{\"text\": \"abc\"}\n{\"text\": \"defg\"}\n{\"text\": \"hi\"}\n{\"text\": \"jklmn\"}\n")

	load := func(path string) corpus.Slice {
		c, err := LocalLoader{}.Load(context.Background(), testRequest(path, 16))
		require.NoError(t, err)
		s, ok := c.(corpus.Slice)
		require.True(t, ok, "local corpora are materialized")
		return s
	}
	a, b := load(jsonPath), load(jsonlPath)
	require.Len(t, a, 4)
	if diff := cmp.Diff(a, b); diff != "" {
		t.Fatalf("json and jsonl differ (-json +jsonl):\n%s", diff)
	}
}

func TestLocalLoaderShufflesDeterministicallyAndTruncates(t *testing.T) {
	t.Parallel()

	path := writeTemp(t, "many.jsonl", func() string {
		s := ""
		for i := range 30 {
			s += fmt.Sprintf("{\"text\": \"record-%02d\"}\n", i)
		}
		return s
	}())

	first, err := LocalLoader{}.Load(context.Background(), testRequest(path, 4))
	require.NoError(t, err)
	second, err := LocalLoader{}.Load(context.Background(), testRequest(path, 4))
	require.NoError(t, err)
	assert.Equal(t, decodeAll(t, first), decodeAll(t, second))

	for s, err := range first.Samples() {
		require.NoError(t, err)
		assert.Len(t, s.InputIDs, 4)
		assert.Equal(t, 1, s.InputIDs[0])
	}

	other := testRequest(path, 64)
	other.Seed = 7
	reordered, err := LocalLoader{}.Load(context.Background(), other)
	require.NoError(t, err)
	full := decodeAll(t, reordered)
	assert.Len(t, full, 30)
	assert.NotEqual(t, decodeAll(t, func() corpus.Corpus {
		r := testRequest(path, 64)
		c, err := LocalLoader{}.Load(context.Background(), r)
		require.NoError(t, err)
		return c
	}()), full)
}
