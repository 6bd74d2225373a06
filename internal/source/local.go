package source

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/goccy/go-json"

	"github.com/samcharles93/calibkit/internal/corpus"
)

// LocalLoader reads .json or .jsonl files of text records.
type LocalLoader struct{}

func (LocalLoader) Load(ctx context.Context, req Request) (corpus.Corpus, error) {
	texts, err := ReadLocalTexts(req.Name)
	if err != nil {
		return nil, err
	}
	req.log().Info("read local corpus", "path", req.Name, "records", len(texts))
	corpus.Permute(texts, req.Seed)
	return encodeTexts(ctx, req, texts)
}

// ReadLocalTexts parses a local corpus file into normalized, right-trimmed
// texts in file order.
func ReadLocalTexts(path string) ([]string, error) {
	var parse func([]byte) ([]json.RawMessage, error)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		parse = parseJSONRecords
	case ".jsonl":
		parse = parseJSONLRecords
	default:
		return nil, &UnsupportedFormatError{Path: path}
	}

	f, err := openMapped(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	records, err := parse(f.Data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	texts := make([]string, len(records))
	for i, raw := range records {
		text, kind, err := normalizeRecord(raw)
		if err != nil {
			return nil, fmt.Errorf("%s: record %d: %w", path, i, err)
		}
		if kind != "" {
			return nil, &RecordError{Path: path, Index: i, Got: kind}
		}
		texts[i] = strings.TrimRightFunc(text, unicode.IsSpace)
	}
	return texts, nil
}

// parseJSONRecords accepts an array of records, or an object whose values
// are the records, taken in document order.
func parseJSONRecords(data []byte) ([]json.RawMessage, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		dec := json.NewDecoder(bytes.NewReader(trimmed))
		if _, err := dec.Token(); err != nil {
			return nil, err
		}
		var out []json.RawMessage
		for dec.More() {
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			var v json.RawMessage
			if err := dec.Decode(&v); err != nil {
				return nil, err
			}
			out = append(out, v)
		}
		return out, nil
	}
	var out []json.RawMessage
	if err := json.Unmarshal(trimmed, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func parseJSONLRecords(data []byte) ([]json.RawMessage, error) {
	var out []json.RawMessage
	r := bufio.NewReader(bytes.NewReader(data))
	for lineNo := 1; ; lineNo++ {
		line, err := r.ReadBytes('\n')
		if len(bytes.TrimSpace(line)) > 0 {
			var v json.RawMessage
			if uerr := json.Unmarshal(line, &v); uerr != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, uerr)
			}
			out = append(out, v)
		}
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return nil, err
		}
	}
}

// normalizeRecord resolves a record to its text. Accepted shapes, in order:
// a bare string, a single-key object, an object with "text", an object with
// "input_ids". When the resolved value is not a string, kind names its type.
func normalizeRecord(raw json.RawMessage) (text, kind string, err error) {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return "", "", err
	}
	if obj, ok := v.(map[string]any); ok {
		textVal := obj["text"]
		idsVal, hasIDs := obj["input_ids"]
		switch {
		case len(obj) == 1:
			for _, val := range obj {
				v = val
			}
		case textVal != nil:
			v = textVal
		case hasIDs:
			v = idsVal
		}
	}
	if s, ok := v.(string); ok {
		return s, "", nil
	}
	return "", jsonKind(v), nil
}

func jsonKind(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case bool:
		return "boolean"
	case float64, json.Number:
		return "number"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	default:
		return fmt.Sprintf("%T", v)
	}
}
