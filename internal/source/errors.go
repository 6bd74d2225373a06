package source

import (
	"errors"
	"fmt"
)

// ErrUnknownSource is matched by every *UnknownSourceError.
var ErrUnknownSource = errors.New("unknown source")

type UnknownSourceError struct {
	Name  string
	Known []string
}

func (e *UnknownSourceError) Error() string {
	return fmt.Sprintf("no loader for source %q (registered: %v)", e.Name, e.Known)
}

func (e *UnknownSourceError) Is(target error) bool { return target == ErrUnknownSource }

// FetchError is a failed remote fetch. Remedy tells the operator what to try
// instead; the CLI prints it and exits.
type FetchError struct {
	Dataset string
	Split   string
	Remedy  string
	Err     error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s split %q: %v", e.Dataset, e.Split, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// UnsupportedFormatError is returned for local files that are neither .json nor .jsonl.
type UnsupportedFormatError struct {
	Path string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("%s: unsupported local file type, only .json and .jsonl are supported", e.Path)
}

// RecordError reports a local record whose resolved value is not text.
type RecordError struct {
	Path  string
	Index int
	Got   string
}

func (e *RecordError) Error() string {
	return fmt.Sprintf("%s: record %d: data must be a string, got %s", e.Path, e.Index, e.Got)
}
