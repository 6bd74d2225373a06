// Package source resolves source identifiers to loaders and implements the
// remote and local loaders that turn raw records into tokenized corpora.
package source

import (
	"cmp"
	"context"
	"os"
	"slices"
	"strings"
	"sync"

	"github.com/agnivade/levenshtein"

	"github.com/samcharles93/calibkit/internal/corpus"
	"github.com/samcharles93/calibkit/internal/logger"
	"github.com/samcharles93/calibkit/internal/tokenizer"
)

// LocalKey is the registry key serving identifiers that name an existing file.
const LocalKey = "local"

// Request carries everything a loader needs for one source.
type Request struct {
	Encoder           *tokenizer.TextEncoder
	SeqLen            int
	Name              string
	Splits            []string
	Seed              int64
	ApplyChatTemplate bool
	Logger            logger.Logger
}

func (r Request) log() logger.Logger { return logger.OrDiscard(r.Logger) }

// Loader fetches raw records for a source and tokenizes them.
type Loader interface {
	Load(ctx context.Context, req Request) (corpus.Corpus, error)
}

// LoaderFunc adapts a function to Loader.
type LoaderFunc func(ctx context.Context, req Request) (corpus.Corpus, error)

func (f LoaderFunc) Load(ctx context.Context, req Request) (corpus.Corpus, error) {
	return f(ctx, req)
}

// Registry maps source keys to loaders, remembering registration order.
type Registry struct {
	mu      sync.RWMutex
	keys    []string
	loaders map[string]Loader
	log     logger.Logger
}

func NewRegistry(log logger.Logger) *Registry {
	return &Registry{
		loaders: make(map[string]Loader),
		log:     logger.OrDiscard(log),
	}
}

// Register adds or replaces a loader. A replaced key keeps its position.
func (r *Registry) Register(name string, l Loader) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.loaders[name]; !ok {
		r.keys = append(r.keys, name)
	}
	r.loaders[name] = l
}

// Names returns the registered keys in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.keys)
}

// Resolve finds the loader for an identifier name and returns it with the
// key it matched. An existing file always resolves to the local loader.
// Otherwise the exact key wins, then the first key (in registration order)
// containing the last path segment of name.
func (r *Registry) Resolve(name string) (Loader, string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if isLocalFile(name) {
		if l, ok := r.loaders[LocalKey]; ok {
			return l, LocalKey, nil
		}
	}
	if l, ok := r.loaders[name]; ok {
		return l, name, nil
	}

	short := name
	if i := strings.LastIndex(name, "/"); i >= 0 {
		short = name[i+1:]
	}
	var matches []string
	if short != "" {
		for _, key := range r.keys {
			if strings.Contains(key, short) {
				matches = append(matches, key)
			}
		}
	}
	if len(matches) == 0 {
		return nil, "", &UnknownSourceError{Name: name, Known: slices.Clone(r.keys)}
	}
	if len(matches) > 1 {
		r.log.Warn("source name matches several registered keys, using the first registered",
			"name", name,
			"chosen", matches[0],
			"candidates", rankByDistance(short, matches),
		)
	}
	return r.loaders[matches[0]], matches[0], nil
}

// rankByDistance orders candidates by edit distance to name, closest first.
func rankByDistance(name string, candidates []string) []string {
	type ranked struct {
		key  string
		dist int
	}
	rs := make([]ranked, len(candidates))
	for i, c := range candidates {
		rs[i] = ranked{key: c, dist: levenshtein.ComputeDistance(name, c)}
	}
	slices.SortStableFunc(rs, func(a, b ranked) int { return cmp.Compare(a.dist, b.dist) })
	out := make([]string, len(rs))
	for i, r := range rs {
		out[i] = r.key
	}
	return out
}

func isLocalFile(name string) bool {
	info, err := os.Stat(name)
	return err == nil && !info.IsDir()
}
