package source

import "github.com/samcharles93/calibkit/internal/logger"

const pileRemedy = "consider the backup dataset: --dataset swift/pile-val-backup"

// Default returns a registry with the builtin sources, in this order.
func Default(rows RowFetcher, log logger.Logger) *Registry {
	r := NewRegistry(log)
	RegisterBuiltins(r, rows)
	return r
}

// RegisterBuiltins adds the builtin sources to r.
func RegisterBuiltins(r *Registry, rows RowFetcher) {
	r.Register("NeelNanda/pile-10k",
		NewSplitLoader(rows, "NeelNanda/pile-10k", "default", []string{"train"}, true, Field("text"), pileRemedy))
	r.Register("swift/pile-val-backup",
		NewStreamLoader(rows, "swift/pile-val-backup", "default", []string{"validation"}, Field("text")))
	r.Register("BAAI/CCI3-HQ",
		NewStreamLoader(rows, "BAAI/CCI3-HQ", "default", []string{"train"}, Field("text")))
	r.Register("codeparrot/github-code-clean",
		NewStreamLoader(rows, "codeparrot/github-code-clean", "all-all", []string{"train"}, Field("code")))
	r.Register("madao33/new-title-chinese",
		NewSplitLoader(rows, "madao33/new-title-chinese", "default", []string{"train"}, true, Field("content"), ""))
	r.Register("mbpp",
		NewSplitLoader(rows, "google-research-datasets/mbpp", "full", []string{"train", "validation", "test"}, false, Fields("text", "code"), ""))
	r.Register(LocalKey, LocalLoader{})
}
