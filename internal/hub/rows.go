package hub

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"net/url"
	"strings"

)

// Row is one dataset record keyed by column name.
type Row map[string]any

// String returns the named column when it holds text.
func (r Row) String(field string) (string, bool) {
	s, ok := r[field].(string)
	return s, ok
}

// Page is one response of the rows endpoint.
type Page struct {
	Rows         []Row
	NumRowsTotal int
	Partial      bool
}

type rowsResponse struct {
	Rows []struct {
		RowIdx int `json:"row_idx"`
		Row    Row `json:"row"`
	} `json:"rows"`
	NumRowsTotal int  `json:"num_rows_total"`
	Partial      bool `json:"partial"`
}

// SplitInfo names one (config, split) pair of a dataset.
type SplitInfo struct {
	Dataset string `json:"dataset"`
	Config  string `json:"config"`
	Split   string `json:"split"`
}

// ErrSplitNotFound is returned when a dataset has no split of the requested name.
var ErrSplitNotFound = errors.New("split not found")

// Rows fetches one page. length is clamped to the client's page size.
func (c *Client) Rows(ctx context.Context, dataset, config, split string, offset, length int) (*Page, error) {
	q := url.Values{}
	q.Set("dataset", dataset)
	q.Set("config", config)
	q.Set("split", split)
	q.Set("offset", itoa(offset))
	q.Set("length", itoa(min(max(length, 1), c.pageSize)))

	var resp rowsResponse
	if err := c.get(ctx, "/rows", q, &resp); err != nil {
		return nil, err
	}
	page := &Page{NumRowsTotal: resp.NumRowsTotal, Partial: resp.Partial, Rows: make([]Row, len(resp.Rows))}
	for i, r := range resp.Rows {
		page.Rows[i] = r.Row
	}
	return page, nil
}

// Splits lists every (config, split) pair of a dataset.
func (c *Client) Splits(ctx context.Context, dataset string) ([]SplitInfo, error) {
	q := url.Values{}
	q.Set("dataset", dataset)
	var resp struct {
		Splits []SplitInfo `json:"splits"`
	}
	if err := c.get(ctx, "/splits", q, &resp); err != nil {
		return nil, err
	}
	return resp.Splits, nil
}

// ResolveConfig picks the config that carries split, preferring "default".
func (c *Client) ResolveConfig(ctx context.Context, dataset, split string) (string, error) {
	splits, err := c.Splits(ctx, dataset)
	if err != nil {
		return "", err
	}
	var found []string
	for _, s := range splits {
		if s.Split == split {
			found = append(found, s.Config)
		}
	}
	switch {
	case len(found) == 0:
		var names []string
		for _, s := range splits {
			names = append(names, s.Config+"/"+s.Split)
		}
		return "", fmt.Errorf("%s: %w: %q (available: %s)", dataset, ErrSplitNotFound, split, strings.Join(names, ", "))
	case len(found) > 1:
		for _, cfg := range found {
			if cfg == "default" {
				return cfg, nil
			}
		}
	}
	return found[0], nil
}

// Iterate pages through a split lazily. Each traversal starts from offset 0.
func (c *Client) Iterate(ctx context.Context, dataset, config, split string) iter.Seq2[Row, error] {
	return func(yield func(Row, error) bool) {
		offset := 0
		for {
			page, err := c.Rows(ctx, dataset, config, split, offset, c.pageSize)
			if err != nil {
				yield(nil, err)
				return
			}
			for _, r := range page.Rows {
				if !yield(r, nil) {
					return
				}
			}
			offset += len(page.Rows)
			if len(page.Rows) == 0 || offset >= page.NumRowsTotal {
				return
			}
		}
	}
}
