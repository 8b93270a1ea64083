package content

import (
	"cmp"
	"path/filepath"
	"slices"
)

// LatestN returns up to n records from the front of a sorted slice.
func LatestN(records []*Record, n int) []*Record {
	if n <= 0 {
		return nil
	}
	if n > len(records) {
		n = len(records)
	}
	return records[:n]
}

// First returns the first record, if any.
func First(records []*Record) (*Record, bool) {
	if len(records) == 0 {
		return nil, false
	}
	return records[0], true
}

// Published filters drafts out unless includeDrafts is set. Order is preserved.
func Published(records []*Record, includeDrafts bool) []*Record {
	if includeDrafts {
		return records
	}
	out := make([]*Record, 0, len(records))
	for _, r := range records {
		if !r.Draft {
			out = append(out, r)
		}
	}
	return out
}

// ByFilename returns a copy of records ordered by source filename.
func ByFilename(records []*Record) []*Record {
	out := slices.Clone(records)
	slices.SortStableFunc(out, func(a, b *Record) int {
		return cmp.Compare(filepath.Base(a.SourcePath), filepath.Base(b.SourcePath))
	})
	return out
}

// BySlug indexes records by slug. The last record by filename wins.
func BySlug(records []*Record) map[string]*Record {
	out := make(map[string]*Record, len(records))
	for _, r := range ByFilename(records) {
		out[r.Slug] = r
	}
	return out
}

// UniqueBySlug returns records in filename order with duplicates removed,
// keeping the last record by filename for each slug.
func UniqueBySlug(records []*Record) []*Record {
	ordered := ByFilename(records)
	winners := BySlug(ordered)
	out := make([]*Record, 0, len(winners))
	for _, r := range ordered {
		if winners[r.Slug] == r {
			out = append(out, r)
		}
	}
	return out
}
