package model

import "strings"

// Selection identifies a set of taxonomy rows either by primary key or by
// name.  Names are resolved (and created when missing) at write time.
// Exactly one of the two lists is populated; both are empty for None.
type Selection struct {
    ids   []uint64
    names []string
}

// ByIDs builds an id selection, dropping non-positive values and duplicates.
func ByIDs(ids []int64) Selection {
    seen := make(map[uint64]struct{}, len(ids))
    out := make([]uint64, 0, len(ids))
    for _, id := range ids {
        if id <= 0 {
            continue
        }
        u := uint64(id)
        if _, ok := seen[u]; ok {
            continue
        }
        seen[u] = struct{}{}
        out = append(out, u)
    }
    return Selection{ids: out}
}

// ByNames builds a name selection of distinct trimmed non-empty names.
func ByNames(names []string) Selection {
    seen := make(map[string]struct{}, len(names))
    out := make([]string, 0, len(names))
    for _, n := range names {
        n = strings.TrimSpace(n)
        if n == "" {
            continue
        }
        if _, ok := seen[n]; ok {
            continue
        }
        seen[n] = struct{}{}
        out = append(out, n)
    }
    return Selection{names: out}
}

// NewSelection prefers ids: names are only used when no valid id was given.
func NewSelection(ids []int64, names []string) Selection {
    if s := ByIDs(ids); !s.Empty() {
        return s
    }
    return ByNames(names)
}

// IDs returns the selected ids; nil for a by-name selection.
func (s Selection) IDs() []uint64 { return s.ids }

// Names returns the selected names; nil for a by-id selection.
func (s Selection) Names() []string { return s.names }

// IsByNames reports whether entries are resolved (and upserted) by name.
func (s Selection) IsByNames() bool { return len(s.names) > 0 }

// Empty reports whether nothing usable was selected.
func (s Selection) Empty() bool { return len(s.ids) == 0 && len(s.names) == 0 }
