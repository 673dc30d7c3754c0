// Package merge combines staged draft patches onto base JSON values. The
// promotion engines use it identically for module props and placement
// overrides.
package merge

import "github.com/pagemill/pagemill-backend/internal/domain"

// Deep merges overrides onto base, key by key. When both sides hold a plain
// object at a key the merge recurses; any other value, arrays included,
// replaces the base value wholesale. Neither input is mutated.
func Deep(base, overrides domain.JSONMap) domain.JSONMap {
	if overrides == nil {
		return base
	}
	if base == nil {
		return overrides
	}
	out := make(domain.JSONMap, len(base)+len(overrides))
	for k, v := range base {
		out[k] = v
	}
	for k, ov := range overrides {
		bm, baseIsMap := asMap(out[k])
		om, overIsMap := asMap(ov)
		if baseIsMap && overIsMap {
			out[k] = map[string]interface{}(Deep(bm, om))
			continue
		}
		out[k] = ov
	}
	return out
}

func asMap(v interface{}) (domain.JSONMap, bool) {
	switch m := v.(type) {
	case map[string]interface{}:
		return domain.JSONMap(m), true
	case domain.JSONMap:
		return m, true
	default:
		return nil, false
	}
}
