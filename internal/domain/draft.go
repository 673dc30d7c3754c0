package domain

// Draft payloads are loosely typed JSON patches. A key being absent means
// "leave alone"; a key present with a nil value means "explicitly clear".
// DraftField keeps the two cases apart.

// DraftField reads key from a draft blob, reporting presence separately from
// the value so callers can tell absent from explicit null.
func DraftField(d JSONMap, key string) (interface{}, bool) {
	if d == nil {
		return nil, false
	}
	v, ok := d[key]
	return v, ok
}

// DraftString reads a string-typed draft field. present is false when the key
// is absent; a nil or non-string value yields "" with present true.
func DraftString(d JSONMap, key string) (value string, present bool) {
	v, ok := DraftField(d, key)
	if !ok {
		return "", false
	}
	s, _ := v.(string)
	return s, true
}

// DraftModule is one entry of a draft's atomic module list. Props and
// Overrides are partial patches; the engine deep-merges them onto the live
// columns.
type DraftModule struct {
	Scope            string
	ID               string
	ModuleInstanceID string
	Props            JSONMap
	Overrides        JSONMap
	AdminLabel       *string
}

// IsLocal reports whether the descriptor targets a post-owned instance
func (dm DraftModule) IsLocal() bool {
	return (dm.Scope == "post" || dm.Scope == "local") && dm.ModuleInstanceID != ""
}

// ParseDraftModules decodes a draft blob's "modules" value into descriptors.
// Returns false when the list is absent or not an array; malformed entries are
// skipped rather than failing the whole promotion.
func ParseDraftModules(v interface{}) ([]DraftModule, bool) {
	raw, ok := v.([]interface{})
	if !ok {
		return nil, false
	}
	out := make([]DraftModule, 0, len(raw))
	for _, item := range raw {
		m, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		dm := DraftModule{}
		if s, ok := m["scope"].(string); ok {
			dm.Scope = s
		}
		if s, ok := m["id"].(string); ok {
			dm.ID = s
		}
		if s, ok := m["moduleInstanceId"].(string); ok {
			dm.ModuleInstanceID = s
		}
		if p, ok := m["props"].(map[string]interface{}); ok {
			dm.Props = JSONMap(p)
		}
		if o, ok := m["overrides"].(map[string]interface{}); ok {
			dm.Overrides = JSONMap(o)
		}
		if l, ok := m["adminLabel"].(string); ok {
			dm.AdminLabel = &l
		}
		out = append(out, dm)
	}
	return out, true
}

// DraftTermIDs decodes a draft blob's "taxonomyTermIds" value. Present means
// the approve must full-replace the post's assignments, even with an empty
// list.
func DraftTermIDs(d JSONMap) ([]string, bool) {
	v, ok := DraftField(d, "taxonomyTermIds")
	if !ok {
		return nil, false
	}
	raw, ok := v.([]interface{})
	if !ok {
		return nil, false
	}
	ids := make([]string, 0, len(raw))
	for _, item := range raw {
		if s, ok := item.(string); ok {
			ids = append(ids, s)
		}
	}
	return ids, true
}

// CustomFieldPatch is one entry of a draft's "customFields" array
type CustomFieldPatch struct {
	Slug  string
	Value JSONMap
}

// DraftCustomFields decodes a draft blob's "customFields" value
func DraftCustomFields(d JSONMap) ([]CustomFieldPatch, bool) {
	v, ok := DraftField(d, "customFields")
	if !ok {
		return nil, false
	}
	raw, ok := v.([]interface{})
	if !ok {
		return nil, false
	}
	out := make([]CustomFieldPatch, 0, len(raw))
	for _, item := range raw {
		m, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		slug, _ := m["slug"].(string)
		if slug == "" {
			continue
		}
		p := CustomFieldPatch{Slug: slug}
		if val, ok := m["value"].(map[string]interface{}); ok {
			p.Value = JSONMap(val)
		}
		out = append(out, p)
	}
	return out, true
}
