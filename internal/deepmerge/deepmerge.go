// Package deepmerge implements the recursive document merge used to layer a
// user override file onto the compiled-in configuration defaults.
//
// The rules are deliberately small and must stay exactly as documented here,
// because config compatibility depends on them:
//
//   - map onto map: recursive union of keys, the override wins on conflicts,
//     default-only keys survive.
//   - slice onto slice: element-by-element by position; the override element
//     at index i is deep-merged onto the default element at index i, override
//     elements past the default's length are appended, default elements past
//     the override's length are kept.
//   - anything else: the override value replaces the default value wholesale.
package deepmerge

// Merge returns a new document combining base and override. Neither input is
// modified; shared subtrees are copied before being written to.
func Merge(base, override map[string]any) map[string]any {
	out := make(map[string]any, len(base)+len(override))
	for k, v := range base {
		out[k] = v
	}
	for k, ov := range override {
		bv, ok := out[k]
		if !ok {
			out[k] = ov
			continue
		}
		out[k] = mergeValue(bv, ov)
	}
	return out
}

// mergeValue merges a single override value onto a single base value.
func mergeValue(base, override any) any {
	switch ov := override.(type) {
	case map[string]any:
		if bm, ok := base.(map[string]any); ok {
			return Merge(bm, ov)
		}
	case []any:
		if bs, ok := base.([]any); ok {
			return mergeSlices(bs, ov)
		}
	}
	return override
}

// mergeSlices merges override onto base index by index. Indices beyond the
// base's length are appended; base elements beyond the override's length are
// kept unchanged.
func mergeSlices(base, override []any) []any {
	n := len(base)
	if len(override) > n {
		n = len(override)
	}
	out := make([]any, n)
	for i := range out {
		switch {
		case i >= len(base):
			out[i] = override[i]
		case i >= len(override):
			out[i] = base[i]
		default:
			out[i] = mergeValue(base[i], override[i])
		}
	}
	return out
}
