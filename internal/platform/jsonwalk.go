package platform

import (
	"fmt"
	"strings"
)

// Identifier keys checked on every object during the walk, in priority
// order. Upstream state shapes drift between note_id/noteId/id variants.
var noteIDKeys = []string{"note_id", "noteId", "id", "noteID"}

// Text-bearing keys tried when flattening an object to plain text.
var textKeys = []string{"text", "content", "desc", "description", "note"}

const (
	walkMaxDepth    = 12
	flattenMaxDepth = 6
)

type walkNode struct {
	value any
	depth int
}

// findNodeByID does a breadth-first walk over a decoded JSON value and
// returns the first object whose identifier key equals target. The depth
// bound keeps the walk robust against cyclic or pathologically nested
// state objects.
func findNodeByID(root any, target string) (map[string]any, bool) {
	target = strings.TrimSpace(target)
	if target == "" {
		return nil, false
	}

	queue := []walkNode{{value: root, depth: 0}}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if cur.depth > walkMaxDepth {
			continue
		}

		switch v := cur.value.(type) {
		case map[string]any:
			for _, k := range noteIDKeys {
				if id, ok := v[k]; ok && scalarString(id) == target {
					return v, true
				}
			}
			for _, child := range v {
				queue = append(queue, walkNode{value: child, depth: cur.depth + 1})
			}
		case []any:
			for _, child := range v {
				queue = append(queue, walkNode{value: child, depth: cur.depth + 1})
			}
		}
	}
	return nil, false
}

// dig descends through nested maps/slices by key or index, returning nil
// when any step is missing.
func dig(root any, path ...any) any {
	cur := root
	for _, step := range path {
		switch key := step.(type) {
		case string:
			m, ok := cur.(map[string]any)
			if !ok {
				return nil
			}
			cur = m[key]
		case int:
			s, ok := cur.([]any)
			if !ok || key < 0 || key >= len(s) {
				return nil
			}
			cur = s[key]
		default:
			return nil
		}
	}
	return cur
}

// digString returns the trimmed string at path, or "".
func digString(root any, path ...any) string {
	if s, ok := dig(root, path...).(string); ok {
		return strings.TrimSpace(s)
	}
	return ""
}

// flattenText extracts plain text from an arbitrarily shaped JSON value:
// strings pass through, arrays join their children with newlines, and
// objects are probed via the known text-bearing keys.
func flattenText(v any, depth int) string {
	if v == nil || depth > flattenMaxDepth {
		return ""
	}
	switch t := v.(type) {
	case string:
		return t
	case float64, bool:
		return scalarString(t)
	case []any:
		var parts []string
		for _, child := range t {
			if s := flattenText(child, depth+1); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, "\n")
	case map[string]any:
		for _, k := range textKeys {
			if s := flattenText(t[k], depth+1); s != "" {
				return s
			}
		}
	}
	return ""
}

// scalarString renders a scalar JSON value for comparison. Numeric IDs
// decode as float64; integral values must not pick up an exponent or
// decimal point.
func scalarString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		if t == float64(int64(t)) {
			return fmt.Sprintf("%d", int64(t))
		}
		return fmt.Sprintf("%v", t)
	case bool:
		return fmt.Sprintf("%v", t)
	}
	return ""
}
