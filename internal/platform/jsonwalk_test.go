package platform

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, s string) any {
	t.Helper()
	var v any
	require.NoError(t, json.Unmarshal([]byte(s), &v))
	return v
}

func TestFindNodeByID_Nested(t *testing.T) {
	t.Parallel()

	state := decode(t, `{
		"note": {
			"noteDetailMap": {
				"abcdef0123456789": {
					"note": {"note_id": "abcdef0123456789", "desc": "正文"}
				}
			}
		}
	}`)

	card, ok := findNodeByID(state, "abcdef0123456789")
	require.True(t, ok)
	assert.Equal(t, "正文", card["desc"])
}

func TestFindNodeByID_KeyVariants(t *testing.T) {
	t.Parallel()

	for _, key := range []string{"note_id", "noteId", "id", "noteID"} {
		state := decode(t, `{"items": [{"`+key+`": "deadbeefdeadbeef", "desc": "x"}]}`)
		_, ok := findNodeByID(state, "deadbeefdeadbeef")
		assert.True(t, ok, key)
	}
}

func TestFindNodeByID_NumericID(t *testing.T) {
	t.Parallel()

	state := decode(t, `{"id": 123456, "desc": "x"}`)
	_, ok := findNodeByID(state, "123456")
	assert.True(t, ok)
}

func TestFindNodeByID_Missing(t *testing.T) {
	t.Parallel()

	state := decode(t, `{"a": {"b": [1, 2, 3]}}`)
	_, ok := findNodeByID(state, "nope")
	assert.False(t, ok)

	_, ok = findNodeByID(state, "")
	assert.False(t, ok)
}

func TestFindNodeByID_DepthBound(t *testing.T) {
	t.Parallel()

	// Build nesting deeper than the walk bound.
	leaf := map[string]any{"note_id": "feedfacefeedface"}
	var cur any = leaf
	for i := 0; i < walkMaxDepth+5; i++ {
		cur = map[string]any{"wrap": cur}
	}

	_, ok := findNodeByID(cur, "feedfacefeedface")
	assert.False(t, ok)

	// Within the bound it is found.
	cur = leaf
	for i := 0; i < walkMaxDepth-1; i++ {
		cur = map[string]any{"wrap": cur}
	}
	_, ok = findNodeByID(cur, "feedfacefeedface")
	assert.True(t, ok)
}

func TestFlattenText(t *testing.T) {
	t.Parallel()

	v := decode(t, `{"desc": [{"text": "第一段"}, {"text": "第二段"}, {"irrelevant": true}]}`)
	assert.Equal(t, "第一段\n第二段", flattenText(v, 0))

	assert.Equal(t, "plain", flattenText("plain", 0))
	assert.Equal(t, "", flattenText(nil, 0))
	assert.Equal(t, "", flattenText(decode(t, `{"unknown": "x"}`), 0))
}

func TestDig(t *testing.T) {
	t.Parallel()

	v := decode(t, `{"data": {"items": [{"note_card": {"display_title": "标题"}}]}}`)
	assert.Equal(t, "标题", digString(v, "data", "items", 0, "note_card", "display_title"))
	assert.Nil(t, dig(v, "data", "missing"))
	assert.Nil(t, dig(v, "data", "items", 5))
}

func TestExtractXhsFromState(t *testing.T) {
	t.Parallel()

	state := decode(t, `{
		"note": {
			"noteDetailMap": {
				"abcdef0123456789": {
					"note": {
						"note_id": "abcdef0123456789",
						"title": "汕头避雷",
						"desc": "在汕头被宰的经过<br/>详细说明"
					}
				}
			}
		}
	}`)

	title, text := extractXhsFromState(state, "abcdef0123456789")
	assert.Equal(t, "汕头避雷", title)
	assert.Equal(t, "在汕头被宰的经过\n详细说明", text)
}

func TestExtractXhsFromState_PathFallback(t *testing.T) {
	t.Parallel()

	// No matching ID key anywhere; the fixed data.note path applies.
	state := decode(t, `{"data": {"note": {"display_title": "标题", "content": "正文"}}}`)
	title, text := extractXhsFromState(state, "abcdef0123456789")
	assert.Equal(t, "标题", title)
	assert.Equal(t, "正文", text)
}
