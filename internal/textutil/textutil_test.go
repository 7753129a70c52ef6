package textutil

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCollapseText(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "a b c", CollapseText("  a\n\tb   c ", 0))
	assert.Equal(t, "", CollapseText("   \n\t  ", 80))
}

func TestCollapseText_Truncates(t *testing.T) {
	t.Parallel()

	got := CollapseText(strings.Repeat("汕", 100), 10)
	assert.Equal(t, 10, len([]rune(got)))
	assert.True(t, strings.HasSuffix(got, "…"))

	// At or under the cap the text is untouched.
	assert.Equal(t, "汕头", CollapseText("汕头", 2))
	assert.Equal(t, "…", CollapseText("汕头宰客", 1))
}

func TestClipText_PreservesNewlines(t *testing.T) {
	t.Parallel()

	got := ClipText("line1\r\nline2\rline3", 0)
	assert.Equal(t, "line1\nline2\nline3", got)
}

func TestNormalizeURL(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "https://weibo.com/detail/ABC", NormalizeURL(" https://weibo.com/detail/ABC "))
	assert.Equal(t, "", NormalizeURL("  "))
	// Relative input passes through trimmed.
	assert.Equal(t, "/detail/ABC", NormalizeURL("/detail/ABC"))
}

func TestDedupBy(t *testing.T) {
	t.Parallel()

	in := []string{"a", "b", "a", "", "c", "b"}
	got := DedupBy(in, func(s string) string { return s })
	assert.Equal(t, []string{"a", "b", "c"}, got)
}

func TestStripHTML(t *testing.T) {
	t.Parallel()

	got := StripHTML(`第一段<br/>第二段</p><a href="x">链接</a>&nbsp;&amp;`)
	assert.Equal(t, "第一段\n第二段\n链接 &", got)

	// Full entity decoding, not just the handful in the fragments above.
	assert.Equal(t, `“引用” ©`, StripHTML("&ldquo;引用&rdquo;&nbsp;&copy;"))
}
