package platform

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chek-app/crawler/internal/model"
)

func TestExtractWeiboMid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		url  string
		want string
	}{
		{"https://weibo.com/detail/Mx1aBc23", "Mx1aBc23"},
		{"https://m.weibo.cn/detail/5012345678901234", "5012345678901234"},
		{"https://weibo.com/1234567890/Nx9zYw", "Nx9zYw"},
		{"https://weibo.com/u/1234567890", ""},
		{"https://s.weibo.com/weibo?q=foo", ""},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, extractWeiboMid(tt.url), tt.url)
	}
}

func TestToAbsoluteWeiboURL(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "https://weibo.com/detail/Mx1", toAbsoluteWeiboURL("/detail/Mx1"))
	assert.Equal(t, "https://weibo.com/detail/Mx1", toAbsoluteWeiboURL("//weibo.com/detail/Mx1"))
	assert.Equal(t, "https://weibo.com/detail/Mx1", toAbsoluteWeiboURL("https://weibo.com/detail/Mx1"))
	assert.Equal(t, "http://weibo.com/detail/Mx1", toAbsoluteWeiboURL("http://weibo.com/detail/Mx1"))
	assert.Equal(t, "https://weibo.com/1234/Mx1", toAbsoluteWeiboURL("1234/Mx1"))
	assert.Equal(t, "", toAbsoluteWeiboURL("  "))
}

func TestIsWeiboBoilerplateTitle(t *testing.T) {
	t.Parallel()

	assert.True(t, isWeiboBoilerplateTitle(""))
	assert.True(t, isWeiboBoilerplateTitle("   "))
	assert.True(t, isWeiboBoilerplateTitle("某人的微博正文"))
	assert.True(t, isWeiboBoilerplateTitle("某某 - 微博"))
	assert.False(t, isWeiboBoilerplateTitle("汕头牛肉火锅被宰记录"))
}

func TestWeiboOpen_MissingStorageStateSkips(t *testing.T) {
	t.Parallel()

	w := NewWeibo("")
	// No browser is needed: the adapter declines before any navigation.
	s, err := w.Open(nil)
	require.NoError(t, err)
	assert.Nil(t, s)
	assert.Equal(t, model.PlatformWeibo, w.Platform())
}
