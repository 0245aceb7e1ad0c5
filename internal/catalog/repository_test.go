package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReplaceCatalogVersioning(t *testing.T) {
	v1 := NextLoadVersion()
	v2 := NextLoadVersion()
	require.Greater(t, v2, v1)

	ok := ReplaceCatalog(v2, []GameEntry{{Identity: "new", Title: "New"}}, nil)
	assert.True(t, ok)
	assert.Equal(t, v2, Version())

	// 过期版本的装载结果必须被丢弃，不能覆盖新数据
	ok = ReplaceCatalog(v1, []GameEntry{{Identity: "stale", Title: "Stale"}}, nil)
	assert.False(t, ok)

	entries, _ := Snapshot()
	require.Len(t, entries, 1)
	assert.Equal(t, "new", entries[0].Identity)
}

func TestRepositoryLookups(t *testing.T) {
	v := NextLoadVersion()
	stores := map[string]StoreInfo{"1": {Name: "Steam"}}
	entries := []GameEntry{
		{Identity: "a", Title: "Alpha"},
		{Identity: "b", Title: "Beta"},
		{Identity: "a", Title: "Alpha Duplicate"}, // 重复标识保留首条
	}
	require.True(t, ReplaceCatalog(v, entries, stores))

	assert.Equal(t, 3, Count())

	e, ok := EntryByIdentity("a")
	require.True(t, ok)
	assert.Equal(t, "Alpha", e.Title)

	_, ok = EntryByIdentity("missing")
	assert.False(t, ok)

	_, gotStores := Snapshot()
	assert.Equal(t, "Steam", gotStores["1"].Name)
}
