package main

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnrichDealsKeepsUnparsableRows(t *testing.T) {
	deals := []json.RawMessage{
		json.RawMessage(`{"title":"Good","steamAppID":"10"}`),
		json.RawMessage(`[]`), // 非对象形态的脏记录
		json.RawMessage(`{"title":"NoApp"}`),
	}
	meta := &steamMeta{ID: 10, Name: "Good", Source: "steam"}
	lookups := 0
	lookup := func(appID, title string) *steamMeta {
		lookups++
		assert.Equal(t, "10", appID)
		return meta
	}

	enriched, hits := enrichDeals(deals, lookup)
	require.Len(t, enriched, 3)
	assert.Equal(t, 1, hits)
	assert.Equal(t, 1, lookups)

	// 正常记录被附加元数据
	var first map[string]interface{}
	data, err := json.Marshal(enriched[0])
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &first))
	assert.Equal(t, "Good", first["title"])
	assert.NotNil(t, first["rawg"])

	// 脏记录原样透传，序列化不报错
	data, err = json.Marshal(enriched[1])
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(data))

	// 无appID的记录不触发查询，rawg为null
	var third map[string]interface{}
	data, err = json.Marshal(enriched[2])
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &third))
	_, hasField := third["rawg"]
	assert.True(t, hasField)
	assert.Nil(t, third["rawg"])
}

func TestEnrichDealsCachesByAppID(t *testing.T) {
	deals := []json.RawMessage{
		json.RawMessage(`{"title":"A","steamAppID":"42"}`),
		json.RawMessage(`{"title":"B","steamAppID":"42"}`),
		json.RawMessage(`{"title":"C","steamAppID":"7"}`),
	}
	lookups := 0
	lookup := func(appID, title string) *steamMeta {
		lookups++
		if appID == "7" {
			// 查询失败的appID也被缓存，不再重试
			return nil
		}
		return &steamMeta{Name: title, Source: "steam"}
	}

	enriched, hits := enrichDeals(deals, lookup)
	require.Len(t, enriched, 3)
	assert.Equal(t, 2, hits)
	assert.Equal(t, 2, lookups)
}
