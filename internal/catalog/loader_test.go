package catalog

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlexFloat(t *testing.T) {
	var doc struct {
		A *flexFloat `json:"a"`
		B *flexFloat `json:"b"`
		C *flexFloat `json:"c"`
	}
	// CheapShark把数字序列化为字符串，SteamSpy是真正的数字
	err := json.Unmarshal([]byte(`{"a":"14.99","b":59.99,"c":null}`), &doc)
	require.NoError(t, err)
	assert.Equal(t, flexFloat(14.99), *doc.A)
	assert.Equal(t, flexFloat(59.99), *doc.B)
	assert.Nil(t, doc.C)
}

func TestClampDiscount(t *testing.T) {
	assert.Equal(t, 0, clampDiscount(-5))
	assert.Equal(t, 0, clampDiscount(0))
	assert.Equal(t, 75, clampDiscount(75.4))
	assert.Equal(t, 76, clampDiscount(75.5))
	assert.Equal(t, 100, clampDiscount(130))
}

func TestMakeIdentity(t *testing.T) {
	assert.Equal(t, "deal-1", makeIdentity("deal-1", "42"))
	assert.Equal(t, "app-42", makeIdentity("", "42"))
	assert.Equal(t, "app-unknown", makeIdentity("", ""))
}

func TestNormalizeDeal(t *testing.T) {
	var d rawDeal
	require.NoError(t, json.Unmarshal([]byte(`{
		"title": "Celeste",
		"salePrice": "4.99",
		"normalPrice": "19.99",
		"savings": "75.012",
		"storeID": "1",
		"dealID": "XYZ",
		"thumb": "http://img/celeste.jpg",
		"steamAppID": "504230",
		"steamRatingPercent": "97",
		"steamRatingCount": "50000",
		"steamRatingText": "Overwhelmingly Positive"
	}`), &d))

	entry := normalizeDeal(d)
	assert.Equal(t, "XYZ", entry.Identity)
	assert.Equal(t, "Celeste", entry.Title)
	require.NotNil(t, entry.SalePrice)
	assert.Equal(t, 4.99, *entry.SalePrice)
	assert.Equal(t, 19.99, entry.NormalPrice)
	assert.Equal(t, 75, entry.DiscountPercent)
	require.NotNil(t, entry.RatingPercent)
	assert.Equal(t, 97, *entry.RatingPercent)
	assert.Equal(t, 50000, entry.ReviewCount)
	assert.Equal(t, "504230", entry.SteamAppID)
	assert.Contains(t, entry.LinkURL, "cheapshark.com/redirect")
}

func TestNormalizeDealWithMetadata(t *testing.T) {
	var d rawDeal
	require.NoError(t, json.Unmarshal([]byte(`{
		"title": "celeste (2018)",
		"dealID": "XYZ",
		"rawg": {
			"name": "Celeste",
			"genres": ["Platformer", "Indie"],
			"tags": ["Precision", "Pixel Graphics"],
			"backgroundImage": "http://img/header.jpg"
		}
	}`), &d))

	entry := normalizeDeal(d)
	// 附带元数据优先于CheapShark自身字段
	assert.Equal(t, "Celeste", entry.Title)
	assert.Equal(t, []string{"Platformer", "Indie"}, entry.Genres)
	assert.Equal(t, []string{"Precision", "Pixel Graphics"}, entry.Tags)
	assert.Equal(t, "http://img/header.jpg", entry.ThumbnailURL)
}

func TestDedupeDeals(t *testing.T) {
	entries := []GameEntry{
		{Identity: "a1", Title: "Alpha", DiscountPercent: 30},
		{Identity: "b1", Title: "Beta", DiscountPercent: 50},
		{Identity: "a2", Title: "Alpha", DiscountPercent: 80},
		{Identity: "c1", Title: "Gamma", DiscountPercent: 10},
	}

	out := dedupeDeals(entries)
	require.Len(t, out, 3)
	// 同名保留折扣更高的一条，位置保持首次出现处
	assert.Equal(t, "a2", out[0].Identity)
	assert.Equal(t, "b1", out[1].Identity)
	assert.Equal(t, "c1", out[2].Identity)
}

func TestMergeWithDeal(t *testing.T) {
	price := 9.99
	rating := 88
	base := GameEntry{
		Identity:      "app-10",
		Title:         "Base Title",
		Genres:        []string{"Strategy"},
		Tags:          []string{"4X"},
		SalePrice:     &price,
		NormalPrice:   29.99,
		RatingPercent: &rating,
		ReviewCount:   1200,
		ThumbnailURL:  "http://img/base.jpg",
		SteamAppID:    "10",
	}
	deal := GameEntry{
		Identity:        "DEAL",
		Title:           "Deal Title",
		DiscountPercent: 66,
		DealID:          "DEAL",
	}

	merged := mergeWithDeal(base, deal)
	// 折扣记录的字段优先，缺失处由目录记录补齐
	assert.Equal(t, "DEAL", merged.Identity)
	assert.Equal(t, "Deal Title", merged.Title)
	assert.Equal(t, 66, merged.DiscountPercent)
	assert.Equal(t, []string{"Strategy"}, merged.Genres)
	assert.Equal(t, []string{"4X"}, merged.Tags)
	assert.Equal(t, &price, merged.SalePrice)
	assert.Equal(t, 29.99, merged.NormalPrice)
	assert.Equal(t, &rating, merged.RatingPercent)
	assert.Equal(t, 1200, merged.ReviewCount)
	assert.Equal(t, "http://img/base.jpg", merged.ThumbnailURL)
	assert.Equal(t, "10", merged.SteamAppID)
}

func writeSnapshot(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
}

func TestBuildCatalog(t *testing.T) {
	t.Run("优先enriched快照并与伞形目录对账", func(t *testing.T) {
		dir := t.TempDir()
		writeSnapshot(t, dir, EnrichedSnapshotFile, `{
			"stores": {"1": {"name": "Steam", "icon": "icon.png"}},
			"games": [
				{"title": "Alpha", "dealID": "D1", "steamAppID": "10", "savings": "50"}
			]
		}`)
		writeSnapshot(t, dir, CatalogSnapshotFile, `{
			"games": [
				{"appid": "10", "title": "Alpha", "genres": ["Strategy"], "positive": 900},
				{"appid": "20", "title": "Beta", "genres": ["Indie"], "rating": 80}
			]
		}`)

		entries, stores, err := BuildCatalog(dir)
		require.NoError(t, err)
		require.Len(t, entries, 2)
		assert.Equal(t, "Steam", stores["1"].Name)

		// appid=10 命中折扣记录，折扣字段覆盖目录字段
		assert.Equal(t, "D1", entries[0].Identity)
		assert.Equal(t, 50, entries[0].DiscountPercent)
		assert.Equal(t, []string{"Strategy"}, entries[0].Genres)
		assert.Equal(t, 900, entries[0].ReviewCount)

		// appid=20 没有折扣记录，保持目录原貌
		assert.Equal(t, "app-20", entries[1].Identity)
		require.NotNil(t, entries[1].RatingPercent)
		assert.Equal(t, 80, *entries[1].RatingPercent)
	})

	t.Run("enriched缺失时回退到deals快照", func(t *testing.T) {
		dir := t.TempDir()
		writeSnapshot(t, dir, DealsSnapshotFile, `{
			"stores": {},
			"deals": [{"title": "Gamma", "dealID": "D9", "savings": "30"}]
		}`)

		entries, _, err := BuildCatalog(dir)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, "D9", entries[0].Identity)
	})

	t.Run("两个折扣快照都缺失时报错", func(t *testing.T) {
		_, _, err := BuildCatalog(t.TempDir())
		assert.Error(t, err)
	})

	t.Run("伞形目录缺失时目录即折扣列表", func(t *testing.T) {
		dir := t.TempDir()
		writeSnapshot(t, dir, DealsSnapshotFile, `{
			"deals": [{"title": "Delta", "dealID": "D2"}]
		}`)

		entries, _, err := BuildCatalog(dir)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, "Delta", entries[0].Title)
	})
}
