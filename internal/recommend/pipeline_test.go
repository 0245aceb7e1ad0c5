package recommend

import (
	"fmt"
	"testing"

	"github.com/lootradar/lootradar-backend/internal/catalog"
	"github.com/lootradar/lootradar-backend/internal/profile"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// openPrefs 返回一个不做类型过滤的宽松偏好
func openPrefs() profile.Preferences {
	return profile.Preferences{
		BudgetCeiling: 70,
		Mode:          profile.ModeAll,
		Likes:         map[string]bool{},
		Dislikes:      map[string]bool{},
	}
}

func TestRankFiltersAndOrders(t *testing.T) {
	prefs := openPrefs()
	entries := []catalog.GameEntry{
		{Identity: "low", Title: "Low", DiscountPercent: 10},
		{Identity: "high", Title: "High", DiscountPercent: 80},
		{Identity: "over-budget", Title: "Pricey", SalePrice: ptrF(100), DiscountPercent: 90},
		{Identity: "mid", Title: "Mid", DiscountPercent: 40},
	}

	result := Rank(entries, &prefs, RankOptions{})
	require.Len(t, result.Items, 3)
	// 按得分降序；超预算的条目被硬性排除
	assert.Equal(t, "high", result.Items[0].Entry.Identity)
	assert.Equal(t, "mid", result.Items[1].Entry.Identity)
	assert.Equal(t, "low", result.Items[2].Entry.Identity)
	assert.Equal(t, 3, result.MatchedCount)
}

func TestRankStableOnTies(t *testing.T) {
	prefs := openPrefs()
	// 三个同分条目必须保持目录原始顺序
	entries := []catalog.GameEntry{
		{Identity: "a", Title: "A", DiscountPercent: 50},
		{Identity: "b", Title: "B", DiscountPercent: 50},
		{Identity: "c", Title: "C", DiscountPercent: 50},
	}

	result := Rank(entries, &prefs, RankOptions{})
	require.Len(t, result.Items, 3)
	assert.Equal(t, "a", result.Items[0].Entry.Identity)
	assert.Equal(t, "b", result.Items[1].Entry.Identity)
	assert.Equal(t, "c", result.Items[2].Entry.Identity)
}

func TestRankCapsResults(t *testing.T) {
	prefs := openPrefs()
	var entries []catalog.GameEntry
	for i := 0; i < 50; i++ {
		entries = append(entries, catalog.GameEntry{
			Identity:        fmt.Sprintf("g%d", i),
			Title:           fmt.Sprintf("Game %d", i),
			DiscountPercent: 30,
		})
	}

	result := Rank(entries, &prefs, RankOptions{})
	// MatchedCount是截断前的总数，展示列表截断到上限
	assert.Equal(t, 50, result.MatchedCount)
	assert.Len(t, result.Items, MaxResults)
}

func TestRankExcludesDisliked(t *testing.T) {
	prefs := openPrefs()
	prefs.Dislikes["bad"] = true
	entries := []catalog.GameEntry{
		{Identity: "good", Title: "Good", DiscountPercent: 50},
		{Identity: "bad", Title: "Bad", DiscountPercent: 99, RatingPercent: ptrI(99), SalePrice: ptrF(1)},
	}

	result := Rank(entries, &prefs, RankOptions{})
	require.Len(t, result.Items, 1)
	assert.Equal(t, "good", result.Items[0].Entry.Identity)
	assert.Equal(t, 1, result.MatchedCount)
}

func TestRankSearchFilter(t *testing.T) {
	prefs := openPrefs()
	entries := []catalog.GameEntry{
		{Identity: "a", Title: "Elden Ring", DiscountPercent: 30},
		{Identity: "b", Title: "Stardew Valley", DiscountPercent: 95},
	}

	result := Rank(entries, &prefs, RankOptions{Search: "elden"})
	require.Len(t, result.Items, 1)
	assert.Equal(t, "a", result.Items[0].Entry.Identity)
	// 搜索视图不拆分精选，即使有条目满足精选条件
	assert.Empty(t, result.Featured)
}

func TestRankFeaturedSplit(t *testing.T) {
	prefs := openPrefs()
	entries := []catalog.GameEntry{
		{Identity: "free", Title: "Free Game", SalePrice: ptrF(0), DiscountPercent: 0, DealID: "D1"},
		{Identity: "deep", Title: "Deep Discount", DiscountPercent: 95},
		{Identity: "plain", Title: "Plain", DiscountPercent: 40},
	}

	result := Rank(entries, &prefs, RankOptions{Sort: SortDiscount})
	require.Len(t, result.Featured, 2)
	require.Len(t, result.Items, 1)
	assert.Equal(t, "plain", result.Items[0].Entry.Identity)

	t.Run("下限非默认时不拆分", func(t *testing.T) {
		strict := openPrefs()
		strict.MinDiscount = 10
		result := Rank(entries, &strict, RankOptions{Sort: SortDiscount})
		assert.Empty(t, result.Featured)
	})

	t.Run("非discount排序时不拆分", func(t *testing.T) {
		result := Rank(entries, &prefs, RankOptions{Sort: SortName})
		assert.Empty(t, result.Featured)
	})
}

func TestRankAlternativeSorts(t *testing.T) {
	prefs := openPrefs()
	entries := []catalog.GameEntry{
		{Identity: "b", Title: "Banana", SalePrice: ptrF(20), DiscountPercent: 50},
		{Identity: "a", Title: "apple", SalePrice: ptrF(5), DiscountPercent: 30},
		{Identity: "u", Title: "Unknown Price", DiscountPercent: 70},
	}

	t.Run("按价格排序且未知价格垫底", func(t *testing.T) {
		result := Rank(entries, &prefs, RankOptions{Sort: SortPrice})
		require.Len(t, result.Items, 3)
		assert.Equal(t, "a", result.Items[0].Entry.Identity)
		assert.Equal(t, "b", result.Items[1].Entry.Identity)
		assert.Equal(t, "u", result.Items[2].Entry.Identity)
	})

	t.Run("按名称排序大小写不敏感", func(t *testing.T) {
		result := Rank(entries, &prefs, RankOptions{Sort: SortName})
		require.Len(t, result.Items, 3)
		assert.Equal(t, "apple", result.Items[0].Entry.Title)
		assert.Equal(t, "Banana", result.Items[1].Entry.Title)
		assert.Equal(t, "Unknown Price", result.Items[2].Entry.Title)
	})
}
