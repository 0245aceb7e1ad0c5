package recommend

import (
	"testing"

	"github.com/lootradar/lootradar-backend/internal/catalog"
	"github.com/lootradar/lootradar-backend/internal/profile"
	"github.com/stretchr/testify/assert"
)

func ptrF(v float64) *float64 { return &v }
func ptrI(v int) *int         { return &v }

func TestScoreHardExclusions(t *testing.T) {
	tests := []struct {
		name  string
		entry catalog.GameEntry
		prefs profile.Preferences
	}{
		{
			name:  "已知售价超出预算",
			entry: catalog.GameEntry{SalePrice: ptrF(80)},
			prefs: profile.Preferences{BudgetCeiling: 70, Mode: profile.ModeAll},
		},
		{
			name:  "好评率低于下限",
			entry: catalog.GameEntry{RatingPercent: ptrI(50)},
			prefs: profile.Preferences{BudgetCeiling: 70, MinRating: 60, Mode: profile.ModeAll},
		},
		{
			name:  "未知好评率按0处理",
			entry: catalog.GameEntry{},
			prefs: profile.Preferences{BudgetCeiling: 70, MinRating: 1, Mode: profile.ModeAll},
		},
		{
			name:  "on-sale模式下折扣低于下限",
			entry: catalog.GameEntry{DiscountPercent: 20, DealID: "D"},
			prefs: profile.Preferences{BudgetCeiling: 70, MinDiscount: 30, Mode: profile.ModeOnSale},
		},
		{
			name:  "on-sale模式下条目未在促销",
			entry: catalog.GameEntry{DiscountPercent: 0},
			prefs: profile.Preferences{BudgetCeiling: 70, Mode: profile.ModeOnSale},
		},
		{
			name:  "类型过滤零交集",
			entry: catalog.GameEntry{Genres: []string{"Sports"}},
			prefs: profile.Preferences{BudgetCeiling: 70, Mode: profile.ModeAll, Genres: []string{"RPG"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, float64(RejectedScore), Score(&tt.entry, &tt.prefs))
		})
	}
}

func TestScoreMinDiscountOnlyInOnSaleMode(t *testing.T) {
	// 折扣下限只在on-sale模式下生效，all模式不因低折扣排除
	entry := catalog.GameEntry{Genres: []string{"RPG"}, DiscountPercent: 20, RatingPercent: ptrI(80), DealID: "D"}
	prefs := profile.Preferences{BudgetCeiling: 70, MinDiscount: 50, Mode: profile.ModeAll, Genres: []string{"RPG"}}

	assert.Greater(t, Score(&entry, &prefs), 0.0)

	prefs.Mode = profile.ModeOnSale
	assert.Equal(t, float64(RejectedScore), Score(&entry, &prefs))
}

func TestScoreWeightedSum(t *testing.T) {
	// genre 1/3×0.35 + discount 0.8×0.25 + rating 0.9×0.25 + price (1-10/70)×0.15
	entry := catalog.GameEntry{
		Identity:        "g1",
		Genres:          []string{"RPG"},
		DiscountPercent: 80,
		RatingPercent:   ptrI(90),
		SalePrice:       ptrF(10),
	}
	prefs := profile.Preferences{
		BudgetCeiling: 70,
		Mode:          profile.ModeAll,
		Genres:        []string{"RPG", "Action", "Indie"},
	}

	assert.Equal(t, 0.6702, Score(&entry, &prefs))
}

func TestScoreEdgeCases(t *testing.T) {
	t.Run("空类型集合表示全部匹配", func(t *testing.T) {
		entry := catalog.GameEntry{Genres: []string{"Sports"}, DiscountPercent: 50, RatingPercent: ptrI(80)}
		prefs := profile.Preferences{BudgetCeiling: 70, Mode: profile.ModeAll}
		// 类型子得分为0但不排除: 0.5×0.25 + 0.8×0.25 = 0.325
		assert.Equal(t, 0.325, Score(&entry, &prefs))
	})

	t.Run("命中数超过选中数时类型子得分钳制到1", func(t *testing.T) {
		entry := catalog.GameEntry{Genres: []string{"RPG", "Action"}, SalePrice: ptrF(70)}
		prefs := profile.Preferences{BudgetCeiling: 70, Mode: profile.ModeAll, Genres: []string{"RPG"}}
		// 2命中/1选中 → 钳制后0.35，其余子得分均为0
		assert.Equal(t, 0.35, Score(&entry, &prefs))
	})

	t.Run("免费游戏拿满可负担性加成", func(t *testing.T) {
		entry := catalog.GameEntry{SalePrice: ptrF(0)}
		prefs := profile.Preferences{BudgetCeiling: 70, Mode: profile.ModeAll}
		assert.Equal(t, 0.15, Score(&entry, &prefs))
	})

	t.Run("未知售价不贡献可负担性加成", func(t *testing.T) {
		entry := catalog.GameEntry{DiscountPercent: 40}
		prefs := profile.Preferences{BudgetCeiling: 70, Mode: profile.ModeAll}
		assert.Equal(t, 0.1, Score(&entry, &prefs))
	})

	t.Run("类型匹配大小写不敏感", func(t *testing.T) {
		entry := catalog.GameEntry{Genres: []string{"rpg"}}
		prefs := profile.Preferences{BudgetCeiling: 70, Mode: profile.ModeAll, Genres: []string{"RPG"}}
		assert.Greater(t, Score(&entry, &prefs), 0.0)
	})
}

func TestScoreLikesAndDislikes(t *testing.T) {
	entry := catalog.GameEntry{
		Identity:        "g1",
		Genres:          []string{"RPG"},
		DiscountPercent: 80,
		RatingPercent:   ptrI(90),
		SalePrice:       ptrF(10),
	}
	prefs := profile.Preferences{
		BudgetCeiling: 70,
		Mode:          profile.ModeAll,
		Genres:        []string{"RPG", "Action", "Indie"},
		Likes:         map[string]bool{"g1": true},
	}

	assert.Equal(t, 0.8702, Score(&entry, &prefs))

	prefs.Likes = nil
	prefs.Dislikes = map[string]bool{"g1": true}
	assert.Equal(t, -0.3298, Score(&entry, &prefs))
}
