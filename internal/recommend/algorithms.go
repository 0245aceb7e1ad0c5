package recommend

import (
	"math"
	"strings"

	"github.com/lootradar/lootradar-backend/internal/catalog"
	"github.com/lootradar/lootradar-backend/internal/profile"
)

// RejectedScore 是硬性排除的哨兵值。
// 任何一个硬性排除谓词命中时直接返回它，不再计算加权得分。
const RejectedScore = -999

// --- 加权求和的权重 ---

const (
	genreWeight    = 0.35
	discountWeight = 0.25
	ratingWeight   = 0.25
	priceWeight    = 0.15

	likeBonus      = 0.2
	dislikePenalty = 1.0
)

// normalizeLabel 统一标签的比较形式：小写并去除首尾空白
func normalizeLabel(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// countGenreMatches 统计entry的类型标签中有多少个出现在选中集合里（大小写不敏感）
func countGenreMatches(genres []string, selected []string) int {
	if len(selected) == 0 {
		return 0
	}
	set := make(map[string]bool, len(selected))
	for _, g := range selected {
		set[normalizeLabel(g)] = true
	}
	count := 0
	for _, g := range genres {
		if set[normalizeLabel(g)] {
			count++
		}
	}
	return count
}

// clamp01 把子得分钳制到[0,1]
func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Score 计算一个条目相对于用户偏好的相关性得分。
// 返回值越大越相关；RejectedScore表示条目被硬性排除。
//
// 硬性排除谓词按固定顺序求值：
//  1. 已知售价超出预算上限
//  2. 好评率低于下限
//  3. 折扣低于下限（仅在on-sale模式下生效，模式切换是刻意的配置开关）
//  4. on-sale模式下条目既无正折扣也无折扣记录标识
//  5. 类型过滤生效（选中集合非空）且与条目类型零交集
//
// 空的选中类型集合表示不做类型过滤（全部匹配）。
// 函数对likes/dislikes无条件安全：被不喜欢的条目得到-1.0的惩罚，
// 即使上游通常已经把它们过滤掉。
func Score(entry *catalog.GameEntry, prefs *profile.Preferences) float64 {
	if entry.SalePrice != nil && *entry.SalePrice > prefs.BudgetCeiling {
		return RejectedScore
	}

	rating := 0
	if entry.RatingPercent != nil {
		rating = *entry.RatingPercent
	}
	if rating < prefs.MinRating {
		return RejectedScore
	}

	if prefs.Mode == profile.ModeOnSale {
		if entry.DiscountPercent < prefs.MinDiscount {
			return RejectedScore
		}
		if !entry.OnSale() {
			return RejectedScore
		}
	}

	genres := catalog.GenresFor(entry)
	matches := countGenreMatches(genres, prefs.Genres)
	if len(prefs.Genres) > 0 && matches == 0 {
		return RejectedScore
	}

	// 四个子得分各自钳制到[0,1]后加权求和
	score := 0.0
	score += clamp01(float64(matches)/math.Max(1, float64(len(prefs.Genres)))) * genreWeight
	score += clamp01(float64(entry.DiscountPercent)/100) * discountWeight
	score += clamp01(float64(rating)/100) * ratingWeight

	// 未知售价按预算计，即不贡献任何可负担性加成
	effectivePrice := prefs.BudgetCeiling
	if entry.SalePrice != nil {
		effectivePrice = *entry.SalePrice
	}
	score += math.Max(0, 1-effectivePrice/math.Max(1, prefs.BudgetCeiling)) * priceWeight

	if prefs.Likes[entry.Identity] {
		score += likeBonus
	}
	if prefs.Dislikes[entry.Identity] {
		score -= dislikePenalty
	}

	// 四位小数舍入，保证测试中的确定性
	return math.Round(score*10000) / 10000
}
