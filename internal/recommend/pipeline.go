package recommend

import (
	"sort"
	"strings"

	"github.com/lootradar/lootradar-backend/internal/catalog"
	"github.com/lootradar/lootradar-backend/internal/profile"
)

// MaxResults 是排名结果的固定上限
const MaxResults = 36

// FeaturedDiscountFloor 是进入精选分组的折扣门槛
const FeaturedDiscountFloor = 90

// SortDiscount / SortPrice / SortName 是列表的三种排序模式
const (
	SortDiscount = "discount"
	SortPrice    = "price"
	SortName     = "name"
)

// RankOptions 描述一次排名请求的展示层参数
type RankOptions struct {
	// Search 非空时按标题做大小写不敏感的子串过滤
	Search string
	// Sort 是排序模式，默认discount
	Sort string
}

// ScoredEntry 是一个条目和它的得分
type ScoredEntry struct {
	Entry catalog.GameEntry
	Score float64
}

// RankResult 是排名管线的输出
type RankResult struct {
	// Items 是最终展示的排名列表，长度不超过MaxResults。
	// 精选分组生效时，Items不包含Featured中的条目。
	Items []ScoredEntry

	// Featured 是精选分组：免费或折扣不低于FeaturedDiscountFloor的条目。
	// 仅在默认视图条件下非空（见Rank的说明）。
	Featured []ScoredEntry

	// MatchedCount 是截断前通过全部过滤的条目总数
	MatchedCount int

	// Candidates 是得分为正的完整候选列表（按得分降序，截断和
	// 不喜欢过滤之前），供亲和性混排使用。
	Candidates []ScoredEntry
}

// Rank 对目录执行评分、过滤、排序和截断。
// 每次调用都是全新计算，输出有限且确定：
//   - 只保留得分大于0的条目
//   - 被不喜欢的条目被再次排除（评分中的惩罚之外的防御性双重过滤）
//   - 按得分降序排列，平局保持原始目录顺序（稳定排序）
//   - 截断到MaxResults
//
// 精选拆分是展示层行为：仅当无搜索词、排序为discount、
// 且MinDiscount与MinRating都处于默认零值时才发生；
// 否则返回平铺的完整列表。
func Rank(entries []catalog.GameEntry, prefs *profile.Preferences, opts RankOptions) RankResult {
	if opts.Sort == "" {
		opts.Sort = SortDiscount
	}
	search := strings.ToLower(strings.TrimSpace(opts.Search))

	scored := make([]ScoredEntry, 0, len(entries))
	for i := range entries {
		e := entries[i]
		if search != "" && !strings.Contains(strings.ToLower(e.Title), search) {
			continue
		}
		if s := Score(&e, prefs); s > 0 {
			scored = append(scored, ScoredEntry{Entry: e, Score: s})
		}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	matched := make([]ScoredEntry, 0, len(scored))
	for _, se := range scored {
		if prefs.Dislikes[se.Entry.Identity] {
			continue
		}
		matched = append(matched, se)
	}

	result := RankResult{
		MatchedCount: len(matched),
		Candidates:   scored,
	}

	items := matched
	if len(items) > MaxResults {
		items = items[:MaxResults]
	}

	if featuredEligible(prefs, opts, search) {
		for _, se := range items {
			if isFeatured(&se.Entry) {
				result.Featured = append(result.Featured, se)
			} else {
				result.Items = append(result.Items, se)
			}
		}
		return result
	}

	// 非默认视图：不拆分精选，按请求的排序模式平铺
	result.Items = items
	switch opts.Sort {
	case SortPrice:
		sort.SliceStable(result.Items, func(i, j int) bool {
			return displayPrice(&result.Items[i].Entry) < displayPrice(&result.Items[j].Entry)
		})
	case SortName:
		sort.SliceStable(result.Items, func(i, j int) bool {
			return strings.ToLower(result.Items[i].Entry.Title) < strings.ToLower(result.Items[j].Entry.Title)
		})
	}
	return result
}

// featuredEligible 判断本次请求是否满足精选拆分的全部条件
func featuredEligible(prefs *profile.Preferences, opts RankOptions, search string) bool {
	return search == "" &&
		opts.Sort == SortDiscount &&
		prefs.MinDiscount == 0 &&
		prefs.MinRating == 0
}

// isFeatured 判断条目是否属于精选分组：免费，或折扣不低于门槛
func isFeatured(e *catalog.GameEntry) bool {
	if e.SalePrice != nil && *e.SalePrice == 0 {
		return true
	}
	return e.DiscountPercent >= FeaturedDiscountFloor
}

// displayPrice 返回用于价格排序的售价，未知价格排在最后
func displayPrice(e *catalog.GameEntry) float64 {
	if e.SalePrice == nil {
		return 1 << 20
	}
	return *e.SalePrice
}
