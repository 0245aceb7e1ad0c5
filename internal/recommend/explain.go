package recommend

import (
	"fmt"
	"strings"

	"github.com/lootradar/lootradar-backend/internal/catalog"
)

// explainSeparator 是解释文本中各部分之间的固定分隔符
const explainSeparator = " · "

// Explain 为一个条目生成简短的"为什么展示"说明。
// 最多取一个出现在topGenres中的类型（按条目类型的迭代顺序取第一个命中），
// 最多取一个大小写不敏感地出现在topTags中的标签，
// 折扣为正时追加"{n}% off"。
// 没有任何部分适用时返回空串，调用方不应渲染空的解释。
func Explain(entry *catalog.GameEntry, topGenres []string, topTags []string) string {
	var parts []string

	for _, g := range catalog.GenresFor(entry) {
		if containsLabel(topGenres, g) {
			parts = append(parts, g)
			break
		}
	}

	for _, t := range catalog.TagsFor(entry) {
		if containsLabel(topTags, t) {
			parts = append(parts, t)
			break
		}
	}

	if entry.DiscountPercent > 0 {
		parts = append(parts, fmt.Sprintf("%d%% off", entry.DiscountPercent))
	}

	return strings.Join(parts, explainSeparator)
}

// containsLabel 判断标签是否出现在列表中（大小写不敏感）
func containsLabel(list []string, label string) bool {
	for _, v := range list {
		if strings.EqualFold(v, label) {
			return true
		}
	}
	return false
}

// ConfidenceLabel 给出推荐可信度的三档标签。
// 好评率、评价数量和折扣力度各自贡献积分，按积分分档。
func ConfidenceLabel(entry *catalog.GameEntry) string {
	rating := 0
	if entry.RatingPercent != nil {
		rating = *entry.RatingPercent
	}

	pts := 0
	if rating >= 85 {
		pts += 2
	} else if rating >= 75 {
		pts += 1
	}
	if entry.ReviewCount >= 1000 {
		pts += 2
	} else if entry.ReviewCount >= 250 {
		pts += 1
	}
	if entry.DiscountPercent >= 60 {
		pts += 1
	}

	if pts >= 4 {
		return "High"
	}
	if pts >= 2 {
		return "Medium"
	}
	return "Low"
}
