package recommend

import (
	"strings"

	"github.com/lootradar/lootradar-backend/internal/catalog"
	"github.com/lootradar/lootradar-backend/internal/profile"
)

// --- Service-Level Data Transfer Objects (DTOs) ---

// CardDTO 是推荐列表中单张卡片所需的全部数据
type CardDTO struct {
	Entry      catalog.GameEntry
	Score      float64
	Why        string
	Confidence string
}

// RecommendationsDTO 是推荐接口的完整数据包
type RecommendationsDTO struct {
	Items        []CardDTO
	Featured     []CardDTO
	MatchedCount int
	Mode         string
}

// BecauseDTO 是"因为你喜欢"接口的数据包
type BecauseDTO struct {
	Items  []CardDTO
	Reason string
	// HasLikes 为false时Items必然为空，前端应展示引导文案
	HasLikes bool
}

// --- Service Functions ---

// GetRecommendationsForUser 执行一次完整的推荐计算。
// 目录与偏好在调用时各取一次快照，计算本身是纯函数式的。
func GetRecommendationsForUser(userID string, opts RankOptions) *RecommendationsDTO {
	entries, _ := catalog.Snapshot()
	prefs := profile.Load(userID)

	result := Rank(entries, &prefs, opts)

	// 主列表的解释用选中类型同时作为topGenres和topTags：
	// 用户的筛选意图就是主列表的"为什么"
	dto := &RecommendationsDTO{
		MatchedCount: result.MatchedCount,
		Mode:         prefs.Mode,
	}
	for i := range result.Featured {
		dto.Featured = append(dto.Featured, makeCard(&result.Featured[i], prefs.Genres, prefs.Genres))
	}
	for i := range result.Items {
		dto.Items = append(dto.Items, makeCard(&result.Items[i], prefs.Genres, prefs.Genres))
	}
	return dto
}

// GetBecauseForUser 计算"因为你喜欢"的二级推荐列表
func GetBecauseForUser(userID string) *BecauseDTO {
	entries, _ := catalog.Snapshot()
	prefs := profile.Load(userID)

	if len(prefs.Likes) == 0 {
		return &BecauseDTO{HasLikes: false}
	}

	// 按目录顺序收集被喜欢的条目。
	// likes集合本身无序，频率统计的"首次出现"平局规则依赖这里的确定性。
	likedEntries := make([]catalog.GameEntry, 0, len(prefs.Likes))
	for i := range entries {
		if prefs.Likes[entries[i].Identity] {
			likedEntries = append(likedEntries, entries[i])
		}
	}

	result := Rank(entries, &prefs, RankOptions{})
	blend := Blend(result.Candidates, likedEntries, &prefs)

	dto := &BecauseDTO{HasLikes: true}
	if len(blend.TopGenres) > 0 {
		dto.Reason = "Based on your likes in: " + strings.Join(blend.TopGenres, ", ") + "."
	} else {
		dto.Reason = "Based on your likes in: your favorites."
	}
	for i := range blend.Items {
		dto.Items = append(dto.Items, makeCard(&blend.Items[i], blend.TopGenres, blend.TopTags))
	}
	return dto
}

// makeCard 组装单张卡片的数据
func makeCard(se *ScoredEntry, topGenres []string, topTags []string) CardDTO {
	return CardDTO{
		Entry:      se.Entry,
		Score:      se.Score,
		Why:        Explain(&se.Entry, topGenres, topTags),
		Confidence: ConfidenceLabel(&se.Entry),
	}
}
