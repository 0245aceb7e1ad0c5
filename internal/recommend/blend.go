package recommend

import (
	"sort"
	"strings"

	"github.com/lootradar/lootradar-backend/internal/catalog"
	"github.com/lootradar/lootradar-backend/internal/profile"
)

// BlendLimit 是"因为你喜欢"列表的长度上限
const BlendLimit = 8

const (
	topGenreCount = 3
	topTagCount   = 6

	genreBoost = 0.12
	tagBoost   = 0.04
)

// BlendResult 是亲和性混排的输出
type BlendResult struct {
	// Items 是混排后的推荐列表，长度不超过BlendLimit。
	// 用户没有任何喜欢记录时为空，调用方此时应展示中性的提示文案。
	Items []ScoredEntry

	// TopGenres / TopTags 是从喜欢记录中提炼的高频类型和标签，
	// 同时供解释文本使用
	TopGenres []string
	TopTags   []string
}

// frequencyTally 按出现次数统计标签，并记录首次出现的顺序用于平局
type frequencyTally struct {
	counts    map[string]int
	firstSeen map[string]int
	order     int
}

func newFrequencyTally() *frequencyTally {
	return &frequencyTally{
		counts:    make(map[string]int),
		firstSeen: make(map[string]int),
	}
}

func (t *frequencyTally) add(label string) {
	if label == "" {
		return
	}
	if _, seen := t.counts[label]; !seen {
		t.firstSeen[label] = t.order
		t.order++
	}
	t.counts[label]++
}

// top 返回出现次数最多的前n个标签，平局按首次出现顺序
func (t *frequencyTally) top(n int) []string {
	keys := make([]string, 0, len(t.counts))
	for k := range t.counts {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if t.counts[keys[i]] != t.counts[keys[j]] {
			return t.counts[keys[i]] > t.counts[keys[j]]
		}
		return t.firstSeen[keys[i]] < t.firstSeen[keys[j]]
	})
	if len(keys) > n {
		keys = keys[:n]
	}
	return keys
}

// Blend 基于用户已喜欢的条目派生二级排名。
// 统计喜欢条目的类型/标签频率（标签统一小写），取前3类型和前6标签；
// 对既未被喜欢也未被不喜欢的候选条目，按命中数量给予加成：
// 0.12×命中类型数 + 0.04×命中标签数，叠加在基础得分上；
// 按混排得分降序取前BlendLimit个。
// likedEntries为空时返回空结果。
func Blend(candidates []ScoredEntry, likedEntries []catalog.GameEntry, prefs *profile.Preferences) BlendResult {
	if len(likedEntries) == 0 {
		return BlendResult{}
	}

	genreTally := newFrequencyTally()
	tagTally := newFrequencyTally()
	for i := range likedEntries {
		for _, g := range catalog.GenresFor(&likedEntries[i]) {
			genreTally.add(g)
		}
		for _, t := range catalog.TagsFor(&likedEntries[i]) {
			tagTally.add(strings.ToLower(t))
		}
	}

	topGenres := genreTally.top(topGenreCount)
	topTags := tagTally.top(topTagCount)

	topGenreSet := make(map[string]bool, len(topGenres))
	for _, g := range topGenres {
		topGenreSet[g] = true
	}
	topTagSet := make(map[string]bool, len(topTags))
	for _, t := range topTags {
		topTagSet[t] = true
	}

	blended := make([]ScoredEntry, 0, len(candidates))
	for _, se := range candidates {
		id := se.Entry.Identity
		if prefs.Likes[id] || prefs.Dislikes[id] {
			continue
		}

		boost := 0.0
		for _, g := range catalog.GenresFor(&se.Entry) {
			if topGenreSet[g] {
				boost += genreBoost
			}
		}
		for _, t := range catalog.TagsFor(&se.Entry) {
			if topTagSet[strings.ToLower(t)] {
				boost += tagBoost
			}
		}

		blended = append(blended, ScoredEntry{Entry: se.Entry, Score: se.Score + boost})
	}

	sort.SliceStable(blended, func(i, j int) bool {
		return blended[i].Score > blended[j].Score
	})
	if len(blended) > BlendLimit {
		blended = blended[:BlendLimit]
	}

	return BlendResult{Items: blended, TopGenres: topGenres, TopTags: topTags}
}
