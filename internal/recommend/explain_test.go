package recommend

import (
	"testing"

	"github.com/lootradar/lootradar-backend/internal/catalog"
	"github.com/stretchr/testify/assert"
)

func TestExplain(t *testing.T) {
	tests := []struct {
		name      string
		entry     catalog.GameEntry
		topGenres []string
		topTags   []string
		want      string
	}{
		{
			name:      "三段齐全",
			entry:     catalog.GameEntry{Genres: []string{"RPG"}, Tags: []string{"Souls-like"}, DiscountPercent: 80},
			topGenres: []string{"RPG"},
			topTags:   []string{"souls-like"},
			want:      "RPG · Souls-like · 80% off",
		},
		{
			name:      "最多取一个类型",
			entry:     catalog.GameEntry{Genres: []string{"Action", "RPG"}},
			topGenres: []string{"RPG", "Action"},
			want:      "Action",
		},
		{
			name:  "只有折扣",
			entry: catalog.GameEntry{Genres: []string{"Sports"}, DiscountPercent: 33},
			want:  "33% off",
		},
		{
			name:  "无任何部分时为空串",
			entry: catalog.GameEntry{Genres: []string{"Sports"}},
			want:  "",
		},
		{
			name:      "标签匹配大小写不敏感",
			entry:     catalog.GameEntry{Tags: []string{"ROGUELIKE"}},
			topTags:   []string{"roguelike"},
			topGenres: nil,
			want:      "ROGUELIKE",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Explain(&tt.entry, tt.topGenres, tt.topTags))
		})
	}
}

func TestConfidenceLabel(t *testing.T) {
	tests := []struct {
		name  string
		entry catalog.GameEntry
		want  string
	}{
		{"口碑和热度俱佳", catalog.GameEntry{RatingPercent: ptrI(90), ReviewCount: 2000}, "High"},
		{"高分深折", catalog.GameEntry{RatingPercent: ptrI(85), ReviewCount: 250, DiscountPercent: 60}, "High"},
		{"中等口碑", catalog.GameEntry{RatingPercent: ptrI(80), ReviewCount: 300}, "Medium"},
		{"只有深折", catalog.GameEntry{DiscountPercent: 70}, "Low"},
		{"无评分信息", catalog.GameEntry{}, "Low"},
		{"临界值75分", catalog.GameEntry{RatingPercent: ptrI(75), ReviewCount: 1000}, "Medium"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ConfidenceLabel(&tt.entry))
		})
	}
}
