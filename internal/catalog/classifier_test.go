package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInferGenres(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{"空文本", "", nil},
		{"无命中", "Some Plain Game", nil},
		{"单关键词", "The Witcher 3", []string{"RPG"}},
		{"大小写不敏感", "DOOM Eternal", []string{"FPS"}},
		{"多类型按声明顺序", "Fantasy Quest Online", []string{"RPG", "Multiplayer"}},
		{"同类型多关键词只计一次", "Fantasy Dragon Quest", []string{"RPG"}},
		{"子串误报是预期行为", "Dirt Rally", []string{"Racing"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, InferGenres(tt.text))
		})
	}
}

func TestAllGenres(t *testing.T) {
	genres := AllGenres()
	assert.Len(t, genres, 20)
	// 输出顺序必须与关键词表的声明顺序一致
	assert.Equal(t, "RPG", genres[0])
	assert.Equal(t, "Metroidvania", genres[19])
}

func TestGenresFor(t *testing.T) {
	t.Run("结构化元数据优先", func(t *testing.T) {
		entry := GameEntry{Title: "Doom", Genres: []string{"Shooter", "Classic"}}
		assert.Equal(t, []string{"Shooter", "Classic"}, GenresFor(&entry))
	})

	t.Run("无元数据时回退到关键词推断", func(t *testing.T) {
		entry := GameEntry{Title: "Resident Evil 4", RatingText: "Overwhelmingly Positive"}
		assert.Equal(t, []string{"Horror"}, GenresFor(&entry))
	})

	t.Run("推断同时考虑标题和评价文本", func(t *testing.T) {
		entry := GameEntry{Title: "Some Game", RatingText: "great co-op experience"}
		assert.Equal(t, []string{"Multiplayer"}, GenresFor(&entry))
	})
}

func TestTagsFor(t *testing.T) {
	t.Run("结构化标签优先", func(t *testing.T) {
		entry := GameEntry{Title: "Hades", Tags: []string{"Rogue-lite", "Greek"}}
		assert.Equal(t, []string{"Rogue-lite", "Greek"}, TagsFor(&entry))
	})

	t.Run("无标签时只从标题推断", func(t *testing.T) {
		entry := GameEntry{Title: "Hades", RatingText: "survival mention"}
		assert.Equal(t, []string{"Roguelike"}, TagsFor(&entry))
	})
}
