package catalog

import "strings"

// genreKeywordEntry 将一个类型标签绑定到一组小写关键词子串
type genreKeywordEntry struct {
	Genre    string
	Keywords []string
}

// genreKeywords 是关键词推断的静态配置。
// 条目顺序即输出顺序；关键词列表是行为的一部分，修改会改变推断结果。
var genreKeywords = []genreKeywordEntry{
	{"RPG", []string{"rpg", "fantasy", "quest", "witcher", "dragon", "final fantasy", "baldur"}},
	{"Action", []string{"action", "assassin", "tomb raider", "hitman", "devil may cry"}},
	{"Adventure", []string{"adventure", "life is strange", "firewatch", "walking dead"}},
	{"Indie", []string{"indie", "stardew", "undertale", "cuphead", "celeste"}},
	{"FPS", []string{"shooter", "doom", "battlefield", "counter-strike", "halo", "overwatch"}},
	{"Strategy", []string{"strategy", "civilization", "xcom", "total war", "stellaris"}},
	{"Horror", []string{"horror", "resident evil", "dead space", "outlast", "alan wake"}},
	{"Racing", []string{"racing", "forza", "need for speed", "f1", "dirt"}},
	{"Sports", []string{"sports", "fifa", "nba", "madden", "wwe"}},
	{"Simulation", []string{"simulator", "simulation", "farming", "flight", "tycoon"}},
	{"Survival", []string{"survival", "rust", "dayz", "forest", "subnautica", "valheim"}},
	{"Puzzle", []string{"puzzle", "portal", "tetris", "witness"}},
	{"Open World", []string{"open world", "gta", "cyberpunk", "red dead", "skyrim"}},
	{"Multiplayer", []string{"multiplayer", "co-op", "online", "pvp", "battle royale"}},
	{"Platformer", []string{"platformer", "mario", "sonic", "rayman"}},
	{"Fighting", []string{"fighting", "street fighter", "tekken", "mortal kombat"}},
	{"Stealth", []string{"stealth", "dishonored", "thief", "splinter cell", "deus ex"}},
	{"Roguelike", []string{"roguelike", "roguelite", "hades", "slay the spire", "risk of rain"}},
	{"Souls-like", []string{"souls", "elden ring", "sekiro", "nioh", "lies of p"}},
	{"Metroidvania", []string{"metroidvania", "hollow knight", "ori", "dead cells", "blasphemous"}},
}

// AllGenres 返回所有可供筛选的类型标签，顺序与关键词表的声明顺序一致。
func AllGenres() []string {
	out := make([]string, len(genreKeywords))
	for i, entry := range genreKeywords {
		out[i] = entry.Genre
	}
	return out
}

// InferGenres 对自由文本做小写子串匹配，返回命中的类型标签。
// 这是一个纯函数；子串匹配会带来已知且可接受的误报。
func InferGenres(text string) []string {
	t := strings.ToLower(text)
	if t == "" {
		return nil
	}
	var out []string
	for _, entry := range genreKeywords {
		for _, kw := range entry.Keywords {
			if strings.Contains(t, kw) {
				out = append(out, entry.Genre)
				break
			}
		}
	}
	return out
}

// GenresFor 返回条目的类型标签。
// 结构化元数据非空时直接使用，关键词推断只作为兜底。
func GenresFor(entry *GameEntry) []string {
	if len(entry.Genres) > 0 {
		return entry.Genres
	}
	return InferGenres(entry.Title + " " + entry.RatingText)
}

// TagsFor 返回条目的自由文本标签，来源规则与GenresFor相同。
func TagsFor(entry *GameEntry) []string {
	if len(entry.Tags) > 0 {
		return entry.Tags
	}
	return InferGenres(entry.Title)
}
