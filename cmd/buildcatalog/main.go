package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// 用SteamSpy的分页"all"接口构建伞形目录（无需API密钥），写入games-catalog.json
// 用法:
//   go run ./cmd/buildcatalog
//   MAX_GAMES=8000 MAX_PAGES=12 go run ./cmd/buildcatalog

var httpClient = &http.Client{Timeout: 30 * time.Second}

// steamSpyRow 对应SteamSpy all接口的一条记录
type steamSpyRow struct {
	AppID          json.Number     `json:"appid"`
	Name           string          `json:"name"`
	Owners         string          `json:"owners"`
	Positive       int             `json:"positive"`
	Negative       int             `json:"negative"`
	ScoreRank      json.Number     `json:"score_rank"`
	Userscore      float64         `json:"userscore"`
	AverageForever int             `json:"average_forever"`
	Average2Weeks  int             `json:"average_2weeks"`
	Price          json.Number     `json:"price"`
	InitialPrice   json.Number     `json:"initialprice"`
	Discount       json.Number     `json:"discount"`
	Genre          string          `json:"genre"`
	Tags           json.RawMessage `json:"tags"`
}

// catalogGame 是写入快照的目录条目
type catalogGame struct {
	AppID           string   `json:"appid"`
	Title           string   `json:"title"`
	Genres          []string `json:"genres"`
	Tags            []string `json:"tags"`
	Rating          float64  `json:"rating"`
	Userscore       float64  `json:"userscore"`
	Owners          string   `json:"owners"`
	AvgForever      int      `json:"avg_forever"`
	Avg2Weeks       int      `json:"avg_2weeks"`
	PriceUSD        *float64 `json:"price_usd"`
	InitialPriceUSD *float64 `json:"initial_price_usd"`
	Discount        float64  `json:"discount"`
	Positive        int      `json:"positive"`
	Negative        int      `json:"negative"`
	Thumb           string   `json:"thumb"`
}

// snapshot 是games-catalog.json的顶层结构
type snapshot struct {
	UpdatedAt    string        `json:"updatedAt"`
	Source       string        `json:"source"`
	PagesFetched int           `json:"pagesFetched"`
	GameCount    int           `json:"gameCount"`
	Games        []catalogGame `json:"games"`
}

func fetchJSON(url string, out interface{}) error {
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", "LootRadar/1.0")
	resp, err := httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("解析 %s 的响应失败: %w", url, err)
	}
	return nil
}

func envInt(key string, fallback int) int {
	if s := os.Getenv(key); s != "" {
		if v, err := strconv.Atoi(s); err == nil {
			return v
		}
	}
	return fallback
}

// numberValue 宽容地把json.Number转成float64，空值和非法值按0处理
func numberValue(n json.Number) float64 {
	v, err := n.Float64()
	if err != nil {
		return 0
	}
	return v
}

// splitCSV 拆分SteamSpy的逗号分隔字段
func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// tagNames 从SteamSpy的tags对象中取出最多limit个标签名。
// tags字段可能是对象，也可能是空数组，按原始JSON宽容解析。
func tagNames(raw json.RawMessage, limit int) []string {
	var m map[string]int
	if err := json.Unmarshal(raw, &m); err != nil || len(m) == 0 {
		return nil
	}
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	// map遍历无序，排序后截断保证输出稳定
	sort.Slice(names, func(i, j int) bool {
		if m[names[i]] != m[names[j]] {
			return m[names[i]] > m[names[j]]
		}
		return names[i] < names[j]
	})
	if len(names) > limit {
		names = names[:limit]
	}
	return names
}

// scoreRow 按社区热度、口碑和活跃度给一条记录打排序分
func scoreRow(r steamSpyRow) float64 {
	ownerParts := strings.Split(r.Owners, "..")
	ownersStr := strings.TrimSpace(ownerParts[len(ownerParts)-1])
	ownersStr = strings.ReplaceAll(ownersStr, ",", "")
	owners, _ := strconv.ParseFloat(ownersStr, 64)

	scoreRank := numberValue(r.ScoreRank)
	ratingRatio := 0.0
	if r.Positive+r.Negative > 0 {
		ratingRatio = float64(r.Positive) / float64(r.Positive+r.Negative)
	}

	return owners*1 +
		float64(r.Positive)*40 +
		float64(r.Negative)*-8 +
		scoreRank*500 +
		float64(r.Average2Weeks)*20 +
		ratingRatio*100000
}

func main() {
	_ = godotenv.Load()

	maxGames := envInt("MAX_GAMES", 5000)
	maxPages := envInt("MAX_PAGES", 8) // SteamSpy每页约1000条
	sleepMS := envInt("SLEEP_MS", 300)
	outDir := os.Getenv("SNAPSHOT_DIR")
	if outDir == "" {
		outDir = "./data"
	}

	var rows []steamSpyRow
	for page := 0; page < maxPages; page++ {
		url := fmt.Sprintf("https://steamspy.com/api.php?request=all&page=%d", page)
		var pageData map[string]steamSpyRow
		if err := fetchJSON(url, &pageData); err != nil {
			fmt.Printf("第 %d 页抓取失败: %v\n", page, err)
			break
		}
		if len(pageData) == 0 {
			fmt.Printf("第 %d 页没有数据，停止。\n", page)
			break
		}
		for _, r := range pageData {
			if r.AppID.String() != "" && r.Name != "" {
				rows = append(rows, r)
			}
		}
		fmt.Printf("第 %d 页: 累计 %d 条记录\n", page, len(rows))
		time.Sleep(time.Duration(sleepMS) * time.Millisecond)
	}

	// 按appid去重，保留先出现的记录
	seen := make(map[string]bool, len(rows))
	var deduped []steamSpyRow
	for _, r := range rows {
		id := r.AppID.String()
		if seen[id] || len(r.Name) < 2 {
			continue
		}
		seen[id] = true
		deduped = append(deduped, r)
	}

	// 按社区热度排序并截断
	sort.Slice(deduped, func(i, j int) bool {
		return scoreRow(deduped[i]) > scoreRow(deduped[j])
	})
	if len(deduped) > maxGames {
		deduped = deduped[:maxGames]
	}

	games := make([]catalogGame, 0, len(deduped))
	for _, r := range deduped {
		appID := r.AppID.String()
		g := catalogGame{
			AppID:      appID,
			Title:      r.Name,
			Genres:     splitCSV(r.Genre),
			Tags:       tagNames(r.Tags, 16),
			Rating:     numberValue(r.ScoreRank),
			Userscore:  r.Userscore,
			Owners:     r.Owners,
			AvgForever: r.AverageForever,
			Avg2Weeks:  r.Average2Weeks,
			Discount:   numberValue(r.Discount),
			Positive:   r.Positive,
			Negative:   r.Negative,
			Thumb:      fmt.Sprintf("https://cdn.cloudflare.steamstatic.com/steam/apps/%s/header.jpg", appID),
		}
		// SteamSpy的价格单位是美分
		if v := numberValue(r.Price); v > 0 {
			price := v / 100
			g.PriceUSD = &price
		}
		if v := numberValue(r.InitialPrice); v > 0 {
			price := v / 100
			g.InitialPriceUSD = &price
		}
		games = append(games, g)
	}

	out := snapshot{
		UpdatedAt:    time.Now().UTC().Format(time.RFC3339),
		Source:       "SteamSpy all pages",
		PagesFetched: maxPages,
		GameCount:    len(games),
		Games:        games,
	}

	data, err := json.Marshal(out)
	if err != nil {
		log.Fatalf("序列化快照失败: %v", err)
	}
	outPath := filepath.Join(outDir, "games-catalog.json")
	if err := os.WriteFile(outPath, data, 0644); err != nil {
		log.Fatalf("写入 %s 失败: %v", outPath, err)
	}

	fmt.Printf("已保存 %s，共 %d 款游戏\n", outPath, len(games))
}
