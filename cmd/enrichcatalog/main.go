package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/joho/godotenv"
)

// 用Steam商店和SteamSpy的公开接口给deals.json补充元数据（无需API密钥），
// 写入enriched-deals.json。appdetails接口失败时回退到商店页HTML抓取。
// 用法:
//   go run ./cmd/enrichcatalog

var httpClient = &http.Client{Timeout: 30 * time.Second}

// steamMeta 是补充到每条折扣记录上的元数据。
// 顶层字段名沿用"rawg"以保持快照对旧消费方的兼容。
type steamMeta struct {
	ID              int      `json:"id"`
	Slug            string   `json:"slug"`
	Name            string   `json:"name"`
	Released        string   `json:"released"`
	Rating          *float64 `json:"rating"`
	RatingsCount    float64  `json:"ratingsCount"`
	Metacritic      *int     `json:"metacritic"`
	Genres          []string `json:"genres"`
	Tags            []string `json:"tags"`
	Platforms       []string `json:"platforms"`
	BackgroundImage string   `json:"backgroundImage"`
	Source          string   `json:"source"`
}

// enrichedDeal 在原始折扣记录上追加rawg字段
type enrichedDeal struct {
	raw  json.RawMessage
	meta *steamMeta
}

func (e enrichedDeal) MarshalJSON() ([]byte, error) {
	var m map[string]interface{}
	if err := json.Unmarshal(e.raw, &m); err != nil {
		// 非对象形态的记录原样透传，不附加元数据
		return e.raw, nil
	}
	if e.meta != nil {
		m["rawg"] = e.meta
	} else {
		m["rawg"] = nil
	}
	return json.Marshal(m)
}

// dealStub 只解出补充元数据所需的两个字段，其余原样透传
type dealStub struct {
	Title      string      `json:"title"`
	SteamAppID json.Number `json:"steamAppID"`
}

// dealsFile 是deals.json的顶层结构，deals保持原始JSON
type dealsFile struct {
	Stores json.RawMessage   `json:"stores"`
	Deals  []json.RawMessage `json:"deals"`
}

// coverage 记录本轮补充的命中情况
type coverage struct {
	TotalDeals      int     `json:"totalDeals"`
	MetadataMatches int     `json:"metadataMatches"`
	MatchRate       float64 `json:"matchRate"`
}

// output 是enriched-deals.json的顶层结构
type output struct {
	UpdatedAt string            `json:"updatedAt"`
	Source    map[string]string `json:"source"`
	Coverage  coverage          `json:"coverage"`
	Stores    json.RawMessage   `json:"stores"`
	Games     []enrichedDeal    `json:"games"`
}

func fetchBody(url string) ([]byte, error) {
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "LootRadar/1.0")
	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d for %s", resp.StatusCode, url)
	}
	return io.ReadAll(resp.Body)
}

func fetchJSON(url string, out interface{}) error {
	data, err := fetchBody(url)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("解析 %s 的响应失败: %w", url, err)
	}
	return nil
}

// --- Steam appdetails接口 ---

type appDetailsPayload struct {
	Success bool `json:"success"`
	Data    struct {
		Name        string `json:"name"`
		HeaderImage string `json:"header_image"`
		ReleaseDate struct {
			Date string `json:"date"`
		} `json:"release_date"`
		Metacritic *struct {
			Score int `json:"score"`
		} `json:"metacritic"`
		Genres []struct {
			Description string `json:"description"`
		} `json:"genres"`
		Categories []struct {
			Description string `json:"description"`
		} `json:"categories"`
		Platforms map[string]bool `json:"platforms"`
	} `json:"data"`
}

type steamSpyDetails struct {
	ScoreRank json.Number    `json:"score_rank"`
	Userscore json.Number    `json:"userscore"`
	Tags      map[string]int `json:"tags"`
}

var nonSlugChars = regexp.MustCompile(`[^a-z0-9]+`)

// makeSlug 把游戏名转成URL友好的短标识
func makeSlug(name, appID string) string {
	s := nonSlugChars.ReplaceAllString(strings.ToLower(name), "-")
	s = strings.Trim(s, "-")
	if s == "" {
		return appID
	}
	return s
}

// parseSteamDate 把Steam的人类可读日期转成ISO格式，无法解析时返回空串
func parseSteamDate(s string) string {
	if s == "" {
		return ""
	}
	for _, layout := range []string{"2 Jan, 2006", "Jan 2, 2006", "2006年1月2日", "Jan 2006", "2006"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("2006-01-02")
		}
	}
	return ""
}

// sortedTagNames 按权重取出SteamSpy标签名
func sortedTagNames(tags map[string]int, limit int) []string {
	names := make([]string, 0, len(tags))
	for name := range tags {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if tags[names[i]] != tags[names[j]] {
			return tags[names[i]] > tags[names[j]]
		}
		return names[i] < names[j]
	})
	if len(names) > limit {
		names = names[:limit]
	}
	return names
}

// dedupeStrings 去重并保持首次出现的顺序
func dedupeStrings(in []string, limit int) []string {
	seen := make(map[string]bool, len(in))
	var out []string
	for _, s := range in {
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
		if len(out) == limit {
			break
		}
	}
	return out
}

// fetchSteamMeta 通过appdetails接口获取一款游戏的元数据
func fetchSteamMeta(appID string) (*steamMeta, error) {
	url := fmt.Sprintf("https://store.steampowered.com/api/appdetails?appids=%s&l=en&cc=us", appID)
	var envelope map[string]appDetailsPayload
	if err := fetchJSON(url, &envelope); err != nil {
		return nil, err
	}
	payload, ok := envelope[appID]
	if !ok || !payload.Success {
		return nil, fmt.Errorf("appdetails对 %s 无有效数据", appID)
	}
	d := payload.Data

	// SteamSpy的标签是尽力而为的补充，失败不影响主流程
	var spy steamSpyDetails
	_ = fetchJSON(fmt.Sprintf("https://steamspy.com/api.php?request=appdetails&appid=%s", appID), &spy)

	var genres []string
	for _, g := range d.Genres {
		if g.Description != "" {
			genres = append(genres, g.Description)
		}
	}
	var categories []string
	for _, c := range d.Categories {
		if c.Description != "" {
			categories = append(categories, c.Description)
		}
	}
	var platforms []string
	for _, name := range []string{"windows", "mac", "linux"} {
		if d.Platforms[name] {
			platforms = append(platforms, strings.ToUpper(name[:1])+name[1:])
		}
	}

	id, _ := strconv.Atoi(appID)
	meta := &steamMeta{
		ID:        id,
		Slug:      makeSlug(d.Name, appID),
		Name:      d.Name,
		Released:  parseSteamDate(d.ReleaseDate.Date),
		Genres:    genres,
		Tags:      dedupeStrings(append(sortedTagNames(spy.Tags, 12), categories...), 14),
		Platforms: platforms,
		Source:    "steam",
	}
	meta.BackgroundImage = d.HeaderImage
	if d.Metacritic != nil {
		score := d.Metacritic.Score
		meta.Metacritic = &score
	}
	if v, err := spy.ScoreRank.Float64(); err == nil && v > 0 {
		meta.Rating = &v
	}
	if v, err := spy.Userscore.Float64(); err == nil {
		meta.RatingsCount = v
	}
	return meta, nil
}

// scrapeSteamMeta 是appdetails失败时的兜底：直接抓取商店页HTML。
// 只能拿到名称、类型标签和头图，聊胜于无。
func scrapeSteamMeta(appID string) (*steamMeta, error) {
	body, err := fetchBody(fmt.Sprintf("https://store.steampowered.com/app/%s/?l=en", appID))
	if err != nil {
		return nil, err
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(body)))
	if err != nil {
		return nil, fmt.Errorf("解析商店页HTML失败: %w", err)
	}

	name := strings.TrimSpace(doc.Find("#appHubAppName").First().Text())
	if name == "" {
		return nil, fmt.Errorf("商店页 %s 没有游戏名（可能有年龄门）", appID)
	}

	var genres []string
	doc.Find("#genresAndManufacturer span a").Each(func(_ int, s *goquery.Selection) {
		if g := strings.TrimSpace(s.Text()); g != "" {
			genres = append(genres, g)
		}
	})
	var tags []string
	doc.Find("a.app_tag").Each(func(_ int, s *goquery.Selection) {
		if t := strings.TrimSpace(s.Text()); t != "" {
			tags = append(tags, t)
		}
	})
	headerImage, _ := doc.Find("img.game_header_image_full").First().Attr("src")

	id, _ := strconv.Atoi(appID)
	return &steamMeta{
		ID:              id,
		Slug:            makeSlug(name, appID),
		Name:            name,
		Genres:          dedupeStrings(genres, 8),
		Tags:            dedupeStrings(tags, 14),
		BackgroundImage: headerImage,
		Source:          "steam-scrape",
	}, nil
}

// enrichDeals 逐条给折扣记录补充元数据，返回补充结果和命中数。
// 同一个appID只查询一次；单条记录无法解析时打日志后按原样保留，
// 不中断整个批次。
func enrichDeals(deals []json.RawMessage, lookup func(appID, title string) *steamMeta) ([]enrichedDeal, int) {
	cache := make(map[string]*steamMeta)
	enriched := make([]enrichedDeal, 0, len(deals))
	hits := 0

	for i, raw := range deals {
		row := enrichedDeal{raw: raw}

		var stub dealStub
		if err := json.Unmarshal(raw, &stub); err != nil {
			fmt.Printf("折扣记录 %d 无法解析: %v，按原样保留\n", i, err)
			enriched = append(enriched, row)
			continue
		}

		appID := strings.TrimSpace(stub.SteamAppID.String())
		if appID != "" {
			meta, cached := cache[appID]
			if !cached {
				meta = lookup(appID, stub.Title)
				cache[appID] = meta
			}
			if meta != nil {
				row.meta = meta
				hits++
			}
		}

		enriched = append(enriched, row)
		if (i+1)%30 == 0 {
			fmt.Printf("已处理 %d/%d...\n", i+1, len(deals))
		}
	}
	return enriched, hits
}

func main() {
	_ = godotenv.Load()

	snapshotDir := os.Getenv("SNAPSHOT_DIR")
	if snapshotDir == "" {
		snapshotDir = "./data"
	}

	dealsPath := filepath.Join(snapshotDir, "deals.json")
	data, err := os.ReadFile(dealsPath)
	if err != nil {
		log.Fatalf("无法读取 %s: %v", dealsPath, err)
	}
	var file dealsFile
	if err := json.Unmarshal(data, &file); err != nil {
		log.Fatalf("解析 %s 失败: %v", dealsPath, err)
	}

	lookup := func(appID, title string) *steamMeta {
		meta, err := fetchSteamMeta(appID)
		if err != nil {
			// appdetails失败时回退到商店页抓取
			meta, err = scrapeSteamMeta(appID)
			if err != nil {
				fmt.Printf("Steam查询 app %s (%s) 失败: %v\n", appID, title, err)
				meta = nil
			}
		}
		time.Sleep(180 * time.Millisecond)
		return meta
	}

	enriched, hits := enrichDeals(file.Deals, lookup)

	matchRate := 0.0
	if len(file.Deals) > 0 {
		matchRate = float64(int(float64(hits)/float64(len(file.Deals))*10000+0.5)) / 10000
	}

	out := output{
		UpdatedAt: time.Now().UTC().Format(time.RFC3339),
		Source: map[string]string{
			"deals":    "CheapShark",
			"metadata": "Steam+SteamSpy (no key)",
		},
		Coverage: coverage{
			TotalDeals:      len(file.Deals),
			MetadataMatches: hits,
			MatchRate:       matchRate,
		},
		Stores: file.Stores,
		Games:  enriched,
	}

	outData, err := json.Marshal(out)
	if err != nil {
		log.Fatalf("序列化快照失败: %v", err)
	}
	outPath := filepath.Join(snapshotDir, "enriched-deals.json")
	if err := os.WriteFile(outPath, outData, 0644); err != nil {
		log.Fatalf("写入 %s 失败: %v", outPath, err)
	}

	fmt.Printf("已保存 %s（%d/%d 条命中元数据）\n", outPath, hits, len(file.Deals))
}
