package catalog

import (
	"encoding/json"
	"fmt"
	"math"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// --- 快照文件名 ---

const (
	EnrichedSnapshotFile = "enriched-deals.json"
	DealsSnapshotFile    = "deals.json"
	CatalogSnapshotFile  = "games-catalog.json"
)

// --- 原始数据形状 ---
// CheapShark把数字字段序列化为字符串，SteamSpy则是真正的数字。
// flexFloat同时接受两种形式，把格式差异挡在规范化之前。

type flexFloat float64

func (f *flexFloat) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" || s == `""` {
		return nil
	}
	s = strings.Trim(s, `"`)
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("无法解析数字字段 %q: %w", s, err)
	}
	*f = flexFloat(v)
	return nil
}

// flexString 同时接受字符串和数字形式的标识字段（例如steamAppID）
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" {
		return nil
	}
	*f = flexString(strings.Trim(s, `"`))
	return nil
}

// rawgMeta 对应enriched-deals.json中每条记录嵌套的第三方元数据。
// 字段名沿用上游的"rawg"命名以保持快照兼容。
type rawgMeta struct {
	Name            string   `json:"name"`
	Released        string   `json:"released"`
	Metacritic      *int     `json:"metacritic"`
	Genres          []string `json:"genres"`
	Tags            []string `json:"tags"`
	BackgroundImage string   `json:"backgroundImage"`
}

// rawDeal 对应deals.json / enriched-deals.json中的一条折扣记录
type rawDeal struct {
	Title              string     `json:"title"`
	SalePrice          *flexFloat `json:"salePrice"`
	NormalPrice        *flexFloat `json:"normalPrice"`
	Savings            *flexFloat `json:"savings"`
	StoreID            string     `json:"storeID"`
	DealID             string     `json:"dealID"`
	Thumb              string     `json:"thumb"`
	SteamAppID         flexString `json:"steamAppID"`
	SteamRatingPercent *flexFloat `json:"steamRatingPercent"`
	SteamRatingCount   *flexFloat `json:"steamRatingCount"`
	SteamRatingText    string     `json:"steamRatingText"`
	Rawg               *rawgMeta  `json:"rawg"`
}

// rawCatalogGame 对应games-catalog.json中的一条SteamSpy记录
type rawCatalogGame struct {
	AppID           flexString `json:"appid"`
	Title           string     `json:"title"`
	Genres          []string   `json:"genres"`
	Tags            []string   `json:"tags"`
	Rating          *flexFloat `json:"rating"`
	Userscore       *flexFloat `json:"userscore"`
	PriceUSD        *flexFloat `json:"price_usd"`
	InitialPriceUSD *flexFloat `json:"initial_price_usd"`
	Discount        *flexFloat `json:"discount"`
	Positive        int        `json:"positive"`
	Thumb           string     `json:"thumb"`
}

// dealsSnapshot 是deals.json / enriched-deals.json的顶层结构
type dealsSnapshot struct {
	Stores    map[string]StoreInfo `json:"stores"`
	Deals     []rawDeal            `json:"deals"`
	Games     []rawDeal            `json:"games"`
	UpdatedAt string               `json:"updatedAt"`
}

// catalogSnapshot 是games-catalog.json的顶层结构
type catalogSnapshot struct {
	Games     []rawCatalogGame `json:"games"`
	UpdatedAt string           `json:"updatedAt"`
}

// --- 规范化 ---

// clampDiscount 把折扣防御性地钳制到[0,100]，上游数据不保证范围
func clampDiscount(v float64) int {
	n := int(math.Round(v))
	if n < 0 {
		return 0
	}
	if n > 100 {
		return 100
	}
	return n
}

// makeIdentity 按 dealID > steamAppID > 兜底 的顺序生成稳定标识
func makeIdentity(dealID, steamAppID string) string {
	if dealID != "" {
		return dealID
	}
	if steamAppID != "" {
		return "app-" + steamAppID
	}
	return "app-unknown"
}

// makeLinkURL 生成跳转链接：折扣记录走CheapShark重定向，否则直达商店页
func makeLinkURL(dealID, steamAppID string) string {
	if dealID != "" {
		return "https://www.cheapshark.com/redirect?dealID=" + url.QueryEscape(dealID)
	}
	if steamAppID != "" {
		return "https://store.steampowered.com/app/" + steamAppID
	}
	return ""
}

// normalizeDeal 把一条折扣记录规范化为GameEntry。
// 历史数据形状的字段回退链全部在这里解析，评分逻辑不再接触原始字段。
func normalizeDeal(d rawDeal) GameEntry {
	appID := string(d.SteamAppID)

	entry := GameEntry{
		Identity:     makeIdentity(d.DealID, appID),
		Title:        d.Title,
		NormalPrice:  0,
		RatingText:   d.SteamRatingText,
		StoreID:      d.StoreID,
		DealID:       d.DealID,
		SteamAppID:   appID,
		ThumbnailURL: d.Thumb,
		LinkURL:      makeLinkURL(d.DealID, appID),
	}

	if d.SalePrice != nil {
		v := float64(*d.SalePrice)
		entry.SalePrice = &v
	}
	if d.NormalPrice != nil {
		entry.NormalPrice = float64(*d.NormalPrice)
	}
	if d.Savings != nil {
		entry.DiscountPercent = clampDiscount(float64(*d.Savings))
	}
	if d.SteamRatingPercent != nil {
		v := clampDiscount(float64(*d.SteamRatingPercent))
		entry.RatingPercent = &v
	}
	if d.SteamRatingCount != nil {
		entry.ReviewCount = int(*d.SteamRatingCount)
	}

	// 附带的第三方元数据优先于CheapShark自身的字段
	if d.Rawg != nil {
		if d.Rawg.Name != "" {
			entry.Title = d.Rawg.Name
		}
		if len(d.Rawg.Genres) > 0 {
			entry.Genres = d.Rawg.Genres
		}
		if len(d.Rawg.Tags) > 0 {
			entry.Tags = d.Rawg.Tags
		}
		if entry.ThumbnailURL == "" {
			entry.ThumbnailURL = d.Rawg.BackgroundImage
		}
	}

	return entry
}

// normalizeCatalogGame 把一条SteamSpy目录记录规范化为GameEntry
func normalizeCatalogGame(g rawCatalogGame) GameEntry {
	appID := string(g.AppID)

	entry := GameEntry{
		Identity:     makeIdentity("", appID),
		Title:        g.Title,
		Genres:       g.Genres,
		Tags:         g.Tags,
		SteamAppID:   appID,
		ReviewCount:  g.Positive,
		ThumbnailURL: g.Thumb,
		LinkURL:      makeLinkURL("", appID),
	}

	if g.PriceUSD != nil {
		v := float64(*g.PriceUSD)
		entry.SalePrice = &v
	}
	if g.InitialPriceUSD != nil {
		entry.NormalPrice = float64(*g.InitialPriceUSD)
	}
	if g.Discount != nil {
		entry.DiscountPercent = clampDiscount(float64(*g.Discount))
	}

	// SteamSpy有两种评分来源：score_rank优先，userscore兜底
	if g.Rating != nil && *g.Rating > 0 {
		v := clampDiscount(float64(*g.Rating))
		entry.RatingPercent = &v
	} else if g.Userscore != nil && *g.Userscore > 0 {
		v := clampDiscount(float64(*g.Userscore))
		entry.RatingPercent = &v
	}

	return entry
}

// dedupeDeals 按标题去重，同名保留折扣更高的一条，其余保持输入顺序。
// 上游抓取脚本已做过一次，这里防御性地再做一次。
func dedupeDeals(entries []GameEntry) []GameEntry {
	best := make(map[string]int, len(entries))
	out := make([]GameEntry, 0, len(entries))
	for _, e := range entries {
		idx, seen := best[e.Title]
		if !seen {
			best[e.Title] = len(out)
			out = append(out, e)
			continue
		}
		if e.DiscountPercent > out[idx].DiscountPercent {
			out[idx] = e
		}
	}
	return out
}

// mergeWithDeal 把折扣记录叠加到目录记录上，折扣字段覆盖目录字段
func mergeWithDeal(base GameEntry, deal GameEntry) GameEntry {
	merged := deal
	if merged.Title == "" {
		merged.Title = base.Title
	}
	if len(merged.Genres) == 0 {
		merged.Genres = base.Genres
	}
	if len(merged.Tags) == 0 {
		merged.Tags = base.Tags
	}
	if merged.SalePrice == nil {
		merged.SalePrice = base.SalePrice
	}
	if merged.NormalPrice == 0 {
		merged.NormalPrice = base.NormalPrice
	}
	if merged.RatingPercent == nil {
		merged.RatingPercent = base.RatingPercent
	}
	if merged.ReviewCount == 0 {
		merged.ReviewCount = base.ReviewCount
	}
	if merged.ThumbnailURL == "" {
		merged.ThumbnailURL = base.ThumbnailURL
	}
	if merged.SteamAppID == "" {
		merged.SteamAppID = base.SteamAppID
	}
	return merged
}

// --- 快照装载 ---

// loadDealsFile 读取并规范化一个折扣快照（deals.json或enriched-deals.json）
func loadDealsFile(path string) ([]GameEntry, map[string]StoreInfo, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}
	var snap dealsSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, nil, fmt.Errorf("解析快照 %s 失败: %w", filepath.Base(path), err)
	}

	// enriched快照把记录放在games字段，原始快照放在deals字段
	raws := snap.Games
	if len(raws) == 0 {
		raws = snap.Deals
	}

	entries := make([]GameEntry, 0, len(raws))
	for _, d := range raws {
		entries = append(entries, normalizeDeal(d))
	}
	return dedupeDeals(entries), snap.Stores, nil
}

// loadCatalogFile 读取并规范化games-catalog.json
func loadCatalogFile(path string) ([]GameEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var snap catalogSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("解析快照 %s 失败: %w", filepath.Base(path), err)
	}
	entries := make([]GameEntry, 0, len(snap.Games))
	for _, g := range snap.Games {
		entries = append(entries, normalizeCatalogGame(g))
	}
	return entries, nil
}

// BuildCatalog 从快照目录构建完整的规范化目录。
// 折扣来源优先enriched-deals.json，回退deals.json；
// 之后按steamAppID与伞形目录对账，折扣字段覆盖目录字段。
func BuildCatalog(snapshotDir string) ([]GameEntry, map[string]StoreInfo, error) {
	deals, stores, err := loadDealsFile(filepath.Join(snapshotDir, EnrichedSnapshotFile))
	if err != nil {
		deals, stores, err = loadDealsFile(filepath.Join(snapshotDir, DealsSnapshotFile))
		if err != nil {
			return nil, nil, fmt.Errorf("无法读取折扣快照: %w", err)
		}
	}

	// 伞形目录是可选的，读取失败时目录就是折扣列表本身
	catalogGames, err := loadCatalogFile(filepath.Join(snapshotDir, CatalogSnapshotFile))
	if err != nil || len(catalogGames) == 0 {
		return deals, stores, nil
	}

	// 为每个steamAppID保留第一条折扣记录，用于对账
	dealByApp := make(map[string]GameEntry, len(deals))
	for _, d := range deals {
		if d.SteamAppID == "" {
			continue
		}
		if _, ok := dealByApp[d.SteamAppID]; !ok {
			dealByApp[d.SteamAppID] = d
		}
	}

	merged := make([]GameEntry, 0, len(catalogGames))
	for _, g := range catalogGames {
		if deal, ok := dealByApp[g.SteamAppID]; ok {
			merged = append(merged, mergeWithDeal(g, deal))
		} else {
			merged = append(merged, g)
		}
	}
	return merged, stores, nil
}
