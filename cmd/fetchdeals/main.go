package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// 从CheapShark API抓取折扣数据并写入deals.json
// 用法:
//   go run ./cmd/fetchdeals
//   MAX_PRICE=50 PAGES_PER_STORE=5 go run ./cmd/fetchdeals

const apiBase = "https://www.cheapshark.com/api/1.0"

var httpClient = &http.Client{Timeout: 20 * time.Second}

// rawStore 对应CheapShark /stores 接口的一条记录
type rawStore struct {
	StoreID   string `json:"storeID"`
	StoreName string `json:"storeName"`
	IsActive  int    `json:"isActive"`
}

// storeInfo 是写入快照的商店条目
type storeInfo struct {
	Name string `json:"name"`
	Icon string `json:"icon"`
}

// rawDeal 保留CheapShark的原始字段形状（数字以字符串表示），
// 规范化留给服务端装载器处理。
type rawDeal struct {
	Title              string `json:"title"`
	SalePrice          string `json:"salePrice"`
	NormalPrice        string `json:"normalPrice"`
	Savings            string `json:"savings"`
	StoreID            string `json:"storeID"`
	DealID             string `json:"dealID"`
	Thumb              string `json:"thumb"`
	SteamAppID         string `json:"steamAppID"`
	MetacriticScore    string `json:"metacriticScore"`
	SteamRatingPercent string `json:"steamRatingPercent"`
	SteamRatingCount   string `json:"steamRatingCount"`
	SteamRatingText    string `json:"steamRatingText"`
	DealRating         string `json:"dealRating"`
}

// snapshot 是deals.json的顶层结构
type snapshot struct {
	Stores     map[string]storeInfo `json:"stores"`
	Deals      []rawDeal            `json:"deals"`
	UpdatedAt  string               `json:"updatedAt"`
	DealCount  int                  `json:"dealCount"`
	StoreCount int                  `json:"storeCount"`
}

// fetchJSON 发起GET请求并把响应体解析到out中
func fetchJSON(url string, out interface{}) error {
	resp, err := httpClient.Get(url)
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

// envInt 读取一个整数环境变量，缺失或非法时返回默认值
func envInt(key string, fallback int) int {
	if s := os.Getenv(key); s != "" {
		if v, err := strconv.Atoi(s); err == nil {
			return v
		}
	}
	return fallback
}

func main() {
	// .env可选，用于本地覆盖抓取参数
	_ = godotenv.Load()

	maxPrice := envInt("MAX_PRICE", 70)
	pageSize := envInt("PAGE_SIZE", 80)
	pagesPerStore := envInt("PAGES_PER_STORE", 3)
	outDir := os.Getenv("SNAPSHOT_DIR")
	if outDir == "" {
		outDir = "./data"
	}

	fmt.Println("正在获取商店列表...")
	var stores []rawStore
	if err := fetchJSON(apiBase+"/stores", &stores); err != nil {
		log.Fatalf("无法获取商店列表: %v", err)
	}

	storeMap := make(map[string]storeInfo)
	var activeStores []rawStore
	for _, s := range stores {
		if s.IsActive != 1 {
			continue
		}
		activeStores = append(activeStores, s)
		// CheapShark的图标文件名是storeID减一
		iconIdx := 0
		if n, err := strconv.Atoi(s.StoreID); err == nil {
			iconIdx = n - 1
		}
		storeMap[s.StoreID] = storeInfo{
			Name: s.StoreName,
			Icon: fmt.Sprintf("https://www.cheapshark.com/img/stores/icons/%d.png", iconIdx),
		}
	}

	fmt.Printf("找到 %d 家在售商店，开始抓取折扣...\n", len(activeStores))
	fmt.Printf("抓取参数: upperPrice=%d, pageSize=%d, pagesPerStore=%d\n", maxPrice, pageSize, pagesPerStore)

	var allDeals []rawDeal

	// 逐商店分页抓取，页间加小延迟以免触发限流
	for _, store := range activeStores {
		storeCount := 0
		failed := false
		for page := 0; page < pagesPerStore; page++ {
			url := fmt.Sprintf("%s/deals?storeID=%s&upperPrice=%d&pageSize=%d&pageNumber=%d&sortBy=Deal+Rating",
				apiBase, store.StoreID, maxPrice, pageSize, page)
			var deals []rawDeal
			if err := fetchJSON(url, &deals); err != nil {
				fmt.Printf("  %s: 抓取失败 - %v\n", store.StoreName, err)
				failed = true
				break
			}
			allDeals = append(allDeals, deals...)
			storeCount += len(deals)

			// 页面稀疏说明该商店没有更多高质量折扣了
			if len(deals) < pageSize/4 {
				break
			}
			time.Sleep(120 * time.Millisecond)
		}
		if !failed {
			fmt.Printf("  %s: %d 条折扣\n", store.StoreName, storeCount)
		}
		time.Sleep(180 * time.Millisecond)
	}

	// 按标题去重，同名保留折扣更高的一条
	bestIdx := make(map[string]int)
	var deduped []rawDeal
	for _, d := range allDeals {
		savings, _ := strconv.ParseFloat(d.Savings, 64)
		idx, seen := bestIdx[d.Title]
		if !seen {
			bestIdx[d.Title] = len(deduped)
			deduped = append(deduped, d)
			continue
		}
		prevSavings, _ := strconv.ParseFloat(deduped[idx].Savings, 64)
		if savings > prevSavings {
			deduped[idx] = d
		}
	}

	out := snapshot{
		Stores:     storeMap,
		Deals:      deduped,
		UpdatedAt:  time.Now().UTC().Format(time.RFC3339),
		DealCount:  len(deduped),
		StoreCount: len(activeStores),
	}

	data, err := json.Marshal(out)
	if err != nil {
		log.Fatalf("序列化快照失败: %v", err)
	}
	outPath := filepath.Join(outDir, "deals.json")
	if err := os.WriteFile(outPath, data, 0644); err != nil {
		log.Fatalf("写入 %s 失败: %v", outPath, err)
	}

	fmt.Printf("\n已保存 %d 条折扣（来自 %d 家商店）到 %s\n", out.DealCount, out.StoreCount, outPath)
	fmt.Printf("更新时间: %s\n", out.UpdatedAt)
}
