package catalog

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/lootradar/lootradar-backend/internal/platform/database"
)

// --- Redis键名常量 ---
// 这些键描述了仓库在Redis中维护的目录缓存

const (
	// InfoKey 是一个Redis Hash，存储所有条目的规范化JSON
	InfoKey = "catalog:info"
	// ByDiscountKey 是一个Redis Sorted Set，按折扣百分比对条目排序
	ByDiscountKey = "catalog:by_discount"
)

// --- 列表查询 ---

// ListOptions 描述折扣列表的查询参数
type ListOptions struct {
	// StoreID 非空时只保留对应商店的条目
	StoreID string
	// Search 非空时按标题做大小写不敏感的子串过滤
	Search string
	// Sort 是排序模式: discount | price | name
	Sort string
}

// ListResult 是折扣列表查询的结果
type ListResult struct {
	Entries []GameEntry
	Stores  map[string]StoreInfo
}

// ListDeals 返回过滤并排序后的折扣列表。
// 列表只包含处于促销中的条目；目录页的非促销条目走推荐接口。
// Redis健康时从缓存中读取折扣排序，降级时回退到内存排序。
func ListDeals(opts ListOptions) (*ListResult, error) {
	var entries []GameEntry
	var stores map[string]StoreInfo

	if database.IsRedisHealthy() && opts.Sort == "discount" {
		cached, err := rankedDealsFromRedis()
		if err == nil {
			entries = cached
			_, stores = Snapshot()
		}
	}
	if entries == nil {
		entries, stores = Snapshot()
		entries = sortedByDiscount(entries)
	}

	filtered := make([]GameEntry, 0, len(entries))
	search := strings.ToLower(opts.Search)
	for _, e := range entries {
		if !e.OnSale() || e.DiscountPercent <= 0 {
			continue
		}
		if opts.StoreID != "" && e.StoreID != opts.StoreID {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(e.Title), search) {
			continue
		}
		filtered = append(filtered, e)
	}

	switch opts.Sort {
	case "price":
		sort.SliceStable(filtered, func(i, j int) bool {
			return effectivePrice(&filtered[i]) < effectivePrice(&filtered[j])
		})
	case "name":
		sort.SliceStable(filtered, func(i, j int) bool {
			return strings.ToLower(filtered[i].Title) < strings.ToLower(filtered[j].Title)
		})
	}

	return &ListResult{Entries: filtered, Stores: stores}, nil
}

// effectivePrice 返回用于价格排序的售价，未知价格排在最后
func effectivePrice(e *GameEntry) float64 {
	if e.SalePrice == nil {
		return 1 << 20
	}
	return *e.SalePrice
}

// sortedByDiscount 返回按折扣降序的副本，平局保持原始目录顺序
func sortedByDiscount(entries []GameEntry) []GameEntry {
	out := make([]GameEntry, len(entries))
	copy(out, entries)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].DiscountPercent > out[j].DiscountPercent
	})
	return out
}

// rankedDealsFromRedis 从Redis缓存读取按折扣降序的条目列表
func rankedDealsFromRedis() ([]GameEntry, error) {
	ids, err := database.RDB.ZRevRange(database.Ctx, ByDiscountKey, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("无法从Redis获取折扣排序: %w", err)
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("Redis折扣缓存为空")
	}

	infoJSONs, err := database.RDB.HMGet(database.Ctx, InfoKey, ids...).Result()
	if err != nil {
		return nil, fmt.Errorf("无法从Redis批量获取条目数据: %w", err)
	}

	entries := make([]GameEntry, 0, len(ids))
	for _, raw := range infoJSONs {
		s, ok := raw.(string)
		if !ok {
			continue
		}
		var e GameEntry
		if err := json.Unmarshal([]byte(s), &e); err != nil {
			continue
		}
		entries = append(entries, e)
	}
	return entries, nil
}
