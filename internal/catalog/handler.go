package catalog

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

// --- API响应模型 ---

// DealResponse 是折扣列表中单个条目的响应形状
type DealResponse struct {
	ID              string   `json:"id"`
	Title           string   `json:"title"`
	SalePrice       *float64 `json:"salePrice"`
	NormalPrice     float64  `json:"normalPrice"`
	DiscountPercent int      `json:"discountPercent"`
	RatingPercent   *int     `json:"ratingPercent"`
	ReviewCount     int      `json:"reviewCount"`
	Genres          []string `json:"genres"`
	Tags            []string `json:"tags"`
	StoreID         string   `json:"storeID"`
	OnSale          bool     `json:"onSale"`
	ThumbnailURL    string   `json:"thumb"`
	LinkURL         string   `json:"link"`
}

// DealListResponse 是折扣列表接口的完整响应
type DealListResponse struct {
	Deals     []DealResponse       `json:"deals"`
	Stores    map[string]StoreInfo `json:"stores"`
	DealCount int                  `json:"dealCount"`
	UpdatedAt string               `json:"updatedAt"`
}

// formatDeal 把规范化条目格式化为API响应。
// 类型和标签在这里完成推断兜底，客户端拿到的始终是非歧义的数据。
func formatDeal(e *GameEntry) DealResponse {
	return DealResponse{
		ID:              e.Identity,
		Title:           e.Title,
		SalePrice:       e.SalePrice,
		NormalPrice:     e.NormalPrice,
		DiscountPercent: e.DiscountPercent,
		RatingPercent:   e.RatingPercent,
		ReviewCount:     e.ReviewCount,
		Genres:          GenresFor(e),
		Tags:            TagsFor(e),
		StoreID:         e.StoreID,
		OnSale:          e.OnSale(),
		ThumbnailURL:    e.ThumbnailURL,
		LinkURL:         e.LinkURL,
	}
}

// --- 控制器函数 ---

// GetDeals 获取过滤并排序后的折扣列表
// GET /api/deals?store=&search=&sort=
func GetDeals(c *gin.Context) {
	opts := ListOptions{
		StoreID: c.Query("store"),
		Search:  c.Query("search"),
		Sort:    c.DefaultQuery("sort", "discount"),
	}

	result, err := ListDeals(opts)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "获取折扣列表失败"})
		return
	}

	responses := make([]DealResponse, 0, len(result.Entries))
	for i := range result.Entries {
		responses = append(responses, formatDeal(&result.Entries[i]))
	}

	c.JSON(http.StatusOK, DealListResponse{
		Deals:     responses,
		Stores:    result.Stores,
		DealCount: len(responses),
		UpdatedAt: LoadedAt().Format("2006-01-02T15:04:05Z07:00"),
	})
}

// GetDealByID 根据标识获取单个条目的信息
// GET /api/deals/:id
func GetDealByID(c *gin.Context) {
	identity := c.Param("id")
	entry, ok := EntryByIdentity(identity)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("找不到标识为 %s 的条目", identity)})
		return
	}
	c.JSON(http.StatusOK, formatDeal(&entry))
}

// ReloadSnapshots 触发一次快照重载
// POST /api/deals/reload
func ReloadSnapshots(c *gin.Context) {
	count, err := ReloadFromSnapshots()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"loaded": count, "version": Version()})
}
