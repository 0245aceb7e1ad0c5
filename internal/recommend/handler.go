package recommend

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lootradar/lootradar-backend/internal/profile"
)

// --- API响应模型 ---

// CardResponse 是单张推荐卡片的响应形状
type CardResponse struct {
	ID              string   `json:"id"`
	Title           string   `json:"title"`
	SalePrice       *float64 `json:"salePrice"`
	NormalPrice     float64  `json:"normalPrice"`
	DiscountPercent int      `json:"discountPercent"`
	RatingPercent   *int     `json:"ratingPercent"`
	Genres          []string `json:"genres"`
	Score           float64  `json:"score"`
	Why             string   `json:"why,omitempty"`
	Confidence      string   `json:"confidence"`
	OnSale          bool     `json:"onSale"`
	ThumbnailURL    string   `json:"thumb"`
	LinkURL         string   `json:"link"`
}

// RecommendationsResponse 是推荐接口的完整响应
type RecommendationsResponse struct {
	Items        []CardResponse `json:"items"`
	Featured     []CardResponse `json:"featured,omitempty"`
	ShownCount   int            `json:"shownCount"`
	MatchedCount int            `json:"matchedCount"`
	Mode         string         `json:"mode"`
}

// BecauseResponse 是"因为你喜欢"接口的完整响应
type BecauseResponse struct {
	Items    []CardResponse `json:"items"`
	Reason   string         `json:"reason"`
	HasLikes bool           `json:"hasLikes"`
}

func formatCard(dto *CardDTO) CardResponse {
	return CardResponse{
		ID:              dto.Entry.Identity,
		Title:           dto.Entry.Title,
		SalePrice:       dto.Entry.SalePrice,
		NormalPrice:     dto.Entry.NormalPrice,
		DiscountPercent: dto.Entry.DiscountPercent,
		RatingPercent:   dto.Entry.RatingPercent,
		Genres:          dto.Entry.Genres,
		Score:           dto.Score,
		Why:             dto.Why,
		Confidence:      dto.Confidence,
		OnSale:          dto.Entry.OnSale(),
		ThumbnailURL:    dto.Entry.ThumbnailURL,
		LinkURL:         dto.Entry.LinkURL,
	}
}

// --- 控制器函数 ---

// GetRecommendations 获取当前用户的推荐列表
// GET /api/recommendations?search=&sort=
func GetRecommendations(c *gin.Context) {
	userID := userIDFromContext(c)
	opts := RankOptions{
		Search: c.Query("search"),
		Sort:   c.DefaultQuery("sort", SortDiscount),
	}

	dto := GetRecommendationsForUser(userID, opts)

	resp := RecommendationsResponse{
		MatchedCount: dto.MatchedCount,
		Mode:         dto.Mode,
	}
	for i := range dto.Featured {
		resp.Featured = append(resp.Featured, formatCard(&dto.Featured[i]))
	}
	for i := range dto.Items {
		resp.Items = append(resp.Items, formatCard(&dto.Items[i]))
	}
	resp.ShownCount = len(resp.Items) + len(resp.Featured)

	c.JSON(http.StatusOK, resp)
}

// GetBecause 获取"因为你喜欢"的二级推荐列表
// GET /api/recommendations/because
func GetBecause(c *gin.Context) {
	userID := userIDFromContext(c)
	dto := GetBecauseForUser(userID)

	resp := BecauseResponse{
		Reason:   dto.Reason,
		HasLikes: dto.HasLikes,
	}
	for i := range dto.Items {
		resp.Items = append(resp.Items, formatCard(&dto.Items[i]))
	}
	c.JSON(http.StatusOK, resp)
}

// userIDFromContext 从Gin上下文中取出profile中间件放入的用户ID
func userIDFromContext(c *gin.Context) string {
	if v, exists := c.Get(profile.UserIDKey); exists {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}
