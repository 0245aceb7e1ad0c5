package profile

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// --- API请求/响应模型 ---

// UpdateProfileRequest 是偏好更新接口的请求体。
// 所有字段都是可选的，只有出现的字段会被应用到已有偏好上。
type UpdateProfileRequest struct {
	BudgetCeiling *float64  `json:"budget"`
	MinRating     *int      `json:"minRating"`
	MinDiscount   *int      `json:"minDiscount"`
	Mode          *string   `json:"mode"`
	Genres        *[]string `json:"genres"`
}

// FeedbackRequest 是喜欢/不喜欢反馈接口的请求体
type FeedbackRequest struct {
	ItemID string `json:"itemId" binding:"required"`
	Action string `json:"action" binding:"required"`
}

// userIDFromContext 从Gin上下文中取出中间件放入的用户ID
func userIDFromContext(c *gin.Context) string {
	if v, exists := c.Get(UserIDKey); exists {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// --- 控制器函数 ---

// GetProfile 返回当前用户的偏好
// GET /api/profile
func GetProfile(c *gin.Context) {
	prefs := Load(userIDFromContext(c))
	c.JSON(http.StatusOK, prefs)
}

// UpdateProfile 对当前用户的偏好做部分更新并持久化
// PUT /api/profile
func UpdateProfile(c *gin.Context) {
	userID := userIDFromContext(c)
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "缺少用户标识"})
		return
	}

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "请求体格式错误"})
		return
	}

	if req.Mode != nil && *req.Mode != ModeAll && *req.Mode != ModeOnSale {
		c.JSON(http.StatusBadRequest, gin.H{"error": "不支持的推荐模式"})
		return
	}

	prefs := Load(userID)
	if req.BudgetCeiling != nil {
		prefs.BudgetCeiling = *req.BudgetCeiling
	}
	if req.MinRating != nil {
		prefs.MinRating = *req.MinRating
	}
	if req.MinDiscount != nil {
		prefs.MinDiscount = *req.MinDiscount
	}
	if req.Mode != nil {
		prefs.Mode = *req.Mode
	}
	if req.Genres != nil {
		prefs.Genres = *req.Genres
	}

	if err := Save(userID, prefs); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "保存偏好失败"})
		return
	}
	c.JSON(http.StatusOK, prefs)
}

// ResetProfile 把当前用户的偏好恢复为默认值
// POST /api/profile/reset
func ResetProfile(c *gin.Context) {
	userID := userIDFromContext(c)
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "缺少用户标识"})
		return
	}

	prefs, err := Reset(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "重置偏好失败"})
		return
	}
	c.JSON(http.StatusOK, prefs)
}

// SubmitFeedback 记录一次喜欢/不喜欢反馈
// POST /api/profile/feedback
func SubmitFeedback(c *gin.Context) {
	userID := userIDFromContext(c)
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "缺少用户标识"})
		return
	}

	var req FeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "请求体格式错误"})
		return
	}

	prefs := Load(userID)
	if !ApplyFeedback(&prefs, req.ItemID, req.Action) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "不支持的反馈动作"})
		return
	}

	if err := Save(userID, prefs); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "保存反馈失败"})
		return
	}
	c.JSON(http.StatusOK, prefs)
}
