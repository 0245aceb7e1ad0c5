package api

import (
	"github.com/gin-gonic/gin"
	"github.com/lootradar/lootradar-backend/internal/catalog"
	"github.com/lootradar/lootradar-backend/internal/profile"
	"github.com/lootradar/lootradar-backend/internal/recommend"
)

// SetupRoutes 注册项目的所有API路由
func SetupRoutes(router *gin.Engine) {
	api := router.Group("/api")
	{
		// 特惠目录相关的路由组 /api/deals
		dealRoutes := api.Group("/deals")
		{
			dealRoutes.GET("", catalog.GetDeals)
			dealRoutes.GET("/:id", catalog.GetDealByID)
			dealRoutes.POST("/reload", catalog.ReloadSnapshots)
		}

		// 推荐相关的路由组 /api/recommendations
		// 首次访问时通过Cookie中间件发放用户身份
		recRoutes := api.Group("/recommendations", profile.EnsureUserCookieMiddleware(), profile.LoadUserMiddleware())
		{
			recRoutes.GET("", recommend.GetRecommendations)
			recRoutes.GET("/because", recommend.GetBecause)
		}

		// 用户偏好相关的路由组 /api/profile
		profileRoutes := api.Group("/profile", profile.EnsureUserCookieMiddleware(), profile.LoadUserMiddleware())
		{
			profileRoutes.GET("", profile.GetProfile)
			profileRoutes.PUT("", profile.UpdateProfile)
			profileRoutes.POST("/reset", profile.ResetProfile)
			profileRoutes.POST("/feedback", profile.SubmitFeedback)
		}
	}
}
