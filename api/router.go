package api

import (
	"net/http"

	"github.com/fyerfyer/integra-processual/api/handler"
	"github.com/fyerfyer/integra-processual/api/middleware"
	"github.com/gin-gonic/gin"
)

// SetupRouter 设置API路由
// staticDir为空时不提供静态文件
func SetupRouter(
	processHandler *handler.ProcessHandler,
	runHandler *handler.RunHandler,
	staticDir string,
) *gin.Engine {
	router := gin.New()

	// 应用全局中间件
	router.Use(middleware.SetTraceID())
	router.Use(middleware.Logger())
	router.Use(middleware.Cors())
	router.Use(middleware.ErrorHandler())

	api := router.Group("/api")
	{
		// 健康检查 - GET /api/health
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{
				"status": "ok",
			})
		})

		// 上传并处理PDF - POST /api/process
		api.POST("/process", processHandler.ProcessPDF)

		// 处理历史
		runGroup := api.Group("/runs")
		{
			// 获取处理记录列表 - GET /api/runs
			runGroup.GET("", runHandler.ListRuns)

			// 获取处理记录详情 - GET /api/runs/:id
			runGroup.GET("/:id", runHandler.GetRun)
		}
	}

	if staticDir != "" {
		router.NoRoute(middleware.StaticFiles(staticDir))
	} else {
		router.NoRoute(func(c *gin.Context) {
			middleware.HandleError(c, middleware.NewNotFoundError("route not found"))
		})
	}

	return router
}
