package router

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/slugblog/internal/handler"
)

// DotDir is the reserved path segment under the page root for everything
// that is not a post page.
const DotDir = ".blog"

// SetupRouter 配置 Gin 引擎和路由
func SetupRouter(api *handler.API, log *logrus.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), handler.RequestLogger(log))

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
		})
	})
	r.GET("/healthz", api.HealthCheck)

	root := r.Group(api.PageRoot())
	{
		root.GET("/:slug", api.ShowPage)

		dot := root.Group("/" + DotDir)
		{
			dot.GET("/recent", api.ShowRecent)
			dot.GET("/audit", api.ShowAudit)
			dot.GET("/resolve/:slug", api.ResolveSlug)

			dot.POST("/publish", api.PublishPost)
			dot.POST("/publish/:id", api.RevisePost)

			dot.GET("/posts/:id", api.GetPost)
			dot.PATCH("/posts/:id", api.PatchPost)
			dot.DELETE("/posts/:id", api.DeletePost)
			dot.PUT("/posts/:id/draft", api.SetPostDraft)
			dot.GET("/posts/:id/history", api.GetPostHistory)

			dot.POST("/slugs", api.BindSlug)
			dot.GET("/slugs/:slug", api.LookupSlug)
			dot.POST("/slugs/:slug/rename", api.RenameSlug)
		}
	}

	return r
}
