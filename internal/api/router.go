package api

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

type RouterConfig struct {
	AllowOrigins []string
	RateLimitRPS int
}

func NewRouter(cfg RouterConfig, h *Handler) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(RequestIDMiddleware())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowOrigins,
		AllowMethods:     []string{"GET", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", RequestIDHeader},
		AllowCredentials: false, // must stay false with wildcard origins
	}))
	router.Use(RateLimitMiddleware(cfg.RateLimitRPS))

	h.RegisterRoutes(router)
	return router
}
