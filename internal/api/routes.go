package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/RobertATU/LoRaWAN-Lamb-Link-Next/internal/api/middleware"
	"github.com/RobertATU/LoRaWAN-Lamb-Link-Next/internal/storage"
)

// RouteDeps 路由依赖
type RouteDeps struct {
	Repo      storage.PinRepo
	Ingest    Ingester
	Live      http.Handler // websocket 实时推送，可为 nil
	Auth      middleware.AuthConfig
	RateLimit middleware.RateLimitConfig
	Logger    *zap.Logger
}

// RegisterRoutes 注册 /api 路由
func RegisterRoutes(r *gin.Engine, deps RouteDeps) {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	if r == nil || deps.Repo == nil || deps.Ingest == nil {
		return
	}

	h := NewPinsHandler(deps.Repo, deps.Ingest, logger)

	api := r.Group("/api")
	api.Use(middleware.CORS(), middleware.RateLimit(deps.RateLimit, logger))
	if deps.Auth.Enabled {
		api.Use(middleware.APIKeyAuth(deps.Auth, logger))
		logger.Info("api authentication enabled", zap.Int("api_keys_count", len(deps.Auth.APIKeys)))
	} else {
		logger.Warn("api authentication disabled - only for development!")
	}

	api.GET("/pins", h.ListPins)
	api.POST("/pins/addPin", h.AddPin)
	if deps.Live != nil {
		api.GET("/pins/live", gin.WrapH(deps.Live))
	}
	api.GET("/pins/:sheepId", h.GetSheepPin)
	api.DELETE("/pins/removePin/:genId", h.RemovePin)
	api.POST("/decode", Decode)

	logger.Info("api routes registered", zap.Bool("live", deps.Live != nil))
}
