package httpapi

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/deskline/backend/internal/config"
	"github.com/deskline/backend/internal/db"
	"github.com/deskline/backend/internal/http/handlers"
	"github.com/deskline/backend/internal/http/middleware"
	"github.com/deskline/backend/internal/service"

	_ "github.com/deskline/backend/docs"
)

func Router(cfg config.Config, store *db.Store, queue *service.Queue, logger zerolog.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Admin-Key", "X-Operator", "X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if cfg.CORSAllowed == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = []string{cfg.CORSAllowed}
	}
	r.Use(cors.New(corsCfg))

	h := &handlers.Handler{
		Store:     store,
		Queue:     queue,
		Validator: validator.New(),
		Logger:    logger,
	}

	r.GET("/healthz", h.Healthz)

	api := r.Group("/api")
	{
		api.POST("/tickets", h.TicketCreate)
		api.GET("/tickets", h.TicketsList)
		api.GET("/tickets/pending", h.TicketsPending)
		api.GET("/tickets/board", h.Board)
		api.GET("/tickets/:id", h.TicketDetails)
		api.GET("/config", h.ConfigView)
	}

	operator := api.Group("/operator")
	operator.Use(middleware.Operator(store))
	{
		operator.POST("/call-next", h.OperatorCallNext)
		operator.POST("/tickets/:id/status/:status", h.OperatorSetStatus)
		operator.GET("/queue", h.OperatorQueue)
		operator.GET("/logs.csv", h.OperatorLogsCSV)
	}

	admin := api.Group("/admin")
	admin.Use(middleware.AdminKey(cfg.AdminKey))
	{
		admin.GET("/logs.csv", h.AdminLogsCSV)
		admin.GET("/flags", h.FlagsList)
		admin.PUT("/flags", h.FlagSet)
	}

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return r
}
