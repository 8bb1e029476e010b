package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/roshanlimbu/png-to-svg/internal/config"
	"github.com/roshanlimbu/png-to-svg/internal/converter"
	"github.com/roshanlimbu/png-to-svg/internal/handler"
	"github.com/roshanlimbu/png-to-svg/internal/service"
	"github.com/roshanlimbu/png-to-svg/internal/storage"
)

type Server struct {
	httpServer *http.Server
	cfg        *config.Config
	log        *zap.Logger
}

func New(cfg *config.Config, log *zap.Logger) (*Server, error) {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	router.LoadHTMLGlob("web/templates/*")

	var archive storage.Archive
	if cfg.Storage.Enabled {
		var err error
		archive, err = storage.NewS3Archive(&cfg.Storage, log)
		if err != nil {
			return nil, err
		}
	}

	conv := converter.New(cfg.App.TempDir, log)
	convertService := service.NewConvertService(conv, archive, log)

	h := handler.NewHandler(convertService, cfg, log)

	router.GET("/", h.GetUI)
	router.GET("/health", h.HealthCheck)

	api := router.Group("/api")
	{
		api.GET("/presets", h.GetPresets)
		api.POST("/convert", h.Convert)
		api.POST("/posterize", h.Posterize)
		api.POST("/bulk-convert", h.BulkConvert)
		api.GET("/archive", h.ListArchive)
		api.GET("/archive/:id", h.GetArchived)
	}

	router.Static("/static", "./web/static")

	server := &Server{
		httpServer: &http.Server{
			Addr:           cfg.Server.Host + ":" + cfg.Server.Port,
			Handler:        router,
			ReadTimeout:    30 * time.Second,
			WriteTimeout:   30 * time.Second,
			MaxHeaderBytes: 1 << 20, // 1 MB
		},
		cfg: cfg,
		log: log,
	}

	log.Info("Server created successfully",
		zap.String("host", cfg.Server.Host),
		zap.String("port", cfg.Server.Port),
		zap.Bool("archive", cfg.Storage.Enabled))

	return server, nil
}

func (s *Server) Run() error {
	s.log.Info("Server is running",
		zap.String("address", s.httpServer.Addr))

	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info("Shutting down server")
	return s.httpServer.Shutdown(ctx)
}
