package main

import (
	"log"
	"log/slog"
	"os"

	"github.com/gin-gonic/gin"

	"pureplay/cmd/config"
	"pureplay/pkg/account"
	"pureplay/pkg/auth"
	"pureplay/pkg/database"
	"pureplay/pkg/handlers"
	"pureplay/pkg/oembed"
	"pureplay/pkg/s3"
	"pureplay/pkg/store"
	"pureplay/pkg/videos"
)

func main() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	config.Load()

	db, err := database.Open(config.DatabasePath)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer db.Close()

	issuer := auth.NewIssuer(config.JWTSecret, config.JWTIssuer, config.JWTAudience, config.JWTExpireDays)
	resolver := oembed.NewClient(config.OEmbedEndpoint, config.OEmbedTimeout)

	var mirror videos.Mirror
	if config.S3Bucket != "" {
		mirror = s3.NewThumbnailMirror(config.AWSRegion, config.S3Bucket)
		slog.Info("thumbnail mirroring enabled", "bucket", config.S3Bucket)
	}

	users := store.NewUsers(db)
	videoStore := store.NewVideos(db)

	accountSvc := account.NewService(users)
	videoSvc := videos.NewService(users, videoStore, resolver, mirror)

	authHandler := handlers.NewAuthHandler(accountSvc, issuer)
	videoHandler := handlers.NewVideoHandler(videoSvc)

	r := gin.Default()
	r.Use(handlers.CORS())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	v1 := r.Group("/v1")
	v1.POST("/Auth/Register", authHandler.Register)
	v1.POST("/Auth/Login/Email", authHandler.LoginEmail)

	protected := v1.Group("", auth.Middleware(issuer))
	protected.POST("/Auth/CheckPassword", authHandler.CheckPassword)
	protected.POST("/Auth/ResetPassword", authHandler.ResetPassword)

	ytv := protected.Group("/YTV")
	ytv.POST("/AddYTV", videoHandler.Add)
	ytv.GET("/GetAllYTV", videoHandler.GetAll)
	ytv.GET("/GetbyIdYTV/:id", videoHandler.GetByID)
	ytv.DELETE("/DeleteYTV/:id", videoHandler.Delete)

	slog.Info("server starting", "addr", config.ServerAddr)
	if err := r.Run(config.ServerAddr); err != nil {
		log.Fatalf("server exited: %v", err)
	}
}
