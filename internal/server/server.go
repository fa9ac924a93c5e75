package server

import (
	"html/template"
	"log"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/inkwell-blog/inkwell/internal/config"
	"github.com/inkwell-blog/inkwell/internal/handler"
	"github.com/inkwell-blog/inkwell/internal/middleware"
	"github.com/inkwell-blog/inkwell/internal/repository"
	"github.com/inkwell-blog/inkwell/internal/service"
	"github.com/inkwell-blog/inkwell/internal/session"
	"github.com/inkwell-blog/inkwell/pkg/storage"
	"github.com/meilisearch/meilisearch-go"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Server struct {
	engine *gin.Engine
	db     *gorm.DB
}

func NewServer(db *gorm.DB, redisClient *redis.Client, cfg *config.Config) *Server {
	sessions := session.NewRedisStore(redisClient, cfg.SessionTTL)

	userRepo := repository.NewUserRepository(db)
	postRepo := repository.NewPostRepository(db)
	commentRepo := repository.NewCommentRepository(db)

	var searchSvc service.SearchService
	if cfg.MeiliSearchHost != "" {
		meiliClient := meilisearch.New(cfg.MeiliSearchHost, meilisearch.WithAPIKey(cfg.MeiliMasterKey))
		searchSvc = service.NewSearchService(meiliClient)
	}

	// Header-image upload is optional; without Cloudinary credentials the
	// forms fall back to the img_url field.
	imageStorage, err := storage.NewCloudinaryStorage(cfg.CloudinaryFolder)
	if err != nil {
		log.Printf("cloudinary storage disabled: %v", err)
		imageStorage = nil
	}

	authSvc := service.NewAuthService(userRepo)
	postSvc := service.NewPostService(postRepo, searchSvc)
	commentSvc := service.NewCommentService(commentRepo, postSvc)

	authHandler := handler.NewAuthHandler(authSvc, sessions)
	postHandler := handler.NewPostHandler(postSvc, commentSvc, searchSvc, imageStorage, sessions)
	pageHandler := handler.NewPageHandler(sessions)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(gin.Logger())

	setupCORS(router, cfg)

	// Post bodies are sanitized on write, so they can be rendered as-is.
	router.SetFuncMap(template.FuncMap{
		"safeHTML": func(s string) template.HTML { return template.HTML(s) },
	})
	router.LoadHTMLGlob("web/templates/*.html")

	authMiddleware := middleware.NewAuthMiddleware(sessions, userRepo, cfg.SessionTTL)
	router.Use(authMiddleware.LoadSession())

	router.GET("/", postHandler.Index)

	router.GET("/register", authHandler.ShowRegister)
	router.POST("/register", authHandler.Register)
	router.GET("/login", authHandler.ShowLogin)
	router.POST("/login", authHandler.Login)
	router.GET("/logout", authHandler.Logout)

	router.GET("/post/:id", postHandler.Show)
	router.POST("/post/:id", postHandler.SubmitComment)

	router.GET("/about", pageHandler.About)
	router.GET("/contact", pageHandler.Contact)
	router.GET("/search", postHandler.Search)
	router.GET("/feed.json", postHandler.Feed)

	admin := router.Group("")
	admin.Use(authMiddleware.RequireAdmin())
	{
		admin.GET("/new-post", postHandler.ShowCreate)
		admin.POST("/new-post", postHandler.Create)
		admin.GET("/edit-post/:id", postHandler.ShowEdit)
		admin.POST("/edit-post/:id", postHandler.Update)
		admin.GET("/delete/:id", postHandler.Delete)
	}

	return &Server{
		engine: router,
		db:     db,
	}
}

func (s *Server) Run(addr string) error {
	return s.engine.Run(addr)
}

func setupCORS(router *gin.Engine, cfg *config.Config) {
	var origins []string
	if cfg.AllowedOrigins != "" {
		origins = strings.Split(cfg.AllowedOrigins, ",")
	} else {
		origins = []string{"http://localhost:3000"}
	}

	router.Use(cors.New(cors.Config{
		AllowOrigins:  origins,
		AllowMethods:  []string{"GET", "HEAD", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}))
}
