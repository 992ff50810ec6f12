package server

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"anoa.com/warbler/internal/config"
	"anoa.com/warbler/internal/middleware"
	"anoa.com/warbler/internal/session"
	"anoa.com/warbler/internal/web"
	"anoa.com/warbler/pkg/auth"
	"anoa.com/warbler/pkg/response"
	"anoa.com/warbler/pkg/storage"
	"github.com/rs/zerolog/log"

	followHttp "anoa.com/warbler/internal/modules/follow/delivery/http"
	followRepo "anoa.com/warbler/internal/modules/follow/repository"
	followService "anoa.com/warbler/internal/modules/follow/service"

	likeHttp "anoa.com/warbler/internal/modules/like/delivery/http"
	likeRepo "anoa.com/warbler/internal/modules/like/repository"
	likeService "anoa.com/warbler/internal/modules/like/service"

	messageHttp "anoa.com/warbler/internal/modules/message/delivery/http"
	messageRepo "anoa.com/warbler/internal/modules/message/repository"
	messageService "anoa.com/warbler/internal/modules/message/service"

	searchService "anoa.com/warbler/internal/modules/search/service"

	userHttp "anoa.com/warbler/internal/modules/user/delivery/http"
	userRepo "anoa.com/warbler/internal/modules/user/repository"
	userService "anoa.com/warbler/internal/modules/user/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/meilisearch/meilisearch-go"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type Server struct {
	engine      *gin.Engine
	db          *gorm.DB
	redisClient *redis.Client
}

// Options overrides collaborators NewServer would otherwise build from the config.
type Options struct {
	Hasher       auth.Hasher
	SessionStore session.Store
	ImageStorage storage.ImageStorage
	Search       searchService.MeiliSearchService
}

// NewServer wires every module. Redis, Meilisearch and Cloudinary are optional.
func NewServer(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	opts := Options{Hasher: auth.NewBcryptHasher(bcrypt.DefaultCost)}

	if cfg.MeiliSearchHost != "" {
		meiliHost := cfg.MeiliSearchHost
		if !strings.HasPrefix(meiliHost, "http") {
			meiliHost = "http://" + meiliHost + ":7700"
		}
		meiliClient := meilisearch.New(meiliHost, meilisearch.WithAPIKey(cfg.MeiliMasterKey))
		opts.Search = searchService.NewMeiliSearchService(meiliClient)
	} else {
		log.Info().Msg("MEILISEARCH_HOST not set, user search uses the database")
	}

	imageStorage, err := storage.NewCloudinaryStorage(cfg.CloudinaryCloudName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret, cfg.CloudinaryUploadFolder)
	switch {
	case err == nil:
		opts.ImageStorage = imageStorage
	case errors.Is(err, storage.ErrNotConfigured):
		log.Info().Msg("Cloudinary not configured, image uploads disabled")
	default:
		return nil, err
	}

	return New(cfg, db, redisClient, opts)
}

// New builds the server from explicit collaborators.
func New(cfg *config.Config, db *gorm.DB, redisClient *redis.Client, opts Options) (*Server, error) {
	if opts.Hasher == nil {
		opts.Hasher = auth.NewBcryptHasher(bcrypt.DefaultCost)
	}
	if opts.SessionStore == nil {
		if redisClient != nil {
			opts.SessionStore = session.NewRedisStore(redisClient)
		} else {
			opts.SessionStore = session.NewMemoryStore()
		}
	}

	userRepository := userRepo.NewUserRepository(db)
	followRepository := followRepo.NewFollowRepository(db)
	messageRepository := messageRepo.NewMessageRepository(db)
	likeRepository := likeRepo.NewLikeRepository(db)

	authSvc := userService.NewAuthService(userRepository, opts.Hasher, opts.Search)
	likeSvc := likeService.NewLikeService(likeRepository, messageRepository, redisClient)
	userSvc := userService.NewUserService(userRepository, opts.Hasher, opts.ImageStorage, opts.Search, likeSvc)
	followSvc := followService.NewFollowService(followRepository)
	messageSvc := messageService.NewMessageService(messageRepository, followRepository, redisClient, cfg.RateLimitMessage)

	authHandler := userHttp.NewAuthHandler(authSvc)
	userHandler := userHttp.NewUserHandler(userSvc, followSvc, messageSvc, likeSvc)
	followHandler := followHttp.NewFollowHandler(followSvc)
	messageHandler := messageHttp.NewMessageHandler(messageSvc, likeSvc, userSvc)
	likeHandler := likeHttp.NewLikeHandler(likeSvc)

	tmpl, err := web.Templates()
	if err != nil {
		return nil, err
	}

	router := gin.New()
	router.SetHTMLTemplate(tmpl)

	setupCORS(router, cfg.AllowedOrigins)

	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger())

	router.StaticFS("/static", web.Static())

	sessions := session.NewManager(opts.SessionStore, cfg.SecretKey, cfg.SessionTTL, cfg.IsProduction())
	authMiddleware := middleware.NewAuthMiddleware(userRepository)

	app := router.Group("")
	app.Use(sessions.Middleware(), authMiddleware.LoadUser())

	// Public routes
	app.GET("/", messageHandler.Home)
	app.GET("/signup", authHandler.SignupForm)
	app.POST("/signup", authHandler.Signup)
	app.GET("/login", authHandler.LoginForm)
	app.POST("/login", authHandler.Login)
	app.GET("/logout", authHandler.Logout)
	app.GET("/users", userHandler.Index)
	app.GET("/users/:user_id", userHandler.Show)
	app.GET("/messages/:message_id", messageHandler.Show)

	// Routes that need a logged in user
	protected := app.Group("")
	protected.Use(authMiddleware.RequireUser())
	{
		protected.GET("/users/:user_id/following", userHandler.Following)
		protected.GET("/users/:user_id/followers", userHandler.Followers)
		protected.GET("/users/:user_id/likes", userHandler.Likes)
		protected.POST("/users/follow/:follow_id", followHandler.Toggle)
		protected.POST("/users/stop-following/:follow_id", followHandler.StopFollowing)
		protected.GET("/users/profile", userHandler.EditForm)
		protected.POST("/users/profile", userHandler.UpdateProfile)
		protected.POST("/users/delete", userHandler.Delete)
		protected.POST("/users/add_like/:message_id", likeHandler.AddLike)

		protected.GET("/messages/new", messageHandler.NewForm)
		protected.POST("/messages/new", messageHandler.Create)
		protected.POST("/messages/:message_id/delete", messageHandler.Delete)
	}

	router.NoRoute(sessions.Middleware(), authMiddleware.LoadUser(), func(c *gin.Context) {
		response.HTML(c, http.StatusNotFound, "404.html", nil)
	})

	return &Server{
		engine:      router,
		db:          db,
		redisClient: redisClient,
	}, nil
}

// Handler exposes the router for http.Server and tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) Run(addr string) error {
	return s.engine.Run(addr)
}

func setupCORS(router *gin.Engine, origins []string) {
	if len(origins) == 0 {
		origins = []string{"http://localhost:8080"}
	}

	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
}
