package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/beka-birhanu/vinom-dungeon/api"
	envapi "github.com/beka-birhanu/vinom-dungeon/api/env"
	api_i "github.com/beka-birhanu/vinom-dungeon/api/i"
	"github.com/beka-birhanu/vinom-dungeon/api/identity"
	"github.com/beka-birhanu/vinom-dungeon/config"
	"github.com/beka-birhanu/vinom-dungeon/game/dungeon"
	logger "github.com/beka-birhanu/vinom-dungeon/infrastruture/log"
	"github.com/beka-birhanu/vinom-dungeon/infrastruture/repo"
	"github.com/beka-birhanu/vinom-dungeon/infrastruture/sortedstorage"
	"github.com/beka-birhanu/vinom-dungeon/infrastruture/token"
	"github.com/beka-birhanu/vinom-dungeon/service"
	"github.com/beka-birhanu/vinom-dungeon/service/i"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Global variables for dependencies
var (
	mongoClient    *mongo.Client
	postgresRepo   *repo.PostgresLevelRepo
	redisClient    *redis.Client
	levelRepo      i.LevelRepo
	episodeBoard   i.EpisodeBoard
	sessionManager *service.SessionManager
	envController  api_i.Controller
	jwtTokenizer   i.Tokenizer
	authService    i.Authenticator
	authController api_i.Controller
	router         *api.Router
	appLogger      i.Logger
)

func initMongo(ctx context.Context) {
	uri := fmt.Sprintf("mongodb://%s:%s@%s:%v", config.Envs.DBUser, config.Envs.DBPassword, config.Envs.DBHost, config.Envs.DBPort)

	var err error
	mongoClient, err = mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		appLogger.Error(fmt.Sprintf("Failed to connect to MongoDB: %v", err))
		os.Exit(1)
	}
	if err = mongoClient.Ping(ctx, nil); err != nil {
		appLogger.Error(fmt.Sprintf("MongoDB ping failed: %v", err))
		os.Exit(1)
	}
	appLogger.Info("Connected to MongoDB")
}

func initLevelRepo(ctx context.Context) {
	if config.Envs.UsesPostgres() {
		var err error
		postgresRepo, err = repo.NewPostgresLevelRepo(config.Envs.PostgresURL)
		if err != nil {
			appLogger.Error(fmt.Sprintf("Creating postgres level repository: %v", err))
			os.Exit(1)
		}
		levelRepo = postgresRepo
		appLogger.Info("Level repository initialized (postgres)")
		return
	}

	initMongo(ctx)
	levelRepo = repo.NewMongoLevelRepo(mongoClient, config.Envs.DBName, "levels")
	appLogger.Info("Level repository initialized (mongo)")
}

func initRedis(ctx context.Context) {
	redisClient = redis.NewClient(&redis.Options{
		Addr:     config.Envs.RedisAddr,
		Password: config.Envs.RedisPassword,
	})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		appLogger.Error(fmt.Sprintf("Redis ping failed: %v", err))
		os.Exit(1)
	}
	appLogger.Info("Connected to Redis")
}

func initEpisodeBoard() {
	episodeBoard = sortedstorage.NewRedisEpisodeBoard(redisClient, config.Envs.BoardTTLSeconds)
	appLogger.Info("Episode board initialized")
}

func defaultParams() dungeon.Params {
	p := dungeon.DefaultParams()
	p.Width = config.Envs.MapWidth
	p.Height = config.Envs.MapHeight
	p.RoomCount = config.Envs.RoomCount
	return p
}

func initSessionManager() {
	sessionLogger, err := logger.New("SESSION-MANAGER", config.ColorCyan, os.Stdout)
	if err != nil {
		appLogger.Error(fmt.Sprintf("Creating session manager logger: %v", err))
		os.Exit(1)
	}

	sessionManager, err = service.NewSessionManager(&service.Config{
		LevelRepo:       levelRepo,
		Board:           episodeBoard,
		Logger:          sessionLogger,
		DefaultParams:   defaultParams(),
		MaxEpisodeSteps: config.Envs.MaxEpisodeSteps,
	})
	if err != nil {
		appLogger.Error(fmt.Sprintf("Creating session manager: %v", err))
		os.Exit(1)
	}
	appLogger.Info("Session manager initialized")
}

func initEnvController() {
	envLogger, err := logger.New("ENV-API", config.ColorPurple, os.Stdout)
	if err != nil {
		appLogger.Error(fmt.Sprintf("Creating env controller logger: %v", err))
		os.Exit(1)
	}

	envController = envapi.NewEnvController(sessionManager, defaultParams(), envLogger)
	appLogger.Info("Env controller initialized")
}

func initJWTTokenizer() {
	jwtTokenizer = token.NewJwtService(config.Envs.JWTSecret, config.Envs.JWTIssuer)
	appLogger.Info("JWT Tokenizer initialized")
}

func initAuthService() {
	var err error
	authService, err = service.NewAuthService(config.Envs.HarnessKeyHash, jwtTokenizer, 0)
	if err != nil {
		appLogger.Error(fmt.Sprintf("Creating auth service: %v", err))
		os.Exit(1)
	}
	appLogger.Info("Auth service initialized")
}

func initAuthController() {
	authController = identity.NewIdentityServer(authService)
	appLogger.Info("Auth controller initialized")
}

func initRouter(t i.Tokenizer) {
	gin.SetMode(config.Envs.GinMode)
	router = api.NewRouter(api.Config{
		Addr:                    fmt.Sprintf("%s:%v", config.Envs.HostIP, config.Envs.RESTPort),
		BaseURL:                 "/api",
		Controllers:             []api_i.Controller{authController, envController},
		AuthorizationMiddleware: identity.Authoriz(t),
	})
	appLogger.Info("Router initialized")
}

func cleanup() {
	sessionManager.StopAll()
	if postgresRepo != nil {
		_ = postgresRepo.Close()
	}
	if mongoClient != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = mongoClient.Disconnect(ctx)
	}
	_ = redisClient.Close()
}

func main() {
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	appLogger, _ = logger.New("APP", config.ColorGreen, os.Stdout)

	initLevelRepo(ctx)
	initRedis(ctx)
	initEpisodeBoard()
	initSessionManager()
	initEnvController()
	initJWTTokenizer()
	initAuthService()
	initAuthController()
	initRouter(jwtTokenizer)

	go func() {
		stop := make(chan os.Signal, 1)
		signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
		<-stop
		appLogger.Info("Shutting down")
		cleanup()
		os.Exit(0)
	}()

	if err := router.Run(); err != nil {
		appLogger.Error(fmt.Sprintf("Starting server: %v", err))
		cleanup()
		os.Exit(1)
	}
}
