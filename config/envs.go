package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds the application's configuration values.
type Config struct {
	HostIP          string // Host IP for the server
	RESTPort        int    // Port for the REST API
	GinMode         string // Mode for the Gin framework (e.g., release, debug, test)
	LevelStore      string // Level repository backend: mongo or postgres
	DBHost          string // Hostname or IP address for MongoDB
	DBPort          int    // Port number for MongoDB
	DBUser          string // Username for MongoDB
	DBPassword      string // Password for MongoDB
	DBName          string // Name of the database
	PostgresURL     string // Connection string for the postgres level store
	RedisAddr       string // Address of the redis episode board
	RedisPassword   string // Password of the redis episode board
	BoardTTLSeconds int    // Lifetime of an idle episode board
	JWTSecret       string // Secret key for JWT signing
	JWTIssuer       string // Issuer claim for JWTs
	HarnessKeyHash  string // bcrypt hash of the key training harnesses authenticate with
	MaxEpisodeSteps int    // Steps after which a session truncates the episode
	MapWidth        int    // Default generated map columns
	MapHeight       int    // Default generated map rows
	RoomCount       int    // Default number of rooms requested
}

const (
	levelStoreMongo    = "mongo"
	levelStorePostgres = "postgres"
)

// Envs holds the application's configuration loaded from environment variables.
var Envs = initConfig()

// initConfig initializes and returns the application configuration.
// It loads environment variables from a .env file.
func initConfig() Config {
	// Load .env file if available
	if err := godotenv.Load(); err != nil {
		log.Printf("[APP] [INFO] .env file not found or could not be loaded: %v", err)
	}

	store := getEnvWithDefault("LEVEL_STORE", levelStoreMongo)
	if store != levelStoreMongo && store != levelStorePostgres {
		log.Fatalf("[APP] [FATAL] LEVEL_STORE must be %q or %q, got %q", levelStoreMongo, levelStorePostgres, store)
	}

	c := Config{
		HostIP:          getEnvWithDefault("HOST_IP", "0.0.0.0"),
		RESTPort:        getEnvAsIntWithDefault("REST_PORT", 8080),
		GinMode:         getEnvWithDefault("GIN_MODE", "release"),
		LevelStore:      store,
		RedisAddr:       mustGetEnv("REDIS_ADDR"),
		RedisPassword:   getEnvWithDefault("REDIS_PASS", ""),
		BoardTTLSeconds: getEnvAsIntWithDefault("BOARD_TTL_SECONDS", 24*60*60),
		JWTSecret:       mustGetEnv("JWT_SECRET"),
		JWTIssuer:       mustGetEnv("JWT_ISSUER"),
		HarnessKeyHash:  mustGetEnv("HARNESS_KEY_HASH"),
		MaxEpisodeSteps: getEnvAsIntWithDefault("MAX_EPISODE_STEPS", 500),
		MapWidth:        getEnvAsIntWithDefault("MAP_WIDTH", 48),
		MapHeight:       getEnvAsIntWithDefault("MAP_HEIGHT", 36),
		RoomCount:       getEnvAsIntWithDefault("ROOM_COUNT", 12),
	}

	if store == levelStorePostgres {
		c.PostgresURL = mustGetEnv("POSTGRES_URL")
		return c
	}

	c.DBHost = mustGetEnv("DB_HOST")
	c.DBPort = mustGetEnvAsInt("DB_PORT")
	c.DBUser = mustGetEnv("DB_USER")
	c.DBPassword = mustGetEnv("DB_PASS")
	c.DBName = getEnvWithDefault("DB_NAME", "dungeon")
	return c
}

// UsesPostgres reports whether levels are stored in postgres.
func (c Config) UsesPostgres() bool {
	return c.LevelStore == levelStorePostgres
}

// mustGetEnv retrieves the value of an environment variable or logs a fatal error if not set.
func mustGetEnv(key string) string {
	value, exists := os.LookupEnv(key)
	if !exists {
		log.Fatalf("[APP] [FATAL] Environment variable %s is not set", key)
	}
	return value
}

// mustGetEnvAsInt retrieves the value of an environment variable as an integer or logs a fatal error if not set or cannot be parsed.
func mustGetEnvAsInt(key string) int {
	valueStr := mustGetEnv(key)
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Fatalf("[APP] [FATAL] Environment variable %s must be an integer: %v", key, err)
	}
	return value
}

// getEnvWithDefault retrieves the value of an environment variable or returns a default value if not set.
func getEnvWithDefault(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvAsIntWithDefault retrieves an integer environment variable or returns a default value if not set.
func getEnvAsIntWithDefault(key string, defaultValue int) int {
	valueStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Fatalf("[APP] [FATAL] Environment variable %s must be an integer: %v", key, err)
	}
	return value
}
