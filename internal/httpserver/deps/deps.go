package deps

import (
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/marklist/marklist/internal/logger"
	"github.com/marklist/marklist/internal/session"
	redisstore "github.com/marklist/marklist/internal/store/redis"
	"github.com/marklist/marklist/internal/syncer"
)

type Deps struct {
	Logger        logger.Logger
	StartTime     time.Time
	Version       string
	Commit        string
	BuildDate     string
	GoVersion     string
	TimeNow       func() time.Time  // for testing, defaults to time.Now
	RedisClient   *redis.Client     // Redis client connection
	Store         *redisstore.Store // Bookmark collection store
	Sessions      *session.Manager  // Session manager
	Registry      *syncer.Registry  // Per-user synchronizers
	ResyncTrigger chan struct{}     // Channel to trigger a manual full resync
}
