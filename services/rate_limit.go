package services

import (
	"errors"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/alphabatem/common/context"
	"github.com/gofiber/fiber/v2"
	log "github.com/sirupsen/logrus"

	"github.com/msribeiro2010/napje-pje-proxy/dto"
	"github.com/msribeiro2010/napje-pje-proxy/shared"
)

// RateLimitService bounds request volume per caller with a fixed window.
// Callers are keyed by identity id when authenticated, client IP otherwise.
// The window state lives behind WindowStore so a multi-process deployment can
// swap the in-memory map for Redis without touching the limiter logic.
//
// Fixed windows allow up to 2x the limit across a boundary; accepted for O(1)
// space per caller.
type RateLimitService struct {
	context.DefaultService

	store       WindowStore
	storeKind   string
	maxRequests int
	window      time.Duration

	now    func() time.Time
	closed chan struct{}

	redisSvc *RedisService
}

const RATE_LIMIT_SVC = "rate_limit_svc"

const (
	defaultMaxRequests = 100
	defaultWindow      = time.Minute
	sweepInterval      = 5 * time.Minute
)

func (svc RateLimitService) Id() string {
	return RATE_LIMIT_SVC
}

func (svc *RateLimitService) Configure(ctx *context.Context) error {
	svc.maxRequests = defaultMaxRequests
	if v, err := strconv.Atoi(os.Getenv("RATE_LIMIT_MAX")); err == nil && v > 0 {
		svc.maxRequests = v
	}

	svc.window = defaultWindow
	if d, err := time.ParseDuration(os.Getenv("RATE_LIMIT_WINDOW")); err == nil && d > 0 {
		svc.window = d
	}

	svc.storeKind = os.Getenv("RATE_LIMIT_STORE")
	if svc.storeKind == "" {
		svc.storeKind = "memory"
	}

	svc.now = time.Now
	svc.closed = make(chan struct{})

	return svc.DefaultService.Configure(ctx)
}

func (svc *RateLimitService) Start() error {
	if svc.storeKind == "redis" {
		svc.redisSvc = svc.Service(REDIS_SVC).(*RedisService)
		store, err := redisWindowStore(svc.redisSvc)
		if err != nil {
			return err
		}
		svc.store = store
		log.WithField("store", "redis").Info("Rate limiter started")
		return nil
	}

	memStore := NewMemoryWindowStore()
	svc.store = memStore
	go svc.startSweepJob(memStore)

	log.WithFields(log.Fields{
		"store":  "memory",
		"limit":  svc.maxRequests,
		"window": svc.window,
	}).Info("Rate limiter started")
	return nil
}

func (svc *RateLimitService) Shutdown() {
	close(svc.closed)
}

// IsAllowed takes one slot from the caller's current window.
func (svc *RateLimitService) IsAllowed(c *fiber.Ctx, key string) (bool, *dto.RateLimitInfo, error) {
	info, err := svc.store.Take(c.Context(), key, svc.maxRequests, svc.window, svc.now())
	if err != nil {
		return false, nil, err
	}
	return info.Allowed, info, nil
}

// ==================== MIDDLEWARE ====================

// RateLimit is the quota stage of the request pipeline. A store failure
// rejects the request: quota decisions fail closed, they are never skipped
// because a dependency is down.
func (svc *RateLimitService) RateLimit() fiber.Handler {
	return func(c *fiber.Ctx) error {
		key := svc.callerKey(c)

		allowed, info, err := svc.IsAllowed(c, key)
		if err != nil {
			log.WithError(err).WithField("caller", key).Error("Rate limit store failure")
			return shared.NewInternalError(err, "Rate limit service unavailable")
		}

		svc.addRateLimitHeaders(c, info)

		if !allowed {
			rateLimitRejectedTotal.Inc()
			return shared.NewRateLimitError("")
		}

		return c.Next()
	}
}

func (svc *RateLimitService) callerKey(c *fiber.Ctx) string {
	if userID, ok := c.Locals(shared.UserID).(string); ok && userID != "" {
		return userID
	}
	return getClientIP(c)
}

func (svc *RateLimitService) addRateLimitHeaders(c *fiber.Ctx, info *dto.RateLimitInfo) {
	if info == nil {
		return
	}

	if info.Remaining >= 0 {
		c.Set("X-RateLimit-Remaining", strconv.Itoa(info.Remaining))
	}

	if info.ResetTime != nil {
		c.Set("X-RateLimit-Reset", strconv.FormatInt(info.ResetTime.Unix(), 10))

		if !info.Allowed {
			retryAfter := int(time.Until(*info.ResetTime).Seconds())
			if retryAfter > 0 {
				c.Set("Retry-After", strconv.Itoa(retryAfter))
			}
		}
	}
}

// ==================== ADMIN ====================

func (svc *RateLimitService) Stats(c *fiber.Ctx) (*dto.RateLimitStats, error) {
	active, err := svc.store.Len(c.Context())
	if err != nil {
		return nil, err
	}

	return &dto.RateLimitStats{
		MaxRequests:   svc.maxRequests,
		WindowSeconds: int(svc.window.Seconds()),
		ActiveWindows: active,
		Timestamp:     svc.now(),
	}, nil
}

func (svc *RateLimitService) ResetKey(c *fiber.Ctx, key string) error {
	return svc.store.Reset(c.Context(), key)
}

// redisWindowStore refuses the redis store without a configured client, so a
// misconfigured deployment fails at boot instead of on the first request.
func redisWindowStore(redisSvc *RedisService) (WindowStore, error) {
	client := redisSvc.GetClient()
	if client == nil {
		return nil, errors.New("RATE_LIMIT_STORE=redis requires REDIS_ADDR")
	}
	return NewRedisWindowStore(client), nil
}

// ==================== BACKGROUND JOBS ====================

func (svc *RateLimitService) startSweepJob(store *MemoryWindowStore) {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if removed := store.Sweep(svc.now()); removed > 0 {
				log.WithField("removed", removed).Debug("Swept expired rate limit windows")
			}
		case <-svc.closed:
			return
		}
	}
}

// ==================== UTILITY FUNCTIONS ====================

func getClientIP(c *fiber.Ctx) string {
	forwarded := c.Get("X-Forwarded-For")
	if forwarded != "" {
		ips := strings.Split(forwarded, ",")
		if len(ips) > 0 {
			ip := strings.TrimSpace(ips[0])
			if ip != "" {
				return ip
			}
		}
	}

	realIP := c.Get("X-Real-IP")
	if realIP != "" {
		return realIP
	}

	ip, _, err := net.SplitHostPort(c.Context().RemoteAddr().String())
	if err != nil {
		return c.Context().RemoteAddr().String()
	}

	return ip
}
