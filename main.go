package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/dayjobfun/dayjob/backend/go-services/handlers"
	"github.com/dayjobfun/dayjob/backend/go-services/internal/audit"
	"github.com/dayjobfun/dayjob/backend/go-services/internal/config"
	"github.com/dayjobfun/dayjob/backend/go-services/internal/database"
	"github.com/dayjobfun/dayjob/backend/go-services/internal/gating"
	"github.com/dayjobfun/dayjob/backend/go-services/internal/hydrate"
	"github.com/dayjobfun/dayjob/backend/go-services/internal/ipfs"
	"github.com/dayjobfun/dayjob/backend/go-services/internal/registry"
	"github.com/dayjobfun/dayjob/backend/go-services/internal/solana"
	"github.com/dayjobfun/dayjob/backend/go-services/internal/verify"
	"github.com/dayjobfun/dayjob/backend/go-services/pkg/logger"
	"github.com/dayjobfun/dayjob/backend/go-services/pkg/metrics"
	"github.com/dayjobfun/dayjob/backend/go-services/pkg/middleware"
)

var startTime = time.Now()

func main() {
	// LOG_LEVEL env controls verbosity: debug|info|warn|error|fatal
	logger.Init(os.Getenv("LOG_LEVEL"))

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}
	logger.Infof("config loaded: redis=%v mongo=%v pinata=%v mirror=%v gating=%v",
		cfg.Redis.Host != "", cfg.MongoDB.URI != "", cfg.IPFS.PinataJWT != "",
		cfg.Mirror.Endpoint != "", cfg.Gating.TokenMint != "")
	if cfg.Solana.IndexAddress == "" {
		logger.Warnf("DAYJOB_INDEX_ADDRESS not set; chain scan and audit will return nothing")
	}

	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())

	corsCfg := cors.DefaultConfig()
	corsCfg.AllowAllOrigins = true
	corsCfg.AllowHeaders = append(corsCfg.AllowHeaders, "Authorization")
	r.Use(cors.New(corsCfg))

	ctx := context.Background()

	// Redis is the primary registry backend and the rate-limiter store
	var redisClient *redis.Client
	if cfg.Redis.Host != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Host + ":" + cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.Warnf("failed to connect to Redis (%s:%s): %v", cfg.Redis.Host, cfg.Redis.Port, err)
			redisClient = nil
		} else {
			logger.Infof("connected to Redis at %s:%s", cfg.Redis.Host, cfg.Redis.Port)
		}
	}

	if cfg.RateLimit.Enabled {
		if cfg.RateLimit.UseRedis && redisClient != nil {
			win := time.Duration(cfg.RateLimit.WindowSeconds) * time.Second
			r.Use(middleware.RedisRateLimitMiddleware(redisClient, cfg.RateLimit.RPS, cfg.RateLimit.Burst, win))
		} else {
			r.Use(middleware.RateLimitMiddleware(cfg.RateLimit.RPS, cfg.RateLimit.Burst))
		}
	}

	// Registry backend preference: Redis, then MongoDB, then in-process memory.
	// The memory fallback keeps the read paths alive from chain scans alone.
	var repo registry.Repository
	if redisClient != nil {
		repo = registry.NewRedisRepository(redisClient)
		logger.Infof("using Redis registry repository")
	} else if cfg.MongoDB.URI != "" {
		const maxAttempts = 5
		backoff := time.Second
		var client *mongo.Client
		for attempt := 1; attempt <= maxAttempts; attempt++ {
			c, errConn := database.ConnectMongo(ctx, cfg.MongoDB.URI, cfg.MongoDB.Timeout)
			if errConn == nil {
				client = c
				break
			}
			logger.Warnf("attempt %d/%d: failed to connect to MongoDB: %v", attempt, maxAttempts, errConn)
			if attempt < maxAttempts {
				time.Sleep(backoff)
				backoff *= 2
			}
		}
		if client != nil {
			defer func() { _ = client.Disconnect(ctx) }()
			col := client.Database(cfg.MongoDB.Database).Collection("registry")
			repo = registry.NewMongoRepository(col)
			logger.Infof("using MongoDB registry repository")
		}
	}
	if repo == nil {
		repo = registry.NewMemoryRepository()
		logger.Warnf("no persistent registry backend configured; using in-memory repository")
	}

	ledger := solana.NewRPCClient(cfg.Solana.RPCURL)
	gate := gating.NewTokenGate(cfg.Solana.RPCURL, cfg.Gating.TokenMint, cfg.Gating.RequiredAmount)

	storeOpts := []ipfs.Option{}
	if len(cfg.IPFS.Gateways) > 0 {
		storeOpts = append(storeOpts, ipfs.WithGateways(cfg.IPFS.Gateways))
	}
	if cfg.Mirror.Endpoint != "" {
		mirror, err := ipfs.NewMirror(&ipfs.MirrorConfig{
			Endpoint:  cfg.Mirror.Endpoint,
			AccessKey: cfg.Mirror.AccessKey,
			SecretKey: cfg.Mirror.SecretKey,
			UseSSL:    cfg.Mirror.UseSSL,
			Bucket:    cfg.Mirror.Bucket,
		})
		if err != nil {
			logger.Warnf("pin mirror unavailable: %v", err)
		} else {
			storeOpts = append(storeOpts, ipfs.WithMirror(mirror))
			logger.Infof("pin mirror enabled at %s/%s", cfg.Mirror.Endpoint, cfg.Mirror.Bucket)
		}
	}
	store := ipfs.NewGatewayStore(cfg.IPFS.PinataJWT, storeOpts...)

	engine := verify.NewEngine(ledger, gate)
	hydrator := hydrate.New(repo, store, ledger, cfg.Solana.IndexAddress)
	auditor := audit.New(repo, ledger, cfg.Solana.IndexAddress)

	handlers.NewRegistryHandler(engine, repo).Register(r)
	handlers.NewListingsHandler(hydrator).Register(r)
	handlers.NewPinHandler(store, gate).Register(r)
	handlers.NewAdminHandler(auditor, cfg.Admin.JWTSecret).Register(r)
	handlers.RegisterSwagger(r)

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "healthy")
	})

	r.GET("/ready", func(c *gin.Context) {
		ready := true
		deps := map[string]bool{}

		deps["registry"] = true
		if redisClient != nil {
			if err := redisClient.Ping(c.Request.Context()).Err(); err != nil {
				deps["registry"] = false
				ready = false
			}
		}
		deps["ledger"] = cfg.Solana.RPCURL != ""
		if !deps["ledger"] {
			ready = false
		}
		deps["pinning"] = cfg.IPFS.PinataJWT != ""

		status := http.StatusOK
		state := "ready"
		if !ready {
			status = http.StatusServiceUnavailable
			state = "not_ready"
		}
		c.JSON(status, gin.H{"status": state, "deps": deps, "uptime": time.Since(startTime).String()})
	})

	metrics.RegisterCollectors(prometheus.DefaultRegisterer)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	logger.Infof("starting registry service on %s", addr)
	if err := r.Run(addr); err != nil {
		logger.Fatalf("server failed: %v", err)
	}
}
