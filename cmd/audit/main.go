// Command audit runs one registry reconciliation pass against the chain and
// prints the report as JSON. Intended for cron and operator use; the same
// check is exposed over HTTP on /api/admin/audit.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"os"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dayjobfun/dayjob/backend/go-services/internal/audit"
	"github.com/dayjobfun/dayjob/backend/go-services/internal/config"
	"github.com/dayjobfun/dayjob/backend/go-services/internal/database"
	"github.com/dayjobfun/dayjob/backend/go-services/internal/listing"
	"github.com/dayjobfun/dayjob/backend/go-services/internal/registry"
	"github.com/dayjobfun/dayjob/backend/go-services/internal/solana"
	"github.com/dayjobfun/dayjob/backend/go-services/pkg/logger"
)

func main() {
	kindFlag := flag.String("type", "", "audit a single listing type (JOB or TALENT); default both")
	limit := flag.Int("limit", 50, "number of recent index transactions to scan")
	timeout := flag.Duration("timeout", 2*time.Minute, "overall run timeout")
	flag.Parse()

	logger.Init(os.Getenv("LOG_LEVEL"))

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}
	if cfg.Solana.IndexAddress == "" {
		logger.Fatalf("DAYJOB_INDEX_ADDRESS is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	repo, cleanup, err := openRepository(ctx, cfg)
	if err != nil {
		logger.Fatalf("failed to open registry backend: %v", err)
	}
	defer cleanup()

	kinds := []listing.Kind{listing.KindJob, listing.KindTalent}
	if *kindFlag != "" {
		kind, ok := listing.ParseKind(*kindFlag)
		if !ok {
			logger.Fatalf("invalid -type %q", *kindFlag)
		}
		kinds = []listing.Kind{kind}
	}

	auditor := audit.New(repo, solana.NewRPCClient(cfg.Solana.RPCURL), cfg.Solana.IndexAddress)

	diverged := false
	reports := make([]*audit.Report, 0, len(kinds))
	for _, kind := range kinds {
		report, err := auditor.Run(ctx, kind, *limit)
		if err != nil {
			logger.Fatalf("audit run for %s failed: %v", kind, err)
		}
		if len(report.ChainOnly) > 0 {
			diverged = true
		}
		reports = append(reports, report)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(reports); err != nil {
		logger.Fatalf("failed to encode report: %v", err)
	}
	// verified chain entries missing from the cache make the run fail, so cron
	// can alert on the exit code alone
	if diverged {
		os.Exit(1)
	}
}

func openRepository(ctx context.Context, cfg *config.Config) (registry.Repository, func(), error) {
	if cfg.Redis.Host != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Host + ":" + cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			return nil, nil, err
		}
		return registry.NewRedisRepository(client), func() { _ = client.Close() }, nil
	}
	if cfg.MongoDB.URI != "" {
		client, err := database.ConnectMongo(ctx, cfg.MongoDB.URI, cfg.MongoDB.Timeout)
		if err != nil {
			return nil, nil, err
		}
		col := client.Database(cfg.MongoDB.Database).Collection("registry")
		return registry.NewMongoRepository(col), func() { _ = client.Disconnect(context.Background()) }, nil
	}
	// without a cache every chain entry would be a finding
	return nil, nil, errors.New("no registry backend configured (set REDIS_HOST or MONGODB_URI)")
}
