package store

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"

	"github.com/pancudaniel7/chainconform-ethereum-service/internal/core/entity"
	"github.com/pancudaniel7/chainconform-ethereum-service/internal/pkg/apperr"
	"github.com/pancudaniel7/chainconform-ethereum-service/internal/pkg/applog"
	imetrics "github.com/pancudaniel7/chainconform-ethereum-service/internal/pkg/metrics"
	"github.com/pancudaniel7/chainconform-ethereum-service/internal/pkg/pattern"
)

// VerdictStore is a thin Redis-based store for validation verdicts. Each
// subject gets an idempotency SET NX marker holding the verdict payload,
// and every first-seen verdict is appended to a stream for downstream
// consumers.
//
// Concurrency: VerdictStore is safe for concurrent use. It relies on the
// concurrency-safe go-redis client and the atomicity of SET NX to avoid
// duplicate markers.
type VerdictStore struct {
	rdb *redis.Client
	log applog.AppLogger
	cfg Config
}

// NewVerdictStore creates a Redis client from the provided Config, validates
// the configuration, optionally enables TLS, and returns an initialized store.
func NewVerdictStore(log applog.AppLogger, v *validator.Validate, cfg *Config) (*VerdictStore, error) {
	if err := v.Struct(cfg); err != nil {
		log.Error("invalid redis config", "err", err)
		return nil, apperr.NewReportStoreErr("invalid redis config", err)
	}

	addr := net.JoinHostPort(cfg.Host, cfg.Port)
	opts := &redis.Options{
		Addr:        addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		PoolSize:    cfg.PoolSize,
		MaxRetries:  cfg.MaxRetries,
		DialTimeout: time.Duration(cfg.DialTimeoutSeconds) * time.Second,
	}
	if cfg.UseTLS {
		opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}

	return &VerdictStore{
		rdb: redis.NewClient(opts),
		log: log,
		cfg: *cfg,
	}, nil
}

// StoreVerdict records a verdict under its subject hash and appends it to
// the verdict stream. Returns true when the marker was created and the
// verdict enqueued, false when a verdict for the subject already existed.
func (vs *VerdictStore) StoreVerdict(ctx context.Context, verdict entity.Verdict) (bool, error) {
	if strings.TrimSpace(verdict.SubjectHash) == "" {
		return false, apperr.NewReportStoreErr("empty subject hash", nil)
	}

	payload, err := json.Marshal(verdict)
	if err != nil {
		return false, apperr.NewReportStoreErr("failed to marshal verdict payload", err)
	}

	key := vs.markerKey(verdict.SubjectHash)
	ttl := time.Duration(vs.cfg.Lock.VerdictTTLSeconds) * time.Second

	var stored bool
	var lastReason string
	err = pattern.Retry(
		ctx,
		func(attempt int) error {
			created, err := vs.rdb.SetNX(ctx, key, string(payload), ttl).Result()
			if err != nil {
				vs.log.Warn("Redis SETNX verdict marker failed", "key", key, "attempt", attempt, "err", err)
				lastReason = "setnx"
				return apperr.NewReportStoreErr("redis SETNX verdict marker failed", err)
			}
			if !created {
				stored = false
				vs.log.Trace("Verdict already stored; skipping", "subject", verdict.SubjectHash, "kind", verdict.Kind)
				return nil
			}

			if err := vs.appendToStream(ctx, verdict, payload); err != nil {
				// Drop the marker so a retry can re-enqueue the verdict.
				if delErr := vs.rdb.Del(ctx, key).Err(); delErr != nil {
					vs.log.Warn("Failed to roll back verdict marker", "key", key, "err", delErr)
				}
				vs.log.Warn("Redis XADD verdict failed", "subject", verdict.SubjectHash, "attempt", attempt, "err", err)
				lastReason = "xadd"
				return apperr.NewReportStoreErr("redis XADD verdict failed", err)
			}

			stored = true
			return nil
		},
		pattern.WithMaxAttempts(3),
		pattern.WithInitialDelay(200*time.Millisecond),
		pattern.WithMaxDelay(1*time.Second),
	)
	if err != nil {
		if lastReason == "" {
			lastReason = "unknown"
		}
		imetrics.App().ErrorsTotal.WithLabelValues(imetrics.ComponentRedis, lastReason).Inc()
		return false, apperr.NewReportStoreErr("failed to store verdict", err)
	}

	return stored, nil
}

func (vs *VerdictStore) appendToStream(ctx context.Context, verdict entity.Verdict, payload []byte) error {
	return vs.rdb.XAdd(ctx, &redis.XAddArgs{
		Stream: vs.cfg.Streams.Key,
		Values: map[string]any{
			"kind":          verdict.Kind,
			"subject":       verdict.SubjectHash,
			"passed":        strconv.FormatBool(verdict.Passed),
			"payload":       string(payload),
			"checked_at_ms": strconv.FormatInt(verdict.CheckedAtMS, 10),
		},
	}).Err()
}

// IsVerified checks whether a verdict marker exists for the given subject
// hash. It returns true if the marker exists.
func (vs *VerdictStore) IsVerified(ctx context.Context, subjectHash string) (bool, error) {
	if strings.TrimSpace(subjectHash) == "" {
		return false, apperr.NewReportStoreErr("empty subject hash", nil)
	}
	n, err := vs.rdb.Exists(ctx, vs.markerKey(subjectHash)).Result()
	if err != nil {
		return false, apperr.NewReportStoreErr("failed to check verdict marker", err)
	}
	return n == 1, nil
}

// Close releases the underlying Redis client.
func (vs *VerdictStore) Close() error {
	return vs.rdb.Close()
}

func (vs *VerdictStore) markerKey(subjectHash string) string {
	tag := clusterHashTag(vs.cfg.Streams.Key)
	return fmt.Sprintf("{%s}:%s:%s", tag, vs.cfg.Lock.DedupPrefix, subjectHash)
}

// clusterHashTag keeps the marker key in the same cluster slot as the
// verdict stream.
func clusterHashTag(key string) string {
	start := strings.IndexByte(key, '{')
	if start >= 0 {
		end := strings.IndexByte(key[start+1:], '}')
		if end >= 0 {
			tag := key[start+1 : start+1+end]
			if tag != "" {
				return tag
			}
		}
	}
	return key
}
