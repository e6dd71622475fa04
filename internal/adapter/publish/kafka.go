package publish

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"

	"github.com/pancudaniel7/chainconform-ethereum-service/internal/core/entity"
	"github.com/pancudaniel7/chainconform-ethereum-service/internal/pkg/apperr"
	"github.com/pancudaniel7/chainconform-ethereum-service/internal/pkg/applog"
	imetrics "github.com/pancudaniel7/chainconform-ethereum-service/internal/pkg/metrics"
	"github.com/pancudaniel7/chainconform-ethereum-service/internal/pkg/pattern"
)

const (
	defaultRetryAttempts       = 5
	defaultRetryInitialBackoff = 200 * time.Millisecond
	defaultRetryMaxBackoff     = 2 * time.Second
	defaultRetryJitter         = 0.2
	defaultWriteTimeout        = 10 * time.Second
)

// kgoClient is the slice of kgo.Client the publisher needs; narrowed so
// tests can substitute a fake.
type kgoClient interface {
	BeginTransaction() error
	EndTransaction(ctx context.Context, commit kgo.TransactionEndTry) error
	ProduceSync(ctx context.Context, rs ...*kgo.Record) kgo.ProduceResults
	Close()
}

var newKgoClient = func(opts ...kgo.Opt) (kgoClient, error) {
	return kgo.NewClient(opts...)
}

// KafkaPublisher emits conformance verdicts to a Kafka topic.
type KafkaPublisher struct {
	log          applog.AppLogger
	client       kgoClient
	cfg          Config
	writeTimeout time.Duration
	retryOpts    []pattern.RetryOption
}

// NewKafkaPublisher builds a Kafka-backed publisher with validated configuration and retry settings.
func NewKafkaPublisher(log applog.AppLogger, cfg Config, v *validator.Validate) (*KafkaPublisher, error) {
	if err := v.Struct(cfg); err != nil {
		return nil, apperr.NewInvalidArgErr("invalid kafka publisher config", err)
	}

	maxAttempts := cfg.MaxRetryAttempts
	if maxAttempts == 0 {
		maxAttempts = defaultRetryAttempts
	}

	initialBackoff := millisecondsOrDefault(cfg.RetryInitialBackoffMS, defaultRetryInitialBackoff)
	maxBackoff := millisecondsOrDefault(cfg.RetryMaxBackoffMS, defaultRetryMaxBackoff)
	if maxBackoff < initialBackoff {
		maxBackoff = initialBackoff
	}

	writeTimeout := secondsOrDefault(cfg.WriteTimeoutSeconds, defaultWriteTimeout)
	jitter := cfg.RetryJitter
	if jitter <= 0 {
		jitter = defaultRetryJitter
	}

	opts := []kgo.Opt{
		kgo.SeedBrokers(cfg.Brokers...),
		kgo.ClientID(cfg.ClientID),
		kgo.RequiredAcks(kgo.AllISRAcks()),
	}
	if cfg.TransactionalID != "" {
		opts = append(opts, kgo.TransactionalID(cfg.TransactionalID))
	}
	client, err := newKgoClient(opts...)
	if err != nil {
		return nil, apperr.NewInvalidArgErr("failed to init kafka client", err)
	}

	kp := &KafkaPublisher{
		log:          log,
		client:       client,
		cfg:          cfg,
		writeTimeout: writeTimeout,
	}

	kp.retryOpts = []pattern.RetryOption{
		pattern.WithMaxAttempts(maxAttempts),
		pattern.WithInitialDelay(initialBackoff),
		pattern.WithMaxDelay(maxBackoff),
		pattern.WithJitter(jitter),
		pattern.WithShouldRetry(kp.shouldRetry),
	}

	return kp, nil
}

// PublishVerdict serializes and publishes the given verdict into Kafka using
// the subject hash as the record key, with retries. Optional headers will be
// added to the record (e.g., request-id).
func (kp *KafkaPublisher) PublishVerdict(ctx context.Context, verdict entity.Verdict, headers map[string]string) error {
	payload, err := json.Marshal(verdict)
	if err != nil {
		kp.log.Error("Failed to marshal verdict payload", "err", err)
		return apperr.NewPublishErr("failed to marshal verdict payload", err)
	}

	rec := kp.buildRecord(verdict, payload, headers)
	err = pattern.Retry(ctx, func(attempt int) error {
		// For transactional producers, wrap each message in a short transaction.
		if kp.cfg.TransactionalID != "" {
			if err := kp.client.BeginTransaction(); err != nil {
				return err
			}
		}

		attemptCtx, cancel := context.WithTimeout(ctx, kp.writeTimeout)
		defer cancel()

		start := time.Now()
		res := kp.client.ProduceSync(attemptCtx, rec)
		imetrics.Conformance().PublishLatencyMS.Observe(float64(time.Since(start).Milliseconds()))

		writeErr := res.FirstErr()
		if kp.cfg.TransactionalID != "" {
			if writeErr == nil {
				if err := kp.client.EndTransaction(context.Background(), kgo.TryCommit); err != nil {
					writeErr = err
				}
			} else {
				_ = kp.client.EndTransaction(context.Background(), kgo.TryAbort)
			}
		}

		if writeErr != nil {
			if kp.shouldRetry(writeErr) {
				kp.log.Warn("Kafka publish attempt failed", "attempt", attempt, "subject", verdict.SubjectHash, "topic", kp.cfg.Topic, "err", writeErr)
			} else {
				kp.log.Error("Kafka publish failed (non-retriable)", "subject", verdict.SubjectHash, "topic", kp.cfg.Topic, "err", writeErr)
			}
		}
		return writeErr
	}, kp.retryOpts...)
	if err != nil {
		imetrics.Conformance().PublishedTotal.WithLabelValues("error").Inc()
		return apperr.NewPublishErr("failed to publish verdict to kafka", err)
	}

	imetrics.Conformance().PublishedTotal.WithLabelValues("ok").Inc()
	kp.log.Trace("Published verdict to Kafka", "topic", kp.cfg.Topic, "kind", verdict.Kind, "subject", verdict.SubjectHash)
	return nil
}

// Close flushes and releases the underlying Kafka client.
func (kp *KafkaPublisher) Close() {
	if kp.client != nil {
		kp.client.Close()
	}
}

func (kp *KafkaPublisher) buildRecord(verdict entity.Verdict, payload []byte, extras map[string]string) *kgo.Record {
	headers := []kgo.RecordHeader{
		{Key: "verdict-kind", Value: []byte(verdict.Kind)},
		{Key: "subject-hash", Value: []byte(verdict.SubjectHash)},
		{Key: "passed", Value: []byte(strconv.FormatBool(verdict.Passed))},
	}
	for k, v := range extras {
		if k == "" {
			continue
		}
		headers = append(headers, kgo.RecordHeader{Key: k, Value: []byte(v)})
	}

	return &kgo.Record{
		Topic:   kp.cfg.Topic,
		Key:     []byte(verdict.SubjectHash),
		Value:   payload,
		Headers: headers,
	}
}

func (kp *KafkaPublisher) shouldRetry(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return netErr.Timeout() || netErr.Temporary()
	}

	// Broker-marked retriable errors: leader changes, coordinator load,
	// not enough replicas, etc.
	if kerr.IsRetriable(err) {
		return true
	}

	// When the topic is provisioned shortly after startup, retry
	// UnknownTopicOrPartition to let the provisioner catch up.
	if errors.Is(err, kerr.UnknownTopicOrPartition) {
		return true
	}
	return false
}

func millisecondsOrDefault(ms int, fallback time.Duration) time.Duration {
	if ms <= 0 {
		return fallback
	}
	return time.Duration(ms) * time.Millisecond
}

func secondsOrDefault(seconds int, fallback time.Duration) time.Duration {
	if seconds <= 0 {
		return fallback
	}
	return time.Duration(seconds) * time.Second
}
