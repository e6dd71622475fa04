package backend

import (
	"context"
	"errors"
	"math/big"
	"net"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/params"
	"github.com/go-playground/validator/v10"

	"github.com/pancudaniel7/chainconform-ethereum-service/internal/core/entity"
	"github.com/pancudaniel7/chainconform-ethereum-service/internal/pkg/apperr"
	"github.com/pancudaniel7/chainconform-ethereum-service/internal/pkg/applog"
	imetrics "github.com/pancudaniel7/chainconform-ethereum-service/internal/pkg/metrics"
	"github.com/pancudaniel7/chainconform-ethereum-service/internal/pkg/pattern"
)

const defaultFetchTimeout = 10 * time.Second

// ethereumClient is the slice of ethclient.Client the reader needs;
// narrowed so tests can substitute a fake.
type ethereumClient interface {
	BlockByNumber(ctx context.Context, number *big.Int) (*types.Block, error)
	TransactionByHash(ctx context.Context, hash common.Hash) (*types.Transaction, bool, error)
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
	Close()
}

// EthereumReader fetches chain objects from a go-ethereum compatible node
// and converts them into backend-native records for outbound validation.
// It is safe for concurrent use once connected.
type EthereumReader struct {
	log          applog.AppLogger
	cfg          *Config
	chainCfg     *params.ChainConfig
	client       ethereumClient
	fetchTimeout time.Duration
	newClient    func(context.Context) (ethereumClient, error)
}

// NewEthereumReader validates the configuration and prepares a reader for
// the configured network. The node connection is established by Connect.
func NewEthereumReader(log applog.AppLogger, cfg *Config, v *validator.Validate) (*EthereumReader, error) {
	if err := v.Struct(cfg); err != nil {
		log.Error("invalid backend config", "err", err)
		return nil, apperr.NewBackendErr("invalid backend config", err)
	}

	chainCfg, err := chainConfigFor(cfg.Network)
	if err != nil {
		return nil, err
	}

	fetchTimeout := defaultFetchTimeout
	if cfg.FetchTimeoutSeconds > 0 {
		fetchTimeout = time.Duration(cfg.FetchTimeoutSeconds) * time.Second
	}

	r := &EthereumReader{
		log:          log,
		cfg:          cfg,
		chainCfg:     chainCfg,
		fetchTimeout: fetchTimeout,
	}
	r.newClient = func(ctx context.Context) (ethereumClient, error) {
		return ethclient.DialContext(ctx, cfg.RPCURL)
	}
	return r, nil
}

func chainConfigFor(network string) (*params.ChainConfig, error) {
	switch network {
	case "mainnet":
		return params.MainnetChainConfig, nil
	case "sepolia":
		return params.SepoliaChainConfig, nil
	case "holesky":
		return params.HoleskyChainConfig, nil
	case "dev":
		return params.AllDevChainProtocolChanges, nil
	}
	return nil, apperr.NewBackendErr("unknown network: "+network, nil)
}

// Connect dials the node with retry and backoff.
func (r *EthereumReader) Connect(ctx context.Context) error {
	opts := []pattern.RetryOption{
		pattern.WithInitialDelay(500 * time.Millisecond),
		pattern.WithMaxDelay(10 * time.Second),
		pattern.WithMultiplier(2.0),
		pattern.WithJitter(0.2),
	}
	if r.cfg.DialMaxRetryAttempts > 0 {
		opts = append(opts, pattern.WithMaxAttempts(r.cfg.DialMaxRetryAttempts))
	}
	if r.cfg.DialRetryInitialBackoffMS > 0 {
		opts = append(opts, pattern.WithInitialDelay(time.Duration(r.cfg.DialRetryInitialBackoffMS)*time.Millisecond))
	}
	if r.cfg.DialRetryMaxBackoffMS > 0 {
		opts = append(opts, pattern.WithMaxDelay(time.Duration(r.cfg.DialRetryMaxBackoffMS)*time.Millisecond))
	}
	if r.cfg.DialRetryJitter > 0 {
		opts = append(opts, pattern.WithJitter(r.cfg.DialRetryJitter))
	}

	err := pattern.Retry(ctx, func(attempt int) error {
		c, err := r.newClient(ctx)
		if err != nil {
			r.log.Warn("backend dial failed", "attempt", attempt, "err", err)
			imetrics.App().WarningsTotal.WithLabelValues(imetrics.ComponentBackend, "dial").Inc()
			return err
		}
		r.client = c
		return nil
	}, opts...)
	if err != nil {
		imetrics.Backend().Connected.Set(0)
		return apperr.NewBackendErr("failed to connect to execution backend", err)
	}
	imetrics.Backend().Connected.Set(1)
	r.log.Info("Connected to execution backend", "url", r.cfg.RPCURL, "network", r.cfg.Network)
	return nil
}

// ForkPredicates derives the block fork classification from the configured
// chain. Predicates read the block's number and timestamp fields, so they
// must run against records produced by this reader.
func (r *EthereumReader) ForkPredicates() entity.ForkPredicates {
	cfg := r.chainCfg
	number := func(rec entity.Record) *big.Int {
		if n := rec.BigInt("number"); n != nil {
			return n
		}
		return new(big.Int)
	}
	timestamp := func(rec entity.Record) uint64 {
		if t := rec.BigInt("timestamp"); t != nil && t.IsUint64() {
			return t.Uint64()
		}
		return 0
	}
	return entity.ForkPredicates{
		IsLondon: func(rec entity.Record) bool {
			return cfg.IsLondon(number(rec))
		},
		IsShanghai: func(rec entity.Record) bool {
			return cfg.IsShanghai(number(rec), timestamp(rec))
		},
		IsCancun: func(rec entity.Record) bool {
			return cfg.IsCancun(number(rec), timestamp(rec))
		},
		IsPrague: func(rec entity.Record) bool {
			return cfg.IsPrague(number(rec), timestamp(rec))
		},
	}
}

// BlockByNumber fetches the block at the given height (nil means latest)
// and returns it in backend-native record form.
func (r *EthereumReader) BlockByNumber(ctx context.Context, number *big.Int, fullTransactions bool) (entity.Record, error) {
	if r.client == nil {
		return nil, apperr.NewBackendErr("backend not connected", nil)
	}

	fetchCtx, cancel := context.WithTimeout(ctx, r.fetchTimeout)
	defer cancel()

	start := time.Now()
	blk, err := r.client.BlockByNumber(fetchCtx, number)
	imetrics.Backend().FetchLatencyMS.WithLabelValues("block").Observe(float64(time.Since(start).Milliseconds()))
	if err != nil {
		imetrics.Backend().FetchErrorsTotal.WithLabelValues("block", classifyFetchError(err)).Inc()
		return nil, apperr.NewBackendErr("failed to fetch block", err)
	}

	signer := types.MakeSigner(r.chainCfg, blk.Number(), blk.Time())
	rec, err := blockToRecord(blk, signer, fullTransactions)
	if err != nil {
		return nil, apperr.NewBackendErr("failed to map block", err)
	}
	return rec, nil
}

// ReceiptByTxHash fetches the receipt for the given transaction hash and
// returns it in backend-native record form. The transaction itself is
// fetched too, since the receipt record carries the sender and recipient.
func (r *EthereumReader) ReceiptByTxHash(ctx context.Context, txHash []byte) (entity.Record, error) {
	if r.client == nil {
		return nil, apperr.NewBackendErr("backend not connected", nil)
	}
	if len(txHash) != 32 {
		return nil, apperr.NewBackendErr("transaction hash must be 32 bytes", nil)
	}
	hash := common.BytesToHash(txHash)

	fetchCtx, cancel := context.WithTimeout(ctx, r.fetchTimeout)
	defer cancel()

	start := time.Now()
	receipt, err := r.client.TransactionReceipt(fetchCtx, hash)
	imetrics.Backend().FetchLatencyMS.WithLabelValues("receipt").Observe(float64(time.Since(start).Milliseconds()))
	if err != nil {
		imetrics.Backend().FetchErrorsTotal.WithLabelValues("receipt", classifyFetchError(err)).Inc()
		return nil, apperr.NewBackendErr("failed to fetch receipt", err)
	}

	tx, _, err := r.client.TransactionByHash(fetchCtx, hash)
	if err != nil {
		imetrics.Backend().FetchErrorsTotal.WithLabelValues("transaction", classifyFetchError(err)).Inc()
		return nil, apperr.NewBackendErr("failed to fetch transaction for receipt", err)
	}

	signer := types.LatestSignerForChainID(r.chainCfg.ChainID)
	rec, err := receiptToRecord(receipt, tx, signer)
	if err != nil {
		return nil, apperr.NewBackendErr("failed to map receipt", err)
	}
	return rec, nil
}

// Close releases the underlying client connection.
func (r *EthereumReader) Close() {
	if r.client != nil {
		r.client.Close()
		r.client = nil
	}
	imetrics.Backend().Connected.Set(0)
}

func classifyFetchError(err error) string {
	var netErr net.Error

	switch {
	case err == nil:
		return "none"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.As(err, &netErr):
		return "network"
	default:
		return "rpc"
	}
}
