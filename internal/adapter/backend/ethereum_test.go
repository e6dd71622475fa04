package backend

import (
	"context"
	"errors"
	"math/big"
	"net"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/params"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pancudaniel7/chainconform-ethereum-service/internal/core/entity"
	"github.com/pancudaniel7/chainconform-ethereum-service/internal/core/validation"
	"github.com/pancudaniel7/chainconform-ethereum-service/internal/pkg/applog"
)

type fakeEthClient struct {
	block   *types.Block
	tx      *types.Transaction
	receipt *types.Receipt
	err     error
	closed  bool
}

func (f *fakeEthClient) BlockByNumber(_ context.Context, _ *big.Int) (*types.Block, error) {
	return f.block, f.err
}

func (f *fakeEthClient) TransactionByHash(_ context.Context, _ common.Hash) (*types.Transaction, bool, error) {
	return f.tx, false, f.err
}

func (f *fakeEthClient) TransactionReceipt(_ context.Context, _ common.Hash) (*types.Receipt, error) {
	return f.receipt, f.err
}

func (f *fakeEthClient) Close() { f.closed = true }

func testReaderConfig() *Config {
	return &Config{
		RPCURL:  "http://localhost:8545",
		Network: "dev",
	}
}

func newTestReader(t *testing.T, client ethereumClient) *EthereumReader {
	t.Helper()
	r, err := NewEthereumReader(applog.NewAppDefaultLogger(), testReaderConfig(), validator.New())
	require.NoError(t, err)
	r.client = client
	return r
}

func TestNewEthereumReaderRejectsBadConfig(t *testing.T) {
	log := applog.NewAppDefaultLogger()
	v := validator.New()

	_, err := NewEthereumReader(log, &Config{RPCURL: "not a url", Network: "dev"}, v)
	assert.Error(t, err)

	_, err = NewEthereumReader(log, &Config{RPCURL: "http://localhost:8545", Network: "ropsten"}, v)
	assert.Error(t, err)
}

func TestChainConfigFor(t *testing.T) {
	cases := []struct {
		network string
		chainID *big.Int
	}{
		{"mainnet", params.MainnetChainConfig.ChainID},
		{"sepolia", params.SepoliaChainConfig.ChainID},
		{"holesky", params.HoleskyChainConfig.ChainID},
		{"dev", params.AllDevChainProtocolChanges.ChainID},
	}
	for _, tc := range cases {
		cfg, err := chainConfigFor(tc.network)
		require.NoError(t, err, tc.network)
		assert.Equal(t, tc.chainID, cfg.ChainID, tc.network)
	}

	_, err := chainConfigFor("goerli")
	assert.Error(t, err)
}

func TestConnectRetriesUntilSuccess(t *testing.T) {
	cfg := testReaderConfig()
	cfg.DialMaxRetryAttempts = 5
	cfg.DialRetryInitialBackoffMS = 1
	cfg.DialRetryMaxBackoffMS = 2

	r, err := NewEthereumReader(applog.NewAppDefaultLogger(), cfg, validator.New())
	require.NoError(t, err)

	attempts := 0
	fake := &fakeEthClient{}
	r.newClient = func(context.Context) (ethereumClient, error) {
		attempts++
		if attempts < 3 {
			return nil, errors.New("connection refused")
		}
		return fake, nil
	}

	require.NoError(t, r.Connect(context.Background()))
	assert.Equal(t, 3, attempts)
	assert.Same(t, fake, r.client.(*fakeEthClient))
}

func TestConnectGivesUpAfterMaxAttempts(t *testing.T) {
	cfg := testReaderConfig()
	cfg.DialMaxRetryAttempts = 2
	cfg.DialRetryInitialBackoffMS = 1
	cfg.DialRetryMaxBackoffMS = 2

	r, err := NewEthereumReader(applog.NewAppDefaultLogger(), cfg, validator.New())
	require.NoError(t, err)

	attempts := 0
	r.newClient = func(context.Context) (ethereumClient, error) {
		attempts++
		return nil, errors.New("connection refused")
	}

	assert.Error(t, r.Connect(context.Background()))
	assert.Equal(t, 2, attempts)
}

func TestBlockByNumberMapsAndValidates(t *testing.T) {
	key, to := testKey(t)
	tx := signTx(t, key, &types.LegacyTx{
		Nonce: 0, To: &to, Value: big.NewInt(1), Gas: 21_000, GasPrice: big.NewInt(1),
	})
	r := newTestReader(t, &fakeEthClient{block: testBlock(tx)})

	rec, err := r.BlockByNumber(context.Background(), big.NewInt(100), true)
	require.NoError(t, err)

	outbound := validation.NewOutbound(r.ForkPredicates())
	_, err = outbound.ValidateBlock(rec)
	assert.NoError(t, err)
}

func TestBlockByNumberNotConnected(t *testing.T) {
	r, err := NewEthereumReader(applog.NewAppDefaultLogger(), testReaderConfig(), validator.New())
	require.NoError(t, err)

	_, err = r.BlockByNumber(context.Background(), big.NewInt(1), false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not connected")
}

func TestBlockByNumberFetchError(t *testing.T) {
	r := newTestReader(t, &fakeEthClient{err: errors.New("header not found")})

	_, err := r.BlockByNumber(context.Background(), big.NewInt(1), false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to fetch block")
}

func TestReceiptByTxHash(t *testing.T) {
	key, to := testKey(t)
	tx := signTx(t, key, &types.LegacyTx{
		Nonce: 0, To: &to, Value: big.NewInt(1), Gas: 21_000, GasPrice: big.NewInt(1),
	})
	receipt := &types.Receipt{
		Type:              types.LegacyTxType,
		Status:            types.ReceiptStatusSuccessful,
		CumulativeGasUsed: 21_000,
		TxHash:            tx.Hash(),
		GasUsed:           21_000,
		EffectiveGasPrice: big.NewInt(1),
		BlockHash:         common.HexToHash("0x20"),
		BlockNumber:       big.NewInt(100),
	}
	r := newTestReader(t, &fakeEthClient{tx: tx, receipt: receipt})

	rec, err := r.ReceiptByTxHash(context.Background(), tx.Hash().Bytes())
	require.NoError(t, err)

	outbound := validation.NewOutbound(r.ForkPredicates())
	assert.NoError(t, outbound.ValidateReceipt(rec))
}

func TestReceiptByTxHashRejectsBadHash(t *testing.T) {
	r := newTestReader(t, &fakeEthClient{})

	_, err := r.ReceiptByTxHash(context.Background(), []byte{0x01, 0x02})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "32 bytes")
}

func TestForkPredicatesFollowChainConfig(t *testing.T) {
	cfg := testReaderConfig()
	cfg.Network = "mainnet"
	r, err := NewEthereumReader(applog.NewAppDefaultLogger(), cfg, validator.New())
	require.NoError(t, err)

	forks := r.ForkPredicates()

	preLondon := entity.Record{"number": big.NewInt(1_000_000), "timestamp": big.NewInt(0)}
	assert.False(t, forks.IsLondon(preLondon))
	assert.False(t, forks.IsShanghai(preLondon))

	postLondon := entity.Record{
		"number":    big.NewInt(13_000_000),
		"timestamp": big.NewInt(1_640_000_000),
	}
	assert.True(t, forks.IsLondon(postLondon))
	assert.False(t, forks.IsShanghai(postLondon))

	postPrague := entity.Record{
		"number":    big.NewInt(22_500_000),
		"timestamp": big.NewInt(1_750_000_000),
	}
	assert.True(t, forks.IsShanghai(postPrague))
	assert.True(t, forks.IsCancun(postPrague))
	assert.True(t, forks.IsPrague(postPrague))
}

func TestCloseReleasesClient(t *testing.T) {
	fake := &fakeEthClient{}
	r := newTestReader(t, fake)

	r.Close()
	assert.True(t, fake.closed)
	assert.Nil(t, r.client)
}

func TestClassifyFetchError(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, "none"},
		{"timeout", context.DeadlineExceeded, "timeout"},
		{"network", &net.DNSError{Err: "no such host"}, "network"},
		{"rpc", errors.New("method not found"), "rpc"},
		{"wrapped timeout", errors.Join(errors.New("fetch"), context.DeadlineExceeded), "timeout"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, classifyFetchError(tc.err))
		})
	}
}
