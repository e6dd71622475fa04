package usecase

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pancudaniel7/chainconform-ethereum-service/internal/core/entity"
	"github.com/pancudaniel7/chainconform-ethereum-service/internal/pkg/apperr"
)

type testLogger struct{}

func (testLogger) Info(string, ...any)  {}
func (testLogger) Warn(string, ...any)  {}
func (testLogger) Error(string, ...any) {}
func (testLogger) Debug(string, ...any) {}
func (testLogger) Trace(string, ...any) {}
func (testLogger) Fatal(string, ...any) {}

type fakeReader struct {
	block     entity.Record
	receipt   entity.Record
	err       error
	gotNumber *big.Int
	gotFull   bool
	gotTxHash []byte
}

func (f *fakeReader) Connect(context.Context) error { return nil }
func (f *fakeReader) BlockByNumber(_ context.Context, number *big.Int, full bool) (entity.Record, error) {
	f.gotNumber = number
	f.gotFull = full
	return f.block, f.err
}
func (f *fakeReader) ReceiptByTxHash(_ context.Context, txHash []byte) (entity.Record, error) {
	f.gotTxHash = txHash
	return f.receipt, f.err
}
func (f *fakeReader) ForkPredicates() entity.ForkPredicates { return entity.ForkPredicates{} }
func (f *fakeReader) Close()                                {}

type fakeValidator struct {
	err error
}

func (f *fakeValidator) ValidateBlock(block entity.Record) (entity.Record, error) {
	return block, f.err
}
func (f *fakeValidator) ValidateTransaction(entity.Record) error { return f.err }
func (f *fakeValidator) ValidateReceipt(entity.Record) error     { return f.err }
func (f *fakeValidator) ValidateWithdrawal(entity.Record) error  { return f.err }
func (f *fakeValidator) ValidateAccounts(any) error              { return f.err }

type fakeStore struct {
	verdicts []entity.Verdict
	stored   bool
	err      error
}

func (f *fakeStore) StoreVerdict(_ context.Context, v entity.Verdict) (bool, error) {
	f.verdicts = append(f.verdicts, v)
	return f.stored, f.err
}
func (f *fakeStore) IsVerified(context.Context, string) (bool, error) { return false, nil }

type fakePublisher struct {
	verdicts []entity.Verdict
	headers  []map[string]string
	err      error
}

func (f *fakePublisher) PublishVerdict(_ context.Context, v entity.Verdict, h map[string]string) error {
	f.verdicts = append(f.verdicts, v)
	f.headers = append(f.headers, h)
	return f.err
}
func (f *fakePublisher) Close() {}

func blockFixture() entity.Record {
	return entity.Record{
		"hash":   common.HexToHash("0xbeef").Bytes(),
		"number": big.NewInt(100),
	}
}

func TestCheckBlockRecordsPassingVerdict(t *testing.T) {
	reader := &fakeReader{block: blockFixture()}
	reports := &fakeStore{stored: true}
	publisher := &fakePublisher{}
	svc := NewConformanceService(testLogger{}, reader, &fakeValidator{}, reports, publisher)

	rec, err := svc.CheckBlock(context.Background(), big.NewInt(100), true)
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, big.NewInt(100), reader.gotNumber)
	assert.True(t, reader.gotFull)

	require.Len(t, reports.verdicts, 1)
	v := reports.verdicts[0]
	assert.Equal(t, entity.KindBlock, v.Kind)
	assert.Equal(t, common.HexToHash("0xbeef").Hex(), v.SubjectHash)
	assert.Equal(t, uint64(100), v.Number)
	assert.True(t, v.Passed)
	assert.Empty(t, v.Reason)
	assert.NotZero(t, v.CheckedAtMS)

	require.Len(t, publisher.verdicts, 1)
	assert.Equal(t, v.SubjectHash, publisher.headers[0]["subject"])
	assert.Equal(t, entity.KindBlock, publisher.headers[0]["kind"])
}

func TestCheckBlockValidationFailureIsFatal(t *testing.T) {
	reader := &fakeReader{block: blockFixture()}
	reports := &fakeStore{stored: true}
	verr := apperr.NewValidationErr("missing keys nonce", nil)
	svc := NewConformanceService(testLogger{}, reader, &fakeValidator{err: verr}, reports, &fakePublisher{})

	rec, err := svc.CheckBlock(context.Background(), nil, false)
	require.Error(t, err)
	assert.Nil(t, rec)

	// the failing verdict is still recorded
	require.Len(t, reports.verdicts, 1)
	assert.False(t, reports.verdicts[0].Passed)
	assert.Contains(t, reports.verdicts[0].Reason, "missing keys nonce")
}

func TestCheckBlockBackendFailure(t *testing.T) {
	reader := &fakeReader{err: errors.New("connection refused")}
	reports := &fakeStore{}
	svc := NewConformanceService(testLogger{}, reader, &fakeValidator{}, reports, nil)

	_, err := svc.CheckBlock(context.Background(), nil, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to fetch block")
	assert.Empty(t, reports.verdicts)
}

func TestCheckBlockBookkeepingIsBestEffort(t *testing.T) {
	reader := &fakeReader{block: blockFixture()}
	reports := &fakeStore{err: errors.New("redis down")}
	publisher := &fakePublisher{err: errors.New("kafka down")}
	svc := NewConformanceService(testLogger{}, reader, &fakeValidator{}, reports, publisher)

	rec, err := svc.CheckBlock(context.Background(), nil, false)
	require.NoError(t, err)
	require.NotNil(t, rec)
}

func TestCheckReceipt(t *testing.T) {
	receipt := entity.Record{
		"transaction_hash": common.HexToHash("0xcafe").Bytes(),
		"block_number":     big.NewInt(7),
	}
	reader := &fakeReader{receipt: receipt}
	reports := &fakeStore{stored: true}
	svc := NewConformanceService(testLogger{}, reader, &fakeValidator{}, reports, nil)

	rec, err := svc.CheckReceipt(context.Background(), common.HexToHash("0xcafe").Bytes())
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, common.HexToHash("0xcafe").Bytes(), reader.gotTxHash)

	require.Len(t, reports.verdicts, 1)
	assert.Equal(t, entity.KindReceipt, reports.verdicts[0].Kind)
	assert.Equal(t, common.HexToHash("0xcafe").Hex(), reports.verdicts[0].SubjectHash)
	assert.Equal(t, uint64(7), reports.verdicts[0].Number)
}

func TestCheckTransaction(t *testing.T) {
	reports := &fakeStore{stored: true}
	svc := NewConformanceService(testLogger{}, &fakeReader{}, &fakeValidator{}, reports, nil)

	err := svc.CheckTransaction(context.Background(), nil)
	require.Error(t, err)

	tx := entity.Record{"hash": common.HexToHash("0x01").Bytes()}
	require.NoError(t, svc.CheckTransaction(context.Background(), tx))
	require.Len(t, reports.verdicts, 1)
	assert.Equal(t, entity.KindTransaction, reports.verdicts[0].Kind)
}

func TestCheckWithdrawal(t *testing.T) {
	reports := &fakeStore{}
	svc := NewConformanceService(testLogger{}, &fakeReader{}, &fakeValidator{}, reports, nil)

	require.Error(t, svc.CheckWithdrawal(context.Background(), nil))
	require.NoError(t, svc.CheckWithdrawal(context.Background(), entity.Record{"index": big.NewInt(1)}))

	// withdrawals have no subject hash, so no verdict is stored
	assert.Empty(t, reports.verdicts)
}

func TestVerdictSkippedWithoutSubjectHash(t *testing.T) {
	reports := &fakeStore{}
	svc := NewConformanceService(testLogger{}, &fakeReader{}, &fakeValidator{}, reports, nil)

	// transaction record without a hash key still validates, but nothing
	// is stored for it
	require.NoError(t, svc.CheckTransaction(context.Background(), entity.Record{"nonce": big.NewInt(1)}))
	assert.Empty(t, reports.verdicts)
}
