package usecase

import (
	"context"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pancudaniel7/chainconform-ethereum-service/internal/core/entity"
	"github.com/pancudaniel7/chainconform-ethereum-service/internal/core/port"
	"github.com/pancudaniel7/chainconform-ethereum-service/internal/pkg/apperr"
	"github.com/pancudaniel7/chainconform-ethereum-service/internal/pkg/applog"
	imetrics "github.com/pancudaniel7/chainconform-ethereum-service/internal/pkg/metrics"
)

// ConformanceService fetches chain objects from the execution backend,
// enforces the outbound schema on them, records verdicts, and publishes
// them. Validation failures are fatal to the enclosing call; verdict
// bookkeeping (store, publish) is best-effort and only logged.
type ConformanceService struct {
	log       applog.AppLogger
	backend   port.ChainReader
	validator port.OutboundValidator
	reports   port.ReportStore
	publisher port.Publisher
}

func NewConformanceService(
	log applog.AppLogger,
	backend port.ChainReader,
	validator port.OutboundValidator,
	reports port.ReportStore,
	publisher port.Publisher,
) *ConformanceService {
	return &ConformanceService{
		log:       log,
		backend:   backend,
		validator: validator,
		reports:   reports,
		publisher: publisher,
	}
}

// CheckBlock fetches the block at the given height (nil means latest),
// validates it, records the verdict, and returns the validated record with
// fork-unintroduced fields rewritten to the null sentinel.
func (cs *ConformanceService) CheckBlock(ctx context.Context, number *big.Int, fullTransactions bool) (entity.Record, error) {
	block, err := cs.backend.BlockByNumber(ctx, number, fullTransactions)
	if err != nil {
		return nil, apperr.NewConformanceErr("failed to fetch block from backend", err)
	}

	subject := recordHashHex(block, "hash")
	height := recordUint64(block, "number")

	validated, verr := cs.validator.ValidateBlock(block)
	cs.record(ctx, cs.verdict(entity.KindBlock, subject, height, verr))
	if verr != nil {
		cs.log.Error("block failed outbound validation", "hash", subject, "number", height, "err", verr)
		return nil, verr
	}

	cs.log.Debug("block passed outbound validation", "hash", subject, "number", height)
	return validated, nil
}

// CheckReceipt fetches the receipt for the given transaction hash,
// validates it, records the verdict, and returns the record.
func (cs *ConformanceService) CheckReceipt(ctx context.Context, txHash []byte) (entity.Record, error) {
	receipt, err := cs.backend.ReceiptByTxHash(ctx, txHash)
	if err != nil {
		return nil, apperr.NewConformanceErr("failed to fetch receipt from backend", err)
	}

	subject := recordHashHex(receipt, "transaction_hash")
	height := recordUint64(receipt, "block_number")

	verr := cs.validator.ValidateReceipt(receipt)
	cs.record(ctx, cs.verdict(entity.KindReceipt, subject, height, verr))
	if verr != nil {
		cs.log.Error("receipt failed outbound validation", "transaction_hash", subject, "err", verr)
		return nil, verr
	}
	return receipt, nil
}

// CheckTransaction validates a caller-supplied transaction record.
func (cs *ConformanceService) CheckTransaction(ctx context.Context, tx entity.Record) error {
	if tx == nil {
		return apperr.NewConformanceErr("transaction record is required", nil)
	}
	subject := recordHashHex(tx, "hash")
	verr := cs.validator.ValidateTransaction(tx)
	cs.record(ctx, cs.verdict(entity.KindTransaction, subject, 0, verr))
	return verr
}

// CheckWithdrawal validates a caller-supplied withdrawal record. There is
// no subject hash for withdrawals, so no verdict is stored; only the
// counters move.
func (cs *ConformanceService) CheckWithdrawal(_ context.Context, withdrawal entity.Record) error {
	if withdrawal == nil {
		return apperr.NewConformanceErr("withdrawal record is required", nil)
	}
	verr := cs.validator.ValidateWithdrawal(withdrawal)
	imetrics.Conformance().ChecksTotal.WithLabelValues(entity.KindWithdrawal, resultLabel(verr)).Inc()
	return verr
}

func (cs *ConformanceService) verdict(kind, subject string, number uint64, verr error) entity.Verdict {
	v := entity.Verdict{
		Kind:        kind,
		SubjectHash: subject,
		Number:      number,
		Passed:      verr == nil,
		CheckedAtMS: time.Now().UnixMilli(),
	}
	if verr != nil {
		v.Reason = verr.Error()
	}
	return v
}

func (cs *ConformanceService) record(ctx context.Context, verdict entity.Verdict) {
	imetrics.Conformance().ChecksTotal.WithLabelValues(verdict.Kind, passLabel(verdict.Passed)).Inc()

	if cs.reports != nil && verdict.SubjectHash != "" {
		stored, err := cs.reports.StoreVerdict(ctx, verdict)
		if err != nil {
			cs.log.Warn("failed to store verdict", "kind", verdict.Kind, "subject", verdict.SubjectHash, "err", err)
			imetrics.App().WarningsTotal.WithLabelValues(imetrics.ComponentConformance, "store_verdict").Inc()
		} else if !stored {
			cs.log.Trace("verdict already stored (dedup hit)", "kind", verdict.Kind, "subject", verdict.SubjectHash)
			imetrics.Conformance().VerdictsDeduped.Inc()
		}
	}

	if cs.publisher != nil {
		headers := map[string]string{"subject": verdict.SubjectHash, "kind": verdict.Kind}
		if err := cs.publisher.PublishVerdict(ctx, verdict, headers); err != nil {
			cs.log.Warn("failed to publish verdict", "kind", verdict.Kind, "subject", verdict.SubjectHash, "err", err)
			imetrics.App().WarningsTotal.WithLabelValues(imetrics.ComponentConformance, "publish_verdict").Inc()
		}
	}
}

func resultLabel(err error) string {
	return passLabel(err == nil)
}

func passLabel(passed bool) string {
	if passed {
		return "pass"
	}
	return "fail"
}

func recordHashHex(rec entity.Record, key string) string {
	b := rec.Bytes(key)
	if len(b) == 0 {
		return ""
	}
	return common.BytesToHash(b).Hex()
}

func recordUint64(rec entity.Record, key string) uint64 {
	n := rec.BigInt(key)
	if n == nil || !n.IsUint64() {
		return 0
	}
	return n.Uint64()
}
