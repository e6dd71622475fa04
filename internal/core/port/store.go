package port

import (
	"context"

	"github.com/pancudaniel7/chainconform-ethereum-service/internal/core/entity"
)

// ReportStore persists conformance verdicts. StoreVerdict is deduplicated
// per subject hash; it returns true when the verdict was recorded for the
// first time and false on a dedup hit.
type ReportStore interface {
	StoreVerdict(ctx context.Context, verdict entity.Verdict) (bool, error)
	IsVerified(ctx context.Context, subjectHash string) (bool, error)
}
