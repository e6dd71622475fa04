package port

import (
	"context"

	"github.com/pancudaniel7/chainconform-ethereum-service/internal/core/entity"
)

// Publisher emits conformance verdicts to downstream consumers.
type Publisher interface {
	PublishVerdict(ctx context.Context, verdict entity.Verdict, headers map[string]string) error
	Close()
}
