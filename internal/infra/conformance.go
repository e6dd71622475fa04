package infra

import (
	"github.com/pancudaniel7/chainconform-ethereum-service/internal/core/port"
	"github.com/pancudaniel7/chainconform-ethereum-service/internal/core/usecase"
	"github.com/pancudaniel7/chainconform-ethereum-service/internal/core/validation"
	"github.com/pancudaniel7/chainconform-ethereum-service/internal/pkg/applog"
)

// InitConformanceService assembles the conformance use case: the outbound
// validator is bound to the backend's fork schedule, verdict bookkeeping to
// the store and publisher. Store and publisher may be nil; checks then run
// without verdict persistence.
func InitConformanceService(
	log applog.AppLogger,
	backend port.ChainReader,
	reports port.ReportStore,
	publisher port.Publisher,
) port.ConformanceService {
	outbound := validation.NewOutbound(backend.ForkPredicates())
	return usecase.NewConformanceService(log, backend, outbound, reports, publisher)
}
