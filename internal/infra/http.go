package infra

import (
	"github.com/gofiber/fiber/v3"

	adapterhttp "github.com/pancudaniel7/chainconform-ethereum-service/internal/adapter/http"
	"github.com/pancudaniel7/chainconform-ethereum-service/internal/core/port"
	"github.com/pancudaniel7/chainconform-ethereum-service/internal/pkg/applog"
)

func InitRoutes(server *fiber.App, log applog.AppLogger, svc port.ConformanceService) {
	server.Get("/health", adapterhttp.Health)

	h := adapterhttp.NewHandlers(log, svc)
	server.Post("/validate/transaction", h.ValidateTransaction)
	server.Post("/validate/withdrawal", h.ValidateWithdrawal)
	server.Get("/blocks/:number", h.GetBlock)
}
