package http

import (
	"encoding/json"
	"errors"
	"math/big"
	"strings"

	"github.com/gofiber/fiber/v3"

	"github.com/pancudaniel7/chainconform-ethereum-service/internal/core/entity"
	"github.com/pancudaniel7/chainconform-ethereum-service/internal/core/port"
	"github.com/pancudaniel7/chainconform-ethereum-service/internal/core/usecase"
	"github.com/pancudaniel7/chainconform-ethereum-service/internal/pkg/apperr"
	"github.com/pancudaniel7/chainconform-ethereum-service/internal/pkg/applog"
)

// Handlers exposes the conformance service over HTTP.
type Handlers struct {
	log applog.AppLogger
	svc port.ConformanceService
}

func NewHandlers(log applog.AppLogger, svc port.ConformanceService) *Handlers {
	return &Handlers{log: log, svc: svc}
}

// ValidateTransaction checks a caller-supplied transaction object against
// the outbound schema. Returns 200 when the object conforms, 422 with the
// failure reason when it does not.
func (h *Handlers) ValidateTransaction(c fiber.Ctx) error {
	rec, err := recordFromBody(c.Body())
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "request body is not a JSON object"})
	}
	if err := h.svc.CheckTransaction(c.Context(), rec); err != nil {
		return h.checkError(c, err)
	}
	return c.JSON(fiber.Map{"valid": true})
}

// ValidateWithdrawal checks a caller-supplied withdrawal object against the
// outbound schema.
func (h *Handlers) ValidateWithdrawal(c fiber.Ctx) error {
	rec, err := recordFromBody(c.Body())
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "request body is not a JSON object"})
	}
	if err := h.svc.CheckWithdrawal(c.Context(), rec); err != nil {
		return h.checkError(c, err)
	}
	return c.JSON(fiber.Map{"valid": true})
}

// GetBlock fetches the requested block from the execution backend, runs it
// through outbound validation, and returns the validated record. The
// `full_transactions` query flag selects full transaction objects instead
// of hash references.
func (h *Handlers) GetBlock(c fiber.Ctx) error {
	number, err := parseBlockNumber(c.Params("number"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	full := strings.EqualFold(c.Query("full_transactions"), "true")

	rec, err := h.svc.CheckBlock(c.Context(), number, full)
	if err != nil {
		return h.checkError(c, err)
	}
	return c.JSON(usecase.RecordToJSON(rec))
}

func (h *Handlers) checkError(c fiber.Ctx, err error) error {
	var vErr *apperr.ValidationErr
	if errors.As(err, &vErr) {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"valid": false, "error": err.Error()})
	}
	var bErr *apperr.BackendErr
	if errors.As(err, &bErr) {
		h.log.Warn("backend fetch failed", "err", err)
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": err.Error()})
	}
	h.log.Error("conformance check failed", "err", err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
}

func recordFromBody(body []byte) (entity.Record, error) {
	var raw map[string]any
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, errors.New("empty body")
	}
	return usecase.RecordFromJSON(raw), nil
}

// parseBlockNumber accepts "latest" (or an empty segment), a decimal
// height, or a 0x-prefixed hex height.
func parseBlockNumber(raw string) (*big.Int, error) {
	s := strings.TrimSpace(raw)
	if s == "" || strings.EqualFold(s, "latest") {
		return nil, nil
	}
	base := 10
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		s, base = s[2:], 16
	}
	n, ok := new(big.Int).SetString(s, base)
	if !ok || n.Sign() < 0 {
		return nil, errors.New("block number must be \"latest\", a decimal height, or 0x-prefixed hex")
	}
	return n, nil
}
