package http

import (
	"context"
	"encoding/json"
	"io"
	"math/big"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v3"
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

type fakeService struct {
	txErr    error
	wErr     error
	blockRec entity.Record
	blockErr error

	gotTx     entity.Record
	gotNumber *big.Int
	gotFull   bool
}

func (f *fakeService) CheckBlock(_ context.Context, number *big.Int, full bool) (entity.Record, error) {
	f.gotNumber = number
	f.gotFull = full
	return f.blockRec, f.blockErr
}

func (f *fakeService) CheckReceipt(context.Context, []byte) (entity.Record, error) {
	return nil, nil
}

func (f *fakeService) CheckTransaction(_ context.Context, tx entity.Record) error {
	f.gotTx = tx
	return f.txErr
}

func (f *fakeService) CheckWithdrawal(context.Context, entity.Record) error {
	return f.wErr
}

func testApp(svc *fakeService) *fiber.App {
	h := NewHandlers(testLogger{}, svc)
	app := fiber.New()
	app.Post("/validate/transaction", h.ValidateTransaction)
	app.Post("/validate/withdrawal", h.ValidateWithdrawal)
	app.Get("/blocks/:number", h.GetBlock)
	return app
}

func postJSON(t *testing.T, app *fiber.App, path, body string) (int, map[string]any) {
	t.Helper()
	req := httptest.NewRequest("POST", path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var out map[string]any
	require.NoError(t, json.Unmarshal(raw, &out))
	return resp.StatusCode, out
}

func TestValidateTransactionEndpoint(t *testing.T) {
	svc := &fakeService{}
	app := testApp(svc)

	status, out := postJSON(t, app, "/validate/transaction", `{"hash":"0x01","to":null,"nonce":7}`)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, true, out["valid"])

	// JSON null recipient means contract creation
	require.NotNil(t, svc.gotTx)
	assert.Equal(t, entity.CreateAddress, svc.gotTx["to"])
	assert.Equal(t, []byte{0x01}, svc.gotTx["hash"])
	assert.Equal(t, big.NewInt(7), svc.gotTx["nonce"])
}

func TestValidateTransactionEndpointRejectsBadBody(t *testing.T) {
	app := testApp(&fakeService{})

	status, _ := postJSON(t, app, "/validate/transaction", `not json`)
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, _ = postJSON(t, app, "/validate/transaction", `null`)
	assert.Equal(t, fiber.StatusBadRequest, status)
}

func TestValidateTransactionEndpointValidationFailure(t *testing.T) {
	svc := &fakeService{txErr: apperr.NewValidationErr("did not match any transaction shape", nil)}
	app := testApp(svc)

	status, out := postJSON(t, app, "/validate/transaction", `{"hash":"0x01"}`)
	assert.Equal(t, fiber.StatusUnprocessableEntity, status)
	assert.Equal(t, false, out["valid"])
	assert.Contains(t, out["error"], "did not match")
}

func TestValidateWithdrawalEndpoint(t *testing.T) {
	app := testApp(&fakeService{})
	status, out := postJSON(t, app, "/validate/withdrawal", `{"index":1,"validator_index":2,"address":"0x00","amount":3}`)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, true, out["valid"])

	svc := &fakeService{wErr: apperr.NewValidationErr("unexpected keys", nil)}
	status, _ = postJSON(t, testApp(svc), "/validate/withdrawal", `{"bogus":1}`)
	assert.Equal(t, fiber.StatusUnprocessableEntity, status)
}

func getPath(t *testing.T, app *fiber.App, path string) (int, map[string]any) {
	t.Helper()
	req := httptest.NewRequest("GET", path, nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var out map[string]any
	require.NoError(t, json.Unmarshal(raw, &out))
	return resp.StatusCode, out
}

func TestGetBlockEndpoint(t *testing.T) {
	svc := &fakeService{blockRec: entity.Record{
		"number": big.NewInt(100),
		"hash":   []byte{0xab},
		"extra":  entity.Null,
	}}
	app := testApp(svc)

	status, out := getPath(t, app, "/blocks/100?full_transactions=true")
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, big.NewInt(100), svc.gotNumber)
	assert.True(t, svc.gotFull)
	assert.Equal(t, "100", out["number"])
	assert.Equal(t, "0xab", out["hash"])
	// null-sentinel fields are stripped from the DTO
	assert.NotContains(t, out, "extra")
}

func TestGetBlockEndpointLatest(t *testing.T) {
	svc := &fakeService{blockRec: entity.Record{"number": big.NewInt(1)}}
	app := testApp(svc)

	status, _ := getPath(t, app, "/blocks/latest")
	assert.Equal(t, fiber.StatusOK, status)
	assert.Nil(t, svc.gotNumber)
	assert.False(t, svc.gotFull)
}

func TestGetBlockEndpointErrors(t *testing.T) {
	status, _ := getPath(t, testApp(&fakeService{}), "/blocks/abc")
	assert.Equal(t, fiber.StatusBadRequest, status)

	backend := &fakeService{blockErr: apperr.NewConformanceErr("failed to fetch block from backend",
		apperr.NewBackendErr("failed to fetch block", nil))}
	status, _ = getPath(t, testApp(backend), "/blocks/1")
	assert.Equal(t, fiber.StatusBadGateway, status)

	invalid := &fakeService{blockErr: apperr.NewValidationErr("missing keys", nil)}
	status, out := getPath(t, testApp(invalid), "/blocks/1")
	assert.Equal(t, fiber.StatusUnprocessableEntity, status)
	assert.Equal(t, false, out["valid"])
}

func TestParseBlockNumber(t *testing.T) {
	cases := []struct {
		in      string
		want    *big.Int
		wantErr bool
	}{
		{in: "latest", want: nil},
		{in: "", want: nil},
		{in: "100", want: big.NewInt(100)},
		{in: "0x64", want: big.NewInt(100)},
		{in: "0X64", want: big.NewInt(100)},
		{in: "-5", wantErr: true},
		{in: "abc", wantErr: true},
		{in: "0x", wantErr: true},
	}
	for _, tc := range cases {
		got, err := parseBlockNumber(tc.in)
		if tc.wantErr {
			assert.Error(t, err, tc.in)
			continue
		}
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, got, tc.in)
	}
}
