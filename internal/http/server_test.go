package http

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ledger/internal/core"
	"ledger/internal/log"
	"ledger/internal/repository"
	"ledger/internal/services"
	"ledger/internal/storage"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	ctx := context.Background()
	store, err := storage.Open(ctx, filepath.Join(t.TempDir(), "ledger.db"), storage.Options{Logger: log.Discard().Slog()})
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	logger := log.Discard()
	repos := repository.New(store, logger, nil)
	srv, err := NewServer(":0", Deps{
		Store:   store,
		Repos:   repos,
		Reports: services.NewReportService(store, repos.Transactions, 8, time.Minute, logger),
		Backup:  services.NewBackupService(store, nil, false, logger),
		Logger:  logger,
	}, Options{RateLimitPerMinute: 1000})
	require.NoError(t, err)
	t.Cleanup(func() { srv.Shutdown(context.Background()) })
	return srv
}

func do(t *testing.T, srv *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &v), rr.Body.String())
	return v
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t)
	rr := do(t, srv, http.MethodGet, "/healthz", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"schemaVersion":2`)
	assert.NotEmpty(t, rr.Header().Get("X-Request-ID"))
	assert.Equal(t, "nosniff", rr.Header().Get("X-Content-Type-Options"))
}

func TestCategoryLifecycle(t *testing.T) {
	srv := newTestServer(t)

	rr := do(t, srv, http.MethodPost, "/api/categories", `{"name":"Hosting","icon_name":"server"}`)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	cat := decode[core.Category](t, rr)
	assert.NotZero(t, cat.ID)

	rr = do(t, srv, http.MethodPost, "/api/categories", `{"name":"Hosting"}`)
	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Equal(t, "duplicate_name", decode[errorResponse](t, rr).Code)

	rr = do(t, srv, http.MethodPost, "/api/transactions",
		fmt.Sprintf(`{"date":"2025-04-02","value":"-25","type":"expense","condition":"paid","installments":1,"category_id":%d}`, cat.ID))
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	txID := decode[map[string]int64](t, rr)["id"]

	rr = do(t, srv, http.MethodPut, fmt.Sprintf("/api/categories/%d", cat.ID), `{"name":"Cloud","icon_name":"cloud"}`)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = do(t, srv, http.MethodGet, fmt.Sprintf("/api/transactions/%d", txID), "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"category_name":"Cloud"`)

	rr = do(t, srv, http.MethodDelete, fmt.Sprintf("/api/categories/%d", cat.ID), "")
	require.Equal(t, http.StatusNoContent, rr.Code)

	rr = do(t, srv, http.MethodGet, fmt.Sprintf("/api/transactions/%d", txID), "")
	require.Equal(t, http.StatusOK, rr.Code)
	got := decode[core.TransactionWithNames](t, rr)
	assert.Nil(t, got.CategoryID)
	assert.Nil(t, got.CategoryName)

	rr = do(t, srv, http.MethodDelete, fmt.Sprintf("/api/categories/%d", cat.ID), "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestTransactionValidationAndQuery(t *testing.T) {
	srv := newTestServer(t)

	rr := do(t, srv, http.MethodPost, "/api/transactions",
		`{"date":"2025-04-02","value":"25","type":"expense","condition":"paid","installments":1}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)

	rr = do(t, srv, http.MethodPost, "/api/transactions", `{"date":"2025-04-02","bogus":1}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)

	for _, body := range []string{
		`{"date":"2025-04-02T09:00:00","description":"Coffee beans","value":"-12.50","type":"expense","condition":"paid","installments":1}`,
		`{"date":"2025-04-05","description":"Invoice 42","value":300,"type":"revenue","condition":"pending","installments":2}`,
		`{"date":"2025-05-01","description":"Late coffee","value":"-3","type":"expense","condition":"paid","installments":1}`,
	} {
		rr = do(t, srv, http.MethodPost, "/api/transactions", body)
		require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	}

	rr = do(t, srv, http.MethodGet, "/api/transactions?startDate=2025-04-01&endDate=2025-04-30", "")
	require.Equal(t, http.StatusOK, rr.Code)
	rows := decode[[]core.TransactionWithNames](t, rr)
	require.Len(t, rows, 2)
	assert.Equal(t, "Invoice 42", rows[0].Description)

	rr = do(t, srv, http.MethodGet, "/api/transactions?query=COFFEE&condition=paid", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Len(t, decode[[]core.TransactionWithNames](t, rr), 2)

	rr = do(t, srv, http.MethodGet, "/api/transactions?startDate=2099-01-01&endDate=2099-01-02", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `[]`, rr.Body.String())

	rr = do(t, srv, http.MethodGet, "/api/transactions?type=transfer", "")
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)

	rr = do(t, srv, http.MethodGet, "/api/transactions/999", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = do(t, srv, http.MethodPost, "/api/transactions/delete", `{"ids":[]}`)
	assert.Equal(t, http.StatusNoContent, rr.Code)
}

func TestReportEndpoint(t *testing.T) {
	srv := newTestServer(t)

	rr := do(t, srv, http.MethodPut, "/api/config", `{"company_name":"ACME","initial_balance":"100","company_logo":""}`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	for _, body := range []string{
		`{"date":"2025-01-10","value":"-30","type":"expense","condition":"paid","installments":1}`,
		`{"date":"2025-02-10","value":"50","type":"revenue","condition":"paid","installments":1}`,
	} {
		require.Equal(t, http.StatusCreated, do(t, srv, http.MethodPost, "/api/transactions", body).Code)
	}

	rr = do(t, srv, http.MethodGet, "/api/reports?startDate=2025-02-01&endDate=2025-02-28", "")
	require.Equal(t, http.StatusOK, rr.Code)
	rep := decode[core.Report](t, rr)
	assert.Equal(t, "70", rep.Summary.OpeningBalance.String())
	assert.Equal(t, "120", rep.Summary.ClosingBalance.String())

	rr = do(t, srv, http.MethodGet, "/api/reports?startDate=2025-03-01&endDate=2025-02-01", "")
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
}

func TestBackupImportAndReset(t *testing.T) {
	srv := newTestServer(t)
	require.Equal(t, http.StatusCreated, do(t, srv, http.MethodPost, "/api/payment-methods", `{"name":"Pix"}`).Code)

	rr := do(t, srv, http.MethodGet, "/api/backup", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Header().Get("Content-Disposition"), "ledger-backup-")
	exported := rr.Body.Bytes()

	rr = do(t, srv, http.MethodPost, "/api/reset", "")
	require.Equal(t, http.StatusNoContent, rr.Code)
	pms := decode[[]core.PaymentMethod](t, do(t, srv, http.MethodGet, "/api/payment-methods", ""))
	for _, p := range pms {
		assert.NotEqual(t, "Pix", p.Name)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/backup", bytes.NewReader(exported))
	rr = httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	res := decode[storage.RestoreResult](t, rr)
	assert.Equal(t, len(pms)+1, res.PaymentMethods)

	rr = do(t, srv, http.MethodPost, "/api/backup", `{"categories":[]}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)

	// A row the schema rejects is the caller's fault, not a server error.
	rr = do(t, srv, http.MethodPost, "/api/backup", `{"categories":[],"paymentMethods":[],"userConfig":{},
		"transactions":[{"date":"2025-01-01","value":1,"type":"revenue","condition":"paid"}]}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code, rr.Body.String())
	assert.Contains(t, rr.Body.String(), "transactions[0]")
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{core.NewNotFoundError(core.EntityCategory, 1), http.StatusNotFound},
		{core.NewDuplicateNameError(core.EntityCategory, "x"), http.StatusConflict},
		{core.NewValidationError("bad"), http.StatusUnprocessableEntity},
		{core.NewStorageError("op", fmt.Errorf("disk")), http.StatusInternalServerError},
		{fmt.Errorf("wrapped: %w", core.NewNotFoundError(core.EntityTransaction, 2)), http.StatusNotFound},
	}
	for _, tt := range tests {
		got, _ := statusFor(tt.err)
		assert.Equal(t, tt.want, got, "%v", tt.err)
	}
}
