package http

import (
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/goccy/go-json"

	"ledger/internal/core"
)

const (
	maxBodyBytes     = 1 << 20
	maxDocumentBytes = 32 << 20
)

// decodeJSON reads a single JSON value from the body into v. Unknown fields
// are rejected.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if err == io.EOF {
			return core.NewValidationError("request body is empty")
		}
		return core.NewValidationError("malformed request body: %v", err)
	}
	return nil
}

func pathID(r *http.Request) (int64, error) {
	raw := r.PathValue("id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		return 0, core.NewValidationError("invalid id %q", raw)
	}
	return id, nil
}

func queryDate(r *http.Request, key string) (*core.Date, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return nil, nil
	}
	d, err := core.ParseDate(raw)
	if err != nil {
		return nil, core.NewValidationError("invalid %s %q", key, raw)
	}
	return &d, nil
}

func queryID(r *http.Request, key string) (*int64, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return nil, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, core.NewValidationError("invalid %s %q", key, raw)
	}
	return &id, nil
}

// parseDateRange reads startDate and endDate; either may be absent.
func parseDateRange(r *http.Request) (core.DateRange, error) {
	start, err := queryDate(r, "startDate")
	if err != nil {
		return core.DateRange{}, err
	}
	end, err := queryDate(r, "endDate")
	if err != nil {
		return core.DateRange{}, err
	}
	if start != nil && end != nil && end.Before(start.Time) {
		return core.DateRange{}, core.NewValidationError("endDate precedes startDate")
	}
	return core.DateRange{Start: start, End: end}, nil
}

func parseFilter(r *http.Request) (core.TransactionFilter, error) {
	rng, err := parseDateRange(r)
	if err != nil {
		return core.TransactionFilter{}, err
	}
	f := core.TransactionFilter{StartDate: rng.Start, EndDate: rng.End}

	q := r.URL.Query()
	if v := q.Get("type"); v != "" {
		f.Type = core.TransactionType(v)
		if !f.Type.IsValid() {
			return core.TransactionFilter{}, core.NewValidationError("invalid type %q", v)
		}
	}
	if v := q.Get("condition"); v != "" {
		f.Condition = core.Condition(v)
		if !f.Condition.IsValid() {
			return core.TransactionFilter{}, core.NewValidationError("invalid condition %q", v)
		}
	}
	if f.CategoryID, err = queryID(r, "categoryId"); err != nil {
		return core.TransactionFilter{}, err
	}
	if f.PaymentMethodID, err = queryID(r, "paymentMethodId"); err != nil {
		return core.TransactionFilter{}, err
	}
	f.Query = q.Get("query")
	return f, nil
}
