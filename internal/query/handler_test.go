package query

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	v1 "github.com/checkout-lab/checkout-pipeline/internal/api/v1"
	httperr "github.com/checkout-lab/checkout-pipeline/internal/core/errors"
	"github.com/checkout-lab/checkout-pipeline/internal/core/storage"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func newTestRouter(t *testing.T) (*gin.Engine, *storage.MemoryStore) {
	t.Helper()

	gin.SetMode(gin.TestMode)
	store := storage.NewMemoryStore()
	svc := NewService(store)

	r := gin.New()
	svc.RegisterRoutes(r)
	return r, store
}

func seedPayment(t *testing.T, store *storage.MemoryStore, paymentIntentID string, date time.Time, paid, viewed bool) {
	t.Helper()

	require.NoError(t, store.Upsert(context.Background(), &v1.PaymentRecord{
		PaymentIntentID: paymentIntentID,
		TransactionDate: date,
		Item:            "sticker pack",
		Subtotal:        5000,
		Total:           5999,
		Quantity:        1,
		Paid:            paid,
		Viewed:          viewed,
	}))
}

type listResponse struct {
	Payments []*v1.PaymentRecord `json:"payments"`
}

func getPayments(r *gin.Engine, query string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/v1/payments"+query, nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHandleListPayments(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		query   string
		wantIDs []string
	}{
		{
			name:    "no filter returns everything newest first",
			query:   "",
			wantIDs: []string{"pi_viewed", "pi_unpaid", "pi_paid"},
		},
		{
			name:    "paid filter",
			query:   "?filter=paid",
			wantIDs: []string{"pi_viewed", "pi_paid"},
		},
		{
			name:    "unpaid filter",
			query:   "?filter=unpaid",
			wantIDs: []string{"pi_unpaid"},
		},
		{
			name:    "viewed filter",
			query:   "?filter=viewed",
			wantIDs: []string{"pi_viewed"},
		},
		{
			name:    "unviewed filter",
			query:   "?filter=unviewed",
			wantIDs: []string{"pi_unpaid", "pi_paid"},
		},
		{
			name:    "limit caps the page",
			query:   "?limit=1",
			wantIDs: []string{"pi_viewed"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r, store := newTestRouter(t)
			seedPayment(t, store, "pi_paid", base, true, false)
			seedPayment(t, store, "pi_unpaid", base.Add(time.Hour), false, false)
			seedPayment(t, store, "pi_viewed", base.Add(2*time.Hour), true, true)

			w := getPayments(r, tc.query)
			require.Equal(t, http.StatusOK, w.Code)

			var resp listResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

			ids := make([]string, 0, len(resp.Payments))
			for _, record := range resp.Payments {
				ids = append(ids, record.PaymentIntentID)
			}
			require.Equal(t, tc.wantIDs, ids)
		})
	}
}

func TestHandleListPayments_EmptyStoreReturnsEmptyArray(t *testing.T) {
	r, _ := newTestRouter(t)

	w := getPayments(r, "")
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{"payments":[]}`, w.Body.String())
}

func TestHandleListPayments_RejectsUnknownFilter(t *testing.T) {
	r, _ := newTestRouter(t)

	w := getPayments(r, "?filter=refunded")
	require.Equal(t, http.StatusBadRequest, w.Code)

	var resp httperr.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, httperr.HttpInvalidJsonError, resp.ErrorType)
}

func TestHandleListPayments_RejectsBadLimit(t *testing.T) {
	r, _ := newTestRouter(t)

	w := getPayments(r, "?limit=ten")
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleMarkViewed(t *testing.T) {
	r, store := newTestRouter(t)
	date := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	seedPayment(t, store, "pi_1", date, true, false)

	req := httptest.NewRequest(http.MethodPut, "/v1/payments/pi_1/viewed", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{"status":"viewed"}`, w.Body.String())

	stored := store.Get("pi_1", date.UnixNano())
	require.True(t, stored.Viewed)
	require.Equal(t, int64(5999), stored.Total)
}

func TestHandleMarkViewed_UnknownIntent(t *testing.T) {
	r, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPut, "/v1/payments/pi_missing/viewed", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusNotFound, w.Code)

	var resp httperr.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, httperr.HttpNotFoundError, resp.ErrorType)
}

func TestFilterFromName(t *testing.T) {
	filter, err := filterFromName("paid")
	require.NoError(t, err)
	require.NotNil(t, filter.Paid)
	require.True(t, *filter.Paid)
	require.Nil(t, filter.Viewed)

	_, err = filterFromName("bogus")
	require.Error(t, err)
}
