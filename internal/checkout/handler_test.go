package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	httperr "github.com/checkout-lab/checkout-pipeline/internal/core/errors"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

// fakeSessions captures the form it was asked to open a session for.
type fakeSessions struct {
	form *Form
	url  string
	err  error
}

func (f *fakeSessions) CreateSession(ctx context.Context, form *Form) (string, error) {
	f.form = form
	if f.err != nil {
		return "", f.err
	}
	return f.url, nil
}

func newTestRouter(t *testing.T, sessions *fakeSessions) *gin.Engine {
	t.Helper()

	gin.SetMode(gin.TestMode)
	svc := NewService(sessions)

	r := gin.New()
	svc.RegisterRoutes(r)
	return r
}

func validForm() url.Values {
	return url.Values{
		"name":        {"Sticker Pack"},
		"description": {"A pack of stickers"},
		"price":       {"5999"},
		"currency":    {"USD"},
		"quantity":    {"2"},
		"maxQuantity": {"5"},
	}
}

func postCheckout(r *gin.Engine, form url.Values, contentType string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/v1/checkout", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCheckoutHandler_RedirectsToSession(t *testing.T) {
	sessions := &fakeSessions{url: "https://checkout.stripe.com/c/pay/cs_test_123"}
	r := newTestRouter(t, sessions)

	form := validForm()
	form.Set("images", "https://cdn.example.com/a.png,https://cdn.example.com/b.png")
	w := postCheckout(r, form, formContentType)

	require.Equal(t, http.StatusSeeOther, w.Code)
	require.Equal(t, sessions.url, w.Header().Get("Location"))

	require.NotNil(t, sessions.form)
	require.Equal(t, "Sticker Pack", sessions.form.Name)
	require.Equal(t, "A pack of stickers", sessions.form.Description)
	require.Equal(t, int64(5999), sessions.form.Price)
	require.Equal(t, "USD", sessions.form.Currency)
	require.Equal(t, int64(2), sessions.form.Quantity)
	require.Equal(t, int64(5), sessions.form.MaxQuantity)
	require.Equal(t, []string{
		"https://cdn.example.com/a.png",
		"https://cdn.example.com/b.png",
	}, sessions.form.Images)
}

func TestCheckoutHandler_RejectsWrongContentType(t *testing.T) {
	sessions := &fakeSessions{url: "https://checkout.stripe.com/c/pay/cs_test_123"}
	r := newTestRouter(t, sessions)

	req := httptest.NewRequest(http.MethodPost, "/v1/checkout", strings.NewReader(`{"name":"x"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusUnsupportedMediaType, w.Code)

	var resp httperr.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, httperr.HttpUnsupportedMediaError, resp.ErrorType)
	require.Nil(t, sessions.form)
}

func TestCheckoutHandler_RejectsInvalidForm(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(form url.Values)
		wantErrs []string
	}{
		{
			name:     "missing name",
			mutate:   func(form url.Values) { form.Del("name") },
			wantErrs: []string{"name is a required field"},
		},
		{
			name:     "missing description",
			mutate:   func(form url.Values) { form.Del("description") },
			wantErrs: []string{"description is a required field"},
		},
		{
			name:     "unparseable price",
			mutate:   func(form url.Values) { form.Set("price", "ten") },
			wantErrs: []string{"invalid price"},
		},
		{
			name:     "negative price",
			mutate:   func(form url.Values) { form.Set("price", "-1") },
			wantErrs: []string{"price cannot be negative"},
		},
		{
			name:     "unsupported currency",
			mutate:   func(form url.Values) { form.Set("currency", "JPY") },
			wantErrs: []string{"invalid currency"},
		},
		{
			name:     "negative quantity",
			mutate:   func(form url.Values) { form.Set("quantity", "-2") },
			wantErrs: []string{"quantity cannot be negative"},
		},
		{
			name:     "max quantity below one",
			mutate:   func(form url.Values) { form.Set("maxQuantity", "0") },
			wantErrs: []string{"maxQuantity cannot be lower than 1"},
		},
		{
			name: "every field error is reported at once",
			mutate: func(form url.Values) {
				form.Del("name")
				form.Set("price", "-1")
				form.Del("maxQuantity")
			},
			wantErrs: []string{
				"name is a required field",
				"price cannot be negative",
				"maxQuantity is a required field",
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			sessions := &fakeSessions{url: "https://checkout.stripe.com/c/pay/cs_test_123"}
			r := newTestRouter(t, sessions)

			form := validForm()
			tc.mutate(form)
			w := postCheckout(r, form, formContentType)

			require.Equal(t, http.StatusBadRequest, w.Code)

			var resp httperr.ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			require.Equal(t, httperr.HttpInvalidFormError, resp.ErrorType)

			details, ok := resp.Details.([]interface{})
			require.True(t, ok)
			got := make([]string, 0, len(details))
			for _, d := range details {
				got = append(got, d.(string))
			}
			for _, want := range tc.wantErrs {
				require.Contains(t, got, want)
			}

			// No session is opened for an invalid form.
			require.Nil(t, sessions.form)
		})
	}
}

func TestCheckoutHandler_SessionCreationFailure(t *testing.T) {
	sessions := &fakeSessions{err: errors.New("provider unavailable")}
	r := newTestRouter(t, sessions)

	w := postCheckout(r, validForm(), formContentType)

	require.Equal(t, http.StatusInternalServerError, w.Code)

	var resp httperr.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, httperr.HttpInternalError, resp.ErrorType)
}
