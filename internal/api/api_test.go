package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ledger_system/internal/auth"
	"ledger_system/internal/domain"
	"ledger_system/internal/insights"
	"ledger_system/internal/ledger"
	"ledger_system/internal/metrics"
	"ledger_system/internal/store"
)

type testServer struct {
	t *testing.T
	r *gin.Engine
}

func newTestServer(t *testing.T) *testServer {
	gin.SetMode(gin.TestMode)
	s := store.NewMemory()
	reg := prometheus.NewRegistry()
	r := NewRouter(Deps{
		Ledger:    ledger.New(s, nil, metrics.NewRecorder(reg)),
		Users:     auth.NewService(s, nil),
		JWTSecret: "test-secret",
		JWTTTL:    time.Hour,
		CacheTTL:  time.Minute,
		Gatherer:  reg,
	})
	return &testServer{t: t, r: r}
}

func (ts *testServer) do(method, path, token string, body any) *httptest.ResponseRecorder {
	ts.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(ts.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	ts.r.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func (ts *testServer) signup(name, email string) string {
	ts.t.Helper()
	w := ts.do(http.MethodPost, "/user", "", gin.H{"name": name, "email": email, "password": "secret1"})
	require.Equal(ts.t, http.StatusCreated, w.Code, w.Body.String())
	w = ts.do(http.MethodPost, "/user/login", "", gin.H{"email": email, "password": "secret1"})
	require.Equal(ts.t, http.StatusOK, w.Code, w.Body.String())
	return decode[AuthResponse](ts.t, w).Token
}

func TestAuthRoutes(t *testing.T) {
	ts := newTestServer(t)
	token := ts.signup("Ann", "ann@example.com")

	w := ts.do(http.MethodPost, "/user", "", gin.H{"name": "Ann", "email": "ann@example.com", "password": "secret1"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = ts.do(http.MethodPost, "/user", "", gin.H{"name": "Bob", "email": "not-an-email", "password": "secret1"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "valid email")

	w = ts.do(http.MethodPost, "/user", "", gin.H{"name": "Bob"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = ts.do(http.MethodPost, "/user/login", "", gin.H{"email": "ann@example.com", "password": "secret1"})
	require.Equal(t, http.StatusOK, w.Code)
	login := decode[AuthResponse](t, w)
	assert.NotEmpty(t, login.Token)
	require.NotNil(t, login.User)
	assert.Equal(t, "ann@example.com", login.User.Email)
	assert.Equal(t, "Ann", login.User.Name)

	w = ts.do(http.MethodPost, "/user/login", "", gin.H{"email": "ann@example.com", "password": "wrong-pass"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = ts.do(http.MethodGet, "/user", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	me := decode[struct {
		User domain.Actor `json:"user"`
	}](t, w)
	assert.Equal(t, "ann@example.com", me.User.Email)
	assert.NotContains(t, w.Body.String(), "password")

	assert.Equal(t, http.StatusUnauthorized, ts.do(http.MethodGet, "/user", "", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, ts.do(http.MethodGet, "/accounts", "", nil).Code)
}

type accountBody struct {
	Account domain.Account `json:"account"`
}

type transactionBody struct {
	Transaction domain.Transaction `json:"transaction"`
}

func TestLedgerRoutes(t *testing.T) {
	ts := newTestServer(t)
	token := ts.signup("Ann", "ann@example.com")

	w := ts.do(http.MethodPost, "/accounts", token, gin.H{"bank_name": "HDFC", "account_type": "Savings", "initial_balance": "1000"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	acc := decode[accountBody](t, w).Account
	assert.True(t, acc.Balance.Equal(decimal.NewFromInt(1000)))

	w = ts.do(http.MethodPost, "/accounts", token, gin.H{"bank_name": "Bad", "initial_balance": -5})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = ts.do(http.MethodPost, "/transactions", token, gin.H{
		"account_id": acc.ID, "type": "debit", "category": "Food", "payment_method": "Card",
		"amount": "200", "date": "2024-03-05",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	tx := decode[transactionBody](t, w).Transaction

	w = ts.do(http.MethodPost, "/transactions", token, gin.H{
		"account_id": acc.ID, "type": "credit", "category": "Salary", "amount": 500, "date": "2024-04-01",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = ts.do(http.MethodGet, "/accounts/"+acc.ID, token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, decode[accountBody](t, w).Account.Balance.Equal(decimal.NewFromInt(1300)))

	// Flip the debit into a credit: 1300 + 200 + 200
	w = ts.do(http.MethodPatch, "/transactions/"+tx.ID, token, gin.H{"type": "credit"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	w = ts.do(http.MethodGet, "/accounts/"+acc.ID, token, nil)
	assert.True(t, decode[accountBody](t, w).Account.Balance.Equal(decimal.NewFromInt(1700)))

	w = ts.do(http.MethodPatch, "/accounts/"+acc.ID, token, gin.H{"bank_name": "ICICI"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ICICI", decode[accountBody](t, w).Account.BankName)

	page := ts.do(http.MethodGet, "/transactions?page_size=1&page=2", token, nil)
	require.Equal(t, http.StatusOK, page.Code)
	listed := decode[struct {
		Transactions []domain.Transaction `json:"transactions"`
		Total        int                  `json:"total"`
		TotalPages   int                  `json:"total_pages"`
	}](t, page)
	assert.Equal(t, 2, listed.Total)
	assert.Equal(t, 2, listed.TotalPages)
	assert.Len(t, listed.Transactions, 1)

	ranged := ts.do(http.MethodGet, "/transactions?from=2024-04-01&to=2024-04-30", token, nil)
	require.Equal(t, http.StatusOK, ranged.Code)
	assert.Equal(t, 1, decode[struct {
		Total int `json:"total"`
	}](t, ranged).Total)
	assert.Equal(t, http.StatusBadRequest, ts.do(http.MethodGet, "/transactions?from=2024-05-01&to=2024-04-01", token, nil).Code)

	// Deleting a referenced account is refused
	assert.Equal(t, http.StatusBadRequest, ts.do(http.MethodDelete, "/accounts/"+acc.ID, token, nil).Code)

	other := ts.signup("Bob", "bob@example.com")
	assert.Equal(t, http.StatusNotFound, ts.do(http.MethodGet, "/accounts/"+acc.ID, other, nil).Code)
	assert.Equal(t, http.StatusNotFound, ts.do(http.MethodDelete, "/transactions/"+tx.ID, other, nil).Code)
	w = ts.do(http.MethodPost, "/transactions", other, gin.H{"account_id": acc.ID, "type": "debit", "amount": 1, "date": "2024-03-05"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = ts.do(http.MethodGet, "/transactions", token, nil)
	for _, t2 := range decode[struct {
		Transactions []domain.Transaction `json:"transactions"`
	}](t, w).Transactions {
		assert.Equal(t, http.StatusNoContent, ts.do(http.MethodDelete, "/transactions/"+t2.ID, token, nil).Code)
	}
	w = ts.do(http.MethodGet, "/accounts/"+acc.ID, token, nil)
	assert.True(t, decode[accountBody](t, w).Account.Balance.Equal(decimal.NewFromInt(1000)))
	assert.Equal(t, http.StatusNoContent, ts.do(http.MethodDelete, "/accounts/"+acc.ID, token, nil).Code)
	assert.Equal(t, http.StatusNotFound, ts.do(http.MethodGet, "/accounts/"+acc.ID, token, nil).Code)
}

func TestAnalyticsRoutes(t *testing.T) {
	ts := newTestServer(t)
	token := ts.signup("Ann", "ann@example.com")
	w := ts.do(http.MethodPost, "/accounts", token, gin.H{"bank_name": "HDFC", "initial_balance": 0})
	require.Equal(t, http.StatusCreated, w.Code)
	acc := decode[accountBody](t, w).Account
	for _, body := range []gin.H{
		{"account_id": acc.ID, "type": "credit", "category": "Salary", "amount": 1000, "date": "2024-01-10"},
		{"account_id": acc.ID, "type": "debit", "category": "Food", "payment_method": "Cash", "amount": 400, "date": "2024-01-12"},
		{"account_id": acc.ID, "type": "debit", "category": "Rent", "payment_method": "Card", "amount": 500, "date": "2024-02-01"},
	} {
		require.Equal(t, http.StatusCreated, ts.do(http.MethodPost, "/transactions", token, body).Code)
	}

	w = ts.do(http.MethodGet, "/analytics/summary", token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	summary := decode[struct {
		SummaryResponse
		Cached bool `json:"cached"`
	}](t, w)
	assert.False(t, summary.Cached)
	assert.True(t, summary.Report.TotalBalance.Equal(decimal.NewFromInt(100)))
	assert.True(t, summary.Report.Spending.TotalDebit.Equal(decimal.NewFromInt(900)))
	assert.Equal(t, "Rent", summary.Report.Highest.Category)
	assert.Len(t, summary.Report.Monthly, 2)
	severities := map[insights.Severity]bool{}
	for _, in := range summary.Insights {
		severities[in.Severity] = true
	}
	assert.True(t, severities[insights.Suggestion], "food share and savings rate both suggest")
	assert.False(t, severities[insights.Warning], "income still covers expenses")

	w = ts.do(http.MethodGet, "/analytics/insights", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[struct {
		Insights []insights.Insight `json:"insights"`
	}](t, w).Insights, len(summary.Insights))

	w = ts.do(http.MethodGet, "/analytics/breakdown", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"Cash"`)

	w = ts.do(http.MethodGet, "/analytics/spending/monthly?from=2024-02-01", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	series := decode[struct {
		Buckets []struct {
			Key    string          `json:"key"`
			Amount decimal.Decimal `json:"amount"`
		} `json:"buckets"`
	}](t, w)
	require.Len(t, series.Buckets, 1)
	assert.Equal(t, "2024-02", series.Buckets[0].Key)
	assert.True(t, series.Buckets[0].Amount.Equal(decimal.NewFromInt(500)))

	assert.Equal(t, http.StatusBadRequest, ts.do(http.MethodGet, "/analytics/spending/hourly", token, nil).Code)

	w = ts.do(http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "ledger_operations_total")
}

func TestHandlersWithoutActor(t *testing.T) {
	gin.SetMode(gin.TestMode)
	l := ledger.New(store.NewMemory(), nil, nil)
	r := gin.New()
	r.GET("/summary", SummaryHandler(l, nil, time.Minute))
	r.GET("/insights", InsightsHandler(l, nil, time.Minute))
	r.GET("/breakdown", BreakdownHandler(l))
	r.GET("/accounts", ListAccountsHandler(l))
	r.GET("/me", CurrentUserHandler())

	for _, path := range []string{"/summary", "/insights", "/breakdown", "/accounts", "/me"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code, path)
		assert.Contains(t, w.Body.String(), domain.ErrNotAuthenticated.Message, path)
	}
}
