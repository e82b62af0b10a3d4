package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"ledgervault/internal/apiclient"
	"ledgervault/internal/config"
	"ledgervault/internal/dashboard"
	"ledgervault/internal/database"
	"ledgervault/internal/dto"
	"ledgervault/internal/errors"
	"ledgervault/internal/ledger"
	"ledgervault/internal/logging"
	"ledgervault/internal/middleware"
	"ledgervault/internal/models"
	"ledgervault/internal/services"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

func testConfig() config.SandboxConfig {
	return config.SandboxConfig{
		Environment: "test",
		BCryptCost:  4,
		JWT: config.JWTConfig{
			Secret:     []byte("router-test-secret"),
			Issuer:     "ledgervault-test",
			TTL:        time.Hour,
			CookieName: "token",
		},
	}
}

func TestSandboxAPI(t *testing.T) {
	suite.Run(t, new(SandboxAPISuite))
}

// SandboxAPISuite drives the real router over HTTP, mostly through the
// dashboard client stack.
type SandboxAPISuite struct {
	suite.Suite
	db      *database.DB
	service *ledger.Service
	srv     *httptest.Server
	ctx     context.Context
}

func (s *SandboxAPISuite) SetupTest() {
	s.ctx = context.Background()
	s.db = database.SetupTestDB(s.T())
	s.srv = s.serve(testConfig(), nil)
	s.Require().NoError(s.service.SeedDemoData())
}

func (s *SandboxAPISuite) TearDownTest() {
	s.srv.Close()
}

func (s *SandboxAPISuite) serve(cfg config.SandboxConfig, limiter *middleware.RateLimiter) *httptest.Server {
	logger := logging.Discard()
	reg := prometheus.NewRegistry()
	s.service = NewLedgerService(s.db, cfg, logger)

	router := NewRouter(RouterDependencies{
		Config:   cfg,
		Service:  s.service,
		Health:   s.db,
		Metrics:  middleware.NewHTTPMetrics(reg),
		Gatherer: reg,
		Limiter:  limiter,
		Logger:   logger,
	})
	return httptest.NewServer(router)
}

func (s *SandboxAPISuite) newClient() *apiclient.Client {
	client, err := apiclient.New(s.srv.URL+"/api", apiclient.WithLogger(logging.Discard()))
	s.Require().NoError(err)
	return client
}

func (s *SandboxAPISuite) newApp() *dashboard.App {
	app := dashboard.NewApp(dashboard.Deps{API: s.newClient(), Logger: logging.Discard()})
	s.T().Cleanup(app.Shutdown)
	return app
}

// accountWithBalance finds the listed account whose cached balance equals amount.
func (s *SandboxAPISuite) accountWithBalance(app *dashboard.App, amount string) models.Account {
	want := decimal.RequireFromString(amount)
	for _, account := range app.Accounts().Accounts() {
		if account.CachedBalance != nil && account.CachedBalance.Equal(want) {
			return account
		}
	}
	s.FailNow("no account with balance " + amount)
	return models.Account{}
}

func (s *SandboxAPISuite) get(path string) (*http.Response, []byte) {
	resp, err := http.Get(s.srv.URL + path)
	s.Require().NoError(err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	s.Require().NoError(err)
	return resp, body
}

func (s *SandboxAPISuite) TestHealthAndMetrics() {
	resp, body := s.get("/health")
	s.Equal(http.StatusOK, resp.StatusCode)
	s.Contains(string(body), "healthy")
	s.NotEmpty(resp.Header.Get(middleware.TraceIDHeader))

	resp, body = s.get("/metrics")
	s.Equal(http.StatusOK, resp.StatusCode)
	s.Contains(string(body), "ledgervault_sandbox_requests_total")
}

func (s *SandboxAPISuite) TestAccountsRequireSession() {
	resp, body := s.get("/api/accounts/")
	s.Equal(http.StatusUnauthorized, resp.StatusCode)

	var errResp errors.ErrorResponse
	s.Require().NoError(json.Unmarshal(body, &errResp))
	s.Equal(string(errors.AuthMissingSession), errResp.Code)
	s.Equal(resp.Header.Get(middleware.TraceIDHeader), errResp.TraceID)
}

func (s *SandboxAPISuite) TestUnknownRoute() {
	resp, _ := s.get("/api/nope")
	s.Equal(http.StatusNotFound, resp.StatusCode)
}

func (s *SandboxAPISuite) TestDashboardSelfTransfer() {
	app := s.newApp()

	identity, err := app.DemoLogin(s.ctx)
	s.Require().NoError(err)
	s.Equal(ledger.DemoEmail, identity.Email)
	s.Len(app.Accounts().Accounts(), 2)

	checking := s.accountWithBalance(app, "1500")
	savings := s.accountWithBalance(app, "250")

	workflow, err := app.OpenTransfer()
	s.Require().NoError(err)
	s.Require().NoError(workflow.SetSource(checking.ID))
	s.Require().NoError(workflow.SetDestination(savings.ID))
	s.Require().NoError(workflow.SetAmount("100.25"))
	s.Require().NoError(workflow.Review())
	s.Require().NoError(workflow.Confirm(s.ctx))
	s.Equal(services.StateSuccess, workflow.State())

	app.CloseTransfer(s.ctx)

	s.accountWithBalance(app, "1399.75")
	s.accountWithBalance(app, "350.25")
}

func (s *SandboxAPISuite) TestDashboardExternalTransfer() {
	app := s.newApp()
	_, err := app.DemoLogin(s.ctx)
	s.Require().NoError(err)
	source := s.accountWithBalance(app, "250")

	workflow, err := app.OpenTransfer()
	s.Require().NoError(err)
	s.Require().NoError(workflow.SetKind(models.TransferExternal))
	s.Require().NoError(workflow.SetSource(source.ID))
	s.Require().NoError(workflow.ResolveRecipient(s.ctx, ledger.FriendEmail))
	s.Require().NoError(workflow.SetAmount("50"))
	s.Require().NoError(workflow.Review())
	s.Require().NoError(workflow.Confirm(s.ctx))
	app.CloseTransfer(s.ctx)

	s.accountWithBalance(app, "200")

	friend := s.newApp()
	_, err = friend.Login(s.ctx, ledger.FriendEmail, ledger.DemoPassword)
	s.Require().NoError(err)
	s.accountWithBalance(friend, "150")
}

func (s *SandboxAPISuite) TestDashboardInsufficientFundsKeepsDraft() {
	app := s.newApp()
	_, err := app.DemoLogin(s.ctx)
	s.Require().NoError(err)
	source := s.accountWithBalance(app, "250")
	dest := s.accountWithBalance(app, "1500")

	workflow, err := app.OpenTransfer()
	s.Require().NoError(err)
	s.Require().NoError(workflow.SetSource(source.ID))
	s.Require().NoError(workflow.SetDestination(dest.ID))
	s.Require().NoError(workflow.SetAmount("250.01"))
	s.Require().NoError(workflow.Review())

	err = workflow.Confirm(s.ctx)
	s.Require().Error(err)
	s.Equal(services.StateForm, workflow.State())
	s.Equal("250.01", workflow.Draft().Amount)

	reqErr, ok := errors.AsRequest(err)
	s.Require().True(ok)
	s.Equal(http.StatusUnprocessableEntity, reqErr.Status)
}

func (s *SandboxAPISuite) TestReplayedTransferAppliesOnce() {
	client := s.newClient()
	_, err := client.Login(s.ctx, dto.LoginRequest{Email: ledger.DemoEmail, Password: ledger.DemoPassword})
	s.Require().NoError(err)

	accounts, err := client.ListAccounts(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(accounts, 2)

	req := dto.TransferRequest{
		FromAccount:    accounts[0].ID,
		ToAccount:      accounts[1].ID,
		Amount:         json.Number("10"),
		IdempotencyKey: uuid.NewString(),
	}
	s.Require().NoError(client.SubmitTransfer(s.ctx, req))
	s.Require().NoError(client.SubmitTransfer(s.ctx, req))

	before := map[string]string{}
	for _, account := range accounts {
		balance, err := client.GetBalance(s.ctx, account.ID)
		s.Require().NoError(err)
		before[account.ID] = balance.StringFixed(2)
	}
	total := decimal.RequireFromString(before[accounts[0].ID]).Add(decimal.RequireFromString(before[accounts[1].ID]))
	s.True(total.Equal(decimal.RequireFromString("1750")))
	s.Contains([]string{"1490.00", "240.00"}, before[accounts[0].ID])

	req.Amount = json.Number("11")
	err = client.SubmitTransfer(s.ctx, req)
	reqErr, ok := errors.AsRequest(err)
	s.Require().True(ok)
	s.Equal(http.StatusConflict, reqErr.Status)
}

func (s *SandboxAPISuite) TestLogoutRevokesCookie() {
	client := s.newClient()
	_, err := client.Login(s.ctx, dto.LoginRequest{Email: ledger.DemoEmail, Password: ledger.DemoPassword})
	s.Require().NoError(err)

	_, err = client.ListAccounts(s.ctx)
	s.Require().NoError(err)

	s.Require().NoError(client.Logout(s.ctx))

	_, err = client.ListAccounts(s.ctx)
	reqErr, ok := errors.AsRequest(err)
	s.Require().True(ok)
	s.Equal(http.StatusUnauthorized, reqErr.Status)
}

func (s *SandboxAPISuite) TestRegisterCreateAndCloseAccount() {
	app := s.newApp()
	s.Require().NoError(app.Register(s.ctx, "New Person", "new.person@example.com", "secret1"))

	_, err := app.Login(s.ctx, "new.person@example.com", "secret1")
	s.Require().NoError(err)
	s.Empty(app.Accounts().Accounts())

	s.Require().NoError(app.CreateAccount(s.ctx))
	accounts := app.Accounts().Accounts()
	s.Require().Len(accounts, 1)

	s.Require().NoError(app.CloseAccount(s.ctx, accounts[0].ID, func(string) bool { return true }))

	account, ok := app.Accounts().Account(accounts[0].ID)
	s.Require().True(ok)
	s.Equal(models.AccountStatusClosed, account.Status)
}

func (s *SandboxAPISuite) TestRateLimited() {
	s.srv.Close()
	s.srv = s.serve(testConfig(), middleware.NewRateLimiter(1, 2))

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		resp, _ := s.get("/api/accounts/")
		codes = append(codes, resp.StatusCode)
	}
	s.Equal([]int{http.StatusUnauthorized, http.StatusUnauthorized, http.StatusTooManyRequests}, codes)

	resp, _ := s.get("/health")
	s.Equal(http.StatusOK, resp.StatusCode)
}

func (s *SandboxAPISuite) TestDevRoutesHiddenInProduction() {
	resp, err := http.Post(s.srv.URL+"/api/dev/seed", "application/json", nil)
	s.Require().NoError(err)
	resp.Body.Close()
	s.Equal(http.StatusOK, resp.StatusCode)

	cfg := testConfig()
	cfg.Environment = "production"
	s.srv.Close()
	s.srv = s.serve(cfg, nil)

	resp, err = http.Post(s.srv.URL+"/api/dev/seed", "application/json", nil)
	s.Require().NoError(err)
	resp.Body.Close()
	s.Equal(http.StatusNotFound, resp.StatusCode)
}
