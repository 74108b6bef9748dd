package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"freight-broker-be/internal/entity"
	"freight-broker-be/internal/model"
	"freight-broker-be/internal/pkg/logger"
	"freight-broker-be/internal/pkg/serverutils"
	"freight-broker-be/internal/repository/unitofwork"
	"freight-broker-be/internal/service"
	"freight-broker-be/pkg/clock"
	"freight-broker-be/pkg/database"
	"freight-broker-be/pkg/dedup"
	"freight-broker-be/pkg/events"
	"freight-broker-be/pkg/metrics"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testSecret    = "jwt-secret"
	webhookSecret = "pix-secret"
)

var d0 = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

type testApp struct {
	app   *fiber.App
	clock *clock.FixedClock
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	db, err := database.NewSQLiteDB(filepath.Join(t.TempDir(), "api.db"), "silent")
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db, model.All()...))

	factory := unitofwork.NewRepositoryFactory(db)
	clk := clock.NewFixedClock(d0)
	collector := metrics.NewCollector()
	log := logger.NewNopLogger()
	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	t.Cleanup(func() { pubSub.Close() })

	freights := service.NewFreightService(factory, clk, events.NopPublisher{}, collector, log)
	subscriptions := service.NewSubscriptionService(factory, clk, events.NopPublisher{}, collector, log)
	reconciler := service.NewReconcilerService(factory, clk, dedup.NewLocalCache(time.Hour), pubSub, "PAYMENT_ALERTS", events.NopPublisher{}, collector, log)

	auth := serverutils.JwtMiddleware(testSecret)
	app := fiber.New()
	api := app.Group("/api")
	NewFreightController(freights, auth).RegisterRoutes(api)
	NewSubscriptionController(subscriptions, auth).RegisterRoutes(api)
	NewPaymentController(reconciler, WebhookAuth{Secret: webhookSecret}, log).RegisterRoutes(api)

	return &testApp{app: app, clock: clk}
}

func token(t *testing.T, accountId int64, role string) string {
	t.Helper()
	client := accountId * 100
	tok, err := serverutils.SignToken(testSecret, accountId, role, &client)
	require.NoError(t, err)
	return tok
}

type envelope struct {
	Success bool            `json:"success"`
	Code    string          `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (a *testApp) do(t *testing.T, method, path, tok string, body interface{}) (int, envelope) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	return a.send(t, req)
}

func (a *testApp) send(t *testing.T, req *http.Request) (int, envelope) {
	t.Helper()
	resp, err := a.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	return resp.StatusCode, env
}

func TestFreightEndpoints(t *testing.T) {
	a := newTestApp(t)
	owner := token(t, 7, "cliente")

	status, env := a.do(t, http.MethodPost, "/api/freights", owner, map[string]interface{}{
		"origin": "Santos/SP", "destination": "Curitiba/PR",
	})
	require.Equal(t, http.StatusCreated, status)
	var created struct {
		Id     int64  `json:"id"`
		Status string `json:"status"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &created))
	assert.Equal(t, "active", created.Status)

	a.clock.Advance(25 * time.Hour)
	path := "/api/freights/" + itoa(created.Id)

	_, env = a.do(t, http.MethodGet, path, owner, nil)
	assert.Contains(t, string(env.Data), `"status":"expired"`)

	status, env = a.do(t, http.MethodPost, path+"/reactivate", token(t, 8, "cliente"), nil)
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, serverutils.CodeForbidden, env.Code)

	status, env = a.do(t, http.MethodGet, "/api/freights?status=expired&limit=10", owner, nil)
	require.Equal(t, http.StatusOK, status)
	var page struct {
		Items []struct {
			Id int64 `json:"id"`
		} `json:"items"`
		Total int64 `json:"total"`
		Limit int   `json:"limit"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &page))
	require.Len(t, page.Items, 1)
	assert.Equal(t, created.Id, page.Items[0].Id)
	assert.Equal(t, int64(1), page.Total)
	assert.Equal(t, 10, page.Limit)

	status, _ = a.do(t, http.MethodPost, path+"/reactivate", owner, nil)
	assert.Equal(t, http.StatusOK, status)

	status, _ = a.do(t, http.MethodPost, path+"/complete", owner, nil)
	assert.Equal(t, http.StatusOK, status)

	status, env = a.do(t, http.MethodPost, path+"/reactivate", token(t, 1, "admin"), nil)
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Equal(t, serverutils.CodeInvalidTransition, env.Code)
}

func TestFreightEndpointsRejectBadInput(t *testing.T) {
	a := newTestApp(t)
	owner := token(t, 7, "client")

	status, env := a.do(t, http.MethodPost, "/api/freights", owner, map[string]interface{}{"origin": "Santos/SP"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, serverutils.CodeValidation, env.Code)

	status, _ = a.do(t, http.MethodGet, "/api/freights/abc", owner, nil)
	assert.Equal(t, http.StatusBadRequest, status)

	status, env = a.do(t, http.MethodGet, "/api/freights/42", owner, nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, serverutils.CodeNotFound, env.Code)

	status, _ = a.do(t, http.MethodGet, "/api/freights", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	status, env = a.do(t, http.MethodGet, "/api/freights?status=lost", owner, nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, serverutils.CodeValidation, env.Code)

	status, _ = a.do(t, http.MethodGet, "/api/freights?limit=500", owner, nil)
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = a.do(t, http.MethodPost, "/api/freights", token(t, 9, "motorista"), map[string]interface{}{
		"origin": "A", "destination": "B",
	})
	assert.Equal(t, http.StatusForbidden, status)
}

func TestSubscriptionEndpoints(t *testing.T) {
	a := newTestApp(t)
	owner := token(t, 7, "client")

	status, env := a.do(t, http.MethodPost, "/api/subscription/trial", owner, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(env.Data), `"state":"trialActive"`)

	status, env = a.do(t, http.MethodPost, "/api/subscription/trial", owner, nil)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, serverutils.CodeTrialAlreadyUsed, env.Code)

	status, _ = a.do(t, http.MethodGet, "/api/subscription?accountId=7", token(t, 8, "client"), nil)
	assert.Equal(t, http.StatusForbidden, status)

	status, env = a.do(t, http.MethodGet, "/api/subscription?accountId=7", token(t, 1, "admin"), nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(env.Data), `"trialUsed":true`)

	status, env = a.do(t, http.MethodPost, "/api/subscription/charges", owner, map[string]interface{}{"planType": "weekly"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, serverutils.CodeValidation, env.Code)
}

func TestWebhookEndpoint(t *testing.T) {
	a := newTestApp(t)
	owner := token(t, 7, "client")

	status, env := a.do(t, http.MethodPost, "/api/subscription/charges", owner, map[string]interface{}{"planType": "monthly"})
	require.Equal(t, http.StatusCreated, status)
	var charge struct {
		CorrelationId string `json:"correlationId"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &charge))

	body, err := json.Marshal(map[string]interface{}{
		"eventId":       "evt-1",
		"chargeId":      "ch-1",
		"correlationId": charge.CorrelationId,
		"status":        "completed",
		"occurredAt":    d0.Format(time.RFC3339),
	})
	require.NoError(t, err)

	webhook := func(signature string) (int, envelope) {
		req := httptest.NewRequest(http.MethodPost, "/api/payment/pix/webhook", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set(SignatureHeader, signature)
		return a.send(t, req)
	}

	status, env = webhook("deadbeef")
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, serverutils.CodeInvalidSignature, env.Code)

	status, env = webhook(Sign(webhookSecret, body))
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(env.Data), `"outcome":"applied"`)

	status, env = webhook(Sign(webhookSecret, body))
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(env.Data), `"outcome":"duplicate"`)

	_, env = a.do(t, http.MethodGet, "/api/subscription", owner, nil)
	assert.Contains(t, string(env.Data), `"state":"paid"`)
	assert.Contains(t, string(env.Data), `"daysRemaining":30`)
}

type stubReconciler struct {
	err   error
	calls int
}

func (s *stubReconciler) HandleEvent(context.Context, []byte) (*service.Ack, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return &service.Ack{Outcome: service.AckApplied, ChargeId: "ch-1"}, nil
}

func webhookApp(reconciler service.IReconcilerService, auth WebhookAuth) *fiber.App {
	app := fiber.New()
	NewPaymentController(reconciler, auth, logger.NewNopLogger()).RegisterRoutes(app.Group("/api"))
	return app
}

func postWebhook(t *testing.T, app *fiber.App, body []byte, signature string) (int, envelope) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/payment/pix/webhook", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if signature != "" {
		req.Header.Set(SignatureHeader, signature)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	return resp.StatusCode, env
}

func TestWebhookWithoutSecret(t *testing.T) {
	body := []byte(`{"chargeId":"ch-1"}`)

	t.Run("refused by default", func(t *testing.T) {
		stub := &stubReconciler{}
		status, env := postWebhook(t, webhookApp(stub, WebhookAuth{}), body, "")
		assert.Equal(t, http.StatusServiceUnavailable, status)
		assert.Equal(t, serverutils.CodeWebhookNotConfigured, env.Code)
		assert.Zero(t, stub.calls)
	})

	t.Run("signed delivery still refused", func(t *testing.T) {
		stub := &stubReconciler{}
		status, _ := postWebhook(t, webhookApp(stub, WebhookAuth{}), body, Sign("", body))
		assert.Equal(t, http.StatusServiceUnavailable, status)
		assert.Zero(t, stub.calls)
	})

	t.Run("explicit opt-out", func(t *testing.T) {
		stub := &stubReconciler{}
		status, _ := postWebhook(t, webhookApp(stub, WebhookAuth{AllowUnsigned: true}), body, "")
		assert.Equal(t, http.StatusOK, status)
		assert.Equal(t, 1, stub.calls)
	})
}

func TestWebhookErrorsAskForRedelivery(t *testing.T) {
	body := []byte(`{"chargeId":"ch-1"}`)
	cases := map[string]error{
		"version misses exhausted": fmt.Errorf("apply charge ch-1: %w", entity.ErrStoreBusy),
		"stale write":              fmt.Errorf("apply charge ch-1: %w", entity.ErrStaleWrite),
		"forbidden":                entity.ErrForbidden,
		"store failure":            fmt.Errorf("commit: %w", assert.AnError),
	}
	for name, err := range cases {
		t.Run(name, func(t *testing.T) {
			app := webhookApp(&stubReconciler{err: err}, WebhookAuth{Secret: webhookSecret})
			status, env := postWebhook(t, app, body, Sign(webhookSecret, body))
			assert.GreaterOrEqual(t, status, http.StatusInternalServerError)
			assert.NotContains(t, env.Message, "ch-1")
		})
	}
}

func TestJwtMiddlewareWithoutSecret(t *testing.T) {
	app := fiber.New()
	app.Get("/me", serverutils.JwtMiddleware(""), func(ctx *fiber.Ctx) error {
		return ctx.SendStatus(fiber.StatusOK)
	})

	tok, err := serverutils.SignToken("", 42, "admin", nil)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestValidSignature(t *testing.T) {
	body := []byte(`{"chargeId":"ch-1"}`)
	assert.True(t, ValidSignature("s", body, Sign("s", body)))
	assert.False(t, ValidSignature("other", body, Sign("s", body)))
	assert.False(t, ValidSignature("s", body, "not-hex"))
	assert.False(t, ValidSignature("s", body, ""))
}

func itoa(n int64) string {
	return strconv.FormatInt(n, 10)
}
