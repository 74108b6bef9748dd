package cli

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"freight-broker-be/internal/dto"
	"freight-broker-be/internal/entity"
	"freight-broker-be/internal/pkg/logger"
	"freight-broker-be/internal/pkg/serverutils"
	"freight-broker-be/internal/repository/unitofwork"
	"freight-broker-be/pkg/database"
	"freight-broker-be/pkg/events"

	"github.com/fatih/color"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	color.NoColor = true
}

func runCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestTokenCommand(t *testing.T) {
	out, err := runCmd(t, "token", "--account", "7", "--role", "cliente", "--client", "70", "--secret", "s3cret")
	require.NoError(t, err)

	tok, err := jwt.Parse(strings.TrimSpace(out), func(*jwt.Token) (interface{}, error) {
		return []byte("s3cret"), nil
	})
	require.NoError(t, err)

	actor, err := serverutils.ActorFromClaims(tok.Claims.(jwt.MapClaims))
	require.NoError(t, err)
	assert.Equal(t, int64(7), actor.Id)
	assert.Equal(t, "client", actor.Role.String())
	require.NotNil(t, actor.ClientId)
	assert.Equal(t, int64(70), *actor.ClientId)
}

func TestTokenCommandRejectsUnknownRole(t *testing.T) {
	_, err := runCmd(t, "token", "--account", "7", "--role", "pilot", "--secret", "s")
	assert.Error(t, err)

	_, err = runCmd(t, "token", "--role", "admin", "--secret", "s")
	assert.Error(t, err)
}

func TestPrintStatus(t *testing.T) {
	exp := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)
	plan := "monthly"

	var out bytes.Buffer
	printStatus(&out, &dto.SubscriptionStatusResponse{
		AccountId:     7,
		State:         "paid",
		ExpiresAt:     &exp,
		PlanType:      &plan,
		DaysRemaining: 12,
		TrialUsed:     true,
	})

	text := out.String()
	assert.Contains(t, text, "Account 7")
	assert.Contains(t, text, "paid")
	assert.Contains(t, text, "2025-04-01T00:00:00Z")
	assert.Contains(t, text, "days remaining: 12")
}

func TestPrintLogEntryAndEvent(t *testing.T) {
	var out bytes.Buffer
	printLogEntry(&out, logger.LogEntry{
		Timestamp: "2025-03-01T12:00:00Z",
		Level:     "warn",
		Module:    logger.ModuleReconciler,
		Message:   "Malformed payment event",
		Details:   map[string]interface{}{"error": "bad json"},
	})
	assert.Equal(t, "2025-03-01T12:00:00Z warn  [RECONCILER] Malformed payment event {\"error\":\"bad json\"}\n", out.String())

	out.Reset()
	at := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, printEvent(&out, events.New(events.PaymentApplied, at, map[string]interface{}{"chargeId": "ch-1"})))
	assert.Contains(t, out.String(), events.PaymentApplied)
	assert.Contains(t, out.String(), `{"chargeId":"ch-1"}`)
}

func TestAccountShowAndLedgerAudit(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "broker.db")
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DB_CONNECTION_STRING", dbPath)
	t.Setenv("DB_LOG_LEVEL", "silent")
	t.Setenv("LOG_FILE_PATH", filepath.Join(dir, "cli.log"))

	out, err := runCmd(t, "migrate")
	require.NoError(t, err)
	assert.Contains(t, out, "Migrated")

	db, err := database.NewSQLiteDB(dbPath, "silent")
	require.NoError(t, err)
	ctx := context.Background()
	uow := unitofwork.NewRepositoryFactory(db).NewUnitOfWork(ctx)
	require.NoError(t, uow.AccountRepository().Create(ctx, &entity.Account{
		Id:                7,
		SubscriptionState: entity.SubscriptionStatePaid,
		CreatedAt:         time.Now().UTC(),
		UpdatedAt:         time.Now().UTC(),
	}))
	at := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	for i, status := range []entity.ChargeStatus{entity.ChargeStatusActive, entity.ChargeStatusCompleted} {
		outcome := entity.PaymentOutcomeAuditOnly
		if status == entity.ChargeStatusCompleted {
			outcome = entity.PaymentOutcomeApplied
		}
		require.NoError(t, uow.PaymentAuditRepository().Create(ctx, &entity.PaymentAuditRecord{
			AccountId:    7,
			ChargeId:     "ch-1029",
			ChargeStatus: status,
			Outcome:      outcome,
			RawPayload:   []byte(`{}`),
			OccurredAt:   at,
			CreatedAt:    at.Add(time.Duration(i) * time.Minute),
		}))
	}
	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	out, err = runCmd(t, "account", "show", "7", "--payments", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "Account 7")
	assert.Contains(t, out, "Payment events")
	assert.Contains(t, out, "applied")
	assert.NotContains(t, out, "audit_only")

	out, err = runCmd(t, "ledger", "audit", "ch-1029")
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(out, "ch-1029"))
	assert.Less(t, strings.Index(out, "applied"), strings.Index(out, "audit_only"))
}

func TestPrintAuditTrail(t *testing.T) {
	var out bytes.Buffer
	printAuditTrail(&out, nil)
	assert.Contains(t, out.String(), "none")
}
