package service

import (
	"context"
	"encoding/json"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"freight-broker-be/internal/entity"
	"freight-broker-be/internal/model"
	"freight-broker-be/internal/pkg/logger"
	"freight-broker-be/internal/repository/specification"
	"freight-broker-be/internal/repository/unitofwork"
	"freight-broker-be/pkg/clock"
	"freight-broker-be/pkg/database"
	"freight-broker-be/pkg/events"
	"freight-broker-be/pkg/metrics"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/stretchr/testify/require"
)

var d0 = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

type testEnv struct {
	factory   unitofwork.RepositoryFactory
	clock     *clock.FixedClock
	metrics   *metrics.Collector
	log       logger.ILogger
	publisher *recordingPublisher
	alerts    *recordingAlerts
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db, err := database.NewSQLiteDB(filepath.Join(t.TempDir(), "service.db"), "silent")
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db, model.All()...))

	return &testEnv{
		factory:   unitofwork.NewRepositoryFactory(db),
		clock:     clock.NewFixedClock(d0),
		metrics:   metrics.NewCollector(),
		log:       logger.NewNopLogger(),
		publisher: &recordingPublisher{},
		alerts:    &recordingAlerts{},
	}
}

func ownerActor(id int64) entity.Actor {
	client := id * 100
	return entity.Actor{Id: id, Role: entity.RoleClient, ClientId: &client}
}

var adminActor = entity.Actor{Id: 1, Role: entity.RoleAdmin}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Publish(_ context.Context, e events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func (p *recordingPublisher) Types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	types := make([]string, 0, len(p.events))
	for _, e := range p.events {
		types = append(types, e.EventType())
	}
	return types
}

// recordingAlerts is a watermill publisher that keeps decoded envelopes.
type recordingAlerts struct {
	mu        sync.Mutex
	topics    []string
	envelopes []events.Envelope
}

func (a *recordingAlerts) Publish(topic string, messages ...*message.Message) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, msg := range messages {
		var env events.Envelope
		if err := json.Unmarshal(msg.Payload, &env); err != nil {
			return err
		}
		a.topics = append(a.topics, topic)
		a.envelopes = append(a.envelopes, env)
	}
	return nil
}

func (a *recordingAlerts) Close() error { return nil }

func (a *recordingAlerts) Types() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	types := make([]string, 0, len(a.envelopes))
	for _, env := range a.envelopes {
		types = append(types, env.Type)
	}
	return types
}

func byCorrelation(id string) specification.ByCorrelationID {
	return specification.ByCorrelationID{CorrelationID: id}
}
