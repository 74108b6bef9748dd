package service

import (
	"context"
	"testing"
	"time"

	"freight-broker-be/internal/dto"
	"freight-broker-be/internal/entity"
	"freight-broker-be/pkg/events"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFreightService(env *testEnv) IFreightService {
	return NewFreightService(env.factory, env.clock, env.publisher, env.metrics, env.log)
}

func createFreight(t *testing.T, svc IFreightService, actor entity.Actor, noExpiry bool) *dto.FreightResponse {
	t.Helper()
	res, err := svc.Create(context.Background(), actor, &dto.CreateFreightRequest{
		Origin:      "Santos/SP",
		Destination: "Curitiba/PR",
		NoExpiry:    noExpiry,
	})
	require.NoError(t, err)
	return res
}

func TestFreightServiceCreate(t *testing.T) {
	env := newTestEnv(t)
	svc := newFreightService(env)
	owner := ownerActor(7)

	res := createFreight(t, svc, owner, false)
	assert.Equal(t, string(entity.FreightStatusActive), res.Status)
	require.NotNil(t, res.ExpirationInstant)
	assert.WithinDuration(t, d0.Add(24*time.Hour), *res.ExpirationInstant, time.Second)
	assert.Equal(t, int64(7), *res.OwnerAccountId)

	open := createFreight(t, svc, owner, true)
	assert.Equal(t, string(entity.FreightStatusOpen), open.Status)
	assert.Nil(t, open.ExpirationInstant)

	_, err := svc.Create(context.Background(), entity.Actor{Id: 9, Role: entity.RoleDriver}, &dto.CreateFreightRequest{
		Origin: "A", Destination: "B",
	})
	assert.ErrorIs(t, err, entity.ErrForbidden)

	assert.Equal(t, []string{events.FreightCreated, events.FreightCreated}, env.publisher.Types())
}

func TestFreightServiceReactivationCycle(t *testing.T) {
	env := newTestEnv(t)
	svc := newFreightService(env)
	ctx := context.Background()
	owner := ownerActor(7)

	created := createFreight(t, svc, owner, false)

	env.clock.Advance(25 * time.Hour)
	got, err := svc.Get(ctx, created.Id)
	require.NoError(t, err)
	assert.Equal(t, string(entity.FreightStatusExpired), got.Status)

	reactivated, err := svc.Reactivate(ctx, created.Id, owner)
	require.NoError(t, err)
	assert.Equal(t, string(entity.FreightStatusActive), reactivated.Status)
	assert.WithinDuration(t, d0.Add(49*time.Hour), *reactivated.ExpirationInstant, time.Second)

	env.clock.Advance(24*time.Hour + time.Minute)
	got, err = svc.Get(ctx, created.Id)
	require.NoError(t, err)
	assert.Equal(t, string(entity.FreightStatusExpired), got.Status)
}

func TestFreightServiceAuthorization(t *testing.T) {
	env := newTestEnv(t)
	svc := newFreightService(env)
	ctx := context.Background()

	created := createFreight(t, svc, ownerActor(7), false)

	_, err := svc.Reactivate(ctx, created.Id, ownerActor(8))
	assert.ErrorIs(t, err, entity.ErrForbidden)

	_, err = svc.Cancel(ctx, created.Id, entity.Actor{Id: 7, Role: entity.RoleDriver})
	assert.ErrorIs(t, err, entity.ErrForbidden)

	res, err := svc.Cancel(ctx, created.Id, adminActor)
	require.NoError(t, err)
	assert.Equal(t, string(entity.FreightStatusCancelled), res.Status)

	_, err = svc.Reactivate(ctx, 9999, adminActor)
	assert.ErrorIs(t, err, entity.ErrNotFound)
}

func TestFreightServiceTerminalStatuses(t *testing.T) {
	env := newTestEnv(t)
	svc := newFreightService(env)
	ctx := context.Background()
	owner := ownerActor(7)

	created := createFreight(t, svc, owner, false)
	done, err := svc.Complete(ctx, created.Id, owner)
	require.NoError(t, err)
	assert.Equal(t, string(entity.FreightStatusCompleted), done.Status)

	_, err = svc.Reactivate(ctx, created.Id, owner)
	assert.ErrorIs(t, err, entity.ErrInvalidTransition)
	_, err = svc.Cancel(ctx, created.Id, owner)
	assert.ErrorIs(t, err, entity.ErrInvalidTransition)

	env.clock.Advance(72 * time.Hour)
	got, err := svc.Get(ctx, created.Id)
	require.NoError(t, err)
	assert.Equal(t, string(entity.FreightStatusCompleted), got.Status)
}

func TestFreightServiceListByOwner(t *testing.T) {
	env := newTestEnv(t)
	svc := newFreightService(env)
	ctx := context.Background()

	createFreight(t, svc, ownerActor(7), false)
	createFreight(t, svc, ownerActor(7), true)
	createFreight(t, svc, ownerActor(8), false)

	list, err := svc.ListByOwner(ctx, ownerActor(7), dto.ListFreightsQuery{})
	require.NoError(t, err)
	assert.Len(t, list.Items, 2)
	assert.Equal(t, int64(2), list.Total)
	assert.Equal(t, defaultListLimit, list.Limit)
	for _, f := range list.Items {
		assert.Equal(t, int64(7), *f.OwnerAccountId)
	}
}

func TestFreightServiceListFiltersDerivedStatus(t *testing.T) {
	env := newTestEnv(t)
	svc := newFreightService(env)
	ctx := context.Background()
	owner := ownerActor(7)

	lapsed := createFreight(t, svc, owner, false)
	open := createFreight(t, svc, owner, true)
	env.clock.Advance(25 * time.Hour)
	fresh := createFreight(t, svc, owner, false)

	cases := map[string]int64{
		string(entity.FreightStatusExpired): lapsed.Id,
		string(entity.FreightStatusOpen):    open.Id,
		string(entity.FreightStatusActive):  fresh.Id,
	}
	for status, want := range cases {
		list, err := svc.ListByOwner(ctx, owner, dto.ListFreightsQuery{Status: status})
		require.NoError(t, err)
		require.Len(t, list.Items, 1, status)
		assert.Equal(t, want, list.Items[0].Id)
		assert.Equal(t, status, list.Items[0].Status)
		assert.Equal(t, int64(1), list.Total)
	}

	list, err := svc.ListByOwner(ctx, owner, dto.ListFreightsQuery{Status: string(entity.FreightStatusCompleted)})
	require.NoError(t, err)
	assert.Empty(t, list.Items)
}

func TestFreightServiceListPaginates(t *testing.T) {
	env := newTestEnv(t)
	svc := newFreightService(env)
	ctx := context.Background()
	owner := ownerActor(7)

	var ids []int64
	for i := 0; i < 3; i++ {
		ids = append(ids, createFreight(t, svc, owner, true).Id)
		env.clock.Advance(time.Minute)
	}

	page, err := svc.ListByOwner(ctx, owner, dto.ListFreightsQuery{Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(3), page.Total)
	require.Len(t, page.Items, 2)
	assert.Equal(t, ids[2], page.Items[0].Id)
	assert.Equal(t, ids[1], page.Items[1].Id)

	page, err = svc.ListByOwner(ctx, owner, dto.ListFreightsQuery{Limit: 2, Offset: 2})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, ids[0], page.Items[0].Id)
}

func TestFreightServiceLegacyClientOwnership(t *testing.T) {
	env := newTestEnv(t)
	svc := newFreightService(env)
	ctx := context.Background()

	client := int64(700)
	exp := d0.Add(time.Hour)
	legacy := &entity.Freight{
		Origin:            "Recife/PE",
		Destination:       "Natal/RN",
		Status:            entity.FreightStatusActive,
		ExpirationInstant: &exp,
		OwnerClientId:     &client,
		CreatedAt:         d0,
		UpdatedAt:         d0,
	}
	require.NoError(t, env.factory.NewUnitOfWork(ctx).FreightRepository().Create(ctx, legacy))

	sameClient := entity.Actor{Id: 70, Role: entity.RoleAgent, ClientId: &client}
	_, err := svc.Complete(ctx, legacy.Id, sameClient)
	require.NoError(t, err)
}
