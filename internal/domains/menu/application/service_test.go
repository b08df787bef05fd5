package application

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	menumemory "github.com/broasteria/broasteria/internal/domains/menu/adapters/memory"
	"github.com/broasteria/broasteria/internal/domains/menu/ports"
)

func newMenuService() *Service {
	return NewService(menumemory.NewRepository(),
		WithClock(func() time.Time { return time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC) }))
}

func TestCreateItem_DefaultsAvailable(t *testing.T) {
	svc := newMenuService()
	item, err := svc.CreateItem(context.Background(), ports.CreateItemInput{
		TenantID: "tenant-1",
		Name:     "1/4 Pollo a la brasa",
		Category: "chicken",
		Price:    25.9,
		Tags:     []string{"classic"},
	})
	require.NoError(t, err)
	require.True(t, item.Available)
	require.NotEmpty(t, item.ID)

	got, err := svc.GetItem(context.Background(), "tenant-1", item.ID)
	require.NoError(t, err)
	require.Equal(t, "1/4 Pollo a la brasa", got.Name)
}

func TestCreateItem_Validation(t *testing.T) {
	svc := newMenuService()

	_, err := svc.CreateItem(context.Background(), ports.CreateItemInput{TenantID: "t", Price: 10})
	require.ErrorIs(t, err, ErrValidation)

	_, err = svc.CreateItem(context.Background(), ports.CreateItemInput{TenantID: "t", Name: "x", Price: -1})
	require.ErrorIs(t, err, ErrValidation)

	_, err = svc.CreateItem(context.Background(), ports.CreateItemInput{Name: "x", Price: 1})
	require.ErrorIs(t, err, ErrValidation)
}

func TestUpdateItem_PartialFields(t *testing.T) {
	svc := newMenuService()
	item, err := svc.CreateItem(context.Background(), ports.CreateItemInput{
		TenantID: "tenant-1", Name: "Combo 1", Category: "combos", Price: 40,
	})
	require.NoError(t, err)

	newPrice := 45.0
	updated, err := svc.UpdateItem(context.Background(), ports.UpdateItemInput{
		TenantID: "tenant-1", ItemID: item.ID, Price: &newPrice,
	})
	require.NoError(t, err)
	require.InDelta(t, 45.0, updated.Price, 1e-9)
	require.Equal(t, "Combo 1", updated.Name)

	empty := ""
	_, err = svc.UpdateItem(context.Background(), ports.UpdateItemInput{
		TenantID: "tenant-1", ItemID: item.ID, Name: &empty,
	})
	require.ErrorIs(t, err, ErrValidation)
}

func TestSetAvailability(t *testing.T) {
	svc := newMenuService()
	item, err := svc.CreateItem(context.Background(), ports.CreateItemInput{
		TenantID: "tenant-1", Name: "Inca Kola", Category: "drinks", Price: 5,
	})
	require.NoError(t, err)

	off, err := svc.SetAvailability(context.Background(), "tenant-1", item.ID, false)
	require.NoError(t, err)
	require.False(t, off.Available)

	_, err = svc.SetAvailability(context.Background(), "tenant-1", "ghost", false)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteAndList(t *testing.T) {
	svc := newMenuService()
	ctx := context.Background()
	a, err := svc.CreateItem(ctx, ports.CreateItemInput{TenantID: "tenant-1", Name: "Alitas", Category: "chicken", Price: 18})
	require.NoError(t, err)
	_, err = svc.CreateItem(ctx, ports.CreateItemInput{TenantID: "tenant-1", Name: "Chicha", Category: "drinks", Price: 6})
	require.NoError(t, err)

	chicken, err := svc.ListByCategory(ctx, "tenant-1", "chicken")
	require.NoError(t, err)
	require.Len(t, chicken, 1)

	require.NoError(t, svc.DeleteItem(ctx, "tenant-1", a.ID))
	require.ErrorIs(t, svc.DeleteItem(ctx, "tenant-1", a.ID), ErrNotFound)

	all, err := svc.ListItems(ctx, "tenant-1")
	require.NoError(t, err)
	require.Len(t, all, 1)
}
