package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/darkermemo/searchpipe/pkg/events"
	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventStore_Sink(t *testing.T) {
	iter := events.FromSlice([]events.Event{
		{
			"user":           "admin",
			"event_category": "Network",
		},
		{
			"user":   "admin",
			"status": "500",
		},
		{
			"user":    "guest",
			"status":  "200",
			"dest_ip": "10.0.0.2",
		},
	})
	log := hclog.Default()
	store, cleanup := _tempStore(t, log)
	defer cleanup()
	ctx := context.Background()
	require.NoError(t, store.Sink(ctx, iter, "events"))

	read, err := store.QueryEvents(ctx, "events")
	require.NoError(t, err)
	var users []string
	err = read.Iterate(func(event events.Event, i int) error {
		u, ok := event.AsString("user")
		require.True(t, ok)
		users = append(users, u)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"admin", "admin", "guest"}, users)
}

func TestEventStore_BadTableName(t *testing.T) {
	store, cleanup := _tempStore(t, hclog.NewNullLogger())
	defer cleanup()
	ctx := context.Background()
	err := store.Sink(ctx, events.FromSlice(nil), "events; drop table events")
	assert.ErrorIs(t, err, ErrBadTable)
	_, err = store.QueryEvents(ctx, "events; drop table events")
	assert.ErrorIs(t, err, ErrBadTable)
}

func _tempStore(t *testing.T, log hclog.Logger) (*EventStore, func()) {
	td, err := os.MkdirTemp("", "_tempStore-*")
	require.NoError(t, err)
	store, err := NewStore(log, filepath.Join(td, "store.db"))
	if err != nil {
		_ = os.RemoveAll(td)
		t.Fatal("Failed to create new store:", err)
	}

	return store, func() {
		if err := store.Close(); err != nil {
			t.Error("Failed to close DB")
		}
		if err := os.RemoveAll(td); err != nil {
			t.Error("Failed to remove temp dir:", err)
		}
	}
}
