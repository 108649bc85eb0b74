package db

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tOgg1/tally/internal/models"
)

func TestFixtureRepository_CreateAndGet(t *testing.T) {
	database := setupTestDB(t)
	defer database.Close()
	ctx := context.Background()
	repo := NewFixtureRepository(database)

	fixture := &models.Fixture{Name: "morning", State: json.RawMessage(`{"user_id":30}`)}
	events := []*models.FixtureEvent{
		{Type: "message", Payload: json.RawMessage(`{"id":1}`)},
		{Type: "update_message_flags"},
	}
	require.NoError(t, repo.Create(ctx, fixture, events))
	require.NotEmpty(t, fixture.ID)
	require.Equal(t, 2, events[1].Seq)

	byID, err := repo.Get(ctx, fixture.ID)
	require.NoError(t, err)
	require.Equal(t, "morning", byID.Name)
	require.JSONEq(t, `{"user_id":30}`, string(byID.State))

	byName, err := repo.GetByName(ctx, "morning")
	require.NoError(t, err)
	require.Equal(t, fixture.ID, byName.ID)

	stored, err := repo.Events(ctx, fixture.ID)
	require.NoError(t, err)
	require.Len(t, stored, 2)
	require.Equal(t, "message", stored[0].Type)
	require.Equal(t, 1, stored[0].Seq)
	require.JSONEq(t, `{}`, string(stored[1].Payload))
}

func TestFixtureRepository_DuplicateName(t *testing.T) {
	database := setupTestDB(t)
	defer database.Close()
	ctx := context.Background()
	repo := NewFixtureRepository(database)

	require.NoError(t, repo.Create(ctx, &models.Fixture{Name: "dup", State: json.RawMessage(`{}`)}, nil))
	err := repo.Create(ctx, &models.Fixture{Name: "dup", State: json.RawMessage(`{}`)}, nil)
	require.ErrorIs(t, err, ErrFixtureAlreadyExists)
}

func TestFixtureRepository_Validation(t *testing.T) {
	database := setupTestDB(t)
	defer database.Close()
	repo := NewFixtureRepository(database)

	err := repo.Create(context.Background(), &models.Fixture{State: json.RawMessage(`{`)}, nil)
	require.Error(t, err)
	require.True(t, errors.Is(err, models.ErrMissingFixtureName))
}

func TestFixtureRepository_AppendEventAndDelete(t *testing.T) {
	database := setupTestDB(t)
	defer database.Close()
	ctx := context.Background()
	repo := NewFixtureRepository(database)

	fixture := &models.Fixture{Name: "f", State: json.RawMessage(`{}`)}
	require.NoError(t, repo.Create(ctx, fixture, []*models.FixtureEvent{{Type: "message"}}))

	event := &models.FixtureEvent{Type: "bankruptcy"}
	require.NoError(t, repo.AppendEvent(ctx, fixture.ID, event))
	require.Equal(t, 2, event.Seq)

	err := repo.AppendEvent(ctx, "missing", &models.FixtureEvent{Type: "message"})
	require.ErrorIs(t, err, ErrFixtureNotFound)

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)

	require.NoError(t, repo.Delete(ctx, fixture.ID))
	require.ErrorIs(t, repo.Delete(ctx, fixture.ID), ErrFixtureNotFound)

	_, err = repo.Get(ctx, fixture.ID)
	require.ErrorIs(t, err, ErrFixtureNotFound)

	events, err := repo.Events(ctx, fixture.ID)
	require.NoError(t, err)
	require.Empty(t, events)
}
