package repositories

import (
	"testing"

	"eventflow/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventRepository_GetByID(t *testing.T) {
	repo, err := NewFixtureEventRepository()
	require.NoError(t, err)

	event, err := repo.GetByID(7)
	require.NoError(t, err)
	assert.Equal(t, "Jazz Night Under the Stars", event.Title)

	_, err = repo.GetByID(99)
	assert.ErrorIs(t, err, models.ErrEventNotFound)
}

func TestEventRepository_ListReturnsCopy(t *testing.T) {
	repo, err := NewFixtureEventRepository()
	require.NoError(t, err)

	list := repo.List()
	list[0] = nil

	assert.NotNil(t, repo.List()[0])
	assert.Equal(t, 8, repo.Count())
}

func TestEventRepository_TicketsLeft(t *testing.T) {
	repo, err := NewFixtureEventRepository()
	require.NoError(t, err)

	// 45+12+234+78+156+89+203+67
	assert.Equal(t, 884, repo.TicketsLeft())
}
