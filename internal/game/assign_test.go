package game

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// zeroSource makes the rng pick index 0 everywhere, which pins the topic and
// item choices.
type zeroSource struct{}

func (zeroSource) Int63() int64 { return 0 }
func (zeroSource) Seed(int64)   {}

func roster(names ...string) []Player {
	players := make([]Player, len(names))
	for i, name := range names {
		players[i] = Player{ID: "id-" + name, Name: name, JoinOrder: i}
	}
	return players
}

var testCatalog = []CatalogEntry{
	{Topic: "Animals", Items: []string{"Cat", "Dog"}},
	{Topic: "Food", Items: []string{"Pizza", "Sushi", "Ramen"}},
}

func TestAssignRolesImposterCountTiers(t *testing.T) {
	tests := []struct {
		players int
		want    int
	}{
		{players: 3, want: 1},
		{players: 4, want: 2},
		{players: 5, want: 2},
		{players: 9, want: 2},
	}

	for _, tt := range tests {
		names := make([]string, tt.players)
		for i := range names {
			names[i] = string(rune('A' + i))
		}
		rng := rand.New(rand.NewSource(42))

		assignment, err := AssignRoles(roster(names...), testCatalog, rng)

		require.NoError(t, err)
		assert.Len(t, assignment.Imposters, tt.want, "roster size %d", tt.players)
	}
}

func TestAssignRolesInsufficientPlayers(t *testing.T) {
	rng := rand.New(rand.NewSource(1))

	for _, players := range [][]Player{nil, roster("A"), roster("A", "B")} {
		_, err := AssignRoles(players, testCatalog, rng)
		assert.ErrorIs(t, err, ErrInsufficientPlayers)
	}
}

func TestAssignRolesEmptyCatalog(t *testing.T) {
	rng := rand.New(rand.NewSource(1))

	_, err := AssignRoles(roster("A", "B", "C"), nil, rng)

	assert.ErrorIs(t, err, ErrEmptyCatalog)
}

func TestAssignRolesEmptyItemSet(t *testing.T) {
	rng := rand.New(rand.NewSource(1))

	_, err := AssignRoles(roster("A", "B", "C"), []CatalogEntry{{Topic: "Empty"}}, rng)

	assert.ErrorIs(t, err, ErrEmptyCatalog)
}

func TestAssignRolesImpostersDrawnFromRoster(t *testing.T) {
	players := roster("A", "B", "C", "D", "E")
	ids := make(map[string]bool, len(players))
	for _, p := range players {
		ids[p.ID] = true
	}

	for seed := int64(0); seed < 50; seed++ {
		rng := rand.New(rand.NewSource(seed))
		assignment, err := AssignRoles(players, testCatalog, rng)
		require.NoError(t, err)

		require.Len(t, assignment.Imposters, 2)
		assert.NotEqual(t, assignment.Imposters[0], assignment.Imposters[1])
		for _, id := range assignment.Imposters {
			assert.True(t, ids[id], "imposter %s not in roster", id)
		}
	}
}

func TestAssignRolesItemBelongsToTopic(t *testing.T) {
	for seed := int64(0); seed < 50; seed++ {
		rng := rand.New(rand.NewSource(seed))
		assignment, err := AssignRoles(roster("A", "B", "C", "D"), testCatalog, rng)
		require.NoError(t, err)

		var entry CatalogEntry
		for _, e := range testCatalog {
			if e.Topic == assignment.Topic {
				entry = e
			}
		}
		require.NotEmpty(t, entry.Topic, "unknown topic %s", assignment.Topic)
		assert.Contains(t, entry.Items, assignment.Item)
	}
}

func TestAssignRolesZeroRngPicksFirstEntry(t *testing.T) {
	rng := rand.New(zeroSource{})
	players := roster("A", "B", "C")

	assignment, err := AssignRoles(players, testCatalog, rng)

	require.NoError(t, err)
	assert.Equal(t, "Animals", assignment.Topic)
	assert.Equal(t, "Cat", assignment.Item)
	require.Len(t, assignment.Imposters, 1)
	found := false
	for _, p := range players {
		if p.ID == assignment.Imposters[0] {
			found = true
		}
	}
	assert.True(t, found, "imposter must be one of the roster")
}

func TestAssignRolesDeterministicForSeed(t *testing.T) {
	players := roster("A", "B", "C", "D")

	first, err := AssignRoles(players, testCatalog, rand.New(rand.NewSource(7)))
	require.NoError(t, err)
	second, err := AssignRoles(players, testCatalog, rand.New(rand.NewSource(7)))
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestAssignRolesEveryPlayerCanBeImposter(t *testing.T) {
	players := roster("A", "B", "C", "D", "E")
	seen := make(map[string]bool)

	for seed := int64(0); seed < 200; seed++ {
		rng := rand.New(rand.NewSource(seed))
		assignment, err := AssignRoles(players, testCatalog, rng)
		require.NoError(t, err)
		for _, id := range assignment.Imposters {
			seen[id] = true
		}
	}

	assert.Len(t, seen, len(players), "selection should reach every player")
}
