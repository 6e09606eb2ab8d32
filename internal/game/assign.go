package game

import "math/rand"

// MinPlayers is the minimum roster size required to start a round.
const MinPlayers = 3

// CatalogEntry is one topic with its candidate secret items.
type CatalogEntry struct {
	Topic string   `json:"topic"`
	Items []string `json:"items"`
}

// Assignment is the outcome of role selection for one round: the shared
// topic, the secret item known only to regular players, and the imposter set.
type Assignment struct {
	Topic     string
	Item      string
	Imposters []string
}

// imposterCount is the fixed count policy: one imposter for a three-player
// roster, two from four players up. Add tiers here if the game ever wants
// them.
func imposterCount(rosterSize int) int {
	if rosterSize == MinPlayers {
		return 1
	}
	return 2
}

// AssignRoles picks a topic, an item from that topic, and the imposter set
// for one round. The pick is uniform: one catalog entry, one of its items,
// and a random permutation of the roster truncated to the imposter count, so
// every player is equally likely to be an imposter. Deterministic for a
// fixed rng; no side effects.
func AssignRoles(roster []Player, catalog []CatalogEntry, rng *rand.Rand) (Assignment, error) {
	if len(catalog) == 0 {
		return Assignment{}, ErrEmptyCatalog
	}
	if len(roster) < MinPlayers {
		return Assignment{}, ErrInsufficientPlayers
	}

	entry := catalog[rng.Intn(len(catalog))]
	if len(entry.Items) == 0 {
		return Assignment{}, ErrEmptyCatalog
	}
	item := entry.Items[rng.Intn(len(entry.Items))]

	count := imposterCount(len(roster))
	imposters := make([]string, 0, count)
	for _, i := range rng.Perm(len(roster))[:count] {
		imposters = append(imposters, roster[i].ID)
	}

	return Assignment{
		Topic:     entry.Topic,
		Item:      item,
		Imposters: imposters,
	}, nil
}
