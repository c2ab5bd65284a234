package memory

import (
	"time"

	"github.com/cueleague/snooker-scores/internal/domain/snooker"
)

// DevSeed is the league the memory backend starts with in local development:
// two groups of three, a three-round calendar and the round one fixtures,
// one of them already played.
func DevSeed() Seed {
	return Seed{
		Players:  SeedPlayers(),
		Windows:  SeedRoundWindows(),
		Fixtures: SeedFixtures(),
	}
}

func SeedPlayers() []snooker.Player {
	return []snooker.Player{
		{Name: "Virtanen Aatos", Group: "L1"},
		{Name: "Mäkinen Joonas", Group: "L1"},
		{Name: "Korhonen Elias", Group: "L1"},
		{Name: "Nieminen Onni", Group: "L2"},
		{Name: "Laine Eetu", Group: "L2"},
		{Name: "Heikkinen Väinö", Group: "L2"},
	}
}

func SeedRoundWindows() []snooker.RoundWindow {
	return []snooker.RoundWindow{
		{Round: 1, Start: time.Date(2026, 2, 2, 0, 0, 0, 0, time.UTC), End: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)},
		{Round: 2, Start: time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC), End: time.Date(2026, 4, 5, 0, 0, 0, 0, time.UTC)},
		{Round: 3, Start: time.Date(2026, 4, 6, 0, 0, 0, 0, time.UTC), End: time.Date(2026, 5, 3, 0, 0, 0, 0, time.UTC)},
	}
}

func SeedFixtures() []snooker.Match {
	return []snooker.Match{
		{
			ID:      "kq3wr",
			Round:   1,
			Group:   "L1",
			Player1: snooker.Player{Name: "Virtanen Aatos", Group: "L1"},
			Player2: snooker.Player{Name: "Mäkinen Joonas", Group: "L1"},
			Format:  snooker.LeagueFormat,
		},
		{
			ID:      "zt8mh",
			Round:   1,
			Group:   "L1",
			Player1: snooker.Player{Name: "Korhonen Elias", Group: "L1"},
			Player2: snooker.Player{Name: "Virtanen Aatos", Group: "L1"},
			Format:  snooker.LeagueFormat,
			Outcome: &snooker.Outcome{
				Date:         time.Date(2026, 2, 7, 0, 0, 0, 0, time.UTC),
				Player1Score: 2,
				Player2Score: 1,
			},
		},
		{
			ID:      "p7fge",
			Round:   1,
			Group:   "L1",
			Player1: snooker.Player{Name: "Mäkinen Joonas", Group: "L1"},
			Player2: snooker.Player{Name: "Korhonen Elias", Group: "L1"},
			Format:  snooker.LeagueFormat,
		},
		{
			ID:      "wd4hn",
			Round:   1,
			Group:   "L2",
			Player1: snooker.Player{Name: "Nieminen Onni", Group: "L2"},
			Player2: snooker.Player{Name: "Laine Eetu", Group: "L2"},
			Format:  snooker.LeagueFormat,
		},
		{
			ID:      "m2vkt",
			Round:   1,
			Group:   "L2",
			Player1: snooker.Player{Name: "Nieminen Onni", Group: "L2"},
			Player2: snooker.Player{Name: "Heikkinen Väinö", Group: "L2"},
			Format:  snooker.LeagueFormat,
		},
		{
			ID:      "x9crb",
			Round:   1,
			Group:   "L2",
			Player1: snooker.Player{Name: "Laine Eetu", Group: "L2"},
			Player2: snooker.Player{Name: "Heikkinen Väinö", Group: "L2"},
			Format:  snooker.LeagueFormat,
		},
	}
}
