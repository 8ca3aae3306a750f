package dataset

import (
	"math/rand"
	"strconv"
	"time"

	"github.com/dtrimarco/groupcast/pkg/types"
)

// GeneratorConfig controls synthetic event generation.
type GeneratorConfig struct {
	// Seed makes generation reproducible. 0 means seed from the clock.
	Seed int64

	// Users is the number of distinct players.
	Users int

	// MinEvents and MaxEvents bound each player's session length.
	MinEvents int
	MaxEvents int

	// Start is the timestamp of the first event.
	Start time.Time

	// BuyRate and MegapackRate are the per-event purchase probabilities.
	BuyRate      float64
	MegapackRate float64
}

// DefaultGeneratorConfig returns a small but realistic configuration.
func DefaultGeneratorConfig() GeneratorConfig {
	return GeneratorConfig{
		Users:        50,
		MinEvents:    2,
		MaxEvents:    12,
		Start:        time.Date(2019, 1, 1, 13, 1, 1, 0, time.UTC),
		BuyRate:      0.10,
		MegapackRate: 0.03,
	}
}

// Generator produces synthetic mobile-game event streams: each player
// logs in, progresses through levels, and occasionally buys coins or a
// megapack. Timestamps ascend per player; coordinates wander around a
// per-player home point.
type Generator struct {
	cfg GeneratorConfig
	rng *rand.Rand
}

// NewGenerator creates a generator. Invalid bounds are clamped to the
// defaults rather than rejected.
func NewGenerator(cfg GeneratorConfig) *Generator {
	def := DefaultGeneratorConfig()
	if cfg.Users <= 0 {
		cfg.Users = def.Users
	}
	if cfg.MinEvents <= 0 {
		cfg.MinEvents = def.MinEvents
	}
	if cfg.MaxEvents < cfg.MinEvents {
		cfg.MaxEvents = cfg.MinEvents
	}
	if cfg.Start.IsZero() {
		cfg.Start = def.Start
	}
	if cfg.BuyRate <= 0 {
		cfg.BuyRate = def.BuyRate
	}
	if cfg.MegapackRate <= 0 {
		cfg.MegapackRate = def.MegapackRate
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	return &Generator{
		cfg: cfg,
		rng: rand.New(rand.NewSource(seed)),
	}
}

// Generate produces the full event stream. Rows are ordered by user,
// then by time within each user, mirroring how game backends dump
// per-player session logs.
func (g *Generator) Generate() []types.Event {
	var events []types.Event

	for u := 0; u < g.cfg.Users; u++ {
		userID := int64(5000 + u)
		homeLat := g.rng.Float64()*140 - 70
		homeLon := g.rng.Float64()*360 - 180
		ts := g.cfg.Start.Add(time.Duration(g.rng.Intn(3600)) * time.Second)

		n := g.cfg.MinEvents + g.rng.Intn(g.cfg.MaxEvents-g.cfg.MinEvents+1)
		level := 1
		for i := 0; i < n; i++ {
			events = append(events, types.Event{
				UserID:    userID,
				EventTime: ts,
				Lat:       homeLat + g.rng.Float64()*0.2 - 0.1,
				Lon:       homeLon + g.rng.Float64()*0.2 - 0.1,
				EventType: g.nextEventType(i, &level),
			})
			ts = ts.Add(time.Duration(30+g.rng.Intn(600)) * time.Second)
		}
	}

	return events
}

func (g *Generator) nextEventType(i int, level *int) string {
	if i == 0 {
		return types.EventTypeLogin
	}
	roll := g.rng.Float64()
	switch {
	case roll < g.cfg.MegapackRate:
		return types.EventTypeMegapack
	case roll < g.cfg.MegapackRate+g.cfg.BuyRate:
		return types.EventTypeBuyCoins
	default:
		*level++
		return "level_" + strconv.Itoa(*level)
	}
}
