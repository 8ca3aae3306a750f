package transform

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/dtrimarco/groupcast/pkg/types"
)

var propEventTypes = []string{"login", "level_1", "level_2", "buy_coins", "megapack", "level_17"}

// eventsFromUserIDs builds a deterministic event stream from generated
// user IDs so properties can shrink cleanly.
func eventsFromUserIDs(ids []int64) []types.Event {
	events := make([]types.Event, len(ids))
	for i, id := range ids {
		events[i] = types.Event{
			UserID:    id,
			EventType: propEventTypes[(int(id)+i)%len(propEventTypes)],
			Lat:       float64(i) * 0.5,
			Lon:       float64(i) * -0.5,
		}
	}
	return events
}

func TestProperty_BroadcastCountEqualsReduceCount(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("every row's broadcast count equals its group's reduce count", prop.ForAll(
		func(ids []int64) bool {
			events := eventsFromUserIDs(ids)

			summaries, err := ReduceCount(events, types.ColUserID)
			if err != nil {
				return false
			}
			counts, err := BroadcastCount(events, types.ColUserID)
			if err != nil {
				return false
			}

			reduced := make(map[int64]int64)
			for _, s := range summaries {
				reduced[s.Key.(int64)] = s.Value.(int64)
			}
			for i, e := range events {
				if counts[i] != reduced[e.UserID] {
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.Int64Range(0, 12)),
	))

	properties.TestingRun(t)
}

func TestProperty_ReduceCountsSumToRowCount(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("group counts sum to the table's row count", prop.ForAll(
		func(ids []int64) bool {
			events := eventsFromUserIDs(ids)
			summaries, err := ReduceCount(events, types.ColUserID)
			if err != nil {
				return false
			}

			var total int64
			seen := make(map[interface{}]bool)
			for _, s := range summaries {
				if seen[s.Key] {
					return false // duplicate group key
				}
				seen[s.Key] = true
				total += s.Value.(int64)
			}
			return total == int64(len(events))
		},
		gen.SliceOf(gen.Int64Range(0, 12)),
	))

	properties.TestingRun(t)
}

func TestProperty_BroadcastPreservesCardinality(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("broadcast output aligns with input and is constant within groups", prop.ForAll(
		func(ids []int64) bool {
			events := eventsFromUserIDs(ids)
			vals, err := Broadcast(events, types.ColUserID, AggSum, types.ColLat)
			if err != nil {
				return false
			}
			if len(vals) != len(events) {
				return false
			}

			byUser := make(map[int64]interface{})
			for i, e := range events {
				if prev, ok := byUser[e.UserID]; ok {
					if vals[i] != prev {
						return false
					}
				} else {
					byUser[e.UserID] = vals[i]
				}
			}
			return true
		},
		gen.SliceOf(gen.Int64Range(0, 12)),
	))

	properties.TestingRun(t)
}

func TestProperty_ClassificationMatchesDecisionTable(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	c := NewClassifier(nil)

	properties.Property("classification follows the fixed decision table", prop.ForAll(
		func(eventType string) bool {
			got := c.Classify(eventType)
			switch eventType {
			case "buy_coins":
				return got == 1.00
			case "megapack":
				return got == 10.00
			default:
				return got == 0.0
			}
		},
		gen.OneConstOf("login", "level_1", "level_99", "buy_coins", "megapack", "refund", ""),
	))

	properties.Property("classification is pure", prop.ForAll(
		func(eventType string) bool {
			return c.Classify(eventType) == c.Classify(eventType)
		},
		gen.AnyString(),
	))

	properties.TestingRun(t)
}
