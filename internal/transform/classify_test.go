package transform

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dtrimarco/groupcast/pkg/types"
)

func TestClassify_DecisionTable(t *testing.T) {
	c := NewClassifier(nil)

	assert.Equal(t, 1.00, c.Classify("buy_coins"))
	assert.Equal(t, 10.00, c.Classify("megapack"))
	assert.Equal(t, 0.0, c.Classify("login"))
	assert.Equal(t, 0.0, c.Classify("level_1"))
	assert.Equal(t, 0.0, c.Classify("level_42"))
	assert.Equal(t, 0.0, c.Classify("tutorial_complete"))
	assert.Equal(t, 0.0, c.Classify(""))
}

func TestClassify_Apply(t *testing.T) {
	c := NewClassifier(nil)
	values := c.Apply(testEvents())

	assert.Equal(t, []float64{0.0, 0.0, 1.00}, values)
}

func TestClassify_ApplyEmpty(t *testing.T) {
	c := NewClassifier(nil)
	assert.Empty(t, c.Apply(nil))
}

func TestClassify_Deterministic(t *testing.T) {
	c := NewClassifier(nil)
	events := testEvents()

	first := c.Apply(events)
	second := c.Apply(events)
	assert.Equal(t, first, second)
}

func TestClassify_CustomValueTable(t *testing.T) {
	c := NewClassifier(map[string]float64{"megapack": 25.0})

	assert.Equal(t, 25.0, c.Classify("megapack"))
	// A custom table replaces the default entirely.
	assert.Equal(t, 0.0, c.Classify("buy_coins"))
}

func TestClassify_TableIsCopied(t *testing.T) {
	table := map[string]float64{"buy_coins": 1.0}
	c := NewClassifier(table)

	table["buy_coins"] = 99.0
	assert.Equal(t, 1.0, c.Classify("buy_coins"))
}

func TestClassify_NoGroupContext(t *testing.T) {
	// The same event_type classifies identically regardless of which
	// user produced it.
	c := NewClassifier(nil)
	a := types.Event{UserID: 1, EventType: "megapack"}
	b := types.Event{UserID: 2, EventType: "megapack"}

	assert.Equal(t, c.Classify(a.EventType), c.Classify(b.EventType))
}
