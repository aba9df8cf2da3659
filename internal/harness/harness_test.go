package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ayusman/mudra/internal/gesture"
)

func TestLookup(t *testing.T) {
	tests := []struct {
		key  int
		want gesture.Label
		ok   bool
	}{
		{'1', gesture.Palm, true},
		{'2', gesture.Right, true},
		{'3', gesture.Left, true},
		{'4', gesture.Up, true},
		{'5', gesture.Down, true},
		{'0', gesture.None, true},
		{'9', "", false},
		{QuitKey, "", false},
		{-1, "", false},
	}

	for _, tt := range tests {
		got, ok := Lookup(tt.key)
		assert.Equal(t, tt.ok, ok, "key %q", rune(tt.key))
		assert.Equal(t, tt.want, got, "key %q", rune(tt.key))
	}
}

func TestCounters_Record(t *testing.T) {
	var c Counters

	trial := c.Record(gesture.Palm, gesture.Palm, true)
	assert.True(t, trial.Correct)
	assert.Equal(t, "Expected: palm, Detected: palm, Accuracy: 1/1 (100.0%)", trial.String())

	trial = c.Record(gesture.Right, gesture.Left, true)
	assert.False(t, trial.Correct)
	assert.Equal(t, "Expected: right, Detected: left, Accuracy: 1/2 (50.0%)", trial.String())

	trial = c.Record(gesture.None, gesture.NoHand, true)
	assert.False(t, trial.Correct, "no hand is not the none gesture")
	assert.Equal(t, "Expected: none, Detected: None, Accuracy: 1/3 (33.3%)", trial.String())

	trial = c.Record(gesture.Up, "", false)
	assert.False(t, trial.Correct)
	assert.Equal(t, "None", trial.DetectedName())

	assert.Equal(t, Counters{Total: 4, Correct: 1}, c)
	assert.Equal(t, "Final Accuracy: 1/4 (25.00%)", c.Summary())
}

func TestCounters_Monotonic(t *testing.T) {
	var c Counters
	prev := c
	inputs := []struct {
		expected, detected gesture.Label
		ok                 bool
	}{
		{gesture.Palm, gesture.Palm, true},
		{gesture.Down, gesture.None, true},
		{gesture.Left, "", false},
		{gesture.Left, gesture.Left, true},
	}

	for _, in := range inputs {
		c.Record(in.expected, in.detected, in.ok)
		assert.Equal(t, prev.Total+1, c.Total)
		assert.GreaterOrEqual(t, c.Correct, prev.Correct)
		assert.LessOrEqual(t, c.Correct, c.Total)
		prev = c
	}
}

func TestCounters_AccuracyEmpty(t *testing.T) {
	assert.Zero(t, Counters{}.Accuracy())
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "None", DisplayName("", false))
	assert.Equal(t, "None", DisplayName(gesture.NoHand, true))
	assert.Equal(t, "none", DisplayName(gesture.None, true))
	assert.Equal(t, "palm", DisplayName(gesture.Palm, true))
}
