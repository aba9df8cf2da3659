package gesture

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSmoother_EmptyIsUndefined(t *testing.T) {
	s := NewSmoother()

	l, ok := s.Stable()
	assert.False(t, ok)
	assert.Equal(t, Label(""), l)
	assert.Equal(t, 0, s.Len())
}

func TestSmoother_WindowNeverExceedsCapacity(t *testing.T) {
	s := NewSmoother()
	seq := []Label{Palm, Right, Left, Up, Down, None, NoHand, Palm, Palm, Right, Up, Up}

	for i, l := range seq {
		s.Push(l)
		require.LessOrEqual(t, s.Len(), WindowSize, "after push %d", i)
	}

	assert.Equal(t, []Label{Palm, Palm, Right, Up, Up}, s.Labels())
}

func TestSmoother_ConvergesOnRepeatedLabel(t *testing.T) {
	s := NewSmoother()
	for _, l := range []Label{Left, Down, None, Up, Left} {
		s.Push(l)
	}

	var stable Label
	for i := 0; i < WindowSize; i++ {
		stable, _ = s.Push(Right)
	}

	assert.Equal(t, Right, stable)
	assert.Equal(t, []Label{Right, Right, Right, Right, Right}, s.Labels())
}

func TestSmoother_MajorityWins(t *testing.T) {
	tests := []struct {
		name string
		seq  []Label
		want Label
	}{
		{"single frame", []Label{Up}, Up},
		{"one glitch", []Label{Palm, Palm, Right, Palm, Palm}, Palm},
		{"eviction shifts majority", []Label{Palm, Palm, Palm, Right, Right, Right}, Right},
		{"no hand can win", []Label{NoHand, NoHand, NoHand, Palm, Palm}, NoHand},
		{"tie goes to first seen", []Label{Right, Left}, Right},
		{"tie in full window", []Label{Left, Right, Right, Left, None}, Left},
		{"three way tie", []Label{Down, Up, None}, Down},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSmoother()
			var got Label
			var ok bool
			for _, l := range tt.seq {
				got, ok = s.Push(l)
			}
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSmoother_Reset(t *testing.T) {
	s := NewSmoother()
	s.Push(Palm)
	s.Push(Palm)

	s.Reset()

	assert.Equal(t, 0, s.Len())
	_, ok := s.Stable()
	assert.False(t, ok)

	l, ok := s.Push(Down)
	assert.True(t, ok)
	assert.Equal(t, Down, l)
}

func TestSmoother_LabelsIsACopy(t *testing.T) {
	s := NewSmoother()
	s.Push(Up)

	labels := s.Labels()
	labels[0] = Down

	assert.Equal(t, []Label{Up}, s.Labels())
}
