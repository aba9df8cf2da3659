package gesture

// WindowSize is the number of recent frames the smoother votes over.
const WindowSize = 5

// Smoother is a mode filter over the most recent WindowSize frame labels.
// It is not safe for concurrent use; the frame loop owns it.
type Smoother struct {
	window []Label
}

// NewSmoother creates an empty Smoother.
func NewSmoother() *Smoother {
	return &Smoother{
		window: make([]Label, 0, WindowSize),
	}
}

// Push appends a frame label, evicting the oldest once the window is full,
// and returns the resulting stable label.
func (s *Smoother) Push(l Label) (Label, bool) {
	if len(s.window) >= WindowSize {
		copy(s.window, s.window[1:])
		s.window = s.window[:WindowSize-1]
	}
	s.window = append(s.window, l)
	return s.Stable()
}

// Stable returns the most frequent label in the window. Ties go to the
// label that appears first, oldest frame first. The boolean is false when
// the window is empty.
func (s *Smoother) Stable() (Label, bool) {
	if len(s.window) == 0 {
		return "", false
	}

	type tally struct {
		label Label
		count int
	}
	counts := make([]tally, 0, WindowSize)

	for _, l := range s.window {
		found := false
		for i := range counts {
			if counts[i].label == l {
				counts[i].count++
				found = true
				break
			}
		}
		if !found {
			counts = append(counts, tally{label: l, count: 1})
		}
	}

	best := counts[0]
	for _, c := range counts[1:] {
		if c.count > best.count {
			best = c
		}
	}
	return best.label, true
}

// Len returns the number of labels currently held.
func (s *Smoother) Len() int {
	return len(s.window)
}

// Labels returns a copy of the window, oldest first.
func (s *Smoother) Labels() []Label {
	out := make([]Label, len(s.window))
	copy(out, s.window)
	return out
}

// Reset empties the window.
func (s *Smoother) Reset() {
	s.window = s.window[:0]
}
