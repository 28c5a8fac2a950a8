package conversationsearch

import (
	"errors"
	"fmt"
	"sync"
)

var (
	ErrNoResults            = errors.New("no search results")
	ErrNavigationOutOfRange = errors.New("no result in that direction")
)

type LabelKind int

const (
	LabelNone LabelKind = iota
	LabelNoResults
	LabelOneResult
	LabelPosition
)

func (k LabelKind) String() string {
	switch k {
	case LabelNoResults:
		return "no_results"
	case LabelOneResult:
		return "one_result"
	case LabelPosition:
		return "position"
	default:
		return "none"
	}
}

// BarState is a snapshot of the results bar. Position is one-based and only
// meaningful for LabelPosition.
type BarState struct {
	Label             LabelKind
	Position          int
	Count             int
	CurrentIndex      int
	HasCurrent        bool
	CanShowLessRecent bool
	CanShowMoreRecent bool
}

func (s BarState) Title() string {
	switch s.Label {
	case LabelNoResults:
		return "No results"
	case LabelOneResult:
		return "1 result"
	case LabelPosition:
		return fmt.Sprintf("%d of %d", s.Position, s.Count)
	default:
		return ""
	}
}

type IndexListener interface {
	DidChangeIndex(index int, results *ResultSet)
}

// ResultsBar tracks which result in the set is selected. Results are
// ordered most recent first, so moving to a less recent result increases the
// index.
type ResultsBar struct {
	mu       sync.Mutex
	results  *ResultSet
	current  int
	hasIndex bool
	listener IndexListener
}

func NewResultsBar() *ResultsBar {
	return &ResultsBar{}
}

func (b *ResultsBar) SetListener(l IndexListener) {
	b.mu.Lock()
	b.listener = l
	b.mu.Unlock()
}

// Update replaces the result set, keeping the selection where possible.
func (b *ResultsBar) Update(results *ResultSet) {
	b.mu.Lock()
	b.results = results
	if results == nil || len(results.Messages) == 0 {
		b.hasIndex = false
		b.current = 0
	} else {
		if !b.hasIndex {
			b.current = 0
		}
		b.current = min(b.current, len(results.Messages)-1)
		b.hasIndex = true
	}
	listener, index, notify := b.listener, b.current, b.hasIndex
	b.mu.Unlock()

	if notify && listener != nil {
		listener.DidChangeIndex(index, results)
	}
}

func (b *ResultsBar) ShowLessRecent() (int, error) {
	return b.move(1)
}

func (b *ResultsBar) ShowMoreRecent() (int, error) {
	return b.move(-1)
}

func (b *ResultsBar) move(delta int) (int, error) {
	b.mu.Lock()
	if b.results == nil || !b.hasIndex {
		b.mu.Unlock()
		return 0, ErrNoResults
	}
	next := b.current + delta
	if next < 0 || next >= len(b.results.Messages) {
		b.mu.Unlock()
		return b.current, ErrNavigationOutOfRange
	}
	b.current = next
	listener, results := b.listener, b.results
	b.mu.Unlock()

	if listener != nil {
		listener.DidChangeIndex(next, results)
	}
	return next, nil
}

func (b *ResultsBar) State() BarState {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.results == nil {
		return BarState{Label: LabelNone}
	}
	st := BarState{
		Count:        len(b.results.Messages),
		CurrentIndex: b.current,
		HasCurrent:   b.hasIndex,
	}
	switch st.Count {
	case 0:
		st.Label = LabelNoResults
	case 1:
		st.Label = LabelOneResult
	default:
		st.Label = LabelPosition
		st.Position = b.current + 1
	}
	if b.hasIndex {
		st.CanShowMoreRecent = b.current > 0
		st.CanShowLessRecent = b.current+1 < st.Count
	}
	return st
}
