// Package state tracks kernel reloads and the changes between them.
package state

import (
	"sort"
	"sync"
	"time"

	"github.com/litescript/ls-ephem/internal/spk"
)

// EventType represents the type of change between two kernel loads.
type EventType string

const (
	EventPairAdded      EventType = "PAIR_ADDED"
	EventPairRemoved    EventType = "PAIR_REMOVED"
	EventRecentered     EventType = "RECENTERED"
	EventCoverageChange EventType = "COVERAGE_CHANGED"
)

// Event represents one change in the segment graph.
type Event struct {
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Target    spk.Code  `json:"target"`
	OldCenter spk.Code  `json:"old_center,omitempty"`
	NewCenter spk.Code  `json:"new_center,omitempty"`
	Start     float64   `json:"start,omitempty"` // TDB JD span after the change
	End       float64   `json:"end,omitempty"`
}

// Pair summarizes all segments for one center -> target pair.
type Pair struct {
	Center   spk.Code
	Target   spk.Code
	Start    float64
	End      float64
	Segments int
	Sources  []string
}

// Manager holds the latest load result with thread-safe access.
type Manager struct {
	mu sync.RWMutex

	// Current state
	pairs        map[spk.Code]Pair // by target; ambiguous targets keep the first center
	files        []string
	segments     int
	generation   int
	lastLoad     time.Time
	lastError    error
	loadDuration time.Duration

	// Event log (ring buffer)
	events       []Event
	maxEvents    int
	eventWriteAt int

	// Configuration
	refreshInterval time.Duration
}

// Config holds configuration for the state manager.
type Config struct {
	MaxEvents       int
	RefreshInterval time.Duration
}

// DefaultConfig returns sensible default configuration.
func DefaultConfig() Config {
	return Config{
		MaxEvents:       50,
		RefreshInterval: time.Second,
	}
}

// NewManager creates a new state manager.
func NewManager(cfg Config) *Manager {
	maxEvents := cfg.MaxEvents
	if maxEvents <= 0 {
		maxEvents = 50
	}
	return &Manager{
		pairs:           make(map[spk.Code]Pair),
		maxEvents:       maxEvents,
		events:          make([]Event, 0, maxEvents),
		refreshInterval: cfg.RefreshInterval,
	}
}

// Update records the outcome of a load and returns the events it caused. On
// error the previous segment summary is kept and only the error is recorded.
// The first successful load sets the baseline without emitting events.
func (m *Manager) Update(segments []*spk.Segment, loadDuration time.Duration, err error) []Event {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.lastLoad = time.Now()
	m.lastError = err
	m.loadDuration = loadDuration

	if err != nil {
		return nil
	}

	pairs, files := summarize(segments)
	var events []Event
	if m.generation > 0 {
		events = m.detectEvents(pairs)
	}
	m.pairs = pairs
	m.files = files
	m.segments = len(segments)
	m.generation++
	return events
}

func summarize(segments []*spk.Segment) (map[spk.Code]Pair, []string) {
	pairs := make(map[spk.Code]Pair)
	var files []string
	seenFile := make(map[string]bool)

	for _, s := range segments {
		if !seenFile[s.Source()] {
			seenFile[s.Source()] = true
			files = append(files, s.Source())
		}

		p, ok := pairs[s.Target()]
		if !ok {
			pairs[s.Target()] = Pair{
				Center:   s.Center(),
				Target:   s.Target(),
				Start:    s.Start(),
				End:      s.End(),
				Segments: 1,
				Sources:  []string{s.Source()},
			}
			continue
		}
		if p.Center != s.Center() {
			continue
		}
		p.Start = min(p.Start, s.Start())
		p.End = max(p.End, s.End())
		p.Segments++
		if p.Sources[len(p.Sources)-1] != s.Source() {
			p.Sources = append(p.Sources, s.Source())
		}
		pairs[s.Target()] = p
	}
	return pairs, files
}

// detectEvents compares new pairs with the previous state, records the
// resulting events and returns them.
func (m *Manager) detectEvents(newPairs map[spk.Code]Pair) []Event {
	now := time.Now()
	var events []Event
	emit := func(e Event) {
		m.addEvent(e)
		events = append(events, e)
	}

	for _, target := range sortedTargets(newPairs) {
		np := newPairs[target]
		op, existed := m.pairs[target]

		switch {
		case !existed:
			emit(Event{
				Type:      EventPairAdded,
				Timestamp: now,
				Target:    target,
				NewCenter: np.Center,
				Start:     np.Start,
				End:       np.End,
			})
		case op.Center != np.Center:
			emit(Event{
				Type:      EventRecentered,
				Timestamp: now,
				Target:    target,
				OldCenter: op.Center,
				NewCenter: np.Center,
				Start:     np.Start,
				End:       np.End,
			})
		case op.Start != np.Start || op.End != np.End:
			emit(Event{
				Type:      EventCoverageChange,
				Timestamp: now,
				Target:    target,
				OldCenter: op.Center,
				NewCenter: np.Center,
				Start:     np.Start,
				End:       np.End,
			})
		}
	}

	for _, target := range sortedTargets(m.pairs) {
		if _, exists := newPairs[target]; !exists {
			emit(Event{
				Type:      EventPairRemoved,
				Timestamp: now,
				Target:    target,
				OldCenter: m.pairs[target].Center,
			})
		}
	}
	return events
}

func sortedTargets(pairs map[spk.Code]Pair) []spk.Code {
	out := make([]spk.Code, 0, len(pairs))
	for c := range pairs {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// addEvent adds an event to the ring buffer.
func (m *Manager) addEvent(e Event) {
	if len(m.events) < m.maxEvents {
		m.events = append(m.events, e)
	} else {
		m.events[m.eventWriteAt] = e
		m.eventWriteAt = (m.eventWriteAt + 1) % m.maxEvents
	}
}

// Snapshot represents an immutable snapshot of current state.
type Snapshot struct {
	Generation   int
	Files        []string
	Segments     int
	Pairs        []Pair // sorted by target
	LastLoad     time.Time
	LastError    error
	LoadDuration time.Duration
	Events       []Event
}

// Snapshot returns a consistent snapshot of current state.
func (m *Manager) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	pairs := make([]Pair, 0, len(m.pairs))
	for _, target := range sortedTargets(m.pairs) {
		p := m.pairs[target]
		p.Sources = append([]string(nil), p.Sources...)
		pairs = append(pairs, p)
	}

	return Snapshot{
		Generation:   m.generation,
		Files:        append([]string(nil), m.files...),
		Segments:     m.segments,
		Pairs:        pairs,
		LastLoad:     m.lastLoad,
		LastError:    m.lastError,
		LoadDuration: m.loadDuration,
		Events:       m.getEventsOrdered(),
	}
}

// getEventsOrdered returns events in chronological order.
func (m *Manager) getEventsOrdered() []Event {
	if len(m.events) == 0 {
		return nil
	}

	if len(m.events) < m.maxEvents {
		result := make([]Event, len(m.events))
		copy(result, m.events)
		return result
	}

	// Ring buffer is full, reorder from oldest to newest
	result := make([]Event, m.maxEvents)
	for i := 0; i < m.maxEvents; i++ {
		idx := (m.eventWriteAt + i) % m.maxEvents
		result[i] = m.events[idx]
	}
	return result
}

// RecentEvents returns the last n events.
func (m *Manager) RecentEvents(n int) []Event {
	m.mu.RLock()
	defer m.mu.RUnlock()

	all := m.getEventsOrdered()
	if len(all) <= n {
		return all
	}
	return all[len(all)-n:]
}

// RefreshInterval returns the configured refresh interval.
func (m *Manager) RefreshInterval() time.Duration {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.refreshInterval
}

// SetRefreshInterval updates the refresh interval.
func (m *Manager) SetRefreshInterval(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.refreshInterval = d
}

// HasData returns true if at least one load succeeded.
func (m *Manager) HasData() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.generation > 0
}
