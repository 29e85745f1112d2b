package evidence

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/dshills/tribunal/internal/redact"
)

// LocationNA is the sentinel location for evidence about something that was
// not found anywhere in the subject.
const LocationNA = "N/A"

// Evidence is a single immutable fact record produced by a probe.
type Evidence struct {
	Goal       string  `json:"goal"`
	Found      bool    `json:"found"`
	Location   string  `json:"location"`
	Rationale  string  `json:"rationale"`
	Confidence float64 `json:"confidence"`
	// Detail holds raw subject material. Never rendered into reviewer context.
	Detail string `json:"detail,omitempty"`
}

// Key builds the namespaced store key for a producer/dimension pair.
func Key(producer, dimensionID string) string {
	return producer + "_" + dimensionID
}

// Store collects evidence under namespaced keys. Writes are append-only;
// entries are never mutated after Add.
type Store struct {
	mu      sync.Mutex
	entries map[string][]Evidence
}

// NewStore returns an empty evidence store.
func NewStore() *Store {
	return &Store{entries: make(map[string][]Evidence)}
}

// Add appends evidence under key. Safe for concurrent use by probes writing
// to disjoint keys.
func (s *Store) Add(key string, evs ...Evidence) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = append(s.entries[key], evs...)
}

// Merge appends every entry of m into the store.
func (s *Store) Merge(m map[string][]Evidence) {
	for k, evs := range m {
		s.Add(k, evs...)
	}
}

// Keys returns all store keys in sorted order.
func (s *Store) Keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	keys := make([]string, 0, len(s.entries))
	for k := range s.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Get returns the evidence list stored under key.
func (s *Store) Get(key string) []Evidence {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.entries[key]
}

// ForDimension returns evidence from every producer for one dimension.
// Keys are matched by exact "_{dimensionID}" suffix; a substring match would
// cross-contaminate dimensions whose IDs share a suffix.
func (s *Store) ForDimension(dimensionID string) []Evidence {
	s.mu.Lock()
	defer s.mu.Unlock()
	suffix := "_" + dimensionID
	keys := make([]string, 0)
	for k := range s.entries {
		if strings.HasSuffix(k, suffix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	var out []Evidence
	for _, k := range keys {
		out = append(out, s.entries[k]...)
	}
	return out
}

// All returns a snapshot of every entry in the store.
func (s *Store) All() map[string][]Evidence {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string][]Evidence, len(s.entries))
	for k, evs := range s.entries {
		out[k] = append([]Evidence(nil), evs...)
	}
	return out
}

// Verified reports whether some evidence for the dimension has Found=true and
// an exactly matching location. This is the ground truth used by the fact
// supremacy rule to validate reviewer citations.
func (s *Store) Verified(dimensionID, location string) bool {
	for _, ev := range s.ForDimension(dimensionID) {
		if ev.Found && ev.Location == location {
			return true
		}
	}
	return false
}

// IncompleteError reports evidence keys that were expected but absent.
type IncompleteError struct {
	Missing []string
}

func (e *IncompleteError) Error() string {
	return fmt.Sprintf("incomplete evidence: missing keys [%s]; every probe must produce at least Evidence{Found: false} per dimension it owns",
		strings.Join(e.Missing, ", "))
}

// Require verifies that every listed key is present in the store. It returns
// an *IncompleteError naming the absent keys, or nil when the evidence set is
// complete. Adjudication must not start until Require passes.
func (s *Store) Require(keys []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	var missing []string
	for _, k := range keys {
		if len(s.entries[k]) == 0 {
			missing = append(missing, k)
		}
	}
	if len(missing) > 0 {
		return &IncompleteError{Missing: missing}
	}
	return nil
}

// ContextText renders evidence as plain text for a reviewer prompt. Detail is
// deliberately omitted and the remaining fields pass through secret redaction
// before leaving the process.
func ContextText(evs []Evidence) string {
	return redact.Secrets(ContextTextUnredacted(evs))
}

// ContextTextUnredacted renders evidence without secret redaction. Only for
// runs where the operator explicitly disabled redaction.
func ContextTextUnredacted(evs []Evidence) string {
	if len(evs) == 0 {
		return "No evidence collected for this dimension."
	}
	var b strings.Builder
	for i, ev := range evs {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "- goal: %s\n", ev.Goal)
		fmt.Fprintf(&b, "  found: %t\n", ev.Found)
		fmt.Fprintf(&b, "  location: %s\n", ev.Location)
		fmt.Fprintf(&b, "  confidence: %.2f\n", ev.Confidence)
		fmt.Fprintf(&b, "  rationale: %s", ev.Rationale)
	}
	return b.String()
}
