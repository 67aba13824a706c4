// Package corpus loads the scraped heritage-site records and serves them to the
// query pipeline as an immutable snapshot.
package corpus

import (
	"strings"

	"deepsight-be/internal/entity"
	"deepsight-be/pkg/rag/lookup"
)

// Snapshot is built once at startup and shared read-only by every request.
type Snapshot struct {
	facilities []*entity.Facility
	placeNames []string
}

func NewSnapshot(facilities []*entity.Facility) *Snapshot {
	seen := make(map[string]bool, len(facilities))
	names := make([]string, 0, len(facilities))
	for _, f := range facilities {
		n := strings.ToLower(strings.TrimSpace(f.Name))
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		names = append(names, n)
	}
	return &Snapshot{facilities: facilities, placeNames: names}
}

// PlaceNames returns the distinct lower-cased facility names in corpus order.
func (s *Snapshot) PlaceNames() []string {
	out := make([]string, len(s.placeNames))
	copy(out, s.placeNames)
	return out
}

func (s *Snapshot) Facilities() []*entity.Facility {
	return s.facilities
}

func (s *Snapshot) Len() int {
	return len(s.facilities)
}

func toRecord(f *entity.Facility) lookup.Record {
	return lookup.Record{Name: f.Name, Location: f.Location, FreeText: f.FreeText}
}
