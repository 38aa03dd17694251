package service

import (
	"sort"

	"socialexplore/internal/domain"
)

type readKey struct {
	kind domain.NotificationKind
	id   uint
}

// ReadSet holds the (kind, id) pairs a user has acknowledged.
type ReadSet map[readKey]struct{}

func (s ReadSet) Add(kind domain.NotificationKind, id uint) {
	s[readKey{kind: kind, id: id}] = struct{}{}
}

func (s ReadSet) Has(kind domain.NotificationKind, id uint) bool {
	_, ok := s[readKey{kind: kind, id: id}]
	return ok
}

// Reduce drops acknowledged candidates and orders the rest newest first.
// Equal timestamps keep collection order. For new_message the check runs
// against the representative id only, so marks on older messages of the
// group neither hide nor resurrect it.
func Reduce(candidates []Candidate, read ReadSet) []Candidate {
	out := make([]Candidate, 0, len(candidates))
	for _, c := range candidates {
		if read.Has(c.Kind, c.SourceID) {
			continue
		}
		out = append(out, c)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].OccurredAt.After(out[j].OccurredAt)
	})
	return out
}
