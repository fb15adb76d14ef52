// Package dedup reconciles freshly extracted events against each other and
// against the persisted canonical set, collapsing reports that describe the
// same physical occasion.
package dedup

import (
	"strings"

	"github.com/youngboyhey/blood-donation-helper-sub000/internal/domain"
	"github.com/youngboyhey/blood-donation-helper-sub000/internal/normalize"
)

// Plan is the reconciliation outcome handed to the persistence adapter.
type Plan struct {
	// ToInsert are new events with no existing counterpart.
	ToInsert []domain.ExtractedEvent
	// ToReplace are existing records beaten by an incoming event.
	ToReplace []Replacement
	// ToDelete are existing record ids collapsed into another record when one
	// incoming event matched several persisted rows.
	ToDelete []string
	// ToDrop are incoming events that lost to an existing record or to
	// another event in the same batch.
	ToDrop []domain.ExtractedEvent
}

// Replacement pairs an existing record id with the incoming event that wins
// its place.
type Replacement struct {
	ExistingID string
	Event      domain.ExtractedEvent
}

// Reconcile computes duplicate groups across the incoming batch and the
// existing set and picks a single winner per group. The batch is first
// reconciled against itself so it can never insert two events that would
// dedup against each other, then each survivor is compared with the
// persisted records.
func Reconcile(newEvents []domain.ExtractedEvent, existing []domain.PersistedEvent) Plan {
	var plan Plan

	survivors := reconcileBatch(newEvents, &plan)

	for _, event := range survivors {
		matches, forced := matchExisting(event, existing)
		if len(matches) == 0 {
			plan.ToInsert = append(plan.ToInsert, event)
			continue
		}

		// A bit-identical poster reference forces the overwrite outright;
		// otherwise the incoming event must win on its own merits.
		winnerIsNew := forced
		for _, m := range matches {
			if winnerIsNew {
				break
			}
			if wins(event, m.ExtractedEvent) {
				winnerIsNew = true
			}
		}
		if !winnerIsNew {
			plan.ToDrop = append(plan.ToDrop, event)
			continue
		}

		// The incoming event takes over the first matched record; any
		// further matched records are duplicates of the same occasion and
		// are collapsed.
		plan.ToReplace = append(plan.ToReplace, Replacement{ExistingID: matches[0].ID, Event: event})
		for _, m := range matches[1:] {
			plan.ToDelete = append(plan.ToDelete, m.ID)
		}
	}

	return plan
}

// reconcileBatch collapses duplicates inside the incoming batch, preserving
// discovery order among survivors. The earlier event plays the "existing"
// role in ties.
func reconcileBatch(events []domain.ExtractedEvent, plan *Plan) []domain.ExtractedEvent {
	var survivors []domain.ExtractedEvent

	for _, event := range events {
		replaced := false
		duplicate := false
		for i := range survivors {
			if !sameOccasion(&event, &survivors[i]) {
				continue
			}
			duplicate = true
			if wins(event, survivors[i]) {
				plan.ToDrop = append(plan.ToDrop, survivors[i])
				survivors[i] = event
				replaced = true
			}
			break
		}
		if duplicate && !replaced {
			plan.ToDrop = append(plan.ToDrop, event)
		}
		if !duplicate {
			survivors = append(survivors, event)
		}
	}

	return survivors
}

// matchExisting returns the persisted records judged to describe the same
// occasion as event, and whether any match came from an identical poster
// reference. A bit-identical image is stronger evidence of the same occasion
// than diverging text extraction, so such a record is matched regardless of
// date/location comparison and the records with identical posters come first.
func matchExisting(event domain.ExtractedEvent, existing []domain.PersistedEvent) ([]domain.PersistedEvent, bool) {
	var (
		posterMatches []domain.PersistedEvent
		textMatches   []domain.PersistedEvent
	)
	for _, ex := range existing {
		if event.PosterURL != "" && event.PosterURL == ex.PosterURL {
			posterMatches = append(posterMatches, ex)
			continue
		}
		if sameOccasion(&event, &ex.ExtractedEvent) {
			textMatches = append(textMatches, ex)
		}
	}
	return append(posterMatches, textMatches...), len(posterMatches) > 0
}

// sameOccasion implements the duplicate rule: equal dates, compatible cities,
// and normalized locations in a substring relation either direction. The
// substring rule deliberately over-merges near-miss venue strings; false
// merges are cheaper than duplicate listings.
func sameOccasion(a, b *domain.ExtractedEvent) bool {
	if a.Date != b.Date {
		return false
	}
	bothEmpty := a.City == "" && b.City == ""
	if !bothEmpty && a.City != b.City {
		return false
	}
	locA := normalize.NormalizeLocation(a.Location)
	locB := normalize.NormalizeLocation(b.Location)
	return strings.Contains(locA, locB) || strings.Contains(locB, locA)
}

// wins reports whether the challenger beats the incumbent. Poster presence
// wins outright; otherwise the longer normalized location carries more
// disambiguating detail. Ties keep the incumbent.
func wins(challenger, incumbent domain.ExtractedEvent) bool {
	if challenger.HasPoster() != incumbent.HasPoster() {
		return challenger.HasPoster()
	}
	return len(normalize.NormalizeLocation(challenger.Location)) >
		len(normalize.NormalizeLocation(incumbent.Location))
}
