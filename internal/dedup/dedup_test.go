package dedup_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/youngboyhey/blood-donation-helper-sub000/internal/dedup"
	"github.com/youngboyhey/blood-donation-helper-sub000/internal/domain"
)

func event(date, location, poster string) domain.ExtractedEvent {
	return domain.ExtractedEvent{
		Title:     "捐血活動",
		Date:      date,
		Location:  location,
		PosterURL: poster,
		SourceURL: "https://blood.example.org/event/1",
	}
}

func persisted(id, date, location, poster string) domain.PersistedEvent {
	return domain.PersistedEvent{
		ID:             id,
		ExtractedEvent: event(date, location, poster),
	}
}

func TestReconcileInsertsNewEvents(t *testing.T) {
	plan := dedup.Reconcile(
		[]domain.ExtractedEvent{event("2025-11-23", "地點A", "")},
		nil,
	)

	assert.Len(t, plan.ToInsert, 1)
	assert.Empty(t, plan.ToReplace)
	assert.Empty(t, plan.ToDrop)
}

func TestReconcileIntraBatchSubstringMerge(t *testing.T) {
	// Two reports of the same occasion: the venue name, and the venue name
	// with an address suffix. Exactly one survives.
	a := event("2025-11-23", "地點A", "")
	b := event("2025-11-23", "地點A(詳細地址)", "")

	plan := dedup.Reconcile([]domain.ExtractedEvent{a, b}, nil)

	require.Len(t, plan.ToInsert, 1)
	assert.Equal(t, b.Location, plan.ToInsert[0].Location, "longer location wins without posters")
	require.Len(t, plan.ToDrop, 1)
	assert.Equal(t, a.Location, plan.ToDrop[0].Location)
}

func TestReconcileIntraBatchPosterBeatsLongerLocation(t *testing.T) {
	a := event("2025-11-23", "地點A", "https://blood.example.org/file_pool/p.jpg")
	b := event("2025-11-23", "地點A(詳細地址)", "")

	plan := dedup.Reconcile([]domain.ExtractedEvent{a, b}, nil)

	require.Len(t, plan.ToInsert, 1)
	assert.True(t, plan.ToInsert[0].HasPoster(), "poster beats longer location")
}

func TestReconcileSymmetric(t *testing.T) {
	a := event("2025-11-23", "地點A", "")
	b := event("2025-11-23", "地點A(詳細地址)", "https://blood.example.org/file_pool/p.jpg")

	for name, batch := range map[string][]domain.ExtractedEvent{
		"a first": {a, b},
		"b first": {b, a},
	} {
		t.Run(name, func(t *testing.T) {
			plan := dedup.Reconcile(batch, nil)
			require.Len(t, plan.ToInsert, 1)
			assert.True(t, plan.ToInsert[0].HasPoster())
		})
	}
}

func TestReconcileDifferentOccasionsKept(t *testing.T) {
	tests := []struct {
		name string
		a, b domain.ExtractedEvent
	}{
		{"different dates", event("2025-11-23", "地點A", ""), event("2025-11-24", "地點A", "")},
		{"unrelated locations", event("2025-11-23", "地點A", ""), event("2025-11-23", "地點B", "")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan := dedup.Reconcile([]domain.ExtractedEvent{tt.a, tt.b}, nil)
			assert.Len(t, plan.ToInsert, 2)
		})
	}
}

func TestReconcileCityRules(t *testing.T) {
	withCity := func(e domain.ExtractedEvent, city string) domain.ExtractedEvent {
		e.City = city
		return e
	}
	a := event("2025-11-23", "廣場", "")

	t.Run("same city merges", func(t *testing.T) {
		plan := dedup.Reconcile(
			[]domain.ExtractedEvent{withCity(a, "新竹市"), withCity(a, "新竹市")}, nil)
		assert.Len(t, plan.ToInsert, 1)
	})

	t.Run("different cities stay separate", func(t *testing.T) {
		plan := dedup.Reconcile(
			[]domain.ExtractedEvent{withCity(a, "新竹市"), withCity(a, "台北市")}, nil)
		assert.Len(t, plan.ToInsert, 2)
	})

	t.Run("one missing city stays separate", func(t *testing.T) {
		plan := dedup.Reconcile(
			[]domain.ExtractedEvent{withCity(a, "新竹市"), a}, nil)
		assert.Len(t, plan.ToInsert, 2)
	})
}

func TestReconcileAgainstExisting(t *testing.T) {
	existing := []domain.PersistedEvent{
		persisted("id-1", "2025-11-23", "地點A", ""),
	}

	t.Run("incoming with poster replaces", func(t *testing.T) {
		incoming := event("2025-11-23", "地點A", "https://blood.example.org/file_pool/p.jpg")
		plan := dedup.Reconcile([]domain.ExtractedEvent{incoming}, existing)

		require.Len(t, plan.ToReplace, 1)
		assert.Equal(t, "id-1", plan.ToReplace[0].ExistingID)
		assert.Empty(t, plan.ToInsert)
	})

	t.Run("tie keeps existing", func(t *testing.T) {
		incoming := event("2025-11-23", "地點A", "")
		plan := dedup.Reconcile([]domain.ExtractedEvent{incoming}, existing)

		assert.Empty(t, plan.ToInsert)
		assert.Empty(t, plan.ToReplace)
		assert.Len(t, plan.ToDrop, 1)
	})
}

func TestReconcileIdempotent(t *testing.T) {
	batch := []domain.ExtractedEvent{
		event("2025-11-23", "地點A(詳細地址)", "https://blood.example.org/file_pool/p.jpg"),
		event("2025-12-05", "市民廣場", ""),
	}

	first := dedup.Reconcile(batch, nil)
	require.Len(t, first.ToInsert, 2)

	reconciled := make([]domain.PersistedEvent, 0, len(first.ToInsert))
	for i, e := range first.ToInsert {
		reconciled = append(reconciled, domain.PersistedEvent{ID: string(rune('a' + i)), ExtractedEvent: e})
	}

	second := dedup.Reconcile(batch, reconciled)
	assert.Empty(t, second.ToInsert, "re-running reconcile must not insert again")
}

func TestReconcileIdenticalPosterForcesOverwrite(t *testing.T) {
	// Text extraction diverged (different date and venue) but the poster is
	// the same image reference, which is decisive on its own.
	existing := []domain.PersistedEvent{
		persisted("id-1", "2025-11-22", "舊地點", "https://blood.example.org/file_pool/p.jpg"),
	}
	incoming := event("2025-11-23", "新地點", "https://blood.example.org/file_pool/p.jpg")

	plan := dedup.Reconcile([]domain.ExtractedEvent{incoming}, existing)

	require.Len(t, plan.ToReplace, 1)
	assert.Equal(t, "id-1", plan.ToReplace[0].ExistingID)
	assert.Equal(t, "2025-11-23", plan.ToReplace[0].Event.Date)
}

func TestReconcileCollapsesMultipleExistingMatches(t *testing.T) {
	existing := []domain.PersistedEvent{
		persisted("id-1", "2025-11-23", "地點A", ""),
		persisted("id-2", "2025-11-23", "地點A(詳細地址)", ""),
	}
	incoming := event("2025-11-23", "地點A(詳細地址與備註)", "https://blood.example.org/file_pool/p.jpg")

	plan := dedup.Reconcile([]domain.ExtractedEvent{incoming}, existing)

	require.Len(t, plan.ToReplace, 1)
	assert.Len(t, plan.ToDelete, 1)
	assert.NotEqual(t, plan.ToReplace[0].ExistingID, plan.ToDelete[0])
}
