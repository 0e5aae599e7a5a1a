package services

import (
	"context"
	"iter"

	"github.com/google/uuid"

	"github.com/iota-uz/engagement-updater/modules/engagement/domain/events"
)

// BulkUpdatePayloads yields one event-equivalent payload per existing
// engagement, for backfill. The sequence is lazy and restartable: each
// iteration re-issues the platform-wide listing query. No ordering across
// engagements is guaranteed.
func (s *UpdaterService) BulkUpdatePayloads(ctx context.Context) iter.Seq2[events.Payload, error] {
	return s.updatePayloads(ctx, nil)
}

// SingleUpdatePayload yields the event-equivalent payload for one engagement.
func (s *UpdaterService) SingleUpdatePayload(ctx context.Context, engagementID uuid.UUID) iter.Seq2[events.Payload, error] {
	return s.updatePayloads(ctx, []uuid.UUID{engagementID})
}

func (s *UpdaterService) updatePayloads(ctx context.Context, uuids []uuid.UUID) iter.Seq2[events.Payload, error] {
	return func(yield func(events.Payload, error) bool) {
		refs, err := s.reader.ListEngagements(ctx, uuids)
		if err != nil {
			yield(events.Payload{}, err)
			return
		}
		for _, ref := range refs {
			payload := events.Payload{
				EmployeeUUID: ref.EmployeeID,
				ObjectUUID:   ref.EngagementID,
				Time:         s.now(),
			}
			if !yield(payload, nil) {
				return
			}
		}
	}
}
