package loadgen

import (
	"context"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/pixelarc/rankboard/pkg/logger"
)

// Kinds the generator spreads events over. win_rate events carry a rate
// and trial count instead of a plain counter.
var kinds = []string{"spark", "craft", "extract", "win_rate"}

// Metric distribution bounds.
const (
	casualMetricMax   = 50
	regularMetricMax  = 500
	hardcoreMetricMax = 5000
	maxTrials         = 200
)

// generateEvents creates the configured number of events over a fixed pool
// of user ids so several events land on the same user.
func generateEvents(ctx context.Context, config *Config, stats *Stats) ([]Event, error) {
	logger.Get().Info(ctx, "generating events",
		logger.Int("numEvents", config.NumEvents),
		logger.Int("numUsers", config.NumUsers))

	userIDs := make([]string, config.NumUsers)
	for i := range userIDs {
		userIDs[i] = uuid.NewString()
	}

	events := make([]Event, config.NumEvents)
	for i := range events {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		events[i] = generateSingleEvent(userIDs[rand.Intn(len(userIDs))])
	}

	stats.EventsGenerated = len(events)
	logger.Get().Info(ctx, "generated events successfully", logger.Int("count", len(events)))
	return events, nil
}

// generateSingleEvent creates one event for the given user with a skewed
// metric distribution: most players post small counts, a few post large
// ones.
func generateSingleEvent(userID string) Event {
	kind := kinds[rand.Intn(len(kinds))]

	ev := Event{
		EventID:    uuid.NewString(),
		UserID:     userID,
		Kind:       kind,
		OccurredAt: time.Now().UTC().Format(time.RFC3339),
	}

	if kind == "win_rate" {
		ev.Trials = 1 + rand.Int63n(maxTrials)
		// percentage with two decimal places
		ev.Rate = float64(rand.Intn(10001)) / 100
		return ev
	}

	switch rand.Intn(10) {
	case 0:
		// hardcore players, rare
		ev.Metric = rand.Int63n(hardcoreMetricMax)
	case 1, 2, 3:
		ev.Metric = rand.Int63n(regularMetricMax)
	default:
		ev.Metric = rand.Int63n(casualMetricMax)
	}
	return ev
}
