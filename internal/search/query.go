package search

import (
	"go.uber.org/zap"

	"medicine-locator/internal/models"
)

// query tracks the state machine of a single search for logging and
// debugging. Terminal states are DONE and TIMED_OUT.
type query struct {
	medicineID string
	state      string
	logger     *zap.Logger
}

func newQuery(logger *zap.Logger, medicineID string) *query {
	return &query{
		medicineID: medicineID,
		state:      models.QueryStateStarted,
		logger:     logger,
	}
}

func (q *query) transition(next string) {
	// A timed-out query stays timed out.
	if q.state == models.QueryStateTimedOut || q.state == models.QueryStateDone {
		return
	}
	q.logger.Debug("Query state transition",
		zap.String("medicine_id", q.medicineID),
		zap.String("from", q.state),
		zap.String("to", next))
	q.state = next
}
