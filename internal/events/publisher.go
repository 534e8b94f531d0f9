// Package events publishes sync lifecycle events to NATS so failures of the
// fire-and-forget refresh can be observed out-of-band.
package events

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

// Event subjects
const (
	SubjectSyncCompleted = "analytics.sync.completed"
	SubjectSyncFailed    = "analytics.sync.failed"
)

// SyncCompletedEvent represents a successful store data refresh.
type SyncCompletedEvent struct {
	StoreID       uuid.UUID `json:"store_id"`
	JobID         uuid.UUID `json:"job_id"`
	Orders        int       `json:"orders"`
	DailyMetrics  int       `json:"daily_metrics"`
	ProductRows   int       `json:"product_rows"`
	Products      int       `json:"products"`
	Duration      string    `json:"duration"`
	Timestamp     time.Time `json:"timestamp"`
}

// SyncFailedEvent represents a failed store data refresh.
type SyncFailedEvent struct {
	StoreID   uuid.UUID `json:"store_id"`
	JobID     uuid.UUID `json:"job_id"`
	Error     string    `json:"error"`
	Timestamp time.Time `json:"timestamp"`
}

// Publisher handles publishing events to NATS.
type Publisher struct {
	nc     *nats.Conn
	logger *zap.Logger
}

// NewPublisher creates a new NATS publisher.
func NewPublisher(nc *nats.Conn, logger *zap.Logger) *Publisher {
	return &Publisher{nc: nc, logger: logger}
}

// PublishSyncCompleted publishes a sync completed event.
func (p *Publisher) PublishSyncCompleted(event *SyncCompletedEvent) error {
	return p.publish(SubjectSyncCompleted, event)
}

// PublishSyncFailed publishes a sync failed event.
func (p *Publisher) PublishSyncFailed(event *SyncFailedEvent) error {
	return p.publish(SubjectSyncFailed, event)
}

func (p *Publisher) publish(subject string, event any) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	if err := p.nc.Publish(subject, data); err != nil {
		p.logger.Warn("failed to publish event", zap.String("subject", subject), zap.Error(err))
		return err
	}
	return nil
}
