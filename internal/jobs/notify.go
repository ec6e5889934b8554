package jobs

import (
	"context"
	"encoding/json"

	"log/slog"
)

// TypeNotifyCommittee is enqueued once per addressed committee when an
// application is submitted.
const TypeNotifyCommittee = "notify.committee"

// NotifyPayload is the payload carried by notify.committee jobs.
type NotifyPayload struct {
	ApplicationID int64  `json:"application_id"`
	CommitteeID   int64  `json:"committee_id"`
	Applicant     string `json:"applicant"`
}

// NotifyHandler returns the handler for notify.committee jobs. Delivery is a
// structured log line; a mail or chat integration slots in here without
// touching the queue.
func NotifyHandler(logger *slog.Logger) Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return func(ctx context.Context, j *Job) error {
		var p NotifyPayload
		if err := json.Unmarshal(j.Payload, &p); err != nil {
			return err
		}
		logger.Info("new application for committee",
			"application_id", p.ApplicationID,
			"committee_id", p.CommitteeID,
			"applicant", p.Applicant,
		)
		return nil
	}
}
