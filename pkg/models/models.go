package models

// Domain models matching the database schema in db/migrations/0001_init.sql

// StatusValue enumerates the review states a committee can assign to an
// application it received.
type StatusValue string

const (
	StatusPending            StatusValue = "pending"
	StatusInvitedToInterview StatusValue = "invited_to_interview"
	StatusInterviewDeclined  StatusValue = "interview_declined"
	StatusInterviewCompleted StatusValue = "interview_completed"
	StatusOfferGiven         StatusValue = "offer_given"
	StatusOfferDeclined      StatusValue = "offer_declined"
	StatusAccepted           StatusValue = "accepted"
	StatusRejected           StatusValue = "rejected"
)

// ParseStatus returns the status value for s, or false when s is not part of
// the enumeration.
func ParseStatus(s string) (StatusValue, bool) {
	switch StatusValue(s) {
	case StatusPending, StatusInvitedToInterview, StatusInterviewDeclined,
		StatusInterviewCompleted, StatusOfferGiven, StatusOfferDeclined,
		StatusAccepted, StatusRejected:
		return StatusValue(s), true
	}
	return "", false
}

type Committee struct {
	ID                int64  `json:"id" db:"id"`
	Name              string `json:"name" db:"name"`
	Slug              string `json:"slug" db:"slug"`
	AcceptsAdmissions bool   `json:"accepts_admissions" db:"accepts_admissions"`
}

// CommitteeRef is the embedded committee projection carried on an application.
type CommitteeRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// Status is one committee's review state for one application. CommitteeID is
// the join key used everywhere, including redaction.
type Status struct {
	ID          int64       `json:"id" db:"id"`
	CommitteeID int64       `json:"committee" db:"committee_id"`
	Value       StatusValue `json:"value" db:"value"`
	Created     int64       `json:"created" db:"created"`
}

// Application is a submitted admission application. Committees and Statuses
// are hydrated from the same status rows, so the entry for committee c in one
// always has a counterpart in the other.
type Application struct {
	ID         int64          `json:"id" db:"id"`
	Name       string         `json:"name" db:"name"`
	Created    int64          `json:"created" db:"created"`
	Committees []CommitteeRef `json:"committees"`
	Statuses   []Status       `json:"statuses"`
}

// CommitteeIDs returns the ids of the committees the application was
// addressed to, in submission order.
func (a *Application) CommitteeIDs() []int64 {
	ids := make([]int64, 0, len(a.Statuses))
	for _, s := range a.Statuses {
		ids = append(ids, s.CommitteeID)
	}
	return ids
}

// User id is the membership number.
type User struct {
	ID           int64  `json:"id" db:"id"`
	Name         string `json:"name" db:"name"`
	PasswordHash string `json:"password_hash,omitempty" db:"password_hash"`
}

// AdmissionPeriod is a window during which submissions are accepted.
// Timestamps are unix milliseconds; the window is [StartsAt, EndsAt).
type AdmissionPeriod struct {
	ID       int64 `json:"id" db:"id"`
	StartsAt int64 `json:"starts_at" db:"starts_at"`
	EndsAt   int64 `json:"ends_at" db:"ends_at"`
}
