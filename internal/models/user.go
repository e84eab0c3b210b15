// internal/models/user.go
package models

import "time"

// User is an account holder. PasswordHash is never serialized.
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Username  string    `json:"username"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Verified  bool      `json:"verified"`
	CreatedAt time.Time `json:"createdAt"`

	PasswordHash string `json:"-"`
}

// JobBuckets holds a user's job ids grouped by current stage. A job id lives
// in exactly one bucket at a time.
type JobBuckets struct {
	Applied   []string `json:"applied"`
	Screen    []string `json:"screen"`
	Interview []string `json:"interview"`
	Offer     []string `json:"offer"`
	Accepted  []string `json:"accepted"`
	Rejected  []string `json:"rejected"`
	Withdrawn []string `json:"withdrawn"`
}

// Bucket returns the slice for a stage.
func (b JobBuckets) Bucket(stage Stage) []string {
	switch stage {
	case StageApplied:
		return b.Applied
	case StageScreen:
		return b.Screen
	case StageInterview:
		return b.Interview
	case StageOffer:
		return b.Offer
	case StageAccepted:
		return b.Accepted
	case StageRejected:
		return b.Rejected
	case StageWithdrawn:
		return b.Withdrawn
	}
	return nil
}

// TotalApplications is the sum of all bucket sizes. The counter is derived
// rather than stored so it cannot drift from the buckets.
func (b JobBuckets) TotalApplications() int {
	total := 0
	for _, stage := range Stages {
		total += len(b.Bucket(stage))
	}
	return total
}
