// internal/models/application.go
package models

import "time"

// Stage identifies a step in an application's lifecycle.
type Stage string

const (
	StageApplied   Stage = "applied"
	StageScreen    Stage = "screen"
	StageInterview Stage = "interview"
	StageOffer     Stage = "offer"
	StageAccepted  Stage = "accepted"
	StageRejected  Stage = "rejected"
	StageWithdrawn Stage = "withdrawn"
)

// Stages lists every bucket a job id can live in, in lifecycle order.
var Stages = []Stage{
	StageApplied, StageScreen, StageInterview, StageOffer,
	StageAccepted, StageRejected, StageWithdrawn,
}

// FinalStages are the terminal outcomes. Once set on an application they are
// never overwritten.
var FinalStages = map[Stage]bool{
	StageAccepted:  true,
	StageRejected:  true,
	StageWithdrawn: true,
}

// StatusHistory records when an application entered each stage. Applied is
// always set; later stages stay nil until reached.
type StatusHistory struct {
	Applied   time.Time  `json:"applied"`
	Screen    *time.Time `json:"screen"`
	Interview *time.Time `json:"interview"`
	Offer     *time.Time `json:"offer"`
}

// FinalStatus is a terminal outcome with the date it was reached.
type FinalStatus struct {
	Status Stage     `json:"status"`
	Date   time.Time `json:"date"`
}

// Application ties a user to a job posting and tracks its progress.
type Application struct {
	ID            string        `json:"id"`
	UserID        string        `json:"userId"`
	JobID         string        `json:"jobId"`
	Company       string        `json:"company"`
	StatusHistory StatusHistory `json:"statusHistory"`
	FinalStatus   *FinalStatus  `json:"finalStatus"`
}

// CurrentStage returns the bucket the application belongs to right now.
func (a *Application) CurrentStage() Stage {
	if a.FinalStatus != nil {
		return a.FinalStatus.Status
	}
	switch {
	case a.StatusHistory.Offer != nil:
		return StageOffer
	case a.StatusHistory.Interview != nil:
		return StageInterview
	case a.StatusHistory.Screen != nil:
		return StageScreen
	default:
		return StageApplied
	}
}
