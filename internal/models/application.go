package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"joblink/api/internal/lifecycle"
)

// Application links one Job and one applicant. At most one exists per
// (job, applicant) pair, enforced by a unique compound index.
type Application struct {
	ID                 primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	JobID              primitive.ObjectID `bson:"jobId" json:"jobId"`
	ApplicantID        primitive.ObjectID `bson:"applicantId" json:"applicantId"`
	Status             lifecycle.Status   `bson:"status" json:"status"`
	CoverLetter        string             `bson:"coverLetter,omitempty" json:"coverLetter,omitempty"`
	Answers            []Answer           `bson:"answers,omitempty" json:"answers,omitempty"`
	SubmittedAt        *time.Time         `bson:"submittedAt,omitempty" json:"submittedAt,omitempty"`
	AssessmentDeadline *time.Time         `bson:"assessmentDeadline,omitempty" json:"assessmentDeadline,omitempty"`
	CreatedAt          time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt          time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// Answer is a free-text response to one of the job's screening questions.
type Answer struct {
	Question string `bson:"question" json:"question"`
	Text     string `bson:"text" json:"text"`
}

// StatusCount is one bucket of the employer dashboard aggregation.
type StatusCount struct {
	Status lifecycle.Status `bson:"_id" json:"status"`
	Count  int              `bson:"count" json:"count"`
}

// DailyJobCount is one point of the per-day-per-job submission series.
type DailyJobCount struct {
	Day   string             `bson:"day" json:"day"`
	JobID primitive.ObjectID `bson:"jobId" json:"jobId"`
	Count int                `bson:"count" json:"count"`
}
