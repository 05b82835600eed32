package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Job is an employer posting. Deadline gates visibility in default
// listing queries: expired jobs only appear in owner-scoped reads.
type Job struct {
	ID              primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Title           string               `bson:"title" json:"title"`
	Company         string               `bson:"company" json:"company"`
	Location        string               `bson:"location" json:"location"`
	Description     string               `bson:"description" json:"description"`
	Salary          SalaryRange          `bson:"salary,omitempty" json:"salary,omitempty"`
	EmploymentType  []string             `bson:"employmentType,omitempty" json:"employmentType,omitempty"`
	Requirements    []string             `bson:"requirements,omitempty" json:"requirements,omitempty"`
	ExperienceLevel string               `bson:"experienceLevel,omitempty" json:"experienceLevel,omitempty"`
	PostedBy        primitive.ObjectID   `bson:"postedBy" json:"postedBy"`
	Questions       []string             `bson:"questions,omitempty" json:"questions,omitempty"`
	Assessments     []primitive.ObjectID `bson:"assessments,omitempty" json:"assessments,omitempty"`
	CreatedAt       time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time            `bson:"updatedAt" json:"updatedAt"`
	Deadline        time.Time            `bson:"deadline" json:"deadline"`
}

type SalaryRange struct {
	Min int `bson:"min,omitempty" json:"min,omitempty"`
	Max int `bson:"max,omitempty" json:"max,omitempty"`
}

// JobFilter is the composite search input. Each field accepts zero or
// more values; a non-empty slice means "is one of". Search results are
// always additionally constrained to non-expired deadlines.
type JobFilter struct {
	Types     []string `json:"jobType,omitempty"`
	Locations []string `json:"location,omitempty"`
	Roles     []string `json:"role,omitempty"`
	Companies []string `json:"company,omitempty"`
}

// FacetField names a Job field whose distinct values feed search facets.
type FacetField string

const (
	FacetTitle          FacetField = "title"
	FacetLocation       FacetField = "location"
	FacetEmploymentType FacetField = "employmentType"
	FacetCompany        FacetField = "company"
)

func ParseFacetField(s string) (FacetField, bool) {
	switch FacetField(s) {
	case FacetTitle, FacetLocation, FacetEmploymentType, FacetCompany:
		return FacetField(s), true
	}
	return "", false
}
