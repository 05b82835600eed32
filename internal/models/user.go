package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Role discriminates the user sub-shapes. Fixed at signup.
type Role string

const (
	RoleJobSeeker Role = "jobSeeker"
	RoleEmployer  Role = "employer"
	RoleAdmin     Role = "admin"
)

func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleJobSeeker, RoleEmployer, RoleAdmin:
		return Role(s), true
	}
	return "", false
}

// User is the identity record keyed by the identity provider's subject id.
// Role-specific fields live in the embedded profile matching Role; the
// other profile pointer stays nil.
type User struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UID       string             `bson:"uid" json:"uid"`
	Email     string             `bson:"email" json:"email"`
	Name      string             `bson:"name" json:"name"`
	Role      Role               `bson:"role" json:"role"`
	JobSeeker *JobSeekerProfile  `bson:"jobSeeker,omitempty" json:"jobSeeker,omitempty"`
	Employer  *EmployerProfile   `bson:"employer,omitempty" json:"employer,omitempty"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

type JobSeekerProfile struct {
	Education  []Education  `bson:"education,omitempty" json:"education,omitempty"`
	Experience []Experience `bson:"experience,omitempty" json:"experience,omitempty"`
	Skills     []string     `bson:"skills,omitempty" json:"skills,omitempty"`
	Resume     string       `bson:"resume,omitempty" json:"resume,omitempty"`
}

type EmployerProfile struct {
	CompanyName        string `bson:"companyName" json:"companyName"`
	CompanyWebsite     string `bson:"companyWebsite,omitempty" json:"companyWebsite,omitempty"`
	CompanyDescription string `bson:"companyDescription,omitempty" json:"companyDescription,omitempty"`
}

type Education struct {
	Institution string `bson:"institution" json:"institution"`
	Degree      string `bson:"degree,omitempty" json:"degree,omitempty"`
	FieldOfStudy string `bson:"fieldOfStudy,omitempty" json:"fieldOfStudy,omitempty"`
	StartYear   int    `bson:"startYear,omitempty" json:"startYear,omitempty"`
	EndYear     int    `bson:"endYear,omitempty" json:"endYear,omitempty"`
}

type Experience struct {
	Company     string `bson:"company" json:"company"`
	Title       string `bson:"title" json:"title"`
	Description string `bson:"description,omitempty" json:"description,omitempty"`
	StartDate   string `bson:"startDate,omitempty" json:"startDate,omitempty"`
	EndDate     string `bson:"endDate,omitempty" json:"endDate,omitempty"`
}
