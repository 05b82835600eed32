package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Difficulty string

const (
	Easy   Difficulty = "easy"
	Medium Difficulty = "medium"
	Hard   Difficulty = "hard"
)

func ParseDifficulty(s string) (Difficulty, bool) {
	switch Difficulty(s) {
	case Easy, Medium, Hard:
		return Difficulty(s), true
	}
	return "", false
}

// CodeAssessment is a coding challenge referenced by zero or more jobs.
type CodeAssessment struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title       string             `bson:"title" json:"title"`
	Description string             `bson:"description" json:"description"`
	Difficulty  Difficulty         `bson:"difficulty" json:"difficulty"`
	TestCases   []TestCase         `bson:"testCases,omitempty" json:"testCases,omitempty"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
}

// single testcase
type TestCase struct {
	Input  string `bson:"input" json:"input"`
	Output string `bson:"output" json:"output"`
}

// Language tags a submission's source code.
type Language string

const (
	LangPython     Language = "python"
	LangCPP        Language = "cpp"
	LangJavaScript Language = "javascript"
)

func ParseLanguage(s string) (Language, bool) {
	switch Language(s) {
	case LangPython, LangCPP, LangJavaScript:
		return Language(s), true
	}
	return "", false
}

// CodeSubmission records the best attempt for an (application, assessment)
// pair. Score and SolutionCode only ever move to a higher-scoring attempt.
type CodeSubmission struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ApplicationID primitive.ObjectID `bson:"applicationId" json:"applicationId"`
	AssessmentID  primitive.ObjectID `bson:"assessmentId" json:"assessmentId"`
	SolutionCode string             `bson:"solutionCode" json:"solutionCode"`
	Language     Language           `bson:"language" json:"language"`
	Score        int                `bson:"score" json:"score"`
	SubmittedAt  time.Time          `bson:"submittedAt" json:"submittedAt"`
}

// TaskStatus is derived from the stored submission, never persisted.
type TaskStatus string

const (
	TaskNotSubmitted     TaskStatus = "not_submitted"
	TaskAttempted        TaskStatus = "attempted"
	TaskCompletedPartial TaskStatus = "completed_partial"
	TaskCompletedFull    TaskStatus = "completed_full"
)

// DeriveTaskStatus classifies a submission score against the assessment's
// test-case count. A nil submission means the task was never attempted.
func DeriveTaskStatus(sub *CodeSubmission, maxScore int) TaskStatus {
	switch {
	case sub == nil:
		return TaskNotSubmitted
	case sub.Score == 0:
		return TaskAttempted
	case sub.Score >= maxScore:
		return TaskCompletedFull
	default:
		return TaskCompletedPartial
	}
}
