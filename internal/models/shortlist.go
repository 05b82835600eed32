package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Shortlist is a user's saved-jobs set. One per user, created lazily on
// first read or add. JobIDs holds no duplicates.
type Shortlist struct {
	ID     primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	UserID primitive.ObjectID   `bson:"userId" json:"userId"`
	JobIDs []primitive.ObjectID `bson:"jobIds" json:"jobIds"`
}

// Contains reports membership with a linear scan; shortlists stay small.
func (s *Shortlist) Contains(jobID primitive.ObjectID) bool {
	for _, id := range s.JobIDs {
		if id == jobID {
			return true
		}
	}
	return false
}
