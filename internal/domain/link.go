package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CoachClientLink marks a client as managed by a coach.
// Invariant: at most one row per client at any time; a coach may have many.
type CoachClientLink struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CoachID   primitive.ObjectID `bson:"coachId" json:"coachId"`
	ClientID  primitive.ObjectID `bson:"clientId" json:"clientId"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// PlanAssignment marks a plan as visible/active for a user.
// Invariant: unique per (user, plan); re-assigning is a no-op.
type PlanAssignment struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID     primitive.ObjectID `bson:"userId" json:"userId"`
	PlanID     primitive.ObjectID `bson:"planId" json:"planId"`
	AssignedAt time.Time          `bson:"assignedAt" json:"assignedAt"`
}
