package model

import "time"

// Referral statuses. Status is a free string; milestone rewards are minted
// only on the transition into Confirmed.
const (
	ReferralStatusPending   = "Pending"
	ReferralStatusConfirmed = "Confirmed"
)

// Referral records that Referrer brought Referee in. The pair is unique;
// a referee can only be referred once.
type Referral struct {
	ID        string    `bson:"_id" db:"id" json:"id"`
	Referrer  string    `bson:"referrer" db:"referrer" json:"referrer"`
	Referee   string    `bson:"referee" db:"referee" json:"referee"`
	Status    string    `bson:"status" db:"status" json:"status"`
	CreatedAt time.Time `bson:"created_at" db:"created_at" json:"created_at"`
}

// CreateReferralRequest is the DTO for POST /api/referrals.
type CreateReferralRequest struct {
	Referrer string `json:"referrer" binding:"required"`
	Referee  string `json:"referee" binding:"required"`
	Status   string `json:"status"`
}

// ReferralReward is a prize earned by a referrer for reaching Milestone
// confirmed referrals. At most one reward exists per (username, milestone).
type ReferralReward struct {
	ID        string     `bson:"_id" db:"id" json:"id"`
	Username  string     `bson:"username" db:"username" json:"username"`
	Milestone int64      `bson:"milestone" db:"milestone" json:"milestone"`
	Prize     string     `bson:"prize" db:"prize" json:"prize"`
	Claimed   bool       `bson:"claimed" db:"claimed" json:"claimed"`
	CreatedAt time.Time  `bson:"created_at" db:"created_at" json:"created_at"`
	ClaimedAt *time.Time `bson:"claimed_at,omitempty" db:"claimed_at" json:"claimed_at,omitempty"`
}
