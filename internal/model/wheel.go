package model

// WheelSegment is one slice of the prize wheel. Weight sets the relative
// draw probability; a segment bound to a campaign is skipped once that
// campaign's stock is exhausted.
type WheelSegment struct {
	ID         string `bson:"_id" db:"id" json:"id"`
	Label      string `bson:"label" db:"label" json:"label"`
	Prize      string `bson:"prize" db:"prize" json:"prize"`
	Weight     int64  `bson:"weight" db:"weight" json:"weight"`
	CampaignID string `bson:"campaign_id,omitempty" db:"campaign_id" json:"campaign_id,omitempty"`
	Position   int64  `bson:"position" db:"position" json:"position"`
	Active     bool   `bson:"active" db:"active" json:"active"`
}

// WheelSegmentInput is one segment in a PUT /api/wheel payload.
type WheelSegmentInput struct {
	Label      string `json:"label" binding:"required"`
	Prize      string `json:"prize"`
	Weight     int64  `json:"weight" binding:"required,gt=0"`
	CampaignID string `json:"campaignId"`
	Active     *bool  `json:"active"`
}

// ReplaceWheelRequest is the DTO for PUT /api/wheel. The payload replaces
// the whole wheel atomically.
type ReplaceWheelRequest struct {
	Segments []WheelSegmentInput `json:"segments" binding:"required,min=1,dive"`
}

// SpinWheelRequest is the DTO for POST /api/wheel/spin.
type SpinWheelRequest struct {
	Username string `json:"username" binding:"required"`
}

// SpinResult is the outcome of one spin. Every winning spin creates a
// voucher, campaign-bound segments through the stock-checked path.
type SpinResult struct {
	Segment WheelSegment `json:"segment"`
	Voucher *Voucher     `json:"voucher"`
}
