package model

import "time"

// CampaignStatusActive is the default campaign status. Status is
// informational only and never gates issuance; stock is bounded by Quantity
// alone.
const CampaignStatusActive = "active"

// Campaign is a bounded pool of vouchers sharing a value. Quantity caps how
// many vouchers carrying Content may be issued through this campaign; Issued
// is the running reservation count used by strict-mode issuance.
type Campaign struct {
	ID        string    `bson:"_id" db:"id" json:"id"`
	Content   string    `bson:"content" db:"content" json:"content"`
	Quantity  int64     `bson:"quantity" db:"quantity" json:"quantity"`
	Issued    int64     `bson:"issued" db:"issued" json:"issued"`
	Status    string    `bson:"status" db:"status" json:"status"`
	CreatedAt time.Time `bson:"created_at" db:"created_at" json:"created_at"`
}

// CreateCampaignRequest is the DTO for POST /api/campaigns.
// Quantity is a pointer so that an explicit 0 passes validation while a
// missing field does not.
type CreateCampaignRequest struct {
	Content  string `json:"content" binding:"required"`
	Quantity *int64 `json:"quantity" binding:"required,gte=0"`
	Status   string `json:"status"`
}

// UpdateStatusRequest is the shared DTO for the status-transition endpoints.
type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}
