package model

import "time"

// Voucher statuses. Status is a free string; Issued and Void are the two
// values the status-transition rule reacts to.
const (
	VoucherStatusPending = "Pending"
	VoucherStatusIssued  = "Issued"
	VoucherStatusVoid    = "Void"
)

// Voucher is a single promotional credit handed to a user. Value is the
// redeemable content; when the voucher was issued out of a campaign it equals
// the campaign's content.
type Voucher struct {
	ID        string     `bson:"_id" db:"id" json:"id"`
	Username  string     `bson:"username" db:"username" json:"username"`
	Value     string     `bson:"value" db:"value" json:"value"`
	Prize     string     `bson:"prize,omitempty" db:"prize" json:"prize,omitempty"`
	Status    string     `bson:"status" db:"status" json:"status"`
	ClaimedAt *time.Time `bson:"claimed_at,omitempty" db:"claimed_at" json:"claimedAt,omitempty"`
	CreatedAt time.Time  `bson:"created_at" db:"created_at" json:"createdAt"`
}

// CreateVoucherRequest is the DTO for POST /api/vouchers. When CampaignID is
// set the stored value is forced to the campaign's content and the request
// counts against that campaign's stock.
type CreateVoucherRequest struct {
	Username   string     `json:"username"`
	Value      string     `json:"value" binding:"required"`
	Prize      string     `json:"prize"`
	Status     string     `json:"status"`
	ClaimedAt  *time.Time `json:"claimedAt"`
	CampaignID string     `json:"campaignId"`
}

