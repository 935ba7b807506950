package models

import "time"

// Campaign is a merchant's prize wheel campaign. Customers reach it through
// its public slug.
type Campaign struct {
	ID        string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	CompanyID string    `gorm:"index;not null" json:"companyId"`
	Name      string    `gorm:"not null" json:"name"`
	Slug      string    `gorm:"uniqueIndex;not null" json:"slug"`
	Callout   string    `json:"callout,omitempty"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
}

// Prize is one slice of a campaign wheel. Probability is a relative weight;
// it does not have to be normalized.
type Prize struct {
	ID              string  `gorm:"primaryKey;type:varchar(36)" json:"id"`
	CampaignID      string  `gorm:"index;not null" json:"-"`
	Position        int     `gorm:"not null" json:"-"` // slice order on the wheel
	Name            string  `gorm:"not null" json:"name"`
	Description     string  `json:"description,omitempty"`
	Quantity        int     `json:"quantity"`
	Probability     float64 `json:"probability"`
	MessageTemplate string  `json:"messageTemplate,omitempty"`
}

// Lead is a customer who registered contact details to spin a campaign wheel.
type Lead struct {
	ID            string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	CampaignID    string    `gorm:"index;not null" json:"campaignId"`
	Name          string    `gorm:"not null" json:"name"`
	Phone         string    `gorm:"not null" json:"phone"`
	TermsAccepted bool      `json:"termsAccepted"`
	PrizeID       *string   `gorm:"index" json:"prizeId,omitempty"` // set once a prize is revealed
	CreatedAt     time.Time `json:"createdAt"`
}

// SpinResult stores the outcome of a single revealed campaign spin.
type SpinResult struct {
	ID         string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	CampaignID string    `gorm:"index;not null" json:"campaignId"`
	LeadID     string    `gorm:"index" json:"leadId"`
	PrizeID    string    `json:"prizeId"`
	PrizeName  string    `json:"prizeName"`
	Rotation   float64   `json:"rotation"`
	CreatedAt  time.Time `json:"createdAt"`
}

// CompanyMetrics summarizes a merchant's campaigns for the dashboard.
type CompanyMetrics struct {
	Leads           int64 `json:"leads"`
	PrizesDelivered int64 `json:"prizesDelivered"`
	ActiveCampaigns int64 `json:"activeCampaigns"`
	// Conversion is the rounded percentage of leads that won a prize, or -1
	// when there are no leads yet.
	Conversion int `json:"conversion"`
}
