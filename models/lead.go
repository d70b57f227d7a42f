package models

import "time"

// LeadRequest is the body of POST /api/subscribe, forwarded unchanged to the webhook.
type LeadRequest struct {
	Email                  string `json:"email" example:"reader@example.com"`
	SuggestedArticle       string `json:"suggestedArticle" example:"Web Design with Headless CMS"`
	Hook                   string `json:"hook"`
	SubscribedToNewsletter bool   `json:"subscribedToNewsletter"`
}

// LeadResponse is the success body of POST /api/subscribe.
type LeadResponse struct {
	Message string `json:"message" example:"Success"`
}

// Lead delivery statuses recorded in lead_submissions.
const (
	LeadStatusDelivered = "delivered"
	LeadStatusFailed    = "failed"
)

// LeadRecord 线索投递记录
type LeadRecord struct {
	ID               string    `db:"id" json:"id"`
	Email            string    `db:"email" json:"email"`
	SuggestedArticle string    `db:"suggested_article" json:"suggested_article"`
	Subscribed       bool      `db:"subscribed" json:"subscribed"`
	Status           string    `db:"status" json:"status"`
	Detail           string    `db:"detail" json:"detail,omitempty"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
}
