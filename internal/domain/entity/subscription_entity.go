package entity

import "time"

// Subscription links a subscriber to a channel (both users).
// The account core only reads this relation; rows are written elsewhere.
type Subscription struct {
	ID           string    `json:"id"`
	SubscriberID string    `json:"subscriber_id"`
	ChannelID    string    `json:"channel_id"`
	CreatedAt    time.Time `json:"created_at"`
}

// ChannelProfile is the public projection of a user viewed as a channel,
// with subscription counts aggregated from the Subscription relation.
type ChannelProfile struct {
	FullName                  string `json:"full_name"`
	Username                  string `json:"username"`
	Email                     string `json:"email"`
	AvatarURL                 string `json:"avatar_url"`
	CoverImageURL             string `json:"cover_image_url,omitempty"`
	SubscribersCount          int64  `json:"subscribers_count"`
	ChannelsSubscribedToCount int64  `json:"channels_subscribed_to_count"`
	IsSubscribed              bool   `json:"is_subscribed"`
}
