package model

import "time"

type Item struct {
	ID              int64     `json:"id"`
	OwnerID         int64     `json:"owner_id"`
	Title           string    `json:"title"`
	ItemDescription string    `json:"item_description"`
	RentPerDay      float64   `json:"rent_per_day"`
	ItemCondition   string    `json:"item_condition"`
	Category        string    `json:"category"`
	Location        string    `json:"location"`
	ImageURL        *string   `json:"image_url,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

// ItemDetail is an item joined with its owner for the detail page.
type ItemDetail struct {
	Item
	OwnerName          string   `json:"owner_name"`
	OwnerAverageRating *float64 `json:"owner_average_rating"`
	OwnerRatingCount   int64    `json:"owner_rating_count"`
}
