package model

import "time"

type Rating struct {
	ID        int64     `json:"id"`
	RentalID  int64     `json:"rental_id"`
	Rating    int       `json:"rating"`
	Comment   *string   `json:"comment,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
