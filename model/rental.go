package model

import "time"

type DeliveredStatus string

const (
	DeliveryPending   DeliveredStatus = "pending"
	DeliveryDelivered DeliveredStatus = "delivered"
)

type RentalRequest struct {
	ID              int64           `json:"id"`
	ItemID          int64           `json:"item_id"`
	RenterID        int64           `json:"renter_id"`
	StartDate       time.Time       `json:"start_date"`
	EndDate         time.Time       `json:"end_date"`
	DeliveredStatus DeliveredStatus `json:"delivered_status"`
	CreatedAt       time.Time       `json:"created_at"`
}
