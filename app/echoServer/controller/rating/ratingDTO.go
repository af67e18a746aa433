package rating

type SubmitRatingReq struct {
	RentalID int64  `json:"rental_id" validate:"required,gt=0"`
	Rating   int    `json:"rating" validate:"required,min=1,max=5"`
	Comment  string `json:"comment" validate:"omitempty,max=1000"`
}
