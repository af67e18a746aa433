package item

type CreateItemReq struct {
	Title           string  `form:"title" validate:"required"`
	ItemDescription string  `form:"item_description" validate:"required"`
	RentPerDay      float64 `form:"rent_per_day" validate:"required,gt=0"`
	ItemCondition   string  `form:"item_condition" validate:"omitempty"`
	Category        string  `form:"category" validate:"required"`
	Location        string  `form:"location" validate:"required"`
}
