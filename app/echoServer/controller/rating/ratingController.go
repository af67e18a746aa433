package rating

import (
	"log/slog"
	"net/http"
	"strconv"

	ratingsvc "sharekori/service/rating"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type Controller struct {
	Svc ratingsvc.Service
	V   *validator.Validate
	Log *slog.Logger
}

// POST /api/ratings
func (h *Controller) Submit(c echo.Context) error {
	var req SubmitRatingReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid JSON"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error":  "validation error",
			"fields": err.Error(),
		})
	}
	uid, _ := c.Get("user_id").(int64)

	rt, err := h.Svc.Submit(c.Request().Context(), uid, req.RentalID, req.Rating, req.Comment)
	if err != nil {
		switch ratingsvc.Code(err) {
		case ratingsvc.ErrRentalNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Rental not found"})
		case ratingsvc.ErrNotRenter:
			return c.JSON(http.StatusForbidden, echo.Map{"error": "You can only rate your own rentals"})
		case ratingsvc.ErrNotCompleted:
			return c.JSON(http.StatusConflict, echo.Map{"error": "Rental is not completed yet"})
		case ratingsvc.ErrInvalidRating:
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "Rating must be between 1 and 5"})
		case ratingsvc.ErrDuplicate:
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "You already rated this rental"})
		default:
			h.Log.Error("rating submit", "err", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to submit rating"})
		}
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"message": "Rating submitted",
		"rating":  rt,
	})
}

// GET /api/ratings/rental/:rentalId
func (h *Controller) ByRental(c echo.Context) error {
	rentalID, err := strconv.ParseInt(c.Param("rentalId"), 10, 64)
	if err != nil || rentalID <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid rental id"})
	}
	rt, svcErr := h.Svc.ByRental(c.Request().Context(), rentalID)
	if svcErr != nil {
		if ratingsvc.Code(svcErr) == ratingsvc.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "No rating for this rental"})
		}
		h.Log.Error("rating by rental", "err", svcErr)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to fetch rating"})
	}
	return c.JSON(http.StatusOK, rt)
}

// GET /api/reviews/item/:itemId
func (h *Controller) ByItem(c echo.Context) error {
	itemID, err := strconv.ParseInt(c.Param("itemId"), 10, 64)
	if err != nil || itemID <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid item id"})
	}
	reviews, err := h.Svc.ItemReviews(c.Request().Context(), itemID)
	if err != nil {
		h.Log.Error("item reviews", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to fetch reviews"})
	}
	if reviews == nil {
		reviews = []ratingsvc.ItemReview{}
	}
	return c.JSON(http.StatusOK, reviews)
}

// GET /api/ratings/user/:userId/average
func (h *Controller) OwnerAverage(c echo.Context) error {
	userID, err := strconv.ParseInt(c.Param("userId"), 10, 64)
	if err != nil || userID <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user id"})
	}
	avg, err := h.Svc.OwnerAverage(c.Request().Context(), userID)
	if err != nil {
		h.Log.Error("owner average", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to fetch rating"})
	}
	return c.JSON(http.StatusOK, avg)
}
