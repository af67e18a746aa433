package rental

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	rs "sharekori/service/rental"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type Controller struct {
	Svc rs.Service
	V   *validator.Validate
	Log *slog.Logger
}

// POST /api/rentals
func (h *Controller) Create(c echo.Context) error {
	var req CreateRentalReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid JSON"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error":  "validation error",
			"fields": err.Error(),
		})
	}
	// Dates already matched 2006-01-02 in validation.
	start, _ := time.Parse(time.DateOnly, req.StartDate)
	end, _ := time.Parse(time.DateOnly, req.EndDate)

	uid, _ := c.Get("user_id").(int64)

	id, err := h.Svc.Create(c.Request().Context(), uid, req.ItemID, start, end)
	if err != nil {
		switch rs.Code(err) {
		case rs.ErrItemNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Item not found"})
		case rs.ErrOwnItem:
			return c.JSON(http.StatusForbidden, echo.Map{"error": "You cannot rent your own item"})
		case rs.ErrDateConflict:
			return c.JSON(http.StatusConflict, echo.Map{"error": "Selected dates are no longer available"})
		case rs.ErrInvalidRange:
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "start_date must be before end_date"})
		default:
			h.Log.Error("rental create", "err", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to create rental"})
		}
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"message":  "Rental request created",
		"rentalId": id,
	})
}

// GET /api/rentals/availability/:itemId
func (h *Controller) Availability(c echo.Context) error {
	itemID, err := strconv.ParseInt(c.Param("itemId"), 10, 64)
	if err != nil || itemID <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid item id"})
	}
	ranges, err := h.Svc.Availability(c.Request().Context(), itemID)
	if err != nil {
		h.Log.Error("availability", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to fetch availability"})
	}
	return c.JSON(http.StatusOK, ranges)
}

// GET /api/rentals/check?item_id&start_date&end_date
func (h *Controller) Check(c echo.Context) error {
	itemID, err := strconv.ParseInt(c.QueryParam("item_id"), 10, 64)
	if err != nil || itemID <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid item_id"})
	}
	start, err := time.Parse(time.DateOnly, c.QueryParam("start_date"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid start_date"})
	}
	end, err := time.Parse(time.DateOnly, c.QueryParam("end_date"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid end_date"})
	}

	out, err := h.Svc.Check(c.Request().Context(), itemID, start, end)
	if err != nil {
		if rs.Code(err) == rs.ErrInvalidRange {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "start_date must be before end_date"})
		}
		h.Log.Error("availability check", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to check availability"})
	}
	return c.JSON(http.StatusOK, out)
}

// GET /api/rentals/my-rentals
func (h *Controller) MyRentals(c echo.Context) error {
	uid, _ := c.Get("user_id").(int64)
	rows, err := h.Svc.MyRentals(c.Request().Context(), uid)
	if err != nil {
		h.Log.Error("my rentals", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to fetch rentals"})
	}
	if rows == nil {
		rows = []rs.RentalView{}
	}
	return c.JSON(http.StatusOK, rows)
}

// GET /api/rentals/my-requests
func (h *Controller) MyRequests(c echo.Context) error {
	uid, _ := c.Get("user_id").(int64)
	rows, err := h.Svc.MyRequests(c.Request().Context(), uid)
	if err != nil {
		h.Log.Error("my requests", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to fetch rental requests"})
	}
	if rows == nil {
		rows = []rs.RequestView{}
	}
	return c.JSON(http.StatusOK, rows)
}

// GET /api/rentals/item-requests
func (h *Controller) ItemRequests(c echo.Context) error {
	uid, _ := c.Get("user_id").(int64)
	rows, err := h.Svc.ItemRequests(c.Request().Context(), uid)
	if err != nil {
		h.Log.Error("item requests", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to fetch item rental requests"})
	}
	if rows == nil {
		rows = []rs.RequestView{}
	}
	return c.JSON(http.StatusOK, rows)
}

// GET /api/rentals/user/completed?owner_id
func (h *Controller) CanRate(c echo.Context) error {
	ownerID, err := strconv.ParseInt(c.QueryParam("owner_id"), 10, 64)
	if err != nil || ownerID <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Owner ID is required"})
	}
	uid, _ := c.Get("user_id").(int64)

	ok, err := h.Svc.CanRate(c.Request().Context(), uid, ownerID)
	if err != nil {
		h.Log.Error("completed rentals check", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to check completed rentals"})
	}
	return c.JSON(http.StatusOK, echo.Map{"canRate": ok})
}

// PUT /api/rentals/mark-delivered/:requestId
func (h *Controller) MarkDelivered(c echo.Context) error {
	requestID, err := strconv.ParseInt(c.Param("requestId"), 10, 64)
	if err != nil || requestID <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request id"})
	}
	uid, _ := c.Get("user_id").(int64)

	req, err := h.Svc.MarkDelivered(c.Request().Context(), uid, requestID)
	if err != nil {
		switch rs.Code(err) {
		case rs.ErrNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Rental request not found"})
		case rs.ErrNotOwner:
			return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
		default:
			h.Log.Error("mark delivered", "err", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to mark rental as delivered"})
		}
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message": "Rental request marked as delivered successfully",
		"request": req,
	})
}
