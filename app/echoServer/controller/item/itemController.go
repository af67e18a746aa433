package item

import (
	"log/slog"
	"net/http"
	"strconv"

	"sharekori/model"
	itemsvc "sharekori/service/item"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type Controller struct {
	Svc itemsvc.Service
	V   *validator.Validate
	Log *slog.Logger
}

// POST /api/items  (multipart, optional "image" file)
func (h *Controller) Create(c echo.Context) error {
	var req CreateItemReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid form"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error":  "validation error",
			"fields": err.Error(),
		})
	}
	uid, _ := c.Get("user_id").(int64)

	in := itemsvc.CreateItem{
		Title:       req.Title,
		Description: req.ItemDescription,
		RentPerDay:  req.RentPerDay,
		Condition:   req.ItemCondition,
		Category:    req.Category,
		Location:    req.Location,
	}

	var id int64
	fh, err := c.FormFile("image")
	if err == nil && fh != nil {
		f, err := fh.Open()
		if err != nil {
			h.Log.Error("open upload", "err", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to add item"})
		}
		defer f.Close()
		id, err = h.Svc.Create(c.Request().Context(), uid, in, f)
		if err != nil {
			return h.createError(c, err)
		}
	} else {
		id, err = h.Svc.Create(c.Request().Context(), uid, in, nil)
		if err != nil {
			return h.createError(c, err)
		}
	}

	return c.JSON(http.StatusOK, echo.Map{
		"message": "Item added successfully",
		"itemId":  id,
	})
}

func (h *Controller) createError(c echo.Context, err error) error {
	if itemsvc.Code(err) == itemsvc.ErrBadImage {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "uploaded file is not an image"})
	}
	h.Log.Error("item create", "err", err)
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to add item"})
}

// GET /api/items/user
func (h *Controller) Mine(c echo.Context) error {
	uid, _ := c.Get("user_id").(int64)
	items, err := h.Svc.Mine(c.Request().Context(), uid)
	if err != nil {
		h.Log.Error("items by owner", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to fetch items"})
	}
	if items == nil {
		items = []model.Item{}
	}
	return c.JSON(http.StatusOK, items)
}

// DELETE /api/items/:id
func (h *Controller) Delete(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	uid, _ := c.Get("user_id").(int64)

	if err := h.Svc.Delete(c.Request().Context(), uid, id); err != nil {
		switch itemsvc.Code(err) {
		case itemsvc.ErrNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Item not found"})
		case itemsvc.ErrNotOwner:
			return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
		default:
			h.Log.Error("item delete", "err", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Server error while deleting item"})
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Item and image deleted successfully"})
}

// GET /api/items/featured
func (h *Controller) Featured(c echo.Context) error {
	items, err := h.Svc.Featured(c.Request().Context())
	if err != nil {
		h.Log.Error("featured items", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to fetch featured items"})
	}
	if items == nil {
		items = []model.Item{}
	}
	return c.JSON(http.StatusOK, items)
}

// GET /api/items/search?keyword&category&condition
func (h *Controller) Search(c echo.Context) error {
	items, err := h.Svc.Search(c.Request().Context(),
		c.QueryParam("keyword"),
		c.QueryParam("category"),
		c.QueryParam("condition"),
	)
	if err != nil {
		h.Log.Error("item search", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to search items"})
	}
	if items == nil {
		items = []model.Item{}
	}
	return c.JSON(http.StatusOK, items)
}

// GET /api/items/:id
func (h *Controller) Detail(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	d, err := h.Svc.Detail(c.Request().Context(), id)
	if err != nil {
		if itemsvc.Code(err) == itemsvc.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Item not found"})
		}
		h.Log.Error("item detail", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
	return c.JSON(http.StatusOK, d)
}

// GET /api/items/:id/image
func (h *Controller) Image(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	path, err := h.Svc.ImagePath(c.Request().Context(), id)
	if err != nil {
		switch itemsvc.Code(err) {
		case itemsvc.ErrNotFound, itemsvc.ErrNoImage:
			return c.JSON(http.StatusNotFound, echo.Map{"error": "image not found"})
		default:
			h.Log.Error("item image", "err", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
		}
	}
	return c.File(path)
}
