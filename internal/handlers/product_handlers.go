package handlers

import (
	"io"
	"net/http"
	"strconv"
	"strings"

	"catalog/internal/common"
	"catalog/internal/models"
	"catalog/internal/services"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

const maxImageSize = 5 * 1024 * 1024

var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

// ProductHandlers handles HTTP requests for products
type ProductHandlers struct {
	productService services.ProductService
}

func NewProductHandlers(productService services.ProductService) *ProductHandlers {
	return &ProductHandlers{productService: productService}
}

// CreateProduct handles POST /v1/products
func (h *ProductHandlers) CreateProduct(c echo.Context) error {
	var payload models.ProductPayload
	if err := c.Bind(&payload); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	product, err := h.productService.Create(c.Request().Context(), &payload)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusCreated, product)
}

// UpdateProduct handles PUT /v1/products/:id
func (h *ProductHandlers) UpdateProduct(c echo.Context) error {
	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	var payload models.ProductPayload
	if err := c.Bind(&payload); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	product, err := h.productService.Update(c.Request().Context(), id, &payload)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, product)
}

// GetProduct handles GET /v1/products/:id
func (h *ProductHandlers) GetProduct(c echo.Context) error {
	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	detail, err := h.productService.GetDetail(c.Request().Context(), id)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, detail)
}

// ListProducts handles GET /v1/products
func (h *ProductHandlers) ListProducts(c echo.Context) error {
	filter := &models.ProductListFilter{
		Title:   strings.TrimSpace(c.QueryParam("title")),
		Variant: strings.TrimSpace(c.QueryParam("variant")),
	}

	for param, dst := range map[string]**decimal.Decimal{"price_from": &filter.PriceFrom, "price_to": &filter.PriceTo} {
		raw := strings.TrimSpace(c.QueryParam(param))
		if raw == "" {
			continue
		}
		value, err := decimal.NewFromString(raw)
		if err != nil {
			return common.SendValidationError(c, param, "must be a decimal number")
		}
		*dst = &value
	}

	if raw := c.QueryParam("date"); raw != "" {
		date, err := common.ParseDate(raw, "date")
		if err != nil {
			return common.SendValidationError(c, "date", err.Error())
		}
		filter.Date = &date
	}

	limit, offset := 0, 0
	if raw := c.QueryParam("limit"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			return common.SendValidationError(c, "limit", "must be an integer")
		}
		limit = v
	}
	if raw := c.QueryParam("offset"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			return common.SendValidationError(c, "offset", "must be an integer")
		}
		offset = v
	}
	filter.Limit, filter.Offset = common.ValidatePaginationParams(limit, offset)

	page, err := h.productService.List(c.Request().Context(), filter)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, page)
}

// GetOptionFacets handles GET /v1/products/facets
func (h *ProductHandlers) GetOptionFacets(c echo.Context) error {
	facets, err := h.productService.OptionFacets(c.Request().Context())
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, map[string][]string{"variants": facets})
}

// UploadProductImage handles POST /v1/products/:id/images
func (h *ProductHandlers) UploadProductImage(c echo.Context) error {
	productID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	file, err := c.FormFile("image")
	if err != nil {
		return common.SendValidationError(c, "image", "Image file is required")
	}
	if file.Size > maxImageSize {
		return common.SendValidationError(c, "image", "File size exceeds maximum limit of 5MB")
	}

	src, err := file.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to open image file")
	}
	defer src.Close()

	// Sniff the content type from the first 512 bytes
	buffer := make([]byte, 512)
	n, err := src.Read(buffer)
	if err != nil && err != io.EOF {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to read file content")
	}
	contentType := http.DetectContentType(buffer[:n])
	if !allowedImageTypes[contentType] {
		return common.SendValidationError(c, "image", "Invalid file type. Only JPEG, PNG, GIF, and WebP images are allowed")
	}
	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to read file content")
	}

	image, err := h.productService.UploadProductImage(c.Request().Context(), productID, file.Filename, src, file.Size, contentType)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusCreated, image)
}
