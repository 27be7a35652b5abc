package handlers

import (
	"log/slog"
	"net/http"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/labstack/echo/v4"

	"github.com/alphaboutique/storefront/internal/events"
	"github.com/alphaboutique/storefront/internal/models"
	"github.com/alphaboutique/storefront/internal/service/search"
	"github.com/alphaboutique/storefront/internal/supabase"
	"github.com/alphaboutique/storefront/internal/util"
)

type ProductHandler struct {
	DB      *supabase.Client
	ES      *elasticsearch.Client
	ESIndex string
	Events  *events.Producer
	Log     *slog.Logger
}

// GetProducts lists the catalog, optionally narrowed to one category name.
// The browse experience never breaks: any upstream failure degrades to an
// empty list.
func (h *ProductHandler) GetProducts(c echo.Context) error {
	ctx := c.Request().Context()

	spec := supabase.QuerySpec{}
	if c.QueryParam("page") != "" || c.QueryParam("size") != "" {
		page := parseIntDefault(c.QueryParam("page"), 1)
		size := parseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
		spec.Offset, spec.Limit = util.Calculate(page, size)
	}

	var rows []map[string]any
	if category := c.QueryParam("category"); category != "" {
		cats, err := h.DB.Query(ctx, "categories", supabase.QuerySpec{
			Select:  "id",
			Filters: []supabase.Filter{supabase.Eq("name", category)},
		})
		if err != nil {
			h.Log.Warn("category lookup failed", "category", category, "error", err)
			return c.JSON(http.StatusOK, []models.Product{})
		}
		if len(cats) == 0 {
			return c.JSON(http.StatusOK, []models.Product{})
		}
		spec.Filters = []supabase.Filter{supabase.Eq("category_id", asString(cats[0]["id"]))}
		rows, err = h.DB.Query(ctx, "products", spec)
		if err != nil {
			h.Log.Warn("product listing failed", "error", err)
			return c.JSON(http.StatusOK, []models.Product{})
		}
	} else {
		var err error
		rows, err = h.DB.Query(ctx, "products", spec)
		if err != nil {
			h.Log.Warn("product listing failed", "error", err)
			return c.JSON(http.StatusOK, []models.Product{})
		}
	}

	catMap, err := h.categoryNames(c)
	if err != nil {
		h.Log.Warn("category listing failed", "error", err)
		return c.JSON(http.StatusOK, []models.Product{})
	}

	products := make([]models.Product, 0, len(rows))
	for _, row := range rows {
		products = append(products, productFromRow(row, catMap))
	}
	return c.JSON(http.StatusOK, products)
}

// GetProduct returns one product or 404. The category name is resolved by a
// secondary lookup; a dangling reference reads as "Unknown".
func (h *ProductHandler) GetProduct(c echo.Context) error {
	ctx := c.Request().Context()
	id := c.Param("id")

	rows, err := h.DB.Query(ctx, "products", supabase.QuerySpec{
		Filters: []supabase.Filter{supabase.Eq("id", id)},
	})
	if err != nil {
		h.Log.Warn("product detail failed", "id", id, "error", err)
		return errorResponse(c, http.StatusBadRequest, err.Error())
	}
	if len(rows) == 0 {
		return echo.NewHTTPError(http.StatusNotFound, "Product not found")
	}
	item := rows[0]

	categoryName := "Unknown"
	cats, err := h.DB.Query(ctx, "categories", supabase.QuerySpec{
		Select:  "name",
		Filters: []supabase.Filter{supabase.Eq("id", asString(item["category_id"]))},
	})
	if err == nil && len(cats) > 0 {
		categoryName = asString(cats[0]["name"])
	}

	description := "No description available."
	if d, ok := item["description"].(string); ok && d != "" {
		description = d
	}

	return c.JSON(http.StatusOK, models.Product{
		ID:          asString(item["id"]),
		Name:        asString(item["name"]),
		Price:       asString(item["price_ksh"]),
		Category:    categoryName,
		Image:       asString(item["image_url"]),
		Description: &description,
	})
}

// CreateProduct inserts a product, creating the category on demand. The two
// remote calls are sequential, not transactional; a crash in between leaves
// an orphaned category, which the name-keyed upsert makes harmless.
func (h *ProductHandler) CreateProduct(c echo.Context) error {
	var req models.CreateProduct
	if err := c.Bind(&req); err != nil {
		return errorResponse(c, http.StatusBadRequest, "invalid request body")
	}
	if req.Name == "" || req.Category == "" || req.Image == "" {
		return errorResponse(c, http.StatusBadRequest, "name, category and image are required")
	}

	ctx := c.Request().Context()
	h.Log.Info("product creation received", "name", req.Name, "category", req.Category)

	cats, err := h.DB.Query(ctx, "categories", supabase.QuerySpec{
		Select:  "id",
		Filters: []supabase.Filter{supabase.Eq("name", req.Category)},
	})
	if err != nil {
		return errorResponse(c, http.StatusBadRequest, err.Error())
	}

	var catID any
	if len(cats) == 0 {
		h.Log.Info("auto-creating category", "category", req.Category)
		created, err := h.DB.Upsert(ctx, "categories", map[string]any{"name": req.Category}, "name")
		if err != nil {
			return errorResponse(c, http.StatusBadRequest, err.Error())
		}
		if len(created) == 0 {
			return errorResponse(c, http.StatusBadRequest, "failed to create category")
		}
		catID = created[0]["id"]
	} else {
		catID = cats[0]["id"]
	}

	data := map[string]any{
		"name":        req.Name,
		"price_ksh":   req.Price,
		"category_id": catID,
		"image_url":   req.Image,
		"description": req.Description,
	}
	result, err := h.DB.Insert(ctx, "products", []map[string]any{data})
	if err != nil {
		h.Log.Error("product creation failed", "name", req.Name, "error", err)
		return errorResponse(c, http.StatusBadRequest, err.Error())
	}
	if len(result) == 0 {
		return errorResponse(c, http.StatusInternalServerError, "Failed to create product")
	}
	item := result[0]

	var description *string
	if d, ok := item["description"].(string); ok {
		description = &d
	}
	product := models.Product{
		ID:          asString(item["id"]),
		Name:        asString(item["name"]),
		Price:       asString(item["price_ksh"]),
		Category:    req.Category,
		Image:       asString(item["image_url"]),
		Description: description,
	}

	if h.ES != nil {
		doc := models.ProductDoc{
			ID:          product.ID,
			Name:        product.Name,
			Description: req.Description,
			Category:    req.Category,
			Price:       req.Price,
		}
		if err := search.Index(ctx, h.ES, h.ESIndex, doc); err != nil {
			h.Log.Warn("product indexing failed", "id", product.ID, "error", err)
		}
	}
	if err := h.Events.PublishEvent(ctx, events.TopicProductEvents, product.ID, map[string]any{
		"type": "product_created",
		"id":   product.ID,
		"name": product.Name,
	}); err != nil {
		h.Log.Warn("product event publish failed", "error", err)
	}

	return c.JSON(http.StatusOK, product)
}

func (h *ProductHandler) DeleteProduct(c echo.Context) error {
	ctx := c.Request().Context()
	id := c.Param("id")

	if _, err := h.DB.Delete(ctx, "products", []supabase.Filter{supabase.Eq("id", id)}); err != nil {
		h.Log.Warn("product delete failed", "id", id, "error", err)
		return errorResponse(c, http.StatusBadRequest, err.Error())
	}

	if h.ES != nil {
		if err := search.Remove(ctx, h.ES, h.ESIndex, id); err != nil {
			h.Log.Warn("product deindexing failed", "id", id, "error", err)
		}
	}
	if err := h.Events.PublishEvent(ctx, events.TopicProductEvents, id, map[string]any{
		"type": "product_deleted",
		"id":   id,
	}); err != nil {
		h.Log.Warn("product event publish failed", "error", err)
	}

	return c.JSON(http.StatusOK, Response{Status: "success", Message: "Product deleted"})
}

func (h *ProductHandler) UpdateStock(c echo.Context) error {
	var req models.UpdateProductStock
	if err := c.Bind(&req); err != nil {
		return errorResponse(c, http.StatusBadRequest, "invalid request body")
	}

	ctx := c.Request().Context()
	id := c.Param("id")

	if _, err := h.DB.Update(ctx, "products",
		[]supabase.Filter{supabase.Eq("id", id)},
		map[string]any{"stock": req.Stock},
	); err != nil {
		h.Log.Warn("stock update failed", "id", id, "error", err)
		return errorResponse(c, http.StatusBadRequest, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{"status": "success", "stock": req.Stock})
}

// GetCategories returns the category names as a plain string array so the
// frontend can render them directly.
func (h *ProductHandler) GetCategories(c echo.Context) error {
	rows, err := h.DB.Query(c.Request().Context(), "categories", supabase.QuerySpec{Select: "name"})
	if err != nil {
		h.Log.Warn("category listing failed", "error", err)
		return c.JSON(http.StatusOK, []string{})
	}

	names := make([]string, 0, len(rows))
	for _, row := range rows {
		if name, ok := row["name"].(string); ok {
			names = append(names, name)
		}
	}
	return c.JSON(http.StatusOK, names)
}

// Search is available only when Elasticsearch is configured.
func (h *ProductHandler) Search(c echo.Context) error {
	if h.ES == nil {
		return errorResponse(c, http.StatusServiceUnavailable, "search is not configured")
	}

	q := c.QueryParam("q")
	if q == "" {
		return errorResponse(c, http.StatusBadRequest, "query parameter q is required")
	}

	page := parseIntDefault(c.QueryParam("page"), 1)
	size := parseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	from, limit := util.Calculate(page, size)

	total, docs, err := search.Search(c.Request().Context(), h.ES, h.ESIndex, q, from, limit)
	if err != nil {
		h.Log.Error("product search failed", "q", q, "error", err)
		return errorResponse(c, http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{"total": total, "products": docs})
}

func (h *ProductHandler) categoryNames(c echo.Context) (map[string]string, error) {
	rows, err := h.DB.Query(c.Request().Context(), "categories", supabase.QuerySpec{})
	if err != nil {
		return nil, err
	}
	m := make(map[string]string, len(rows))
	for _, row := range rows {
		m[asString(row["id"])] = asString(row["name"])
	}
	return m, nil
}

func productFromRow(row map[string]any, categories map[string]string) models.Product {
	category, ok := categories[asString(row["category_id"])]
	if !ok {
		category = "Unknown"
	}

	var description *string
	if d, ok := row["description"].(string); ok {
		description = &d
	}

	return models.Product{
		ID:          asString(row["id"]),
		Name:        asString(row["name"]),
		Price:       asString(row["price_ksh"]),
		Category:    category,
		Image:       asString(row["image_url"]),
		Description: description,
	}
}
