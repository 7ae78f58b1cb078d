package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/mohamedaliSwe/mimi-style/internal/adapters/transport/http/dto"
	catalogsvc "github.com/mohamedaliSwe/mimi-style/internal/app/catalog/service"
	customErrors "github.com/mohamedaliSwe/mimi-style/internal/domain/store/errors"
	"go.uber.org/zap"
)

const maxUploadBytes = 10 << 20

var (
	errBadCategoryID = customErrors.NewInvalidArgument("Invalid category")
	errBadProductID  = customErrors.NewNotFound("Product not found")
	errBadImageID    = customErrors.NewNotFound("Image not found")
	errNoFile        = customErrors.NewMissingField("file")
	errNoProductID   = customErrors.NewMissingField("product_id")
)

type CatalogHandler struct {
	svc catalogsvc.Service
	log *zap.Logger
}

func NewCatalogHandler(svc catalogsvc.Service, log *zap.Logger) *CatalogHandler {
	return &CatalogHandler{svc: svc, log: log}
}

// register wires read routes on public and mutations on admin.
func (h *CatalogHandler) register(public, admin *gin.RouterGroup) {
	public.GET("/categories", h.listCategories)
	public.GET("/categories/:id", h.getCategory)
	public.GET("/categories/:id/products", h.categoryProducts)
	admin.POST("/categories", h.createCategory)
	admin.PUT("/categories/:id", h.updateCategory)
	admin.DELETE("/categories/:id", h.deleteCategory)

	public.GET("/products", h.listProducts)
	public.GET("/products/flash-sale", h.flashSale)
	public.GET("/products/category/:id", h.productsByCategory)
	public.GET("/products/:id", h.getProduct)
	admin.POST("/products", h.createProduct)
	admin.PUT("/products/:id", h.updateProduct)
	admin.DELETE("/products/:id", h.deleteProduct)

	public.GET("/product-images/image/:id", h.getImage)
	public.GET("/product-images/product/:id", h.productImages)
	admin.POST("/product-images", h.uploadImage)
	admin.DELETE("/product-images/image/:id", h.deleteImage)
}

func (h *CatalogHandler) id(c *gin.Context, onBad error) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		handleError(c, h.log, onBad)
		return uuid.Nil, false
	}
	return id, true
}

/* ───────────────────────────── categories ───────────────────────────── */

func (h *CatalogHandler) listCategories(c *gin.Context) {
	cats, err := h.svc.ListCategories(c.Request.Context())
	if err != nil {
		handleError(c, h.log, err)
		return
	}
	out := make([]dto.CategoryResponse, 0, len(cats))
	for _, cat := range cats {
		out = append(out, dto.NewCategoryResponse(cat))
	}
	c.JSON(http.StatusOK, out)
}

func (h *CatalogHandler) createCategory(c *gin.Context) {
	var body dto.CategoryDTO
	if !bindJSON(c, h.log, &body, false) {
		return
	}
	cat, err := h.svc.CreateCategory(c.Request.Context(), body)
	if err != nil {
		handleError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, dto.NewCategoryResponse(cat))
}

func (h *CatalogHandler) getCategory(c *gin.Context) {
	id, ok := h.id(c, errBadCategoryID)
	if !ok {
		return
	}
	cat, err := h.svc.GetCategory(c.Request.Context(), id)
	if err != nil {
		handleError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewCategoryResponse(cat))
}

func (h *CatalogHandler) updateCategory(c *gin.Context) {
	id, ok := h.id(c, errBadCategoryID)
	if !ok {
		return
	}
	var body dto.CategoryDTO
	if !bindJSON(c, h.log, &body, false) {
		return
	}
	cat, err := h.svc.UpdateCategory(c.Request.Context(), id, body)
	if err != nil {
		handleError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewCategoryResponse(cat))
}

func (h *CatalogHandler) deleteCategory(c *gin.Context) {
	id, ok := h.id(c, errBadCategoryID)
	if !ok {
		return
	}
	if err := h.svc.DeleteCategory(c.Request.Context(), id); err != nil {
		handleError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Category deleted successfully"})
}

func (h *CatalogHandler) categoryProducts(c *gin.Context) {
	id, ok := h.id(c, errBadCategoryID)
	if !ok {
		return
	}
	var q dto.PageQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		handleError(c, h.log, customErrors.NewInvalidArgument("page and per_page must be integers"))
		return
	}
	page, err := h.svc.CategoryProducts(c.Request.Context(), id, q)
	if err != nil {
		handleError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewProductPageResponse(page))
}

/* ───────────────────────────── products ───────────────────────────── */

func (h *CatalogHandler) listProducts(c *gin.Context) {
	ps, err := h.svc.ListProducts(c.Request.Context())
	if err != nil {
		handleError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewProductList(ps))
}

func (h *CatalogHandler) flashSale(c *gin.Context) {
	ps, err := h.svc.FlashSaleProducts(c.Request.Context())
	if err != nil {
		handleError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewProductList(ps))
}

func (h *CatalogHandler) productsByCategory(c *gin.Context) {
	id, ok := h.id(c, errBadCategoryID)
	if !ok {
		return
	}
	ps, err := h.svc.ProductsByCategory(c.Request.Context(), id)
	if err != nil {
		handleError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewProductList(ps))
}

func (h *CatalogHandler) getProduct(c *gin.Context) {
	id, ok := h.id(c, errBadProductID)
	if !ok {
		return
	}
	p, err := h.svc.GetProduct(c.Request.Context(), id)
	if err != nil {
		handleError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewProductResponse(p))
}

func (h *CatalogHandler) createProduct(c *gin.Context) {
	var body dto.CreateProductDTO
	if !bindJSON(c, h.log, &body, false) {
		return
	}
	p, err := h.svc.CreateProduct(c.Request.Context(), body)
	if err != nil {
		handleError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, dto.NewProductResponse(p))
}

func (h *CatalogHandler) updateProduct(c *gin.Context) {
	id, ok := h.id(c, errBadProductID)
	if !ok {
		return
	}
	var body dto.UpdateProductDTO
	if !bindJSON(c, h.log, &body, false) {
		return
	}
	p, err := h.svc.UpdateProduct(c.Request.Context(), id, body)
	if err != nil {
		handleError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewProductResponse(p))
}

func (h *CatalogHandler) deleteProduct(c *gin.Context) {
	id, ok := h.id(c, errBadProductID)
	if !ok {
		return
	}
	if err := h.svc.DeleteProduct(c.Request.Context(), id); err != nil {
		handleError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Product deleted successfully"})
}

/* ───────────────────────────── images ───────────────────────────── */

func (h *CatalogHandler) uploadImage(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadBytes)

	raw := c.PostForm("product_id")
	if raw == "" {
		handleError(c, h.log, errNoProductID)
		return
	}
	productID, err := uuid.Parse(raw)
	if err != nil {
		handleError(c, h.log, errBadProductID)
		return
	}
	fh, err := c.FormFile("file")
	if err != nil {
		handleError(c, h.log, errNoFile)
		return
	}
	f, err := fh.Open()
	if err != nil {
		handleError(c, h.log, customErrors.WrapInternal(err, "open upload"))
		return
	}
	defer f.Close()

	img, err := h.svc.UploadImage(c.Request.Context(), productID, fh.Filename, f)
	if err != nil {
		handleError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, dto.NewImageResponse(img))
}

func (h *CatalogHandler) getImage(c *gin.Context) {
	id, ok := h.id(c, errBadImageID)
	if !ok {
		return
	}
	img, err := h.svc.GetImage(c.Request.Context(), id)
	if err != nil {
		handleError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewImageResponse(img))
}

func (h *CatalogHandler) productImages(c *gin.Context) {
	id, ok := h.id(c, errBadProductID)
	if !ok {
		return
	}
	imgs, err := h.svc.ProductImages(c.Request.Context(), id)
	if err != nil {
		handleError(c, h.log, err)
		return
	}
	out := make([]dto.ImageResponse, 0, len(imgs))
	for _, img := range imgs {
		out = append(out, dto.NewImageResponse(img))
	}
	c.JSON(http.StatusOK, out)
}

func (h *CatalogHandler) deleteImage(c *gin.Context) {
	id, ok := h.id(c, errBadImageID)
	if !ok {
		return
	}
	if err := h.svc.DeleteImage(c.Request.Context(), id); err != nil {
		handleError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Image deleted successfully"})
}
