package handler

import (
	"net/http"

	md "github.com/alaaeid/catalog-service/pkg/middleware"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/alaaeid/catalog-service/catalog/internal/errs"
	"github.com/alaaeid/catalog-service/catalog/internal/model"
	"github.com/alaaeid/catalog-service/pkg/auth"
	"github.com/alaaeid/catalog-service/pkg/validate"
)

type Handler struct {
	catalogSvc CatalogService
	verifier   auth.CredentialVerifier
	log        *zap.Logger
}

func New(catalogSvc CatalogService, verifier auth.CredentialVerifier, log *zap.Logger) *Handler {
	return &Handler{
		catalogSvc: catalogSvc,
		verifier:   verifier,
		log:        log,
	}
}

func (h *Handler) NewRouter() *echo.Echo {
	e := echo.New()
	const (
		baseRPS = 10
		apiRPS  = 100
	)
	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		StackSize: 4 << 10, // 4 KB
	}))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{http.MethodGet, http.MethodOptions, http.MethodHead, http.MethodPost},
		AllowCredentials: true,
	}))

	base := e.Group("", md.NewRateLimiter(baseRPS))
	base.GET("/", h.Greeting)
	base.GET("/manage/health", h.Health)

	e.Validator = validate.NewCustomValidator()
	api := e.Group("",
		middleware.RequestLoggerWithConfig(md.RequestLoggerConfig(h.log.Named("access"))),
		middleware.RequestID(),
		md.NewRateLimiter(apiRPS),
	)

	api.GET("/books", h.ListBooks)
	api.POST("/books", h.CreateBook, md.APIKeyAuth(h.verifier))
	api.GET("/books/:id", h.GetBook)
	api.GET("/books/:id/reviews", h.GetBookReviews)
	api.GET("/top-rated-books", h.TopRatedBooks)
	api.GET("/featured-books", h.FeaturedBooks)
	api.POST("/reviews", h.CreateReview, md.APIKeyAuth(h.verifier))

	return e
}

func (h *Handler) Health(c echo.Context) error {
	return c.String(http.StatusOK, "OK")
}

func (h *Handler) Greeting(c echo.Context) error {
	return c.String(http.StatusOK, "Hello I'm Alaa Eid")
}

func (h *Handler) ListBooks(c echo.Context) error {
	ctx := c.Request().Context()

	startDate := c.QueryParam("startDate")
	endDate := c.QueryParam("endDate")

	books, err := h.catalogSvc.ListBooks(ctx, startDate, endDate)
	if err != nil {
		if errors.Is(err, errs.ErrInvalidDate) {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to load books data")
	}
	return c.JSON(http.StatusOK, books)
}

func (h *Handler) CreateBook(c echo.Context) error {
	var req model.Book
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(req); err != nil {
		return err
	}

	book, err := h.catalogSvc.CreateBook(c.Request().Context(), req)
	if err != nil {
		var ve *errs.ValidationError
		if errors.As(err, &ve) {
			return echo.NewHTTPError(http.StatusBadRequest, ve.Message)
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to add book")
	}
	return c.JSON(http.StatusCreated, book)
}

func (h *Handler) GetBook(c echo.Context) error {
	id := c.Param("id")
	book, err := h.catalogSvc.GetBook(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to load books data")
	}
	return c.JSON(http.StatusOK, book)
}

func (h *Handler) GetBookReviews(c echo.Context) error {
	id := c.Param("id")
	reviews, err := h.catalogSvc.ListReviews(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to load reviews data")
	}
	return c.JSON(http.StatusOK, reviews)
}

func (h *Handler) TopRatedBooks(c echo.Context) error {
	books, err := h.catalogSvc.TopRated(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to load books data")
	}
	return c.JSON(http.StatusOK, books)
}

func (h *Handler) FeaturedBooks(c echo.Context) error {
	books, err := h.catalogSvc.Featured(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to load books data")
	}
	return c.JSON(http.StatusOK, books)
}

func (h *Handler) CreateReview(c echo.Context) error {
	var req model.Review
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(req); err != nil {
		return err
	}

	review, err := h.catalogSvc.CreateReview(c.Request().Context(), req)
	if err != nil {
		var ve *errs.ValidationError
		if errors.As(err, &ve) {
			return echo.NewHTTPError(http.StatusBadRequest, ve.Message)
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to add review")
	}
	return c.JSON(http.StatusCreated, review)
}
