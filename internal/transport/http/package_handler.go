package http

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/bhramann/marketplace-api/internal/domain"
	"github.com/bhramann/marketplace-api/internal/service"
	"github.com/bhramann/marketplace-api/internal/util"
)

type PackageHandler struct {
	packages *service.PackageService
}

func RegisterPackages(e *echo.Echo, auth *service.AuthService, packages *service.PackageService) {
	handler := &PackageHandler{packages: packages}

	g := e.Group("/api/packages")
	g.GET("", handler.listActive)
	g.GET("/:id", handler.getByID)

	protected := g.Group("", RequireAuth(auth), RequireVerified())
	protected.POST("", handler.create)
	protected.GET("/my-packages", handler.listMine)
	protected.PUT("/:id", handler.update)
	protected.DELETE("/:id", handler.remove)
}

func (h *PackageHandler) listActive(c echo.Context) error {
	filter, err := parsePackageFilter(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error(err.Error()))
	}

	packages, err := h.packages.ListActive(c.Request().Context(), filter)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, util.Error("could not list packages"))
	}
	return c.JSON(http.StatusOK, packages)
}

func (h *PackageHandler) getByID(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("id must be a valid UUID"))
	}

	pkg, err := h.packages.GetActiveByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrPackageNotFound) {
			return c.JSON(http.StatusNotFound, util.Error("Package not found"))
		}
		return c.JSON(http.StatusInternalServerError, util.Error("could not load package"))
	}
	return c.JSON(http.StatusOK, pkg)
}

func (h *PackageHandler) listMine(c echo.Context) error {
	user, ok := CurrentUser(c)
	if !ok || user == nil {
		return c.JSON(http.StatusUnauthorized, util.Error("not authorized"))
	}

	packages, err := h.packages.ListByCreator(c.Request().Context(), user.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, util.Error("could not list packages"))
	}
	return c.JSON(http.StatusOK, packages)
}

func (h *PackageHandler) create(c echo.Context) error {
	user, ok := CurrentUser(c)
	if !ok || user == nil {
		return c.JSON(http.StatusUnauthorized, util.Error("not authorized"))
	}

	var pkg domain.Package
	if err := c.Bind(&pkg); err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid request body"))
	}

	created, err := h.packages.Create(c.Request().Context(), user.ID, &pkg)
	if err != nil {
		if errors.Is(err, service.ErrValidation) {
			return c.JSON(http.StatusBadRequest, util.Error(err.Error()))
		}
		return c.JSON(http.StatusInternalServerError, util.Error("could not create package"))
	}
	return c.JSON(http.StatusCreated, created)
}

// update loads the stored package, overlays the request body on top of it and
// persists the merged result, so absent fields keep their stored values.
func (h *PackageHandler) update(c echo.Context) error {
	user, ok := CurrentUser(c)
	if !ok || user == nil {
		return c.JSON(http.StatusUnauthorized, util.Error("not authorized"))
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("id must be a valid UUID"))
	}

	current, err := h.packages.GetOwned(c.Request().Context(), user.ID, id)
	if err != nil {
		return packageErrorResponse(c, err)
	}

	merged := *current
	if err := c.Bind(&merged); err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid request body"))
	}
	merged.ID = id

	updated, err := h.packages.Update(c.Request().Context(), user.ID, &merged)
	if err != nil {
		if errors.Is(err, service.ErrValidation) {
			return c.JSON(http.StatusBadRequest, util.Error(err.Error()))
		}
		return packageErrorResponse(c, err)
	}
	return c.JSON(http.StatusOK, updated)
}

func (h *PackageHandler) remove(c echo.Context) error {
	user, ok := CurrentUser(c)
	if !ok || user == nil {
		return c.JSON(http.StatusUnauthorized, util.Error("not authorized"))
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("id must be a valid UUID"))
	}

	if err := h.packages.Delete(c.Request().Context(), user.ID, id); err != nil {
		return packageErrorResponse(c, err)
	}
	return c.JSON(http.StatusOK, util.Message("Package removed"))
}

func packageErrorResponse(c echo.Context, err error) error {
	switch {
	case errors.Is(err, service.ErrPackageNotFound):
		return c.JSON(http.StatusNotFound, util.Error("Package not found"))
	case errors.Is(err, service.ErrPackageForbidden):
		return c.JSON(http.StatusForbidden, util.Error("Not authorized to manage this package"))
	default:
		return c.JSON(http.StatusInternalServerError, util.Error("could not process package"))
	}
}

func parsePackageFilter(c echo.Context) (domain.PackageFilter, error) {
	filter := domain.PackageFilter{
		Location: strings.TrimSpace(c.QueryParam("location")),
	}
	if raw := strings.TrimSpace(c.QueryParam("minPrice")); raw != "" {
		value, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return domain.PackageFilter{}, errors.New("minPrice must be a number")
		}
		filter.MinPrice = &value
	}
	if raw := strings.TrimSpace(c.QueryParam("maxPrice")); raw != "" {
		value, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return domain.PackageFilter{}, errors.New("maxPrice must be a number")
		}
		filter.MaxPrice = &value
	}
	if filter.MinPrice != nil && filter.MaxPrice != nil && *filter.MinPrice > *filter.MaxPrice {
		return domain.PackageFilter{}, errors.New("minPrice cannot be greater than maxPrice")
	}
	return filter, nil
}
