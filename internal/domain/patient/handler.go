package patient

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/Devixx/carepoint-back/internal/platform/apperr"
	"github.com/Devixx/carepoint-back/internal/platform/auth"
	"github.com/Devixx/carepoint-back/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	clients := api.Group("/clients", auth.RequireRole(auth.RoleDoctor))
	clients.POST("", h.Create)
	clients.GET("", h.List)
	clients.GET("/:id", h.Get)
	clients.PATCH("/:id", h.Update)
	clients.DELETE("/:id", h.Delete)

	self := auth.RequireType(auth.TypePatient)
	api.GET("/patients/profile", h.GetProfile, self)
	api.PATCH("/patients/profile", h.UpdateProfile, self)
}

type createRequest struct {
	FirstName        string  `json:"firstName"`
	LastName         string  `json:"lastName"`
	Email            string  `json:"email"`
	Phone            *string `json:"phone"`
	DateOfBirth      *string `json:"dateOfBirth"`
	Address          *string `json:"address"`
	EmergencyContact *string `json:"emergencyContact"`
	EmergencyPhone   *string `json:"emergencyPhone"`
}

// Create registers a patient with the acting doctor. Admins have no patient
// list of their own and are refused.
func (h *Handler) Create(c echo.Context) error {
	doctorID, err := identity(auth.UserIDFromContext(c.Request().Context()))
	if err != nil {
		return err
	}
	if auth.RoleFromContext(c.Request().Context()) != auth.RoleDoctor {
		return echo.NewHTTPError(http.StatusForbidden, "only doctors can register patients")
	}
	var req createRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	p := &Patient{
		FirstName:        req.FirstName,
		LastName:         req.LastName,
		Email:            req.Email,
		Phone:            req.Phone,
		DateOfBirth:      req.DateOfBirth,
		Address:          req.Address,
		EmergencyContact: req.EmergencyContact,
		EmergencyPhone:   req.EmergencyPhone,
	}
	if err := h.svc.Register(c.Request().Context(), doctorID, p); err != nil {
		return apperr.ToHTTP(err)
	}
	return c.JSON(http.StatusCreated, p)
}

func (h *Handler) List(c echo.Context) error {
	doctorID, err := identity(auth.UserIDFromContext(c.Request().Context()))
	if err != nil {
		return err
	}
	p := NewListParams(pagination.FromContext(c, PageSize),
		c.QueryParam("search"), c.QueryParam("sort"), c.QueryParam("order"))
	page, err := h.svc.List(c.Request().Context(), doctorID, p)
	if err != nil {
		return apperr.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, page)
}

func (h *Handler) Get(c echo.Context) error {
	doctorID, id, err := target(c)
	if err != nil {
		return err
	}
	p, err := h.svc.Get(c.Request().Context(), doctorID, id)
	if err != nil {
		return apperr.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) Update(c echo.Context) error {
	doctorID, id, err := target(c)
	if err != nil {
		return err
	}
	var patch Patch
	if err := c.Bind(&patch); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	p, err := h.svc.Update(c.Request().Context(), doctorID, id, &patch)
	if err != nil {
		return apperr.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) Delete(c echo.Context) error {
	doctorID, id, err := target(c)
	if err != nil {
		return err
	}
	if err := h.svc.Delete(c.Request().Context(), doctorID, id); err != nil {
		return apperr.ToHTTP(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) GetProfile(c echo.Context) error {
	patientID, err := identity(auth.PatientIDFromContext(c.Request().Context()))
	if err != nil {
		return err
	}
	p, err := h.svc.Profile(c.Request().Context(), patientID)
	if err != nil {
		return apperr.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) UpdateProfile(c echo.Context) error {
	patientID, err := identity(auth.PatientIDFromContext(c.Request().Context()))
	if err != nil {
		return err
	}
	var patch Patch
	if err := c.Bind(&patch); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	p, err := h.svc.UpdateProfile(c.Request().Context(), patientID, &patch)
	if err != nil {
		return apperr.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, p)
}

// target resolves the acting doctor and the :id path parameter.
func target(c echo.Context) (uuid.UUID, uuid.UUID, error) {
	doctorID, err := identity(auth.UserIDFromContext(c.Request().Context()))
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	return doctorID, id, nil
}

func identity(raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusUnauthorized, "authenticated identity required")
	}
	return id, nil
}
