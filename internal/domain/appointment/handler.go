package appointment

import (
	"net/http"
	"time"

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
	doctors := api.Group("/appointments", auth.RequireRole(auth.RoleDoctor))
	doctors.POST("", h.Create)
	doctors.GET("", h.List)
	doctors.GET("/day", h.ListForDay)
	doctors.GET("/:id", h.Get)
	doctors.PATCH("/:id", h.Update)
	doctors.DELETE("/:id", h.Delete)

	patients := api.Group("/patients", auth.RequireType(auth.TypePatient))
	patients.GET("/appointments", h.ListForPatient)
}

type createRequest struct {
	PatientID   uuid.UUID `json:"patientId"`
	StartTime   time.Time `json:"startTime"`
	EndTime     time.Time `json:"endTime"`
	Status      Status    `json:"status"`
	Type        string    `json:"type"`
	Title       string    `json:"title"`
	Description *string   `json:"description"`
	Notes       *string   `json:"notes"`
	Fee         *float64  `json:"fee"`
}

// Create books for the acting doctor. Admins pass the role guard but own no
// schedule, so they cannot book.
func (h *Handler) Create(c echo.Context) error {
	doctorID, err := principalID(auth.UserIDFromContext(c.Request().Context()))
	if err != nil {
		return err
	}
	if auth.RoleFromContext(c.Request().Context()) != auth.RoleDoctor {
		return echo.NewHTTPError(http.StatusForbidden, "only doctors can book appointments")
	}
	var req createRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	a := &Appointment{
		PatientID:   req.PatientID,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		Status:      req.Status,
		Type:        req.Type,
		Title:       req.Title,
		Description: req.Description,
		Notes:       req.Notes,
		Fee:         req.Fee,
	}
	if err := h.svc.Create(c.Request().Context(), doctorID, a); err != nil {
		return apperr.ToHTTP(err)
	}
	return c.JSON(http.StatusCreated, a)
}

func (h *Handler) List(c echo.Context) error {
	doctorID, err := principalID(auth.UserIDFromContext(c.Request().Context()))
	if err != nil {
		return err
	}
	p, err := h.listParams(c, DoctorPageSize)
	if err != nil {
		return apperr.ToHTTP(err)
	}
	page, err := h.svc.ListForDoctor(c.Request().Context(), doctorID, p)
	if err != nil {
		return apperr.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, page)
}

func (h *Handler) ListForDay(c echo.Context) error {
	doctorID, err := principalID(auth.UserIDFromContext(c.Request().Context()))
	if err != nil {
		return err
	}
	items, err := h.svc.ListForDay(c.Request().Context(), doctorID, c.QueryParam("date"))
	if err != nil {
		return apperr.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) Get(c echo.Context) error {
	doctorID, id, err := h.target(c)
	if err != nil {
		return err
	}
	a, err := h.svc.Get(c.Request().Context(), doctorID, id)
	if err != nil {
		return apperr.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, a)
}

func (h *Handler) Update(c echo.Context) error {
	doctorID, id, err := h.target(c)
	if err != nil {
		return err
	}
	var p Patch
	if err := c.Bind(&p); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	a, err := h.svc.Update(c.Request().Context(), doctorID, id, &p)
	if err != nil {
		return apperr.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, a)
}

func (h *Handler) Delete(c echo.Context) error {
	doctorID, id, err := h.target(c)
	if err != nil {
		return err
	}
	if err := h.svc.Delete(c.Request().Context(), doctorID, id); err != nil {
		return apperr.ToHTTP(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) ListForPatient(c echo.Context) error {
	patientID, err := principalID(auth.PatientIDFromContext(c.Request().Context()))
	if err != nil {
		return err
	}
	p, err := h.listParams(c, PatientPageSize)
	if err != nil {
		return apperr.ToHTTP(err)
	}
	page, err := h.svc.ListForPatient(c.Request().Context(), patientID, p)
	if err != nil {
		return apperr.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, page)
}

func (h *Handler) listParams(c echo.Context, defaultLimit int) (ListParams, error) {
	return ParseListParams(pagination.FromContext(c, defaultLimit), ListQuery{
		Sort:   c.QueryParam("sort"),
		Order:  c.QueryParam("order"),
		Start:  c.QueryParam("start"),
		End:    c.QueryParam("end"),
		Status: c.QueryParam("status"),
	}, h.svc.Location())
}

// target resolves the acting doctor and the :id path parameter.
func (h *Handler) target(c echo.Context) (uuid.UUID, uuid.UUID, error) {
	doctorID, err := principalID(auth.UserIDFromContext(c.Request().Context()))
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	return doctorID, id, nil
}

func principalID(raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusUnauthorized, "authenticated identity required")
	}
	return id, nil
}
