package httpserver

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/domain"
	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/transport"
	middleware "github.com/Skotchmaster/storefront/pkg/middleware/auth"
	"github.com/Skotchmaster/storefront/pkg/validation"
)

// fail maps a service error to its HTTP status, logs it under event and
// returns the echo error that renders it.
func fail(l *slog.Logger, event string, err error) error {
	status, body := classify(err)
	if status >= http.StatusInternalServerError {
		l.Error(event, "status", status, "reason", "internal error", "error", err)
	} else {
		l.Warn(event, "status", status, "reason", body, "error", err)
	}
	return echo.NewHTTPError(status, body)
}

func classify(err error) (int, any) {
	var se *domain.StockError
	if errors.As(err, &se) {
		resp := transport.StockErrorResponse{
			Message:   se.Error(),
			VariantID: se.VariantID,
			Size:      se.Size,
			Requested: se.Requested,
			Available: se.Available,
		}
		if se.CartItemID != uuid.Nil {
			id := se.CartItemID
			resp.CartItemID = &id
		}
		return http.StatusConflict, resp
	}

	var fe *domain.FieldError
	if errors.As(err, &fe) {
		return http.StatusBadRequest, fe.Error()
	}

	switch {
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest, "invalid request"
	case errors.Is(err, domain.ErrEmptyCart):
		return http.StatusBadRequest, "cart is empty"
	case errors.Is(err, domain.ErrUnauthenticated):
		return http.StatusUnauthorized, "unauthorized"
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, "forbidden"
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, err.Error()
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict, err.Error()
	}
	return http.StatusInternalServerError, "internal error"
}

// bind decodes the body into req and runs the registered validator.
func bind(c echo.Context, l *slog.Logger, event string, req any) error {
	if err := c.Bind(req); err != nil {
		l.Warn(event, "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if c.Echo().Validator == nil {
		return nil
	}
	if err := c.Validate(req); err != nil {
		msg := "invalid body"
		if field, tag, ok := validation.FirstField(err); ok {
			if tag == "required" {
				msg = field + " is required"
			} else {
				msg = fmt.Sprintf("%s failed %s", field, tag)
			}
		}
		l.Warn(event, "status", 400, "reason", msg, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, msg)
	}
	return nil
}

func pathID(c echo.Context, l *slog.Logger, event, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		l.Warn(event, "status", 400, "reason", name+" is not a uuid", "error", err)
		return uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, name+" is not a uuid")
	}
	return id, nil
}

func pathInt(c echo.Context, l *slog.Logger, event, name string) (int, error) {
	n, err := strconv.Atoi(c.Param(name))
	if err != nil {
		l.Warn(event, "status", 400, "reason", name+" is not an integer", "error", err)
		return 0, echo.NewHTTPError(http.StatusBadRequest, name+" is not an integer")
	}
	return n, nil
}

func currentUser(c echo.Context, l *slog.Logger, event string) (uuid.UUID, error) {
	id, err := middleware.UserID(c)
	if err != nil {
		l.Warn(event, "status", 401, "reason", "unauthorized", "error", err)
		return uuid.Nil, echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	return id, nil
}

func caller(c echo.Context, l *slog.Logger, event string) (service.Caller, error) {
	id, err := currentUser(c, l, event)
	if err != nil {
		return service.Caller{}, err
	}
	return service.Caller{UserID: id, Admin: middleware.IsAdmin(c)}, nil
}
