package presenter

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/docutrust/docutrust/internal/domain"
)

type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

// OK wraps a successful response.
func OK(c echo.Context, payload any) error {
	return c.JSON(http.StatusOK, payload)
}

func Created(c echo.Context, payload any) error {
	return c.JSON(http.StatusCreated, payload)
}

func BadRequestMessage(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, errorResponse{Error: msg})
}

// Error maps a domain error onto its HTTP status. Anything unrecognized is a
// 500 with the message withheld from the client.
func Error(c echo.Context, err error) error {
	var notFound domain.NotFoundError
	if errors.As(err, &notFound) {
		return c.JSON(http.StatusNotFound, errorResponse{Error: notFound.Error()})
	}

	var forbidden domain.ForbiddenError
	if errors.As(err, &forbidden) {
		return c.JSON(http.StatusForbidden, errorResponse{Error: forbidden.Error(), Kind: string(forbidden.Reason)})
	}

	var conflict domain.ConflictError
	if errors.As(err, &conflict) {
		return c.JSON(http.StatusConflict, errorResponse{Error: conflict.Error()})
	}

	var invalid domain.InvalidInputError
	if errors.As(err, &invalid) {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: invalid.Error(), Kind: string(invalid.Kind)})
	}

	var cryptoErr domain.CryptoError
	if errors.As(err, &cryptoErr) {
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: cryptoErr.Error(), Kind: "crypto_failure"})
	}

	return c.JSON(http.StatusInternalServerError, errorResponse{Error: "internal server error"})
}
