package middleware

import (
	"errors"
	"net/http"

	"myPharmacyStore/pkg/logger"

	jsonres "myPharmacyStore/pkg/response"

	"github.com/labstack/echo/v4"
)

// ErrorHandler renders errors that escape handlers, mostly routing misses and
// recovered panics.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	message := http.StatusText(code)

	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
		if msg, ok := he.Message.(string); ok {
			message = msg
		} else {
			message = http.StatusText(code)
		}
	}

	if code >= http.StatusInternalServerError {
		logger.Error("unhandled request error", "method", c.Request().Method, "path", c.Path(), "error", err)
	}

	var sendErr error
	if c.Request().Method == http.MethodHead {
		sendErr = c.NoContent(code)
	} else {
		sendErr = c.JSON(code, jsonres.Error(http.StatusText(code), message, nil))
	}
	if sendErr != nil {
		logger.Error("failed to send error response", "error", sendErr)
	}
}
