package api

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v5"
)

// ErrorBody is the payload of every non-2xx JSON response.
type ErrorBody struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Param   string `json:"param,omitempty"`
}

func writeBadRequest(c *echo.Context, msg, param string) error {
	return writeError(c, http.StatusBadRequest, "invalid_request_error", msg, param)
}

func writeError(c *echo.Context, status int, errType, msg, param string) error {
	return c.JSON(status, map[string]any{
		"error": ErrorBody{
			Message: msg,
			Type:    errType,
			Param:   param,
		},
	})
}

// queryInt parses an optional non-negative integer query parameter.
func queryInt(c *echo.Context, name string) (int, bool, error) {
	v := c.QueryParam(name)
	if v == "" {
		return 0, false, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, false, newParamError(name, "must be a non-negative integer")
	}
	return n, true, nil
}

// queryBool treats "1", "true" and "yes" as true; anything else is false.
func queryBool(c *echo.Context, name string) bool {
	switch c.QueryParam(name) {
	case "1", "true", "yes":
		return true
	}
	return false
}
