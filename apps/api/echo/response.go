package echoapi

import (
	"github.com/labstack/echo/v4"

	"github.com/trezcool/darasa/core"
)

// response is the envelope of every API response.
type response struct {
	Success    bool              `json:"success"`
	Message    string            `json:"message,omitempty"`
	Data       interface{}       `json:"data,omitempty"`
	Pagination *core.Pagination  `json:"pagination,omitempty"`
	Errors     map[string]string `json:"errors,omitempty"`
}

func respond(ctx echo.Context, code int, data interface{}) error {
	return ctx.JSON(code, response{Success: true, Data: data})
}

func respondMsg(ctx echo.Context, code int, msg string) error {
	return ctx.JSON(code, response{Success: true, Message: msg})
}

func respondPage(ctx echo.Context, code int, data interface{}, pg core.Pagination) error {
	return ctx.JSON(code, response{Success: true, Data: data, Pagination: &pg})
}
