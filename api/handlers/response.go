package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type response struct {
	Data   any      `json:"data"`
	Errors []string `json:"errors"`
}

func writeResponse(c *gin.Context, data any, statusCode int, errors []string) {
	if statusCode == http.StatusNoContent {
		c.JSON(statusCode, nil)
		return
	}

	c.JSON(statusCode, response{
		Data:   data,
		Errors: errors,
	})
}
