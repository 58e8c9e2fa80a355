package httpx

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/MikeMC777/evercart/internal/order"
)

// HTTPError represents a standard error in JSON.
// swagger:model
type HTTPError struct {
	// Error message
	// example: order not found
	Error string `json:"error"`
}

// Status maps the order/payment error taxonomy to an HTTP status and the message
// safe to show to the caller. Gateway and store failures never expose their detail.
func Status(err error) (int, string) {
	var verr *order.ValidationError
	switch {
	case errors.Is(err, order.ErrSignatureMismatch):
		return http.StatusBadRequest, order.ErrSignatureMismatch.Error()
	case errors.As(err, &verr):
		return http.StatusBadRequest, verr.Error()
	case errors.Is(err, order.ErrValidation):
		return http.StatusBadRequest, order.ErrValidation.Error()
	case errors.Is(err, order.ErrNotFound):
		return http.StatusNotFound, order.ErrNotFound.Error()
	case errors.Is(err, order.ErrForbidden):
		return http.StatusForbidden, order.ErrForbidden.Error()
	case errors.Is(err, order.ErrConflict):
		return http.StatusConflict, "order was updated by another request, please retry"
	case errors.Is(err, order.ErrGateway):
		return http.StatusBadGateway, "payment provider is unavailable, please try again"
	default:
		return http.StatusInternalServerError, "something went wrong, please try again"
	}
}

// Abort writes err as a JSON error response, logging server-side failures in full.
func Abort(c *gin.Context, err error) {
	code, msg := Status(err)
	if code >= http.StatusInternalServerError {
		rid, _ := c.Get("rid")
		log.Printf("[http] rid=%v %s %s failed: %v", rid, c.Request.Method, c.Request.URL.Path, err)
	}
	c.AbortWithStatusJSON(code, HTTPError{Error: msg})
}

// BadJSON reports an unparseable request body.
func BadJSON(c *gin.Context, err error) {
	c.AbortWithStatusJSON(http.StatusBadRequest, HTTPError{Error: "invalid json: " + err.Error()})
}
