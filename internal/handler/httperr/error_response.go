package httperr

import (
	"github.com/gin-gonic/gin"
)

type Response struct {
	Status  int    `json:"-"`
	Message string `json:"error"`
}

// AbortWithError records the original error on the context so the logging
// and error middleware can surface it, then leaves rendering to the error
// middleware. Handlers use it where the cause matters for diagnostics but
// must not leak into the response body.
func AbortWithError(c *gin.Context, status int, err error, msg string) {
	if err == nil {
		panic("AbortWithError: err cannot be nil")
	}

	_ = c.Error(&gin.Error{
		Err:  err,
		Type: gin.ErrorTypePublic,
		Meta: Response{Status: status, Message: msg},
	})
	c.Abort()
}
