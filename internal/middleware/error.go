package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/questguide/questguide-backend/internal/response"
	"github.com/rs/zerolog"
)

// ErrorHandler renders the last error a handler attached with c.Error.
// Errors that no classifier recognizes become a 500 and are logged with the
// request id; their detail never reaches the client.
func ErrorHandler(log zerolog.Logger, classifiers ...response.Classifier) gin.HandlerFunc {
	log = log.With().Str("component", "error_handler").Logger()

	return func(c *gin.Context) {
		c.Next()

		last := c.Errors.Last()
		if last == nil {
			return
		}

		appErr, known := response.FromError(last.Err, classifiers...)
		if !known || appErr.Status >= http.StatusInternalServerError {
			log.Error().
				Err(last.Err).
				Str("request_id", response.RequestID(c)).
				Str("method", c.Request.Method).
				Str("path", c.FullPath()).
				Msg("Request failed")
		}

		if c.Writer.Written() {
			return
		}
		response.FailWithError(c, appErr)
	}
}
