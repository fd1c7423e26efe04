package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/AntonStoeckl/library-catalog/catalog"
)

const (
	errorKey         = "error"
	detailKey        = "detail"
	serverErrorText  = "server error"
	logMsgServerFail = "api: request failed"
)

func statusOf(kind catalog.ErrorKind) int {
	switch kind {
	case catalog.KindValidation:
		return http.StatusBadRequest
	case catalog.KindNotFound:
		return http.StatusNotFound
	case catalog.KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// writeError maps err to its status code. Unexpected errors are logged and answered with a
// generic message; the error text is only added as "detail" if exposeErrorDetails is set.
func (s *server) writeError(c *gin.Context, err error) {
	kind := catalog.KindOf(err)
	status := statusOf(kind)

	if kind != catalog.KindUnexpected {
		s.writeJSON(c, status, gin.H{errorKey: catalog.MessageOf(err, http.StatusText(status))})
		return
	}

	if s.logger != nil {
		s.logger.ErrorContext(
			c.Request.Context(),
			logMsgServerFail,
			logAttrMethod, c.Request.Method,
			logAttrPath, c.FullPath(),
			logAttrRequestID, c.GetString(requestIDKey),
			logAttrError, err.Error(),
		)
	}

	body := gin.H{errorKey: serverErrorText}
	if s.exposeErrorDetails {
		body[detailKey] = err.Error()
	}

	s.writeJSON(c, status, body)
}

// writeJSON renders v with jsoniter.
func (s *server) writeJSON(c *gin.Context, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		c.Data(http.StatusInternalServerError, gin.MIMEJSON, []byte(`{"error":"server error"}`))
		return
	}

	c.Data(status, "application/json; charset=utf-8", data)
}
