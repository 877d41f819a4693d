package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type Resp struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
	Data any    `json:"data"`
}

// New never leaves data null.
func New(code int, msg string, data any) Resp {
	if data == nil {
		data = struct{}{}
	}
	return Resp{Code: code, Msg: msg, Data: data}
}

func OK(data any) Resp {
	return New(CodeOK, CodeMsgMap[CodeOK], data)
}

// Error builds a failure envelope; an empty customMsg falls back to the code's default text.
func Error(code int, customMsg string) Resp {
	msg := CodeMsgMap[code]
	if customMsg != "" {
		msg = customMsg
	}
	return New(code, msg, struct{}{})
}

// Abort writes the failure envelope with code as the HTTP status and stops the chain.
func Abort(c *gin.Context, code int, customMsg string) {
	status := code
	if status < http.StatusBadRequest {
		status = http.StatusInternalServerError
	}
	c.AbortWithStatusJSON(status, Error(code, customMsg))
}
