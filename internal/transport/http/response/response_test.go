package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOKNeverNullData(t *testing.T) {
	b, err := json.Marshal(OK(nil))
	require.NoError(t, err)
	assert.JSONEq(t, `{"code":0,"msg":"OK","data":{}}`, string(b))
}

func TestErrorDefaultsMessage(t *testing.T) {
	assert.Equal(t, "Conflict", Error(CodeConflict, "").Msg)
	assert.Equal(t, "taken", Error(CodeConflict, "taken").Msg)
}

func TestAbortUsesCodeAsStatus(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	Abort(c, CodeNotFound, "store not found")

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.True(t, c.IsAborted())
	assert.JSONEq(t, `{"code":404,"msg":"store not found","data":{}}`, w.Body.String())
}
