package errorx

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIs_ComparesCode(t *testing.T) {
	err := Newf(CodeForbidden, "用户 %s 不是该会话的导师", "U1")
	assert.True(t, errors.Is(err, ErrForbidden))
	assert.False(t, errors.Is(err, ErrNotFound))

	wrapped := fmt.Errorf("approve: %w", err)
	assert.True(t, errors.Is(wrapped, ErrForbidden))
	assert.Equal(t, CodeForbidden, GetCode(wrapped))
}

func TestWrap_KeepsCause(t *testing.T) {
	cause := errors.New("dial tcp: refused")
	err := Wrap(cause, CodeCacheError, "redis get")

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "redis get: dial tcp: refused", err.Error())
}

func TestGetCode_DefaultsToServerBusy(t *testing.T) {
	assert.Equal(t, CodeServerBusy, GetCode(errors.New("boom")))
	assert.False(t, IsNotFound(nil))
	assert.True(t, IsNotFound(Newf(CodeNotFound, "会话 %s 不存在", "L1")))
}

func TestHTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusOK, HTTPStatus(CodeSuccess))
	assert.Equal(t, http.StatusBadRequest, HTTPStatus(CodeInvalidParam))
	assert.Equal(t, http.StatusUnauthorized, HTTPStatus(CodeUnauthorized))
	assert.Equal(t, http.StatusForbidden, HTTPStatus(CodeForbidden))
	assert.Equal(t, http.StatusNotFound, HTTPStatus(CodeNotFound))
	assert.Equal(t, http.StatusConflict, HTTPStatus(CodeConflict))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(CodeDBError))
}
