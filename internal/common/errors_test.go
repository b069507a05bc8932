package common

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError(t *testing.T) {
	cause := errors.New("connection refused")
	err := WrapError(ErrCodeDatabase, "保存报告失败", cause)

	assert.Equal(t, "[DATABASE_ERROR] 保存报告失败: connection refused", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "[NOT_FOUND] 报告不存在", NewError(ErrCodeNotFound, "报告不存在").Error())
}

func TestCodeOf(t *testing.T) {
	wrapped := fmt.Errorf("handler: %w", NewError(ErrCodeNotFound, "missing"))

	assert.Equal(t, ErrCodeNotFound, CodeOf(wrapped))
	assert.True(t, IsCode(wrapped, ErrCodeNotFound))
	assert.False(t, IsCode(nil, ErrCodeNotFound))
	assert.Equal(t, ErrCodeInternal, CodeOf(errors.New("plain")))
}
