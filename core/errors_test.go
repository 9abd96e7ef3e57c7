package core

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorCodes(t *testing.T) {
	assert.Equal(t, NOERROR, Code(nil))
	assert.Equal(t, EINTERNAL, Code(errors.New("plain")))
	err := Error(ECONFIG, "key %q missing", "tytex.maxerrors")
	assert.Equal(t, ECONFIG, Code(err))
	assert.Equal(t, `key "tytex.maxerrors" missing`, UserMessage(err))
	wrapped := fmt.Errorf("loading: %w", err)
	assert.Equal(t, ECONFIG, Code(wrapped), "code must survive wrapping")
}

func TestWrapError(t *testing.T) {
	cause := errors.New("no such file")
	err := WrapError(cause, EMISSING, "font %s not found", "cmr10")
	assert.True(t, errors.Is(err, cause))
	assert.Equal(t, EMISSING, Code(err))
	assert.Equal(t, "font cmr10 not found", UserMessage(err))
	assert.Equal(t, "[123] invalid", WrapError(nil, EINVALID, "bad value").Error())
	assert.Equal(t, "internal error", UserMessage(errors.New("plain")))
}
