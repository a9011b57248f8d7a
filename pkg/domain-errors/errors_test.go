package domainerrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHasCode(t *testing.T) {
	t.Run("matches outermost code through fmt wrapping", func(t *testing.T) {
		err := fmt.Errorf("outer: %w", New(CodeConflict, "name taken"))
		assert.True(t, HasCode(err, CodeConflict))
		assert.False(t, HasCode(err, CodeNotFound))
	})

	t.Run("plain errors carry no code", func(t *testing.T) {
		assert.False(t, HasCode(errors.New("boom"), CodeInternal))
		assert.Equal(t, CodeInternal, CodeOf(errors.New("boom")))
	})

	t.Run("nil is never coded", func(t *testing.T) {
		assert.False(t, HasCode(nil, CodeNotFound))
	})
}

func TestWrap(t *testing.T) {
	cause := errors.New("connection reset")
	err := Wrap(cause, CodeInternal, "failed to load person")

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "failed to load person: connection reset", err.Error())
	assert.Nil(t, Wrap(nil, CodeInternal, "unused"))
}

func TestToHTTPStatus(t *testing.T) {
	cases := map[Code]int{
		CodeNotFound:   http.StatusNotFound,
		CodeConflict:   http.StatusConflict,
		CodeBadRequest: http.StatusBadRequest,
		CodeValidation: http.StatusBadRequest,
		CodeTimeout:    http.StatusGatewayTimeout,
		CodeInternal:   http.StatusInternalServerError,
		Code("other"):  http.StatusInternalServerError,
	}
	for code, want := range cases {
		assert.Equal(t, want, ToHTTPStatus(code), "code %s", code)
	}
}
