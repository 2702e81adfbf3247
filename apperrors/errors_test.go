package apperrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, HTTPStatus(Validation("bad input")))
	assert.Equal(t, http.StatusUnprocessableEntity, HTTPStatus(BusinessRule("rule broken")))
	assert.Equal(t, http.StatusNotFound, HTTPStatus(NotFound("gone")))
	assert.Equal(t, http.StatusConflict, HTTPStatus(Conflict("duplicate")))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(Integrity("cascade failed", errors.New("boom"))))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(errors.New("plain error")))
}

func TestKindOfUnwrapsWrappedErrors(t *testing.T) {
	wrapped := fmt.Errorf("while deleting: %w", NotFound("measure %s not found", "abc"))
	assert.Equal(t, KindNotFound, KindOf(wrapped))
	assert.Equal(t, KindUnknown, KindOf(errors.New("plain")))
	assert.Equal(t, KindUnknown, KindOf(nil))
}

func TestIntegrityKeepsCause(t *testing.T) {
	cause := errors.New("write conflict")
	err := Integrity("owner propagation failed", cause)

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "owner propagation failed")
	assert.Contains(t, err.Error(), "write conflict")
}
