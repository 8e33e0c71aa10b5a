package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_IsMatchesByCode(t *testing.T) {
	err := NotFoundf("media item %s not found", "abc")
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.False(t, errors.Is(err, ErrValidation))
	assert.Equal(t, "media item abc not found", err.Error())
}

func TestError_WrappedStillMatches(t *testing.T) {
	err := fmt.Errorf("rename tag: %w", StorageWrite("save media items", errors.New("disk full")))
	assert.True(t, errors.Is(err, ErrStorageWrite))
	assert.Contains(t, err.Error(), "disk full")
	assert.Equal(t, CodeStorageWrite, CodeOf(err))
}

func TestError_UnwrapExposesCause(t *testing.T) {
	cause := errors.New("boom")
	err := StorageRead("load media items", cause)
	assert.True(t, errors.Is(err, cause))
}

func TestError_WithDetailsKeepsCode(t *testing.T) {
	err := ErrValidation.WithDetails(map[string]string{"nextName": "is required"})
	assert.Equal(t, CodeValidation, err.Code)
	assert.Equal(t, map[string]string{"nextName": "is required"}, err.Details)
	assert.Nil(t, ErrValidation.Details, "sentinel must not be mutated")
}

func TestCode_HTTPStatus(t *testing.T) {
	cases := map[Code]int{
		CodeNotFound:      http.StatusNotFound,
		CodeAlreadyExists: http.StatusConflict,
		CodeConflict:      http.StatusConflict,
		CodeValidation:    http.StatusBadRequest,
		CodeUndoExpired:   http.StatusGone,
		CodeStorageWrite:  http.StatusServiceUnavailable,
		CodeEnrichment:    http.StatusBadGateway,
		CodeInternal:      http.StatusInternalServerError,
	}
	for code, want := range cases {
		assert.Equal(t, want, code.HTTPStatus(), "code %s", code)
	}
}

func TestCodeOf_PlainError(t *testing.T) {
	assert.Equal(t, CodeInternal, CodeOf(errors.New("plain")))
}
