package gcp

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"google.golang.org/api/googleapi"
)

func TestIsNotFound(t *testing.T) {
	t.Parallel()

	assert.True(t, IsNotFound(&googleapi.Error{Code: 404}))
	assert.True(t, IsNotFound(fmt.Errorf("get instance: %w", &googleapi.Error{Code: 404})))
	assert.False(t, IsNotFound(&googleapi.Error{Code: 403}))
	assert.False(t, IsNotFound(errors.New("not found")))
	assert.False(t, IsNotFound(nil))
}

func TestIsConflict(t *testing.T) {
	t.Parallel()

	assert.True(t, IsConflict(&googleapi.Error{Code: 409}))
	assert.True(t, IsConflict(&googleapi.Error{Code: 412}))
	assert.False(t, IsConflict(&googleapi.Error{Code: 500}))
	assert.False(t, IsConflict(nil))
}
