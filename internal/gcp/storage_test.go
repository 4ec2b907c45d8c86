package gcp

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"google.golang.org/api/googleapi"
)

func TestIsPreconditionFailed(t *testing.T) {
	assert.True(t, isPreconditionFailed(&googleapi.Error{Code: 412}))
	assert.True(t, isPreconditionFailed(fmt.Errorf("write: %w", &googleapi.Error{Code: 412})))
	assert.False(t, isPreconditionFailed(&googleapi.Error{Code: 403}))
	assert.False(t, isPreconditionFailed(errors.New("boom")))
}

func TestExtensionFor(t *testing.T) {
	assert.Equal(t, ".md", extensionFor("text/markdown"))
	assert.Equal(t, ".md", extensionFor("text/markdown; charset=utf-8"))
	assert.Equal(t, ".pdf", extensionFor("application/pdf"))
	assert.Equal(t, "", extensionFor("application/octet-stream"))
}
