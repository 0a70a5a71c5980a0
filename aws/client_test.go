package aws

import (
	"errors"
	"testing"

	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
)

func TestClassifyHeadBucketErr(t *testing.T) {
	notFound := &smithy.GenericAPIError{Code: "NotFound", Message: "not found"}
	assert.EqualError(t, classifyHeadBucketErr(notFound, "files"), "bucket 'files' does not exist")

	denied := &smithy.GenericAPIError{Code: "AccessDenied"}
	assert.Contains(t, classifyHeadBucketErr(denied, "files").Error(), "denied")

	other := errors.New("dial tcp: connection refused")
	err := classifyHeadBucketErr(other, "files")
	assert.ErrorIs(t, err, other)
}
