package event

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorBuilder_Basic(t *testing.T) {
	err := NewError(DomainTransport).
		Category(CategoryTimeout).
		Code(110).
		Message("connect timed out").
		Context("10.0.0.1:80").
		Build()

	require.Equal(t, DomainTransport, err.Domain())
	require.Equal(t, CategoryTimeout, err.Category())
	require.Equal(t, 110, err.Code())
	assert.Equal(t, "connect timed out", err.Message())
	assert.Equal(t, "10.0.0.1:80", err.Context())
	assert.Nil(t, err.Cause())
}

func TestErrorBuilder_WrapFormsAcyclicChain(t *testing.T) {
	root := NewError(DomainSystem).Category(CategoryResourceExhausted).Message("too many open files").Build()
	wrapped := NewError(DomainTransport).Category(CategoryTimeout).Message("connect failed").Wrap(root).Build()

	require.Same(t, root, wrapped.Cause())
	assert.Contains(t, wrapped.Format(), "too many open files")
	assert.Contains(t, wrapped.Format(), "connect failed")
}

func TestError_UnwrapSupportsErrorsAs(t *testing.T) {
	sentinel := errors.New("sentinel")
	root := AsError(DomainDNS, CategoryTargetNotFound, sentinel)
	wrapped := NewError(DomainTransport).Category(CategoryTimeout).Wrap(root).Build()

	// AsError doesn't re-wrap sentinel directly (it isn't an *Error), so the
	// chain bottoms out at root. errors.As must still find an *Error in the
	// chain, and walking Cause from wrapped must reach root.
	var target *Error
	require.True(t, errors.As(wrapped, &target))
	assert.Same(t, root, chainRoot(wrapped))
}

func chainRoot(e *Error) *Error {
	for e.Cause() != nil {
		e = e.Cause()
	}
	return e
}

func TestCategory_String(t *testing.T) {
	assert.Equal(t, "Timeout", CategoryTimeout.String())
	assert.Equal(t, "Unknown", Category(999).String())
}

func TestDomain_String(t *testing.T) {
	assert.Equal(t, "DNS", DomainDNS.String())
	assert.Equal(t, "None", Domain(999).String())
}
