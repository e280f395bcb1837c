package netio

import (
	"testing"

	"github.com/pjh456/eunet/internal/event"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromIPString_IPv4(t *testing.T) {
	ep, err := FromIPString("127.0.0.1", 8080)
	require.Nil(t, err)
	assert.Equal(t, FamilyIPv4, ep.Family())
	assert.Equal(t, uint16(8080), ep.Port())
	assert.Equal(t, "127.0.0.1", ep.IP().String())
}

func TestFromIPString_IPv6(t *testing.T) {
	ep, err := FromIPString("::1", 443)
	require.Nil(t, err)
	assert.Equal(t, FamilyIPv6, ep.Family())
	assert.Equal(t, "::1", ep.IP().String())
}

func TestFromIPString_InvalidArgument(t *testing.T) {
	_, err := FromIPString("not-an-ip", 80)
	require.NotNil(t, err)
	assert.Equal(t, event.CategoryInvalidArgument, err.Category())
}

func TestEndpoint_EqualByteExact(t *testing.T) {
	a := LoopbackIPv4(80)
	b := FromIPv4Bytes([]byte{127, 0, 0, 1}, 80)
	c := FromIPv4Bytes([]byte{127, 0, 0, 1}, 81)

	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
}

func TestAnyIPv4(t *testing.T) {
	ep := AnyIPv4(0)
	assert.Equal(t, "0.0.0.0", ep.IP().String())
}
