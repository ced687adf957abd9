package oid_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fsvxavier/pgengine/oid"
)

func TestRegistryRegisterAndLookup(t *testing.T) {
	r := oid.Global()
	key := r.Register(oid.TypeDescriptor{Name: "test_widget", SizeClass: oid.SizeDynamic})

	got, ok := r.Lookup("test_widget")
	require.True(t, ok)
	assert.Equal(t, key, got)

	_, ok = r.Lookup("test_widget_missing")
	assert.False(t, ok)

	assert.Equal(t, "test_widget", r.Descriptor(key).Name)
}

func TestNewMapSeedsBuiltinsAndPending(t *testing.T) {
	r := oid.Global()
	builtin := r.Register(oid.TypeDescriptor{Name: "test_int4_stand_in", BuiltinOID: oid.TInt4, SizeClass: oid.FixedSize(4)})
	custom := r.Register(oid.TypeDescriptor{Name: "test_my_enum", SizeClass: oid.SizeDynamic})

	m := oid.NewMap(r, custom)

	assert.Equal(t, oid.TInt4, m.OIDFor(builtin))
	assert.Equal(t, oid.Invalid, m.OIDFor(custom))
	assert.False(t, m.IsEmpty())
	assert.False(t, m.Ready())
	assert.Equal(t, []string{"test_my_enum"}, m.Pending())

	assert.True(t, m.Resolve("test_my_enum", oid.OID(99999)))
	assert.True(t, m.Ready())
	assert.Equal(t, oid.OID(99999), m.OIDFor(custom))
}

func TestMapResolveUnknownNameFails(t *testing.T) {
	r := oid.Global()
	custom := r.Register(oid.TypeDescriptor{Name: "test_my_enum_2", SizeClass: oid.SizeDynamic})
	m := oid.NewMap(r, custom)

	assert.False(t, m.Resolve("test_not_pending", oid.OID(1)))
	assert.False(t, m.Ready())
}

func TestMapWithNoUserTypesIsEmptyAndReady(t *testing.T) {
	r := oid.Global()
	builtin := r.Register(oid.TypeDescriptor{Name: "test_int4_stand_in_2", BuiltinOID: oid.TInt4, SizeClass: oid.FixedSize(4)})
	m := oid.NewMap(r)

	assert.True(t, m.IsEmpty())
	assert.True(t, m.Ready())
	assert.Equal(t, oid.TInt4, m.OIDFor(builtin))
}

func TestSizeIsFixed(t *testing.T) {
	assert.True(t, oid.FixedSize(4).IsFixed())
	assert.True(t, oid.FixedSize(0).IsFixed())
	assert.False(t, oid.SizeDynamic.IsFixed())
	assert.False(t, oid.SizeNullMarker.IsFixed())
}

func TestGlobalRegistryIsASingleton(t *testing.T) {
	assert.Same(t, oid.Global(), oid.Global())
}
