// Package oid implements the engine's OID map: the mapping from a
// compile-time type identity to PostgreSQL's 32-bit type identifier (spec
// §3 "OID", "OID map"; §4.1 "Type registration").
package oid

import "sync"

// OID is PostgreSQL's 32-bit type identifier. Zero denotes "null type".
type OID uint32

const Invalid OID = 0

// Size classifies how a type's wire payload length behaves.
type Size int

const (
	// SizeNullMarker is used only internally for the NULL sentinel; no
	// registered type declares this classifier directly.
	SizeNullMarker Size = -1
	SizeDynamic    Size = -2
)

// FixedSize returns a fixed-size classifier of n bytes.
func FixedSize(n int) Size { return Size(n) }

// IsFixed reports whether s denotes a fixed byte count.
func (s Size) IsFixed() bool { return s >= 0 }

// Built-in OIDs, taken from PostgreSQL's pg_type catalog (stable across
// versions; see include/catalog/pg_type.dat upstream). These are the
// compile-time-known entries for built-in types, resolved without a
// round trip to pg_type.
const (
	TBool        OID = 16
	TBytea       OID = 17
	TChar        OID = 18
	TName        OID = 19
	TInt8        OID = 20
	TInt2        OID = 21
	TInt4        OID = 23
	TText        OID = 25
	TOID         OID = 26
	TJSON        OID = 114
	TXML         OID = 142
	TPoint       OID = 600
	TFloat4      OID = 700
	TFloat8      OID = 701
	TUnknown     OID = 705
	TCircle      OID = 718
	TVarcharArr  OID = 1015
	TInet        OID = 869
	TBoolArray   OID = 1000
	TInt2Array   OID = 1005
	TInt4Array   OID = 1007
	TTextArray   OID = 1009
	TInt8Array   OID = 1016
	TFloat4Array OID = 1021
	TFloat8Array OID = 1022
	TBPChar      OID = 1042
	TVarchar     OID = 1043
	TDate        OID = 1082
	TTime        OID = 1083
	TTimestamp   OID = 1114
	TTimestampArr OID = 1115
	TTimestamptz OID = 1184
	TInterval    OID = 1186
	TNumericArr  OID = 1231
	TBit         OID = 1560
	TVarbit      OID = 1562
	TNumeric     OID = 1700
	TUUID        OID = 2950
	TUUIDArray   OID = 2951
	TJSONB       OID = 3802
	TJSONBArray  OID = 3807
	TCIDR        OID = 650
)

// TypeKey identifies a registered Go type at compile time. Source keys
// entries by type identity (C++ template instantiation); the Go
// equivalent is a monotonically assigned token handed out at
// registration, kept dense for fast
// lookup.
type TypeKey int

// TypeDescriptor describes one application type's PostgreSQL binding (spec
// §3 "Type descriptor", §4.1 "Type registration").
type TypeDescriptor struct {
	// Name is the PostgreSQL type name (e.g. "int4", "my_enum").
	Name string
	// BuiltinOID is non-zero for built-in types whose OID is known at
	// compile time. User-defined types leave this zero and are resolved
	// through a Map's discovered entries instead.
	BuiltinOID OID
	// ArrayName is the PostgreSQL name of this type's one-dimensional
	// array companion, or "" if none is registered.
	ArrayName string
	// ArrayBuiltinOID mirrors BuiltinOID for the array companion.
	ArrayBuiltinOID OID
	// SizeClass classifies the wire size: IsFixed()==true means a fixed N
	// bytes; otherwise the type computes its size dynamically.
	SizeClass Size
	// AcceptsAnyOID marks a generic sink (e.g. a raw-text catch-all) that
	// recv must not OID-check.
	AcceptsAnyOID bool
}

// Registry is the process-wide table of registered type descriptors,
// indexed by TypeKey. The codec package populates it at init() time, and
// Register may still be called later (e.g. for composite types), so
// registration and lookups are guarded by an RWMutex.
type Registry struct {
	mu          sync.RWMutex
	descriptors []TypeDescriptor
	byName      map[string]TypeKey
}

var global = &Registry{byName: make(map[string]TypeKey)}

// Global returns the process-wide type registry.
func Global() *Registry { return global }

// Register binds a new TypeKey to desc and returns it. Called once per
// registered Go type, typically from an init() function in the codec
// package.
func (r *Registry) Register(desc TypeDescriptor) TypeKey {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := TypeKey(len(r.descriptors))
	r.descriptors = append(r.descriptors, desc)
	if desc.Name != "" {
		r.byName[desc.Name] = key
	}
	return key
}

// Descriptor returns the TypeDescriptor for key.
func (r *Registry) Descriptor(key TypeKey) TypeDescriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.descriptors[key]
}

// Lookup finds the TypeKey registered under a PostgreSQL type name.
func (r *Registry) Lookup(name string) (TypeKey, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	k, ok := r.byName[name]
	return k, ok
}

// Map is a per-connection mapping from TypeKey to resolved OID. Built-in entries are filled eagerly from the Registry;
// user-defined entries start null and are filled by discovery (spec
// §4.1 "OID map discovery").
type Map struct {
	registry *Registry
	entries  map[TypeKey]OID
	pending  []TypeKey // user-defined keys awaiting discovery
}

// NewMap builds a Map seeded with every built-in type's OID from the
// registry, plus a null (pending) entry for each user-defined key in
// userTypes.
func NewMap(registry *Registry, userTypes ...TypeKey) *Map {
	m := &Map{registry: registry, entries: make(map[TypeKey]OID)}
	for i := 0; i < len(registry.descriptors); i++ {
		key := TypeKey(i)
		if d := registry.descriptors[i]; d.BuiltinOID != Invalid {
			m.entries[key] = d.BuiltinOID
		}
	}
	for _, k := range userTypes {
		if _, known := m.entries[k]; !known {
			m.entries[k] = Invalid
			m.pending = append(m.pending, k)
		}
	}
	return m
}

// Pending returns the type names still awaiting OID discovery.
func (m *Map) Pending() []string {
	names := make([]string, 0, len(m.pending))
	for _, k := range m.pending {
		names = append(names, m.registry.Descriptor(k).Name)
	}
	return names
}

// Resolve fills in the OID for the user-defined type named name. Returns
// false if name is not one of this Map's pending entries.
func (m *Map) Resolve(name string, resolved OID) bool {
	for _, k := range m.pending {
		if m.registry.Descriptor(k).Name == name {
			m.entries[k] = resolved
			return true
		}
	}
	return false
}

// Ready reports whether every entry (built-in and user-defined) is
// non-null, the condition a connection must satisfy before it leaves
// establishment: after a non-empty map's OID discovery, every entry must
// have resolved.
func (m *Map) Ready() bool {
	for _, oid := range m.entries {
		if oid == Invalid {
			return false
		}
	}
	return true
}

// OIDFor returns the resolved OID for key, or Invalid if unresolved or
// unknown to this Map.
func (m *Map) OIDFor(key TypeKey) OID {
	return m.entries[key]
}

// Descriptor is a convenience that forwards to the underlying registry.
func (m *Map) Descriptor(key TypeKey) TypeDescriptor {
	return m.registry.Descriptor(key)
}

// IsEmpty reports whether this Map has no user-defined (pending) entries,
// the condition under which OID discovery is skipped entirely.
func (m *Map) IsEmpty() bool {
	return len(m.pending) == 0
}
