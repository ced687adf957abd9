package codec

import (
	"fmt"
	"reflect"

	"github.com/fsvxavier/pgengine/oid"
	"github.com/fsvxavier/pgengine/pgerr"
)

// RegisterCompositeType binds a user-defined PostgreSQL composite type name
// to a fresh TypeKey with an unknown (pending) OID — composite types are
// essentially always user-defined, so they always require OID discovery.
func RegisterCompositeType(name string) oid.TypeKey {
	return oid.Global().Register(oid.TypeDescriptor{Name: name, SizeClass: oid.SizeDynamic})
}

// Composite binds a Go struct T to a PostgreSQL composite type. Every
// exported field of T must implement Value on its value receiver and
// Scanner on its pointer receiver — every wrapper type in this package
// does both, so declaring a composite is just declaring a struct of them
// in the same order as the PostgreSQL type's column order.
type Composite[T any] struct {
	Value T
	Valid bool
	key   oid.TypeKey
}

// NewComposite builds a valid Composite for PostgreSQL type key holding v.
func NewComposite[T any](key oid.TypeKey, v T) Composite[T] {
	return Composite[T]{Value: v, Valid: true, key: key}
}

// ComposeOf builds a null Composite ready to Decode into, bound to key.
func ComposeOf[T any](key oid.TypeKey) Composite[T] {
	return Composite[T]{key: key}
}

func (c Composite[T]) TypeKey() oid.TypeKey { return c.key }
func (c Composite[T]) IsNull() bool         { return !c.Valid }

func (c Composite[T]) Encode(buf []byte, m *oid.Map) ([]byte, error) {
	rv := reflect.ValueOf(c.Value)
	n := rv.NumField()
	buf = putInt32(buf, int32(n))
	for i := 0; i < n; i++ {
		fv := rv.Field(i)
		val, ok := fv.Interface().(Value)
		if !ok {
			return nil, fmt.Errorf("codec: composite field %s does not implement codec.Value", rv.Type().Field(i).Name)
		}
		fieldOID := m.OIDFor(val.TypeKey())
		var data []byte
		if !val.IsNull() {
			var err error
			data, err = val.Encode([]byte{}, m)
			if err != nil {
				return nil, err
			}
		}
		buf = putTypedFrame(buf, TypedFrame{OID: fieldOID, Data: data})
	}
	return buf, nil
}

func (c *Composite[T]) SetNull() error {
	c.Valid = false
	var zero T
	c.Value = zero
	return nil
}

func (c *Composite[T]) Decode(wireOID oid.OID, data []byte, m *oid.Map) error {
	if err := CheckOID(c, wireOID, m); err != nil {
		return err
	}
	if len(data) < 4 {
		return pgerr.Newf(pgerr.KindBadResponse, "truncated composite header")
	}
	nfields := int(getInt32(data))
	rest := data[4:]

	var target T
	rv := reflect.ValueOf(&target).Elem()
	if rv.NumField() != nfields {
		return pgerr.Newf(pgerr.KindBadResultProcess, "composite field count mismatch: wire has %d, target has %d", nfields, rv.NumField())
	}
	for i := 0; i < nfields; i++ {
		var frame TypedFrame
		var err error
		frame, rest, err = readTypedFrame(rest)
		if err != nil {
			return err
		}
		fv := rv.Field(i)
		scanner, ok := fv.Addr().Interface().(Scanner)
		if !ok {
			return pgerr.Newf(pgerr.KindBadResultProcess, "composite field %s does not implement codec.Scanner", rv.Type().Field(i).Name)
		}
		if err := Recv(frame.OID, frame.Data, m, scanner); err != nil {
			return err
		}
	}
	c.Value = target
	c.Valid = true
	return nil
}
