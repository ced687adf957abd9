package request

import (
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/fsvxavier/pgengine/codec"
	"github.com/fsvxavier/pgengine/oid"
	"github.com/fsvxavier/pgengine/pgerr"
	"github.com/fsvxavier/pgengine/transport"
)

// structInfo caches one struct type's column-name-to-field-index mapping,
// built once per type and reused across rows.
type structInfo struct {
	indexByColumn map[string]int
}

var structInfoCache sync.Map // reflect.Type -> *structInfo

func getStructInfo(t reflect.Type) (*structInfo, error) {
	if v, ok := structInfoCache.Load(t); ok {
		return v.(*structInfo), nil
	}
	info, err := analyzeStruct(t)
	if err != nil {
		return nil, err
	}
	actual, _ := structInfoCache.LoadOrStore(t, info)
	return actual.(*structInfo), nil
}

// analyzeStruct maps each exported field to a column name: the "db" tag
// if present ("-" meaning skip the field), else the field's name in
// snake_case.
func analyzeStruct(t reflect.Type) (*structInfo, error) {
	if t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("pgengine: ByName target must be a struct, got %s", t.Kind())
	}
	info := &structInfo{indexByColumn: make(map[string]int)}
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		col := f.Tag.Get("db")
		switch col {
		case "-":
			continue
		case "":
			col = toSnakeCase(f.Name)
		}
		info.indexByColumn[col] = i
	}
	return info, nil
}

func toSnakeCase(s string) string {
	var b strings.Builder
	for i, r := range s {
		if i > 0 && r >= 'A' && r <= 'Z' {
			b.WriteByte('_')
		}
		b.WriteRune(r)
	}
	return strings.ToLower(b.String())
}

// ByName is the by-name row-to-struct sink: New constructs a fresh *T per
// row, and each result column is decoded into whichever struct field's
// "db" tag or snake_case name matches that column, never by positional
// index. A column with no matching field is skipped; a matching field
// that does not implement codec.Scanner is an error.
type ByName[T any] struct {
	New func() *T
	Out *[]*T
	m   *oid.Map
}

// NewByName builds a ByName sink that resolves wire OIDs against m
// (typically a connection's OIDMap()).
func NewByName[T any](m *oid.Map, newFn func() *T, out *[]*T) *ByName[T] {
	return &ByName[T]{New: newFn, Out: out, m: m}
}

func (b *ByName[T]) Row(fields []transport.FieldDescription, values [][]byte) error {
	item := b.New()
	info, err := getStructInfo(reflect.TypeOf(*item))
	if err != nil {
		return err
	}

	rv := reflect.ValueOf(item).Elem()
	for i, fd := range fields {
		idx, ok := info.indexByColumn[fd.Name]
		if !ok {
			continue
		}
		fv := rv.Field(idx)
		if !fv.CanAddr() {
			continue
		}
		scanner, ok := fv.Addr().Interface().(codec.Scanner)
		if !ok {
			return pgerr.Newf(pgerr.KindBadResultProcess, "field %q does not implement codec.Scanner", rv.Type().Field(idx).Name)
		}
		if err := codec.Recv(oid.OID(fd.DataTypeOID), values[i], b.m, scanner); err != nil {
			return err
		}
	}

	*b.Out = append(*b.Out, item)
	return nil
}
