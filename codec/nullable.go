package codec

import (
	"github.com/fsvxavier/pgengine/pgerr"
)

// Required wraps any Scanner to forbid NULL. Every scalar/array/composite Scanner in this package is
// nullable by default (it carries its own Valid flag); Required is how a
// caller opts a sink *out* of nullability.
type Required struct {
	Scanner
}

// NotNull adapts s into a non-nullable sink.
func NotNull(s Scanner) Required { return Required{Scanner: s} }

func (r Required) SetNull() error {
	return pgerr.Newf(pgerr.KindUnexpectedNull, "NULL received into non-nullable target")
}
