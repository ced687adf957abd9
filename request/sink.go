package request

import (
	"github.com/fsvxavier/pgengine/pgerr"
	"github.com/fsvxavier/pgengine/transport"
)

// Sink is the closed set of result destinations: a raw result container,
// a back-inserter into a sequence of row-tuples/structs, or a forward
// iterator with pre-sized storage. Dispatch is at row boundaries, never
// per-cell.
type Sink interface {
	Row(fields []transport.FieldDescription, values [][]byte) error
}

// RawRow is one row exactly as received: field descriptors plus raw
// (oid-implicit, copied) cell bytes.
type RawRow struct {
	Fields []transport.FieldDescription
	Values [][]byte
}

// RawResult is the "raw result container" sink: it keeps every row's
// untyped frames, undecoded.
type RawResult struct {
	Rows []RawRow
}

func (r *RawResult) Row(fields []transport.FieldDescription, values [][]byte) error {
	cp := make([][]byte, len(values))
	for i, v := range values {
		if v != nil {
			cp[i] = append([]byte(nil), v...)
		}
	}
	r.Rows = append(r.Rows, RawRow{Fields: fields, Values: cp})
	return nil
}

// RowScanner is implemented by an application row type that knows how to
// decode itself from one result row.
type RowScanner interface {
	ScanRow(fields []transport.FieldDescription, values [][]byte) error
}

// BackInserter is the "back-inserter into a sequence of row-tuples/
// structs" sink: New constructs a fresh T per row, scanned and appended
// to *Out.
type BackInserter[T RowScanner] struct {
	New func() T
	Out *[]T
}

func (b *BackInserter[T]) Row(fields []transport.FieldDescription, values [][]byte) error {
	item := b.New()
	if err := item.ScanRow(fields, values); err != nil {
		return err
	}
	*b.Out = append(*b.Out, item)
	return nil
}

// PreSized is the "forward iterator with pre-sized storage" sink: Items
// must already hold as many elements as rows expected; Row fails with
// bad-result-process if more rows arrive than capacity.
type PreSized[T RowScanner] struct {
	Items []T
	next  int
}

func (p *PreSized[T]) Row(fields []transport.FieldDescription, values [][]byte) error {
	if p.next >= len(p.Items) {
		return pgerr.Newf(pgerr.KindBadResultProcess, "more rows than pre-sized capacity %d", len(p.Items))
	}
	if err := p.Items[p.next].ScanRow(fields, values); err != nil {
		return err
	}
	p.next++
	return nil
}

// Filled reports how many of Items were actually scanned into.
func (p *PreSized[T]) Filled() int { return p.next }

// discard is the sink used by Execute, which drops every row.
type discard struct{}

func (discard) Row([]transport.FieldDescription, [][]byte) error { return nil }
