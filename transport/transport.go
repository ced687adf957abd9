// Package transport wraps github.com/jackc/pgx/v5/pgconn as the engine's
// non-blocking wire transport — the Go-idiomatic stand-in for "whatever
// polling states the underlying PostgreSQL client library reports" (spec
// §4.2). The engine package drives the connection lifecycle and invariants
// on top of this package; transport itself owns only the socket and the
// raw extended-query exchange, always in binary format.
package transport

import (
	"context"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/fsvxavier/pgengine/pgerr"
)

const binaryFormat int16 = 1

// Conn is a single established wire connection, always operated in binary
// result/parameter format.
type Conn struct {
	raw *pgconn.PgConn
}

// Connect performs the non-blocking connect-and-poll sequence and returns an established Conn. pgconn.ConnectConfig drives
// the socket through the startup handshake internally; ctx cancellation
// reaches the socket exactly as spec's dup()'d-fd cancellation does.
func Connect(ctx context.Context, cfg *pgconn.Config) (*Conn, error) {
	raw, err := pgconn.ConnectConfig(ctx, cfg)
	if err != nil {
		return nil, pgerr.New(pgerr.KindStartFailed, err)
	}
	return &Conn{raw: raw}, nil
}

// ParseConfig parses a libpq-style connection string, including .pgpass/service-file resolution.
func ParseConfig(dsn string) (*pgconn.Config, error) {
	cfg, err := pgconn.ParseConfig(dsn)
	if err != nil {
		return nil, pgerr.New(pgerr.KindBadConnectionStatus, err)
	}
	return cfg, nil
}

// IsClosed reports whether the underlying handle has already been closed.
func (c *Conn) IsClosed() bool { return c.raw.IsClosed() }

// TxStatus returns the backend's transaction_status byte: 'I' idle, 'T' in
// a transaction, 'E' in a failed transaction.
func (c *Conn) TxStatus() byte { return c.raw.TxStatus }

// PID returns the backend process id, used only for diagnostics/logging.
func (c *Conn) PID() uint32 { return c.raw.PID() }

// Close releases the handle.
func (c *Conn) Close(ctx context.Context) error {
	return c.raw.Close(ctx)
}

// Param is one positional parameter of a binary extended-query request:
// its wire OID and its already-encoded payload (nil for SQL NULL).
type Param struct {
	OID  uint32
	Data []byte // nil encodes SQL NULL
}

// Cell is one received result column: its wire OID and raw bytes (nil for
// SQL NULL) — spec §3 "Request/Result": "each row is a sequence of (oid,
// raw-bytes | null) cells".
type Cell struct {
	OID  uint32
	Data []byte
}

// FieldDescription names and types one result column.
type FieldDescription struct {
	Name        string
	DataTypeOID uint32
}

// CommandTag mirrors pgconn.CommandTag's subset the engine needs.
type CommandTag struct {
	raw pgconn.CommandTag
}

func (t CommandTag) String() string       { return t.raw.String() }
func (t CommandTag) RowsAffected() int64  { return t.raw.RowsAffected() }

// ExecParams sends the extended-query request and returns a ResultReader
// positioned before the first row. Both
// parameter and result formats are always binary.
func (c *Conn) ExecParams(ctx context.Context, sql string, params []Param) *ResultReader {
	oids := make([]uint32, len(params))
	values := make([][]byte, len(params))
	formats := make([]int16, len(params))
	for i, p := range params {
		oids[i] = p.OID
		values[i] = p.Data
		formats[i] = binaryFormat
	}
	rr := c.raw.ExecParams(ctx, sql, values, oids, formats, []int16{binaryFormat})
	return &ResultReader{raw: rr}
}

// ResultReader drains rows one at a time, mirroring spec §4.2 "Receiving
// results": NextRow corresponds to the is_busy/consume_input/get_result
// loop collapsed by pgconn into a single blocking (ctx-cancellable) call.
type ResultReader struct {
	raw *pgconn.ResultReader
}

// NextRow advances to the next row, returning false at end-of-result or on
// error (distinguish via Close after the loop).
func (r *ResultReader) NextRow() bool { return r.raw.NextRow() }

// Values returns the current row's raw cell bytes, aligned with
// FieldDescriptions' OIDs.
func (r *ResultReader) Values() [][]byte { return r.raw.Values() }

// FieldDescriptions returns the result's column descriptors.
func (r *ResultReader) FieldDescriptions() []FieldDescription {
	fds := r.raw.FieldDescriptions()
	out := make([]FieldDescription, len(fds))
	for i, fd := range fds {
		out[i] = FieldDescription{Name: string(fd.Name), DataTypeOID: fd.DataTypeOID}
	}
	return out
}

// Close drains any remaining results and returns the command tag and
// first observed error, classified into the engine's error taxonomy (spec
// §4.2 "Receiving results": EMPTY_QUERY/BAD_RESPONSE/FATAL_ERROR/other).
func (r *ResultReader) Close() (CommandTag, error) {
	tag, err := r.raw.Close()
	if err != nil {
		return CommandTag{raw: tag}, classifyResultError(err)
	}
	return CommandTag{raw: tag}, nil
}

func classifyResultError(err error) error {
	if pgErr, ok := asPgError(err); ok {
		return pgerr.Fatal(pgerr.SQLSTATE(pgErr.Code), pgErr.Message)
	}
	return pgerr.New(pgerr.KindBadResponse, err)
}

func asPgError(err error) (*pgconn.PgError, bool) {
	pe, ok := err.(*pgconn.PgError)
	if ok {
		return pe, true
	}
	type unwrapper interface{ Unwrap() error }
	for u, ok := err.(unwrapper); ok; u, ok = err.(unwrapper) {
		err = u.Unwrap()
		if pe, ok := err.(*pgconn.PgError); ok {
			return pe, true
		}
	}
	return nil, false
}

// CancelRequest aborts the connection's in-flight operation.
func (c *Conn) CancelRequest(ctx context.Context) error {
	return c.raw.CancelRequest(ctx)
}

// DiscoverOIDs runs the startup "pg_type" lookup: "SELECT typname, oid FROM pg_type WHERE typname = ANY(ARRAY[...]::text[])"
// with the declared names inlined as quoted literals. It is issued over the simple query protocol
// (text format) since no OID map exists yet to drive a binary extended
// query. Returns oid-request-failed if the returned row count differs
// from the requested name count.
func (c *Conn) DiscoverOIDs(ctx context.Context, names []string) (map[string]uint32, error) {
	if len(names) == 0 {
		return nil, nil
	}
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = "'" + strings.ReplaceAll(n, "'", "''") + "'"
	}
	sql := "SELECT typname, oid FROM pg_type WHERE typname = ANY(ARRAY[" + strings.Join(quoted, ",") + "]::text[])"

	mrr := c.raw.Exec(ctx, sql)
	found := make(map[string]uint32, len(names))
	for mrr.NextResult() {
		rr := mrr.ResultReader()
		for rr.NextRow() {
			vals := rr.Values()
			if len(vals) != 2 {
				continue
			}
			oidVal, err := strconv.ParseUint(string(vals[1]), 10, 32)
			if err != nil {
				continue
			}
			found[string(vals[0])] = uint32(oidVal)
		}
		if _, err := rr.Close(); err != nil {
			_ = mrr.Close()
			return nil, pgerr.New(pgerr.KindOIDRequestFailed, err)
		}
	}
	if err := mrr.Close(); err != nil {
		return nil, pgerr.New(pgerr.KindOIDRequestFailed, err)
	}
	if len(found) != len(names) {
		return found, pgerr.Newf(pgerr.KindOIDRequestFailed, "requested %d type names, resolved %d", len(names), len(found))
	}
	return found, nil
}
