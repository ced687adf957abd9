package pgerr

import "strings"

// SQLSTATE is PostgreSQL's 5-character error code, as sent verbatim on
// the wire (base-36 digits, upper-case). Its numeric value is obtained
// via SQLSTATE.Code.
type SQLSTATE string

// Code decodes the 5 base-36 characters into a numeric value. Each
// character contributes independently; PostgreSQL's SQLSTATE alphabet is
// [0-9A-Z], so this is a straightforward base-36 integer read.
func (s SQLSTATE) Code() (uint64, bool) {
	if len(s) != 5 {
		return 0, false
	}
	var n uint64
	for i := 0; i < 5; i++ {
		c := s[i]
		var d uint64
		switch {
		case c >= '0' && c <= '9':
			d = uint64(c - '0')
		case c >= 'A' && c <= 'Z':
			d = uint64(c-'A') + 10
		default:
			return 0, false
		}
		n = n*36 + d
	}
	return n, true
}

// Class returns the first two characters, PostgreSQL's error class.
func (s SQLSTATE) Class() string {
	if len(s) < 2 {
		return string(s)
	}
	return string(s[:2])
}

// A representative slice of the full PostgreSQL SQLSTATE set. The engine
// does not need an exhaustive table to operate — any 5-character token
// round-trips through SQLSTATE unchanged — but these named constants
// cover the codes the failover and pool layers reason about directly.
const (
	SQLSTATESuccessfulCompletion  SQLSTATE = "00000"
	SQLSTATEConnectionException   SQLSTATE = "08000"
	SQLSTATEConnectionDoesNotExist SQLSTATE = "08003"
	SQLSTATEConnectionFailure     SQLSTATE = "08006"
	SQLSTATESQLClientUnableToEstablishSQLConnection SQLSTATE = "08001"
	SQLSTATESQLServerRejectedEstablishmentOfSQLConnection SQLSTATE = "08004"
	SQLSTATETransactionResolutionUnknown SQLSTATE = "08007"
	SQLSTATEProtocolViolation     SQLSTATE = "08P01"
	SQLSTATEInvalidTextRepresentation SQLSTATE = "22P02"
	SQLSTATEUniqueViolation       SQLSTATE = "23505"
	SQLSTATEForeignKeyViolation   SQLSTATE = "23503"
	SQLSTATECheckViolation        SQLSTATE = "23514"
	SQLSTATENotNullViolation      SQLSTATE = "23502"
	SQLSTATEReadOnlySQLTransaction SQLSTATE = "25006"
	SQLSTATEInFailedSQLTransaction SQLSTATE = "25P02"
	SQLSTATEInvalidCatalogName    SQLSTATE = "3D000"
	SQLSTATEUndefinedTable        SQLSTATE = "42P01"
	SQLSTATEUndefinedColumn       SQLSTATE = "42703"
	SQLSTATEInsufficientPrivilege SQLSTATE = "42501"
	SQLSTATEDeadlockDetected      SQLSTATE = "40P01"
	SQLSTATESerializationFailure  SQLSTATE = "40001"
	SQLSTATEStatementTimeout      SQLSTATE = "57014"
	SQLSTATEAdminShutdown         SQLSTATE = "57P01"
	SQLSTATECrashShutdown         SQLSTATE = "57P02"
	SQLSTATECannotConnectNow      SQLSTATE = "57P03"
	SQLSTATEIdleInTransactionSessionTimeout SQLSTATE = "25P03"
	SQLSTATEOutOfMemory           SQLSTATE = "53200"
	SQLSTATETooManyConnections    SQLSTATE = "53300"
)

// IsConnectionClass reports whether the SQLSTATE belongs to PostgreSQL's
// class 08 (connection exception) — a strong signal the connection is dead
// regardless of what KindFatalError's Condition bucket says.
func (s SQLSTATE) IsConnectionClass() bool {
	return strings.HasPrefix(string(s), "08")
}
