package storage

import "errors"

var (
	// ErrMalformedEntry is returned for a log line that cannot be parsed.
	ErrMalformedEntry = errors.New("wal: malformed entry")

	// ErrTornEntry is returned for a final line missing its newline terminator.
	ErrTornEntry = errors.New("wal: torn entry")

	// ErrUnencodable is returned by Append for an entry one log line cannot hold.
	ErrUnencodable = errors.New("wal: entry not encodable as one line")
)
