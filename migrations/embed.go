package migrations

import "embed"

// FS holds the journal schema migrations shipped with the binary.
//
//go:embed *.sql
var FS embed.FS
