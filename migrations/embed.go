// Package migrations carries the SQL schema so binaries work without a
// migrations directory next to them.
package migrations

import "embed"

//go:embed *.sql
var Files embed.FS
