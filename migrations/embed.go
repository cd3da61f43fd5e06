// Package migrations embeds the SQL migration files so binaries can run them
// without shipping the files separately.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
