// Package migrations embeds the goose SQL migrations so the schema
// ships inside the server binary.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
