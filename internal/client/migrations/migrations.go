// Package migrations embeds the goose migrations of the local sync journal.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
