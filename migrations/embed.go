// Package migrations embeds the ordered SQL schema files (001, 002, ...).
package migrations

import "embed"

//go:embed *.sql
var Files embed.FS
