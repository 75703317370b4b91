// Package schemas хранит JSON-схемы событий и входящих запросов сервиса.
package schemas

import "embed"

//go:embed events requests
var SchemasFS embed.FS
