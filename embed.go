// Package shapechat holds assets embedded into the binaries.
package shapechat

import "embed"

//go:embed migrations
var MigrationsFS embed.FS
