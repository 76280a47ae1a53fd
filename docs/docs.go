// Package docs embeds the OpenAPI description served under /docs.
package docs

import "embed"

//go:embed swagger.yml
var FS embed.FS
