// Package docs embeds the HTTP API description.
package docs

import _ "embed"

//go:embed validator.openapi.yaml
var OpenAPI []byte
