package persephone

import _ "embed"

// OpenAPI is the OpenAPI 3 document of the HTTP session API.
//
//go:embed api/openapi.yaml
var OpenAPI []byte
