// Package openapi embeds the OpenAPI description of the profile backend.
package openapi

import _ "embed"

// ProfileReviewSpec is the OpenAPI YAML served at /api/v1/openapi.yaml.
//
//go:embed profilereview.yaml
var ProfileReviewSpec []byte

// Spec returns a copy of the embedded OpenAPI YAML.
func Spec() []byte {
	return append([]byte(nil), ProfileReviewSpec...)
}
