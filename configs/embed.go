// Package configs provides the embedded configuration template written by
// `fzsearch config init`.
//
// Configuration hierarchy (see internal/config Load):
//  1. Hardcoded defaults
//  2. User config (~/.config/fzsearch/config.yaml)
//  3. Project config (.fzsearch.yaml)
//  4. Environment variables (FZSEARCH_*)
package configs

import _ "embed"

// ConfigTemplate is the commented template for .fzsearch.yaml and the user
// config file.
//
//go:embed fzsearch.example.yaml
var ConfigTemplate string
