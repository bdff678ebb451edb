// Package configs provides the embedded configuration template for
// Grantha.
//
// The template is embedded at build time with //go:embed so it ships
// in every distribution. 'grantha config init' writes it to
// ~/.grantha/config.yaml; the loader in internal/config applies it
// beneath GRANTHA_* environment overrides.
//
// To change the template, edit config.example.yaml and rebuild.
package configs

import _ "embed"

// ConfigTemplate is the annotated user configuration template.
// Written by 'grantha config init' to ~/.grantha/config.yaml.
//
//go:embed config.example.yaml
var ConfigTemplate string
