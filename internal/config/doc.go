// Package config defines the format-agnostic pipeline model that loaders
// (HCL, YAML) translate their documents into, and the Loader interface the
// app consumes. Keeping the model free of parser types lets every format
// share one validation and one graph-assembly path.
package config
