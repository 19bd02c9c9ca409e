// Package cli implements the lsmkv command line interface with cobra.
//
// Services are injected by cmd/lsmkv before Execute is called. Commands
// report a configuration error when the service they need is missing.
package cli
