// Package main provides the catalog-service command line: the HTTP server, schema migration
// and a dump of the effective configuration.
package main

// version is set via ldflags.
var version = "dev"

func main() {
	rootCmd.Version = version
	execute()
}
