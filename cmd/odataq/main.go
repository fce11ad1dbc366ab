// Command odataq translates OData query strings into document-store query
// specifications.
package main

import (
	"context"
	"os"

	"github.com/roach88/odataq/internal/cli"
)

func main() {
	os.Exit(cli.Execute(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}
