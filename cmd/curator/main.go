// Command curator searches Curator collections from the command line and
// runs an HTTP gateway in front of the Curator search API.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
