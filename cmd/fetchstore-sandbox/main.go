// Command fetchstore-sandbox runs a development server speaking the entity and
// collection envelope protocol, with latency and failure injection.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
