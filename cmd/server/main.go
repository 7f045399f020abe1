// Command server runs the example widget CRUD service: bootstrap wires
// config, logger, the configured adapter, the facade, and the router,
// then Run blocks until an interrupt signal or a fatal server error.
package main

import (
	"fmt"
	"os"

	"github.com/forbearing/gstore/bootstrap"
)

func main() {
	if err := bootstrap.Bootstrap(); err != nil {
		fmt.Fprintln(os.Stderr, "bootstrap failed:", err)
		os.Exit(1)
	}
	if err := bootstrap.Run(); err != nil {
		fmt.Fprintln(os.Stderr, "server exited with error:", err)
		os.Exit(1)
	}
}
