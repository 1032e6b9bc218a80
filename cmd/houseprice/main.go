// Command houseprice trains the house price model on synthetic data and
// answers a single prediction or metrics request, or serves the HTTP API.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
