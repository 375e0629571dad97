// Command medalctl talks to a running medal prediction server and inspects
// model bundles.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/okian/medalcast/internal/client"
)

// Exit codes for different failure modes.
const (
	ExitSuccess  = 0 // command succeeded
	ExitRejected = 1 // the server answered with an error status
	ExitError    = 2 // configuration, transport or bundle error
)

func main() {
	if err := execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)

		var apiErr *client.APIError
		if errors.As(err, &apiErr) {
			os.Exit(ExitRejected)
		}
		os.Exit(ExitError)
	}
}
