package main

import (
	"fmt"

	"github.com/okian/medalcast/internal/client"
)

// smokeFailure reports that a smoke run completed with failed requests.
type smokeFailure struct {
	failed int64
}

func (e *smokeFailure) Error() string {
	return fmt.Sprintf("smoke run had %d failed requests", e.failed)
}

func exampleRequest(target string) map[string]any {
	if target == "athlete" {
		return client.ReferenceAthlete()
	}
	return client.ReferenceCountry()
}
