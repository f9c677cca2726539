package resolver

import "strings"

// notFoundError reports every candidate path the resolver tried, so a
// module-not-found diagnostic can show the full priority chain.
type notFoundError struct {
	module string
	tried  []string
}

func (e *notFoundError) Error() string {
	return "module " + e.module + " not found, tried: " + strings.Join(e.tried, ", ")
}

// cyclicImportError reports the chain of paths that re-enters itself.
type cyclicImportError struct {
	chain []string
}

func (e *cyclicImportError) Error() string {
	return "cyclic import: " + strings.Join(e.chain, " -> ")
}

func cycleError(chain []string) error {
	return &cyclicImportError{chain: chain}
}
