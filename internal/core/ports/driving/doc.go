// Package driving provides interfaces exposed by the core to external actors
// (primary/inbound ports). The HTTP/API layer and the CLI consume these.
package driving
