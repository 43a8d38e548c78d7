// Package delivery defines the transports that expose the application.
package delivery

import "context"

// Delivery is a long-running transport started by the application runner.
type Delivery interface {
	// Serve blocks until the transport stops.
	Serve(ctx context.Context) error
}
