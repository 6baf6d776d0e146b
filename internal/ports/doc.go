// Package ports holds the interfaces that connect the layers. The service
// ports are implemented by the application layer and consumed by the HTTP
// handlers; the repository, cache, dispatcher, and health ports are
// implemented by outbound adapters and consumed by the application layer.
package ports
