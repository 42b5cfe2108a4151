// Package api provides the HTTP transport for the EasyLoft REST backend.
//
// # Overview
//
// Client is the only component that talks to the network. It builds requests,
// attaches the bearer token, encodes JSON bodies, decodes JSON responses and
// turns every failure into a *RequestError. Domain services in
// internal/service sit on top of it; stores never call it directly.
//
// # Request Handling
//
// All requests:
//   - Use context for cancellation and timeout control
//   - Set Accept: application/json and User-Agent: easyloft/0.1
//   - Carry a fresh X-Request-ID (UUID) so backend logs can be correlated
//   - Set Content-Type: application/json only when a body is present
//   - Carry Authorization: Bearer <token> when auth is requested and the
//     TokenSource returns a non-empty token
//
// Upload is the multipart variant used for pigeon photos. The part content
// type is sniffed from the bytes when the caller does not supply one.
//
// # Error Handling
//
// Callers never see raw transport errors. Every failure is a *RequestError
// whose Error() is a single human-readable message:
//
//   - KindNetwork: dial failures, timeouts, cancellation ("execute request: ...")
//   - KindStatus: non-2xx responses; the message is the server's {message}
//     field (a list of messages is joined with "; "), "request failed with
//     status N" when the payload had none, or "server error" when the payload
//     was not JSON
//   - KindDecode: a 2xx body that did not decode ("decode response: ...")
//   - KindEncode: a request body that could not be encoded
//
// ServerMessage keeps the raw server text so stores can choose their own
// fallback when the server sent nothing. Unwrap exposes the cause, so
// errors.Is(err, context.Canceled) works.
//
// # Base URL
//
// The base URL may carry a path prefix ("https://host/api"); endpoint paths
// are resolved beneath it. A bare host:port gets an http:// scheme.
//
// # Thread Safety
//
// Client is safe for concurrent use. It holds no state besides configuration
// and never mutates any store.
package api
