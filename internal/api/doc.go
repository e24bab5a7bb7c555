// Package api is the authenticated HTTP gateway to the Embeddable API.
//
// A Client is bound to one API key and one region. Every call goes through
// a single request primitive that:
//
//   - attaches "Authorization: Bearer <key>", JSON content headers and a
//     fresh X-Request-ID
//   - treats 204 and empty bodies as success without content
//   - treats an undecodable body on a 2xx response as success without content
//   - turns any non-2xx status into an *Error carrying the status code and
//     the best message found in the body
//
// Responses with more than one shape on the wire (connection lists of names
// or objects, environment mappings as maps or arrays, publish dates as
// strings or objects) are normalized while decoding, so callers only ever
// see one canonical form.
//
// Connection tests are the exception to the error policy: TestConnection
// never returns an error. A failed test is an ordinary outcome reported in
// TestResult so callers can offer remediation instead of aborting.
//
// # Usage Example
//
//	client := api.New(cfg.APIKey, cfg.Region, api.WithTimeout(30*time.Second))
//
//	conns, err := client.ListConnections(ctx)
//	if err != nil {
//	    return err
//	}
//
//	res := client.TestConnection(ctx, api.Saved(conns[0].Identifier()))
//	if !res.Success {
//	    fmt.Println("test failed:", res.Error)
//	}
//
// Remote errors are never retried automatically.
package api
