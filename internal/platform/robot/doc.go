// Package robot is a minimal client for the Hetzner Robot webservice,
// limited to vSwitch management.
//
// Requests use HTTP basic auth with a Robot webservice user and
// form-encoded bodies. The API answers with JSON; errors come back as
// {"error": {"status", "code", "message"}} and are returned as *Error.
package robot
