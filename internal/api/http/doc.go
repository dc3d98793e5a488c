// Package http exposes the host shell over REST.
//
// Errors are written as {"error": message, "code": code} with the status
// carried by the host error. Store failures map to 503 and missing
// records to 404.
package http
