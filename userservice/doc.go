// Package userservice is the outbound client of the user-management service.
//
// The client is synchronous and does neither retry nor cache. Without a configured timeout
// a call blocks until the user-service answers or the caller's context ends.
package userservice
