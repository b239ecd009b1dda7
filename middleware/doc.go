// Package middleware adapts the engine to net/http routing.
//
// Authenticate performs principal resolution for every request; RequireRoles
// layers the route-level role gate on top. Resource-level authorization
// stays in the engine, which has the project in hand.
package middleware
