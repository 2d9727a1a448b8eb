// Package http provides HTTP handlers and middleware for the room booking API.
//
// The router exposes the following endpoints:
//   - POST /sessions: issues a session token. Body: {"email","password"}. The
//     token is returned in the body, the `X-Session-Token` header, and a
//     `session_token` cookie.
//   - DELETE /sessions/current: revokes the caller's session token and clears
//     the cookie.
//   - GET /bookings, POST /bookings, GET /bookings/{id}: booking submission
//     and retrieval exchanging the `bookingDTO` payload defined in
//     booking_handler.go. POST accepts an optional recurrence block and
//     returns every occurrence created.
//   - POST /bookings/{id}/decision: approves or rejects a pending booking.
//     Body: {"decision":"approve"|"reject"}.
//   - POST /bookings/{id}/cancellation: cancels a booking.
//   - GET /rooms, POST /rooms, GET|PUT|DELETE /rooms/{id}: room catalog
//     endpoints exchanging the `roomDTO` payload defined in room_handler.go.
//     Listing is open to any authenticated principal; mutations require
//     administrator privileges.
//   - GET /rooms/{id}/availability?from=&to=: busy and free intervals for one
//     room over a window.
//   - GET /rooms/{id}/occupancy?from=&to=&slot=: slot grid projection for
//     calendar rendering.
//   - GET /availability?from=&to=: rooms entirely free over a window.
//   - GET /users, POST /users, GET|PUT /users/{id}, PUT /users/{id}/disabled:
//     administrator controlled account management exchanging the `userDTO`
//     payload defined in user_handler.go.
//
// Request/response DTOs live alongside their respective handlers so tests and
// documentation share the same ground truth.
package http
