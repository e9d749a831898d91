// Package http provides HTTP handlers and middleware for the booking API.
//
// The router exposes the following endpoints:
//   - POST /user/login, /user/admin/login: exchange {"username","password"} for
//     {"userInfo","accessToken","refreshToken"}. The admin endpoint only accepts
//     accounts carrying the admin flag; the standard endpoint only the rest.
//   - POST /user/refresh, /user/admin/refresh: exchange {"refreshToken"} for a
//     freshly minted token pair. Both tokens are rotated on every call.
//   - POST /user/register plus GET /user/register-captcha,
//     /user/update_password/captcha, /user/update/captcha: captcha-gated account
//     registration and credential updates. Captcha codes are mailed to the
//     address in the `address` query parameter.
//   - GET /user/info, POST /user/update, POST /user/update_password: profile
//     endpoints for the authenticated principal.
//   - GET /user/freeze?id=N, GET /user/list: administrator account management.
//   - GET /meeting-room/list, POST /meeting-room/create, PUT /meeting-room/update,
//     GET|DELETE /meeting-room/{id}: room catalog endpoints exchanging the
//     `roomDTO` payload defined in room_handler.go. Mutations require admin
//     privileges.
//   - GET /booking/list, POST /booking/add, GET /booking/apply/{id},
//     /booking/reject/{id}, /booking/unbind/{id}, /booking/urge/{id}: reservation
//     endpoints exchanging the `bookingDTO` payload defined in booking_handler.go.
//     Apply and reject require admin privileges.
//
// Request/response DTOs live alongside their respective handlers so tests and
// documentation share the same ground truth.
package http
