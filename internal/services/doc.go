// Package services talks to the gourmet recipe API.
//
// [APIService] is the raw request layer: it builds JSON requests, applies an optional [rate.Limiter] and returns
// status, headers and body without interpreting them. [GourmetService] implements [RecipeService] on top of it.
//
// # Authentication
//
// POST /login returns a JWT. [GourmetService.Authenticate] wraps it in an [oauth2.StaticTokenSource] so every later
// request carries "Authorization: Bearer <token>". The CLI persists the token and username between runs.
//
// # Errors
//
// Non-2xx responses become a [StatusError], which unwraps to the shared sentinels:
//   - [shared.ErrAPIRequest] : any failed request
//   - [shared.ErrNotAuthenticated] : 401 or 403, or an authenticated call without a token
//   - [shared.ErrServiceUnavailable] : 5xx
//   - [shared.ErrRecipeNotFound] : 404 on a single recipe
//   - [shared.ErrInvalidCredentials] : 401 or 403 on login
package services
