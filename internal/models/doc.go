// Package models defines the domain types shared by the gourmet client packages.
//
//   - [Recipe] : a recipe as served by the API, with [Timestamp] for its lenient created_at field
//   - [Favorite] : the {recipe} wrapper returned by the favorites endpoint
//   - [User], [Credentials], [LoginResponse], [Session] : authentication payloads and the persisted login
//   - [LikeCount] : a like total read from a recipe's stars stream
//
// [TokenStore] and [RecipeCache] are implemented by the repositories package.
package models
