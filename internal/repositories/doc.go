// Package repositories implements SQLite persistence for the gourmet client.
//
//   - [TokenRepository] : key/value session storage (jwt_token, username), implementing [models.TokenStore]
//   - [RecipeRepository] : the offline recipe cache, implementing [models.RecipeCache]
//
// Both expect a database prepared by [shared.RunMigrations].
package repositories
