// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

func formatFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "format",
		Aliases: []string{"f"},
		Usage:   "Output format: txt, markdown, csv, json or yaml",
		Value:   "txt",
	}
}

// setupCommand handles setup operations for configuration and the local database.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:  "config",
				Usage: "Write a config.toml populated with defaults",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "Path to configuration file",
						Value:   "config.toml",
					},
				},
				Action: r.SetupConfig,
			},
			{
				Name:  "database",
				Usage: "Initialize database and run migrations",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "Path to configuration file",
						Value:   "config.toml",
					},
					&cli.BoolFlag{
						Name:  "rollback",
						Usage: "Roll back the most recent migration instead",
					},
				},
				Action: r.SetupDatabase,
			},
		},
	}
}

// authCommand handles the gourmet session
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Manage authentication",
		Commands: []*cli.Command{
			{
				Name:  "login",
				Usage: "Log in with username and password (POST /login)",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "username",
						Aliases:  []string{"u"},
						Usage:    "Account username",
						Sources:  cli.EnvVars("GOURMET_USERNAME"),
						Required: true,
					},
					&cli.StringFlag{
						Name:     "password",
						Aliases:  []string{"p"},
						Usage:    "Account password",
						Sources:  cli.EnvVars("GOURMET_PASSWORD"),
						Required: true,
					},
				},
				Action: r.AuthLogin,
			},
			{
				Name:   "logout",
				Usage:  "Forget the stored session",
				Action: r.AuthLogout,
			},
			{
				Name:   "status",
				Usage:  "Check the stored session (calls /me)",
				Action: r.AuthStatus,
			},
			{
				Name:  "import",
				Usage: "Import the bearer token of a request copied from the browser",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "curl",
						Usage: "cURL command from browser DevTools (Copy as cURL)",
					},
					&cli.StringFlag{
						Name:  "curl-file",
						Usage: "Path to .sh file containing cURL command",
					},
				},
				Action: r.AuthImport,
			},
		},
	}
}

// recipesCommand handles recipe browsing, likes and export
func recipesCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "recipes",
		Aliases: []string{"r"},
		Usage:   "Browse recipes",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List recipes",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "category",
						Aliases: []string{"c"},
						Usage:   "Only show recipes eaten at this time (when_to_eat)",
					},
					&cli.BoolFlag{
						Name:  "offline",
						Usage: "Read from the local cache without calling the API",
					},
					formatFlag(),
				},
				Action: r.RecipesList,
			},
			{
				Name:  "show",
				Usage: "Show one recipe",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Flags:  []cli.Flag{formatFlag()},
				Action: r.RecipesShow,
			},
			{
				Name:   "categories",
				Usage:  "List the when_to_eat categories",
				Action: r.RecipesCategories,
			},
			{
				Name:   "featured",
				Usage:  "Show the featured recipe",
				Flags:  []cli.Flag{formatFlag()},
				Action: r.RecipesFeatured,
			},
			{
				Name:  "likes",
				Usage: "Follow a recipe's like count live",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "count",
						Usage: "Exit after this many updates (0 follows until interrupted)",
					},
					&cli.DurationFlag{
						Name:  "timeout",
						Usage: "Stop following after this long (0 disables)",
					},
				},
				Action: r.RecipesLikes,
			},
			{
				Name:  "open",
				Usage: "Open a recipe on the web app",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Action: r.RecipesOpen,
			},
			{
				Name:      "export",
				Usage:     "Export recipes to files",
				ArgsUsage: "[id...]",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "all",
						Usage: "Export every recipe",
					},
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "Export format: txt, markdown, csv, json or yaml",
						Value:   "markdown",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output directory (default: gourmet_export_{epoch})",
					},
					&cli.IntFlag{
						Name:  "workers",
						Usage: "Concurrent export workers",
						Value: 4,
					},
					&cli.FloatFlag{
						Name:  "rate",
						Usage: "Recipe fetches per second",
						Value: 5,
					},
					&cli.BoolFlag{
						Name:  "images",
						Usage: "Download recipe images for markdown exports",
					},
				},
				Action: r.RecipesExport,
			},
		},
	}
}

// favoritesCommand handles the logged in user's favorites
func favoritesCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "favorites",
		Aliases: []string{"fav"},
		Usage:   "Manage favorite recipes",
		Commands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "List favorite recipes",
				Flags:  []cli.Flag{formatFlag()},
				Action: r.FavoritesList,
			},
			{
				Name:      "add",
				Usage:     "Add a recipe to favorites",
				Arguments: []cli.Argument{&cli.StringArg{Name: "id"}},
				Action:    r.FavoritesAdd,
			},
			{
				Name:      "remove",
				Aliases:   []string{"rm"},
				Usage:     "Remove a recipe from favorites",
				Arguments: []cli.Argument{&cli.StringArg{Name: "id"}},
				Action:    r.FavoritesRemove,
			},
		},
	}
}

// cacheCommand handles the offline recipe cache
func cacheCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "cache",
		Usage: "Cache recipes locally",
		Commands: []*cli.Command{
			{
				Name:   "recipes",
				Usage:  "Download every recipe into the cache",
				Action: r.CacheRecipes,
			},
			{
				Name:   "clear",
				Usage:  "Empty the recipe cache",
				Action: r.CacheClear,
			},
		},
	}
}

// apiCommand handles direct API calls
func apiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "api",
		Usage: "Direct calls to the gourmet API",
		Commands: []*cli.Command{
			{
				Name:  "get",
				Usage: "Direct GET, prints raw JSON",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "path"},
				},
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
						Value: true,
					},
				},
				Action: r.APIGet,
			},
			{
				Name:  "post",
				Usage: "Direct POST with JSON body",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "path"},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "data",
						Aliases:  []string{"d"},
						Usage:    "JSON body to send",
						Required: true,
					},
				},
				Action: r.APIPost,
			},
		},
	}
}

// tuiCommand returns the top-level TUI command for interactive browsing.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Launch interactive TUI",
		Action:  r.TUI,
	}
}
