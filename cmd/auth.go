package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/desertthunder/gourmet/internal/models"
	"github.com/desertthunder/gourmet/internal/shared"
	"github.com/urfave/cli/v3"
)

// AuthLogin logs in with POST /login and stores the returned token.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	credentials := models.Credentials{
		Username: cmd.String("username"),
		Password: cmd.String("password"),
	}

	if err := r.store(); err != nil {
		return err
	}

	r.logger.Info("logging in", "username", credentials.Username)

	session, err := r.service.Login(ctx, credentials)
	if err != nil {
		return err
	}

	if err := r.tokens.SaveSession(*session); err != nil {
		return fmt.Errorf("logged in but failed to store session: %w", err)
	}

	r.logger.Info("authentication successful", "username", session.Username)
	return r.writePlain("✓ Logged in as %s\n", session.Username)
}

// AuthLogout deletes the stored session.
func (r *Runner) AuthLogout(ctx context.Context, cmd *cli.Command) error {
	if err := r.store(); err != nil {
		return err
	}
	if err := r.tokens.ClearSession(); err != nil {
		return err
	}
	return r.writePlain("✓ Logged out\n")
}

// AuthStatus reports the stored session and checks it against GET /me.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	r.logger.Info("checking auth status")

	session, err := r.restoreSession(ctx)
	if err != nil {
		return err
	}
	if !session.Authenticated() {
		return r.writePlain("Authentication: ✗ Not logged in\n")
	}

	user, err := r.service.Me(ctx)
	if errors.Is(err, shared.ErrNotAuthenticated) {
		r.writePlain("Authentication: ✗ Stored token for %s was rejected\n", session.Username)
		return r.writePlain("Run 'gourmet auth login' again\n")
	}
	if err != nil {
		return err
	}

	return r.writePlain("Authentication: ✓ Logged in as %s\n", user.Username)
}

// AuthImport stores the bearer token found in a cURL command copied from the browser.
//
// The token is verified with GET /me, which also supplies the username.
func (r *Runner) AuthImport(ctx context.Context, cmd *cli.Command) error {
	curlCmd := cmd.String("curl")
	curlFile := cmd.String("curl-file")

	if curlCmd == "" && curlFile == "" {
		return fmt.Errorf("%w: either --curl or --curl-file must be provided", shared.ErrMissingArgument)
	}

	if curlCmd != "" && curlFile != "" {
		return fmt.Errorf("%w: cannot specify both --curl and --curl-file", shared.ErrInvalidArgument)
	}

	var req *shared.CurlRequest
	var err error

	if curlFile != "" {
		req, err = shared.ParseCurlFile(curlFile)
		if err != nil {
			return fmt.Errorf("failed to parse cURL file: %w", err)
		}
		r.logger.Info("parsed cURL from file", "file", curlFile)
	} else {
		req, err = shared.ParseCurlCommand(curlCmd)
		if err != nil {
			return fmt.Errorf("failed to parse cURL command: %w", err)
		}
		r.logger.Info("parsed cURL command")
	}

	token, err := req.BearerToken()
	if err != nil {
		return err
	}

	if err := r.store(); err != nil {
		return err
	}
	if err := r.service.Authenticate(ctx, token); err != nil {
		return err
	}

	user, err := r.service.Me(ctx)
	if err != nil {
		return fmt.Errorf("imported token was not accepted: %w", err)
	}

	if err := r.tokens.SaveSession(models.Session{Token: token, Username: user.Username}); err != nil {
		return fmt.Errorf("failed to store session: %w", err)
	}

	r.logger.Info("token imported", "username", user.Username, "url", req.URL)
	return r.writePlain("✓ Logged in as %s\n", user.Username)
}
