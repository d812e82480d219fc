package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/desertthunder/gourmet/internal/models"
	"github.com/desertthunder/gourmet/internal/services"
	"github.com/desertthunder/gourmet/internal/shared"
	tu "github.com/desertthunder/gourmet/internal/testing"
	"github.com/urfave/cli/v3"
)

func testRecipes() []models.Recipe {
	return []models.Recipe{
		{ID: "1", Name: "Pancakes", WhenToEat: "breakfast"},
		{ID: "2", Name: "Lasagna", WhenToEat: "dinner", IsFeatured: true},
		{ID: "3", Name: "Granola", WhenToEat: "breakfast"},
		{ID: "4", Name: "Mystery"},
	}
}

// newTestRunner returns a runner over svc backed by an in-memory database.
func newTestRunner(t *testing.T, svc *tu.MockRecipeService, opts RunnerOpts) (*Runner, *bytes.Buffer) {
	t.Helper()

	db, err := shared.OpenDatabase(shared.DatabaseConfig{Path: ":memory:"})
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	output := &bytes.Buffer{}
	opts.Service = svc
	opts.Output = output
	opts.Logger = shared.NewLogger(io.Discard)
	opts.DB = db

	runner := NewRunner(opts)
	runner.openBrowser = func(string) error { return nil }
	return runner, output
}

func run(r *Runner, args ...string) error {
	app := &cli.Command{Name: "gourmet", Commands: r.register()}
	return app.Run(context.Background(), append([]string{"gourmet"}, args...))
}

func TestRunner(t *testing.T) {
	t.Run("NewRunner", func(t *testing.T) {
		t.Run("with all dependencies provided", func(t *testing.T) {
			config := shared.DefaultConfig()
			logger := shared.NewLogger(nil)
			output := &bytes.Buffer{}
			streamClient := &http.Client{}
			service := tu.NewMockRecipeService()
			api := &services.APIService{}

			runner := NewRunner(RunnerOpts{
				Config:       config,
				Logger:       logger,
				Output:       output,
				StreamClient: streamClient,
				Service:      service,
				API:          api,
			})

			if runner.config != config {
				t.Error("expected config to be set")
			}
			if runner.logger != logger {
				t.Error("expected logger to be set")
			}
			if runner.output != output {
				t.Error("expected output to be set")
			}
			if runner.streamClient != streamClient {
				t.Error("expected streamClient to be set")
			}
			if runner.service != service {
				t.Error("expected service to be set")
			}
			if runner.api != api {
				t.Error("expected api to be set")
			}
		})

		t.Run("with nil config uses defaults", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Config: nil})

			if runner.config == nil {
				t.Error("expected default config to be set")
			}
		})

		t.Run("with nil logger uses default", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Logger: nil})

			if runner.logger == nil {
				t.Error("expected default logger to be set")
			}
		})

		t.Run("with nil output uses stdout", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: nil})

			if runner.output != os.Stdout {
				t.Error("expected output to default to os.Stdout")
			}
		})

		t.Run("with nil service builds the gourmet client", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})

			if _, ok := runner.service.(*services.GourmetService); !ok {
				t.Errorf("expected *services.GourmetService, got %T", runner.service)
			}
			if runner.api == nil {
				t.Error("expected api to be set")
			}
			if runner.streamClient == nil {
				t.Error("expected stream client to be set")
			}
			if runner.db != nil {
				t.Error("expected database to be opened lazily")
			}
		})

		t.Run("with database attaches repositories", func(t *testing.T) {
			runner, _ := newTestRunner(t, tu.NewMockRecipeService(), RunnerOpts{})

			if runner.tokens == nil || runner.recipes == nil {
				t.Fatal("expected repositories to be attached")
			}
			if err := runner.store(); err != nil {
				t.Errorf("expected attached store to be usable, got %v", err)
			}
		})
	})

	t.Run("writeJSON", func(t *testing.T) {
		t.Run("writes formatted JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			err := runner.writeJSON(map[string]string{"key": "value"}, true)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			result := output.String()
			if !strings.Contains(result, `"key": "value"`) {
				t.Errorf("expected formatted JSON, got %s", result)
			}
			if !strings.HasSuffix(result, "\n") {
				t.Error("expected output to end with newline")
			}
		})

		t.Run("writes compact JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writeJSON(map[string]string{"key": "value"}, false); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			expected := `{"key":"value"}` + "\n"
			if output.String() != expected {
				t.Errorf("expected %q, got %q", expected, output.String())
			}
		})

		t.Run("handles marshal error with non-serializable data", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &bytes.Buffer{}})

			err := runner.writeJSON(make(chan int), false)
			if err == nil {
				t.Fatal("expected error for non-serializable data")
			}
			if !strings.Contains(err.Error(), "failed to marshal JSON") {
				t.Errorf("expected marshal error, got %v", err)
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &tu.FWriter{}})

			err := runner.writeJSON(map[string]string{"key": "value"}, false)
			if err == nil {
				t.Fatal("expected error from failing writer")
			}
			if !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})

		t.Run("handles newline write failure", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: tu.NewLimitedWriter(&bytes.Buffer{}, 1)})

			err := runner.writeJSON(map[string]string{"key": "value"}, false)
			if err == nil {
				t.Fatal("expected error writing newline")
			}
			if !strings.Contains(err.Error(), "failed to write newline") {
				t.Errorf("expected newline write error, got %v", err)
			}
		})
	})

	t.Run("writePlain", func(t *testing.T) {
		t.Run("writes plain text successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writePlain("hello %s", "world"); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if output.String() != "hello world" {
				t.Errorf("expected 'hello world', got %q", output.String())
			}
		})

		t.Run("writePlainln surrounds with newlines", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writePlainln("done"); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if output.String() != "\ndone\n" {
				t.Errorf("expected %q, got %q", "\ndone\n", output.String())
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &tu.FWriter{}})

			err := runner.writePlain("test")
			if err == nil {
				t.Fatal("expected error from failing writer")
			}
			if !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})
	})

	t.Run("register", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{})
		commands := runner.register()

		names := map[string]bool{}
		for i, cmd := range commands {
			if cmd == nil {
				t.Fatalf("command at index %d is nil", i)
			}
			names[cmd.Name] = true
		}

		for _, want := range []string{"setup", "auth", "recipes", "favorites", "cache", "api", "tui"} {
			if !names[want] {
				t.Errorf("expected %q to be registered", want)
			}
		}
	})

	t.Run("backoff", func(t *testing.T) {
		config := shared.DefaultConfig()
		config.Stream.MaxRetries = 5
		config.Stream.BaseDelayMS = 200
		config.Stream.MaxDelayMS = 800
		runner := NewRunner(RunnerOpts{Config: config})

		b := runner.backoff()
		if b.MaxRetries != 5 || b.Base != 200*time.Millisecond || b.Max != 800*time.Millisecond {
			t.Errorf("unexpected backoff %+v", b)
		}
	})
}

func TestAuthCommands(t *testing.T) {
	t.Run("login stores the session", func(t *testing.T) {
		svc := tu.NewMockRecipeService()
		runner, output := newTestRunner(t, svc, RunnerOpts{})

		if err := run(runner, "auth", "login", "-u", "alice", "-p", "secret"); err != nil {
			t.Fatalf("login failed: %v", err)
		}
		if !strings.Contains(output.String(), "Logged in as alice") {
			t.Errorf("unexpected output %q", output.String())
		}

		session, err := runner.tokens.LoadSession()
		if err != nil {
			t.Fatalf("failed to load session: %v", err)
		}
		if session.Token != "token-alice" || session.Username != "alice" {
			t.Errorf("unexpected session %+v", session)
		}
	})

	t.Run("login failure stores nothing", func(t *testing.T) {
		svc := tu.NewMockRecipeService()
		svc.Err = shared.ErrInvalidCredentials
		runner, _ := newTestRunner(t, svc, RunnerOpts{})

		err := run(runner, "auth", "login", "-u", "alice", "-p", "wrong")
		if !errors.Is(err, shared.ErrInvalidCredentials) {
			t.Fatalf("expected ErrInvalidCredentials, got %v", err)
		}

		session, _ := runner.tokens.LoadSession()
		if session.Authenticated() {
			t.Error("expected no stored session")
		}
	})

	t.Run("status reflects login and logout", func(t *testing.T) {
		svc := tu.NewMockRecipeService()
		runner, output := newTestRunner(t, svc, RunnerOpts{})

		if err := run(runner, "auth", "status"); err != nil {
			t.Fatalf("status failed: %v", err)
		}
		if !strings.Contains(output.String(), "Not logged in") {
			t.Errorf("expected not logged in, got %q", output.String())
		}

		if err := run(runner, "auth", "login", "-u", "alice", "-p", "secret"); err != nil {
			t.Fatalf("login failed: %v", err)
		}
		output.Reset()
		if err := run(runner, "auth", "status"); err != nil {
			t.Fatalf("status failed: %v", err)
		}
		if !strings.Contains(output.String(), "Logged in as alice") {
			t.Errorf("expected logged in, got %q", output.String())
		}

		if err := run(runner, "auth", "logout"); err != nil {
			t.Fatalf("logout failed: %v", err)
		}
		output.Reset()
		if err := run(runner, "auth", "status"); err != nil {
			t.Fatalf("status failed: %v", err)
		}
		if !strings.Contains(output.String(), "Not logged in") {
			t.Errorf("expected not logged in after logout, got %q", output.String())
		}
	})

	t.Run("import requires a source", func(t *testing.T) {
		runner, _ := newTestRunner(t, tu.NewMockRecipeService(), RunnerOpts{})

		err := run(runner, "auth", "import")
		if !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
	})

	t.Run("import stores the bearer token", func(t *testing.T) {
		svc := tu.NewMockRecipeService()
		svc.Username = "bob"
		runner, output := newTestRunner(t, svc, RunnerOpts{})

		curl := `curl 'https://gourmet.cours.quimerch.com/me' -H 'Authorization: Bearer jwt-xyz'`
		if err := run(runner, "auth", "import", "--curl", curl); err != nil {
			t.Fatalf("import failed: %v", err)
		}
		if svc.Token != "jwt-xyz" {
			t.Errorf("expected token to be installed, got %q", svc.Token)
		}
		if !strings.Contains(output.String(), "bob") {
			t.Errorf("expected username in output, got %q", output.String())
		}

		session, _ := runner.tokens.LoadSession()
		if session.Token != "jwt-xyz" || session.Username != "bob" {
			t.Errorf("unexpected session %+v", session)
		}
	})
}

func TestRecipesCommands(t *testing.T) {
	t.Run("list prints a table", func(t *testing.T) {
		runner, output := newTestRunner(t, tu.NewMockRecipeService(testRecipes()...), RunnerOpts{})

		if err := run(runner, "recipes", "list"); err != nil {
			t.Fatalf("list failed: %v", err)
		}

		result := output.String()
		if !strings.Contains(result, "Recipes (4)") {
			t.Errorf("expected header, got %q", result)
		}
		if !strings.Contains(result, "Lasagna ★") {
			t.Errorf("expected featured marker, got %q", result)
		}
	})

	t.Run("list filters by category", func(t *testing.T) {
		runner, output := newTestRunner(t, tu.NewMockRecipeService(testRecipes()...), RunnerOpts{})

		if err := run(runner, "recipes", "list", "--category", "breakfast"); err != nil {
			t.Fatalf("list failed: %v", err)
		}

		result := output.String()
		if !strings.Contains(result, "Pancakes") || !strings.Contains(result, "Granola") {
			t.Errorf("expected breakfast recipes, got %q", result)
		}
		if strings.Contains(result, "Lasagna") {
			t.Errorf("expected dinner to be filtered out, got %q", result)
		}
	})

	t.Run("list as json", func(t *testing.T) {
		runner, output := newTestRunner(t, tu.NewMockRecipeService(testRecipes()...), RunnerOpts{})

		if err := run(runner, "recipes", "list", "--format", "json"); err != nil {
			t.Fatalf("list failed: %v", err)
		}
		if !strings.Contains(output.String(), `"Pancakes"`) {
			t.Errorf("expected JSON document, got %q", output.String())
		}
	})

	t.Run("list rejects unknown format", func(t *testing.T) {
		runner, _ := newTestRunner(t, tu.NewMockRecipeService(testRecipes()...), RunnerOpts{})

		if err := run(runner, "recipes", "list", "--format", "pdf"); err == nil {
			t.Error("expected error for unknown format")
		}
	})

	t.Run("list falls back to cache when the service is down", func(t *testing.T) {
		svc := tu.NewMockRecipeService(testRecipes()...)
		runner, output := newTestRunner(t, svc, RunnerOpts{})

		if err := run(runner, "recipes", "list"); err != nil {
			t.Fatalf("list failed: %v", err)
		}

		svc.Err = shared.ErrServiceUnavailable
		output.Reset()
		if err := run(runner, "recipes", "list"); err != nil {
			t.Fatalf("expected cached listing, got %v", err)
		}
		if !strings.Contains(output.String(), "Pancakes") {
			t.Errorf("expected cached recipes, got %q", output.String())
		}
	})

	t.Run("show requires an id", func(t *testing.T) {
		runner, _ := newTestRunner(t, tu.NewMockRecipeService(testRecipes()...), RunnerOpts{})

		err := run(runner, "recipes", "show")
		if !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
	})

	t.Run("show prints one recipe", func(t *testing.T) {
		runner, output := newTestRunner(t, tu.NewMockRecipeService(testRecipes()...), RunnerOpts{})

		if err := run(runner, "recipes", "show", "--format", "json", "2"); err != nil {
			t.Fatalf("show failed: %v", err)
		}
		if !strings.Contains(output.String(), "Lasagna") {
			t.Errorf("expected recipe, got %q", output.String())
		}
	})

	t.Run("categories counts recipes", func(t *testing.T) {
		runner, output := newTestRunner(t, tu.NewMockRecipeService(testRecipes()...), RunnerOpts{})

		if err := run(runner, "recipes", "categories"); err != nil {
			t.Fatalf("categories failed: %v", err)
		}

		lines := strings.Split(strings.TrimSpace(output.String()), "\n")
		if len(lines) != 2 {
			t.Fatalf("expected 2 categories, got %q", output.String())
		}
		if fields := strings.Fields(lines[0]); fields[0] != "breakfast" || fields[1] != "2" {
			t.Errorf("unexpected first line %q", lines[0])
		}
	})

	t.Run("featured prints the flagged recipe", func(t *testing.T) {
		runner, output := newTestRunner(t, tu.NewMockRecipeService(testRecipes()...), RunnerOpts{})

		if err := run(runner, "recipes", "featured", "--format", "json"); err != nil {
			t.Fatalf("featured failed: %v", err)
		}
		if !strings.Contains(output.String(), "Lasagna") {
			t.Errorf("expected Lasagna, got %q", output.String())
		}
	})

	t.Run("featured with no recipes", func(t *testing.T) {
		runner, _ := newTestRunner(t, tu.NewMockRecipeService(), RunnerOpts{})

		err := run(runner, "recipes", "featured")
		if !errors.Is(err, shared.ErrRecipeNotFound) {
			t.Errorf("expected ErrRecipeNotFound, got %v", err)
		}
	})

	t.Run("open prints and opens the web URL", func(t *testing.T) {
		runner, output := newTestRunner(t, tu.NewMockRecipeService(testRecipes()...), RunnerOpts{})
		var opened string
		runner.openBrowser = func(url string) error {
			opened = url
			return nil
		}

		if err := run(runner, "recipes", "open", "1"); err != nil {
			t.Fatalf("open failed: %v", err)
		}
		if opened != "http://gourmet.test/recettes/1" {
			t.Errorf("unexpected URL %q", opened)
		}
		if !strings.Contains(output.String(), opened) {
			t.Errorf("expected URL in output, got %q", output.String())
		}
	})

	t.Run("export requires ids", func(t *testing.T) {
		runner, _ := newTestRunner(t, tu.NewMockRecipeService(testRecipes()...), RunnerOpts{})

		err := run(runner, "recipes", "export", "--output", t.TempDir())
		if !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
	})

	t.Run("export rejects ids with --all", func(t *testing.T) {
		runner, _ := newTestRunner(t, tu.NewMockRecipeService(testRecipes()...), RunnerOpts{})

		err := run(runner, "recipes", "export", "--all", "--output", t.TempDir(), "1")
		if !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})

	t.Run("export writes the named recipes", func(t *testing.T) {
		runner, output := newTestRunner(t, tu.NewMockRecipeService(testRecipes()...), RunnerOpts{})

		if err := run(runner, "recipes", "export", "--format", "json", "--output", t.TempDir(), "--rate", "0", "1", "3"); err != nil {
			t.Fatalf("export failed: %v", err)
		}
		if !strings.Contains(output.String(), "Exported:  2/2") {
			t.Errorf("expected 2 exports, got %q", output.String())
		}
	})

	t.Run("export writes every recipe", func(t *testing.T) {
		runner, output := newTestRunner(t, tu.NewMockRecipeService(testRecipes()...), RunnerOpts{})
		dir := t.TempDir()

		if err := run(runner, "recipes", "export", "--all", "--format", "json", "--output", dir, "--rate", "0"); err != nil {
			t.Fatalf("export failed: %v", err)
		}

		result := output.String()
		if !strings.Contains(result, "Export Complete") {
			t.Errorf("expected summary, got %q", result)
		}
		if !strings.Contains(result, "Exported:  4/4") {
			t.Errorf("expected 4 exports, got %q", result)
		}
	})
}

func TestRecipesLikes(t *testing.T) {
	t.Run("prints counts until --count", func(t *testing.T) {
		srv := tu.NewSSEServer(tu.SSEResponse{
			Chunks: []string{"event: count\ndata: 42\n\n", "event: count\ndata: 43\n\n"},
			Gap:    20 * time.Millisecond,
			Hold:   true,
		})
		defer srv.Close()

		svc := tu.NewMockRecipeService(testRecipes()...)
		svc.BaseURL = srv.URL
		runner, output := newTestRunner(t, svc, RunnerOpts{StreamClient: srv.Client()})

		if err := run(runner, "recipes", "likes", "--count", "2", "--timeout", "5s", "1"); err != nil {
			t.Fatalf("likes failed: %v", err)
		}

		result := output.String()
		if !strings.Contains(result, "♥ 42") || !strings.Contains(result, "♥ 43") {
			t.Errorf("expected both counts, got %q", result)
		}

		reqs := srv.Requests()
		if len(reqs) == 0 || reqs[0].URL.Path != "/recipes/1/stars" {
			t.Errorf("unexpected stream requests %v", reqs)
		}
	})

	t.Run("stream carries the stored bearer token", func(t *testing.T) {
		srv := tu.NewSSEServer(tu.SSEResponse{
			Chunks: []string{"event: count\ndata: 7\n\n"},
			Hold:   true,
		})
		defer srv.Close()

		svc := tu.NewMockRecipeService(testRecipes()...)
		svc.BaseURL = srv.URL
		runner, _ := newTestRunner(t, svc, RunnerOpts{StreamClient: srv.Client()})

		if err := run(runner, "auth", "login", "-u", "alice", "-p", "secret"); err != nil {
			t.Fatalf("login failed: %v", err)
		}
		if err := run(runner, "recipes", "likes", "--count", "1", "--timeout", "5s", "1"); err != nil {
			t.Fatalf("likes failed: %v", err)
		}

		reqs := srv.Requests()
		if len(reqs) == 0 {
			t.Fatal("server never received a request")
		}
		if got := reqs[0].Header.Get("Authorization"); got != "Bearer token-alice" {
			t.Errorf("expected bearer token, got %q", got)
		}
	})

	t.Run("anonymous stream sends no authorization", func(t *testing.T) {
		srv := tu.NewSSEServer(tu.SSEResponse{
			Chunks: []string{"event: count\ndata: 7\n\n"},
			Hold:   true,
		})
		defer srv.Close()

		svc := tu.NewMockRecipeService(testRecipes()...)
		svc.BaseURL = srv.URL
		runner, _ := newTestRunner(t, svc, RunnerOpts{StreamClient: srv.Client()})

		if err := run(runner, "recipes", "likes", "--count", "1", "--timeout", "5s", "1"); err != nil {
			t.Fatalf("likes failed: %v", err)
		}

		reqs := srv.Requests()
		if len(reqs) == 0 {
			t.Fatal("server never received a request")
		}
		if got := reqs[0].Header.Get("Authorization"); got != "" {
			t.Errorf("expected no authorization header, got %q", got)
		}
	})

	t.Run("gives up once retries are exhausted", func(t *testing.T) {
		srv := tu.NewSSEServer(tu.SSEResponse{Status: http.StatusInternalServerError})
		defer srv.Close()

		config := shared.DefaultConfig()
		config.Stream.MaxRetries = 1
		config.Stream.BaseDelayMS = 1
		config.Stream.MaxDelayMS = 5

		svc := tu.NewMockRecipeService(testRecipes()...)
		svc.BaseURL = srv.URL
		runner, _ := newTestRunner(t, svc, RunnerOpts{Config: config, StreamClient: srv.Client()})

		err := run(runner, "recipes", "likes", "--timeout", "5s", "1")
		if !errors.Is(err, shared.ErrRetriesExhausted) {
			t.Errorf("expected ErrRetriesExhausted, got %v", err)
		}
	})

	t.Run("timeout ends quietly", func(t *testing.T) {
		srv := tu.NewSSEServer(tu.SSEResponse{Hold: true})
		defer srv.Close()

		svc := tu.NewMockRecipeService(testRecipes()...)
		svc.BaseURL = srv.URL
		runner, output := newTestRunner(t, svc, RunnerOpts{StreamClient: srv.Client()})

		if err := run(runner, "recipes", "likes", "--timeout", "100ms", "1"); err != nil {
			t.Fatalf("expected nil on timeout, got %v", err)
		}
		if output.Len() != 0 {
			t.Errorf("expected no output, got %q", output.String())
		}
	})
}

func TestFavoritesCommands(t *testing.T) {
	t.Run("require a session", func(t *testing.T) {
		runner, _ := newTestRunner(t, tu.NewMockRecipeService(testRecipes()...), RunnerOpts{})

		for _, args := range [][]string{
			{"favorites", "list"},
			{"favorites", "add", "1"},
			{"favorites", "remove", "1"},
		} {
			if err := run(runner, args...); !errors.Is(err, shared.ErrNotAuthenticated) {
				t.Errorf("%v: expected ErrNotAuthenticated, got %v", args, err)
			}
		}
	})

	t.Run("add list and remove", func(t *testing.T) {
		svc := tu.NewMockRecipeService(testRecipes()...)
		runner, output := newTestRunner(t, svc, RunnerOpts{})

		if err := run(runner, "auth", "login", "-u", "alice", "-p", "secret"); err != nil {
			t.Fatalf("login failed: %v", err)
		}

		if err := run(runner, "favorites", "add", "2"); err != nil {
			t.Fatalf("add failed: %v", err)
		}
		if !svc.Favs["2"] {
			t.Error("expected recipe 2 to be a favorite")
		}

		output.Reset()
		if err := run(runner, "fav", "list"); err != nil {
			t.Fatalf("list failed: %v", err)
		}
		if !strings.Contains(output.String(), "Lasagna") || strings.Contains(output.String(), "Pancakes") {
			t.Errorf("unexpected favorites %q", output.String())
		}

		if err := run(runner, "favorites", "rm", "2"); err != nil {
			t.Fatalf("remove failed: %v", err)
		}
		if svc.Favs["2"] {
			t.Error("expected recipe 2 to be removed")
		}
	})
}

func TestCacheCommands(t *testing.T) {
	runner, output := newTestRunner(t, tu.NewMockRecipeService(testRecipes()...), RunnerOpts{})

	if err := run(runner, "cache", "recipes"); err != nil {
		t.Fatalf("cache recipes failed: %v", err)
	}
	if !strings.Contains(output.String(), "Cached 4 recipes") {
		t.Errorf("unexpected output %q", output.String())
	}

	output.Reset()
	if err := run(runner, "recipes", "list", "--offline"); err != nil {
		t.Fatalf("offline list failed: %v", err)
	}
	if !strings.Contains(output.String(), "Recipes (4)") {
		t.Errorf("expected cached recipes, got %q", output.String())
	}

	output.Reset()
	if err := run(runner, "cache", "clear"); err != nil {
		t.Fatalf("cache clear failed: %v", err)
	}
	if !strings.Contains(output.String(), "Removed 4 cached recipes") {
		t.Errorf("unexpected output %q", output.String())
	}
}

func TestSetupCommands(t *testing.T) {
	t.Run("config writes the example file once", func(t *testing.T) {
		runner, output := newTestRunner(t, tu.NewMockRecipeService(), RunnerOpts{})
		path := filepath.Join(t.TempDir(), "config.toml")

		if err := run(runner, "setup", "config", "--config", path); err != nil {
			t.Fatalf("setup config failed: %v", err)
		}
		tu.AssertFileExists(t, path)
		if content := tu.MustReadFile(t, path); !strings.Contains(content, "[stream]") {
			t.Errorf("expected stream section, got %q", content)
		}
		if !strings.Contains(output.String(), path) {
			t.Errorf("expected path in output, got %q", output.String())
		}

		if err := run(runner, "setup", "config", "--config", path); err == nil {
			t.Error("expected error when config already exists")
		}
	})

	t.Run("database migrates and rolls back", func(t *testing.T) {
		runner, output := newTestRunner(t, tu.NewMockRecipeService(), RunnerOpts{})
		dir := t.TempDir()
		dbPath := filepath.Join(dir, "gourmet.db")
		configPath := filepath.Join(dir, "config.toml")

		content := "[database]\npath = \"" + filepath.ToSlash(dbPath) + "\"\n"
		if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}

		if err := run(runner, "setup", "database", "--config", configPath); err != nil {
			t.Fatalf("setup database failed: %v", err)
		}
		tu.AssertFileExists(t, dbPath)
		if !strings.Contains(output.String(), "Database ready") {
			t.Errorf("unexpected output %q", output.String())
		}

		output.Reset()
		if err := run(runner, "setup", "database", "--config", configPath, "--rollback"); err != nil {
			t.Fatalf("rollback failed: %v", err)
		}
		if !strings.Contains(output.String(), "Rolled back") {
			t.Errorf("unexpected output %q", output.String())
		}
	})
}

func TestAPICommands(t *testing.T) {
	newServer := func(t *testing.T) *httptest.Server {
		mux := http.NewServeMux()
		mux.HandleFunc("GET /recipes/1", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"id":"1","name":"Pancakes"}`))
		})
		mux.HandleFunc("GET /boom", func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, `{"message":"kaput"}`, http.StatusBadGateway)
		})
		mux.HandleFunc("POST /echo", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			io.Copy(w, r.Body)
		})
		srv := httptest.NewServer(mux)
		t.Cleanup(srv.Close)
		return srv
	}

	t.Run("get prints the JSON body", func(t *testing.T) {
		srv := newServer(t)
		runner, output := newTestRunner(t, tu.NewMockRecipeService(), RunnerOpts{
			API: services.NewAPIService(srv.URL, srv.Client()),
		})

		if err := run(runner, "api", "get", "/recipes/1"); err != nil {
			t.Fatalf("get failed: %v", err)
		}
		if !strings.Contains(output.String(), `"name": "Pancakes"`) {
			t.Errorf("expected pretty JSON, got %q", output.String())
		}
	})

	t.Run("get returns status errors", func(t *testing.T) {
		srv := newServer(t)
		runner, _ := newTestRunner(t, tu.NewMockRecipeService(), RunnerOpts{
			API: services.NewAPIService(srv.URL, srv.Client()),
		})

		err := run(runner, "api", "get", "/boom")
		if !errors.Is(err, shared.ErrServiceUnavailable) {
			t.Errorf("expected ErrServiceUnavailable, got %v", err)
		}
	})

	t.Run("get surfaces transport errors", func(t *testing.T) {
		client := &http.Client{Transport: tu.NewMockRoundTripper(nil, errors.New("connection refused"))}
		runner, _ := newTestRunner(t, tu.NewMockRecipeService(), RunnerOpts{
			API: services.NewAPIService("http://gourmet.test", client),
		})

		if err := run(runner, "api", "get", "/recipes"); err == nil {
			t.Error("expected transport error")
		}
	})

	t.Run("post validates and sends the body", func(t *testing.T) {
		srv := newServer(t)
		runner, output := newTestRunner(t, tu.NewMockRecipeService(), RunnerOpts{
			API: services.NewAPIService(srv.URL, srv.Client()),
		})

		err := run(runner, "api", "post", "--data", "{not json", "/echo")
		if !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}

		if err := run(runner, "api", "post", "--data", `{"ok":true}`, "/echo"); err != nil {
			t.Fatalf("post failed: %v", err)
		}
		if !strings.Contains(output.String(), `"ok": true`) {
			t.Errorf("expected echoed JSON, got %q", output.String())
		}
	})
}
