// Command fitctl drives workout sessions against the fitness API from a terminal.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"

	"github.com/Namne2k3/fitness-web-app-sub001/internal/client"

	flag "github.com/spf13/pflag"
)

const defaultServer = "http://localhost:8080/api/v1"

type command struct {
	usage string
	run   func(ctx context.Context, c *client.Client, args []string) (interface{}, error)
}

var commands = map[string]command{
	"register":          {"register --name N --email E --password P", runRegister},
	"login":             {"login --email E --password P", runLogin},
	"logout":            {"logout", runLogout},
	"start":             {"start WORKOUT_ID", runStart},
	"active":            {"active", runActive},
	"show":              {"show SESSION_ID", runShow},
	"log-set":           {"log-set SESSION_ID --exercise I --set I [--reps --weight --duration --rest --notes]", runLogSet},
	"complete-exercise": {"complete-exercise SESSION_ID --exercise I [--calories KCAL]", runCompleteExercise},
	"pause":             {"pause SESSION_ID", sessionAction((*client.Client).PauseSession)},
	"resume":            {"resume SESSION_ID", sessionAction((*client.Client).ResumeSession)},
	"complete":          {"complete SESSION_ID [--rating R --mood M --notes N]", runComplete},
	"stop":              {"stop SESSION_ID", sessionAction((*client.Client).StopSession)},
	"annotate":          {"annotate SESSION_ID [--rating R --mood M --notes N]", runAnnotate},
	"delete":            {"delete SESSION_ID", runDelete},
	"history":           {"history [--status S ... --from DATE --to DATE --page P --limit L]", runHistory},
	"stats":             {"stats", runStats},
	"exercises":         {"exercises [--search Q --category C --page P --limit L]", runExercises},
	"workouts":          {"workouts [--page P --limit L]", runWorkouts},
}

func main() {
	log.SetFlags(0)

	global := flag.NewFlagSet("fitctl", flag.ContinueOnError)
	global.SetInterspersed(false)
	server := global.String("server", envOr("FITCTL_SERVER", defaultServer), "API base URL")
	tokenFile := global.String("token-file", envOr("FITCTL_TOKEN_FILE", defaultTokenFile()), "where login tokens are kept")
	global.Usage = usage(global)
	if err := global.Parse(os.Args[1:]); err != nil {
		os.Exit(2)
	}

	args := global.Args()
	if len(args) == 0 {
		global.Usage()
		os.Exit(2)
	}
	cmd, ok := commands[args[0]]
	if !ok {
		log.Printf("unknown command %q", args[0])
		global.Usage()
		os.Exit(2)
	}

	tokens, err := loadTokens(*tokenFile)
	if err != nil {
		log.Fatalf("ERROR: reading %s: %v", *tokenFile, err)
	}
	c := client.New(*server,
		client.WithTokens(tokens),
		client.WithTokenListener(func(t client.Tokens) {
			if err := saveTokens(*tokenFile, t); err != nil {
				log.Printf("WARN: could not persist tokens: %v", err)
			}
		}),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	out, err := cmd.run(ctx, c, args[1:])
	if err != nil {
		stop()
		fail(args[0], err)
	}
	if out != nil {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(out); err != nil {
			log.Fatalf("ERROR: %v", err)
		}
	}
}

func fail(name string, err error) {
	var apiErr *client.APIError
	switch {
	case errors.Is(err, flag.ErrHelp):
		os.Exit(0)
	case errors.Is(err, client.ErrInvalidStateTransition) && errors.As(err, &apiErr):
		log.Printf("ERROR: %s: session is %s, cannot %s", name, apiErr.CurrentStatus, apiErr.Operation)
	case errors.Is(err, client.ErrUnauthorized):
		log.Printf("ERROR: %s: not logged in or session expired, run `fitctl login`", name)
	default:
		log.Printf("ERROR: %s: %v", name, err)
	}
	os.Exit(1)
}

func usage(fs *flag.FlagSet) func() {
	return func() {
		fmt.Fprintf(os.Stderr, "Usage: fitctl [global flags] COMMAND [args]\n\nCommands:\n")
		names := make([]string, 0, len(commands))
		for name := range commands {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Fprintf(os.Stderr, "  %s\n", commands[name].usage)
		}
		fmt.Fprintf(os.Stderr, "\nGlobal flags:\n%s", fs.FlagUsages())
	}
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func defaultTokenFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".fitctl-tokens.json"
	}
	return filepath.Join(dir, "fitctl", "tokens.json")
}

// loadTokens treats a missing file as logged out.
func loadTokens(path string) (client.Tokens, error) {
	var t client.Tokens
	raw, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return t, nil
	}
	if err != nil {
		return t, err
	}
	return t, json.Unmarshal(raw, &t)
}

func saveTokens(path string, t client.Tokens) error {
	if t.AccessToken == "" && t.RefreshToken == "" {
		err := os.Remove(path)
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	raw, err := json.Marshal(t)
	if err != nil {
		return err
	}
	return os.WriteFile(path, raw, 0o600)
}
