package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/inkwell/engage/internal/api"
	"github.com/inkwell/engage/internal/app"
	"github.com/inkwell/engage/internal/credential"
	"github.com/inkwell/engage/internal/engage"
	"github.com/inkwell/engage/internal/model"
	"github.com/inkwell/engage/internal/store"
	appsync "github.com/inkwell/engage/internal/sync"
)

func main() {
	configPath := flag.String("config", model.DefaultConfigPath(), "path to the configuration file")
	baseURL := flag.String("api", "", "marketplace API base URL (overrides config)")
	flag.Parse()

	cfg, err := model.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error loading config: %v\n", err)
		os.Exit(1)
	}
	if *baseURL != "" {
		cfg.API.BaseURL = *baseURL
	}
	if cfg.API.BaseURL == "" {
		fmt.Fprintln(os.Stderr, "no API base URL configured; set api.base_url in the config file or pass -api")
		os.Exit(1)
	}

	archivePath := cfg.Archive.Path
	if archivePath == "" {
		archivePath = model.DefaultArchivePath()
	}
	if err := os.MkdirAll(filepath.Dir(archivePath), 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "error creating archive directory: %v\n", err)
		os.Exit(1)
	}
	archive, err := store.NewArchive(archivePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error opening archive: %v\n", err)
		os.Exit(1)
	}
	defer archive.Close()

	client := api.NewClient(cfg.API.BaseURL,
		api.WithTimeout(time.Duration(cfg.API.TimeoutSec)*time.Second),
		api.WithSessionToken(sessionToken()),
	)

	svc := engage.New(client, engage.Config{
		Debounce: time.Duration(cfg.Mutation.DebounceMs) * time.Millisecond,
		Polling: appsync.Config{
			Interval:    time.Duration(cfg.Polling.IntervalSec) * time.Second,
			RetryDelay:  time.Duration(cfg.Polling.RetryDelaySec) * time.Second,
			MaxFailures: cfg.Polling.MaxFailures,
			Archive:     archive,
		},
	})

	p := tea.NewProgram(app.New(svc), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "error running program: %v\n", err)
		os.Exit(1)
	}
}

// sessionToken resolves the API credential: the environment variable
// wins, then the system keyring. An empty token leaves the client
// unauthenticated; reads still work where the server allows it.
func sessionToken() string {
	if token := os.Getenv("ENGAGE_SESSION_TOKEN"); token != "" {
		return token
	}
	token, err := credential.Get(credential.SessionTokenKey)
	if err != nil {
		return ""
	}
	return token
}
