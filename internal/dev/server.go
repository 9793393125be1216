package dev

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/routegen-dev/routegen/internal/config"
	"github.com/routegen-dev/routegen/pkg/router"
)

// ServerOptions configures the development server.
type ServerOptions struct {
	// Config is the project configuration.
	Config *config.Config

	// Verbose enables verbose logging.
	Verbose bool

	// OnPassStart is called when a generation pass starts.
	OnPassStart func()

	// OnPassComplete is called when a generation pass completes.
	OnPassComplete func(result PassResult)
}

// Server is the development server. It watches the pages directory,
// regenerates the route table on change, and serves a route inspector.
type Server struct {
	config       *config.Config
	options      ServerOptions
	driver       *Driver
	watcher      *Watcher
	reloadServer *ReloadServer
	metrics      *Metrics
	httpServer   *http.Server

	mu        sync.Mutex
	running   bool
	lastTable *router.RouterTable
	lastError string
}

// NewServer creates a new development server.
func NewServer(options ServerOptions) (*Server, error) {
	cfg := options.Config

	metrics := NewMetrics()

	driver := NewDriver(DriverConfig{
		RoutesDir:   cfg.RoutesPath(),
		OutputPath:  cfg.OutputPath(),
		PackageName: cfg.Package,
		Metrics:     metrics,
	})

	watcher, err := NewWatcher(WatcherConfig{
		Paths:    cfg.WatchPaths(),
		Ignore:   append(DefaultIgnore, cfg.Dev.Ignore...),
		Debounce: 100 * time.Millisecond,
	})
	if err != nil {
		return nil, err
	}

	return &Server{
		config:       cfg,
		options:      options,
		driver:       driver,
		watcher:      watcher,
		reloadServer: NewReloadServer(),
		metrics:      metrics,
	}, nil
}

// Start runs the initial pass, starts the watcher, and serves HTTP until the
// context is cancelled.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = true
	s.mu.Unlock()

	s.log("Generating...")
	s.runPass(ctx)

	s.watcher.OnChange(func(changes []Change) {
		for _, change := range changes {
			s.log("Changed: %s", change.Path)
		}
		s.runPass(ctx)
	})
	go s.watcher.Start(ctx)

	s.httpServer = &http.Server{
		Addr:    s.config.DevAddress(),
		Handler: s.routes(),
	}

	s.log("Dev server running at %s", s.config.DevURL())

	errCh := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		s.Stop()
		return nil
	case err := <-errCh:
		s.Stop()
		return err
	}
}

// Stop stops the development server.
func (s *Server) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}

	s.running = false
	s.watcher.Stop()
	s.driver.Stop()
	s.reloadServer.Close()

	if s.httpServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.httpServer.Shutdown(ctx)
	}
}

// runPass runs one generation pass and fans the result out to the browser
// clients and callbacks.
func (s *Server) runPass(ctx context.Context) {
	if s.options.OnPassStart != nil {
		s.options.OnPassStart()
	}

	result := s.driver.Generate(ctx)

	if s.options.OnPassComplete != nil {
		s.options.OnPassComplete(result)
	}

	if result.Superseded {
		return
	}

	if !result.Success {
		s.logError("Generation failed: %v", result.Error)
		s.mu.Lock()
		s.lastError = result.Error.Error()
		s.mu.Unlock()
		s.reloadServer.NotifyError(result.Error.Error())
		return
	}

	s.mu.Lock()
	s.lastTable = result.Table
	s.lastError = ""
	s.mu.Unlock()

	if result.Written {
		s.log("Regenerated %s in %s", s.config.Output, result.Duration.Round(time.Millisecond))
	} else {
		s.log("Table unchanged (%s)", result.Duration.Round(time.Millisecond))
	}

	s.reloadServer.ClearError()
	s.reloadServer.NotifyRoutes()
	s.metrics.RecordReloadClients(s.reloadServer.ClientCount())
}

// routes builds the dev server HTTP mux.
func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	r.Get("/ws", s.reloadServer.HandleWebSocket)
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/routes", s.handleRoutes)
	r.Get("/routes.json", s.handleRoutesJSON)
	r.Get("/", func(w http.ResponseWriter, req *http.Request) {
		http.Redirect(w, req, "/routes", http.StatusFound)
	})

	return r
}

// routesView is the JSON shape served by /routes.json.
type routesView struct {
	MaxParamDepth int                         `json:"maxParamDepth"`
	Lengths       []int                       `json:"lengths"`
	Modules       map[string]router.ModuleRef `json:"modules"`
	MetaPages     []string                    `json:"metaPages,omitempty"`
	Error         string                      `json:"error,omitempty"`
}

func (s *Server) snapshot() routesView {
	s.mu.Lock()
	table := s.lastTable
	lastError := s.lastError
	s.mu.Unlock()

	view := routesView{Error: lastError}
	if table == nil {
		return view
	}

	view.MaxParamDepth = table.MaxParamDepth
	view.Modules = table.Modules
	view.MetaPages = table.MetaPages
	for l := range table.Forest {
		view.Lengths = append(view.Lengths, l)
	}
	sort.Ints(view.Lengths)
	return view
}

func (s *Server) handleRoutesJSON(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(s.snapshot())
}

func (s *Server) handleRoutes(w http.ResponseWriter, _ *http.Request) {
	view := s.snapshot()

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprintf(w, `<!DOCTYPE html>
<html>
<head><title>routegen</title></head>
<body style="font-family: monospace; padding: 40px; background: #1a1a1a; color: #fff;">
<h1>Route table</h1>
`)
	if view.Error != "" {
		fmt.Fprintf(w, `<pre style="color:#ff5555;">%s</pre>`, view.Error)
	}
	fmt.Fprintf(w, "<p>Length classes: %v</p>\n", view.Lengths)
	fmt.Fprintf(w, "<p>Max parameter depth: %d</p>\n", view.MaxParamDepth)
	if len(view.Modules) > 0 {
		fmt.Fprintf(w, "<h2>Modules</h2>\n<ul>\n")
		ids := make([]string, 0, len(view.Modules))
		for id := range view.Modules {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		for _, id := range ids {
			ref := view.Modules[id]
			fmt.Fprintf(w, "<li>%s → %s (%s)</li>\n", id, ref.Location, ref.Role)
		}
		fmt.Fprintf(w, "</ul>\n")
	}
	fmt.Fprint(w, reloadClientScript)
	fmt.Fprint(w, "</body>\n</html>\n")
}

// log logs a timestamped message.
func (s *Server) log(format string, args ...any) {
	timestamp := time.Now().Format("15:04:05")
	fmt.Printf("[%s] %s\n", timestamp, fmt.Sprintf(format, args...))
}

// logError logs an error message.
func (s *Server) logError(format string, args ...any) {
	timestamp := time.Now().Format("15:04:05")
	fmt.Fprintf(os.Stderr, "[%s] %s%s%s\n", timestamp, "\033[31m", fmt.Sprintf(format, args...), "\033[0m")
}
