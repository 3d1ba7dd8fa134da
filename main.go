// Command pathviz starts the A* path visualizer server.
//
// It supports two modes:
//  1. "server" (default) – runs the HTTP server exposing REST API, WebSocket, metrics and an /mcp HTTP endpoint
//  2. "stdio-mcp" – runs an MCP stdio server and spins up an internal HTTP API if none is available
//
// Flags control host/port, layout directory, search pacing, debug logging,
// version output, and optional ngrok tunneling for easy external access during development.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/mark3labs/mcp-go/server"
	"golang.ngrok.com/ngrok"
	ngrokConfig "golang.ngrok.com/ngrok/config"

	"github.com/wricardo/mcp-training/pathviz/api"
	"github.com/wricardo/mcp-training/pathviz/game/config"
	"github.com/wricardo/mcp-training/pathviz/game/metrics"
	"github.com/wricardo/mcp-training/pathviz/game/service"
	"github.com/wricardo/mcp-training/pathviz/game/session"
	"github.com/wricardo/mcp-training/pathviz/transport/mcp"
	"github.com/wricardo/mcp-training/pathviz/transport/websocket"
)

// Version information
const (
	Version = "1.0.0"
	AppName = "A* Path Visualizer Server"
)

// Configuration flags control how the server starts and which services are enabled.
var (
	port          = flag.Int("port", 8080, "HTTP server port")
	host          = flag.String("host", "localhost", "HTTP server host")
	configDir     = flag.String("config-dir", getConfigDirDefault(), "Directory containing grid layouts")
	defaultConfig = flag.String("default-config", "", "Layout used when a session names none (default: blank)")
	stepDelay     = flag.Duration("step-delay", 5*time.Millisecond, "Pause after each streamed search frame (0 disables pacing)")
	sessionTTL    = flag.Duration("session-ttl", 24*time.Hour, "Remove sessions idle for longer than this")
	debug         = flag.Bool("debug", false, "Enable debug logging")
	version       = flag.Bool("version", false, "Show version information")
	ngrokEnabled  = flag.Bool("ngrok", false, "Enable ngrok tunnel")
	ngrokAuth     = flag.String("ngrok-auth", "", "Ngrok auth token (or use NGROK_AUTHTOKEN env var)")
	ngrokDomain   = flag.String("ngrok-domain", "", "Custom ngrok domain (optional)")
)

// getConfigDirDefault returns the default layout directory.
// It first honors the CONFIG_DIR environment variable, then falls back to "configs".
func getConfigDirDefault() string {
	if configDir := os.Getenv("CONFIG_DIR"); configDir != "" {
		return configDir
	}
	return "configs"
}

func init() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [OPTIONS] [MODE]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "%s v%s\n\n", AppName, Version)
		fmt.Fprintf(os.Stderr, "Available modes:\n")
		fmt.Fprintf(os.Stderr, "  server, http     Run HTTP server with API, WebSocket, and MCP endpoint (default)\n")
		fmt.Fprintf(os.Stderr, "  stdio-mcp        Run MCP stdio server with internal HTTP server\n")
		fmt.Fprintf(os.Stderr, "  mcp-stdio        Alias for stdio-mcp\n")
		fmt.Fprintf(os.Stderr, "  mcp              Alias for stdio-mcp\n")
		fmt.Fprintf(os.Stderr, "\nOptions:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s                       # Run HTTP server on default port 8080\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -port 9090            # Run HTTP server on port 9090\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -step-delay 20ms      # Slow the streamed search down\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s stdio-mcp             # Run MCP stdio server\n", os.Args[0])
	}
}

// main parses flags, initializes services, and starts the selected mode.
func main() {
	// Load .env file if it exists (ignore error if not found)
	if err := godotenv.Load(); err != nil {
		// Only log if it's not a "file not found" error
		if !os.IsNotExist(err) {
			log.Printf("Warning: Error loading .env file: %v", err)
		}
	} else {
		log.Println("Loaded environment variables from .env file")
	}

	flag.Parse()

	// Show version if requested
	if *version {
		fmt.Printf("%s v%s\n", AppName, Version)
		os.Exit(0)
	}

	// Setup logging
	if *debug {
		log.SetFlags(log.LstdFlags | log.Lshortfile)
	} else {
		log.SetFlags(log.LstdFlags)
	}

	// Determine mode from command
	args := flag.Args()
	mode := "server" // default
	if len(args) > 0 {
		mode = args[0]
	}

	log.Printf("Starting %s v%s (mode: %s, step delay: %s)", AppName, Version, mode, *stepDelay)

	// Initialize services
	visualizerService, err := initializeServices()
	if err != nil {
		log.Fatalf("Failed to initialize services: %v", err)
	}

	switch mode {
	case "stdio-mcp", "mcp-stdio", "mcp":
		// Run MCP stdio server with internal HTTP server
		runStdioMCPWithInternalServer(visualizerService)
		return

	case "server", "http":
		// Run HTTP server with API, WebSocket, and MCP endpoint
		runHTTPServer(visualizerService)

	default:
		log.Fatalf("Unknown mode: %s. Use 'server' (default) or 'stdio-mcp'", mode)
	}
}

// runHTTPServer serves the API, WebSocket and /mcp on the configured address
// until SIGINT/SIGTERM, plus an ngrok tunnel when one is configured.
func runHTTPServer(visualizerService service.VisualizerService) {
	addr := fmt.Sprintf("%s:%d", *host, *port)

	hub := websocket.NewHub()
	go hub.Run()

	mcpClient := mcp.NewClient("http://" + addr)
	handler := newRootHandler(api.NewServer(visualizerService, hub), mcpClient.GetMCPServer())

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second, // synchronous runs stream before replying
		IdleTimeout:  60 * time.Second,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		logEndpoints("http://"+addr, "ws://"+addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP server failed: %v", err)
		}
	}()

	if tunnel := resolveTunnel(*ngrokEnabled, *ngrokAuth, *ngrokDomain, os.Getenv); tunnel.Enabled {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := serveTunnel(ctx, tunnel, handler); err != nil {
				log.Printf("Ngrok tunnel: %v", err)
			}
		}()
	}

	sig := <-stop
	log.Printf("Received signal: %v. Shutting down...", sig)
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	}

	wg.Wait()
	log.Println("Server stopped")
}

func logEndpoints(httpBase, wsBase string) {
	log.Printf("REST API: %s/api", httpBase)
	log.Printf("WebSocket: %s/ws?session=<session_id>", wsBase)
	log.Printf("MCP endpoint: %s/mcp", httpBase)
	log.Printf("Metrics: %s/metrics", httpBase)
}

// newRootHandler mounts the API at / and the JSON-RPC MCP endpoint at /mcp
func newRootHandler(apiHandler http.Handler, mcpServer *server.MCPServer) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/", apiHandler)
	mux.HandleFunc("/mcp", mcpHTTPHandler(mcpServer))
	return mux
}

// mcpHTTPHandler answers one JSON-RPC message per POST
func mcpHTTPHandler(mcpServer *server.MCPServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "Failed to read request", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		responseData, err := json.Marshal(mcpServer.HandleMessage(r.Context(), body))
		if err != nil {
			http.Error(w, "Failed to marshal response", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write(responseData)
	}
}

// tunnelSettings is the resolved ngrok configuration
type tunnelSettings struct {
	Enabled   bool
	AuthToken string
	Domain    string
}

// resolveTunnel merges the ngrok flags with NGROK_ENABLED, NGROK_AUTHTOKEN
// (or NGROK_AUTH_TOKEN) and NGROK_DOMAIN; flags win. A tunnel without a
// token stays disabled.
func resolveTunnel(enabled bool, authToken, domain string, getenv func(string) string) tunnelSettings {
	if !enabled {
		v := getenv("NGROK_ENABLED")
		enabled = v == "true" || v == "1"
	}
	if !enabled {
		return tunnelSettings{}
	}

	if authToken == "" {
		authToken = getenv("NGROK_AUTHTOKEN")
	}
	if authToken == "" {
		authToken = getenv("NGROK_AUTH_TOKEN")
	}
	if authToken == "" {
		log.Println("WARNING: Ngrok enabled but no auth token provided (use --ngrok-auth, NGROK_AUTHTOKEN, or NGROK_AUTH_TOKEN env var)")
		return tunnelSettings{}
	}

	if domain == "" {
		domain = getenv("NGROK_DOMAIN")
	}
	return tunnelSettings{Enabled: true, AuthToken: authToken, Domain: domain}
}

// serveTunnel exposes handler through ngrok until ctx is cancelled
func serveTunnel(ctx context.Context, settings tunnelSettings, handler http.Handler) error {
	log.Println("Starting ngrok tunnel...")

	endpoint := ngrokConfig.HTTPEndpoint()
	if settings.Domain != "" {
		endpoint = ngrokConfig.HTTPEndpoint(ngrokConfig.WithDomain(settings.Domain))
		log.Printf("Using custom ngrok domain: %s", settings.Domain)
	}

	tun, err := ngrok.Listen(ctx, endpoint, ngrok.WithAuthtoken(settings.AuthToken))
	if err != nil {
		return fmt.Errorf("failed to start tunnel: %w", err)
	}
	defer func() {
		if err := tun.Close(); err != nil {
			log.Printf("Failed to close ngrok tunnel: %v", err)
		}
	}()

	log.Printf("🚀 Ngrok tunnel established: %s", tun.URL())
	logEndpoints(tun.URL(), tun.URL())

	if err := http.Serve(tun, handler); err != nil && err != http.ErrServerClosed {
		return err
	}
	log.Println("Ngrok tunnel closed")
	return nil
}

// initializeServices wires session/config managers and the visualizer service.
// It also starts a background cleanup routine to prune stale sessions.
func initializeServices() (service.VisualizerService, error) {
	configManager, err := config.NewManager(*configDir)
	if err != nil {
		return nil, fmt.Errorf("failed to create config manager: %w", err)
	}

	if *defaultConfig != "" {
		if err := configManager.SetDefault(*defaultConfig); err != nil {
			return nil, fmt.Errorf("failed to set default layout: %w", err)
		}
	}

	sessionManager := session.NewManager()

	visualizerService := service.NewVisualizerService(sessionManager, configManager, *stepDelay)

	// Start session cleanup routine
	go sessionCleanupRoutine(sessionManager, *sessionTTL)

	return visualizerService, nil
}

// sessionCleanupRoutine periodically removes sessions that have not been accessed
// within the provided retention window. Sessions with a run in flight are kept.
func sessionCleanupRoutine(manager *session.Manager, maxAge time.Duration) {
	ticker := time.NewTicker(1 * time.Hour)
	defer ticker.Stop()

	for range ticker.C {
		removed := manager.CleanupExpiredSessions(maxAge)
		if removed > 0 {
			log.Printf("Cleaned up %d expired sessions", removed)
			metrics.SetActiveSessions(manager.Count())
		}
	}
}

// runStdioMCPWithInternalServer runs an MCP stdio server. It reuses the API at
// the configured host and port when one answers /health; otherwise it starts
// an internal API on a random loopback port.
func runStdioMCPWithInternalServer(visualizerService service.VisualizerService) {
	baseURL := fmt.Sprintf("http://%s:%d", *host, *port)
	log.Printf("Checking for external API server at %s...", baseURL)

	if apiAvailable(baseURL, &http.Client{Timeout: 2 * time.Second}) {
		log.Printf("External API server found at %s, using it for MCP", baseURL)
	} else {
		log.Printf("No external API server found, starting internal HTTP server")
		internalURL, httpServer, err := startInternalAPI(visualizerService)
		if err != nil {
			log.Fatalf("Failed to start internal API: %v", err)
		}
		defer httpServer.Close()
		baseURL = internalURL
	}

	mcpClient := mcp.NewClient(baseURL)
	log.Printf("MCP stdio server ready (API at %s)", baseURL)

	if err := server.ServeStdio(mcpClient.GetMCPServer()); err != nil {
		log.Fatalf("MCP stdio server error: %v", err)
	}
}

// apiAvailable reports whether a visualizer API answers /health at baseURL
func apiAvailable(baseURL string, client *http.Client) bool {
	resp, err := client.Get(baseURL + "/health")
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// startInternalAPI serves the API on a random loopback port. The listener is
// bound before it returns, so the URL is usable immediately.
func startInternalAPI(visualizerService service.VisualizerService) (string, *http.Server, error) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return "", nil, fmt.Errorf("failed to get available port: %w", err)
	}

	hub := websocket.NewHub()
	go hub.Run()

	httpServer := &http.Server{Handler: api.NewServer(visualizerService, hub)}
	go func() {
		if err := httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
			log.Printf("Internal HTTP server error: %v", err)
		}
	}()

	baseURL := "http://" + listener.Addr().String()
	log.Printf("Internal HTTP server for MCP stdio on %s", baseURL)
	return baseURL, httpServer, nil
}
