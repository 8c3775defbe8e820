// Command sqlexplorer-server runs the SQLite explorer MCP server, either
// over stdio or as an HTTP service. The database is created and seeded
// with demo data on first start.
package main

import (
	"context"
	"flag"
	"os"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/agentground/agentground"
	"github.com/agentground/agentground/internal/envcfg"
	"github.com/agentground/agentground/internal/httpserve"
	"github.com/agentground/agentground/internal/logging"
	"github.com/agentground/agentground/servers/sqlexplorer"
)

func main() {
	stdio := flag.Bool("stdio", false, "serve over stdio instead of HTTP")
	addr := flag.String("addr", "", "listen address (overrides LISTEN_ADDR)")
	dbPath := flag.String("db", "", "SQLite database path (overrides SQLITE_PATH)")
	flag.Parse()

	envcfg.Load()
	logging.Configure(logging.Config{Service: "sqlexplorer-server"})
	log := logging.WithComponent("main")

	path := *dbPath
	if path == "" {
		path = envcfg.String("SQLITE_PATH", "explorer.db")
	}
	store, err := sqlexplorer.NewStore(path)
	if err != nil {
		log.Error().Err(err).Str("path", path).Msg("failed to open database")
		os.Exit(1)
	}
	defer store.Close()

	server := sqlexplorer.NewServer(store, logging.WithComponent("sqlexplorer")).
		MCPServer(agentground.Version)

	ctx := context.Background()
	if *stdio {
		if err := server.Run(ctx, &mcp.StdioTransport{}); err != nil {
			log.Error().Err(err).Msg("stdio server failed")
			os.Exit(1)
		}
		return
	}

	listen := *addr
	if listen == "" {
		listen = envcfg.String("LISTEN_ADDR", ":9000")
	}
	cfg := httpserve.Config{
		Addr:         listen,
		RateLimitRPS: envcfg.Int("RATE_LIMIT_RPS", 20),
		Logger:       logging.WithComponent("http"),
	}
	log.Info().Str("addr", listen).Str("db", path).Msg("starting sqlexplorer server")
	if err := httpserve.ListenAndServe(ctx, cfg, httpserve.NewRouter(cfg, server)); err != nil {
		log.Error().Err(err).Msg("server failed")
		os.Exit(1)
	}
}
