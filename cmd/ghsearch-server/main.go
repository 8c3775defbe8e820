// Command ghsearch-server runs the GitHub user search MCP server, either
// over stdio or as an HTTP service.
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
	"github.com/agentground/agentground/servers/ghsearch"
)

func main() {
	stdio := flag.Bool("stdio", false, "serve over stdio instead of HTTP")
	addr := flag.String("addr", "", "listen address (overrides LISTEN_ADDR)")
	flag.Parse()

	envcfg.Load()
	logging.Configure(logging.Config{Service: "ghsearch-server"})
	log := logging.WithComponent("main")

	client := ghsearch.NewClient(ghsearch.ClientConfig{
		Token: envcfg.String("GITHUB_TOKEN", ""),
	})
	server := ghsearch.NewServer(client).MCPServer(agentground.Version)

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
	log.Info().Str("addr", listen).Msg("starting ghsearch server")
	if err := httpserve.ListenAndServe(ctx, cfg, httpserve.NewRouter(cfg, server)); err != nil {
		log.Error().Err(err).Msg("server failed")
		os.Exit(1)
	}
}
