// Command toolbox-server runs the general-purpose toolbox MCP server,
// either over stdio or as an HTTP service.
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
	"github.com/agentground/agentground/servers/toolbox"
)

func main() {
	stdio := flag.Bool("stdio", false, "serve over stdio instead of HTTP")
	addr := flag.String("addr", "", "listen address (overrides LISTEN_ADDR)")
	flag.Parse()

	envcfg.Load()
	logging.Configure(logging.Config{Service: "toolbox-server"})
	log := logging.WithComponent("main")

	server := toolbox.NewServer(
		toolbox.WithNewsFeedURL(envcfg.String("NEWS_FEED_URL", "")),
	).MCPServer(agentground.Version)

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
	log.Info().Str("addr", listen).Msg("starting toolbox server")
	if err := httpserve.ListenAndServe(ctx, cfg, httpserve.NewRouter(cfg, server)); err != nil {
		log.Error().Err(err).Msg("server failed")
		os.Exit(1)
	}
}
