// Command stratumd serves the reference verification oracle over
// JSON-RPC HTTP. It is meant for local networks and integration tests,
// not production custody.
package main

import (
	"flag"
	"net/http"
	"os"

	"github.com/AccumulateNetwork/jsonrpc2/v15"
	"github.com/rs/zerolog"
	stdlog "log"

	"github.com/stratum-one/stratum/oracle"
	"github.com/stratum-one/stratum/token"
)

func main() {
	listen := flag.String("listen", env("STRATUMD_LISTEN", ":34500"), "address to serve the JSON-RPC API on")
	flag.Parse()

	logger := zerolog.New(os.Stdout).With().Timestamp().Str("module", "stratumd").Logger()

	o := oracle.New(token.NewRegistry(
		token.Token{ID: 0, Symbol: "ETH", Decimals: 18},
		token.Token{ID: 1, Symbol: "DAI", Decimals: 18},
		token.Token{ID: 2, Symbol: "USDT", Decimals: 6},
	))

	methods := methodMap(o)
	handler := jsonrpc2.HTTPRequestHandler(methods, stdlog.New(logger, "", 0))
	http.HandleFunc("/v1", handler)

	logger.Info().Str("listen", *listen).Msg("serving oracle API")
	if err := http.ListenAndServe(*listen, nil); err != nil {
		logger.Fatal().Err(err).Msg("server stopped")
	}
}

func env(name, fallback string) string {
	if v, ok := os.LookupEnv(name); ok {
		return v
	}
	return fallback
}
