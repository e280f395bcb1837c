// Command eunet runs a single HTTP/1.1 GET probe against a URL and
// prints every lifecycle event to the console as it happens.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/pjh456/eunet/internal/caps"
	"github.com/pjh456/eunet/internal/engine"
	"github.com/pjh456/eunet/internal/httpscenario"
	"github.com/pjh456/eunet/internal/logx"
	"github.com/pjh456/eunet/internal/orchestrator"
	"github.com/pjh456/eunet/internal/resolvers"
	"github.com/pjh456/eunet/internal/sink"
	"github.com/spf13/cobra"
)

// defaultURL is probed when the CLI is invoked with no positional argument.
const defaultURL = "http://example.com/"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		connectTimeout time.Duration
		ioTimeout      time.Duration
		verbose        bool
	)

	cmd := &cobra.Command{
		Use:   "eunet [url]",
		Short: "Probe a single HTTP endpoint and report its connection lifecycle",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			url := defaultURL
			if len(args) == 1 {
				url = args[0]
			}
			return run(url, connectTimeout, ioTimeout, verbose)
		},
	}

	cmd.Flags().DurationVar(&connectTimeout, "connect-timeout", 5*time.Second, "connect deadline")
	cmd.Flags().DurationVar(&ioTimeout, "io-timeout", 10*time.Second, "read/write deadline")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "emit structured JSON logs to stderr")

	return cmd
}

func run(url string, connectTimeout, ioTimeout time.Duration, verbose bool) error {
	log := logx.NewNop()
	if verbose {
		log = logx.NewStderr()
	}
	logx.SetGlobal(log)

	capMgr := caps.New()
	if held := capMgr.Available(); len(held) > 0 {
		fmt.Fprintf(os.Stderr, "warning: running with capabilities: %v\n", held)
	}

	o := orchestrator.New()
	o.Attach(sink.NewConsoleSink())

	sc := httpscenario.New(httpscenario.Config{
		URL:            url,
		ConnectTimeout: connectTimeout,
		IOTimeout:      ioTimeout,
		Resolver:       resolvers.NewStdResolver(),
	}, log)

	eng := engine.New()
	if !eng.Execute(o, sc) {
		return fmt.Errorf("eunet: engine already running")
	}
	eng.Wait()
	return nil
}
