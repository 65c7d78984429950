package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/davecgh/go-spew/spew"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/tetratelabs/log"
	"github.com/tetratelabs/telemetry"
	"github.com/tetratelabs/telemetry/scope"
	"golang.org/x/term"

	"github.com/mt-inside/url-screener/internal/build"
	"github.com/mt-inside/url-screener/pkg/output"
	"github.com/mt-inside/url-screener/pkg/screener"
	"github.com/mt-inside/url-screener/pkg/state"
)

var errTargetsFailed = errors.New("one or more targets failed")

func init() {
	spew.Config.DisableMethods = true
	spew.Config.DisablePointerMethods = true
}

func main() {

	cmd := &cobra.Command{
		Use:           build.Name + " <URL1> [URL2] ...",
		Short:         "Fetch URLs once each and report on what came back",
		Version:       build.Version,
		Args:          cobra.ArbitraryArgs,
		RunE:          appMain,
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	cmd.Flags().DurationP("timeout", "t", state.DefaultTimeout, "Timeout for each target's resolve+fetch, and separately for its geolocation")
	cmd.Flags().String("resolver", state.ResolverSystem, "Name resolver: system (Go std library) or dns (query resolv.conf servers directly)")
	cmd.Flags().Bool("dnssec", false, "Validate each name's DNSSEC chain")
	cmd.Flags().StringSliceP("ca", "C", nil, "Path to TLS server CA file(s) to trust instead of the system roots")
	cmd.Flags().String("geo-api", state.DefaultGeoEndpoint, "Geolocation API endpoint (ip-api.com compatible)")
	cmd.Flags().Bool("no-geo", false, "Don't geolocate the target's address")
	cmd.Flags().String("user-agent", build.UserAgent(), "HTTP User-Agent to send")
	cmd.Flags().Bool("no-color", false, "Never colour output, even to a terminal")
	cmd.Flags().BoolP("verbose", "v", false, "Debug logging")
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		panic(err)
	}

	viper.SetEnvPrefix("URL_SCREENER")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	err := cmd.Execute()
	code := exitStatus(err)
	if code == 2 {
		fmt.Fprintf(os.Stderr, "Error during execution: %v\n", err)
	}
	os.Exit(code)
}

// exitStatus is 0 when every target was screened (or there were none, and usage was printed), 1 when any target failed, and 2 when the run never got going.
func exitStatus(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, errTargetsFailed):
		return 1
	default:
		return 2
	}
}

func runResult(failed, total int) error {
	if failed > 0 {
		return fmt.Errorf("%d of %d: %w", failed, total, errTargetsFailed)
	}
	return nil
}

func appMain(cmd *cobra.Command, args []string) error {
	scope.UseLogger(log.NewFlattened())
	scope.SetAllScopes(telemetry.LevelNone)
	if viper.GetBool("verbose") {
		scope.SetAllScopes(telemetry.LevelDebug)
	}

	requestData, err := state.RequestDataFromViper()
	if err != nil {
		return err
	}

	colour := !viper.GetBool("no-color") && term.IsTerminal(int(os.Stdout.Fd()))
	s := output.NewTtyStyler(colour)

	sc := screener.New(build.Name, requestData, s, os.Stdout)

	failed, err := sc.Run(context.Background(), args)
	if err != nil {
		return err
	}

	return runResult(failed, len(args))
}
