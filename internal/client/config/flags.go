package config

import (
	"flag"
	"io"
	"time"

	"github.com/dmitrijs2005/siteauth/internal/flagx"
)

var knownFlags = []string{"-a", "-d", "-i", "-t", "-p", "-offline-logout", "-strict-token", "-l", "-log-format", "-m"}

// parseFlags populates Config fields from command-line flags.
//
//	-a string        base URL of the authentication server
//	-d string        path of the local session store
//	-i int           online check interval (seconds)
//	-t int           request timeout (seconds)
//	-p string        verification policy: keepSession or forceLogout
//	-offline-logout  with forceLogout, also sign out when the server is unreachable
//	-strict-token    require JWT-shaped tokens
//	-l string        log level
//	-log-format str  text or json
//	-m string        metrics listen address
//
// args are filtered through flagx.FilterArgs first so flags owned by other
// components do not break parsing.
func parseFlags(cfg *Config, args []string) error {
	args = flagx.FilterArgs(args, knownFlags, "-strict-token", "-offline-logout")

	fs := flag.NewFlagSet("siteauth", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.ServerURL, "a", cfg.ServerURL, "base URL of the authentication server")
	fs.StringVar(&cfg.StorePath, "d", cfg.StorePath, "path of the local session store")
	onlineCheckInterval := fs.Int("i", int(cfg.OnlineCheckInterval.Seconds()), "online check interval (in seconds)")
	requestTimeout := fs.Int("t", int(cfg.RequestTimeout.Seconds()), "request timeout (in seconds)")
	policy := fs.String("p", cfg.VerificationPolicy.String(), "verification policy (keepSession|forceLogout)")
	fs.BoolVar(&cfg.OfflineLogout, "offline-logout", cfg.OfflineLogout, "with forceLogout, also sign out when the server is unreachable")
	fs.BoolVar(&cfg.StrictTokenFormat, "strict-token", cfg.StrictTokenFormat, "require JWT-shaped tokens")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level")
	fs.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "log format (text|json)")
	fs.StringVar(&cfg.MetricsAddr, "m", cfg.MetricsAddr, "metrics listen address")

	if err := fs.Parse(args); err != nil {
		return err
	}

	// Only flags actually given override; the int defaults would otherwise
	// truncate sub-second values loaded from a file or the environment.
	var err error
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "i":
			cfg.OnlineCheckInterval = time.Duration(*onlineCheckInterval) * time.Second
		case "t":
			cfg.RequestTimeout = time.Duration(*requestTimeout) * time.Second
		case "p":
			if perr := cfg.VerificationPolicy.UnmarshalText([]byte(*policy)); perr != nil {
				err = perr
			}
		}
	})
	return err
}
