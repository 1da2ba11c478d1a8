package main

import (
	"fmt"
	"strings"
	"time"

	logoobjects "github.com/DrewBradfordXYZ/logo-objects-go"
	"github.com/DrewBradfordXYZ/logo-objects-go/client"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

type app struct {
	v       *viper.Viper
	cfgFile string
}

func newRootCmd() *cobra.Command {
	a := &app{v: viper.New()}

	cmd := &cobra.Command{
		Use:   "logoctl",
		Short: "Command line client for the Logo Objects REST API",
		Long: `Command line client for the Logo Objects REST API.
Environment variables:
  LOGO_BASE_URL=https://erp.example.com/api/v1
  LOGO_API_KEY=...
  LOGO_USERNAME=LOGO
  LOGO_PASSWORD=...
  LOGO_FIRM_NO=1
  LOGO_CLIENT_ID=...
  LOGO_CLIENT_SECRET=...
  LOGO_TIMEOUT=30s`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		DisableAutoGenTag: true,
		PersistentPreRunE: a.loadConfig,
	}
	a.configureFlags(cmd)

	cmd.AddCommand(
		a.entitiesCmd(),
		a.opsCmd(),
		a.listCmd(),
		a.getCmd(),
		a.searchCmd(),
		a.callCmd(),
		a.qsCmd(),
	)
	return cmd
}

func (a *app) configureFlags(cmd *cobra.Command) {
	flags := cmd.PersistentFlags()
	flags.String("base-url", "", "service base URL, e.g. https://erp.example.com/api/v1")
	flags.String("api-key", "", "API key sent as a bearer token")
	flags.String("username", "", "Logo user for the password grant")
	flags.String("password", "", "password for the password grant")
	flags.String("firm-no", "", "firm number sent with the password grant")
	flags.String("client-id", "", "OAuth client id")
	flags.String("client-secret", "", "OAuth client secret")
	flags.Duration("timeout", 30*time.Second, "per-request timeout")
	flags.Int("max-retries", 3, "retries on 429, 5xx and network errors")
	flags.Bool("debug", false, "log requests and retries to stderr")
	flags.StringP("output", "o", "table", "output format: table or json")
	flags.StringVar(&a.cfgFile, "config", "", "config file (yaml, json or toml)")

	a.v.BindPFlags(flags)
	a.v.SetDefault("timeout", 30*time.Second)
	a.v.SetDefault("max-retries", 3)
	a.v.SetDefault("output", "table")
}

// loadConfig layers .env, LOGO_* variables and the config file under the
// flags.
func (a *app) loadConfig(cmd *cobra.Command, args []string) error {
	_ = godotenv.Load()

	a.v.SetEnvPrefix("LOGO")
	a.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	a.v.AutomaticEnv()

	if a.cfgFile != "" {
		a.v.SetConfigFile(a.cfgFile)
		if err := a.v.ReadInConfig(); err != nil {
			return fmt.Errorf("reading config: %w", err)
		}
	}

	switch f := a.v.GetString("output"); f {
	case "table", "json":
	default:
		return fmt.Errorf("unknown output format %q (want table or json)", f)
	}
	return nil
}

func (a *app) config() logoobjects.Config {
	return logoobjects.Config{
		BaseURL:      a.v.GetString("base-url"),
		APIKey:       a.v.GetString("api-key"),
		Timeout:      a.v.GetDuration("timeout"),
		Username:     a.v.GetString("username"),
		Password:     a.v.GetString("password"),
		FirmNo:       a.v.GetString("firm-no"),
		ClientID:     a.v.GetString("client-id"),
		ClientSecret: a.v.GetString("client-secret"),
	}
}

func (a *app) client() (*logoobjects.Client, error) {
	cfg := a.config()
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("no base URL: use --base-url or LOGO_BASE_URL")
	}
	return logoobjects.NewFromConfig(cfg,
		logoobjects.WithDebug(a.v.GetBool("debug")),
		logoobjects.WithMaxRetries(a.v.GetInt("max-retries")),
		logoobjects.WithUserAgent("logoctl/"+client.Version),
	)
}

func (a *app) json() bool {
	return a.v.GetString("output") == "json"
}
