package main

import (
	"context"

	"github.com/spf13/cobra"

	"katydid-storefront/pkg/app"
	"katydid-storefront/pkg/config"
	"katydid-storefront/pkg/notify"
)

var (
	cfgFile  string
	envFile  string
	logLevel string
	baseURL  string
	assumeY  bool

	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "storefront",
	Short: "Storefront client CLI",
	Long: `Storefront client CLI

FORMS:
  forms       List forms and their fields
  validate    Validate form values locally
  submit      Validate and submit a form

CART & WISHLIST:
  cart        List, add, update, remove, select, checkout
  wishlist    List, toggle, remove, move to cart

SESSION:
  login       Login and keep the session in local storage
  logout      Forget the saved session

DEVELOPMENT:
  serve       Run the in-memory mock backend

Configuration is read from storefront.yaml, .env and STOREFRONT_* environment variables.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		opts := []config.Option{config.WithEnvFile(envFile)}
		if cfgFile != "" {
			opts = append(opts, config.WithFile(cfgFile))
		}
		if cmd.Flags().Changed("log-level") {
			opts = append(opts, config.WithOverride("log.level", logLevel))
		}
		if cmd.Flags().Changed("api") {
			opts = append(opts, config.WithOverride("api.base_url", baseURL))
		}
		loaded, err := config.Load(opts...)
		if err != nil {
			return err
		}
		cfg = loaded
		return nil
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&cfgFile, "config", "c", "", "config file (default ./storefront.yaml)")
	pf.StringVar(&envFile, "env-file", ".env", "dotenv file loaded before the environment")
	pf.StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn, error")
	pf.StringVar(&baseURL, "api", "", "backend base URL, overrides api.base_url")
	pf.BoolVarP(&assumeY, "yes", "y", false, "answer yes to confirmation prompts")
}

// yes 跳过确认
type yes struct{}

func (yes) Confirm(string) bool { return true }

// openApp 创建 App 并同步缓存
func openApp(ctx context.Context, cmd *cobra.Command) (*app.App, error) {
	term := notify.NewTerminal(cmd.ErrOrStderr(), cmd.InOrStdin())
	opts := []app.Option{app.WithNotifier(term), app.WithConfirmer(term)}
	if assumeY {
		opts = append(opts, app.WithConfirmer(yes{}))
	}

	a, err := app.New(ctx, cfg, opts...)
	if err != nil {
		return nil, err
	}
	if err := a.Bootstrap(ctx); err != nil {
		_ = a.Close()
		return nil, err
	}
	return a, nil
}
