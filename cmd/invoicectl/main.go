// invoicectl es la CLI de operación de InvoiceFlow: migraciones, empresas, tokens,
// generación de recurrentes e importación de clientes.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jhoicas/InvoiceFlow-api/internal/infrastructure/storage"
	"github.com/jhoicas/InvoiceFlow-api/pkg/config"
	"github.com/jhoicas/InvoiceFlow-api/pkg/logger"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "invoicectl",
		Short:         "Operación de InvoiceFlow",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().String("log-level", "", "nivel de log (trace, debug, info, warn, error)")

	root.AddCommand(migrateCmd())
	root.AddCommand(companyCmd())
	root.AddCommand(tokenCmd())
	root.AddCommand(recurringCmd())
	root.AddCommand(scheduleCmd())
	root.AddCommand(totalsCmd())
	root.AddCommand(clientsCmd())
	return root
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// env configuración, logger y almacenamiento compartidos por los comandos que tocan la base.
type env struct {
	cfg   *config.Config
	log   *logger.Logger
	repos *storage.Repositories
	close func()
}

func openEnv(cmd *cobra.Command, migrate bool) (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	level := cfg.Log.Level
	if l, _ := cmd.Flags().GetString("log-level"); l != "" {
		level = l
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: level, Out: cmd.ErrOrStderr()})
	repos, closeFn, err := storage.Open(cmd.Context(), *cfg, migrate)
	if err != nil {
		return nil, fmt.Errorf("abrir almacenamiento: %w", err)
	}
	return &env{cfg: cfg, log: log, repos: repos, close: closeFn}, nil
}
