// Package cli comandos de ledgerctl: backfill, recálculo de libros, conciliación y reportes
// de días de turno desde la terminal.
package cli

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"
)

// RootOptions flags globales.
type RootOptions struct {
	Verbose bool
	Format  string // "text" | "json"

	open Opener
}

// ValidFormats formatos de salida admitidos.
var ValidFormats = []string{"text", "json"}

// NewRootCommand crea el comando raíz con la conexión real a la base de datos.
func NewRootCommand() *cobra.Command {
	return NewRootCommandWith(OpenFromConfig)
}

// NewRootCommandWith crea el comando raíz con un Opener propio.
func NewRootCommandWith(open Opener) *cobra.Command {
	opts := &RootOptions{open: open}

	cmd := &cobra.Command{
		Use:   "ledgerctl",
		Short: "Operación de libros de stock por día de turno",
		Long: `Herramienta de operador para el motor de días de turno.

Un día de turno va de las 03:00 a las 03:00 (hora local del negocio). Todos los
comandos reciben días con formato YYYY-MM-DD.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return NewExitError(ExitCommandError, fmt.Sprintf("formato %q inválido: debe ser uno de %v", opts.Format, ValidFormats))
			}
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "logs detallados")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "formato de salida (text|json)")

	cmd.AddCommand(NewBackfillCommand(opts))
	cmd.AddCommand(NewEnsureCommand(opts))
	cmd.AddCommand(NewReconcileCommand(opts))
	cmd.AddCommand(NewLedgerCommand(opts))
	cmd.AddCommand(NewVarianceCommand(opts))
	cmd.AddCommand(NewBaselineCommand(opts))
	cmd.AddCommand(NewFreshnessCommand(opts))
	cmd.AddCommand(NewMigrateCommand(opts))

	return cmd
}

// withServices abre los servicios, ejecuta fn y los cierra.
func (o *RootOptions) withServices(cmd *cobra.Command, fn func(*Services) error) error {
	svc, closeFn, err := o.open(cmd.Context(), o.Verbose)
	if err != nil {
		return WrapExitError(ExitCommandError, "no se pudo inicializar", err)
	}
	if closeFn != nil {
		defer closeFn()
	}
	return fn(svc)
}

func (o *RootOptions) output(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{Format: o.Format, Writer: cmd.OutOrStdout()}
}
