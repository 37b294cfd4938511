package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/jhoicas/shift-ledger/internal/application/dto"
	"github.com/jhoicas/shift-ledger/internal/domain/entity"
)

// NewVarianceCommand reporte de varianza por ingrediente.
func NewVarianceCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "variance <día>",
		Short: "Varianza esperado vs usado por ingrediente, de mayor a menor",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			day, err := parseDayArg(args[0])
			if err != nil {
				return err
			}
			return rootOpts.withServices(cmd, func(svc *Services) error {
				rows, err := svc.Variance.ComputeShiftVariance(cmd.Context(), day)
				if err != nil {
					return commandError("variance "+day.Key(), err)
				}
				return rootOpts.output(cmd).Result(rows, func(w io.Writer) {
					tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
					fmt.Fprintln(tw, "INGREDIENTE\tESPERADO\tUSADO\tVARIANZA\tSEVERIDAD")
					for _, r := range rows {
						fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", r.Name, r.Expected, r.Used, r.Variance, r.Severity)
					}
					_ = tw.Flush()
				})
			})
		},
	}
}

// BaselineOptions flags de baseline.
type BaselineOptions struct {
	*RootOptions
	Kind     string
	Quantity string
	By       string
}

// NewBaselineCommand confirma el inventario inicial de un día y recalcula su libro.
func NewBaselineCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &BaselineOptions{RootOptions: rootOpts}
	cmd := &cobra.Command{
		Use:   "baseline <día>",
		Short: "Confirma el inventario inicial de un día (cuando el día anterior no tiene conteo)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			day, err := parseDayArg(args[0])
			if err != nil {
				return err
			}
			kind := entity.LedgerKind(opts.Kind)
			if !kind.Valid() {
				return NewExitError(ExitCommandError, fmt.Sprintf("--kind %q inválido", opts.Kind))
			}
			qty, err := decimal.NewFromString(opts.Quantity)
			if err != nil {
				return WrapExitError(ExitCommandError, "--qty inválido", err)
			}
			return opts.withServices(cmd, func(svc *Services) error {
				e, err := svc.Ledgers.ConfirmBaseline(cmd.Context(), kind, day, qty, opts.By)
				if err != nil {
					return commandError("baseline "+day.Key(), err)
				}
				l := dto.LedgerFromEntity(e)
				return opts.output(cmd).Result(l, func(w io.Writer) {
					fmt.Fprintf(w, "%s inventario inicial confirmado por %s\n", day.Key(), opts.By)
					printLedger(w, l)
				})
			})
		},
	}
	cmd.Flags().StringVar(&opts.Kind, "kind", "", "rolls | meat | drinks (requerido)")
	cmd.Flags().StringVar(&opts.Quantity, "qty", "", "cantidad contada (requerido)")
	cmd.Flags().StringVar(&opts.By, "by", "", "operador que confirma (requerido)")
	_ = cmd.MarkFlagRequired("kind")
	_ = cmd.MarkFlagRequired("qty")
	_ = cmd.MarkFlagRequired("by")
	return cmd
}

// FreshnessOptions flags de freshness.
type FreshnessOptions struct {
	*RootOptions
	Source string
}

// NewFreshnessCommand frescura de la sincronización POS. Sale con 1 si está vencida.
func NewFreshnessCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &FreshnessOptions{RootOptions: rootOpts}
	cmd := &cobra.Command{
		Use:   "freshness",
		Short: "Antigüedad de la última sincronización exitosa",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withServices(cmd, func(svc *Services) error {
				source := opts.Source
				if source == "" {
					source = svc.Source
				}
				res, err := svc.Freshness.Freshness(cmd.Context(), source, svc.StaleAfter)
				if err != nil {
					return commandError("freshness", err)
				}
				if err := opts.output(cmd).Result(res, func(w io.Writer) {
					if res.LastSuccessAt == nil {
						fmt.Fprintf(w, "%s: sin sincronizaciones exitosas\n", res.Source)
						return
					}
					fmt.Fprintf(w, "%s: última %s (día %s, hace %ds) vencida=%t\n",
						res.Source, res.LastSuccessAt.Format("2006-01-02 15:04:05Z07:00"), res.LastShiftDay, res.AgeSeconds, res.Stale)
				}); err != nil {
					return err
				}
				if res.Stale {
					return NewExitError(ExitFailure, "datos POS vencidos")
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&opts.Source, "source", "", "fuente (por defecto POS_SOURCE)")
	return cmd
}

// NewMigrateCommand aplica el esquema embebido.
func NewMigrateCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Crea tablas e índices si no existen",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.withServices(cmd, func(svc *Services) error {
				if svc.Migrate == nil {
					return NewExitError(ExitCommandError, "migrate no disponible")
				}
				if err := svc.Migrate(cmd.Context()); err != nil {
					return WrapExitError(ExitFailure, "migrate", err)
				}
				return rootOpts.output(cmd).Result(map[string]string{"schema": "applied"}, func(w io.Writer) {
					fmt.Fprintln(w, "esquema aplicado")
				})
			})
		},
	}
}

func optDecimal(d *decimal.Decimal) string {
	if d == nil {
		return "-"
	}
	return d.String()
}
