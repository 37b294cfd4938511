package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/jhoicas/shift-ledger/internal/application/dto"
	"github.com/jhoicas/shift-ledger/internal/domain/entity"
	"github.com/jhoicas/shift-ledger/internal/domain/shift"
)

// RangeOptions flags de rango (ambos inclusive).
type RangeOptions struct {
	*RootOptions
	Start string
	End   string
}

func (o *RangeOptions) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.Start, "start", "", "primer día de turno YYYY-MM-DD (requerido)")
	cmd.Flags().StringVar(&o.End, "end", "", "último día de turno YYYY-MM-DD (por defecto --start)")
	_ = cmd.MarkFlagRequired("start")
}

func (o *RangeOptions) days() (shift.Day, shift.Day, error) {
	start, err := shift.ParseDay(o.Start)
	if err != nil {
		return shift.Day{}, shift.Day{}, WrapExitError(ExitCommandError, "--start inválido", err)
	}
	if o.End == "" {
		return start, start, nil
	}
	end, err := shift.ParseDay(o.End)
	if err != nil {
		return shift.Day{}, shift.Day{}, WrapExitError(ExitCommandError, "--end inválido", err)
	}
	if end.Before(start) {
		return shift.Day{}, shift.Day{}, NewExitError(ExitCommandError, "--end es anterior a --start")
	}
	return start, end, nil
}

func parseDayArg(arg string) (shift.Day, error) {
	d, err := shift.ParseDay(arg)
	if err != nil {
		return shift.Day{}, WrapExitError(ExitCommandError, "día inválido", err)
	}
	return d, nil
}

// NewBackfillCommand recálculo completo de un rango.
func NewBackfillCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RangeOptions{RootOptions: rootOpts}
	cmd := &cobra.Command{
		Use:   "backfill",
		Short: "Recalcula unidades vendidas, libros y conciliación de un rango",
		Long: `Recorre el rango día por día. Un día fallido no detiene a los demás; el
código de salida es 1 si algún día falló.

Ejemplos:
  ledgerctl backfill --start 2025-10-01 --end 2025-10-18
  ledgerctl backfill --start 2025-10-18 --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			start, end, err := opts.days()
			if err != nil {
				return err
			}
			return opts.withServices(cmd, func(svc *Services) error {
				res, err := svc.Backfill.Backfill(cmd.Context(), start, end)
				if err != nil {
					return commandError("backfill", err)
				}
				if err := opts.output(cmd).Result(res, func(w io.Writer) { printBackfill(w, res) }); err != nil {
					return err
				}
				if res.Failed > 0 {
					return NewExitError(ExitFailure, fmt.Sprintf("%d día(s) fallidos", res.Failed))
				}
				return nil
			})
		},
	}
	opts.bind(cmd)
	return cmd
}

func printBackfill(w io.Writer, res *dto.BackfillResultDTO) {
	for _, d := range res.Days {
		switch d.Status {
		case dto.DayStatusOK:
			fmt.Fprintf(w, "%s  ok      unidades=%d libros=%d conciliado=%t\n", d.ShiftDay, d.ItemsCreated, d.LedgersWritten, d.Reconciled)
		default:
			fmt.Fprintf(w, "%s  %-7s paso=%s tipo=%s %s\n", d.ShiftDay, d.Status, d.Step, d.ErrorKind, d.Error)
		}
	}
	fmt.Fprintf(w, "rango %s..%s: %d ok, %d fallidos", res.Start, res.End, res.Succeeded, res.Failed)
	if res.Cancelled {
		fmt.Fprint(w, " (cancelado)")
	}
	fmt.Fprintln(w)
}

// NewEnsureCommand recuperación perezosa de un día.
func NewEnsureCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "ensure <día>",
		Short: "Sincroniza, deriva y calcula los libros de un día si todavía no están",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			day, err := parseDayArg(args[0])
			if err != nil {
				return err
			}
			return rootOpts.withServices(cmd, func(svc *Services) error {
				res, err := svc.Backfill.EnsureShift(cmd.Context(), day)
				if err != nil {
					return commandError("ensure "+day.Key(), err)
				}
				return rootOpts.output(cmd).Result(res, func(w io.Writer) {
					if res.AlreadyComputed {
						fmt.Fprintf(w, "%s ya estaba calculado\n", res.ShiftDay)
					} else {
						fmt.Fprintf(w, "%s calculado: sincronizado=%t unidades=%d\n", res.ShiftDay, res.Synced, res.ItemsCreated)
					}
					for _, l := range res.Ledgers {
						printLedger(w, l)
					}
				})
			})
		},
	}
}

// NewReconcileCommand reconstrucción de conciliaciones.
func NewReconcileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RangeOptions{RootOptions: rootOpts}
	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Reconstruye la conciliación ventas POS vs declaradas de un rango",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			start, end, err := opts.days()
			if err != nil {
				return err
			}
			return opts.withServices(cmd, func(svc *Services) error {
				res, err := svc.Reconciliation.RebuildReconciliation(cmd.Context(), start, end)
				if err != nil {
					return commandError("reconcile", err)
				}
				if err := opts.output(cmd).Result(res, func(w io.Writer) {
					fmt.Fprintf(w, "días procesados=%d registros=%d\n", res.ShiftsProcessed, res.RecordsCreated)
					printFailures(w, res.Failures)
				}); err != nil {
					return err
				}
				if len(res.Failures) > 0 {
					return NewExitError(ExitFailure, fmt.Sprintf("%d día(s) fallidos", len(res.Failures)))
				}
				return nil
			})
		},
	}
	opts.bind(cmd)
	return cmd
}

func printFailures(w io.Writer, failures []dto.DayFailure) {
	for _, f := range failures {
		fmt.Fprintf(w, "  %s  paso=%s tipo=%s %s\n", f.ShiftDay, f.Step, f.ErrorKind, f.Error)
	}
}

// LedgerOptions flags de ledger.
type LedgerOptions struct {
	*RootOptions
	Kind string
}

// NewLedgerCommand recalcula uno o todos los libros de un día.
func NewLedgerCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &LedgerOptions{RootOptions: rootOpts}
	cmd := &cobra.Command{
		Use:   "ledger <día>",
		Short: "Recalcula el libro de stock de un día",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			day, err := parseDayArg(args[0])
			if err != nil {
				return err
			}
			kinds, err := ledgerKinds(opts.Kind)
			if err != nil {
				return err
			}
			return opts.withServices(cmd, func(svc *Services) error {
				out := make([]dto.LedgerEntryDTO, 0, len(kinds))
				for _, k := range kinds {
					e, err := svc.Ledgers.ComputeAndUpsertLedger(cmd.Context(), k, day)
					if err != nil {
						return commandError(fmt.Sprintf("ledger %s %s", k, day.Key()), err)
					}
					out = append(out, dto.LedgerFromEntity(e))
				}
				return opts.output(cmd).Result(out, func(w io.Writer) {
					for _, l := range out {
						printLedger(w, l)
					}
				})
			})
		},
	}
	cmd.Flags().StringVar(&opts.Kind, "kind", "all", "rolls | meat | drinks | all")
	return cmd
}

func ledgerKinds(s string) ([]entity.LedgerKind, error) {
	if s == "" || s == "all" {
		return entity.LedgerKinds, nil
	}
	k := entity.LedgerKind(s)
	if !k.Valid() {
		return nil, NewExitError(ExitCommandError, fmt.Sprintf("--kind %q inválido", s))
	}
	return []entity.LedgerKind{k}, nil
}

func printLedger(w io.Writer, l dto.LedgerEntryDTO) {
	fmt.Fprintf(w, "  %-6s estimado=%s comprado=%s inicio=%s (%s) final=%s varianza=%s\n",
		l.Kind, l.Estimated, l.Purchased, optDecimal(l.StartingImplied), l.BaselineSource,
		optDecimal(l.ActualEnd), optDecimal(l.Variance))
	if len(l.MissingMappings) > 0 {
		fmt.Fprintf(w, "         sin receta: %v\n", l.MissingMappings)
	}
}
