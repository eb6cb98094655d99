package notify

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/alejandrodnm/gabagool/internal/domain"
	"github.com/alejandrodnm/gabagool/internal/ports"
	"github.com/olekukonko/tablewriter"
)

// Console implementa ports.Notifier.
type Console struct {
	out       io.Writer
	table     bool
	tolerance float64
}

// NewConsole crea un notificador que escribe a stdout.
func NewConsole(table bool, tolerance float64) *Console {
	return &Console{out: os.Stdout, table: table, tolerance: tolerance}
}

// NewConsoleWriter crea un notificador para tests.
func NewConsoleWriter(w io.Writer, table bool, tolerance float64) *Console {
	return &Console{out: w, table: table, tolerance: tolerance}
}

// NotifyCycle imprime el resumen de un ciclo en una línea.
func (c *Console) NotifyCycle(_ context.Context, s ports.CycleSummary) error {
	mode := "refresh"
	if s.Discovery {
		mode = "discovery"
	}
	fmt.Fprintf(c.out, "[%s] cycle %d (%s): %d markets | %d expired | %d observed | %d actionable | %d trades total | %dms\n",
		time.Now().Format("15:04:05"), s.CycleNumber, mode,
		s.Markets, s.Expired, s.Observed, s.Actionable, s.TradesTotal, s.DurationMilli,
	)
	return nil
}

// NotifyPositions imprime las posiciones abiertas.
// En modo tabla muestra el detalle por leg; en modo compacto solo el total.
func (c *Console) NotifyPositions(_ context.Context, positions []domain.Position) error {
	if len(positions) == 0 {
		fmt.Fprintf(c.out, "[%s] no open positions\n", time.Now().Format("15:04:05"))
		return nil
	}

	if !c.table {
		var profit float64
		for _, p := range positions {
			profit += p.GuaranteedProfit()
		}
		fmt.Fprintf(c.out, "[%s] %d open positions | guaranteed profit $%.2f\n",
			time.Now().Format("15:04:05"), len(positions), profit)
		return nil
	}

	table := tablewriter.NewWriter(c.out)
	table.Header("ID", "Market", "Qty YES", "Avg YES", "Qty NO", "Avg NO", "Pair Cost", "Profit", "Balanced")

	for _, p := range positions {
		balanced := "no"
		if p.IsBalanced(c.tolerance) {
			balanced = "yes"
		}
		if p.IsOneSided() {
			balanced = "ONE-SIDED"
		}

		table.Append(
			fmt.Sprintf("%d", p.ID),
			domain.TruncateQuestion(p.Question, p.ConditionID, 40),
			fmt.Sprintf("%.2f", p.QtyYes),
			fmt.Sprintf("$%.4f", p.AvgYes()),
			fmt.Sprintf("%.2f", p.QtyNo),
			fmt.Sprintf("$%.4f", p.AvgNo()),
			fmt.Sprintf("$%.4f", p.PairCost()),
			fmt.Sprintf("$%.2f", p.GuaranteedProfit()),
			balanced,
		)
	}

	table.Render()
	return nil
}
