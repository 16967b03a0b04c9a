package notify

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"

	"github.com/alejandrodnm/polytrack/internal/domain"
)

// Console implementa ports.Notifier escribiendo a stdout.
type Console struct {
	out   io.Writer
	table bool
}

// NewConsole crea un notificador que escribe a stdout.
func NewConsole(table bool) *Console {
	return &Console{out: os.Stdout, table: table}
}

// NewConsoleWriter crea un notificador para tests.
func NewConsoleWriter(w io.Writer, table bool) *Console {
	return &Console{out: w, table: table}
}

// PositionOpened imprime una línea compacta por cada posición nueva.
func (c *Console) PositionOpened(pos domain.Position, available float64) {
	fmt.Fprintf(c.out, "[%s] OPEN %s %s @ %.4f | $%.2f (%.4f sh) | edge %.1f%% | %s | avail $%.2f\n",
		time.Now().Format("15:04:05"),
		pos.ID,
		pos.Side,
		pos.EntryPrice,
		pos.Size,
		pos.Shares,
		pos.Edge*100,
		domain.TruncateQuestion(pos.Question, pos.MarketID, 50),
		available,
	)
}

// PositionSettled imprime el resultado real de una posición liquidada.
func (c *Console) PositionSettled(pos domain.Position, capital float64) {
	label := "LOST"
	if pos.Won != nil && *pos.Won {
		label = "WON"
	}
	outcome := "?"
	if pos.SettlementOutcome != nil {
		outcome = *pos.SettlementOutcome
	}
	fmt.Fprintf(c.out, "[%s] SETTLED %s %s | %s -> %s | pnl $%+.2f | capital $%.2f\n",
		time.Now().Format("15:04:05"),
		pos.ID,
		label,
		pos.Side,
		outcome,
		pos.RealizedPnL(),
		capital,
	)
}

// StatusReport imprime el estado periódico. En modo compacto es una línea;
// con table=true añade la tabla de posiciones abiertas.
func (c *Console) StatusReport(st domain.TrackerState) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "[%s] STATUS cap $%.2f | avail $%.2f | pnl $%+.2f | %d open ($%.2f) | %d settled (%dW/%dL %.0f%%)",
		time.Now().Format("15:04:05"),
		st.Capital,
		st.AvailableCapital,
		st.RealizedPnL,
		st.OpenPositionsCount,
		st.UnrealizedPositions,
		st.SettledTradesCount,
		st.Wins,
		st.Losses,
		st.WinRate(),
	)
	fmt.Fprintln(c.out, sb.String())

	if c.table && len(st.OpenPositions) > 0 {
		c.printOpenTable(st.OpenPositions)
	}
}

// FinalReport imprime el resumen completo de la sesión al terminar.
func (c *Console) FinalReport(st domain.TrackerState, settled []domain.Position) {
	fmt.Fprintf(c.out, "\n")
	fmt.Fprintf(c.out, "========================================================\n")
	fmt.Fprintf(c.out, "  SETTLEMENT TRACKER — FINAL REPORT\n")
	fmt.Fprintf(c.out, "  started %s\n", st.StartTime.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(c.out, "========================================================\n\n")

	roi := 0.0
	if st.InitialCapital > 0 {
		roi = (st.Capital/st.InitialCapital - 1) * 100
	}
	fmt.Fprintf(c.out, "  Capital:   $%.2f -> $%.2f (%+.1f%%)\n", st.InitialCapital, st.Capital, roi)
	fmt.Fprintf(c.out, "  Realized:  $%+.2f over %d settled (%dW/%dL, %.0f%% win rate)\n",
		st.RealizedPnL, st.SettledTradesCount, st.Wins, st.Losses, st.WinRate())
	fmt.Fprintf(c.out, "  Open:      %d positions, $%.2f locked\n\n",
		st.OpenPositionsCount, st.UnrealizedPositions)

	if len(settled) > 0 {
		fmt.Fprintf(c.out, "  Settled trades:\n")
		c.printSettledTable(settled)
	}
	if len(st.OpenPositions) > 0 {
		fmt.Fprintf(c.out, "  Still open (kept for next run):\n")
		c.printOpenTable(st.OpenPositions)
	}
}

func (c *Console) printOpenTable(positions []domain.Position) {
	table := tablewriter.NewWriter(c.out)
	table.Header("ID", "Market", "Side", "Entry", "Size", "Shares", "Edge", "Opened")
	for _, p := range positions {
		table.Append(
			p.ID,
			domain.TruncateQuestion(p.Question, p.MarketID, 40),
			p.Side,
			fmt.Sprintf("%.4f", p.EntryPrice),
			fmt.Sprintf("$%.2f", p.Size),
			fmt.Sprintf("%.4f", p.Shares),
			fmt.Sprintf("%.1f%%", p.Edge*100),
			p.OpenedAt.Format("01-02 15:04"),
		)
	}
	table.Render()
}

func (c *Console) printSettledTable(settled []domain.Position) {
	table := tablewriter.NewWriter(c.out)
	table.Header("ID", "Market", "Side", "Outcome", "Result", "PnL", "Settled")
	for _, p := range settled {
		result := "LOST"
		if p.Won != nil && *p.Won {
			result = "WON"
		}
		outcome := "?"
		if p.SettlementOutcome != nil {
			outcome = *p.SettlementOutcome
		}
		settledAt := "-"
		if p.SettledAt != nil {
			settledAt = p.SettledAt.Format("01-02 15:04")
		}
		table.Append(
			p.ID,
			domain.TruncateQuestion(p.Question, p.MarketID, 40),
			p.Side,
			outcome,
			result,
			fmt.Sprintf("$%+.2f", p.RealizedPnL()),
			settledAt,
		)
	}
	table.Render()
}
