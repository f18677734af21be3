package presenter

import (
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"token_portfolio/internal/domain/entity"
	"token_portfolio/internal/pkg/utils"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// PriceNotAvailable replaces the USD balance of an unpriced holding.
const PriceNotAvailable = "Price not available"

const (
	balancePlaces = 4
	usdPlaces     = 2
)

// Columns is the header of the holdings table, in display order.
var Columns = []string{"Name", "Symbol", "Contract Address", "Decimals", "Balance", "Balance USD"}

// Row is one display row. Every cell is preformatted text.
type Row struct {
	Name            string `json:"Name"`
	Symbol          string `json:"Symbol"`
	ContractAddress string `json:"Contract Address"`
	Decimals        string `json:"Decimals"`
	Balance         string `json:"Balance"`
	BalanceUSD      string `json:"Balance USD"`
}

// Cells returns the row in Columns order.
func (r Row) Cells() []string {
	return []string{r.Name, r.Symbol, r.ContractAddress, r.Decimals, r.Balance, r.BalanceUSD}
}

// Table is a rendered portfolio: rows plus the formatted total.
type Table struct {
	WalletAddress string   `json:"walletAddress"`
	Network       string   `json:"network"`
	Rows          []Row    `json:"rows"`
	Total         string   `json:"total"`
	LowerBound    bool     `json:"totalIsLowerBound"`
	Messages      []string `json:"messages,omitempty"`
}

// NewRow formats a holding for display.
func NewRow(h entity.TokenHolding) Row {
	usd := PriceNotAvailable
	if h.ValueUSD != nil {
		usd = utils.FormatFixed(*h.ValueUSD, usdPlaces)
	}
	return Row{
		Name:            h.Name,
		Symbol:          h.Symbol,
		ContractAddress: h.ContractAddress,
		Decimals:        strconv.FormatInt(int64(h.Decimals), 10),
		Balance:         utils.FormatFixed(h.Balance, balancePlaces),
		BalanceUSD:      usd,
	}
}

// FormatTotal renders a USD total with two decimals.
func FormatTotal(total decimal.Decimal) string {
	return utils.FormatFixed(total, usdPlaces)
}

// NewTable builds the display model of a portfolio result.
func NewTable(result *entity.PortfolioResult) Table {
	return Table{
		WalletAddress: result.WalletAddress,
		Network:       result.Network,
		Rows:          lo.Map(result.Holdings, func(h entity.TokenHolding, _ int) Row { return NewRow(h) }),
		Total:         FormatTotal(result.TotalValueUSD),
		LowerBound:    result.TotalIsLowerBound,
		Messages:      lo.Map(result.Errors, func(e entity.PortfolioError, _ int) string { return e.Message }),
	}
}

// TotalLabel is the caption shown under the table.
func (t Table) TotalLabel() string {
	if t.LowerBound {
		return fmt.Sprintf("Total Balance USD: $%s (some prices not available)", t.Total)
	}
	return fmt.Sprintf("Total Balance USD: $%s", t.Total)
}

// WriteText prints the table in aligned columns followed by the total and
// any messages.
func WriteText(w io.Writer, t Table) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Wallet: %s (%s)\n", t.WalletAddress, t.Network)
	writeTabRow(tw, Columns)
	for _, r := range t.Rows {
		writeTabRow(tw, r.Cells())
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if _, err := fmt.Fprintln(w, t.TotalLabel()); err != nil {
		return err
	}
	for _, m := range t.Messages {
		if _, err := fmt.Fprintf(w, "! %s\n", m); err != nil {
			return err
		}
	}
	return nil
}

func writeTabRow(w io.Writer, cells []string) {
	for i, c := range cells {
		if i > 0 {
			fmt.Fprint(w, "\t")
		}
		fmt.Fprint(w, c)
	}
	fmt.Fprintln(w)
}
