package snapshot

import (
	"fmt"
	"time"

	"dario.cat/mergo"
	"github.com/xuri/excelize/v2"

	"zenledger/internal/core"
	"zenledger/internal/ledger"
)

const (
	TransactionsSheet = "Transactions"
	AccountsSheet     = "Accounts"
)

// XLSX renders the tabular export as a workbook with a Transactions sheet and
// an Accounts sheet carrying derived balances.
func XLSX(accounts []core.Account, tags []core.Tag, txs []core.Transaction, loc *time.Location) ([]byte, error) {
	rows, err := Rows(accounts, tags, txs, loc)
	if err != nil {
		return nil, err
	}

	xlsx := excelize.NewFile()
	defer xlsx.Close()

	_ = xlsx.SetAppProps(&excelize.AppProperties{Application: "zenledger"})

	sheet := xlsx.GetSheetName(xlsx.GetActiveSheetIndex())
	if err := xlsx.SetSheetName(sheet, TransactionsSheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	if err := writeTransactions(xlsx, rows, txs); err != nil {
		return nil, err
	}

	if _, err := xlsx.NewSheet(AccountsSheet); err != nil {
		return nil, fmt.Errorf("create accounts sheet: %w", err)
	}
	if err := writeAccounts(xlsx, ledger.Balances(accounts, txs)); err != nil {
		return nil, err
	}

	buf, err := xlsx.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func writeTransactions(xlsx *excelize.File, rows [][]string, txs []core.Transaction) error {
	sheet := TransactionsSheet
	_ = xlsx.SetColWidth(sheet, "A", "B", 12)
	_ = xlsx.SetColWidth(sheet, "C", "D", 18)
	_ = xlsx.SetColWidth(sheet, "E", "E", 12)
	_ = xlsx.SetColWidth(sheet, "F", "H", 30)

	if err := writeHeader(xlsx, sheet, Header); err != nil {
		return err
	}
	for i, row := range rows {
		r := i + 2
		for j, v := range row {
			name := cell(j, r)
			var err error
			if j == 4 {
				err = xlsx.SetCellFloat(sheet, name, txs[i].Amount, 2, 64)
			} else {
				err = xlsx.SetCellStr(sheet, name, v)
			}
			if err != nil {
				return fmt.Errorf("set %s: %w", name, err)
			}
		}
	}
	if len(rows) > 0 {
		style, err := xlsx.NewStyle(mergeStyles(defaultStyle(), numberFormat(), textAlignment("right")))
		if err != nil {
			return fmt.Errorf("amount style: %w", err)
		}
		_ = xlsx.SetCellStyle(sheet, cell(4, 2), cell(4, len(rows)+1), style)
	}
	return nil
}

func writeAccounts(xlsx *excelize.File, balances []ledger.AccountBalance) error {
	sheet := AccountsSheet
	_ = xlsx.SetColWidth(sheet, "A", "A", 20)
	_ = xlsx.SetColWidth(sheet, "B", "E", 15)

	if err := writeHeader(xlsx, sheet, []string{"Name", "Type", "Initial Balance", "Balance", "In Net Worth"}); err != nil {
		return err
	}
	for i, b := range balances {
		r := i + 2
		inNetWorth := "No"
		if b.IncludeInNetWorth {
			inNetWorth = "Yes"
		}
		_ = xlsx.SetCellStr(sheet, cell(0, r), b.Name)
		_ = xlsx.SetCellStr(sheet, cell(1, r), string(b.Kind))
		_ = xlsx.SetCellFloat(sheet, cell(2, r), b.InitialBalance, 2, 64)
		_ = xlsx.SetCellFloat(sheet, cell(3, r), b.Balance, 2, 64)
		_ = xlsx.SetCellStr(sheet, cell(4, r), inNetWorth)
	}

	total := len(balances) + 2
	_ = xlsx.SetCellStr(sheet, cell(0, total), "Net Worth")
	_ = xlsx.SetCellFloat(sheet, cell(3, total), ledger.NetWorth(balances), 2, 64)
	style, err := xlsx.NewStyle(mergeStyles(defaultStyle(), fontBold(), numberFormat(), thinBorder("top")))
	if err != nil {
		return fmt.Errorf("total style: %w", err)
	}
	_ = xlsx.SetCellStyle(sheet, cell(0, total), cell(4, total), style)

	if len(balances) > 0 {
		style, err := xlsx.NewStyle(mergeStyles(defaultStyle(), numberFormat()))
		if err != nil {
			return fmt.Errorf("balance style: %w", err)
		}
		_ = xlsx.SetCellStyle(sheet, cell(2, 2), cell(3, len(balances)+1), style)
	}
	return nil
}

func writeHeader(xlsx *excelize.File, sheet string, header []string) error {
	for j, h := range header {
		if err := xlsx.SetCellStr(sheet, cell(j, 1), h); err != nil {
			return fmt.Errorf("set header: %w", err)
		}
	}
	style, err := xlsx.NewStyle(mergeStyles(defaultStyle(), fontBold(), thinBorder("bottom")))
	if err != nil {
		return fmt.Errorf("header style: %w", err)
	}
	return xlsx.SetCellStyle(sheet, cell(0, 1), cell(len(header)-1, 1), style)
}

// cell names a zero-based column and one-based row.
func cell(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col+1, row)
	return name
}

func defaultStyle() *excelize.Style {
	return &excelize.Style{
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#FFFFFF"},
			Pattern: 1,
		},
	}
}

func numberFormat() *excelize.Style {
	f := "#,##0.00"
	return &excelize.Style{CustomNumFmt: &f}
}

func fontBold() *excelize.Style {
	return &excelize.Style{Font: &excelize.Font{Bold: true}}
}

func textAlignment(a string) *excelize.Style {
	return &excelize.Style{Alignment: &excelize.Alignment{Horizontal: a}}
}

func thinBorder(where ...string) *excelize.Style {
	s := &excelize.Style{}
	for _, w := range where {
		s.Border = append(s.Border, excelize.Border{Type: w, Color: "#000000", Style: 1})
	}
	return s
}

func mergeStyles(ext ...*excelize.Style) *excelize.Style {
	if len(ext) == 0 {
		return nil
	}
	for _, e := range ext[1:] {
		_ = mergo.Merge(ext[0], e, mergo.WithOverride)
	}
	return ext[0]
}
