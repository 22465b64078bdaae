package reporting

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"almanac/internal/seasonal"
)

// DefaultExcelReporter implements Excel workbook output.
type DefaultExcelReporter struct{}

// NewDefaultExcelReporter creates a new Excel reporter.
func NewDefaultExcelReporter() *DefaultExcelReporter {
	return &DefaultExcelReporter{}
}

// WriteReportXLSX writes a two-sheet workbook: the seasonal stats table
// and the trades table with its summary rows. Headers are styled and
// frozen so year columns stay readable while scrolling.
func (r *DefaultExcelReporter) WriteReportXLSX(req Request, stats seasonal.StatsResult, trades seasonal.TradesResult, path string) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	fx := excelize.NewFile()
	defer fx.Close()

	const statsSheet = "Stats"
	const tradesSheet = "Trades"

	fx.SetSheetName(fx.GetSheetName(0), statsSheet)
	if _, err := fx.NewSheet(tradesSheet); err != nil {
		return err
	}

	styles, err := r.createExcelStyles(fx)
	if err != nil {
		return err
	}

	if err := r.writeStatsSheet(fx, statsSheet, stats, styles); err != nil {
		return err
	}
	if err := r.writeTradesSheet(fx, tradesSheet, trades, styles); err != nil {
		return err
	}

	return fx.SaveAs(path)
}

// createExcelStyles creates the workbook's shared styles.
func (r *DefaultExcelReporter) createExcelStyles(fx *excelize.File) (ExcelStyles, error) {
	var styles ExcelStyles
	var err error

	// Header style - dark background with white text
	styles.HeaderStyle, err = fx.NewStyle(&excelize.Style{
		Font: &excelize.Font{
			Bold:   true,
			Size:   11,
			Color:  "FFFFFF",
			Family: "Calibri",
		},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"2F4F4F"},
			Pattern: 1,
		},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})
	if err != nil {
		return styles, err
	}

	// Plain text style (left aligned)
	styles.TextStyle, err = fx.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{
			Horizontal: "left",
		},
		Border: []excelize.Border{
			{Type: "left", Color: "E0E0E0", Style: 1},
			{Type: "right", Color: "E0E0E0", Style: 1},
			{Type: "bottom", Color: "E0E0E0", Style: 1},
		},
	})
	if err != nil {
		return styles, err
	}

	// Number style (right aligned, two decimals)
	styles.NumberStyle, err = fx.NewStyle(&excelize.Style{
		NumFmt: 2,
		Alignment: &excelize.Alignment{
			Horizontal: "right",
		},
		Border: []excelize.Border{
			{Type: "left", Color: "E0E0E0", Style: 1},
			{Type: "right", Color: "E0E0E0", Style: 1},
			{Type: "bottom", Color: "E0E0E0", Style: 1},
		},
	})
	if err != nil {
		return styles, err
	}

	// Green text for bullish cells
	styles.BullStyle, err = fx.NewStyle(&excelize.Style{
		Font: &excelize.Font{
			Color: "008000",
			Bold:  true,
		},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
		},
		Border: []excelize.Border{
			{Type: "left", Color: "E0E0E0", Style: 1},
			{Type: "right", Color: "E0E0E0", Style: 1},
			{Type: "bottom", Color: "E0E0E0", Style: 1},
		},
	})
	if err != nil {
		return styles, err
	}

	// Red text for bearish cells
	styles.BearStyle, err = fx.NewStyle(&excelize.Style{
		Font: &excelize.Font{
			Color: "FF0000",
			Bold:  true,
		},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
		},
		Border: []excelize.Border{
			{Type: "left", Color: "E0E0E0", Style: 1},
			{Type: "right", Color: "E0E0E0", Style: 1},
			{Type: "bottom", Color: "E0E0E0", Style: 1},
		},
	})
	if err != nil {
		return styles, err
	}

	// Bold summary rows with light fill
	styles.SummaryStyle, err = fx.NewStyle(&excelize.Style{
		Font: &excelize.Font{
			Bold: true,
		},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"F0F0F0"},
			Pattern: 1,
		},
		Border: []excelize.Border{
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "E0E0E0", Style: 1},
		},
	})
	return styles, err
}

func (r *DefaultExcelReporter) writeStatsSheet(fx *excelize.File, sheet string, stats seasonal.StatsResult, styles ExcelStyles) error {
	header := []interface{}{"Period", "Trend %", "Direction", "EV", "Avg"}
	for i := len(stats.Years) - 1; i >= 0; i-- {
		header = append(header, stats.Years[i])
	}
	if err := r.writeHeaderRow(fx, sheet, header, styles); err != nil {
		return err
	}

	for i, row := range stats.Rows {
		rowNum := i + 2
		setCell(fx, sheet, 1, rowNum, row.Label, styles.TextStyle)
		if row.TrendPct != nil {
			setCell(fx, sheet, 2, rowNum, *row.TrendPct, styles.NumberStyle)
		} else {
			setCell(fx, sheet, 2, rowNum, nil, styles.NumberStyle)
		}
		switch {
		case row.IsBullish == nil:
			setCell(fx, sheet, 3, rowNum, nil, styles.TextStyle)
		case *row.IsBullish:
			setCell(fx, sheet, 3, rowNum, "Bull", styles.BullStyle)
		default:
			setCell(fx, sheet, 3, rowNum, "Bear", styles.BearStyle)
		}
		setOptionalCell(fx, sheet, 4, rowNum, row.EV, styles.NumberStyle)
		setOptionalCell(fx, sheet, 5, rowNum, row.Avg, styles.NumberStyle)
		for j := 0; j < len(stats.Years); j++ {
			year := stats.Years[len(stats.Years)-1-j]
			setOptionalCell(fx, sheet, 6+j, rowNum, row.Years[year], styles.NumberStyle)
		}
	}

	fx.SetColWidth(sheet, "A", "A", 12)
	lastCol, _ := excelize.ColumnNumberToName(5 + len(stats.Years))
	fx.SetColWidth(sheet, "B", lastCol, 10)
	return freezeHeaderRow(fx, sheet)
}

func (r *DefaultExcelReporter) writeTradesSheet(fx *excelize.File, sheet string, trades seasonal.TradesResult, styles ExcelStyles) error {
	years := trades.Years
	header := []interface{}{"Entry", "Exit", "Avg Profit %", "Days", "Annualized %"}
	for i := len(years) - 1; i >= 0; i-- {
		header = append(header, years[i])
	}
	if err := r.writeHeaderRow(fx, sheet, header, styles); err != nil {
		return err
	}

	rowNum := 1
	for _, trade := range trades.Trades {
		rowNum++
		setCell(fx, sheet, 1, rowNum, trade.EntryDate, styles.TextStyle)
		setCell(fx, sheet, 2, rowNum, trade.ExitDate, styles.TextStyle)
		setCell(fx, sheet, 3, rowNum, trade.AvgProfit, styles.NumberStyle)
		setCell(fx, sheet, 4, rowNum, trade.Days, styles.NumberStyle)
		setCell(fx, sheet, 5, rowNum, trade.Annualized, styles.NumberStyle)
		for j := 0; j < len(years); j++ {
			year := years[len(years)-1-j]
			setOptionalCell(fx, sheet, 6+j, rowNum, trade.Years[year], styles.NumberStyle)
		}
	}

	summary := trades.Summary

	rowNum++
	setCell(fx, sheet, 1, rowNum, "TOTAL", styles.SummaryStyle)
	setCell(fx, sheet, 2, rowNum, nil, styles.SummaryStyle)
	setCell(fx, sheet, 3, rowNum, summary.AvgProfit, styles.SummaryStyle)
	setCell(fx, sheet, 4, rowNum, summary.AvgDays, styles.SummaryStyle)
	setCell(fx, sheet, 5, rowNum, summary.Annualized, styles.SummaryStyle)
	for j := 0; j < len(years); j++ {
		year := years[len(years)-1-j]
		setOptionalCell(fx, sheet, 6+j, rowNum, summary.YearTotals[year], styles.SummaryStyle)
	}

	rowNum++
	setCell(fx, sheet, 1, rowNum, "B&H", styles.SummaryStyle)
	setCell(fx, sheet, 2, rowNum, nil, styles.SummaryStyle)
	setCell(fx, sheet, 3, rowNum, summary.BHProfit, styles.SummaryStyle)
	setCell(fx, sheet, 4, rowNum, 365, styles.SummaryStyle)
	setCell(fx, sheet, 5, rowNum, summary.BHProfit, styles.SummaryStyle)
	for j := 0; j < len(years); j++ {
		year := years[len(years)-1-j]
		setOptionalCell(fx, sheet, 6+j, rowNum, summary.YearBH[year], styles.SummaryStyle)
	}

	rowNum++
	setCell(fx, sheet, 1, rowNum, "EDGE", styles.SummaryStyle)
	setCell(fx, sheet, 2, rowNum, "vs B&H", styles.SummaryStyle)
	setCell(fx, sheet, 3, rowNum, nil, styles.SummaryStyle)
	setCell(fx, sheet, 4, rowNum, nil, styles.SummaryStyle)
	setCell(fx, sheet, 5, rowNum, summary.Edge, styles.SummaryStyle)

	fx.SetColWidth(sheet, "A", "B", 12)
	lastCol, _ := excelize.ColumnNumberToName(5 + len(years))
	fx.SetColWidth(sheet, "C", lastCol, 12)
	return freezeHeaderRow(fx, sheet)
}

func (r *DefaultExcelReporter) writeHeaderRow(fx *excelize.File, sheet string, header []interface{}, styles ExcelStyles) error {
	for i, value := range header {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := fx.SetCellValue(sheet, cell, value); err != nil {
			return err
		}
		if err := fx.SetCellStyle(sheet, cell, cell, styles.HeaderStyle); err != nil {
			return err
		}
	}
	return nil
}

func setCell(fx *excelize.File, sheet string, col, row int, value interface{}, style int) {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return
	}
	if value != nil {
		fx.SetCellValue(sheet, cell, value)
	}
	fx.SetCellStyle(sheet, cell, cell, style)
}

func setOptionalCell(fx *excelize.File, sheet string, col, row int, value *float64, style int) {
	if value == nil {
		setCell(fx, sheet, col, row, nil, style)
		return
	}
	setCell(fx, sheet, col, row, *value, style)
}

func freezeHeaderRow(fx *excelize.File, sheet string) error {
	return fx.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}
