package admin

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/roach88/punchctl/internal/punch"
)

// SheetName is the worksheet Export writes.
const SheetName = "Punch Logs"

var exportHeader = []any{
	"Date", "User", "Client ID", "Customer Name",
	"Punch In Time", "Punch In Location",
	"Punch Out Time", "Punch Out Date", "Punch Out Location",
	"Total Time", "Photo URL",
}

// Export writes logs to w as an .xlsx workbook with a header row and one
// row per log.
func Export(w io.Writer, logs []punch.Log) error {
	f := excelize.NewFile()
	defer f.Close()

	idx, err := f.NewSheet(SheetName)
	if err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}
	f.SetActiveSheet(idx)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("drop default sheet: %w", err)
	}

	if err := f.SetSheetRow(SheetName, "A1", &exportHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i, l := range logs {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []any{
			l.PunchDate, l.Username, l.ClientID, l.CustomerName,
			l.PunchInTime, l.PunchInLocation,
			l.PunchOutTime, l.PunchOutDate, l.PunchOutLocation,
			totalTime(l), l.PhotoURL,
		}
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func totalTime(l punch.Log) string {
	if l.TotalTimeSpent == nil {
		return punch.FormatTimeSpent(0)
	}
	return punch.FormatTimeSpent(l.TotalTimeSpent.Total())
}
