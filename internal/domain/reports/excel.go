package reports

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/mealtrace/catering/internal/platform/ist"
)

var businessRangeHeader = []string{
	"Patient Name",
	"Phone",
	"Admission Date",
	"Discharge Date",
	"Delivered Count",
	"Bill Amount",
}

// BusinessRangeXLSX renders billing rows into a spreadsheet for the vendor
// settlement workflow.
func BusinessRangeXLSX(rows []BusinessRangeRow) ([]byte, error) {
	f := excelize.NewFile()

	const sheet = "Business Range"
	index, err := f.NewSheet(sheet)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	f.DeleteSheet("Sheet1")
	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
	})
	if err != nil {
		f.Close()
		return nil, err
	}
	for i, h := range businessRangeHeader {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			f.Close()
			return nil, err
		}
	}
	last, _ := excelize.CoordinatesToCellName(len(businessRangeHeader), 1)
	if err := f.SetCellStyle(sheet, "A1", last, headerStyle); err != nil {
		f.Close()
		return nil, err
	}

	for i, row := range rows {
		discharge := ""
		if row.DischargeDate != nil {
			discharge = ist.DayString(*row.DischargeDate)
		}
		values := []interface{}{
			row.Name,
			row.Phone,
			ist.DayString(row.InDate),
			discharge,
			row.DeliveredCount,
			row.BillAmount,
		}
		for j, v := range values {
			cell, _ := excelize.CoordinatesToCellName(j+1, i+2)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				f.Close()
				return nil, err
			}
		}
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		f.Close()
		return nil, err
	}
	if err := f.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
