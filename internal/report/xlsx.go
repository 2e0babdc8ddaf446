package report

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/BruksfildServices01/kingdom-dashboard/internal/domain/view"
)

const xlsxSheet = "Citas"

var xlsxHeader = []any{"Fecha", "Hora", "Cliente", "Telefono", "Servicio", "Barbero", "Sede", "Precio"}

// ExportXLSX writes the rows as one sheet. Missing values are blank cells.
func ExportXLSX(rows []view.Row) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), xlsxSheet); err != nil {
		return nil, err
	}
	if err := f.SetSheetRow(xlsxSheet, "A1", &xlsxHeader); err != nil {
		return nil, err
	}

	for i, r := range rows {
		var date, price any
		if r.Date != nil {
			date = r.Date.Format("2006-01-02")
		}
		if p := r.Price(); p != nil {
			price = *p
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		line := []any{date, r.Time(), r.ClientFullName, r.Phone(), r.ServiceName(), r.BarberFullName, r.VenueName(), price}
		if err := f.SetSheetRow(xlsxSheet, cell, &line); err != nil {
			return nil, fmt.Errorf("write row %d: %w", i+1, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write xlsx: %w", err)
	}
	return buf.Bytes(), nil
}
