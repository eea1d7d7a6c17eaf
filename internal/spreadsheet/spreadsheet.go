package spreadsheet

import (
	"fmt"
	"io"
	"strings"

	"github.com/deqistore/deqistore-backend/internal/app/model"
	"github.com/deqistore/deqistore-backend/internal/app/service"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

const (
	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	sheetName   = "Products"
)

var exportHeader = []interface{}{"ID", "Name", "Price", "Description", "Image URL", "Created At"}

// ExportProducts writes the catalog as a single-sheet workbook
func ExportProducts(w io.Writer, products []model.Product) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), sheetName); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}
	if err := f.SetSheetRow(sheetName, "A1", &exportHeader); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for i, p := range products {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []interface{}{
			p.ID,
			p.Name,
			p.Price.StringFixed(2),
			p.Description,
			p.ImageURL,
			p.CreatedAt.Format("2006-01-02 15:04:05"),
		}
		if err := f.SetSheetRow(sheetName, cell, &row); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// ImportResult holds the usable rows of an import file
type ImportResult struct {
	Products []service.ProductInput
	Skipped  int
}

// ReadProducts reads the first sheet. The header row must name the columns
// "name" and "price"; "description" is optional. Rows without a name or with
// an unparsable price are skipped.
func ReadProducts(r io.Reader) (*ImportResult, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open XLSX file: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, fmt.Errorf("no sheets found in XLSX file")
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("no data found in XLSX file")
	}

	columns := make(map[string]int, len(rows[0]))
	for i, h := range rows[0] {
		columns[strings.ToLower(strings.TrimSpace(h))] = i
	}
	nameCol, okName := columns["name"]
	priceCol, okPrice := columns["price"]
	if !okName || !okPrice {
		return nil, fmt.Errorf("header must contain name and price columns")
	}
	descCol, hasDesc := columns["description"]

	result := &ImportResult{}
	for _, row := range rows[1:] {
		name := cellAt(row, nameCol)
		price, err := decimal.NewFromString(cellAt(row, priceCol))
		if name == "" || err != nil {
			result.Skipped++
			continue
		}

		input := service.ProductInput{Name: name, Price: price}
		if hasDesc {
			input.Description = cellAt(row, descCol)
		}
		result.Products = append(result.Products, input)
	}
	return result, nil
}

func cellAt(row []string, i int) string {
	if i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}
