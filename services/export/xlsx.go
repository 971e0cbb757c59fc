// Package exportsvc writes the visual table of a page to a spreadsheet.
package exportsvc

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"

	"github.com/trezcool/masomo-sync/core/entity"
)

var now = time.Now // mockable

// XLSX exports pages as Excel workbooks, one sheet named after the entity kind.
type XLSX struct {
	dir string
}

func NewXLSX(dir string) *XLSX {
	return &XLSX{dir: dir}
}

// Write writes the rows of page, in display order, to w.
func (x *XLSX) Write(page *entity.Page, w io.Writer) error {
	f, err := x.build(page)
	if err != nil {
		return err
	}
	defer closeFile(f)

	if err = f.Write(w); err != nil {
		return errors.Wrap(err, "writing workbook")
	}
	return nil
}

// Save writes the workbook into the export directory and returns its path.
func (x *XLSX) Save(page *entity.Page) (string, error) {
	if err := os.MkdirAll(x.dir, 0o755); err != nil {
		return "", errors.Wrap(err, "creating export dir")
	}
	name := fmt.Sprintf("%s-%s.xlsx", page.Spec().Kind, now().Format("20060102-150405"))
	path := filepath.Join(x.dir, name)

	f, err := x.build(page)
	if err != nil {
		return "", err
	}
	defer closeFile(f)

	if err = f.SaveAs(path); err != nil {
		return "", errors.Wrapf(err, "saving %s", path)
	}
	return path, nil
}

func (x *XLSX) build(page *entity.Page) (*excelize.File, error) {
	rows := page.Rows()
	sheet := page.Spec().Kind

	f := excelize.NewFile()
	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		closeFile(f)
		return nil, errors.Wrap(err, "naming sheet")
	}

	header := []interface{}{"key"}
	if len(rows) > 0 {
		for _, c := range rows[0].Columns {
			header = append(header, c.Name)
		}
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		closeFile(f)
		return nil, errors.Wrap(err, "writing header")
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err == nil {
		err = f.SetRowStyle(sheet, 1, 1, bold)
	}
	if err != nil {
		closeFile(f)
		return nil, errors.Wrap(err, "styling header")
	}

	for i, r := range rows {
		values := make([]interface{}, 0, len(r.Columns)+1)
		values = append(values, r.Key.String())
		for _, c := range r.Columns {
			values = append(values, c.Text)
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			closeFile(f)
			return nil, err
		}
		if err = f.SetSheetRow(sheet, cell, &values); err != nil {
			closeFile(f)
			return nil, errors.Wrapf(err, "writing row %d", i+2)
		}
	}
	return f, nil
}

func closeFile(f *excelize.File) {
	if err := f.Close(); err != nil {
		log.Printf("Error closing excel file: %v", err)
	}
}
