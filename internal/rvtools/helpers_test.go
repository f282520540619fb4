package rvtools_test

import (
	"bytes"
	"fmt"

	. "github.com/onsi/gomega"
	"github.com/xuri/excelize/v2"
)

type sheetSpec struct {
	name    string
	headers []string
	rows    [][]string
}

func setCellValue(f *excelize.File, sheet, ref string, value any) {
	Expect(f.SetCellValue(sheet, ref, value)).To(Succeed())
}

func columnToLetter(col int) string {
	name, _ := excelize.ColumnNumberToName(col + 1)
	return name
}

// buildWorkbook returns xlsx content holding the sheets in the given order.
func buildWorkbook(sheets ...sheetSpec) []byte {
	f := excelize.NewFile()
	defer f.Close()

	for i, sheet := range sheets {
		if i == 0 {
			Expect(f.SetSheetName("Sheet1", sheet.name)).To(Succeed())
		} else {
			_, err := f.NewSheet(sheet.name)
			Expect(err).To(Succeed())
		}

		for col, header := range sheet.headers {
			setCellValue(f, sheet.name, columnToLetter(col)+"1", header)
		}
		for r, row := range sheet.rows {
			for col, value := range row {
				setCellValue(f, sheet.name, fmt.Sprintf("%s%d", columnToLetter(col), r+2), value)
			}
		}
	}

	var buf bytes.Buffer
	_, err := f.WriteTo(&buf)
	Expect(err).To(Succeed())
	return buf.Bytes()
}

func vInfoSheet(rows ...[]string) sheetSpec {
	return sheetSpec{
		name:    "vInfo",
		headers: []string{"VM", "Powerstate", "Template", "CPUs", "Memory", "Cluster", "Host", "OS according to the VMware Tools"},
		rows:    rows,
	}
}

func vHostSheet(rows ...[]string) sheetSpec {
	return sheetSpec{
		name:    "vHost",
		headers: []string{"Host", "Cluster", "# CPU", "Cores per CPU", "# Memory", "ESX Version"},
		rows:    rows,
	}
}
