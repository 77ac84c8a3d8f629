package controllers

import (
	"encoding/csv"
	"errors"
	"fmt"
	"mime/multipart"
	"strconv"
	"strings"

	"oquvmarkaz_go/middleware"
	"oquvmarkaz_go/services"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"
)

// LedgerImportController bulk-loads payment rows from an uploaded CSV or XLSX
// file. Each row goes through the same recording path as a single payment, so
// the upsert and validity rules hold for imported data too.
type LedgerImportController struct {
	ledger *services.LedgerService
}

func NewLedgerImportController() *LedgerImportController {
	return &LedgerImportController{ledger: services.NewLedgerService()}
}

type importRow struct {
	line      int
	studentID uint
	month     string
	amount    float64
	method    string
	note      string
}

type importError struct {
	Line  int    `json:"line"`
	Error string `json:"error"`
}

// ImportPayments accepts a multipart "file" (csv or xlsx) with columns
// student_id, month, amount, method and optional note. Rows are imported
// independently: a bad row is reported and skipped, good rows still land.
func (lc *LedgerImportController) ImportPayments(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "File is required",
		})
	}

	var recordedBy uint
	if user, uerr := middleware.GetCurrentUser(c); uerr == nil {
		recordedBy = user.ID
	}

	var records [][]string
	name := strings.ToLower(fileHeader.Filename)
	switch {
	case strings.HasSuffix(name, ".csv"):
		records, err = readCSV(fileHeader)
	case strings.HasSuffix(name, ".xlsx"):
		records, err = readXLSX(fileHeader)
	default:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unsupported file type, expected .csv or .xlsx",
		})
	}
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": fmt.Sprintf("Failed to read file: %v", err),
		})
	}
	if len(records) < 2 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "File has no data rows",
		})
	}

	cols, err := mapHeaderIndexes(records[0])
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	imported := 0
	importErrors := make([]importError, 0)

	for i, record := range records[1:] {
		line := i + 2
		row, perr := parseImportRow(record, cols, line)
		if perr != nil {
			importErrors = append(importErrors, importError{Line: line, Error: perr.Error()})
			continue
		}

		_, rerr := lc.ledger.RecordPayment(services.RecordPaymentInput{
			StudentID:  row.studentID,
			Month:      row.month,
			Amount:     row.amount,
			Method:     row.method,
			Note:       row.note,
			RecordedBy: recordedBy,
		})
		if rerr != nil {
			msg := "internal error"
			if errors.Is(rerr, services.ErrValidation) {
				msg = rerr.Error()
			} else {
				logrus.WithError(rerr).WithField("line", line).Error("ledger import row failed")
			}
			importErrors = append(importErrors, importError{Line: line, Error: msg})
			continue
		}
		imported++
	}

	middleware.LogActivity(c, "CREATE", "payments", 0, map[string]int{
		"imported": imported,
		"failed":   len(importErrors),
	})

	return c.JSON(fiber.Map{
		"imported": imported,
		"failed":   len(importErrors),
		"errors":   importErrors,
	})
}

func readCSV(fileHeader *multipart.FileHeader) ([][]string, error) {
	src, err := fileHeader.Open()
	if err != nil {
		return nil, err
	}
	defer src.Close()

	reader := csv.NewReader(src)
	reader.FieldsPerRecord = -1
	return reader.ReadAll()
}

func readXLSX(fileHeader *multipart.FileHeader) ([][]string, error) {
	src, err := fileHeader.Open()
	if err != nil {
		return nil, err
	}
	defer src.Close()

	f, err := excelize.OpenReader(src)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	return f.GetRows(sheet)
}

// mapHeaderIndexes locates the required columns by header name,
// case-insensitively.
func mapHeaderIndexes(header []string) (map[string]int, error) {
	cols := make(map[string]int)
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, required := range []string{"student_id", "month", "amount", "method"} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("missing required column %q", required)
		}
	}
	return cols, nil
}

func parseImportRow(record []string, cols map[string]int, line int) (*importRow, error) {
	get := func(name string) string {
		idx, ok := cols[name]
		if !ok || idx >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[idx])
	}

	sid, err := strconv.ParseUint(get("student_id"), 10, 32)
	if err != nil {
		return nil, fmt.Errorf("invalid student_id %q", get("student_id"))
	}

	amount := services.ParseCurrency(get("amount"))
	if amount <= 0 {
		return nil, fmt.Errorf("invalid amount %q", get("amount"))
	}

	return &importRow{
		line:      line,
		studentID: uint(sid),
		month:     get("month"),
		amount:    amount,
		method:    get("method"),
		note:      get("note"),
	}, nil
}
