package handler

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"time"

	"github.com/yudopr11/yupi/internal/ledger"
	"github.com/yudopr11/yupi/internal/middleware"
	"github.com/yudopr11/yupi/internal/models"
	"github.com/yudopr11/yupi/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

// ExportHandler serves transaction exports as CSV and XLSX downloads. The
// same filters as the transaction listing apply.
type ExportHandler struct {
	DB *gorm.DB
}

func NewExportHandler(db *gorm.DB) *ExportHandler {
	return &ExportHandler{DB: db}
}

var exportHeaders = []string{
	"Date", "Description", "Type", "Amount", "Transfer Fee",
	"Account", "Category", "Destination Account",
}

type exportRow struct {
	Date               string
	Description        string
	Type               string
	Amount             string
	TransferFee        string
	Account            string
	Category           string
	DestinationAccount string
}

// exportRows fetches the filtered transactions and resolves account and
// category names in two lookups instead of per-row joins.
func (h *ExportHandler) exportRows(c *gin.Context, userID uint) ([]exportRow, error) {
	filter, err := transactionFilterFromQuery(c)
	if err != nil {
		return nil, &ledger.ValidationError{Reason: err.Error()}
	}

	query, err := ledger.FilteredTransactions(h.DB, userID, filter)
	if err != nil {
		return nil, err
	}

	var transactions []models.Transaction
	if err := query.Find(&transactions).Error; err != nil {
		return nil, err
	}

	accountNames := map[uint]string{}
	var accounts []models.Account
	if err := h.DB.Where("user_id = ?", userID).Find(&accounts).Error; err != nil {
		return nil, err
	}
	for _, a := range accounts {
		accountNames[a.ID] = a.Name
	}

	categoryNames := map[uint]string{}
	var categories []models.Category
	if err := h.DB.Where("user_id = ?", userID).Find(&categories).Error; err != nil {
		return nil, err
	}
	for _, cat := range categories {
		categoryNames[cat.ID] = cat.Name
	}

	rows := make([]exportRow, 0, len(transactions))
	for i := range transactions {
		tx := &transactions[i]
		row := exportRow{
			Date:        tx.TransactionDate.Format("2006-01-02"),
			Description: tx.Description,
			Type:        string(tx.Type),
			Amount:      tx.Amount.StringFixed(2),
			TransferFee: tx.TransferFee.StringFixed(2),
			Account:     accountNames[tx.AccountID],
		}
		if tx.CategoryID != nil {
			row.Category = categoryNames[*tx.CategoryID]
		}
		if tx.DestinationAccountID != nil {
			row.DestinationAccount = accountNames[*tx.DestinationAccountID]
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// ExportCSV streams the filtered transactions as a CSV download.
func (h *ExportHandler) ExportCSV(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "Not authenticated")
		return
	}

	rows, err := h.exportRows(c, user.ID)
	if err != nil {
		util.DomainError(c, err)
		return
	}

	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"transactions_%s.csv\"",
		time.Now().Format("20060102")))

	// UTF-8 BOM so spreadsheet apps detect the encoding
	c.Writer.Write([]byte{0xEF, 0xBB, 0xBF})

	writer := csv.NewWriter(c.Writer)
	defer writer.Flush()

	writer.Write(exportHeaders)
	for _, row := range rows {
		writer.Write([]string{
			row.Date, row.Description, row.Type, row.Amount, row.TransferFee,
			row.Account, row.Category, row.DestinationAccount,
		})
	}
}

// ExportXLSX streams the filtered transactions as an Excel workbook.
func (h *ExportHandler) ExportXLSX(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "Not authenticated")
		return
	}

	rows, err := h.exportRows(c, user.ID)
	if err != nil {
		util.DomainError(c, err)
		return
	}

	f := excelize.NewFile()
	sheetName := "Transactions"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to create worksheet")
		return
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	for i, header := range exportHeaders {
		cell := fmt.Sprintf("%c1", 'A'+i)
		f.SetCellValue(sheetName, cell, header)
	}

	for idx, row := range rows {
		r := idx + 2
		f.SetCellValue(sheetName, fmt.Sprintf("A%d", r), row.Date)
		f.SetCellValue(sheetName, fmt.Sprintf("B%d", r), row.Description)
		f.SetCellValue(sheetName, fmt.Sprintf("C%d", r), row.Type)
		f.SetCellValue(sheetName, fmt.Sprintf("D%d", r), row.Amount)
		f.SetCellValue(sheetName, fmt.Sprintf("E%d", r), row.TransferFee)
		f.SetCellValue(sheetName, fmt.Sprintf("F%d", r), row.Account)
		f.SetCellValue(sheetName, fmt.Sprintf("G%d", r), row.Category)
		f.SetCellValue(sheetName, fmt.Sprintf("H%d", r), row.DestinationAccount)
	}

	f.SetColWidth(sheetName, "A", "A", 12)
	f.SetColWidth(sheetName, "B", "B", 30)
	f.SetColWidth(sheetName, "C", "C", 10)
	f.SetColWidth(sheetName, "D", "E", 12)
	f.SetColWidth(sheetName, "F", "H", 18)

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"transactions_%s.xlsx\"",
		time.Now().Format("20060102")))

	if err := f.Write(c.Writer); err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to export workbook")
	}
}
