package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/drivewise-academy/backend/config"
	"github.com/drivewise-academy/backend/models"
)

// ExportApplications writes the full application register as an Excel
// workbook for the admin download.
func ExportApplications(w http.ResponseWriter, r *http.Request) {
	var apps []models.Application
	if err := config.DB.Order("submitted_at DESC").Find(&apps).Error; err != nil {
		http.Error(w, "DB error: "+err.Error(), http.StatusInternalServerError)
		return
	}

	f, err := createApplicationsWorkbook(apps)
	if err != nil {
		http.Error(w, "Failed to generate Excel file", http.StatusInternalServerError)
		return
	}

	buffer, err := f.WriteToBuffer()
	if err != nil {
		http.Error(w, "Failed to write Excel file", http.StatusInternalServerError)
		return
	}

	filename := fmt.Sprintf("llr_applications_%s.xlsx", time.Now().Format("20060102_150405"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	w.Header().Set("Content-Length", fmt.Sprintf("%d", buffer.Len()))

	w.WriteHeader(http.StatusOK)
	w.Write(buffer.Bytes())
}

func createApplicationsWorkbook(apps []models.Application) (*excelize.File, error) {
	f := excelize.NewFile()
	sheet := "Applications"
	f.SetSheetName("Sheet1", sheet)

	f.SetCellValue(sheet, "A1", "LLR Application Register")
	titleStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{
			Bold: true,
			Size: 14,
		},
	})
	f.SetCellStyle(sheet, "A1", "A1", titleStyle)
	f.SetCellValue(sheet, "A2", fmt.Sprintf("Generated: %s", time.Now().Format("2006-01-02 15:04")))

	headers := []string{
		"Application ID", "Full Name", "Phone", "Vehicle Class",
		"Total Fee", "Paid Amount", "Pending Amount",
		"Payment Status", "Due Date", "Submitted At",
	}
	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{
			Bold: true,
		},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#DDEBF7"},
			Pattern: 1,
		},
	})
	for colIdx, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(colIdx+1, 4)
		f.SetCellValue(sheet, cell, h)
		f.SetCellStyle(sheet, cell, cell, headerStyle)
	}

	for rowIdx, app := range apps {
		values := []interface{}{
			app.ApplicationID,
			app.FullName,
			app.Phone,
			app.ClassOfVehicle,
			app.TotalFee.InexactFloat64(),
			app.PaidAmount.InexactFloat64(),
			app.PendingAmount().InexactFloat64(),
			string(app.PaymentStatus),
			app.PaymentDueDate,
			app.SubmittedAt.Format("2006-01-02 15:04"),
		}
		for colIdx, v := range values {
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, rowIdx+5)
			f.SetCellValue(sheet, cell, v)
		}
	}

	f.SetColWidth(sheet, "A", "B", 20)
	f.SetColWidth(sheet, "C", "J", 15)

	return f, nil
}
