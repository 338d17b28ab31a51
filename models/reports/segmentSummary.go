package reports

import (
	"bytes"
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/smartpharmacy/crm_backend/config"
	"github.com/smartpharmacy/crm_backend/models"
	"github.com/xuri/excelize/v2"
)

type SegmentSummaryRow struct {
	Segment       models.CustomerSegment `json:"segment"`
	CustomerCount int                    `json:"customer_count"`
	TotalSpending decimal.Decimal        `json:"total_spending"`
	AvgChurnRisk  float64                `json:"avg_churn_risk"`
}

func GetSegmentSummary(ctx context.Context) ([]*SegmentSummaryRow, error) {
	db := config.GetDB()

	var rows []*SegmentSummaryRow
	err := db.WithContext(ctx).Model(&models.Customer{}).
		Select("segment, COUNT(*) AS customer_count, COALESCE(SUM(total_spending), 0) AS total_spending, COALESCE(AVG(churn_risk), 0) AS avg_churn_risk").
		Group("segment").
		Order("customer_count DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// ExportSegmentSummaryExcel renders the segment summary as an xlsx file.
func ExportSegmentSummaryExcel(ctx context.Context) (*bytes.Buffer, error) {
	rows, err := GetSegmentSummary(ctx)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := "Segments"
	index, err := f.NewSheet(sheet)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	headers := []string{"Segment", "Customers", "Total Spending", "Avg Churn Risk"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return nil, err
		}
	}

	for i, row := range rows {
		rowNum := i + 2
		if err := f.SetCellValue(sheet, fmt.Sprintf("A%d", rowNum), string(row.Segment)); err != nil {
			return nil, err
		}
		if err := f.SetCellValue(sheet, fmt.Sprintf("B%d", rowNum), row.CustomerCount); err != nil {
			return nil, err
		}
		spending, _ := row.TotalSpending.Float64()
		if err := f.SetCellValue(sheet, fmt.Sprintf("C%d", rowNum), spending); err != nil {
			return nil, err
		}
		if err := f.SetCellValue(sheet, fmt.Sprintf("D%d", rowNum), row.AvgChurnRisk); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf, nil
}
