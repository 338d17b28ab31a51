package triasync

import (
	"context"
	"strings"
	"testing"

	"github.com/smartpharmacy/crm_backend/models"
)

// An unrecognized report type must fail before the report is fetched or any
// row is read, so the run record carries a clean invalid-argument error.
func TestExecuteRunRejectsUnknownReportType(t *testing.T) {
	run := &models.IngestionRun{
		ID:         1,
		ReportType: "INVENTORY",
		ObjectKey:  "reports/inventory/abc.xlsx",
	}

	summary, err := executeRun(context.Background(), run)
	if err == nil {
		t.Fatal("expected an error for an unknown report type")
	}
	if !strings.Contains(err.Error(), "unknown report type") {
		t.Errorf("err = %v", err)
	}
	if summary != nil {
		t.Errorf("summary = %+v, want nil", summary)
	}
}
