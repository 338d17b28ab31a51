package models

type CustomerSegment string

const (
	CustomerSegmentVIP      CustomerSegment = "VIP"
	CustomerSegmentDermoVIP CustomerSegment = "DERMO_VIP"
	CustomerSegmentStandard CustomerSegment = "STANDARD"
	CustomerSegmentNew      CustomerSegment = "NEW"
	CustomerSegmentLost     CustomerSegment = "LOST"
)

type ProductCategory string

const (
	ProductCategoryIlac    ProductCategory = "ILAC"
	ProductCategoryDermo   ProductCategory = "DERMO"
	ProductCategoryOTC     ProductCategory = "OTC"
	ProductCategoryMama    ProductCategory = "MAMA"
	ProductCategoryVitamin ProductCategory = "VITAMIN"
	ProductCategoryOther   ProductCategory = "OTHER"
)

type TaskType string

const (
	TaskTypeReplenishment   TaskType = "REPLENISHMENT"
	TaskTypeChurnPrevention TaskType = "CHURN_PREVENTION"
	TaskTypeVIPFollowup     TaskType = "VIP_FOLLOWUP"
	TaskTypeDermoConsult    TaskType = "DERMO_CONSULT"
	TaskTypeGeneral         TaskType = "GENERAL"
)

type TaskStatus string

const (
	TaskStatusPending     TaskStatus = "PENDING"
	TaskStatusInProgress  TaskStatus = "IN_PROGRESS"
	TaskStatusCompleted   TaskStatus = "COMPLETED"
	TaskStatusUnreachable TaskStatus = "UNREACHABLE"
	TaskStatusCancelled   TaskStatus = "CANCELLED"
)

// OpenTaskStatuses are the statuses that still count as "open" for task
// generation dedup checks.
var OpenTaskStatuses = []TaskStatus{TaskStatusPending, TaskStatusInProgress}

type TaskPriority string

const (
	TaskPriorityLow    TaskPriority = "LOW"
	TaskPriorityMedium TaskPriority = "MEDIUM"
	TaskPriorityHigh   TaskPriority = "HIGH"
	TaskPriorityUrgent TaskPriority = "URGENT"
)

type ReportType string

const (
	ReportTypeCustomerPoints ReportType = "CUSTOMER_POINTS"
	ReportTypeProductSales   ReportType = "PRODUCT_SALES"
	ReportTypeCustomerSales  ReportType = "CUSTOMER_SALES"
)

func (r ReportType) IsValid() bool {
	switch r {
	case ReportTypeCustomerPoints, ReportTypeProductSales, ReportTypeCustomerSales:
		return true
	}
	return false
}

const (
	RunStatusPending    = "PENDING"
	RunStatusProcessing = "PROCESSING"
	RunStatusCompleted  = "COMPLETED"
	RunStatusFailed     = "FAILED"
)

const (
	RunTriggeredManual = "manual"
	RunTriggeredUpload = "upload"
	RunTriggeredRetry  = "retry"
)

type UserRole string

const (
	UserRoleAdmin    UserRole = "A"
	UserRoleOperator UserRole = "O"
)
