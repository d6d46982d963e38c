package domain

import (
	"time"

	"github.com/google/uuid"
)

// DTOs for API responses. Timestamps are ISO 8601 strings.

type CompanyDTO struct {
	ID               uuid.UUID   `json:"id"`
	Name             string      `json:"name"`
	Type             CompanyType `json:"type"`
	VATNumber        string      `json:"vatNumber,omitempty"`
	TaxCode          string      `json:"taxCode,omitempty"`
	Email            string      `json:"email,omitempty"`
	PECEmail         string      `json:"pecEmail,omitempty"`
	Phone            string      `json:"phone,omitempty"`
	Mobile           string      `json:"mobile,omitempty"`
	Website          string      `json:"website,omitempty"`
	Address          string      `json:"address,omitempty"`
	City             string      `json:"city,omitempty"`
	Province         string      `json:"province,omitempty"`
	PostalCode       string      `json:"postalCode,omitempty"`
	Country          string      `json:"country"`
	Industry         string      `json:"industry,omitempty"`
	Notes            string      `json:"notes,omitempty"`
	AccountManagerID *uuid.UUID  `json:"accountManagerId,omitempty"`
	IsActive         bool        `json:"isActive"`
	Contacts         []ContactDTO `json:"contacts,omitempty"`
	CreatedAt        string      `json:"createdAt"`
	UpdatedAt        string      `json:"updatedAt"`
}

type ContactDTO struct {
	ID              uuid.UUID `json:"id"`
	CompanyID       uuid.UUID `json:"companyId"`
	CompanyName     string    `json:"companyName,omitempty"`
	FirstName       string    `json:"firstName"`
	LastName        string    `json:"lastName"`
	FullName        string    `json:"fullName"`
	Email           string    `json:"email,omitempty"`
	Phone           string    `json:"phone,omitempty"`
	Mobile          string    `json:"mobile,omitempty"`
	JobTitle        string    `json:"jobTitle,omitempty"`
	Department      string    `json:"department,omitempty"`
	IsPrimary       bool      `json:"isPrimary"`
	IsDecisionMaker bool      `json:"isDecisionMaker"`
	Notes           string    `json:"notes,omitempty"`
	IsActive        bool      `json:"isActive"`
	CreatedAt       string    `json:"createdAt"`
	UpdatedAt       string    `json:"updatedAt"`
}

type ServiceDTO struct {
	ID            uuid.UUID               `json:"id"`
	Code          string                  `json:"code"`
	Name          string                  `json:"name"`
	Description   string                  `json:"description,omitempty"`
	Type          ServiceType             `json:"type"`
	UnitPrice     float64                 `json:"unitPrice"`
	CostPrice     float64                 `json:"costPrice"`
	BillingType   BillingType             `json:"billingType"`
	UnitOfMeasure string                  `json:"unitOfMeasure,omitempty"`
	Category      string                  `json:"category,omitempty"`
	IsActive      bool                    `json:"isActive"`
	Components    []ServiceCompositionDTO `json:"components,omitempty"`
	CreatedAt     string                  `json:"createdAt"`
	UpdatedAt     string                  `json:"updatedAt"`
}

type ServiceCompositionDTO struct {
	ID                uuid.UUID `json:"id"`
	ParentServiceID   uuid.UUID `json:"parentServiceId"`
	ChildServiceID    uuid.UUID `json:"childServiceId"`
	ChildServiceCode  string    `json:"childServiceCode,omitempty"`
	ChildServiceName  string    `json:"childServiceName,omitempty"`
	Quantity          float64   `json:"quantity"`
	UnitPriceOverride *float64  `json:"unitPriceOverride,omitempty"`
	SortOrder         int       `json:"sortOrder"`
}

// EffectivePriceDTO is the result of recursive kit price resolution
type EffectivePriceDTO struct {
	ServiceID      uuid.UUID   `json:"serviceId"`
	Code           string      `json:"code"`
	Type           ServiceType `json:"type"`
	EffectivePrice float64     `json:"effectivePrice"`
}

type OpportunityDTO struct {
	ID                uuid.UUID                `json:"id"`
	Code              string                   `json:"code"`
	CompanyID         uuid.UUID                `json:"companyId"`
	CompanyName       string                   `json:"companyName,omitempty"`
	ContactID         *uuid.UUID               `json:"contactId,omitempty"`
	Title             string                   `json:"title"`
	Description       string                   `json:"description,omitempty"`
	Status            OpportunityStatus        `json:"status"`
	Source            string                   `json:"source,omitempty"`
	Amount            float64                  `json:"amount"`
	WinProbability    int                      `json:"winProbability"`
	WeightedAmount    float64                  `json:"weightedAmount"`
	ExpectedCloseDate *string                  `json:"expectedCloseDate,omitempty"`
	ActualCloseDate   *string                  `json:"actualCloseDate,omitempty"`
	OwnerID           *uuid.UUID               `json:"ownerId,omitempty"`
	CloseReason       string                   `json:"closeReason,omitempty"`
	Items             []OpportunityServiceDTO  `json:"items"`
	CreatedAt         string                   `json:"createdAt"`
	UpdatedAt         string                   `json:"updatedAt"`
}

type OpportunityServiceDTO struct {
	ID              uuid.UUID `json:"id"`
	OpportunityID   uuid.UUID `json:"opportunityId"`
	ServiceID       uuid.UUID `json:"serviceId"`
	ServiceCode     string    `json:"serviceCode,omitempty"`
	ServiceName     string    `json:"serviceName,omitempty"`
	Description     string    `json:"description,omitempty"`
	Quantity        float64   `json:"quantity"`
	UnitPrice       float64   `json:"unitPrice"`
	DiscountPercent float64   `json:"discountPercent"`
	Total           float64   `json:"total"`
	SortOrder       int       `json:"sortOrder"`
}

type OrderDTO struct {
	ID                 uuid.UUID         `json:"id"`
	OrderNumber        string            `json:"orderNumber"`
	OpportunityID      *uuid.UUID        `json:"opportunityId,omitempty"`
	CompanyID          uuid.UUID         `json:"companyId"`
	CompanyName        string            `json:"companyName,omitempty"`
	ContactID          *uuid.UUID        `json:"contactId,omitempty"`
	Title              string            `json:"title"`
	Description        string            `json:"description,omitempty"`
	Status             OrderStatus       `json:"status"`
	Priority           OrderPriority     `json:"priority"`
	StartDate          *string           `json:"startDate,omitempty"`
	EndDate            *string           `json:"endDate,omitempty"`
	TotalAmount        float64           `json:"totalAmount"`
	InvoicedAmount     float64           `json:"invoicedAmount"`
	EstimatedHours     float64           `json:"estimatedHours"`
	ActualHours        float64           `json:"actualHours"`
	ProgressPercentage float64           `json:"progressPercentage"`
	AccountManagerID   *uuid.UUID        `json:"accountManagerId,omitempty"`
	Items              []OrderServiceDTO `json:"items"`
	CreatedAt          string            `json:"createdAt"`
	UpdatedAt          string            `json:"updatedAt"`
}

type OrderServiceDTO struct {
	ID              uuid.UUID `json:"id"`
	OrderID         uuid.UUID `json:"orderId"`
	ServiceID       uuid.UUID `json:"serviceId"`
	ServiceCode     string    `json:"serviceCode,omitempty"`
	ServiceName     string    `json:"serviceName,omitempty"`
	Description     string    `json:"description,omitempty"`
	Quantity        float64   `json:"quantity"`
	UnitPrice       float64   `json:"unitPrice"`
	DiscountPercent float64   `json:"discountPercent"`
	Total           float64   `json:"total"`
	SortOrder       int       `json:"sortOrder"`
}

type ProjectDTO struct {
	ID                 uuid.UUID          `json:"id"`
	Code               string             `json:"code"`
	OrderID            *uuid.UUID         `json:"orderId,omitempty"`
	Name               string             `json:"name"`
	Description        string             `json:"description,omitempty"`
	Methodology        ProjectMethodology `json:"methodology"`
	Status             ProjectStatus      `json:"status"`
	PlannedStartDate   *string            `json:"plannedStartDate,omitempty"`
	PlannedEndDate     *string            `json:"plannedEndDate,omitempty"`
	ActualStartDate    *string            `json:"actualStartDate,omitempty"`
	ActualEndDate      *string            `json:"actualEndDate,omitempty"`
	Budget             float64            `json:"budget"`
	ActualCost         float64            `json:"actualCost"`
	ProgressPercentage float64            `json:"progressPercentage"`
	ProjectManagerID   *uuid.UUID         `json:"projectManagerId,omitempty"`
	AccountManagerID   *uuid.UUID         `json:"accountManagerId,omitempty"`
	CreatedAt          string             `json:"createdAt"`
	UpdatedAt          string             `json:"updatedAt"`
}

// ProjectRollupDTO holds the aggregated state of a project
type ProjectRollupDTO struct {
	ProjectID           uuid.UUID `json:"projectId"`
	TotalTasks          int       `json:"totalTasks"`
	CompletedTasks      int       `json:"completedTasks"`
	TotalMilestones     int       `json:"totalMilestones"`
	CompletedMilestones int       `json:"completedMilestones"`
	ProgressPercentage  float64   `json:"progressPercentage"`
	EstimatedHours      float64   `json:"estimatedHours"`
	ActualHours         float64   `json:"actualHours"`
	ActualCost          float64   `json:"actualCost"`
}

type TaskDTO struct {
	ID                 uuid.UUID           `json:"id"`
	ProjectID          uuid.UUID           `json:"projectId"`
	ParentTaskID       *uuid.UUID          `json:"parentTaskId,omitempty"`
	WBSCode            string              `json:"wbsCode"`
	Name               string              `json:"name"`
	Description        string              `json:"description,omitempty"`
	Status             TaskStatus          `json:"status"`
	Priority           TaskPriority        `json:"priority"`
	PlannedStartDate   *string             `json:"plannedStartDate,omitempty"`
	PlannedEndDate     *string             `json:"plannedEndDate,omitempty"`
	EstimatedHours     float64             `json:"estimatedHours"`
	ActualHours        float64             `json:"actualHours"`
	ProgressPercentage float64             `json:"progressPercentage"`
	IsMilestone        bool                `json:"isMilestone"`
	SortOrder          int                 `json:"sortOrder"`
	Assignments        []TaskAssignmentDTO `json:"assignments,omitempty"`
	Children           []TaskDTO           `json:"children,omitempty"`
	CreatedAt          string              `json:"createdAt"`
	UpdatedAt          string              `json:"updatedAt"`
}

type TaskAssignmentDTO struct {
	ID             uuid.UUID `json:"id"`
	TaskID         uuid.UUID `json:"taskId"`
	CompanyID      uuid.UUID `json:"companyId"`
	CompanyName    string    `json:"companyName,omitempty"`
	Role           string    `json:"role,omitempty"`
	EstimatedHours float64   `json:"estimatedHours"`
}

type MilestoneDTO struct {
	ID            uuid.UUID       `json:"id"`
	ProjectID     uuid.UUID       `json:"projectId"`
	Name          string          `json:"name"`
	Description   string          `json:"description,omitempty"`
	Type          MilestoneType   `json:"type"`
	Status        MilestoneStatus `json:"status"`
	DueDate       *string         `json:"dueDate,omitempty"`
	CompletedDate *string         `json:"completedDate,omitempty"`
	PaymentAmount float64         `json:"paymentAmount"`
	IsPaid        bool            `json:"isPaid"`
	IsOverdue     bool            `json:"isOverdue"`
	SortOrder     int             `json:"sortOrder"`
	CreatedAt     string          `json:"createdAt"`
	UpdatedAt     string          `json:"updatedAt"`
}

type TimesheetDTO struct {
	ID           uuid.UUID       `json:"id"`
	ProjectID    uuid.UUID       `json:"projectId"`
	TaskID       *uuid.UUID      `json:"taskId,omitempty"`
	UserID       uuid.UUID       `json:"userId"`
	WorkDate     string          `json:"workDate"`
	Hours        float64         `json:"hours"`
	Description  string          `json:"description,omitempty"`
	ActivityType string          `json:"activityType,omitempty"`
	IsBillable   bool            `json:"isBillable"`
	HourlyRate   float64         `json:"hourlyRate"`
	TotalCost    float64         `json:"totalCost"`
	Status       TimesheetStatus `json:"status"`
	ApprovedByID *uuid.UUID      `json:"approvedById,omitempty"`
	ApprovedAt   *string         `json:"approvedAt,omitempty"`
	CreatedAt    string          `json:"createdAt"`
	UpdatedAt    string          `json:"updatedAt"`
}

type TeamMemberDTO struct {
	ID             uuid.UUID `json:"id"`
	ProjectID      uuid.UUID `json:"projectId"`
	CompanyID      uuid.UUID `json:"companyId"`
	CompanyName    string    `json:"companyName,omitempty"`
	CompanyType    CompanyType `json:"companyType,omitempty"`
	Role           string    `json:"role,omitempty"`
	HourlyRate     float64   `json:"hourlyRate"`
	EstimatedHours float64   `json:"estimatedHours"`
	TasksAssigned  int       `json:"tasksAssigned"`
	ActualHours    float64   `json:"actualHours"`
	IsActive       bool      `json:"isActive"`
	CreatedAt      string    `json:"createdAt"`
	UpdatedAt      string    `json:"updatedAt"`
}

type ProjectDocumentDTO struct {
	ID          uuid.UUID      `json:"id"`
	ProjectID   uuid.UUID      `json:"projectId"`
	Filename    string         `json:"filename"`
	ContentType string         `json:"contentType"`
	Size        int64          `json:"size"`
	Status      DocumentStatus `json:"status"`
	Category    string         `json:"category,omitempty"`
	Summary     string         `json:"summary,omitempty"`
	UploadedBy  *uuid.UUID     `json:"uploadedBy,omitempty"`
	CreatedAt   string         `json:"createdAt"`
	UpdatedAt   string         `json:"updatedAt"`
}

type UserDTO struct {
	ID          uuid.UUID `json:"id"`
	Email       string    `json:"email"`
	FirstName   string    `json:"firstName,omitempty"`
	LastName    string    `json:"lastName,omitempty"`
	DisplayName string    `json:"displayName"`
	Role        UserRole  `json:"role"`
	IsActive    bool      `json:"isActive"`
	LastLoginAt *string   `json:"lastLoginAt,omitempty"`
	CreatedAt   string    `json:"createdAt"`
	UpdatedAt   string    `json:"updatedAt"`
}

// ErrorResponse represents an API error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Code    int    `json:"code,omitempty"`
}

// PaginatedResponse wraps list results with paging metadata
type PaginatedResponse[T any] struct {
	Items      []T   `json:"items"`
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	PageSize   int   `json:"pageSize"`
	TotalPages int   `json:"totalPages"`
}

// Company request DTOs

type CreateCompanyRequest struct {
	Name             string      `json:"name" validate:"required,max=200"`
	Type             CompanyType `json:"type,omitempty"`
	VATNumber        string      `json:"vatNumber,omitempty" validate:"max=50"`
	TaxCode          string      `json:"taxCode,omitempty" validate:"max=50"`
	Email            string      `json:"email,omitempty" validate:"omitempty,email"`
	PECEmail         string      `json:"pecEmail,omitempty" validate:"omitempty,email"`
	Phone            string      `json:"phone,omitempty" validate:"max=50"`
	Mobile           string      `json:"mobile,omitempty" validate:"max=50"`
	Website          string      `json:"website,omitempty" validate:"max=255"`
	Address          string      `json:"address,omitempty" validate:"max=500"`
	City             string      `json:"city,omitempty" validate:"max=100"`
	Province         string      `json:"province,omitempty" validate:"max=50"`
	PostalCode       string      `json:"postalCode,omitempty" validate:"max=20"`
	Country          string      `json:"country,omitempty" validate:"max=100"`
	Industry         string      `json:"industry,omitempty" validate:"max=100"`
	Notes            string      `json:"notes,omitempty"`
	AccountManagerID *uuid.UUID  `json:"accountManagerId,omitempty"`
}

type UpdateCompanyRequest struct {
	Name             string      `json:"name" validate:"required,max=200"`
	Type             CompanyType `json:"type,omitempty"`
	VATNumber        string      `json:"vatNumber,omitempty" validate:"max=50"`
	TaxCode          string      `json:"taxCode,omitempty" validate:"max=50"`
	Email            string      `json:"email,omitempty" validate:"omitempty,email"`
	PECEmail         string      `json:"pecEmail,omitempty" validate:"omitempty,email"`
	Phone            string      `json:"phone,omitempty" validate:"max=50"`
	Mobile           string      `json:"mobile,omitempty" validate:"max=50"`
	Website          string      `json:"website,omitempty" validate:"max=255"`
	Address          string      `json:"address,omitempty" validate:"max=500"`
	City             string      `json:"city,omitempty" validate:"max=100"`
	Province         string      `json:"province,omitempty" validate:"max=50"`
	PostalCode       string      `json:"postalCode,omitempty" validate:"max=20"`
	Country          string      `json:"country,omitempty" validate:"max=100"`
	Industry         string      `json:"industry,omitempty" validate:"max=100"`
	Notes            string      `json:"notes,omitempty"`
	AccountManagerID *uuid.UUID  `json:"accountManagerId,omitempty"`
	IsActive         *bool       `json:"isActive,omitempty"`
}

// Contact request DTOs

type CreateContactRequest struct {
	CompanyID       uuid.UUID `json:"companyId" validate:"required"`
	FirstName       string    `json:"firstName" validate:"required,max=100"`
	LastName        string    `json:"lastName" validate:"required,max=100"`
	Email           string    `json:"email,omitempty" validate:"omitempty,email,max=255"`
	Phone           string    `json:"phone,omitempty" validate:"max=50"`
	Mobile          string    `json:"mobile,omitempty" validate:"max=50"`
	JobTitle        string    `json:"jobTitle,omitempty" validate:"max=100"`
	Department      string    `json:"department,omitempty" validate:"max=100"`
	IsPrimary       bool      `json:"isPrimary,omitempty"`
	IsDecisionMaker bool      `json:"isDecisionMaker,omitempty"`
	Notes           string    `json:"notes,omitempty"`
}

type UpdateContactRequest struct {
	FirstName       string `json:"firstName" validate:"required,max=100"`
	LastName        string `json:"lastName" validate:"required,max=100"`
	Email           string `json:"email,omitempty" validate:"omitempty,email,max=255"`
	Phone           string `json:"phone,omitempty" validate:"max=50"`
	Mobile          string `json:"mobile,omitempty" validate:"max=50"`
	JobTitle        string `json:"jobTitle,omitempty" validate:"max=100"`
	Department      string `json:"department,omitempty" validate:"max=100"`
	IsPrimary       *bool  `json:"isPrimary,omitempty"`
	IsDecisionMaker *bool  `json:"isDecisionMaker,omitempty"`
	Notes           string `json:"notes,omitempty"`
	IsActive        *bool  `json:"isActive,omitempty"`
}

// Service catalog request DTOs

type CreateServiceRequest struct {
	Code          string      `json:"code" validate:"required,max=50"`
	Name          string      `json:"name" validate:"required,max=200"`
	Description   string      `json:"description,omitempty"`
	Type          ServiceType `json:"type,omitempty"`
	UnitPrice     float64     `json:"unitPrice,omitempty" validate:"gte=0"`
	CostPrice     float64     `json:"costPrice,omitempty" validate:"gte=0"`
	BillingType   BillingType `json:"billingType,omitempty"`
	UnitOfMeasure string      `json:"unitOfMeasure,omitempty" validate:"max=50"`
	Category      string      `json:"category,omitempty" validate:"max=100"`
}

type UpdateServiceRequest struct {
	Name          string      `json:"name" validate:"required,max=200"`
	Description   string      `json:"description,omitempty"`
	UnitPrice     *float64    `json:"unitPrice,omitempty" validate:"omitempty,gte=0"`
	CostPrice     *float64    `json:"costPrice,omitempty" validate:"omitempty,gte=0"`
	BillingType   BillingType `json:"billingType,omitempty"`
	UnitOfMeasure string      `json:"unitOfMeasure,omitempty" validate:"max=50"`
	Category      string      `json:"category,omitempty" validate:"max=100"`
	IsActive      *bool       `json:"isActive,omitempty"`
}

type AddCompositionRequest struct {
	ChildServiceID    uuid.UUID `json:"childServiceId" validate:"required"`
	Quantity          float64   `json:"quantity" validate:"required,gt=0"`
	UnitPriceOverride *float64  `json:"unitPriceOverride,omitempty" validate:"omitempty,gte=0"`
	SortOrder         int       `json:"sortOrder,omitempty"`
}

type UpdateCompositionRequest struct {
	Quantity          float64  `json:"quantity" validate:"required,gt=0"`
	UnitPriceOverride *float64 `json:"unitPriceOverride,omitempty" validate:"omitempty,gte=0"`
	SortOrder         *int     `json:"sortOrder,omitempty"`
}

// Opportunity request DTOs

type CreateOpportunityRequest struct {
	CompanyID         uuid.UUID  `json:"companyId" validate:"required"`
	ContactID         *uuid.UUID `json:"contactId,omitempty"`
	Title             string     `json:"title" validate:"required,max=200"`
	Description       string     `json:"description,omitempty"`
	Source            string     `json:"source,omitempty" validate:"max=100"`
	Amount            float64    `json:"amount,omitempty" validate:"gte=0"`
	WinProbability    int        `json:"winProbability,omitempty" validate:"min=0,max=100"`
	ExpectedCloseDate *time.Time `json:"expectedCloseDate,omitempty"`
	OwnerID           *uuid.UUID `json:"ownerId,omitempty"`
}

type UpdateOpportunityRequest struct {
	ContactID         *uuid.UUID `json:"contactId,omitempty"`
	Title             string     `json:"title" validate:"required,max=200"`
	Description       string     `json:"description,omitempty"`
	Source            string     `json:"source,omitempty" validate:"max=100"`
	Amount            *float64   `json:"amount,omitempty" validate:"omitempty,gte=0"`
	WinProbability    *int       `json:"winProbability,omitempty" validate:"omitempty,min=0,max=100"`
	ExpectedCloseDate *time.Time `json:"expectedCloseDate,omitempty"`
	OwnerID           *uuid.UUID `json:"ownerId,omitempty"`
	CloseReason       string     `json:"closeReason,omitempty" validate:"max=500"`
}

type UpdateOpportunityStatusRequest struct {
	Status      OpportunityStatus `json:"status" validate:"required"`
	CloseReason string            `json:"closeReason,omitempty" validate:"max=500"`
}

type AddOpportunityItemRequest struct {
	ServiceID       uuid.UUID `json:"serviceId" validate:"required"`
	Description     string    `json:"description,omitempty" validate:"max=500"`
	Quantity        float64   `json:"quantity" validate:"required,gt=0"`
	UnitPrice       *float64  `json:"unitPrice,omitempty" validate:"omitempty,gte=0"`
	DiscountPercent float64   `json:"discountPercent,omitempty" validate:"gte=0,lte=100"`
	SortOrder       int       `json:"sortOrder,omitempty"`
}

type UpdateOpportunityItemRequest struct {
	Description     string   `json:"description,omitempty" validate:"max=500"`
	Quantity        float64  `json:"quantity" validate:"required,gt=0"`
	UnitPrice       *float64 `json:"unitPrice,omitempty" validate:"omitempty,gte=0"`
	DiscountPercent float64  `json:"discountPercent,omitempty" validate:"gte=0,lte=100"`
	SortOrder       *int     `json:"sortOrder,omitempty"`
}

// Order request DTOs

type CreateOrderRequest struct {
	CompanyID        uuid.UUID     `json:"companyId" validate:"required"`
	ContactID        *uuid.UUID    `json:"contactId,omitempty"`
	Title            string        `json:"title" validate:"required,max=200"`
	Description      string        `json:"description,omitempty"`
	Priority         OrderPriority `json:"priority,omitempty"`
	StartDate        *time.Time    `json:"startDate,omitempty"`
	EndDate          *time.Time    `json:"endDate,omitempty"`
	EstimatedHours   float64       `json:"estimatedHours,omitempty" validate:"gte=0"`
	AccountManagerID *uuid.UUID    `json:"accountManagerId,omitempty"`
}

type UpdateOrderRequest struct {
	ContactID          *uuid.UUID    `json:"contactId,omitempty"`
	Title              string        `json:"title" validate:"required,max=200"`
	Description        string        `json:"description,omitempty"`
	Priority           OrderPriority `json:"priority,omitempty"`
	StartDate          *time.Time    `json:"startDate,omitempty"`
	EndDate            *time.Time    `json:"endDate,omitempty"`
	InvoicedAmount     *float64      `json:"invoicedAmount,omitempty" validate:"omitempty,gte=0"`
	EstimatedHours     *float64      `json:"estimatedHours,omitempty" validate:"omitempty,gte=0"`
	ProgressPercentage *float64      `json:"progressPercentage,omitempty" validate:"omitempty,gte=0,lte=100"`
	AccountManagerID   *uuid.UUID    `json:"accountManagerId,omitempty"`
}

type UpdateOrderStatusRequest struct {
	Status OrderStatus `json:"status" validate:"required"`
}

type AddOrderItemRequest struct {
	ServiceID       uuid.UUID `json:"serviceId" validate:"required"`
	Description     string    `json:"description,omitempty" validate:"max=500"`
	Quantity        float64   `json:"quantity" validate:"required,gt=0"`
	UnitPrice       *float64  `json:"unitPrice,omitempty" validate:"omitempty,gte=0"`
	DiscountPercent float64   `json:"discountPercent,omitempty" validate:"gte=0,lte=100"`
	SortOrder       int       `json:"sortOrder,omitempty"`
}

// Project request DTOs

type CreateProjectRequest struct {
	Name             string             `json:"name" validate:"required,max=200"`
	Description      string             `json:"description,omitempty"`
	Methodology      ProjectMethodology `json:"methodology,omitempty"`
	OrderID          *uuid.UUID         `json:"orderId,omitempty"`
	PlannedStartDate *time.Time         `json:"plannedStartDate,omitempty"`
	PlannedEndDate   *time.Time         `json:"plannedEndDate,omitempty"`
	Budget           float64            `json:"budget,omitempty" validate:"gte=0"`
	ProjectManagerID *uuid.UUID         `json:"projectManagerId,omitempty"`
	AccountManagerID *uuid.UUID         `json:"accountManagerId,omitempty"`
}

type UpdateProjectRequest struct {
	Name             string             `json:"name" validate:"required,max=200"`
	Description      string             `json:"description,omitempty"`
	Methodology      ProjectMethodology `json:"methodology,omitempty"`
	Status           ProjectStatus      `json:"status,omitempty"`
	PlannedStartDate *time.Time         `json:"plannedStartDate,omitempty"`
	PlannedEndDate   *time.Time         `json:"plannedEndDate,omitempty"`
	ActualStartDate  *time.Time         `json:"actualStartDate,omitempty"`
	ActualEndDate    *time.Time         `json:"actualEndDate,omitempty"`
	Budget           *float64           `json:"budget,omitempty" validate:"omitempty,gte=0"`
	ProjectManagerID *uuid.UUID         `json:"projectManagerId,omitempty"`
	AccountManagerID *uuid.UUID         `json:"accountManagerId,omitempty"`
}

// Project bootstrap: the skeleton the analysis service extracts from a
// planning document. Tasks nest; WBS codes are assigned on creation.

type SkeletonTask struct {
	Name           string         `json:"name"`
	Description    string         `json:"description,omitempty"`
	EstimatedHours float64        `json:"estimatedHours,omitempty"`
	Children       []SkeletonTask `json:"children,omitempty"`
}

type SkeletonMilestone struct {
	Name    string        `json:"name"`
	Type    MilestoneType `json:"type,omitempty"`
	DueDate *time.Time    `json:"dueDate,omitempty"`
}

type ProjectSkeleton struct {
	Name        string              `json:"name"`
	Description string              `json:"description,omitempty"`
	Tasks       []SkeletonTask      `json:"tasks,omitempty"`
	Milestones  []SkeletonMilestone `json:"milestones,omitempty"`
}

// Task request DTOs

type CreateTaskRequest struct {
	ParentTaskID     *uuid.UUID   `json:"parentTaskId,omitempty"`
	Name             string       `json:"name" validate:"required,max=200"`
	Description      string       `json:"description,omitempty"`
	Priority         TaskPriority `json:"priority,omitempty"`
	PlannedStartDate *time.Time   `json:"plannedStartDate,omitempty"`
	PlannedEndDate   *time.Time   `json:"plannedEndDate,omitempty"`
	EstimatedHours   float64      `json:"estimatedHours,omitempty" validate:"gte=0"`
	IsMilestone      bool         `json:"isMilestone,omitempty"`
}

type UpdateTaskRequest struct {
	Name               string       `json:"name" validate:"required,max=200"`
	Description        string       `json:"description,omitempty"`
	Status             TaskStatus   `json:"status,omitempty"`
	Priority           TaskPriority `json:"priority,omitempty"`
	PlannedStartDate   *time.Time   `json:"plannedStartDate,omitempty"`
	PlannedEndDate     *time.Time   `json:"plannedEndDate,omitempty"`
	EstimatedHours     *float64     `json:"estimatedHours,omitempty" validate:"omitempty,gte=0"`
	ProgressPercentage *float64     `json:"progressPercentage,omitempty" validate:"omitempty,gte=0,lte=100"`
	IsMilestone        *bool        `json:"isMilestone,omitempty"`
	PropagateStatus    bool         `json:"propagateStatus,omitempty"`
}

type MoveTaskRequest struct {
	NewParentTaskID *uuid.UUID `json:"newParentTaskId"`
	Position        *int       `json:"position,omitempty" validate:"omitempty,gte=0"`
}

type AssignmentInput struct {
	CompanyID      uuid.UUID `json:"companyId" validate:"required"`
	Role           string    `json:"role,omitempty" validate:"max=100"`
	EstimatedHours float64   `json:"estimatedHours,omitempty" validate:"gte=0"`
}

type ReplaceAssignmentsRequest struct {
	Assignments []AssignmentInput `json:"assignments" validate:"dive"`
	Propagate   bool              `json:"propagate,omitempty"`
}

// Milestone request DTOs

type CreateMilestoneRequest struct {
	Name          string        `json:"name" validate:"required,max=200"`
	Description   string        `json:"description,omitempty"`
	Type          MilestoneType `json:"type,omitempty"`
	DueDate       *time.Time    `json:"dueDate,omitempty"`
	PaymentAmount float64       `json:"paymentAmount,omitempty" validate:"gte=0"`
	SortOrder     int           `json:"sortOrder,omitempty"`
}

type UpdateMilestoneRequest struct {
	Name          string        `json:"name" validate:"required,max=200"`
	Description   string        `json:"description,omitempty"`
	Type          MilestoneType `json:"type,omitempty"`
	DueDate       *time.Time    `json:"dueDate,omitempty"`
	PaymentAmount *float64      `json:"paymentAmount,omitempty" validate:"omitempty,gte=0"`
	IsPaid        *bool         `json:"isPaid,omitempty"`
	SortOrder     *int          `json:"sortOrder,omitempty"`
}

type UpdateMilestoneStatusRequest struct {
	Status MilestoneStatus `json:"status" validate:"required"`
}

// Timesheet request DTOs

type CreateTimesheetRequest struct {
	TaskID       *uuid.UUID `json:"taskId,omitempty"`
	UserID       uuid.UUID  `json:"userId" validate:"required"`
	WorkDate     time.Time  `json:"workDate" validate:"required"`
	Hours        float64    `json:"hours" validate:"required,gt=0,lte=24"`
	Description  string     `json:"description,omitempty" validate:"max=500"`
	ActivityType string     `json:"activityType,omitempty" validate:"max=100"`
	IsBillable   *bool      `json:"isBillable,omitempty"`
	HourlyRate   float64    `json:"hourlyRate,omitempty" validate:"gte=0"`
}

type UpdateTimesheetRequest struct {
	TaskID       *uuid.UUID `json:"taskId,omitempty"`
	WorkDate     time.Time  `json:"workDate" validate:"required"`
	Hours        float64    `json:"hours" validate:"required,gt=0,lte=24"`
	Description  string     `json:"description,omitempty" validate:"max=500"`
	ActivityType string     `json:"activityType,omitempty" validate:"max=100"`
	IsBillable   *bool      `json:"isBillable,omitempty"`
	HourlyRate   *float64   `json:"hourlyRate,omitempty" validate:"omitempty,gte=0"`
}

type UpdateTimesheetStatusRequest struct {
	Status TimesheetStatus `json:"status" validate:"required"`
}

// Team request DTOs

type AddTeamMemberRequest struct {
	CompanyID      uuid.UUID `json:"companyId" validate:"required"`
	Role           string    `json:"role,omitempty" validate:"max=100"`
	HourlyRate     float64   `json:"hourlyRate,omitempty" validate:"gte=0"`
	EstimatedHours float64   `json:"estimatedHours,omitempty" validate:"gte=0"`
}

type UpdateTeamMemberRequest struct {
	Role           string   `json:"role,omitempty" validate:"max=100"`
	HourlyRate     *float64 `json:"hourlyRate,omitempty" validate:"omitempty,gte=0"`
	EstimatedHours *float64 `json:"estimatedHours,omitempty" validate:"omitempty,gte=0"`
	IsActive       *bool    `json:"isActive,omitempty"`
}

// User request DTOs

type CreateUserRequest struct {
	Email       string   `json:"email" validate:"required,email,max=255"`
	FirstName   string   `json:"firstName,omitempty" validate:"max=100"`
	LastName    string   `json:"lastName,omitempty" validate:"max=100"`
	DisplayName string   `json:"displayName" validate:"required,max=200"`
	Role        UserRole `json:"role,omitempty"`
}

type UpdateUserRequest struct {
	FirstName   string   `json:"firstName,omitempty" validate:"max=100"`
	LastName    string   `json:"lastName,omitempty" validate:"max=100"`
	DisplayName string   `json:"displayName" validate:"required,max=200"`
	Role        UserRole `json:"role,omitempty"`
	IsActive    *bool    `json:"isActive,omitempty"`
}
