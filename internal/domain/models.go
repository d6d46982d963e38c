package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Base model with common fields
type BaseModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// BeforeCreate assigns the ID when the caller has not set one. The database
// default covers rows inserted outside the application.
func (b *BaseModel) BeforeCreate(_ *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// CompanyType classifies the relationship a company has with us
type CompanyType string

const (
	CompanyTypeClient    CompanyType = "client"
	CompanyTypeProspect  CompanyType = "prospect"
	CompanyTypeSupplier  CompanyType = "supplier"
	CompanyTypePartner   CompanyType = "partner"
	CompanyTypeFreelance CompanyType = "freelance"
)

// IsValid checks if the CompanyType is a valid enum value
func (ct CompanyType) IsValid() bool {
	switch ct {
	case CompanyTypeClient, CompanyTypeProspect, CompanyTypeSupplier, CompanyTypePartner, CompanyTypeFreelance:
		return true
	}
	return false
}

// Company represents an organization in the CRM (client, supplier, partner...)
type Company struct {
	BaseModel
	Name             string      `gorm:"type:varchar(200);not null;index"`
	Type             CompanyType `gorm:"type:varchar(50);not null;default:'prospect';index"`
	VATNumber        string      `gorm:"type:varchar(50);column:vat_number;index"`
	TaxCode          string      `gorm:"type:varchar(50);column:tax_code"`
	Email            string      `gorm:"type:varchar(255)"`
	PECEmail         string      `gorm:"type:varchar(255);column:pec_email"`
	Phone            string      `gorm:"type:varchar(50)"`
	Mobile           string      `gorm:"type:varchar(50)"`
	Website          string      `gorm:"type:varchar(255)"`
	Address          string      `gorm:"type:varchar(500)"`
	City             string      `gorm:"type:varchar(100)"`
	Province         string      `gorm:"type:varchar(50)"`
	PostalCode       string      `gorm:"type:varchar(20);column:postal_code"`
	Country          string      `gorm:"type:varchar(100);not null;default:'Italy'"`
	Industry         string      `gorm:"type:varchar(100);index"`
	Notes            string      `gorm:"type:text"`
	AccountManagerID *uuid.UUID  `gorm:"type:uuid;column:account_manager_id"`
	AccountManager   *User       `gorm:"foreignKey:AccountManagerID;constraint:OnDelete:SET NULL"`
	IsActive         bool        `gorm:"not null;default:true;column:is_active;index"`
	Contacts         []Contact   `gorm:"foreignKey:CompanyID;constraint:OnDelete:CASCADE"`
}

// Contact represents an individual person at a company
type Contact struct {
	BaseModel
	CompanyID       uuid.UUID `gorm:"type:uuid;not null;index;column:company_id"`
	Company         *Company  `gorm:"foreignKey:CompanyID"`
	FirstName       string    `gorm:"type:varchar(100);not null;column:first_name"`
	LastName        string    `gorm:"type:varchar(100);not null;column:last_name"`
	Email           string    `gorm:"type:varchar(255);index"`
	Phone           string    `gorm:"type:varchar(50)"`
	Mobile          string    `gorm:"type:varchar(50)"`
	JobTitle        string    `gorm:"type:varchar(100);column:job_title"`
	Department      string    `gorm:"type:varchar(100)"`
	IsPrimary       bool      `gorm:"not null;default:false;column:is_primary"`
	IsDecisionMaker bool      `gorm:"not null;default:false;column:is_decision_maker"`
	Notes           string    `gorm:"type:text"`
	IsActive        bool      `gorm:"not null;default:true;column:is_active"`
}

// FullName returns the contact's full name
func (c *Contact) FullName() string {
	return c.FirstName + " " + c.LastName
}

// ServiceType distinguishes simple catalog entries from kits
type ServiceType string

const (
	ServiceTypeSimple ServiceType = "simple"
	ServiceTypeKit    ServiceType = "kit"
)

// IsValid checks if the ServiceType is a valid enum value
func (st ServiceType) IsValid() bool {
	switch st {
	case ServiceTypeSimple, ServiceTypeKit:
		return true
	}
	return false
}

// BillingType represents how a service is billed
type BillingType string

const (
	BillingTypeFixed   BillingType = "fixed"
	BillingTypeHourly  BillingType = "hourly"
	BillingTypeDaily   BillingType = "daily"
	BillingTypeMonthly BillingType = "monthly"
	BillingTypeYearly  BillingType = "yearly"
)

// IsValid checks if the BillingType is a valid enum value
func (bt BillingType) IsValid() bool {
	switch bt {
	case BillingTypeFixed, BillingTypeHourly, BillingTypeDaily, BillingTypeMonthly, BillingTypeYearly:
		return true
	}
	return false
}

// Service represents a sellable catalog entry, either simple or a kit of other services
type Service struct {
	BaseModel
	Code          string               `gorm:"type:varchar(50);not null;uniqueIndex"`
	Name          string               `gorm:"type:varchar(200);not null;index"`
	Description   string               `gorm:"type:text"`
	Type          ServiceType          `gorm:"type:varchar(50);not null;default:'simple';index"`
	UnitPrice     float64              `gorm:"type:decimal(15,2);not null;default:0;column:unit_price"`
	CostPrice     float64              `gorm:"type:decimal(15,2);not null;default:0;column:cost_price"`
	BillingType   BillingType          `gorm:"type:varchar(50);not null;default:'fixed';column:billing_type"`
	UnitOfMeasure string               `gorm:"type:varchar(50);column:unit_of_measure"`
	Category      string               `gorm:"type:varchar(100);index"`
	IsActive      bool                 `gorm:"not null;default:true;column:is_active;index"`
	Components    []ServiceComposition `gorm:"foreignKey:ParentServiceID;constraint:OnDelete:CASCADE"`
}

// ServiceComposition is a component row of a kit service
type ServiceComposition struct {
	BaseModel
	ParentServiceID   uuid.UUID `gorm:"type:uuid;not null;index;column:parent_service_id"`
	ChildServiceID    uuid.UUID `gorm:"type:uuid;not null;index;column:child_service_id"`
	ChildService      *Service  `gorm:"foreignKey:ChildServiceID"`
	Quantity          float64   `gorm:"type:decimal(10,2);not null;default:1"`
	UnitPriceOverride *float64  `gorm:"type:decimal(15,2);column:unit_price_override"`
	SortOrder         int       `gorm:"not null;default:0;column:sort_order"`
}

// OpportunityStatus represents the stage of an opportunity in the sales pipeline
type OpportunityStatus string

const (
	OpportunityStatusLead        OpportunityStatus = "lead"
	OpportunityStatusQualified   OpportunityStatus = "qualified"
	OpportunityStatusProposal    OpportunityStatus = "proposal"
	OpportunityStatusNegotiation OpportunityStatus = "negotiation"
	OpportunityStatusWon         OpportunityStatus = "won"
	OpportunityStatusLost        OpportunityStatus = "lost"
)

// IsValid checks if the OpportunityStatus is a valid enum value
func (os OpportunityStatus) IsValid() bool {
	switch os {
	case OpportunityStatusLead, OpportunityStatusQualified, OpportunityStatusProposal,
		OpportunityStatusNegotiation, OpportunityStatusWon, OpportunityStatusLost:
		return true
	}
	return false
}

// IsTerminal reports whether no further transitions are allowed from the status
func (os OpportunityStatus) IsTerminal() bool {
	return os == OpportunityStatusWon || os == OpportunityStatusLost
}

// Opportunity represents a sales opportunity in the pipeline
type Opportunity struct {
	BaseModel
	Code              string               `gorm:"type:varchar(50);not null;uniqueIndex"`
	CompanyID         uuid.UUID            `gorm:"type:uuid;not null;index;column:company_id"`
	Company           *Company             `gorm:"foreignKey:CompanyID"`
	ContactID         *uuid.UUID           `gorm:"type:uuid;index;column:contact_id"`
	Contact           *Contact             `gorm:"foreignKey:ContactID"`
	Title             string               `gorm:"type:varchar(200);not null;index"`
	Description       string               `gorm:"type:text"`
	Status            OpportunityStatus    `gorm:"type:varchar(50);not null;default:'lead';index"`
	Source            string               `gorm:"type:varchar(100)"`
	Amount            float64              `gorm:"type:decimal(15,2);not null;default:0"`
	WinProbability    int                  `gorm:"not null;default:0;column:win_probability"`
	ExpectedCloseDate *time.Time           `gorm:"type:date;column:expected_close_date"`
	ActualCloseDate   *time.Time           `gorm:"type:date;column:actual_close_date"`
	OwnerID           *uuid.UUID           `gorm:"type:uuid;column:owner_id"`
	Owner             *User                `gorm:"foreignKey:OwnerID"`
	CloseReason       string               `gorm:"type:varchar(500);column:close_reason"`
	Items             []OpportunityService `gorm:"foreignKey:OpportunityID;constraint:OnDelete:CASCADE"`
}

// WeightedAmount returns the probability-weighted pipeline value
func (o *Opportunity) WeightedAmount() float64 {
	return o.Amount * float64(o.WinProbability) / 100
}

// OpportunityService is a priced line item of an opportunity
type OpportunityService struct {
	BaseModel
	OpportunityID   uuid.UUID `gorm:"type:uuid;not null;index;column:opportunity_id"`
	ServiceID       uuid.UUID `gorm:"type:uuid;not null;index;column:service_id"`
	Service         *Service  `gorm:"foreignKey:ServiceID"`
	Description     string    `gorm:"type:varchar(500)"`
	Quantity        float64   `gorm:"type:decimal(10,2);not null;default:1"`
	UnitPrice       float64   `gorm:"type:decimal(15,2);not null;default:0;column:unit_price"`
	DiscountPercent float64   `gorm:"type:decimal(5,2);not null;default:0;column:discount_percent"`
	SortOrder       int       `gorm:"not null;default:0;column:sort_order"`
}

// Total returns the discounted line total
func (i *OpportunityService) Total() float64 {
	return i.Quantity * i.UnitPrice * (1 - i.DiscountPercent/100)
}

// OrderStatus represents the lifecycle status of an order
type OrderStatus string

const (
	OrderStatusDraft      OrderStatus = "draft"
	OrderStatusConfirmed  OrderStatus = "confirmed"
	OrderStatusInProgress OrderStatus = "in_progress"
	OrderStatusOnHold     OrderStatus = "on_hold"
	OrderStatusCompleted  OrderStatus = "completed"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

// IsValid checks if the OrderStatus is a valid enum value
func (os OrderStatus) IsValid() bool {
	switch os {
	case OrderStatusDraft, OrderStatusConfirmed, OrderStatusInProgress,
		OrderStatusOnHold, OrderStatusCompleted, OrderStatusCancelled:
		return true
	}
	return false
}

// IsTerminal reports whether no further transitions are allowed from the status
func (os OrderStatus) IsTerminal() bool {
	return os == OrderStatusCompleted || os == OrderStatusCancelled
}

// OrderPriority represents the urgency of an order
type OrderPriority string

const (
	OrderPriorityLow    OrderPriority = "low"
	OrderPriorityMedium OrderPriority = "medium"
	OrderPriorityHigh   OrderPriority = "high"
	OrderPriorityUrgent OrderPriority = "urgent"
)

// IsValid checks if the OrderPriority is a valid enum value
func (op OrderPriority) IsValid() bool {
	switch op {
	case OrderPriorityLow, OrderPriorityMedium, OrderPriorityHigh, OrderPriorityUrgent:
		return true
	}
	return false
}

// Order represents confirmed work sold to a company
type Order struct {
	BaseModel
	OrderNumber        string         `gorm:"type:varchar(50);not null;uniqueIndex;column:order_number"`
	OpportunityID      *uuid.UUID     `gorm:"type:uuid;uniqueIndex;column:opportunity_id"`
	Opportunity        *Opportunity   `gorm:"foreignKey:OpportunityID"`
	CompanyID          uuid.UUID      `gorm:"type:uuid;not null;index;column:company_id"`
	Company            *Company       `gorm:"foreignKey:CompanyID"`
	ContactID          *uuid.UUID     `gorm:"type:uuid;column:contact_id"`
	Contact            *Contact       `gorm:"foreignKey:ContactID"`
	Title              string         `gorm:"type:varchar(200);not null;index"`
	Description        string         `gorm:"type:text"`
	Status             OrderStatus    `gorm:"type:varchar(50);not null;default:'draft';index"`
	Priority           OrderPriority  `gorm:"type:varchar(50);not null;default:'medium'"`
	StartDate          *time.Time     `gorm:"type:date;column:start_date"`
	EndDate            *time.Time     `gorm:"type:date;column:end_date"`
	TotalAmount        float64        `gorm:"type:decimal(15,2);not null;default:0;column:total_amount"`
	InvoicedAmount     float64        `gorm:"type:decimal(15,2);not null;default:0;column:invoiced_amount"`
	EstimatedHours     float64        `gorm:"type:decimal(10,2);not null;default:0;column:estimated_hours"`
	ActualHours        float64        `gorm:"type:decimal(10,2);not null;default:0;column:actual_hours"`
	ProgressPercentage float64        `gorm:"type:decimal(5,2);not null;default:0;column:progress_percentage"`
	AccountManagerID   *uuid.UUID     `gorm:"type:uuid;column:account_manager_id"`
	AccountManager     *User          `gorm:"foreignKey:AccountManagerID"`
	Items              []OrderService `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
}

// OrderService is a priced line item of an order
type OrderService struct {
	BaseModel
	OrderID         uuid.UUID `gorm:"type:uuid;not null;index;column:order_id"`
	ServiceID       uuid.UUID `gorm:"type:uuid;not null;index;column:service_id"`
	Service         *Service  `gorm:"foreignKey:ServiceID"`
	Description     string    `gorm:"type:varchar(500)"`
	Quantity        float64   `gorm:"type:decimal(10,2);not null;default:1"`
	UnitPrice       float64   `gorm:"type:decimal(15,2);not null;default:0;column:unit_price"`
	DiscountPercent float64   `gorm:"type:decimal(5,2);not null;default:0;column:discount_percent"`
	SortOrder       int       `gorm:"not null;default:0;column:sort_order"`
}

// Total returns the discounted line total
func (i *OrderService) Total() float64 {
	return i.Quantity * i.UnitPrice * (1 - i.DiscountPercent/100)
}

// ProjectStatus represents the status of a project
type ProjectStatus string

const (
	ProjectStatusPlanning   ProjectStatus = "planning"
	ProjectStatusInProgress ProjectStatus = "in_progress"
	ProjectStatusOnHold     ProjectStatus = "on_hold"
	ProjectStatusCompleted  ProjectStatus = "completed"
	ProjectStatusCancelled  ProjectStatus = "cancelled"
)

// IsValid checks if the ProjectStatus is a valid enum value
func (ps ProjectStatus) IsValid() bool {
	switch ps {
	case ProjectStatusPlanning, ProjectStatusInProgress, ProjectStatusOnHold,
		ProjectStatusCompleted, ProjectStatusCancelled:
		return true
	}
	return false
}

// ProjectMethodology represents the delivery methodology of a project
type ProjectMethodology string

const (
	MethodologyWaterfall ProjectMethodology = "waterfall"
	MethodologyAgile     ProjectMethodology = "agile"
	MethodologyHybrid    ProjectMethodology = "hybrid"
)

// IsValid checks if the ProjectMethodology is a valid enum value
func (pm ProjectMethodology) IsValid() bool {
	switch pm {
	case MethodologyWaterfall, MethodologyAgile, MethodologyHybrid:
		return true
	}
	return false
}

// Project represents delivery work derived from an order
type Project struct {
	BaseModel
	Code               string             `gorm:"type:varchar(50);not null;uniqueIndex"`
	OrderID            *uuid.UUID         `gorm:"type:uuid;uniqueIndex;column:order_id"`
	Order              *Order             `gorm:"foreignKey:OrderID"`
	Name               string             `gorm:"type:varchar(200);not null;index"`
	Description        string             `gorm:"type:text"`
	Methodology        ProjectMethodology `gorm:"type:varchar(50);not null;default:'waterfall'"`
	Status             ProjectStatus      `gorm:"type:varchar(50);not null;default:'planning';index"`
	PlannedStartDate   *time.Time         `gorm:"type:date;column:planned_start_date"`
	PlannedEndDate     *time.Time         `gorm:"type:date;column:planned_end_date"`
	ActualStartDate    *time.Time         `gorm:"type:date;column:actual_start_date"`
	ActualEndDate      *time.Time         `gorm:"type:date;column:actual_end_date"`
	Budget             float64            `gorm:"type:decimal(15,2);not null;default:0"`
	ActualCost         float64            `gorm:"type:decimal(15,2);not null;default:0;column:actual_cost"`
	ProgressPercentage float64            `gorm:"type:decimal(5,2);not null;default:0;column:progress_percentage"`
	ProjectManagerID   *uuid.UUID         `gorm:"type:uuid;column:project_manager_id"`
	ProjectManager     *User              `gorm:"foreignKey:ProjectManagerID"`
	AccountManagerID   *uuid.UUID         `gorm:"type:uuid;column:account_manager_id"`
	Tasks              []Task             `gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE"`
	Milestones         []Milestone        `gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE"`
	Timesheets         []Timesheet        `gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE"`
	TeamMembers        []TeamMember       `gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE"`
	Documents          []ProjectDocument  `gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE"`
}

// TaskStatus represents the status of a WBS task
type TaskStatus string

const (
	TaskStatusTodo       TaskStatus = "todo"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusReview     TaskStatus = "review"
	TaskStatusCompleted  TaskStatus = "completed"
	TaskStatusCancelled  TaskStatus = "cancelled"
)

// IsValid checks if the TaskStatus is a valid enum value
func (ts TaskStatus) IsValid() bool {
	switch ts {
	case TaskStatusTodo, TaskStatusInProgress, TaskStatusReview, TaskStatusCompleted, TaskStatusCancelled:
		return true
	}
	return false
}

// TaskPriority represents the urgency of a task
type TaskPriority string

const (
	TaskPriorityLow    TaskPriority = "low"
	TaskPriorityMedium TaskPriority = "medium"
	TaskPriorityHigh   TaskPriority = "high"
	TaskPriorityUrgent TaskPriority = "urgent"
)

// IsValid checks if the TaskPriority is a valid enum value
func (tp TaskPriority) IsValid() bool {
	switch tp {
	case TaskPriorityLow, TaskPriorityMedium, TaskPriorityHigh, TaskPriorityUrgent:
		return true
	}
	return false
}

// Task is a node in a project's work breakdown structure
type Task struct {
	BaseModel
	ProjectID          uuid.UUID        `gorm:"type:uuid;not null;index;column:project_id"`
	ParentTaskID       *uuid.UUID       `gorm:"type:uuid;index;column:parent_task_id"`
	WBSCode            string           `gorm:"type:varchar(50);not null;index;column:wbs_code"`
	Name               string           `gorm:"type:varchar(200);not null"`
	Description        string           `gorm:"type:text"`
	Status             TaskStatus       `gorm:"type:varchar(50);not null;default:'todo';index"`
	Priority           TaskPriority     `gorm:"type:varchar(50);not null;default:'medium'"`
	PlannedStartDate   *time.Time       `gorm:"type:date;column:planned_start_date"`
	PlannedEndDate     *time.Time       `gorm:"type:date;column:planned_end_date"`
	EstimatedHours     float64          `gorm:"type:decimal(10,2);not null;default:0;column:estimated_hours"`
	ActualHours        float64          `gorm:"type:decimal(10,2);not null;default:0;column:actual_hours"`
	ProgressPercentage float64          `gorm:"type:decimal(5,2);not null;default:0;column:progress_percentage"`
	IsMilestone        bool             `gorm:"not null;default:false;column:is_milestone"`
	SortOrder          int              `gorm:"not null;default:0;column:sort_order"`
	Children           []Task           `gorm:"foreignKey:ParentTaskID"`
	Assignments        []TaskAssignment `gorm:"foreignKey:TaskID;constraint:OnDelete:CASCADE"`
}

// TaskAssignment links a team company to a task with an estimated effort
type TaskAssignment struct {
	BaseModel
	TaskID         uuid.UUID `gorm:"type:uuid;not null;index;column:task_id"`
	CompanyID      uuid.UUID `gorm:"type:uuid;not null;index;column:company_id"`
	Company        *Company  `gorm:"foreignKey:CompanyID"`
	Role           string    `gorm:"type:varchar(100)"`
	EstimatedHours float64   `gorm:"type:decimal(10,2);not null;default:0;column:estimated_hours"`
}

// MilestoneType represents the kind of milestone
type MilestoneType string

const (
	MilestoneTypeDeliverable MilestoneType = "deliverable"
	MilestoneTypePayment     MilestoneType = "payment"
	MilestoneTypeReview      MilestoneType = "review"
	MilestoneTypeDeadline    MilestoneType = "deadline"
	MilestoneTypeKickoff     MilestoneType = "kickoff"
	MilestoneTypeGoLive      MilestoneType = "go_live"
)

// IsValid checks if the MilestoneType is a valid enum value
func (mt MilestoneType) IsValid() bool {
	switch mt {
	case MilestoneTypeDeliverable, MilestoneTypePayment, MilestoneTypeReview,
		MilestoneTypeDeadline, MilestoneTypeKickoff, MilestoneTypeGoLive:
		return true
	}
	return false
}

// MilestoneStatus represents the status of a milestone
type MilestoneStatus string

const (
	MilestoneStatusPending    MilestoneStatus = "pending"
	MilestoneStatusInProgress MilestoneStatus = "in_progress"
	MilestoneStatusCompleted  MilestoneStatus = "completed"
	MilestoneStatusMissed     MilestoneStatus = "missed"
	MilestoneStatusCancelled  MilestoneStatus = "cancelled"
)

// IsValid checks if the MilestoneStatus is a valid enum value
func (ms MilestoneStatus) IsValid() bool {
	switch ms {
	case MilestoneStatusPending, MilestoneStatusInProgress, MilestoneStatusCompleted,
		MilestoneStatusMissed, MilestoneStatusCancelled:
		return true
	}
	return false
}

// IsTerminal reports whether no further transitions are allowed from the status
func (ms MilestoneStatus) IsTerminal() bool {
	return ms == MilestoneStatusCompleted || ms == MilestoneStatusMissed || ms == MilestoneStatusCancelled
}

// Milestone represents a dated checkpoint of a project
type Milestone struct {
	BaseModel
	ProjectID     uuid.UUID       `gorm:"type:uuid;not null;index;column:project_id"`
	Name          string          `gorm:"type:varchar(200);not null"`
	Description   string          `gorm:"type:text"`
	Type          MilestoneType   `gorm:"type:varchar(50);not null;default:'deliverable'"`
	Status        MilestoneStatus `gorm:"type:varchar(50);not null;default:'pending';index"`
	DueDate       *time.Time      `gorm:"type:date;column:due_date"`
	CompletedDate *time.Time      `gorm:"type:date;column:completed_date"`
	PaymentAmount float64         `gorm:"type:decimal(15,2);not null;default:0;column:payment_amount"`
	IsPaid        bool            `gorm:"not null;default:false;column:is_paid"`
	SortOrder     int             `gorm:"not null;default:0;column:sort_order"`
}

// IsOverdue reports whether a non-terminal milestone is past its due date
func (m *Milestone) IsOverdue(now time.Time) bool {
	if m.DueDate == nil || m.Status.IsTerminal() {
		return false
	}
	return m.DueDate.Before(now)
}

// TimesheetStatus represents the approval status of a timesheet entry
type TimesheetStatus string

const (
	TimesheetStatusDraft     TimesheetStatus = "draft"
	TimesheetStatusSubmitted TimesheetStatus = "submitted"
	TimesheetStatusApproved  TimesheetStatus = "approved"
	TimesheetStatusRejected  TimesheetStatus = "rejected"
)

// IsValid checks if the TimesheetStatus is a valid enum value
func (ts TimesheetStatus) IsValid() bool {
	switch ts {
	case TimesheetStatusDraft, TimesheetStatusSubmitted, TimesheetStatusApproved, TimesheetStatusRejected:
		return true
	}
	return false
}

// Timesheet is a single day's logged work on a project, optionally against a task
type Timesheet struct {
	BaseModel
	ProjectID    uuid.UUID       `gorm:"type:uuid;not null;index;column:project_id"`
	TaskID       *uuid.UUID      `gorm:"type:uuid;index;column:task_id"`
	Task         *Task           `gorm:"foreignKey:TaskID"`
	UserID       uuid.UUID       `gorm:"type:uuid;not null;index;column:user_id"`
	User         *User           `gorm:"foreignKey:UserID"`
	WorkDate     time.Time       `gorm:"type:date;not null;index;column:work_date"`
	Hours        float64         `gorm:"type:decimal(5,2);not null"`
	Description  string          `gorm:"type:varchar(500)"`
	ActivityType string          `gorm:"type:varchar(100);column:activity_type"`
	IsBillable   bool            `gorm:"not null;default:true;column:is_billable"`
	HourlyRate   float64         `gorm:"type:decimal(10,2);not null;default:0;column:hourly_rate"`
	Status       TimesheetStatus `gorm:"type:varchar(50);not null;default:'draft';index"`
	ApprovedByID *uuid.UUID      `gorm:"type:uuid;column:approved_by_id"`
	ApprovedAt   *time.Time      `gorm:"column:approved_at"`
}

// TotalCost returns hours multiplied by the hourly rate
func (t *Timesheet) TotalCost() float64 {
	return t.Hours * t.HourlyRate
}

// TeamMember links an external company (supplier, partner, freelance) to a project
type TeamMember struct {
	BaseModel
	ProjectID      uuid.UUID `gorm:"type:uuid;not null;index;column:project_id"`
	CompanyID      uuid.UUID `gorm:"type:uuid;not null;index;column:company_id"`
	Company        *Company  `gorm:"foreignKey:CompanyID"`
	Role           string    `gorm:"type:varchar(100)"`
	HourlyRate     float64   `gorm:"type:decimal(10,2);not null;default:0;column:hourly_rate"`
	EstimatedHours float64   `gorm:"type:decimal(10,2);not null;default:0;column:estimated_hours"`
	IsActive       bool      `gorm:"not null;default:true;column:is_active"`
}

// DocumentStatus represents the classification state of an uploaded document
type DocumentStatus string

const (
	DocumentStatusPending     DocumentStatus = "pending"
	DocumentStatusClassified  DocumentStatus = "classified"
	DocumentStatusUnprocessed DocumentStatus = "unprocessed"
)

// IsValid checks if the DocumentStatus is a valid enum value
func (ds DocumentStatus) IsValid() bool {
	switch ds {
	case DocumentStatusPending, DocumentStatusClassified, DocumentStatusUnprocessed:
		return true
	}
	return false
}

// ProjectDocument represents an uploaded file attached to a project
type ProjectDocument struct {
	BaseModel
	ProjectID   uuid.UUID      `gorm:"type:uuid;not null;index;column:project_id"`
	Filename    string         `gorm:"type:varchar(255);not null"`
	ContentType string         `gorm:"type:varchar(100);not null;column:content_type"`
	Size        int64          `gorm:"not null"`
	StoragePath string         `gorm:"type:varchar(500);not null;unique;column:storage_path"`
	Status      DocumentStatus `gorm:"type:varchar(50);not null;default:'pending';index"`
	Category    string         `gorm:"type:varchar(100)"`
	Summary     string         `gorm:"type:text"`
	UploadedBy  *uuid.UUID     `gorm:"type:uuid;column:uploaded_by"`
}

// UserRole represents a role a user can have
type UserRole string

const (
	RoleAdmin          UserRole = "admin"
	RoleManager        UserRole = "manager"
	RoleAccountManager UserRole = "account"
	RoleProjectManager UserRole = "pm"
	RoleUser           UserRole = "user"
)

// IsValid checks if the UserRole is a valid enum value
func (r UserRole) IsValid() bool {
	switch r {
	case RoleAdmin, RoleManager, RoleAccountManager, RoleProjectManager, RoleUser:
		return true
	}
	return false
}

// User mirrors an identity-provider account referenced by CRM records
type User struct {
	BaseModel
	Email       string     `gorm:"type:varchar(255);not null;unique"`
	FirstName   string     `gorm:"type:varchar(100);column:first_name"`
	LastName    string     `gorm:"type:varchar(100);column:last_name"`
	DisplayName string     `gorm:"type:varchar(200);not null;column:display_name"`
	Role        UserRole   `gorm:"type:varchar(50);not null;default:'user'"`
	IsActive    bool       `gorm:"not null;default:true;column:is_active"`
	LastLoginAt *time.Time `gorm:"column:last_login_at"`
}

// FullName returns the user's full name, or display name if first/last not set
func (u *User) FullName() string {
	if u.FirstName != "" && u.LastName != "" {
		return u.FirstName + " " + u.LastName
	}
	return u.DisplayName
}

// NumberSequence tracks the last issued number per prefix and year
type NumberSequence struct {
	ID           uuid.UUID `gorm:"type:uuid;primary_key"`
	Prefix       string    `gorm:"type:varchar(10);not null;uniqueIndex:idx_prefix_year"`
	Year         int       `gorm:"not null;uniqueIndex:idx_prefix_year"`
	LastSequence int       `gorm:"not null;default:0;column:last_sequence"`
	CreatedAt    time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt    time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// BeforeCreate assigns the ID when the caller has not set one.
func (n *NumberSequence) BeforeCreate(_ *gorm.DB) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return nil
}
