package mapper

import (
	"time"

	"github.com/noscite/crm-api/internal/domain"
)

const timestampLayout = "2006-01-02T15:04:05Z"
const dateLayout = "2006-01-02"

func timestamp(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}

func timestampPtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := timestamp(*t)
	return &s
}

func datePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(dateLayout)
	return &s
}

// ToCompanyDTO converts Company to CompanyDTO
func ToCompanyDTO(company *domain.Company) domain.CompanyDTO {
	dto := domain.CompanyDTO{
		ID:               company.ID,
		Name:             company.Name,
		Type:             company.Type,
		VATNumber:        company.VATNumber,
		TaxCode:          company.TaxCode,
		Email:            company.Email,
		PECEmail:         company.PECEmail,
		Phone:            company.Phone,
		Mobile:           company.Mobile,
		Website:          company.Website,
		Address:          company.Address,
		City:             company.City,
		Province:         company.Province,
		PostalCode:       company.PostalCode,
		Country:          company.Country,
		Industry:         company.Industry,
		Notes:            company.Notes,
		AccountManagerID: company.AccountManagerID,
		IsActive:         company.IsActive,
		CreatedAt:        timestamp(company.CreatedAt),
		UpdatedAt:        timestamp(company.UpdatedAt),
	}

	for i := range company.Contacts {
		dto.Contacts = append(dto.Contacts, ToContactDTO(&company.Contacts[i]))
	}

	return dto
}

// ToContactDTO converts Contact to ContactDTO
func ToContactDTO(contact *domain.Contact) domain.ContactDTO {
	dto := domain.ContactDTO{
		ID:              contact.ID,
		CompanyID:       contact.CompanyID,
		FirstName:       contact.FirstName,
		LastName:        contact.LastName,
		FullName:        contact.FullName(),
		Email:           contact.Email,
		Phone:           contact.Phone,
		Mobile:          contact.Mobile,
		JobTitle:        contact.JobTitle,
		Department:      contact.Department,
		IsPrimary:       contact.IsPrimary,
		IsDecisionMaker: contact.IsDecisionMaker,
		Notes:           contact.Notes,
		IsActive:        contact.IsActive,
		CreatedAt:       timestamp(contact.CreatedAt),
		UpdatedAt:       timestamp(contact.UpdatedAt),
	}

	if contact.Company != nil {
		dto.CompanyName = contact.Company.Name
	}

	return dto
}

// ToServiceDTO converts Service to ServiceDTO
func ToServiceDTO(service *domain.Service) domain.ServiceDTO {
	dto := domain.ServiceDTO{
		ID:            service.ID,
		Code:          service.Code,
		Name:          service.Name,
		Description:   service.Description,
		Type:          service.Type,
		UnitPrice:     service.UnitPrice,
		CostPrice:     service.CostPrice,
		BillingType:   service.BillingType,
		UnitOfMeasure: service.UnitOfMeasure,
		Category:      service.Category,
		IsActive:      service.IsActive,
		CreatedAt:     timestamp(service.CreatedAt),
		UpdatedAt:     timestamp(service.UpdatedAt),
	}

	for i := range service.Components {
		dto.Components = append(dto.Components, ToServiceCompositionDTO(&service.Components[i]))
	}

	return dto
}

// ToServiceCompositionDTO converts ServiceComposition to ServiceCompositionDTO
func ToServiceCompositionDTO(comp *domain.ServiceComposition) domain.ServiceCompositionDTO {
	dto := domain.ServiceCompositionDTO{
		ID:                comp.ID,
		ParentServiceID:   comp.ParentServiceID,
		ChildServiceID:    comp.ChildServiceID,
		Quantity:          comp.Quantity,
		UnitPriceOverride: comp.UnitPriceOverride,
		SortOrder:         comp.SortOrder,
	}

	if comp.ChildService != nil {
		dto.ChildServiceCode = comp.ChildService.Code
		dto.ChildServiceName = comp.ChildService.Name
	}

	return dto
}

// ToOpportunityDTO converts Opportunity to OpportunityDTO
func ToOpportunityDTO(opp *domain.Opportunity) domain.OpportunityDTO {
	dto := domain.OpportunityDTO{
		ID:                opp.ID,
		Code:              opp.Code,
		CompanyID:         opp.CompanyID,
		ContactID:         opp.ContactID,
		Title:             opp.Title,
		Description:       opp.Description,
		Status:            opp.Status,
		Source:            opp.Source,
		Amount:            opp.Amount,
		WinProbability:    opp.WinProbability,
		WeightedAmount:    opp.WeightedAmount(),
		ExpectedCloseDate: datePtr(opp.ExpectedCloseDate),
		ActualCloseDate:   datePtr(opp.ActualCloseDate),
		OwnerID:           opp.OwnerID,
		CloseReason:       opp.CloseReason,
		Items:             []domain.OpportunityServiceDTO{},
		CreatedAt:         timestamp(opp.CreatedAt),
		UpdatedAt:         timestamp(opp.UpdatedAt),
	}

	if opp.Company != nil {
		dto.CompanyName = opp.Company.Name
	}
	for i := range opp.Items {
		dto.Items = append(dto.Items, ToOpportunityServiceDTO(&opp.Items[i]))
	}

	return dto
}

// ToOpportunityServiceDTO converts OpportunityService to OpportunityServiceDTO
func ToOpportunityServiceDTO(item *domain.OpportunityService) domain.OpportunityServiceDTO {
	dto := domain.OpportunityServiceDTO{
		ID:              item.ID,
		OpportunityID:   item.OpportunityID,
		ServiceID:       item.ServiceID,
		Description:     item.Description,
		Quantity:        item.Quantity,
		UnitPrice:       item.UnitPrice,
		DiscountPercent: item.DiscountPercent,
		Total:           item.Total(),
		SortOrder:       item.SortOrder,
	}

	if item.Service != nil {
		dto.ServiceCode = item.Service.Code
		dto.ServiceName = item.Service.Name
	}

	return dto
}

// ToOrderDTO converts Order to OrderDTO
func ToOrderDTO(order *domain.Order) domain.OrderDTO {
	dto := domain.OrderDTO{
		ID:                 order.ID,
		OrderNumber:        order.OrderNumber,
		OpportunityID:      order.OpportunityID,
		CompanyID:          order.CompanyID,
		ContactID:          order.ContactID,
		Title:              order.Title,
		Description:        order.Description,
		Status:             order.Status,
		Priority:           order.Priority,
		StartDate:          datePtr(order.StartDate),
		EndDate:            datePtr(order.EndDate),
		TotalAmount:        order.TotalAmount,
		InvoicedAmount:     order.InvoicedAmount,
		EstimatedHours:     order.EstimatedHours,
		ActualHours:        order.ActualHours,
		ProgressPercentage: order.ProgressPercentage,
		AccountManagerID:   order.AccountManagerID,
		Items:              []domain.OrderServiceDTO{},
		CreatedAt:          timestamp(order.CreatedAt),
		UpdatedAt:          timestamp(order.UpdatedAt),
	}

	if order.Company != nil {
		dto.CompanyName = order.Company.Name
	}
	for i := range order.Items {
		dto.Items = append(dto.Items, ToOrderServiceDTO(&order.Items[i]))
	}

	return dto
}

// ToOrderServiceDTO converts OrderService to OrderServiceDTO
func ToOrderServiceDTO(item *domain.OrderService) domain.OrderServiceDTO {
	dto := domain.OrderServiceDTO{
		ID:              item.ID,
		OrderID:         item.OrderID,
		ServiceID:       item.ServiceID,
		Description:     item.Description,
		Quantity:        item.Quantity,
		UnitPrice:       item.UnitPrice,
		DiscountPercent: item.DiscountPercent,
		Total:           item.Total(),
		SortOrder:       item.SortOrder,
	}

	if item.Service != nil {
		dto.ServiceCode = item.Service.Code
		dto.ServiceName = item.Service.Name
	}

	return dto
}

// ToProjectDTO converts Project to ProjectDTO
func ToProjectDTO(project *domain.Project) domain.ProjectDTO {
	return domain.ProjectDTO{
		ID:                 project.ID,
		Code:               project.Code,
		OrderID:            project.OrderID,
		Name:               project.Name,
		Description:        project.Description,
		Methodology:        project.Methodology,
		Status:             project.Status,
		PlannedStartDate:   datePtr(project.PlannedStartDate),
		PlannedEndDate:     datePtr(project.PlannedEndDate),
		ActualStartDate:    datePtr(project.ActualStartDate),
		ActualEndDate:      datePtr(project.ActualEndDate),
		Budget:             project.Budget,
		ActualCost:         project.ActualCost,
		ProgressPercentage: project.ProgressPercentage,
		ProjectManagerID:   project.ProjectManagerID,
		AccountManagerID:   project.AccountManagerID,
		CreatedAt:          timestamp(project.CreatedAt),
		UpdatedAt:          timestamp(project.UpdatedAt),
	}
}

// ToTaskDTO converts a Task to TaskDTO without children
func ToTaskDTO(task *domain.Task) domain.TaskDTO {
	dto := domain.TaskDTO{
		ID:                 task.ID,
		ProjectID:          task.ProjectID,
		ParentTaskID:       task.ParentTaskID,
		WBSCode:            task.WBSCode,
		Name:               task.Name,
		Description:        task.Description,
		Status:             task.Status,
		Priority:           task.Priority,
		PlannedStartDate:   datePtr(task.PlannedStartDate),
		PlannedEndDate:     datePtr(task.PlannedEndDate),
		EstimatedHours:     task.EstimatedHours,
		ActualHours:        task.ActualHours,
		ProgressPercentage: task.ProgressPercentage,
		IsMilestone:        task.IsMilestone,
		SortOrder:          task.SortOrder,
		CreatedAt:          timestamp(task.CreatedAt),
		UpdatedAt:          timestamp(task.UpdatedAt),
	}

	for i := range task.Assignments {
		dto.Assignments = append(dto.Assignments, ToTaskAssignmentDTO(&task.Assignments[i]))
	}

	return dto
}

// ToTaskTree converts a flat, sort-ordered task list into nested TaskDTOs
func ToTaskTree(tasks []domain.Task) []domain.TaskDTO {
	byParent := make(map[string][]*domain.Task)
	for i := range tasks {
		key := ""
		if tasks[i].ParentTaskID != nil {
			key = tasks[i].ParentTaskID.String()
		}
		byParent[key] = append(byParent[key], &tasks[i])
	}

	var build func(parentKey string) []domain.TaskDTO
	build = func(parentKey string) []domain.TaskDTO {
		nodes := byParent[parentKey]
		if len(nodes) == 0 {
			return nil
		}
		out := make([]domain.TaskDTO, 0, len(nodes))
		for _, task := range nodes {
			dto := ToTaskDTO(task)
			dto.Children = build(task.ID.String())
			out = append(out, dto)
		}
		return out
	}

	return build("")
}

// ToTaskAssignmentDTO converts TaskAssignment to TaskAssignmentDTO
func ToTaskAssignmentDTO(assignment *domain.TaskAssignment) domain.TaskAssignmentDTO {
	dto := domain.TaskAssignmentDTO{
		ID:             assignment.ID,
		TaskID:         assignment.TaskID,
		CompanyID:      assignment.CompanyID,
		Role:           assignment.Role,
		EstimatedHours: assignment.EstimatedHours,
	}

	if assignment.Company != nil {
		dto.CompanyName = assignment.Company.Name
	}

	return dto
}

// ToMilestoneDTO converts Milestone to MilestoneDTO
func ToMilestoneDTO(milestone *domain.Milestone, now time.Time) domain.MilestoneDTO {
	return domain.MilestoneDTO{
		ID:            milestone.ID,
		ProjectID:     milestone.ProjectID,
		Name:          milestone.Name,
		Description:   milestone.Description,
		Type:          milestone.Type,
		Status:        milestone.Status,
		DueDate:       datePtr(milestone.DueDate),
		CompletedDate: datePtr(milestone.CompletedDate),
		PaymentAmount: milestone.PaymentAmount,
		IsPaid:        milestone.IsPaid,
		IsOverdue:     milestone.IsOverdue(now),
		SortOrder:     milestone.SortOrder,
		CreatedAt:     timestamp(milestone.CreatedAt),
		UpdatedAt:     timestamp(milestone.UpdatedAt),
	}
}

// ToTimesheetDTO converts Timesheet to TimesheetDTO
func ToTimesheetDTO(timesheet *domain.Timesheet) domain.TimesheetDTO {
	return domain.TimesheetDTO{
		ID:           timesheet.ID,
		ProjectID:    timesheet.ProjectID,
		TaskID:       timesheet.TaskID,
		UserID:       timesheet.UserID,
		WorkDate:     timesheet.WorkDate.Format(dateLayout),
		Hours:        timesheet.Hours,
		Description:  timesheet.Description,
		ActivityType: timesheet.ActivityType,
		IsBillable:   timesheet.IsBillable,
		HourlyRate:   timesheet.HourlyRate,
		TotalCost:    timesheet.TotalCost(),
		Status:       timesheet.Status,
		ApprovedByID: timesheet.ApprovedByID,
		ApprovedAt:   timestampPtr(timesheet.ApprovedAt),
		CreatedAt:    timestamp(timesheet.CreatedAt),
		UpdatedAt:    timestamp(timesheet.UpdatedAt),
	}
}

// ToTeamMemberDTO converts TeamMember to TeamMemberDTO with computed workload figures
func ToTeamMemberDTO(member *domain.TeamMember, tasksAssigned int, actualHours float64) domain.TeamMemberDTO {
	dto := domain.TeamMemberDTO{
		ID:             member.ID,
		ProjectID:      member.ProjectID,
		CompanyID:      member.CompanyID,
		Role:           member.Role,
		HourlyRate:     member.HourlyRate,
		EstimatedHours: member.EstimatedHours,
		TasksAssigned:  tasksAssigned,
		ActualHours:    actualHours,
		IsActive:       member.IsActive,
		CreatedAt:      timestamp(member.CreatedAt),
		UpdatedAt:      timestamp(member.UpdatedAt),
	}

	if member.Company != nil {
		dto.CompanyName = member.Company.Name
		dto.CompanyType = member.Company.Type
	}

	return dto
}

// ToProjectDocumentDTO converts ProjectDocument to ProjectDocumentDTO
func ToProjectDocumentDTO(doc *domain.ProjectDocument) domain.ProjectDocumentDTO {
	return domain.ProjectDocumentDTO{
		ID:          doc.ID,
		ProjectID:   doc.ProjectID,
		Filename:    doc.Filename,
		ContentType: doc.ContentType,
		Size:        doc.Size,
		Status:      doc.Status,
		Category:    doc.Category,
		Summary:     doc.Summary,
		UploadedBy:  doc.UploadedBy,
		CreatedAt:   timestamp(doc.CreatedAt),
		UpdatedAt:   timestamp(doc.UpdatedAt),
	}
}

// ToUserDTO converts User to UserDTO
func ToUserDTO(user *domain.User) domain.UserDTO {
	return domain.UserDTO{
		ID:          user.ID,
		Email:       user.Email,
		FirstName:   user.FirstName,
		LastName:    user.LastName,
		DisplayName: user.DisplayName,
		Role:        user.Role,
		IsActive:    user.IsActive,
		LastLoginAt: timestampPtr(user.LastLoginAt),
		CreatedAt:   timestamp(user.CreatedAt),
		UpdatedAt:   timestamp(user.UpdatedAt),
	}
}
