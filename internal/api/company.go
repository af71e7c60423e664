package api

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
)

// Company represents a company profile
type Company struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Status    string `json:"status,omitempty"`
	Plan      string `json:"plan,omitempty"`
	CreatedAt string `json:"createdAt,omitempty"`
	Phone     string `json:"phone,omitempty"`
	Email     string `json:"email,omitempty"`
	Address   string `json:"address,omitempty"`
}

// CompanyUser represents an operator account within a company
type CompanyUser struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	Status string `json:"status,omitempty"`
}

// Service represents a bookable service
type Service struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Duration int     `json:"duration"`
	Price    float64 `json:"price"`
	Active   bool    `json:"active"`
}

// CompanyClient represents an end customer of a company
type CompanyClient struct {
	ID                string `json:"id"`
	Name              string `json:"name"`
	Phone             string `json:"phone,omitempty"`
	Email             string `json:"email,omitempty"`
	LastVisit         string `json:"lastVisit,omitempty"`
	TotalAppointments int    `json:"totalAppointments,omitempty"`
}

// Appointment represents a scheduled appointment
type Appointment struct {
	ID               string `json:"id"`
	ClientID         string `json:"clientId,omitempty"`
	ClientName       string `json:"clientName,omitempty"`
	ClientPhone      string `json:"clientPhone,omitempty"`
	ServiceID        string `json:"serviceId,omitempty"`
	ServiceName      string `json:"serviceName,omitempty"`
	ProfessionalID   string `json:"professionalId,omitempty"`
	ProfessionalName string `json:"professionalName,omitempty"`
	Date             string `json:"date"`
	Time             string `json:"time,omitempty"`
	Status           string `json:"status"`
	Notes            string `json:"notes,omitempty"`
}

// MessageTemplate represents a WhatsApp message template
type MessageTemplate struct {
	ID      string `json:"id"`
	Type    string `json:"type"`
	Name    string `json:"name"`
	Message string `json:"message"`
	Active  bool   `json:"active"`
}

// Settings represents the company-level console settings
type Settings struct {
	ID               string `json:"id,omitempty"`
	PrimaryColor     string `json:"primaryColor,omitempty"`
	EnableOnline     bool   `json:"enableOnline,omitempty"`
	ConfirmationAuto bool   `json:"confirmationAuto,omitempty"`
	ScheduleType     string `json:"scheduleType,omitempty"`
}

// Dashboard represents the company dashboard counters
type Dashboard struct {
	AppointmentsToday int           `json:"agendamentosHoje"`
	AppointmentsWeek  int           `json:"agendamentosSemana"`
	ShowUpRate        float64       `json:"taxaComparecimento"`
	TotalClients      int           `json:"clientesTotal"`
	ActiveServices    int           `json:"servicosAtivos"`
	NextAppointments  []Appointment `json:"proximosAgendamentos,omitempty"`
}

// Report represents the company revenue and performance report
type Report struct {
	MonthlyRevenue []ReportMonth `json:"receitaMensal"`
	TopServices    []ReportItem  `json:"topServicos"`
	Professionals  []ReportItem  `json:"profissionais"`
	Totals         *ReportTotals `json:"totais,omitempty"`
}

// ReportMonth is one month of revenue
type ReportMonth struct {
	Month   string  `json:"mes"`
	Revenue float64 `json:"receita"`
}

// ReportItem is a per-service or per-professional counter
type ReportItem struct {
	Name    string  `json:"name"`
	Total   int     `json:"total"`
	Revenue float64 `json:"receita,omitempty"`
}

// ReportTotals aggregates the report
type ReportTotals struct {
	TotalRevenue      float64 `json:"receitaTotal,omitempty"`
	TotalAppointments int     `json:"agendamentosTotal,omitempty"`
	AverageTicket     float64 `json:"ticketMedio,omitempty"`
}

// AppointmentFilter narrows an appointment listing
type AppointmentFilter struct {
	Date           string
	ProfessionalID string
	Status         string
	Page           int
	PerPage        int
}

func (f AppointmentFilter) query() string {
	values := url.Values{}
	if f.Date != "" {
		values.Set("date", f.Date)
	}
	if f.ProfessionalID != "" {
		values.Set("professionalId", f.ProfessionalID)
	}
	if f.Status != "" {
		values.Set("status", f.Status)
	}
	if f.Page > 0 {
		values.Set("page", strconv.Itoa(f.Page))
	}
	if f.PerPage > 0 {
		values.Set("perPage", strconv.Itoa(f.PerPage))
	}
	if len(values) == 0 {
		return ""
	}
	return "?" + values.Encode()
}

// GetCompany retrieves a company profile
func (c *Client) GetCompany(ctx context.Context, companyID string) (*Company, error) {
	var company Company
	if err := c.get(ctx, fmt.Sprintf("/companies/%s", companyID), &company); err != nil {
		return nil, err
	}
	return &company, nil
}

// UpdateCompany updates a company profile
func (c *Client) UpdateCompany(ctx context.Context, companyID string, payload *Company) (*Company, error) {
	var company Company
	if err := c.patch(ctx, fmt.Sprintf("/companies/%s", companyID), payload, &company); err != nil {
		return nil, err
	}
	return &company, nil
}

// ListCompanyUsers retrieves the operator accounts of a company
func (c *Client) ListCompanyUsers(ctx context.Context, companyID string) ([]CompanyUser, error) {
	var users []CompanyUser
	if err := c.get(ctx, fmt.Sprintf("/companies/%s/users", companyID), &users); err != nil {
		return nil, err
	}
	return users, nil
}

// ListServices retrieves the services of a company
func (c *Client) ListServices(ctx context.Context, companyID string) ([]Service, error) {
	var services []Service
	if err := c.get(ctx, fmt.Sprintf("/companies/%s/services", companyID), &services); err != nil {
		return nil, err
	}
	return services, nil
}

// CreateService creates a service
func (c *Client) CreateService(ctx context.Context, companyID string, payload *Service) (*Service, error) {
	var service Service
	if err := c.post(ctx, fmt.Sprintf("/companies/%s/services", companyID), payload, &service); err != nil {
		return nil, err
	}
	return &service, nil
}

// ListClients retrieves a company's clients, optionally filtered by a search term
func (c *Client) ListClients(ctx context.Context, companyID, search string) ([]CompanyClient, error) {
	path := fmt.Sprintf("/companies/%s/clients", companyID)
	if search != "" {
		path += "?search=" + url.QueryEscape(search)
	}
	var clients []CompanyClient
	if err := c.get(ctx, path, &clients); err != nil {
		return nil, err
	}
	return clients, nil
}

// CreateClient creates a client record
func (c *Client) CreateClient(ctx context.Context, companyID string, payload *CompanyClient) (*CompanyClient, error) {
	var client CompanyClient
	if err := c.post(ctx, fmt.Sprintf("/companies/%s/clients", companyID), payload, &client); err != nil {
		return nil, err
	}
	return &client, nil
}

// ListAppointments retrieves appointments matching the filter
func (c *Client) ListAppointments(ctx context.Context, companyID string, filter AppointmentFilter) ([]Appointment, error) {
	var appointments []Appointment
	path := fmt.Sprintf("/companies/%s/appointments%s", companyID, filter.query())
	if err := c.get(ctx, path, &appointments); err != nil {
		return nil, err
	}
	return appointments, nil
}

// CreateAppointment creates an appointment
func (c *Client) CreateAppointment(ctx context.Context, companyID string, payload *Appointment) (*Appointment, error) {
	var appointment Appointment
	if err := c.post(ctx, fmt.Sprintf("/companies/%s/appointments", companyID), payload, &appointment); err != nil {
		return nil, err
	}
	return &appointment, nil
}

// UpdateAppointmentStatus transitions an appointment to a new status
func (c *Client) UpdateAppointmentStatus(ctx context.Context, companyID, appointmentID, status string) (*Appointment, error) {
	var appointment Appointment
	path := fmt.Sprintf("/companies/%s/appointments/%s/status", companyID, appointmentID)
	if err := c.patch(ctx, path, map[string]string{"status": status}, &appointment); err != nil {
		return nil, err
	}
	return &appointment, nil
}

// SendAppointmentConfirmation triggers the confirmation message for an appointment
func (c *Client) SendAppointmentConfirmation(ctx context.Context, companyID, appointmentID string) error {
	path := fmt.Sprintf("/companies/%s/appointments/%s/send-confirmation", companyID, appointmentID)
	return c.post(ctx, path, map[string]string{}, nil)
}

// ListTemplates retrieves a company's message templates
func (c *Client) ListTemplates(ctx context.Context, companyID string) ([]MessageTemplate, error) {
	var templates []MessageTemplate
	if err := c.get(ctx, fmt.Sprintf("/companies/%s/message-templates", companyID), &templates); err != nil {
		return nil, err
	}
	return templates, nil
}

// CreateTemplate creates a message template
func (c *Client) CreateTemplate(ctx context.Context, companyID string, payload *MessageTemplate) (*MessageTemplate, error) {
	var template MessageTemplate
	if err := c.post(ctx, fmt.Sprintf("/companies/%s/message-templates", companyID), payload, &template); err != nil {
		return nil, err
	}
	return &template, nil
}

// DeleteTemplate removes a message template
func (c *Client) DeleteTemplate(ctx context.Context, companyID, templateID string) error {
	return c.delete(ctx, fmt.Sprintf("/companies/%s/message-templates/%s", companyID, templateID))
}

// GetSettings retrieves the company settings
func (c *Client) GetSettings(ctx context.Context, companyID string) (*Settings, error) {
	var settings Settings
	if err := c.get(ctx, fmt.Sprintf("/companies/%s/settings", companyID), &settings); err != nil {
		return nil, err
	}
	return &settings, nil
}

// UpdateSettings updates the company settings
func (c *Client) UpdateSettings(ctx context.Context, companyID string, payload *Settings) (*Settings, error) {
	var settings Settings
	if err := c.patch(ctx, fmt.Sprintf("/companies/%s/settings", companyID), payload, &settings); err != nil {
		return nil, err
	}
	return &settings, nil
}

// GetDashboard retrieves the company dashboard counters
func (c *Client) GetDashboard(ctx context.Context, companyID string) (*Dashboard, error) {
	var dashboard Dashboard
	if err := c.get(ctx, fmt.Sprintf("/companies/%s/dashboard", companyID), &dashboard); err != nil {
		return nil, err
	}
	return &dashboard, nil
}

// GetReport retrieves the company revenue and performance report
func (c *Client) GetReport(ctx context.Context, companyID string) (*Report, error) {
	var report Report
	if err := c.get(ctx, fmt.Sprintf("/companies/%s/reports", companyID), &report); err != nil {
		return nil, err
	}
	return &report, nil
}
