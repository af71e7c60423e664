package api

import (
	"context"
	"fmt"
)

// AdminCompany represents a tenant as seen from the super-admin back-office
type AdminCompany struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Status       string `json:"status,omitempty"`
	Plan         string `json:"plan,omitempty"`
	Email        string `json:"email,omitempty"`
	Appointments int    `json:"agendamentos,omitempty"`
	MessagesSent int    `json:"mensagensEnviadas,omitempty"`
	CreatedAt    string `json:"createdAt,omitempty"`
}

// AdminPlan represents a subscription plan
type AdminPlan struct {
	ID                string  `json:"id"`
	Name              string  `json:"name"`
	Price             float64 `json:"price"`
	AppointmentLimit  int     `json:"limiteAgendamentos,omitempty"`
	NotificationLimit int     `json:"limiteNotificacoes,omitempty"`
}

// AdminDashboard represents the platform-wide dashboard counters
type AdminDashboard struct {
	TotalCompanies    int `json:"totalEmpresas"`
	ActiveCompanies   int `json:"empresasAtivas"`
	AppointmentsMonth int `json:"agendamentosMes"`
	MessagesSent      int `json:"mensagensEnviadas"`
	CompanyGrowth     int `json:"crescimentoEmpresas"`
	AppointmentGrowth int `json:"crescimentoAgendamentos"`
}

// adminDashboardPayload tolerates the snake_case spellings older backend
// builds emitted for the dashboard counters.
type adminDashboardPayload struct {
	TotalCompanies       int `json:"totalEmpresas"`
	TotalCompaniesAlt    int `json:"total_empresas"`
	ActiveCompanies      int `json:"empresasAtivas"`
	ActiveCompaniesAlt   int `json:"empresas_ativas"`
	AppointmentsMonth    int `json:"agendamentosMes"`
	AppointmentsMonthAlt int `json:"agendamentos_mes"`
	MessagesSent         int `json:"mensagensEnviadas"`
	MessagesSentAlt      int `json:"mensagens_enviadas"`
	CompanyGrowth        int `json:"crescimentoEmpresas"`
	CompanyGrowthAlt     int `json:"crescimento_empresas"`
	AppointmentGrowth    int `json:"crescimentoAgendamentos"`
	AppointmentGrowthAlt int `json:"crescimento_agendamentos"`
}

func pickCounter(camel, snake int) int {
	if camel != 0 {
		return camel
	}
	return snake
}

func (p adminDashboardPayload) dashboard() *AdminDashboard {
	return &AdminDashboard{
		TotalCompanies:    pickCounter(p.TotalCompanies, p.TotalCompaniesAlt),
		ActiveCompanies:   pickCounter(p.ActiveCompanies, p.ActiveCompaniesAlt),
		AppointmentsMonth: pickCounter(p.AppointmentsMonth, p.AppointmentsMonthAlt),
		MessagesSent:      pickCounter(p.MessagesSent, p.MessagesSentAlt),
		CompanyGrowth:     pickCounter(p.CompanyGrowth, p.CompanyGrowthAlt),
		AppointmentGrowth: pickCounter(p.AppointmentGrowth, p.AppointmentGrowthAlt),
	}
}

// ListAdminCompanies retrieves all tenants
func (c *Client) ListAdminCompanies(ctx context.Context) ([]AdminCompany, error) {
	var companies []AdminCompany
	if err := c.get(ctx, "/admin/companies", &companies); err != nil {
		return nil, err
	}
	return companies, nil
}

// CreateAdminCompany creates a tenant
func (c *Client) CreateAdminCompany(ctx context.Context, payload *AdminCompany) (*AdminCompany, error) {
	var company AdminCompany
	if err := c.post(ctx, "/admin/companies", payload, &company); err != nil {
		return nil, err
	}
	return &company, nil
}

// GetAdminCompany retrieves a single tenant
func (c *Client) GetAdminCompany(ctx context.Context, companyID string) (*AdminCompany, error) {
	var company AdminCompany
	if err := c.get(ctx, fmt.Sprintf("/admin/companies/%s", companyID), &company); err != nil {
		return nil, err
	}
	return &company, nil
}

// UpdateAdminCompany updates a tenant
func (c *Client) UpdateAdminCompany(ctx context.Context, companyID string, payload *AdminCompany) (*AdminCompany, error) {
	var company AdminCompany
	if err := c.patch(ctx, fmt.Sprintf("/admin/companies/%s", companyID), payload, &company); err != nil {
		return nil, err
	}
	return &company, nil
}

// ListAdminPlans retrieves all subscription plans
func (c *Client) ListAdminPlans(ctx context.Context) ([]AdminPlan, error) {
	var plans []AdminPlan
	if err := c.get(ctx, "/admin/plans", &plans); err != nil {
		return nil, err
	}
	return plans, nil
}

// CreateAdminPlan creates a subscription plan
func (c *Client) CreateAdminPlan(ctx context.Context, payload *AdminPlan) (*AdminPlan, error) {
	var plan AdminPlan
	if err := c.post(ctx, "/admin/plans", payload, &plan); err != nil {
		return nil, err
	}
	return &plan, nil
}

// UpdateAdminPlan updates a subscription plan
func (c *Client) UpdateAdminPlan(ctx context.Context, planID string, payload *AdminPlan) (*AdminPlan, error) {
	var plan AdminPlan
	if err := c.patch(ctx, fmt.Sprintf("/admin/plans/%s", planID), payload, &plan); err != nil {
		return nil, err
	}
	return &plan, nil
}

// GetAdminStats retrieves the raw platform statistics. The endpoint is
// loosely typed on the backend, so the decoded JSON is returned as-is.
func (c *Client) GetAdminStats(ctx context.Context) (map[string]any, error) {
	var stats map[string]any
	if err := c.get(ctx, "/admin/stats", &stats); err != nil {
		return nil, err
	}
	return stats, nil
}

// GetAdminDashboard retrieves the platform-wide dashboard counters
func (c *Client) GetAdminDashboard(ctx context.Context) (*AdminDashboard, error) {
	var payload adminDashboardPayload
	if err := c.get(ctx, "/admin/dashboard", &payload); err != nil {
		return nil, err
	}
	return payload.dashboard(), nil
}
