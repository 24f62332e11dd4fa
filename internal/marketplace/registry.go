package marketplace

import "github.com/madhava-poojari/jobs-admin-console/internal/models"

// Resource specs as the marketplace exposes them. Collection keys and
// sequence paths are not uniform across resources.
var (
	StatesSpec        = ResourceSpec{Name: "states", Path: "/masters/states", SequenceKey: "states", SequencePath: "/bulk/sequence"}
	CitiesSpec        = ResourceSpec{Name: "cities", Path: "/masters/cities", SequenceKey: "cities", SequencePath: "/bulk/sequence"}
	CategoriesSpec    = ResourceSpec{Name: "business-categories", Path: "/masters/business-categories", SequenceKey: "categories", SequencePath: "/bulk/sequence"}
	DistancesSpec     = ResourceSpec{Name: "distances", Path: "/masters/distances", SequenceKey: "distances", SequencePath: "/bulk/sequence"}
	SalaryRangesSpec  = ResourceSpec{Name: "salary-ranges", Path: "/masters/salary-ranges", SequenceKey: "salary_ranges", SequencePath: "/bulk/sequence"}
	SalaryTypesSpec   = ResourceSpec{Name: "salary-types", Path: "/masters/salary-types", SequenceKey: "salary_types", SequencePath: "/bulk/sequence"}
	ReportReasonsSpec = ResourceSpec{Name: "report-reasons", Path: "/masters/report-reasons", SequenceKey: "reasons", SequencePath: "/bulk/sequence"}
	PlansSpec         = ResourceSpec{Name: "plans", Path: "/subscriptions/plans", SequenceKey: "plans", SequencePath: "/sequence"}
	BenefitsSpec      = ResourceSpec{Name: "plan-benefits", Path: "/subscriptions/benefits", SequenceKey: "benefits", SequencePath: "/sequence"}
	VolunteersSpec    = ResourceSpec{Name: "volunteers", Path: "/volunteers"}
	EmployersSpec     = ResourceSpec{Name: "employers", Path: "/employers"}
	EmployeesSpec     = ResourceSpec{Name: "users", Path: "/users"}
	AdminsSpec        = ResourceSpec{Name: "admins", Path: "/admins"}
	RolesSpec         = ResourceSpec{Name: "roles", Path: "/roles"}
)

// Registry holds one typed client per marketplace resource.
type Registry struct {
	Client *Client

	States        *Resource[models.State]
	Cities        *Resource[models.City]
	Categories    *Resource[models.BusinessCategory]
	Distances     *Resource[models.Distance]
	SalaryRanges  *Resource[models.SalaryRange]
	SalaryTypes   *Resource[models.SalaryType]
	ReportReasons *Resource[models.ReportReason]
	Plans         *Resource[models.SubscriptionPlan]
	Benefits      *Resource[models.PlanBenefit]
	Volunteers    *Resource[models.Volunteer]
	Employers     *Resource[models.Employer]
	Employees     *Resource[models.Employee]
	Admins        *Resource[models.Admin]
	Roles         *Resource[models.AdminRole]
}

func NewRegistry(c *Client) *Registry {
	return &Registry{
		Client:        c,
		States:        NewResource[models.State](c, StatesSpec),
		Cities:        NewResource[models.City](c, CitiesSpec),
		Categories:    NewResource[models.BusinessCategory](c, CategoriesSpec),
		Distances:     NewResource[models.Distance](c, DistancesSpec),
		SalaryRanges:  NewResource[models.SalaryRange](c, SalaryRangesSpec),
		SalaryTypes:   NewResource[models.SalaryType](c, SalaryTypesSpec),
		ReportReasons: NewResource[models.ReportReason](c, ReportReasonsSpec),
		Plans:         NewResource[models.SubscriptionPlan](c, PlansSpec),
		Benefits:      NewResource[models.PlanBenefit](c, BenefitsSpec),
		Volunteers:    NewResource[models.Volunteer](c, VolunteersSpec),
		Employers:     NewResource[models.Employer](c, EmployersSpec),
		Employees:     NewResource[models.Employee](c, EmployeesSpec),
		Admins:        NewResource[models.Admin](c, AdminsSpec),
		Roles:         NewResource[models.AdminRole](c, RolesSpec),
	}
}
