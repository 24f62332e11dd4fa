package console

import (
	"sort"
	"time"

	"github.com/madhava-poojari/jobs-admin-console/internal/audit"
	"github.com/madhava-poojari/jobs-admin-console/internal/listpage"
	"github.com/madhava-poojari/jobs-admin-console/internal/logger"
	"github.com/madhava-poojari/jobs-admin-console/internal/marketplace"
	"github.com/madhava-poojari/jobs-admin-console/internal/models"
	"github.com/madhava-poojari/jobs-admin-console/internal/translation"
)

type Deps struct {
	Translator      translation.Translator
	TranslateTarget string
	Audit           audit.Recorder
	Log             *logger.Logger
	ConfirmTTL      time.Duration
}

// Console is the set of resources an operator can work with, keyed by the
// name used in URLs.
type Console struct {
	bindings map[string]Binding
	order    []string
	Confirm  *listpage.ConfirmDialog
}

func New(reg *marketplace.Registry, d Deps) *Console {
	log := d.Log
	if log == nil {
		log = logger.Nop()
	}
	target := d.TranslateTarget
	if target == "" {
		target = "hi"
	}
	dd := deps{translator: d.Translator, target: target, recorder: d.Audit, log: log.Named("console")}

	c := &Console{
		bindings: make(map[string]Binding),
		Confirm:  listpage.NewConfirmDialog(d.ConfirmTTL),
	}
	c.add(newSequencedBinding[models.State](reg.States, "State", AreaMasters, dd))
	c.add(newSequencedBinding[models.City](reg.Cities, "City", AreaMasters, dd))
	c.add(newSequencedBinding[models.BusinessCategory](reg.Categories, "Business category", AreaMasters, dd))
	c.add(newSequencedBinding[models.Distance](reg.Distances, "Distance", AreaMasters, dd))
	c.add(newSequencedBinding[models.SalaryRange](reg.SalaryRanges, "Salary range", AreaMasters, dd))
	c.add(newSequencedBinding[models.SalaryType](reg.SalaryTypes, "Salary type", AreaMasters, dd))
	c.add(newSequencedBinding[models.ReportReason](reg.ReportReasons, "Report reason", AreaMasters, dd))
	c.add(newSequencedBinding[models.SubscriptionPlan](reg.Plans, "Plan", AreaSubscriptions, dd))
	c.add(newSequencedBinding[models.PlanBenefit](reg.Benefits, "Plan benefit", AreaSubscriptions, dd))
	c.add(newBinding[models.Employer](reg.Employers, "Employer", AreaEmployers, dd))
	c.add(newBinding[models.Employee](reg.Employees, "User", AreaUsers, dd))
	c.add(newBinding[models.Volunteer](reg.Volunteers, "Volunteer", AreaUsers, dd))
	c.add(newBinding[models.Admin](reg.Admins, "Admin", AreaAdmins, dd))
	c.add(newBinding[models.AdminRole](reg.Roles, "Role", AreaAdmins, dd))
	return c
}

func (c *Console) add(b Binding) {
	c.bindings[b.Name()] = b
	c.order = append(c.order, b.Name())
}

// Binding looks a resource up by its URL name.
func (c *Console) Binding(name string) (Binding, bool) {
	b, ok := c.bindings[name]
	return b, ok
}

// Bindings returns every resource in menu order.
func (c *Console) Bindings() []Binding {
	out := make([]Binding, 0, len(c.order))
	for _, n := range c.order {
		out = append(out, c.bindings[n])
	}
	return out
}

// ResourceInfo describes one resource for the navigation menu.
type ResourceInfo struct {
	Name      string `json:"name"`
	Noun      string `json:"noun"`
	Area      Area   `json:"area"`
	Sequenced bool   `json:"sequenced"`
	CanManage bool   `json:"can_manage"`
}

// Visible lists the resources a is allowed to view, grouped by area.
func (c *Console) Visible(a Actor) []ResourceInfo {
	var out []ResourceInfo
	for _, b := range c.Bindings() {
		if a.Perms == nil || !a.Perms.Can(b.Area().View()) {
			continue
		}
		out = append(out, ResourceInfo{
			Name:      b.Name(),
			Noun:      b.Noun(),
			Area:      b.Area(),
			Sequenced: b.Sequenced(),
			CanManage: a.Perms.Can(b.Area().Manage()),
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return areaRank[out[i].Area] < areaRank[out[j].Area] })
	if out == nil {
		out = []ResourceInfo{}
	}
	return out
}

var areaRank = map[Area]int{
	AreaMasters:       0,
	AreaSubscriptions: 1,
	AreaEmployers:     2,
	AreaUsers:         3,
	AreaAdmins:        4,
}
