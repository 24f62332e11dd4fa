package models

import (
	"strings"
	"time"
)

// Record is the common surface of every marketplace row the console lists.
type Record interface {
	RecordID() int64
	Active() bool
	SearchText() string
	SortLabel() string
}

// Sequenced rows carry a manual display order. WithSeq returns a copy of
// the row with its sequence replaced; the receiver is left untouched.
type Sequenced[T any] interface {
	Record
	Seq() (int, bool)
	WithSeq(n int) T
}

// LabelPair points at one English/Hindi field pair of a record.
type LabelPair struct {
	Field   string
	English string
	Hindi   *string
}

// Bilingual is implemented by pointer receivers so translation can fill
// the Hindi side in place.
type Bilingual interface {
	LabelPairs() []LabelPair
}

// Normalizer trims and defaults a freshly decoded record in place.
type Normalizer interface {
	Normalize()
}

type Entity struct {
	ID        int64      `json:"id,omitempty"`
	IsActive  bool       `json:"is_active"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

func (e Entity) RecordID() int64 { return e.ID }

func (e Entity) Active() bool { return e.IsActive }

// Master is the shared shape of reference rows: an entity plus a nullable
// sequence the console is the sole author of.
type Master struct {
	Entity
	Sequence *int `json:"sequence"`
}

func (m Master) Seq() (int, bool) {
	if m.Sequence == nil {
		return 0, false
	}
	return *m.Sequence, true
}

func (m *Master) setSeq(n int) {
	v := n
	m.Sequence = &v
}

func joinSearch(parts ...string) string {
	return strings.ToLower(strings.Join(parts, " "))
}

/* ------------------ Master data ------------------ */

type State struct {
	Master
	NameEnglish string `json:"name_english" validate:"required"`
	NameHindi   string `json:"name_hindi"`
	Code        string `json:"state_code,omitempty"`
}

func (s State) SearchText() string  { return joinSearch(s.NameEnglish, s.NameHindi, s.Code) }
func (s State) SortLabel() string   { return s.NameEnglish }
func (s State) WithSeq(n int) State { s.setSeq(n); return s }
func (s *State) LabelPairs() []LabelPair {
	return []LabelPair{{Field: "name", English: s.NameEnglish, Hindi: &s.NameHindi}}
}
func (s *State) Normalize() {
	s.NameEnglish = strings.TrimSpace(s.NameEnglish)
	s.NameHindi = strings.TrimSpace(s.NameHindi)
	s.Code = strings.ToUpper(strings.TrimSpace(s.Code))
}

type City struct {
	Master
	StateID     int64  `json:"state_id" validate:"required"`
	StateName   string `json:"state_name,omitempty"`
	NameEnglish string `json:"name_english" validate:"required"`
	NameHindi   string `json:"name_hindi"`
}

func (c City) SearchText() string { return joinSearch(c.NameEnglish, c.NameHindi, c.StateName) }
func (c City) SortLabel() string  { return c.NameEnglish }
func (c City) WithSeq(n int) City { c.setSeq(n); return c }
func (c *City) LabelPairs() []LabelPair {
	return []LabelPair{{Field: "name", English: c.NameEnglish, Hindi: &c.NameHindi}}
}
func (c *City) Normalize() {
	c.NameEnglish = strings.TrimSpace(c.NameEnglish)
	c.NameHindi = strings.TrimSpace(c.NameHindi)
}

type BusinessCategory struct {
	Master
	NameEnglish string `json:"name_english" validate:"required"`
	NameHindi   string `json:"name_hindi"`
	Icon        string `json:"icon,omitempty"`
}

func (b BusinessCategory) SearchText() string { return joinSearch(b.NameEnglish, b.NameHindi) }
func (b BusinessCategory) SortLabel() string  { return b.NameEnglish }
func (b BusinessCategory) WithSeq(n int) BusinessCategory {
	b.setSeq(n)
	return b
}
func (b *BusinessCategory) LabelPairs() []LabelPair {
	return []LabelPair{{Field: "name", English: b.NameEnglish, Hindi: &b.NameHindi}}
}

type Distance struct {
	Master
	Value        int    `json:"value" validate:"gt=0"`
	TitleEnglish string `json:"title_english" validate:"required"`
	TitleHindi   string `json:"title_hindi"`
}

func (d Distance) SearchText() string     { return joinSearch(d.TitleEnglish, d.TitleHindi) }
func (d Distance) SortLabel() string      { return d.TitleEnglish }
func (d Distance) WithSeq(n int) Distance { d.setSeq(n); return d }
func (d *Distance) LabelPairs() []LabelPair {
	return []LabelPair{{Field: "title", English: d.TitleEnglish, Hindi: &d.TitleHindi}}
}

type SalaryRange struct {
	Master
	MinSalary    int    `json:"min_salary" validate:"gte=0"`
	MaxSalary    int    `json:"max_salary" validate:"gtefield=MinSalary"`
	LabelEnglish string `json:"label_english" validate:"required"`
	LabelHindi   string `json:"label_hindi"`
}

func (s SalaryRange) SearchText() string        { return joinSearch(s.LabelEnglish, s.LabelHindi) }
func (s SalaryRange) SortLabel() string         { return s.LabelEnglish }
func (s SalaryRange) WithSeq(n int) SalaryRange { s.setSeq(n); return s }
func (s *SalaryRange) LabelPairs() []LabelPair {
	return []LabelPair{{Field: "label", English: s.LabelEnglish, Hindi: &s.LabelHindi}}
}

type SalaryType struct {
	Master
	NameEnglish string `json:"name_english" validate:"required"`
	NameHindi   string `json:"name_hindi"`
}

func (s SalaryType) SearchText() string       { return joinSearch(s.NameEnglish, s.NameHindi) }
func (s SalaryType) SortLabel() string        { return s.NameEnglish }
func (s SalaryType) WithSeq(n int) SalaryType { s.setSeq(n); return s }
func (s *SalaryType) LabelPairs() []LabelPair {
	return []LabelPair{{Field: "name", English: s.NameEnglish, Hindi: &s.NameHindi}}
}

type ReportReason struct {
	Master
	ReasonEnglish string `json:"reason_english" validate:"required"`
	ReasonHindi   string `json:"reason_hindi"`
	AppliesTo     string `json:"applies_to,omitempty" validate:"omitempty,oneof=job employer employee"`
}

func (r ReportReason) SearchText() string         { return joinSearch(r.ReasonEnglish, r.ReasonHindi, r.AppliesTo) }
func (r ReportReason) SortLabel() string          { return r.ReasonEnglish }
func (r ReportReason) WithSeq(n int) ReportReason { r.setSeq(n); return r }
func (r *ReportReason) LabelPairs() []LabelPair {
	return []LabelPair{{Field: "reason", English: r.ReasonEnglish, Hindi: &r.ReasonHindi}}
}

/* ------------------ Subscriptions ------------------ */

type SubscriptionPlan struct {
	Master
	NameEnglish        string  `json:"name_english" validate:"required"`
	NameHindi          string  `json:"name_hindi"`
	DescriptionEnglish string  `json:"description_english"`
	DescriptionHindi   string  `json:"description_hindi"`
	Price              float64 `json:"price" validate:"gte=0"`
	DurationDays       int     `json:"duration_days" validate:"gt=0"`
	PlanFor            string  `json:"plan_for" validate:"required,oneof=employer employee"`
}

func (p SubscriptionPlan) SearchText() string { return joinSearch(p.NameEnglish, p.NameHindi, p.PlanFor) }
func (p SubscriptionPlan) SortLabel() string  { return p.NameEnglish }
func (p SubscriptionPlan) WithSeq(n int) SubscriptionPlan {
	p.setSeq(n)
	return p
}
func (p *SubscriptionPlan) LabelPairs() []LabelPair {
	return []LabelPair{
		{Field: "name", English: p.NameEnglish, Hindi: &p.NameHindi},
		{Field: "description", English: p.DescriptionEnglish, Hindi: &p.DescriptionHindi},
	}
}

type PlanBenefit struct {
	Master
	PlanID         int64  `json:"plan_id" validate:"required"`
	BenefitEnglish string `json:"benefit_english" validate:"required"`
	BenefitHindi   string `json:"benefit_hindi"`
}

func (b PlanBenefit) SearchText() string        { return joinSearch(b.BenefitEnglish, b.BenefitHindi) }
func (b PlanBenefit) SortLabel() string         { return b.BenefitEnglish }
func (b PlanBenefit) WithSeq(n int) PlanBenefit { b.setSeq(n); return b }
func (b *PlanBenefit) LabelPairs() []LabelPair {
	return []LabelPair{{Field: "benefit", English: b.BenefitEnglish, Hindi: &b.BenefitHindi}}
}

/* ------------------ People ------------------ */

type Volunteer struct {
	Entity
	Name         string `json:"name" validate:"required"`
	Mobile       string `json:"mobile" validate:"required,len=10,numeric"`
	Email        string `json:"email,omitempty" validate:"omitempty,email"`
	CityID       int64  `json:"city_id,omitempty"`
	ReferralCode string `json:"referral_code,omitempty"`
}

func (v Volunteer) SearchText() string { return joinSearch(v.Name, v.Mobile, v.Email, v.ReferralCode) }
func (v Volunteer) SortLabel() string  { return v.Name }
func (v *Volunteer) Normalize() {
	v.Name = strings.TrimSpace(v.Name)
	v.Mobile = strings.TrimSpace(v.Mobile)
	v.Email = strings.ToLower(strings.TrimSpace(v.Email))
}

type Employer struct {
	Entity
	Name         string `json:"name" validate:"required"`
	CompanyName  string `json:"company_name"`
	Mobile       string `json:"mobile" validate:"required,len=10,numeric"`
	Email        string `json:"email,omitempty" validate:"omitempty,email"`
	CategoryID   int64  `json:"category_id,omitempty"`
	CategoryName string `json:"category_name,omitempty"`
	CityID       int64  `json:"city_id,omitempty"`
	CityName     string `json:"city_name,omitempty"`
	StateName    string `json:"state_name,omitempty"`
	Address      string `json:"address,omitempty"`
	IsVerified   bool   `json:"is_verified"`
}

func (e Employer) SearchText() string {
	return joinSearch(e.Name, e.CompanyName, e.Mobile, e.Email, e.CityName)
}
func (e Employer) SortLabel() string { return e.Name }
func (e *Employer) Normalize() {
	e.Name = strings.TrimSpace(e.Name)
	e.CompanyName = strings.TrimSpace(e.CompanyName)
	e.Mobile = strings.TrimSpace(e.Mobile)
	e.Email = strings.ToLower(strings.TrimSpace(e.Email))
	e.Address = strings.TrimSpace(e.Address)
}

// Employee is a job seeker account ("user" on the marketplace).
type Employee struct {
	Entity
	Name            string `json:"name" validate:"required"`
	Mobile          string `json:"mobile" validate:"required,len=10,numeric"`
	Gender          string `json:"gender,omitempty" validate:"omitempty,oneof=male female other"`
	DateOfBirth     string `json:"date_of_birth,omitempty"`
	CityName        string `json:"city_name,omitempty"`
	CategoryName    string `json:"category_name,omitempty"`
	ExperienceYears int    `json:"experience_years" validate:"gte=0"`
}

func (e Employee) SearchText() string { return joinSearch(e.Name, e.Mobile, e.CityName, e.CategoryName) }
func (e Employee) SortLabel() string  { return e.Name }
func (e *Employee) Normalize() {
	e.Name = strings.TrimSpace(e.Name)
	e.Mobile = strings.TrimSpace(e.Mobile)
	e.Gender = strings.ToLower(strings.TrimSpace(e.Gender))
}

type Admin struct {
	Entity
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Mobile   string `json:"mobile,omitempty" validate:"omitempty,len=10,numeric"`
	RoleID   int64  `json:"role_id" validate:"required"`
	RoleName string `json:"role_name,omitempty"`
	Password string `json:"password,omitempty"`
}

func (a Admin) SearchText() string { return joinSearch(a.Name, a.Email, a.Mobile, a.RoleName) }
func (a Admin) SortLabel() string  { return a.Name }
func (a *Admin) Normalize() {
	a.Name = strings.TrimSpace(a.Name)
	a.Email = strings.ToLower(strings.TrimSpace(a.Email))
}

type AdminRole struct {
	Entity
	Name        string   `json:"name" validate:"required"`
	Permissions []string `json:"permissions"`
}

func (r AdminRole) SearchText() string { return joinSearch(append([]string{r.Name}, r.Permissions...)...) }
func (r AdminRole) SortLabel() string  { return r.Name }
func (r *AdminRole) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	if r.Permissions == nil {
		r.Permissions = []string{}
	}
}
