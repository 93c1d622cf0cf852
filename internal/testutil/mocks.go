package testutil

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/edudesk/edudesk-backend/internal/domain"
	"github.com/edudesk/edudesk-backend/internal/websocket"
	"github.com/shopspring/decimal"
)

// Repos bundles linked in-memory repositories so cross-entity reads
// (students of a group, resolved names) behave like the SQL joins.
type Repos struct {
	Branches    *MockBranchRepository
	Teachers    *MockTeacherRepository
	Students    *MockStudentRepository
	Groups      *MockGroupRepository
	Memberships *MockMembershipRepository
	Payments    *MockPaymentRepository
	Salaries    *MockSalaryPaymentRepository
	Sales       *MockProductSaleRepository
	Expenses    *MockExpenseRepository
	Tx          *MockTransactor
	Archive     *MockReportArchive
}

// NewMockRepos creates an empty, linked set of repositories
func NewMockRepos() *Repos {
	r := &Repos{
		Branches:    NewMockBranchRepository(),
		Teachers:    NewMockTeacherRepository(),
		Memberships: NewMockMembershipRepository(),
		Tx:          &MockTransactor{},
		Archive:     NewMockReportArchive(),
	}
	r.Students = NewMockStudentRepository(r.Memberships)
	r.Memberships.students = r.Students
	r.Groups = NewMockGroupRepository(r.Teachers, r.Memberships)
	r.Memberships.groups = r.Groups
	r.Payments = NewMockPaymentRepository(r.Students, r.Groups, r.Branches)
	r.Salaries = NewMockSalaryPaymentRepository(r.Teachers, r.Branches)
	r.Sales = NewMockProductSaleRepository(r.Students, r.Branches)
	r.Expenses = NewMockExpenseRepository()
	return r
}

// SetClock makes every repository stamp created_at from now
func (r *Repos) SetClock(now func() time.Time) {
	r.Students.Now = now
	r.Memberships.Now = now
	r.Payments.Now = now
	r.Salaries.Now = now
	r.Sales.Now = now
	r.Expenses.Now = now
}

func utcNow() time.Time { return time.Now().UTC() }

func sortNewest[T any](items []*T, key func(*T) (time.Time, int64)) []*T {
	sort.SliceStable(items, func(i, j int) bool {
		ti, idi := key(items[i])
		tj, idj := key(items[j])
		if !ti.Equal(tj) {
			return ti.After(tj)
		}
		return idi > idj
	})
	return items
}

func within(t, from, to time.Time) bool {
	return !t.Before(from) && !t.After(to)
}

// sumOf mirrors SQL SUM: invalid when nothing matched
func sumOf(amounts []decimal.Decimal) decimal.NullDecimal {
	if len(amounts) == 0 {
		return decimal.NullDecimal{}
	}
	total := decimal.Zero
	for _, a := range amounts {
		total = total.Add(a)
	}
	return decimal.NullDecimal{Decimal: total, Valid: true}
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

// MockBranchRepository is a mock implementation of domain.BranchRepository
type MockBranchRepository struct {
	Branches  map[int64]*domain.Branch
	GetByIDFn func(id int64) (*domain.Branch, error)
}

func NewMockBranchRepository() *MockBranchRepository {
	return &MockBranchRepository{Branches: make(map[int64]*domain.Branch)}
}

func (m *MockBranchRepository) GetByID(ctx context.Context, id int64) (*domain.Branch, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(id)
	}
	if b, ok := m.Branches[id]; ok {
		return b, nil
	}
	return nil, domain.ErrBranchNotFound
}

// AddBranch adds a branch to the mock repository (helper for tests)
func (m *MockBranchRepository) AddBranch(b *domain.Branch) {
	m.Branches[b.ID] = b
}

func (m *MockBranchRepository) name(id int64) string {
	if b, ok := m.Branches[id]; ok {
		return b.Name
	}
	return ""
}

// MockTeacherRepository is a mock implementation of domain.TeacherRepository
type MockTeacherRepository struct {
	Teachers map[int64]*domain.Teacher
}

func NewMockTeacherRepository() *MockTeacherRepository {
	return &MockTeacherRepository{Teachers: make(map[int64]*domain.Teacher)}
}

func (m *MockTeacherRepository) GetByID(ctx context.Context, id int64) (*domain.Teacher, error) {
	if t, ok := m.Teachers[id]; ok {
		return t, nil
	}
	return nil, domain.ErrTeacherNotFound
}

func (m *MockTeacherRepository) ListByBranch(ctx context.Context, branchID int64) ([]*domain.Teacher, error) {
	out := make([]*domain.Teacher, 0)
	for _, t := range m.Teachers {
		if t.BranchID == branchID {
			out = append(out, t)
		}
	}
	return sortNewest(out, func(t *domain.Teacher) (time.Time, int64) { return t.CreatedAt, t.ID }), nil
}

// AddTeacher adds a teacher to the mock repository (helper for tests)
func (m *MockTeacherRepository) AddTeacher(t *domain.Teacher) {
	m.Teachers[t.ID] = t
}

func (m *MockTeacherRepository) name(id *int64) string {
	if id == nil {
		return ""
	}
	if t, ok := m.Teachers[*id]; ok {
		return t.FullName()
	}
	return ""
}

// MockStudentRepository is a mock implementation of domain.StudentRepository
type MockStudentRepository struct {
	Students    map[int64]*domain.Student
	NextID      int64
	Now         func() time.Time
	CreateFn    func(student *domain.Student) (*domain.Student, error)
	memberships *MockMembershipRepository
}

func NewMockStudentRepository(memberships *MockMembershipRepository) *MockStudentRepository {
	return &MockStudentRepository{
		Students:    make(map[int64]*domain.Student),
		NextID:      1,
		Now:         utcNow,
		memberships: memberships,
	}
}

// AddStudent adds an active student to the mock repository (helper for tests)
func (m *MockStudentRepository) AddStudent(s *domain.Student) {
	if s.State == "" {
		s.State = domain.StudentActive
	}
	m.Students[s.ID] = s
	if s.ID >= m.NextID {
		m.NextID = s.ID + 1
	}
}

func (m *MockStudentRepository) GetByID(ctx context.Context, id int64, vis domain.Visibility) (*domain.Student, error) {
	if s, ok := m.Students[id]; ok && vis.Admits(s.State) {
		copied := *s
		return &copied, nil
	}
	return nil, domain.ErrStudentNotFound
}

func (m *MockStudentRepository) filter(keep func(*domain.Student) bool) []*domain.Student {
	out := make([]*domain.Student, 0)
	for _, s := range m.Students {
		if keep(s) {
			copied := *s
			out = append(out, &copied)
		}
	}
	return sortNewest(out, func(s *domain.Student) (time.Time, int64) { return s.CreatedAt, s.ID })
}

func (m *MockStudentRepository) ListByBranch(ctx context.Context, branchID int64, vis domain.Visibility) ([]*domain.Student, error) {
	return m.filter(func(s *domain.Student) bool { return s.BranchID == branchID && vis.Admits(s.State) }), nil
}

func (m *MockStudentRepository) ListByGroup(ctx context.Context, groupID int64, vis domain.Visibility) ([]*domain.Student, error) {
	return m.filter(func(s *domain.Student) bool {
		return vis.Admits(s.State) && m.memberships.has(groupID, s.ID)
	}), nil
}

func (m *MockStudentRepository) SearchByName(ctx context.Context, branchID int64, name string) ([]*domain.Student, error) {
	return m.filter(func(s *domain.Student) bool {
		return s.BranchID == branchID && s.State == domain.StudentActive && containsFold(s.FirstName+" "+s.LastName, name)
	}), nil
}

func (m *MockStudentRepository) ListRecent(ctx context.Context, branchID int64, limit int) ([]*domain.Student, error) {
	out := m.filter(func(s *domain.Student) bool { return s.BranchID == branchID && s.State == domain.StudentActive })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *MockStudentRepository) Create(ctx context.Context, student *domain.Student) (*domain.Student, error) {
	if m.CreateFn != nil {
		return m.CreateFn(student)
	}
	created := *student
	created.ID = m.NextID
	m.NextID++
	created.State = domain.StudentActive
	created.CreatedAt = m.Now()
	m.Students[created.ID] = &created
	out := created
	return &out, nil
}

func (m *MockStudentRepository) Update(ctx context.Context, student *domain.Student) (*domain.Student, error) {
	existing, ok := m.Students[student.ID]
	if !ok || existing.State != domain.StudentActive {
		return nil, domain.ErrStudentNotFound
	}
	updated := *student
	updated.State = existing.State
	updated.CreatedAt = existing.CreatedAt
	m.Students[student.ID] = &updated
	out := updated
	return &out, nil
}

func (m *MockStudentRepository) SoftDelete(ctx context.Context, id int64) error {
	s, ok := m.Students[id]
	if !ok || s.State != domain.StudentActive {
		return domain.ErrStudentNotFound
	}
	s.State = domain.StudentDeleted
	return nil
}

func (m *MockStudentRepository) fullName(id *int64) string {
	if id == nil {
		return ""
	}
	if s, ok := m.Students[*id]; ok {
		return s.FullName()
	}
	return ""
}

// MockGroupRepository is a mock implementation of domain.GroupRepository
type MockGroupRepository struct {
	Groups      map[int64]*domain.Group
	teachers    *MockTeacherRepository
	memberships *MockMembershipRepository
}

func NewMockGroupRepository(teachers *MockTeacherRepository, memberships *MockMembershipRepository) *MockGroupRepository {
	return &MockGroupRepository{
		Groups:      make(map[int64]*domain.Group),
		teachers:    teachers,
		memberships: memberships,
	}
}

// AddGroup adds a group to the mock repository (helper for tests)
func (m *MockGroupRepository) AddGroup(g *domain.Group) {
	m.Groups[g.ID] = g
}

func (m *MockGroupRepository) resolve(g *domain.Group) *domain.Group {
	out := *g
	out.TeacherName = m.teachers.name(g.TeacherID)
	out.StudentCount = m.memberships.activeCount(g.ID)
	return &out
}

func (m *MockGroupRepository) GetByID(ctx context.Context, id int64) (*domain.Group, error) {
	if g, ok := m.Groups[id]; ok {
		return m.resolve(g), nil
	}
	return nil, domain.ErrGroupNotFound
}

func (m *MockGroupRepository) filter(keep func(*domain.Group) bool) []*domain.Group {
	out := make([]*domain.Group, 0)
	for _, g := range m.Groups {
		if keep(g) {
			out = append(out, m.resolve(g))
		}
	}
	return sortNewest(out, func(g *domain.Group) (time.Time, int64) { return g.CreatedAt, g.ID })
}

func (m *MockGroupRepository) ListByBranch(ctx context.Context, branchID int64) ([]*domain.Group, error) {
	return m.filter(func(g *domain.Group) bool { return g.BranchID == branchID }), nil
}

func (m *MockGroupRepository) ListByTeacher(ctx context.Context, teacherID int64) ([]*domain.Group, error) {
	return m.filter(func(g *domain.Group) bool { return g.TeacherID != nil && *g.TeacherID == teacherID }), nil
}

func (m *MockGroupRepository) ListByStudent(ctx context.Context, studentID int64) ([]*domain.Group, error) {
	return m.filter(func(g *domain.Group) bool { return m.memberships.has(g.ID, studentID) }), nil
}

func (m *MockGroupRepository) name(id int64) string {
	if g, ok := m.Groups[id]; ok {
		return g.Name
	}
	return ""
}

// MockMembershipRepository is a mock implementation of domain.MembershipRepository
type MockMembershipRepository struct {
	Memberships []*domain.GroupMembership
	Now         func() time.Time
	AddFn       func(groupID, studentID int64) error
	students    *MockStudentRepository
	groups      *MockGroupRepository
}

func NewMockMembershipRepository() *MockMembershipRepository {
	return &MockMembershipRepository{
		Memberships: make([]*domain.GroupMembership, 0),
		Now:         utcNow,
	}
}

// Enroll adds a membership directly (helper for tests)
func (m *MockMembershipRepository) Enroll(groupID, studentID int64) {
	if !m.has(groupID, studentID) {
		m.Memberships = append(m.Memberships, &domain.GroupMembership{GroupID: groupID, StudentID: studentID, CreatedAt: m.Now()})
	}
}

func (m *MockMembershipRepository) has(groupID, studentID int64) bool {
	for _, gm := range m.Memberships {
		if gm.GroupID == groupID && gm.StudentID == studentID {
			return true
		}
	}
	return false
}

func (m *MockMembershipRepository) active(studentID int64) bool {
	if m.students == nil {
		return true
	}
	s, ok := m.students.Students[studentID]
	return ok && s.State == domain.StudentActive
}

func (m *MockMembershipRepository) activeCount(groupID int64) int {
	n := 0
	for _, gm := range m.Memberships {
		if gm.GroupID == groupID && m.active(gm.StudentID) {
			n++
		}
	}
	return n
}

func (m *MockMembershipRepository) ListByBranch(ctx context.Context, branchID int64) ([]*domain.GroupMembership, error) {
	out := make([]*domain.GroupMembership, 0)
	for _, gm := range m.Memberships {
		g, ok := m.groups.Groups[gm.GroupID]
		if ok && g.BranchID == branchID && m.active(gm.StudentID) {
			out = append(out, gm)
		}
	}
	return out, nil
}

func (m *MockMembershipRepository) ListByGroup(ctx context.Context, groupID int64) ([]*domain.GroupMembership, error) {
	out := make([]*domain.GroupMembership, 0)
	for _, gm := range m.Memberships {
		if gm.GroupID == groupID && m.active(gm.StudentID) {
			out = append(out, gm)
		}
	}
	return out, nil
}

func (m *MockMembershipRepository) ListGroupIDs(ctx context.Context, studentID int64) ([]int64, error) {
	ids := make([]int64, 0)
	for _, gm := range m.Memberships {
		if gm.StudentID == studentID {
			ids = append(ids, gm.GroupID)
		}
	}
	return ids, nil
}

func (m *MockMembershipRepository) IsMember(ctx context.Context, groupID, studentID int64) (bool, error) {
	return m.has(groupID, studentID), nil
}

func (m *MockMembershipRepository) Add(ctx context.Context, groupID, studentID int64) error {
	if m.AddFn != nil {
		return m.AddFn(groupID, studentID)
	}
	m.Enroll(groupID, studentID)
	return nil
}

func (m *MockMembershipRepository) Remove(ctx context.Context, groupID, studentID int64) error {
	kept := m.Memberships[:0]
	for _, gm := range m.Memberships {
		if gm.GroupID != groupID || gm.StudentID != studentID {
			kept = append(kept, gm)
		}
	}
	m.Memberships = kept
	return nil
}

func (m *MockMembershipRepository) RemoveAllForStudent(ctx context.Context, studentID int64) error {
	kept := m.Memberships[:0]
	for _, gm := range m.Memberships {
		if gm.StudentID != studentID {
			kept = append(kept, gm)
		}
	}
	m.Memberships = kept
	return nil
}

// MockPaymentRepository is a mock implementation of domain.PaymentRepository
type MockPaymentRepository struct {
	Payments map[int64]*domain.Payment
	NextID   int64
	Now      func() time.Time
	CreateFn func(payment *domain.Payment) (*domain.Payment, error)
	SumErr   error
	students *MockStudentRepository
	groups   *MockGroupRepository
	branches *MockBranchRepository
}

func NewMockPaymentRepository(students *MockStudentRepository, groups *MockGroupRepository, branches *MockBranchRepository) *MockPaymentRepository {
	return &MockPaymentRepository{
		Payments: make(map[int64]*domain.Payment),
		NextID:   1,
		Now:      utcNow,
		students: students,
		groups:   groups,
		branches: branches,
	}
}

// AddPayment stores a payment as-is (helper for tests)
func (m *MockPaymentRepository) AddPayment(p *domain.Payment) {
	if p.ID == 0 {
		p.ID = m.NextID
	}
	if p.ID >= m.NextID {
		m.NextID = p.ID + 1
	}
	if p.Status == "" {
		p.Status = domain.PaymentRecordCompleted
	}
	m.Payments[p.ID] = p
}

func (m *MockPaymentRepository) resolve(p *domain.Payment) *domain.Payment {
	out := *p
	out.StudentName = m.students.fullName(p.StudentID)
	out.GroupName = m.groups.name(p.GroupID)
	out.BranchName = m.branches.name(p.BranchID)
	return &out
}

func (m *MockPaymentRepository) Create(ctx context.Context, payment *domain.Payment) (*domain.Payment, error) {
	if m.CreateFn != nil {
		return m.CreateFn(payment)
	}
	created := *payment
	created.ID = m.NextID
	m.NextID++
	if created.Status == "" {
		created.Status = domain.PaymentRecordCompleted
	}
	created.CreatedAt = m.Now()
	m.Payments[created.ID] = &created
	return m.resolve(&created), nil
}

func (m *MockPaymentRepository) GetByID(ctx context.Context, id int64) (*domain.Payment, error) {
	if p, ok := m.Payments[id]; ok {
		return m.resolve(p), nil
	}
	return nil, domain.ErrPaymentNotFound
}

func (m *MockPaymentRepository) UpdateAmount(ctx context.Context, id int64, amount decimal.Decimal) (*domain.Payment, error) {
	p, ok := m.Payments[id]
	if !ok {
		return nil, domain.ErrPaymentNotFound
	}
	p.Amount = amount
	return m.resolve(p), nil
}

func (m *MockPaymentRepository) Delete(ctx context.Context, id int64) error {
	if _, ok := m.Payments[id]; !ok {
		return domain.ErrPaymentNotFound
	}
	delete(m.Payments, id)
	return nil
}

func (m *MockPaymentRepository) filter(keep func(*domain.Payment) bool) []*domain.Payment {
	out := make([]*domain.Payment, 0)
	for _, p := range m.Payments {
		if keep(p) {
			out = append(out, m.resolve(p))
		}
	}
	return sortNewest(out, func(p *domain.Payment) (time.Time, int64) { return p.CreatedAt, p.ID })
}

func (m *MockPaymentRepository) sum(keep func(*domain.Payment) bool) (decimal.NullDecimal, error) {
	if m.SumErr != nil {
		return decimal.NullDecimal{}, m.SumErr
	}
	amounts := make([]decimal.Decimal, 0)
	for _, p := range m.Payments {
		if keep(p) {
			amounts = append(amounts, p.Amount)
		}
	}
	return sumOf(amounts), nil
}

func isStudent(p *domain.Payment, studentID int64) bool {
	return p.StudentID != nil && *p.StudentID == studentID
}

func (m *MockPaymentRepository) ListByBranch(ctx context.Context, branchID int64) ([]*domain.Payment, error) {
	return m.filter(func(p *domain.Payment) bool { return p.BranchID == branchID }), nil
}

func (m *MockPaymentRepository) ListByCategory(ctx context.Context, branchID int64, category domain.PaymentCategory) ([]*domain.Payment, error) {
	return m.filter(func(p *domain.Payment) bool { return p.BranchID == branchID && p.Category == category }), nil
}

func (m *MockPaymentRepository) ListByCategoryAndPeriod(ctx context.Context, branchID int64, category domain.PaymentCategory, year, month int) ([]*domain.Payment, error) {
	return m.filter(func(p *domain.Payment) bool {
		return p.BranchID == branchID && p.Category == category && p.PaymentYear == year && p.PaymentMonth == month
	}), nil
}

func (m *MockPaymentRepository) ListByStudent(ctx context.Context, studentID int64) ([]*domain.Payment, error) {
	return m.filter(func(p *domain.Payment) bool { return isStudent(p, studentID) }), nil
}

func (m *MockPaymentRepository) ListByDateRange(ctx context.Context, branchID int64, from, to time.Time) ([]*domain.Payment, error) {
	return m.filter(func(p *domain.Payment) bool { return p.BranchID == branchID && within(p.CreatedAt, from, to) }), nil
}

func (m *MockPaymentRepository) ListByPeriod(ctx context.Context, branchID int64, year, month int) ([]*domain.Payment, error) {
	return m.filter(func(p *domain.Payment) bool {
		return p.BranchID == branchID && p.PaymentYear == year && p.PaymentMonth == month
	}), nil
}

func (m *MockPaymentRepository) SearchByStudentName(ctx context.Context, branchID int64, name string) ([]*domain.Payment, error) {
	return m.filter(func(p *domain.Payment) bool {
		full := m.students.fullName(p.StudentID)
		return p.BranchID == branchID && full != "" && containsFold(full, name)
	}), nil
}

func (m *MockPaymentRepository) ListRecent(ctx context.Context, branchID int64, limit int) ([]*domain.Payment, error) {
	out := m.filter(func(p *domain.Payment) bool { return p.BranchID == branchID })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *MockPaymentRepository) SumByStudentAndPeriod(ctx context.Context, studentID int64, year, month int) (decimal.NullDecimal, error) {
	return m.sum(func(p *domain.Payment) bool {
		return isStudent(p, studentID) && p.PaymentYear == year && p.PaymentMonth == month
	})
}

func (m *MockPaymentRepository) SumByStudentGroupAndPeriod(ctx context.Context, studentID, groupID int64, year, month int) (decimal.NullDecimal, error) {
	return m.sum(func(p *domain.Payment) bool {
		return isStudent(p, studentID) && p.GroupID == groupID && p.PaymentYear == year && p.PaymentMonth == month
	})
}

func (m *MockPaymentRepository) SumByStudentAndGroup(ctx context.Context, studentID, groupID int64) (decimal.NullDecimal, error) {
	return m.sum(func(p *domain.Payment) bool { return isStudent(p, studentID) && p.GroupID == groupID })
}

func (m *MockPaymentRepository) SumByBranchAndPeriod(ctx context.Context, branchID int64, year, month int) (decimal.NullDecimal, error) {
	return m.sum(func(p *domain.Payment) bool {
		return p.BranchID == branchID && p.PaymentYear == year && p.PaymentMonth == month
	})
}

func (m *MockPaymentRepository) SumByBranchAndDateRange(ctx context.Context, branchID int64, from, to time.Time) (decimal.NullDecimal, error) {
	return m.sum(func(p *domain.Payment) bool { return p.BranchID == branchID && within(p.CreatedAt, from, to) })
}

func (m *MockPaymentRepository) SumByBranch(ctx context.Context, branchID int64) (decimal.NullDecimal, error) {
	return m.sum(func(p *domain.Payment) bool { return p.BranchID == branchID })
}

func (m *MockPaymentRepository) LastPaymentDate(ctx context.Context, studentID int64) (*time.Time, error) {
	var last *time.Time
	for _, p := range m.Payments {
		if isStudent(p, studentID) && (last == nil || p.CreatedAt.After(*last)) {
			t := p.CreatedAt
			last = &t
		}
	}
	return last, nil
}

// MockSalaryPaymentRepository is a mock implementation of domain.SalaryPaymentRepository
type MockSalaryPaymentRepository struct {
	Payments map[int64]*domain.SalaryPayment
	NextID   int64
	Now      func() time.Time
	teachers *MockTeacherRepository
	branches *MockBranchRepository
}

func NewMockSalaryPaymentRepository(teachers *MockTeacherRepository, branches *MockBranchRepository) *MockSalaryPaymentRepository {
	return &MockSalaryPaymentRepository{
		Payments: make(map[int64]*domain.SalaryPayment),
		NextID:   1,
		Now:      utcNow,
		teachers: teachers,
		branches: branches,
	}
}

// AddSalaryPayment stores a salary payment as-is (helper for tests)
func (m *MockSalaryPaymentRepository) AddSalaryPayment(p *domain.SalaryPayment) {
	if p.ID == 0 {
		p.ID = m.NextID
	}
	if p.ID >= m.NextID {
		m.NextID = p.ID + 1
	}
	m.Payments[p.ID] = p
}

func (m *MockSalaryPaymentRepository) resolve(p *domain.SalaryPayment) *domain.SalaryPayment {
	out := *p
	id := p.TeacherID
	out.TeacherName = m.teachers.name(&id)
	out.BranchName = m.branches.name(p.BranchID)
	return &out
}

func (m *MockSalaryPaymentRepository) Create(ctx context.Context, payment *domain.SalaryPayment) (*domain.SalaryPayment, error) {
	created := *payment
	created.ID = m.NextID
	m.NextID++
	created.CreatedAt = m.Now()
	m.Payments[created.ID] = &created
	return m.resolve(&created), nil
}

func (m *MockSalaryPaymentRepository) GetByID(ctx context.Context, id int64) (*domain.SalaryPayment, error) {
	if p, ok := m.Payments[id]; ok {
		return m.resolve(p), nil
	}
	return nil, domain.ErrSalaryPaymentNotFound
}

func (m *MockSalaryPaymentRepository) Delete(ctx context.Context, id int64) error {
	if _, ok := m.Payments[id]; !ok {
		return domain.ErrSalaryPaymentNotFound
	}
	delete(m.Payments, id)
	return nil
}

func (m *MockSalaryPaymentRepository) filter(keep func(*domain.SalaryPayment) bool) []*domain.SalaryPayment {
	out := make([]*domain.SalaryPayment, 0)
	for _, p := range m.Payments {
		if keep(p) {
			out = append(out, m.resolve(p))
		}
	}
	return sortNewest(out, func(p *domain.SalaryPayment) (time.Time, int64) { return p.CreatedAt, p.ID })
}

func (m *MockSalaryPaymentRepository) sum(keep func(*domain.SalaryPayment) bool) (decimal.NullDecimal, error) {
	amounts := make([]decimal.Decimal, 0)
	for _, p := range m.Payments {
		if keep(p) {
			amounts = append(amounts, p.Amount)
		}
	}
	return sumOf(amounts), nil
}

func (m *MockSalaryPaymentRepository) ListByBranch(ctx context.Context, branchID int64) ([]*domain.SalaryPayment, error) {
	return m.filter(func(p *domain.SalaryPayment) bool { return p.BranchID == branchID }), nil
}

func (m *MockSalaryPaymentRepository) ListByTeacher(ctx context.Context, teacherID int64) ([]*domain.SalaryPayment, error) {
	return m.filter(func(p *domain.SalaryPayment) bool { return p.TeacherID == teacherID }), nil
}

func (m *MockSalaryPaymentRepository) ListByTeacherAndPeriod(ctx context.Context, teacherID int64, year, month int) ([]*domain.SalaryPayment, error) {
	return m.filter(func(p *domain.SalaryPayment) bool {
		return p.TeacherID == teacherID && p.Year == year && p.Month == month
	}), nil
}

func (m *MockSalaryPaymentRepository) SumByTeacherAndPeriod(ctx context.Context, teacherID int64, year, month int) (decimal.NullDecimal, error) {
	return m.sum(func(p *domain.SalaryPayment) bool {
		return p.TeacherID == teacherID && p.Year == year && p.Month == month
	})
}

func (m *MockSalaryPaymentRepository) PeriodStats(ctx context.Context, teacherID int64, year, month int) (*domain.SalaryPeriodStats, error) {
	stats := &domain.SalaryPeriodStats{}
	amounts := make([]decimal.Decimal, 0)
	for _, p := range m.Payments {
		if p.TeacherID != teacherID || p.Year != year || p.Month != month {
			continue
		}
		amounts = append(amounts, p.Amount)
		stats.Count++
		if stats.LastPaymentDate == nil || p.CreatedAt.After(*stats.LastPaymentDate) {
			t := p.CreatedAt
			stats.LastPaymentDate = &t
		}
	}
	stats.Total = sumOf(amounts)
	return stats, nil
}

func (m *MockSalaryPaymentRepository) DistinctPeriods(ctx context.Context, teacherID int64) ([]domain.Period, error) {
	seen := make(map[domain.Period]bool)
	periods := make([]domain.Period, 0)
	for _, p := range m.Payments {
		key := domain.Period{Year: p.Year, Month: p.Month}
		if p.TeacherID == teacherID && !seen[key] {
			seen[key] = true
			periods = append(periods, key)
		}
	}
	sort.Slice(periods, func(i, j int) bool {
		if periods[i].Year != periods[j].Year {
			return periods[i].Year > periods[j].Year
		}
		return periods[i].Month > periods[j].Month
	})
	return periods, nil
}

func (m *MockSalaryPaymentRepository) SumByBranchAndPeriod(ctx context.Context, branchID int64, year, month int) (decimal.NullDecimal, error) {
	return m.sum(func(p *domain.SalaryPayment) bool { return p.BranchID == branchID && p.Year == year && p.Month == month })
}

func (m *MockSalaryPaymentRepository) SumByBranchAndDateRange(ctx context.Context, branchID int64, from, to time.Time) (decimal.NullDecimal, error) {
	return m.sum(func(p *domain.SalaryPayment) bool { return p.BranchID == branchID && within(p.CreatedAt, from, to) })
}

func (m *MockSalaryPaymentRepository) SumByBranch(ctx context.Context, branchID int64) (decimal.NullDecimal, error) {
	return m.sum(func(p *domain.SalaryPayment) bool { return p.BranchID == branchID })
}

// MockProductSaleRepository is a mock implementation of domain.ProductSaleRepository
type MockProductSaleRepository struct {
	Sales    map[int64]*domain.ProductSale
	NextID   int64
	Now      func() time.Time
	students *MockStudentRepository
	branches *MockBranchRepository
}

func NewMockProductSaleRepository(students *MockStudentRepository, branches *MockBranchRepository) *MockProductSaleRepository {
	return &MockProductSaleRepository{
		Sales:    make(map[int64]*domain.ProductSale),
		NextID:   1,
		Now:      utcNow,
		students: students,
		branches: branches,
	}
}

// AddSale stores a sale as-is (helper for tests)
func (m *MockProductSaleRepository) AddSale(s *domain.ProductSale) {
	if s.ID == 0 {
		s.ID = m.NextID
	}
	if s.ID >= m.NextID {
		m.NextID = s.ID + 1
	}
	m.Sales[s.ID] = s
}

func (m *MockProductSaleRepository) resolve(s *domain.ProductSale) *domain.ProductSale {
	out := *s
	out.StudentName = m.students.fullName(s.StudentID)
	out.BranchName = m.branches.name(s.BranchID)
	return &out
}

func (m *MockProductSaleRepository) Create(ctx context.Context, sale *domain.ProductSale) (*domain.ProductSale, error) {
	created := *sale
	created.ID = m.NextID
	m.NextID++
	created.CreatedAt = m.Now()
	m.Sales[created.ID] = &created
	return m.resolve(&created), nil
}

func (m *MockProductSaleRepository) GetByID(ctx context.Context, id int64) (*domain.ProductSale, error) {
	if s, ok := m.Sales[id]; ok {
		return m.resolve(s), nil
	}
	return nil, domain.ErrProductSaleNotFound
}

func (m *MockProductSaleRepository) Update(ctx context.Context, sale *domain.ProductSale) (*domain.ProductSale, error) {
	existing, ok := m.Sales[sale.ID]
	if !ok {
		return nil, domain.ErrProductSaleNotFound
	}
	updated := *sale
	updated.CreatedAt = existing.CreatedAt
	m.Sales[sale.ID] = &updated
	return m.resolve(&updated), nil
}

func (m *MockProductSaleRepository) Delete(ctx context.Context, id int64) error {
	if _, ok := m.Sales[id]; !ok {
		return domain.ErrProductSaleNotFound
	}
	delete(m.Sales, id)
	return nil
}

func (m *MockProductSaleRepository) filter(keep func(*domain.ProductSale) bool) []*domain.ProductSale {
	out := make([]*domain.ProductSale, 0)
	for _, s := range m.Sales {
		if keep(s) {
			out = append(out, m.resolve(s))
		}
	}
	return sortNewest(out, func(s *domain.ProductSale) (time.Time, int64) { return s.CreatedAt, s.ID })
}

func (m *MockProductSaleRepository) sum(keep func(*domain.ProductSale) bool) (decimal.NullDecimal, error) {
	amounts := make([]decimal.Decimal, 0)
	for _, s := range m.Sales {
		if keep(s) {
			amounts = append(amounts, s.TotalAmount)
		}
	}
	return sumOf(amounts), nil
}

func (m *MockProductSaleRepository) ListByBranch(ctx context.Context, branchID int64) ([]*domain.ProductSale, error) {
	return m.filter(func(s *domain.ProductSale) bool { return s.BranchID == branchID }), nil
}

func (m *MockProductSaleRepository) ListByCategory(ctx context.Context, branchID int64, category domain.ProductCategory) ([]*domain.ProductSale, error) {
	return m.filter(func(s *domain.ProductSale) bool { return s.BranchID == branchID && s.Category == category }), nil
}

func (m *MockProductSaleRepository) ListByStudent(ctx context.Context, studentID int64) ([]*domain.ProductSale, error) {
	return m.filter(func(s *domain.ProductSale) bool { return s.StudentID != nil && *s.StudentID == studentID }), nil
}

func (m *MockProductSaleRepository) ListByDateRange(ctx context.Context, branchID int64, from, to time.Time) ([]*domain.ProductSale, error) {
	return m.filter(func(s *domain.ProductSale) bool { return s.BranchID == branchID && within(s.CreatedAt, from, to) }), nil
}

func (m *MockProductSaleRepository) SumByBranch(ctx context.Context, branchID int64) (decimal.NullDecimal, error) {
	return m.sum(func(s *domain.ProductSale) bool { return s.BranchID == branchID })
}

func (m *MockProductSaleRepository) SumByMonth(ctx context.Context, branchID int64, year, month int) (decimal.NullDecimal, error) {
	return m.sum(func(s *domain.ProductSale) bool {
		return s.BranchID == branchID && s.CreatedAt.Year() == year && int(s.CreatedAt.Month()) == month
	})
}

func (m *MockProductSaleRepository) SumByDateRange(ctx context.Context, branchID int64, from, to time.Time) (decimal.NullDecimal, error) {
	return m.sum(func(s *domain.ProductSale) bool { return s.BranchID == branchID && within(s.CreatedAt, from, to) })
}

func (m *MockProductSaleRepository) SumByCategory(ctx context.Context, branchID int64, category domain.ProductCategory) (decimal.NullDecimal, error) {
	return m.sum(func(s *domain.ProductSale) bool { return s.BranchID == branchID && s.Category == category })
}

// MockExpenseRepository is a mock implementation of domain.ExpenseRepository
type MockExpenseRepository struct {
	Expenses map[int64]*domain.Expense
	NextID   int64
	Now      func() time.Time
}

func NewMockExpenseRepository() *MockExpenseRepository {
	return &MockExpenseRepository{
		Expenses: make(map[int64]*domain.Expense),
		NextID:   1,
		Now:      utcNow,
	}
}

// AddExpense stores an expense as-is (helper for tests)
func (m *MockExpenseRepository) AddExpense(e *domain.Expense) {
	if e.ID == 0 {
		e.ID = m.NextID
	}
	if e.ID >= m.NextID {
		m.NextID = e.ID + 1
	}
	m.Expenses[e.ID] = e
}

func (m *MockExpenseRepository) Create(ctx context.Context, expense *domain.Expense) (*domain.Expense, error) {
	created := *expense
	created.ID = m.NextID
	m.NextID++
	created.CreatedAt = m.Now()
	m.Expenses[created.ID] = &created
	out := created
	return &out, nil
}

func (m *MockExpenseRepository) GetByID(ctx context.Context, id int64) (*domain.Expense, error) {
	if e, ok := m.Expenses[id]; ok {
		out := *e
		return &out, nil
	}
	return nil, domain.ErrExpenseNotFound
}

func (m *MockExpenseRepository) Delete(ctx context.Context, id int64) error {
	if _, ok := m.Expenses[id]; !ok {
		return domain.ErrExpenseNotFound
	}
	delete(m.Expenses, id)
	return nil
}

func (m *MockExpenseRepository) ListByBranch(ctx context.Context, branchID int64) ([]*domain.Expense, error) {
	out := make([]*domain.Expense, 0)
	for _, e := range m.Expenses {
		if e.BranchID == branchID {
			copied := *e
			out = append(out, &copied)
		}
	}
	return sortNewest(out, func(e *domain.Expense) (time.Time, int64) { return e.CreatedAt, e.ID }), nil
}

func (m *MockExpenseRepository) sum(keep func(*domain.Expense) bool) (decimal.NullDecimal, error) {
	amounts := make([]decimal.Decimal, 0)
	for _, e := range m.Expenses {
		if keep(e) {
			amounts = append(amounts, e.Amount)
		}
	}
	return sumOf(amounts), nil
}

func (m *MockExpenseRepository) SumByMonth(ctx context.Context, branchID int64, year, month int) (decimal.NullDecimal, error) {
	return m.sum(func(e *domain.Expense) bool {
		return e.BranchID == branchID && e.CreatedAt.Year() == year && int(e.CreatedAt.Month()) == month
	})
}

func (m *MockExpenseRepository) SumByDateRange(ctx context.Context, branchID int64, from, to time.Time) (decimal.NullDecimal, error) {
	return m.sum(func(e *domain.Expense) bool { return e.BranchID == branchID && within(e.CreatedAt, from, to) })
}

func (m *MockExpenseRepository) SumByBranch(ctx context.Context, branchID int64) (decimal.NullDecimal, error) {
	return m.sum(func(e *domain.Expense) bool { return e.BranchID == branchID })
}

// MockTransactor runs fn directly and counts calls
type MockTransactor struct {
	Calls int
	Err   error
}

func (m *MockTransactor) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	m.Calls++
	if m.Err != nil {
		return m.Err
	}
	return fn(ctx)
}

// MockReportArchive is a mock implementation of domain.ReportArchive
type MockReportArchive struct {
	Objects      map[string][]byte
	ContentTypes map[string]string
	PutErr       error
}

func NewMockReportArchive() *MockReportArchive {
	return &MockReportArchive{
		Objects:      make(map[string][]byte),
		ContentTypes: make(map[string]string),
	}
}

func (m *MockReportArchive) Put(ctx context.Context, key string, body []byte, contentType string) error {
	if m.PutErr != nil {
		return m.PutErr
	}
	m.Objects[key] = body
	m.ContentTypes[key] = contentType
	return nil
}

func (m *MockReportArchive) PresignedURL(ctx context.Context, key string, ttl time.Duration) (string, error) {
	if _, ok := m.Objects[key]; !ok {
		return "", fmt.Errorf("no object %q", key)
	}
	return fmt.Sprintf("https://archive.test/%s?ttl=%d", key, int(ttl.Seconds())), nil
}

// RecordingPublisher captures published events (implements websocket.EventPublisher)
type RecordingPublisher struct {
	Events []PublishedEvent
}

// PublishedEvent is one captured Publish call
type PublishedEvent struct {
	BranchID int64
	Type     string
}

func (r *RecordingPublisher) Publish(branchID int64, event websocket.Event) {
	r.Events = append(r.Events, PublishedEvent{BranchID: branchID, Type: event.Type})
}

// Types returns the captured event types in publish order
func (r *RecordingPublisher) Types() []string {
	out := make([]string, 0, len(r.Events))
	for _, e := range r.Events {
		out = append(out, e.Type)
	}
	return out
}
