package core

import (
	"context"
	"sort"
	"strings"
	"sync"

	"crewtrack.in/crewtrack/model"
)

// In-memory repository implementations. They back the handler and service
// tests and any environment that has no MySQL at hand.

type MemoryAttendanceRepository struct {
	mu      sync.Mutex
	nextID  uint
	records map[string]*model.AttendanceRecord // employeeID|date
}

func NewMemoryAttendanceRepository() *MemoryAttendanceRepository {
	return &MemoryAttendanceRepository{nextID: 1, records: map[string]*model.AttendanceRecord{}}
}

func attendanceKey(employeeID, date string) string {
	return employeeID + "|" + date
}

func (r *MemoryAttendanceRepository) Find(ctx context.Context, employeeID, date string) (*model.AttendanceRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[attendanceKey(employeeID, date)]
	if !ok {
		return nil, nil
	}
	cp := *rec
	return &cp, nil
}

func (r *MemoryAttendanceRepository) Insert(ctx context.Context, rec *model.AttendanceRecord) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := attendanceKey(rec.EmployeeID, rec.Date)
	if _, ok := r.records[key]; ok {
		return false, nil
	}
	rec.ID = r.nextID
	r.nextID++
	cp := *rec
	r.records[key] = &cp
	return true, nil
}

func (r *MemoryAttendanceRepository) Update(ctx context.Context, rec *model.AttendanceRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *rec
	r.records[attendanceKey(rec.EmployeeID, rec.Date)] = &cp
	return nil
}

func (r *MemoryAttendanceRepository) List(ctx context.Context, filter AttendanceFilter) ([]model.AttendanceRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.AttendanceRecord
	for _, rec := range r.records {
		if filter.Date != "" && rec.Date != filter.Date {
			continue
		}
		if filter.EmployeeID != "" && rec.EmployeeID != filter.EmployeeID {
			continue
		}
		out = append(out, *rec)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date < out[j].Date
		}
		return out[i].EmployeeID < out[j].EmployeeID
	})
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (r *MemoryAttendanceRepository) ClearPhoto(ctx context.Context, employeeID, date string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if rec, ok := r.records[attendanceKey(employeeID, date)]; ok {
		rec.PhotoReference = nil
	}
	return nil
}

type MemoryUserRepository struct {
	mu    sync.Mutex
	users map[string]*model.User // by ID
}

func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{users: map[string]*model.User{}}
}

func (r *MemoryUserRepository) FindByIdentifier(ctx context.Context, identifier string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == identifier || u.Email == identifier {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *MemoryUserRepository) FindByID(ctx context.Context, id string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (r *MemoryUserRepository) Create(ctx context.Context, user *model.User) error {
	return r.Save(ctx, user)
}

func (r *MemoryUserRepository) Save(ctx context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *user
	r.users[user.ID] = &cp
	return nil
}

type MemorySiteRepository struct {
	mu        sync.Mutex
	sites     map[uint]*model.Site
	employees map[uint][]model.Employee
}

func NewMemorySiteRepository() *MemorySiteRepository {
	return &MemorySiteRepository{sites: map[uint]*model.Site{}, employees: map[uint][]model.Employee{}}
}

func (r *MemorySiteRepository) AddSite(site model.Site) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sites[site.ID] = &site
}

func (r *MemorySiteRepository) AddEmployee(emp model.Employee) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.employees[emp.SiteID] = append(r.employees[emp.SiteID], emp)
}

func (r *MemorySiteRepository) FindByUsername(ctx context.Context, username string) (*model.Site, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.sites {
		if strings.EqualFold(s.Username, username) {
			cp := *s
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *MemorySiteRepository) FindByID(ctx context.Context, id uint) (*model.Site, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sites[id]
	if !ok {
		return nil, nil
	}
	cp := *s
	return &cp, nil
}

func (r *MemorySiteRepository) ListEmployees(ctx context.Context, siteID uint) ([]model.Employee, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]model.Employee(nil), r.employees[siteID]...), nil
}
