// Package repotest provides in-memory implementations of the repository
// interfaces for service and handler tests.
package repotest

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sghss/sghss-api/internal/models"
	"github.com/sghss/sghss-api/internal/repository"
)

// Store holds every table behind one lock so cross-table writes such as
// MedicalRecords.CreateForAppointment stay atomic.
type Store struct {
	mu           sync.Mutex
	users        map[uuid.UUID]models.User
	tokens       map[string]models.RefreshToken
	patients     map[uuid.UUID]models.Patient
	appointments map[uuid.UUID]models.Appointment
	records      map[uuid.UUID]models.MedicalRecord

	// Err, when set, is returned by every operation.
	Err error
}

func NewStore() *Store {
	return &Store{
		users:        make(map[uuid.UUID]models.User),
		tokens:       make(map[string]models.RefreshToken),
		patients:     make(map[uuid.UUID]models.Patient),
		appointments: make(map[uuid.UUID]models.Appointment),
		records:      make(map[uuid.UUID]models.MedicalRecord),
	}
}

func (s *Store) Users() *Users                   { return &Users{s} }
func (s *Store) RefreshTokens() *RefreshTokens   { return &RefreshTokens{s} }
func (s *Store) Patients() *Patients             { return &Patients{s} }
func (s *Store) Appointments() *Appointments     { return &Appointments{s} }
func (s *Store) MedicalRecords() *MedicalRecords { return &MedicalRecords{s} }

func (s *Store) lock() func() {
	s.mu.Lock()
	return s.mu.Unlock
}

func stamp(created, updated *time.Time) {
	now := time.Now()
	if created.IsZero() {
		*created = now
	}
	*updated = now
}

func page[T any](items []T, offset, limit int) []T {
	if offset >= len(items) {
		return []T{}
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}

type Users struct{ s *Store }

var _ repository.UserRepository = (*Users)(nil)

func (r *Users) Create(_ context.Context, u *models.User) error {
	defer r.s.lock()()
	if r.s.Err != nil {
		return r.s.Err
	}
	for _, existing := range r.s.users {
		if strings.EqualFold(existing.Username, u.Username) {
			return &repository.DuplicateError{Constraint: repository.ConstraintUserUsername}
		}
		if u.Email != nil && existing.Email != nil && strings.EqualFold(*existing.Email, *u.Email) {
			return &repository.DuplicateError{Constraint: repository.ConstraintUserEmail}
		}
	}
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	stamp(&u.CreatedAt, &u.UpdatedAt)
	r.s.users[u.ID] = *u
	return nil
}

func (r *Users) GetByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	defer r.s.lock()()
	if r.s.Err != nil {
		return nil, r.s.Err
	}
	u, ok := r.s.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

func (r *Users) GetByUsername(_ context.Context, username string) (*models.User, error) {
	defer r.s.lock()()
	if r.s.Err != nil {
		return nil, r.s.Err
	}
	for _, u := range r.s.users {
		if strings.EqualFold(u.Username, username) {
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *Users) EmailTaken(_ context.Context, email string) (bool, error) {
	defer r.s.lock()()
	if r.s.Err != nil {
		return false, r.s.Err
	}
	for _, u := range r.s.users {
		if u.Email != nil && strings.EqualFold(*u.Email, email) {
			return true, nil
		}
	}
	return false, nil
}

func (r *Users) UpdatePassword(_ context.Context, id uuid.UUID, hash string) error {
	defer r.s.lock()()
	if r.s.Err != nil {
		return r.s.Err
	}
	u, ok := r.s.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.Password = hash
	r.s.users[id] = u
	return nil
}

func (r *Users) ListByRole(_ context.Context, role models.Role) ([]models.User, error) {
	defer r.s.lock()()
	if r.s.Err != nil {
		return nil, r.s.Err
	}
	var out []models.User
	for _, u := range r.s.users {
		if u.Active && u.Role == role {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out, nil
}

// SetActive toggles a user account; there is no service operation for it.
func (r *Users) SetActive(id uuid.UUID, active bool) {
	defer r.s.lock()()
	u := r.s.users[id]
	u.Active = active
	r.s.users[id] = u
}

type RefreshTokens struct{ s *Store }

var _ repository.RefreshTokenRepository = (*RefreshTokens)(nil)

func (r *RefreshTokens) Create(_ context.Context, t *models.RefreshToken) error {
	defer r.s.lock()()
	if r.s.Err != nil {
		return r.s.Err
	}
	if _, ok := r.s.tokens[t.TokenHash]; ok {
		return &repository.DuplicateError{Constraint: repository.ConstraintRefreshTokenHash}
	}
	t.CreatedAt = time.Now()
	r.s.tokens[t.TokenHash] = *t
	return nil
}

func (r *RefreshTokens) GetActiveByHash(_ context.Context, hash string) (*models.RefreshToken, error) {
	defer r.s.lock()()
	if r.s.Err != nil {
		return nil, r.s.Err
	}
	t, ok := r.s.tokens[hash]
	if !ok || t.Revoked {
		return nil, repository.ErrNotFound
	}
	return &t, nil
}

func (r *RefreshTokens) Revoke(_ context.Context, hash string) error {
	defer r.s.lock()()
	if r.s.Err != nil {
		return r.s.Err
	}
	t, ok := r.s.tokens[hash]
	if !ok || t.Revoked {
		return repository.ErrNotFound
	}
	t.Revoked = true
	r.s.tokens[hash] = t
	return nil
}

type Patients struct{ s *Store }

var _ repository.PatientRepository = (*Patients)(nil)

func (r *Patients) Create(_ context.Context, p *models.Patient) error {
	defer r.s.lock()()
	if r.s.Err != nil {
		return r.s.Err
	}
	if p.Active && r.s.activeCPF(p.CPF, uuid.Nil) {
		return &repository.DuplicateError{Constraint: repository.ConstraintPatientActiveCPF}
	}
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	stamp(&p.CreatedAt, &p.UpdatedAt)
	r.s.patients[p.ID] = *p
	return nil
}

func (r *Patients) GetByID(_ context.Context, id uuid.UUID) (*models.Patient, error) {
	defer r.s.lock()()
	if r.s.Err != nil {
		return nil, r.s.Err
	}
	p, ok := r.s.patients[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &p, nil
}

func (s *Store) activeCPF(cpf string, exclude uuid.UUID) bool {
	for _, p := range s.patients {
		if p.Active && p.ID != exclude && strings.EqualFold(p.CPF, cpf) {
			return true
		}
	}
	return false
}

func (r *Patients) ActiveCPFTaken(_ context.Context, cpf string, exclude uuid.UUID) (bool, error) {
	defer r.s.lock()()
	if r.s.Err != nil {
		return false, r.s.Err
	}
	return r.s.activeCPF(cpf, exclude), nil
}

func (r *Patients) ActiveEmailTaken(_ context.Context, email string, exclude uuid.UUID) (bool, error) {
	defer r.s.lock()()
	if r.s.Err != nil {
		return false, r.s.Err
	}
	for _, p := range r.s.patients {
		if p.Active && p.ID != exclude && p.Email != nil && strings.EqualFold(*p.Email, email) {
			return true, nil
		}
	}
	return false, nil
}

func (r *Patients) Update(_ context.Context, p *models.Patient) error {
	defer r.s.lock()()
	if r.s.Err != nil {
		return r.s.Err
	}
	if _, ok := r.s.patients[p.ID]; !ok {
		return repository.ErrNotFound
	}
	if p.Active && r.s.activeCPF(p.CPF, p.ID) {
		return &repository.DuplicateError{Constraint: repository.ConstraintPatientActiveCPF}
	}
	stamp(&p.CreatedAt, &p.UpdatedAt)
	r.s.patients[p.ID] = *p
	return nil
}

func (r *Patients) SetActive(_ context.Context, id uuid.UUID, active bool) error {
	defer r.s.lock()()
	if r.s.Err != nil {
		return r.s.Err
	}
	p, ok := r.s.patients[id]
	if !ok {
		return repository.ErrNotFound
	}
	if active && !p.Active && r.s.activeCPF(p.CPF, id) {
		return &repository.DuplicateError{Constraint: repository.ConstraintPatientActiveCPF}
	}
	p.Active = active
	r.s.patients[id] = p
	return nil
}

func (r *Patients) Search(_ context.Context, f repository.PatientFilter) ([]models.Patient, int64, error) {
	defer r.s.lock()()
	if r.s.Err != nil {
		return nil, 0, r.s.Err
	}
	term := strings.ToLower(f.Search)
	var matched []models.Patient
	for _, p := range r.s.patients {
		if !p.Active {
			continue
		}
		if term != "" && !strings.Contains(strings.ToLower(p.Name), term) && !strings.Contains(p.CPF, term) {
			continue
		}
		matched = append(matched, p)
	}
	sort.Slice(matched, func(i, j int) bool {
		if matched[i].Name != matched[j].Name {
			return matched[i].Name < matched[j].Name
		}
		return matched[i].ID.String() < matched[j].ID.String()
	})
	return page(matched, f.Page.Offset(), f.Page.PerPage), int64(len(matched)), nil
}

type Appointments struct{ s *Store }

var _ repository.AppointmentRepository = (*Appointments)(nil)

func (r *Appointments) Create(_ context.Context, a *models.Appointment) error {
	defer r.s.lock()()
	if r.s.Err != nil {
		return r.s.Err
	}
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	stamp(&a.CreatedAt, &a.UpdatedAt)
	r.s.appointments[a.ID] = *a
	return nil
}

func (r *Appointments) GetByID(_ context.Context, id uuid.UUID) (*models.Appointment, error) {
	defer r.s.lock()()
	if r.s.Err != nil {
		return nil, r.s.Err
	}
	a, ok := r.s.appointments[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &a, nil
}

func (r *Appointments) List(_ context.Context, f repository.AppointmentFilter) ([]models.Appointment, int64, error) {
	defer r.s.lock()()
	if r.s.Err != nil {
		return nil, 0, r.s.Err
	}
	var matched []models.Appointment
	for _, a := range r.s.appointments {
		switch {
		case f.PatientID != nil && a.PatientID != *f.PatientID,
			f.ProviderID != nil && a.ProviderID != *f.ProviderID,
			f.Status != "" && string(a.Status) != f.Status,
			f.From != nil && a.ScheduledAt.Before(*f.From),
			f.Until != nil && !a.ScheduledAt.Before(*f.Until):
			continue
		}
		matched = append(matched, a)
	}
	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].ScheduledAt.Equal(matched[j].ScheduledAt) {
			return matched[i].ScheduledAt.Before(matched[j].ScheduledAt)
		}
		return matched[i].ID.String() < matched[j].ID.String()
	})
	return page(matched, f.Page.Offset(), f.Page.PerPage), int64(len(matched)), nil
}

func (r *Appointments) UpdateStatus(_ context.Context, id uuid.UUID, status models.AppointmentStatus) error {
	defer r.s.lock()()
	if r.s.Err != nil {
		return r.s.Err
	}
	return r.s.setStatus(id, status)
}

func (s *Store) setStatus(id uuid.UUID, status models.AppointmentStatus) error {
	a, ok := s.appointments[id]
	if !ok {
		return repository.ErrNotFound
	}
	a.Status = status
	a.UpdatedAt = time.Now()
	s.appointments[id] = a
	return nil
}

// Count reports the number of stored appointments.
func (r *Appointments) Count() int {
	defer r.s.lock()()
	return len(r.s.appointments)
}

type MedicalRecords struct{ s *Store }

var _ repository.MedicalRecordRepository = (*MedicalRecords)(nil)

func (r *MedicalRecords) GetByID(_ context.Context, id uuid.UUID) (*models.MedicalRecord, error) {
	defer r.s.lock()()
	if r.s.Err != nil {
		return nil, r.s.Err
	}
	rec, ok := r.s.records[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &rec, nil
}

func (r *MedicalRecords) GetByAppointment(_ context.Context, appointmentID uuid.UUID) (*models.MedicalRecord, error) {
	defer r.s.lock()()
	if r.s.Err != nil {
		return nil, r.s.Err
	}
	for _, rec := range r.s.records {
		if rec.AppointmentID == appointmentID {
			return &rec, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *MedicalRecords) CreateForAppointment(_ context.Context, rec *models.MedicalRecord) error {
	defer r.s.lock()()
	if r.s.Err != nil {
		return r.s.Err
	}
	for _, existing := range r.s.records {
		if existing.AppointmentID == rec.AppointmentID {
			return &repository.DuplicateError{Constraint: repository.ConstraintRecordAppointment}
		}
	}
	if err := r.s.setStatus(rec.AppointmentID, models.StatusCompleted); err != nil {
		return err
	}
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	stamp(&rec.CreatedAt, &rec.UpdatedAt)
	r.s.records[rec.ID] = *rec
	return nil
}

func (r *MedicalRecords) Update(_ context.Context, rec *models.MedicalRecord) error {
	defer r.s.lock()()
	if r.s.Err != nil {
		return r.s.Err
	}
	if _, ok := r.s.records[rec.ID]; !ok {
		return repository.ErrNotFound
	}
	stamp(&rec.CreatedAt, &rec.UpdatedAt)
	r.s.records[rec.ID] = *rec
	return nil
}
