package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/sghss/sghss-api/internal/apperr"
	"github.com/sghss/sghss-api/internal/dto"
)

func TestCreatePatient_NormalisesFields(t *testing.T) {
	env := newTestEnv(t)

	p, err := env.patients.Create(context.Background(), &dto.CreatePatientRequest{
		Name:      "  João da Silva ",
		CPF:       "123.456.789-01",
		BirthDate: "1985-04-12",
		Phone:     "(11) 98765-4321",
		Email:     "joao@example.com",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if p.ID == uuid.Nil {
		t.Error("expected an id")
	}
	if p.Name != "João da Silva" {
		t.Errorf("expected trimmed name, got %q", p.Name)
	}
	if p.CPF != "12345678901" {
		t.Errorf("expected digits-only cpf, got %q", p.CPF)
	}
	if p.Phone == nil || *p.Phone != "11987654321" {
		t.Errorf("unexpected phone %v", p.Phone)
	}
	if p.BirthDate == nil || time.Time(*p.BirthDate).Format(dateLayout) != "1985-04-12" {
		t.Errorf("unexpected birth date %v", p.BirthDate)
	}
	if p.Address != nil {
		t.Errorf("expected nil address, got %q", *p.Address)
	}
	if !p.Active {
		t.Error("expected new patient to be active")
	}
}

func TestCreatePatient_Validation(t *testing.T) {
	tests := []struct {
		name string
		req  dto.CreatePatientRequest
	}{
		{"missing name", dto.CreatePatientRequest{CPF: "12345678901"}},
		{"missing cpf", dto.CreatePatientRequest{Name: "Ana"}},
		{"short name", dto.CreatePatientRequest{Name: "A", CPF: "12345678901"}},
		{"short cpf", dto.CreatePatientRequest{Name: "Ana", CPF: "1234567890"}},
		{"long cpf", dto.CreatePatientRequest{Name: "Ana", CPF: "123456789012"}},
		{"letters in cpf", dto.CreatePatientRequest{Name: "Ana", CPF: "abc"}},
		{"bad email", dto.CreatePatientRequest{Name: "Ana", CPF: "12345678901", Email: "ana@"}},
		{"bad phone", dto.CreatePatientRequest{Name: "Ana", CPF: "12345678901", Phone: "12345"}},
		{"bad birth date", dto.CreatePatientRequest{Name: "Ana", CPF: "12345678901", BirthDate: "12/04/1985"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			_, err := env.patients.Create(context.Background(), &tt.req)
			if !errors.Is(err, apperr.ErrBadFormat) {
				t.Errorf("expected BadFormat, got %v", err)
			}
		})
	}
}

func TestCreatePatient_DuplicateCPF(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.seedPatient(t, "Ana", "12345678901")

	_, err := env.patients.Create(ctx, &dto.CreatePatientRequest{Name: "Outra Ana", CPF: "123.456.789-01"})
	if !errors.Is(err, apperr.ErrDuplicateIdentifier) {
		t.Fatalf("expected DuplicateIdentifier, got %v", err)
	}
	if apperr.HTTPStatus(err) != 409 {
		t.Errorf("expected 409, got %d", apperr.HTTPStatus(err))
	}
}

func TestCreatePatient_DuplicateEmail(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	if _, err := env.patients.Create(ctx, &dto.CreatePatientRequest{Name: "Ana", CPF: "11111111111", Email: "ana@example.com"}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	_, err := env.patients.Create(ctx, &dto.CreatePatientRequest{Name: "Bia", CPF: "22222222222", Email: "ANA@example.com"})
	if !errors.Is(err, apperr.ErrDuplicateEmail) {
		t.Errorf("expected DuplicateEmail, got %v", err)
	}
}

func TestCreatePatient_CPFReusableAfterDeactivation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	old := env.seedPatient(t, "Ana", "12345678901")

	if err := env.patients.Deactivate(ctx, old.ID); err != nil {
		t.Fatalf("Deactivate: %v", err)
	}
	p, err := env.patients.Create(ctx, &dto.CreatePatientRequest{Name: "Ana Nova", CPF: "12345678901"})
	if err != nil {
		t.Fatalf("expected cpf of an inactive patient to be reusable: %v", err)
	}
	if p.ID == old.ID {
		t.Error("expected a new patient id")
	}
}

func TestGetPatient(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	p := env.seedPatient(t, "Ana", "12345678901")
	if err := env.patients.Deactivate(ctx, p.ID); err != nil {
		t.Fatalf("Deactivate: %v", err)
	}

	got, err := env.patients.Get(ctx, p.ID)
	if err != nil {
		t.Fatalf("expected inactive patient to be readable: %v", err)
	}
	if got.Active {
		t.Error("expected patient to be inactive")
	}

	_, err = env.patients.Get(ctx, uuid.New())
	if !errors.Is(err, apperr.ErrPatientNotFound) {
		t.Errorf("expected NotFound.Patient, got %v", err)
	}
}

func TestListPatients_Pagination(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	for i := 0; i < 25; i++ {
		env.seedPatient(t, fmt.Sprintf("Paciente %02d", i), fmt.Sprintf("%011d", i))
	}

	patients, meta, err := env.patients.List(ctx, 3, 10, "")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(patients) != 5 {
		t.Fatalf("expected 5 patients on page 3, got %d", len(patients))
	}
	if patients[0].Name != "Paciente 20" {
		t.Errorf("expected ordering by name, first is %q", patients[0].Name)
	}
	if meta.Total != 25 || meta.Pages != 3 || meta.HasNext || !meta.HasPrev {
		t.Errorf("unexpected meta %+v", meta)
	}

	_, meta, err = env.patients.List(ctx, 0, 500, "")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if meta.Page != 1 || meta.PerPage != 100 {
		t.Errorf("expected page 1 and per_page clamped to 100, got %d/%d", meta.Page, meta.PerPage)
	}

	patients, meta, err = env.patients.List(ctx, 9, 10, "")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(patients) != 0 || meta.Total != 25 {
		t.Errorf("expected empty page past the end, got %d (total %d)", len(patients), meta.Total)
	}
}

func TestListPatients_SearchAndActiveOnly(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.seedPatient(t, "Maria Souza", "11111111111")
	env.seedPatient(t, "José Santos", "22222222222")
	gone := env.seedPatient(t, "Mariana Lima", "33333333333")
	if err := env.patients.Deactivate(ctx, gone.ID); err != nil {
		t.Fatalf("Deactivate: %v", err)
	}

	tests := []struct {
		search string
		want   int
	}{
		{"", 2},
		{"mari", 1},
		{"SANTOS", 1},
		{"2222", 1},
		{"nobody", 0},
	}
	for _, tt := range tests {
		patients, meta, err := env.patients.List(ctx, 1, 10, tt.search)
		if err != nil {
			t.Fatalf("List(%q): %v", tt.search, err)
		}
		if len(patients) != tt.want || meta.Total != int64(tt.want) {
			t.Errorf("List(%q): expected %d, got %d (total %d)", tt.search, tt.want, len(patients), meta.Total)
		}
		for _, p := range patients {
			if !p.Active {
				t.Errorf("List(%q) returned inactive patient %s", tt.search, p.Name)
			}
		}
	}
}

func TestUpdatePatient_Partial(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	p, err := env.patients.Create(ctx, &dto.CreatePatientRequest{Name: "Ana", CPF: "12345678901", Address: "Rua A, 1"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	updated, err := env.patients.Update(ctx, p.ID, &dto.UpdatePatientRequest{Phone: strPtr("11 3333-4444")})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Phone == nil || *updated.Phone != "1133334444" {
		t.Errorf("unexpected phone %v", updated.Phone)
	}
	if updated.Name != "Ana" || updated.CPF != "12345678901" {
		t.Errorf("expected untouched fields to be kept, got %q %q", updated.Name, updated.CPF)
	}
	if updated.Address == nil || *updated.Address != "Rua A, 1" {
		t.Errorf("expected address to be kept, got %v", updated.Address)
	}

	cleared, err := env.patients.Update(ctx, p.ID, &dto.UpdatePatientRequest{Address: strPtr("")})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if cleared.Address != nil {
		t.Errorf("expected address to be cleared, got %q", *cleared.Address)
	}

	stored, _ := env.patients.Get(ctx, p.ID)
	if stored.Phone == nil || *stored.Phone != "1133334444" {
		t.Error("expected update to be persisted")
	}
}

func TestUpdatePatient_Errors(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	ana := env.seedPatient(t, "Ana", "11111111111")
	env.seedPatient(t, "Bia", "22222222222")
	gone := env.seedPatient(t, "Caio", "33333333333")
	if err := env.patients.Deactivate(ctx, gone.ID); err != nil {
		t.Fatalf("Deactivate: %v", err)
	}

	_, err := env.patients.Update(ctx, ana.ID, &dto.UpdatePatientRequest{CPF: strPtr("222.222.222-22")})
	if !errors.Is(err, apperr.ErrDuplicateIdentifier) {
		t.Errorf("expected DuplicateIdentifier, got %v", err)
	}

	if _, err := env.patients.Update(ctx, ana.ID, &dto.UpdatePatientRequest{CPF: strPtr("11111111111")}); err != nil {
		t.Errorf("expected keeping own cpf to succeed: %v", err)
	}

	_, err = env.patients.Update(ctx, ana.ID, &dto.UpdatePatientRequest{Name: strPtr(" ")})
	if !errors.Is(err, apperr.ErrBadFormat) {
		t.Errorf("expected BadFormat, got %v", err)
	}

	_, err = env.patients.Update(ctx, gone.ID, &dto.UpdatePatientRequest{Name: strPtr("Caio Novo")})
	if !errors.Is(err, apperr.ErrPatientNotFound) {
		t.Errorf("expected NotFound for inactive patient, got %v", err)
	}

	_, err = env.patients.Update(ctx, uuid.New(), &dto.UpdatePatientRequest{})
	if !errors.Is(err, apperr.ErrPatientNotFound) {
		t.Errorf("expected NotFound, got %v", err)
	}
}

func TestDeactivatePatient(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	p := env.seedPatient(t, "Ana", "12345678901")

	if err := env.patients.Deactivate(ctx, p.ID); err != nil {
		t.Fatalf("Deactivate: %v", err)
	}
	if err := env.patients.Deactivate(ctx, p.ID); err != nil {
		t.Errorf("expected second Deactivate to succeed, got %v", err)
	}

	got, err := env.patients.Get(ctx, p.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Active {
		t.Error("expected patient to be inactive")
	}

	patients, _, err := env.patients.List(ctx, 1, 10, "")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(patients) != 0 {
		t.Errorf("expected deactivated patient to be hidden, got %d", len(patients))
	}

	if err := env.patients.Deactivate(ctx, uuid.New()); !errors.Is(err, apperr.ErrPatientNotFound) {
		t.Errorf("expected NotFound, got %v", err)
	}
}

func TestReactivatePatient(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	p := env.seedPatient(t, "Ana", "12345678901")

	if _, err := env.patients.Reactivate(ctx, p.ID); !errors.Is(err, apperr.ErrAlreadyActive) {
		t.Errorf("expected AlreadyActive, got %v", err)
	}

	if err := env.patients.Deactivate(ctx, p.ID); err != nil {
		t.Fatalf("Deactivate: %v", err)
	}
	got, err := env.patients.Reactivate(ctx, p.ID)
	if err != nil {
		t.Fatalf("Reactivate: %v", err)
	}
	if !got.Active {
		t.Error("expected patient to be active")
	}

	if _, err := env.patients.Reactivate(ctx, uuid.New()); !errors.Is(err, apperr.ErrPatientNotFound) {
		t.Errorf("expected NotFound, got %v", err)
	}
}

func TestReactivatePatient_CPFTaken(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	old := env.seedPatient(t, "Ana", "12345678901")
	if err := env.patients.Deactivate(ctx, old.ID); err != nil {
		t.Fatalf("Deactivate: %v", err)
	}
	env.seedPatient(t, "Ana Nova", "12345678901")

	_, err := env.patients.Reactivate(ctx, old.ID)
	if !errors.Is(err, apperr.ErrDuplicateIdentifier) {
		t.Errorf("expected DuplicateIdentifier, got %v", err)
	}
}

func TestPatientService_StoreFailure(t *testing.T) {
	env := newTestEnv(t)
	env.store.Err = errBoom

	_, _, err := env.patients.List(context.Background(), 1, 10, "")
	if !errors.Is(err, apperr.ErrStore) {
		t.Errorf("expected StoreError, got %v", err)
	}
	if apperr.HTTPStatus(err) != 500 {
		t.Errorf("expected 500, got %d", apperr.HTTPStatus(err))
	}
}
