package billing

import (
	"context"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jhoicas/InvoiceFlow-api/internal/application/dto"
	"github.com/jhoicas/InvoiceFlow-api/internal/domain"
	"github.com/jhoicas/InvoiceFlow-api/internal/domain/entity"
	"github.com/jhoicas/InvoiceFlow-api/internal/domain/repository"
)

// CompanyUseCase datos del emisor: nombre y contacto que salen en el PDF y en los correos.
type CompanyUseCase struct {
	repo repository.CompanyRepository
	now  func() time.Time
	log  zerolog.Logger
}

func NewCompanyUseCase(repo repository.CompanyRepository, opts ...Option) *CompanyUseCase {
	o := newOptions(opts)
	return &CompanyUseCase{repo: repo, now: o.now, log: o.log}
}

// Create registra una empresa. Nombre obligatorio; el email, si viene, debe ser válido.
func (uc *CompanyUseCase) Create(ctx context.Context, in dto.CreateCompanyRequest) (*dto.CompanyResponse, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: nombre obligatorio", domain.ErrInvalidInput)
	}
	email, err := companyEmail(in.Email)
	if err != nil {
		return nil, err
	}
	now := uc.now()
	company := &entity.Company{
		ID:        uuid.New().String(),
		Name:      name,
		Address:   strings.TrimSpace(in.Address),
		Phone:     strings.TrimSpace(in.Phone),
		Email:     email,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.repo.Create(ctx, company); err != nil {
		return nil, err
	}
	uc.log.Info().Str("company_id", company.ID).Str("name", name).Msg("empresa registrada")
	return toCompanyResponse(company), nil
}

// Get devuelve la empresa del token.
func (uc *CompanyUseCase) Get(ctx context.Context, id string) (*dto.CompanyResponse, error) {
	company, err := uc.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return toCompanyResponse(company), nil
}

// Update aplica los campos presentes en in.
func (uc *CompanyUseCase) Update(ctx context.Context, id string, in dto.UpdateCompanyRequest) (*dto.CompanyResponse, error) {
	company, err := uc.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: nombre obligatorio", domain.ErrInvalidInput)
		}
		company.Name = name
	}
	if in.Email != nil {
		if company.Email, err = companyEmail(*in.Email); err != nil {
			return nil, err
		}
	}
	if in.Address != nil {
		company.Address = strings.TrimSpace(*in.Address)
	}
	if in.Phone != nil {
		company.Phone = strings.TrimSpace(*in.Phone)
	}
	company.UpdatedAt = uc.now()
	if err := uc.repo.Update(ctx, company); err != nil {
		return nil, err
	}
	return toCompanyResponse(company), nil
}

// List todas las empresas, por nombre. Solo la usa la CLI.
func (uc *CompanyUseCase) List(ctx context.Context) ([]dto.CompanyResponse, error) {
	list, err := uc.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	items := make([]dto.CompanyResponse, 0, len(list))
	for _, c := range list {
		items = append(items, *toCompanyResponse(c))
	}
	return items, nil
}

func (uc *CompanyUseCase) load(ctx context.Context, id string) (*entity.Company, error) {
	company, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if company == nil {
		return nil, domain.ErrNotFound
	}
	return company, nil
}

// companyEmail normaliza el email de facturación; vacío se permite.
func companyEmail(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", nil
	}
	addr, err := mail.ParseAddress(raw)
	if err != nil {
		return "", fmt.Errorf("%w: email %q", domain.ErrInvalidInput, raw)
	}
	return addr.Address, nil
}

func toCompanyResponse(c *entity.Company) *dto.CompanyResponse {
	return &dto.CompanyResponse{
		ID:        c.ID,
		Name:      c.Name,
		Address:   c.Address,
		Phone:     c.Phone,
		Email:     c.Email,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}
