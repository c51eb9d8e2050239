package usecase

import (
	"strings"
	"time"

	"github.com/bibbank/credit-service/internal/application/dto"
	"github.com/bibbank/credit-service/internal/domain/errs"
	"github.com/bibbank/credit-service/internal/domain/model"
	"github.com/bibbank/credit-service/internal/domain/service"
)

func toApplicationResponse(app model.CreditApplication, rules *service.ApprovalRules) dto.ApplicationResponse {
	level := rules.RequiredApprovalLevel(app.Applicant().Financials.RequestedAmount)

	allowed := service.AllowedActions(app.Status())
	actions := make([]string, 0, len(allowed))
	for _, a := range allowed {
		actions = append(actions, a.String())
	}

	return dto.ApplicationResponse{
		ID:             app.ID(),
		Radication:     app.Radication().String(),
		RadicationDate: app.RadicationDate(),
		Source:         app.Source().String(),
		SubmitterID:    app.SubmitterID(),
		Status:         app.Status().String(),
		ApprovalLevel:  level.String(),
		ExpectedDays:   level.ExpectedDays(),
		AllowedActions: actions,
		Applicant:      app.Applicant(),
		StatusHistory:  app.StatusHistory(),
		ReturnHistory:  nonNil(app.ReturnHistory()),
		Reviews:        app.Reviews(),
		Validations:    app.Validations(),
		Comments:       nonNil(app.Comments()),
		Signature:      app.Signature(),
		Disbursement:   app.Disbursement(),
		Version:        app.Version(),
		CreatedAt:      app.CreatedAt(),
		UpdatedAt:      app.UpdatedAt(),
	}
}

func toSummary(app model.CreditApplication) dto.ApplicationSummary {
	a := app.Applicant()
	return dto.ApplicationSummary{
		ID:              app.ID(),
		Radication:      app.Radication().String(),
		Status:          app.Status().String(),
		ApplicantName:   a.FullName(),
		DocumentNumber:  a.DocumentNumber,
		RequestedAmount: a.Financials.RequestedAmount,
		TermMonths:      a.Financials.TermMonths,
		UpdatedAt:       app.UpdatedAt(),
	}
}

func toApplicant(op string, in dto.ApplicantInput) (model.Applicant, error) {
	dob, err := parseDate(op, "date_of_birth", in.DateOfBirth)
	if err != nil {
		return model.Applicant{}, err
	}
	admission, err := parseDate(op, "admission_date", in.AdmissionDate)
	if err != nil {
		return model.Applicant{}, err
	}
	return model.Applicant{
		FirstName:      strings.TrimSpace(in.FirstName),
		LastName:       strings.TrimSpace(in.LastName),
		DocumentType:   strings.TrimSpace(in.DocumentType),
		DocumentNumber: strings.TrimSpace(in.DocumentNumber),
		Email:          strings.TrimSpace(in.Email),
		Phone:          strings.TrimSpace(in.Phone),
		DateOfBirth:    dob,
		Employment: model.Employment{
			Company:       strings.TrimSpace(in.Company),
			CompanyPhone:  strings.TrimSpace(in.CompanyPhone),
			Position:      strings.TrimSpace(in.Position),
			ContractType:  strings.ToUpper(strings.TrimSpace(in.ContractType)),
			AdmissionDate: admission,
		},
		Financials: model.Financials{
			MonthlyIncome:   in.MonthlyIncome,
			MonthlyExpenses: in.MonthlyExpenses,
			RequestedAmount: in.RequestedAmount,
			TermMonths:      in.TermMonths,
		},
		References:       in.References,
		CreditExperience: strings.TrimSpace(in.CreditExperience),
	}, nil
}

func toPatch(op string, in dto.ApplicantPatchInput) (model.ApplicantPatch, error) {
	p := model.ApplicantPatch{
		FirstName:        in.FirstName,
		LastName:         in.LastName,
		Email:            in.Email,
		Phone:            in.Phone,
		Company:          in.Company,
		CompanyPhone:     in.CompanyPhone,
		Position:         in.Position,
		MonthlyIncome:    in.MonthlyIncome,
		MonthlyExpenses:  in.MonthlyExpenses,
		RequestedAmount:  in.RequestedAmount,
		TermMonths:       in.TermMonths,
		References:       in.References,
		CreditExperience: in.CreditExperience,
	}
	if in.ContractType != nil {
		ct := strings.ToUpper(strings.TrimSpace(*in.ContractType))
		p.ContractType = &ct
	}
	if in.DateOfBirth != nil {
		d, err := parseDate(op, "date_of_birth", *in.DateOfBirth)
		if err != nil {
			return p, err
		}
		p.DateOfBirth = &d
	}
	if in.AdmissionDate != nil {
		d, err := parseDate(op, "admission_date", *in.AdmissionDate)
		if err != nil {
			return p, err
		}
		p.AdmissionDate = &d
	}
	return p, nil
}

// parseDate reads a calendar date. Empty input yields the zero time.
func parseDate(op, field, raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, nil
	}
	d, err := time.Parse(dto.DateLayout, raw)
	if err != nil {
		return time.Time{}, errs.Validation(op, "%s must be a %s date, got %q", field, dto.DateLayout, raw)
	}
	return d, nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
