package postgres

import (
	"encoding/json"
	"fmt"

	"github.com/bibbank/credit-service/internal/domain/model"
)

// jsonColumns holds the JSONB-encoded parts of a snapshot. Nil optional
// parts stay nil so the column is NULL.
type jsonColumns struct {
	applicant     []byte
	statusHistory []byte
	returnHistory []byte
	reviews       []byte
	validations   []byte
	comments      []byte
	signature     []byte
	disbursement  []byte
}

func encodeSnapshot(s model.CreditApplicationSnapshot) (jsonColumns, error) {
	var (
		c   jsonColumns
		err error
	)
	for _, f := range []struct {
		name string
		dst  *[]byte
		v    any
		skip bool
	}{
		{"applicant", &c.applicant, s.Applicant, false},
		{"status_history", &c.statusHistory, nonNil(s.StatusHistory), false},
		{"return_history", &c.returnHistory, nonNil(s.ReturnHistory), false},
		{"reviews", &c.reviews, s.Reviews, false},
		{"validations", &c.validations, s.Validations, s.Validations == nil},
		{"comments", &c.comments, nonNil(s.Comments), false},
		{"signature", &c.signature, s.Signature, s.Signature == nil},
		{"disbursement", &c.disbursement, s.Disbursement, s.Disbursement == nil},
	} {
		if f.skip {
			continue
		}
		if *f.dst, err = json.Marshal(f.v); err != nil {
			return c, fmt.Errorf("encode %s: %w", f.name, err)
		}
	}
	return c, nil
}

type scannable interface {
	Scan(dest ...any) error
}

func scanApplication(row scannable) (model.CreditApplication, error) {
	var (
		s    model.CreditApplicationSnapshot
		cols jsonColumns
	)
	err := row.Scan(
		&s.ID, &s.Radication, &s.RadicationDate, &s.Source, &s.SubmitterID, &s.Status,
		&cols.applicant, &cols.statusHistory, &cols.returnHistory, &cols.reviews, &cols.validations,
		&cols.comments, &cols.signature, &cols.disbursement, &s.Version, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return model.CreditApplication{}, err
	}

	for _, f := range []struct {
		name string
		raw  []byte
		dst  any
	}{
		{"applicant", cols.applicant, &s.Applicant},
		{"status_history", cols.statusHistory, &s.StatusHistory},
		{"return_history", cols.returnHistory, &s.ReturnHistory},
		{"reviews", cols.reviews, &s.Reviews},
		{"validations", cols.validations, &s.Validations},
		{"comments", cols.comments, &s.Comments},
		{"signature", cols.signature, &s.Signature},
		{"disbursement", cols.disbursement, &s.Disbursement},
	} {
		if len(f.raw) == 0 {
			continue
		}
		if err := json.Unmarshal(f.raw, f.dst); err != nil {
			return model.CreditApplication{}, fmt.Errorf("decode %s of application %s: %w", f.name, s.ID, err)
		}
	}

	s.RadicationDate = s.RadicationDate.UTC()
	s.CreatedAt = s.CreatedAt.UTC()
	s.UpdatedAt = s.UpdatedAt.UTC()
	return model.ReconstructCreditApplication(s)
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
