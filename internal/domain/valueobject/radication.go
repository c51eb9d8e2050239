package valueobject

import (
	"fmt"
	"regexp"
	"time"
)

// RadicationSource is the channel an application was registered through.
type RadicationSource struct {
	value string
}

var (
	SourceWeb        = RadicationSource{value: "WEB"}
	SourceMobile     = RadicationSource{value: "MOBILE"}
	SourceAdmin      = RadicationSource{value: "ADMIN"}
	SourceCommercial = RadicationSource{value: "COMMERCIAL"}
)

var validRadicationSources = map[string]RadicationSource{
	"WEB":        SourceWeb,
	"MOBILE":     SourceMobile,
	"ADMIN":      SourceAdmin,
	"COMMERCIAL": SourceCommercial,
}

func NewRadicationSource(s string) (RadicationSource, error) {
	v, ok := validRadicationSources[s]
	if !ok {
		return RadicationSource{}, fmt.Errorf("invalid radication source: %q", s)
	}
	return v, nil
}

func (s RadicationSource) String() string { return s.value }

func (s RadicationSource) IsZero() bool { return s.value == "" }

// RadicationNumber is the applicant-facing tracking code
// RAD-{YYYY}-{MM}{DD}-{5-digit sequence}.
type RadicationNumber struct {
	value string
}

var radicationPattern = regexp.MustCompile(`^RAD-\d{4}-\d{4}-\d{5,}$`)

// NewRadicationNumber formats the tracking code for a sequence value
// assigned on date.
func NewRadicationNumber(date time.Time, seq int64) (RadicationNumber, error) {
	if seq <= 0 {
		return RadicationNumber{}, fmt.Errorf("radication sequence must be positive, got %d", seq)
	}
	return RadicationNumber{value: fmt.Sprintf("RAD-%s-%05d", date.Format("2006-0102"), seq)}, nil
}

// ParseRadicationNumber validates a tracking code supplied by a caller.
func ParseRadicationNumber(s string) (RadicationNumber, error) {
	if !radicationPattern.MatchString(s) {
		return RadicationNumber{}, fmt.Errorf("invalid radication number: %q", s)
	}
	return RadicationNumber{value: s}, nil
}

func (r RadicationNumber) String() string { return r.value }

func (r RadicationNumber) IsZero() bool { return r.value == "" }
