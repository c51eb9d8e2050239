package valueobject

import (
	"fmt"
	"strconv"
	"strings"
)

// Stage is a reviewer checkpoint. The three analyst stages run in order;
// servicing handles funded loans.
type Stage int

const (
	StageAnalyst1  Stage = 1
	StageAnalyst2  Stage = 2
	StageAnalyst3  Stage = 3
	StageServicing Stage = 4
)

var stageNames = map[Stage]string{
	StageAnalyst1:  "analyst1",
	StageAnalyst2:  "analyst2",
	StageAnalyst3:  "analyst3",
	StageServicing: "servicing",
}

// ParseStage accepts "1".."4" or the stage name.
func ParseStage(s string) (Stage, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if n, err := strconv.Atoi(s); err == nil {
		st := Stage(n)
		if st.Valid() {
			return st, nil
		}
	}
	for st, name := range stageNames {
		if name == s {
			return st, nil
		}
	}
	return 0, fmt.Errorf("invalid stage: %q", s)
}

func (s Stage) Valid() bool {
	_, ok := stageNames[s]
	return ok
}

// String returns the stage's role name, e.g. "analyst2".
func (s Stage) String() string {
	if name, ok := stageNames[s]; ok {
		return name
	}
	return "stage" + strconv.Itoa(int(s))
}

// IsAnalyst reports whether s is one of the three human review stages.
func (s Stage) IsAnalyst() bool { return s >= StageAnalyst1 && s <= StageAnalyst3 }

// ReviewStatus is the status an application waits in for stage s.
func (s Stage) ReviewStatus() (CreditStatus, bool) {
	switch s {
	case StageAnalyst1:
		return StatusAnalyst1Review, true
	case StageAnalyst2:
		return StatusAnalyst2Review, true
	case StageAnalyst3:
		return StatusAnalyst3Review, true
	}
	return CreditStatus{}, false
}

// ReturnTarget names who receives an application returned by stage s when
// it is not sent to the commercial channel.
func (s Stage) ReturnTarget() string {
	switch s {
	case StageAnalyst1:
		return "applicant"
	case StageAnalyst2:
		return StageAnalyst1.String()
	case StageAnalyst3:
		return StageAnalyst2.String()
	}
	return ReturnTargetCommercial
}

// ReturnTargetCommercial is the destination of returns to the sales channel.
const ReturnTargetCommercial = "commercial"
