package valueobject

// ApprovalLevel is the authority an amount needs before it can be granted.
type ApprovalLevel struct {
	value string
	days  int
}

var (
	ApprovalLevelAuto      = ApprovalLevel{value: "AUTO", days: 0}
	ApprovalLevelLevel1    = ApprovalLevel{value: "LEVEL1", days: 2}
	ApprovalLevelLevel2    = ApprovalLevel{value: "LEVEL2", days: 5}
	ApprovalLevelCommittee = ApprovalLevel{value: "COMMITTEE", days: 10}
)

func (l ApprovalLevel) String() string { return l.value }

func (l ApprovalLevel) IsZero() bool { return l.value == "" }

// ExpectedDays is the service-level estimate for a decision at this level.
func (l ApprovalLevel) ExpectedDays() int { return l.days }
