package types

// Label names a category of sensitive data. The set is closed and fixed at
// build time.
type Label string

const (
	SSN           Label = "SSN"
	Passport      Label = "Passport"
	DriverLicense Label = "DriverLicense"
	Email         Label = "Email"
	Phone         Label = "Phone"
	Password      Label = "Password"
	AWSAccessKey  Label = "AWSAccessKey"
	AWSSecretKey  Label = "AWSSecretKey"
	JWT           Label = "JWT"
	CreditCard    Label = "CreditCard"
	BankAccount   Label = "BankAccount"
	RoutingNumber Label = "RoutingNumber"
	USAddress     Label = "USAddress"
	ZipCode       Label = "ZipCode"
	MedicalRecord Label = "MedicalRecord"
	GenericAPIKey Label = "GenericAPIKey"
)

// AllLabels lists every known label in pattern-library order.
func AllLabels() []Label {
	return []Label{
		SSN, Passport, DriverLicense, Email, Phone, Password,
		AWSAccessKey, AWSSecretKey, JWT, CreditCard, BankAccount,
		RoutingNumber, USAddress, ZipCode, MedicalRecord, GenericAPIKey,
	}
}

// ParseLabel returns the Label named by s, or false when s is not a known label.
func ParseLabel(s string) (Label, bool) {
	for _, l := range AllLabels() {
		if string(l) == s {
			return l, true
		}
	}
	return "", false
}

// Finding describes a single pattern match and its confidence score. Offset is
// the byte offset of the match in the scanned text; Path, Line and Column are
// set when the text came from a file.
type Finding struct {
	Label     Label   `json:"label" yaml:"label"`
	Match     string  `json:"match" yaml:"match"`
	Score     float64 `json:"score" yaml:"score"`
	Offset    int     `json:"offset" yaml:"offset"`
	Path      string  `json:"path,omitempty" yaml:"path,omitempty"`
	Line      int     `json:"line,omitempty" yaml:"line,omitempty"`
	Column    int     `json:"column,omitempty" yaml:"column,omitempty"`
	Validated bool    `json:"validated,omitempty" yaml:"validated,omitempty"`
}

// Decision is the overall policy outcome for a scan.
type Decision string

const (
	Accept Decision = "Accept"
	Reject Decision = "Reject"
)

// ScanResult is the terminal output of one scan: every finding, the subset
// that violates the policy, and the decision.
type ScanResult struct {
	Findings   []Finding
	Violations []Finding
	Decision   Decision
}

// SkipReason explains why a file was not scanned during a tree walk.
type SkipReason string

const (
	SkipUnreadable SkipReason = "unreadable"
	SkipBinary     SkipReason = "binary"
	SkipTooLarge   SkipReason = "too_large"
	SkipWalk       SkipReason = "walk"
)

// FileError records a per-file failure that did not abort a tree scan.
type FileError struct {
	Path   string     `json:"path"`
	Reason SkipReason `json:"reason"`
	Err    error      `json:"-"`
}

func (e FileError) Error() string {
	if e.Err == nil {
		return e.Path + ": " + string(e.Reason)
	}
	return e.Path + ": " + string(e.Reason) + ": " + e.Err.Error()
}

func (e FileError) Unwrap() error { return e.Err }
