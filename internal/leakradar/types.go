package leakradar

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// LeakKind is one of the three exposure categories the API reports per domain.
type LeakKind int

const (
	Employees LeakKind = iota
	Customers
	ThirdParties
)

// LeakKinds lists every kind in the order exports walk them.
var LeakKinds = []LeakKind{Employees, Customers, ThirdParties}

// Path returns the URL segment used by /search/domain/{domain}/{kind}.
func (k LeakKind) Path() string {
	switch k {
	case Employees:
		return "employees"
	case Customers:
		return "customers"
	case ThirdParties:
		return "third_parties"
	default:
		return ""
	}
}

// Label is the human-facing name of the kind.
func (k LeakKind) Label() string {
	switch k {
	case Employees:
		return "employees"
	case Customers:
		return "customers"
	case ThirdParties:
		return "third parties"
	default:
		return "unknown"
	}
}

func (k LeakKind) String() string { return k.Path() }

// ParseLeakKind accepts the path form and the "thirdparties" alias.
func ParseLeakKind(s string) (LeakKind, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "employees":
		return Employees, true
	case "customers":
		return Customers, true
	case "thirdparties", "third_parties":
		return ThirdParties, true
	default:
		return 0, false
	}
}

// Page is one batch of a paginated listing.
type Page[T any] struct {
	Items         []T `json:"items"`
	Total         int `json:"total"`
	TotalUnlocked int `json:"total_unlocked"`
	Page          int `json:"page"`
	PageSize      int `json:"page_size"`
}

// Record is a single leaked credential row.
type Record struct {
	Username         string    `json:"username"`
	Password         string    `json:"password,omitempty"`
	URL              string    `json:"url"`
	IsEmail          bool      `json:"is_email"`
	Unlocked         bool      `json:"unlocked"`
	PasswordStrength LooseText `json:"password_strength,omitempty"`
	AddedAt          LooseText `json:"added_at,omitempty"`
}

// LooseText decodes a JSON string, number or boolean into its text form.
// The API is not consistent about the type of some descriptive fields.
type LooseText string

func (t *LooseText) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*t = ""
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*t = LooseText(s)
		return nil
	}
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	switch x := v.(type) {
	case float64:
		*t = LooseText(strconv.FormatFloat(x, 'f', -1, 64))
	case bool:
		*t = LooseText(strconv.FormatBool(x))
	default:
		*t = LooseText(strings.TrimSpace(string(b)))
	}
	return nil
}

type StrengthBucket struct {
	Qty  int     `json:"qty"`
	Perc float64 `json:"perc"`
}

type PasswordStats struct {
	TotalPass int             `json:"total_pass"`
	TooWeak   *StrengthBucket `json:"too_weak,omitempty"`
	Weak      *StrengthBucket `json:"weak,omitempty"`
	Medium    *StrengthBucket `json:"medium,omitempty"`
	Strong    *StrengthBucket `json:"strong,omitempty"`
}

// DomainSummary is the response of GET /search/domain/{domain}?light=false.
type DomainSummary struct {
	EmployeesCompromised    int            `json:"employees_compromised"`
	ThirdPartiesCompromised int            `json:"third_parties_compromised"`
	CustomersCompromised    int            `json:"customers_compromised"`
	EmployeePasswords       *PasswordStats `json:"employee_passwords,omitempty"`
	ThirdPartiesPasswords   *PasswordStats `json:"third_parties_passwords,omitempty"`
	CustomerPasswords       *PasswordStats `json:"customer_passwords,omitempty"`
	BlacklistedValue        string         `json:"blacklisted_value,omitempty"`
}

func (s DomainSummary) Total() int {
	return s.EmployeesCompromised + s.ThirdPartiesCompromised + s.CustomersCompromised
}

// HasPasswordStats reports whether the full (non-light) breakdown was returned.
func (s DomainSummary) HasPasswordStats() bool {
	return s.EmployeePasswords != nil || s.ThirdPartiesPasswords != nil || s.CustomerPasswords != nil
}

type Subdomain struct {
	Subdomain   string `json:"subdomain"`
	Occurrences int    `json:"occurrences"`
}

type LeakedURL struct {
	URL         string `json:"url"`
	Occurrences int    `json:"occurrences"`
}

// JobStatus is the server-driven state of an export job.
type JobStatus string

const (
	JobPending    JobStatus = "PENDING"
	JobInProgress JobStatus = "IN_PROGRESS"
	JobCompleted  JobStatus = "COMPLETED"
	JobFailed     JobStatus = "FAILED"
	JobError      JobStatus = "ERROR"
)

func (s JobStatus) Normalize() JobStatus {
	return JobStatus(strings.ToUpper(strings.TrimSpace(string(s))))
}

func (s JobStatus) IsFailure() bool {
	n := s.Normalize()
	return n == JobFailed || n == JobError
}

func (s JobStatus) IsTerminal() bool {
	return s.Normalize() == JobCompleted || s.IsFailure()
}

// ExportJob is one entry of GET /exports.
type ExportJob struct {
	ID          int64     `json:"id"`
	Filename    string    `json:"filename"`
	Status      JobStatus `json:"status"`
	Timestamp   LooseText `json:"timestamp,omitempty"`
	FinishedAt  LooseText `json:"finished_at,omitempty"`
	DownloadURL string    `json:"download_url,omitempty"`
	URL         string    `json:"url,omitempty"`
}

// DirectURL returns the download link embedded in the job payload, if any.
func (j ExportJob) DirectURL() string {
	if u := strings.TrimSpace(j.DownloadURL); u != "" {
		return u
	}
	return strings.TrimSpace(j.URL)
}

// ExportCreated is the response of the export creation endpoints.
type ExportCreated struct {
	ExportID int64  `json:"export_id"`
	Status   string `json:"status,omitempty"`
}
