package leads

import (
	"net/mail"
	"strings"

	"leadrouter/internal/config"
	"leadrouter/internal/model"
)

// FieldError describes one failed validation rule.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Validator applies intake rules to lead requests.
type Validator struct {
	approved   map[string]struct{}
	unapproved map[string]struct{}
}

func NewValidator(cfg config.ValidationConfig) *Validator {
	return &Validator{
		approved:   domainSet(cfg.ApprovedEmailDomains),
		unapproved: domainSet(cfg.UnapprovedEmailDomains),
	}
}

func domainSet(domains []string) map[string]struct{} {
	set := make(map[string]struct{}, len(domains))
	for _, d := range domains {
		if d = strings.ToLower(strings.TrimSpace(d)); d != "" {
			set[d] = struct{}{}
		}
	}
	return set
}

// Validate returns every rule req violates; an empty result means the
// lead may be queued.
func (v *Validator) Validate(req model.LeadRequest) []FieldError {
	var errs []FieldError

	branchID := strings.TrimSpace(req.BranchID)
	switch {
	case branchID == "":
		errs = append(errs, FieldError{Field: "branchId", Message: "BranchID is required."})
	case !isDigits(branchID):
		errs = append(errs, FieldError{Field: "branchId", Message: "BranchID must be numeric only."})
	}
	if strings.TrimSpace(req.FirstName) == "" {
		errs = append(errs, FieldError{Field: "firstName", Message: "FirstName is required."})
	}
	if strings.TrimSpace(req.LastName) == "" {
		errs = append(errs, FieldError{Field: "lastName", Message: "LastName is required."})
	}

	email := strings.TrimSpace(req.Email)
	if email == "" && strings.TrimSpace(req.Phone) == "" {
		errs = append(errs, FieldError{Field: "email", Message: "Either Email or Phone must be provided."})
	}
	if email != "" {
		if addr, err := mail.ParseAddress(email); err != nil || addr.Address != email {
			errs = append(errs, FieldError{Field: "email", Message: "Invalid email address format."})
		} else if !v.emailAllowed(email) {
			errs = append(errs, FieldError{Field: "email", Message: "Email is not valid. Must not be from a disposable email provider."})
		}
	}

	return errs
}

// emailAllowed checks the first label of the email domain against the
// configured lists. Approved domains win; unknown domains are allowed.
func (v *Validator) emailAllowed(email string) bool {
	_, domain, ok := strings.Cut(strings.ToLower(email), "@")
	if !ok {
		return false
	}
	label, _, _ := strings.Cut(domain, ".")

	if _, ok := v.approved[label]; ok {
		return true
	}
	_, blocked := v.unapproved[label]
	return !blocked
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}
