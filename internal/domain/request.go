package domain

import (
	"regexp"
	"strings"
	"time"
)

// DefaultRequestStatus mirrors the column default applied by the store.
const DefaultRequestStatus = "in progress"

// Request is a customer repair ticket.
type Request struct {
	ID                 int64
	OwnerID            *int64
	ServiceType        *string
	ContactPhone       *string
	DeviceModel        *string
	ProblemDescription *string
	Status             string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// RequestPatch carries the fields an update should touch. Absent fields keep
// their stored values.
type RequestPatch struct {
	ServiceType        Optional[string]
	ContactPhone       Optional[string]
	DeviceModel        Optional[string]
	ProblemDescription Optional[string]
	Status             Optional[string]
	OwnerID            Optional[int64]
}

// Empty reports whether the patch would change nothing.
func (p RequestPatch) Empty() bool {
	return !p.ServiceType.Set &&
		!p.ContactPhone.Set &&
		!p.DeviceModel.Set &&
		!p.ProblemDescription.Set &&
		!p.Status.Set &&
		!p.OwnerID.Set
}

var contactPhonePattern = regexp.MustCompile(`^0[0-9]{9}$`)

// NormalizeContactPhone trims the input and reports whether it is a
// 10-digit local number starting with zero.
func NormalizeContactPhone(phone string) (string, bool) {
	phone = strings.TrimSpace(phone)
	return phone, contactPhonePattern.MatchString(phone)
}
