package models

import (
	"fmt"
	"strconv"
	"strings"
)

// PropertyType is the kind of real estate. Values are part of the wire format.
type PropertyType int

const (
	PropertyTypeApartment PropertyType = iota
	PropertyTypeHouse
	PropertyTypeVilla
	PropertyTypeLand
	PropertyTypeCommercial
)

var propertyTypeNames = []string{"Apartment", "House", "Villa", "Land", "Commercial"}

// Valid returns true if t is a declared property type.
func (t PropertyType) Valid() bool {
	return t >= PropertyTypeApartment && t <= PropertyTypeCommercial
}

func (t PropertyType) String() string {
	if !t.Valid() {
		return fmt.Sprintf("PropertyType(%d)", int(t))
	}
	return propertyTypeNames[t]
}

// ParsePropertyType accepts a name (case-insensitive) or its integer value.
func ParsePropertyType(s string) (PropertyType, error) {
	v, err := parseEnum(s, propertyTypeNames)
	if err != nil {
		return 0, fmt.Errorf("invalid property type %q", s)
	}
	return PropertyType(v), nil
}

// TransactionType says whether a listing is for sale or for rent.
type TransactionType int

const (
	TransactionSale TransactionType = iota
	TransactionRent
)

var transactionNames = []string{"Sale", "Rent"}

// Valid returns true if t is a declared transaction type.
func (t TransactionType) Valid() bool {
	return t == TransactionSale || t == TransactionRent
}

func (t TransactionType) String() string {
	if !t.Valid() {
		return fmt.Sprintf("TransactionType(%d)", int(t))
	}
	return transactionNames[t]
}

// ParseTransactionType accepts a name (case-insensitive) or its integer value.
func ParseTransactionType(s string) (TransactionType, error) {
	v, err := parseEnum(s, transactionNames)
	if err != nil {
		return 0, fmt.Errorf("invalid transaction type %q", s)
	}
	return TransactionType(v), nil
}

// PropertyStatus is where a listing is in its lifecycle.
// Any status may follow any other.
type PropertyStatus int

const (
	PropertyStatusAvailable PropertyStatus = iota
	PropertyStatusSold
	PropertyStatusRented
	PropertyStatusPending
)

var propertyStatusNames = []string{"Available", "Sold", "Rented", "Pending"}

// PropertyStatuses lists every status in declaration order.
var PropertyStatuses = []PropertyStatus{
	PropertyStatusAvailable,
	PropertyStatusSold,
	PropertyStatusRented,
	PropertyStatusPending,
}

// Valid returns true if s is a declared property status.
func (s PropertyStatus) Valid() bool {
	return s >= PropertyStatusAvailable && s <= PropertyStatusPending
}

func (s PropertyStatus) String() string {
	if !s.Valid() {
		return fmt.Sprintf("PropertyStatus(%d)", int(s))
	}
	return propertyStatusNames[s]
}

// ParsePropertyStatus accepts a name (case-insensitive) or its integer value.
func ParsePropertyStatus(s string) (PropertyStatus, error) {
	v, err := parseEnum(s, propertyStatusNames)
	if err != nil {
		return 0, fmt.Errorf("invalid property status %q", s)
	}
	return PropertyStatus(v), nil
}

// InquiryStatus tracks the handling of an inquiry.
// New and Pending both mean the inquiry is still open.
type InquiryStatus int

const (
	InquiryStatusNew InquiryStatus = iota
	InquiryStatusPending
	InquiryStatusContacted
	InquiryStatusClosed
)

var inquiryStatusNames = []string{"New", "Pending", "Contacted", "Closed"}

// Valid returns true if s is a declared inquiry status.
func (s InquiryStatus) Valid() bool {
	return s >= InquiryStatusNew && s <= InquiryStatusClosed
}

// Open reports whether the inquiry has not been handled yet.
func (s InquiryStatus) Open() bool {
	return s == InquiryStatusNew || s == InquiryStatusPending
}

func (s InquiryStatus) String() string {
	if !s.Valid() {
		return fmt.Sprintf("InquiryStatus(%d)", int(s))
	}
	return inquiryStatusNames[s]
}

// ParseInquiryStatus accepts a name (case-insensitive) or its integer value.
func ParseInquiryStatus(s string) (InquiryStatus, error) {
	v, err := parseEnum(s, inquiryStatusNames)
	if err != nil {
		return 0, fmt.Errorf("invalid inquiry status %q", s)
	}
	return InquiryStatus(v), nil
}

// OpenInquiryStatuses are the statuses counted as pending.
var OpenInquiryStatuses = []InquiryStatus{InquiryStatusNew, InquiryStatusPending}

// Role is a user's single authorization role.
type Role string

const (
	RoleAdmin  Role = "Admin"
	RoleAgent  Role = "Agent"
	RoleClient Role = "Client"
)

// Roles lists every role.
var Roles = []Role{RoleAdmin, RoleAgent, RoleClient}

// Valid returns true if r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleAgent, RoleClient:
		return true
	}
	return false
}

// ParseRole matches a role name case-insensitively.
func ParseRole(s string) (Role, error) {
	for _, r := range Roles {
		if strings.EqualFold(string(r), strings.TrimSpace(s)) {
			return r, nil
		}
	}
	return "", fmt.Errorf("invalid role %q", s)
}

func parseEnum(s string, names []string) (int, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		if n < 0 || n >= len(names) {
			return 0, fmt.Errorf("out of range")
		}
		return n, nil
	}
	for i, name := range names {
		if strings.EqualFold(name, s) {
			return i, nil
		}
	}
	return 0, fmt.Errorf("unknown value")
}
