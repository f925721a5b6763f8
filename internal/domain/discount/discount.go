// Package discount evaluates the storefront's mutually-exclusive discount
// rules. A single rule table backs both the winner-picking resolve path used
// at checkout and the enumerate-all path used for the discounts-available
// listing.
package discount

import (
	"time"

	"github.com/shopspring/decimal"
)

// Kind identifies a discount rule. The set is closed; audit rows only ever
// carry one of these values.
type Kind string

const (
	// KindSenior is the 50% discount for customers aged 50 or older.
	KindSenior Kind = "senior50"
	// KindPromoCode is the discount granted by a running promotional code.
	KindPromoCode Kind = "promo_code"
	// KindStudentBirthday is the free-item coupon for students during their
	// birthday window.
	KindStudentBirthday Kind = "student_birthday"
	// KindPermanent is a customer's personal permanent percentage.
	KindPermanent Kind = "permanent"
	// KindNone records that no rule matched (or none was requested).
	KindNone Kind = "none"
)

// Decision is the audited outcome of one rule evaluation against a monetary
// amount. Decisions are immutable once appended to the audit log.
type Decision struct {
	ID         int64
	CustomerID int64
	// OrderID is zero for decisions taken before an order exists.
	OrderID  int64
	Kind     Kind
	Percent  decimal.Decimal
	Original decimal.Decimal
	Discount decimal.Decimal
	Final    decimal.Decimal
	Reason   string
	AppliedAt time.Time
}

// Eligibility describes a rule a customer currently qualifies for. It carries
// no amounts; it backs the informational listing only.
type Eligibility struct {
	Kind    Kind
	Percent decimal.Decimal
	Reason  string
}

// Promotion is a running promotional code customers may have registered.
type Promotion struct {
	Code        string
	Percent     decimal.Decimal
	Description string
}
