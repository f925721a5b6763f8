package discount

import (
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/milsabores/checkout/internal/domain/customer"
)

var hundred = decimal.NewFromInt(100)

// BirthdayWindowFunc reports whether the evaluation date falls inside the
// customer's birthday window.
type BirthdayWindowFunc func(birthDate, at time.Time) bool

// SameCalendarDay is the default birthday window: the evaluation date matches
// the birth date's calendar month and day.
func SameCalendarDay(birthDate, at time.Time) bool {
	return birthDate.Month() == at.Month() && birthDate.Day() == at.Day()
}

// SameCalendarMonth widens the window to the whole birth month.
func SameCalendarMonth(birthDate, at time.Time) bool {
	return birthDate.Month() == at.Month()
}

// EngineConfig tunes rule predicates. Zero values select the defaults.
type EngineConfig struct {
	// SeniorAge is the minimum age in full years for the senior rule.
	// Defaults to 50.
	SeniorAge int
	// BirthdayWindow decides student-birthday eligibility.
	// Defaults to SameCalendarDay.
	BirthdayWindow BirthdayWindowFunc
}

// Engine evaluates discount rules in a fixed priority order. Given the same
// customer attributes, candidate code, evaluation time, and promotion set it
// always produces the same decision. The promotion set is the only mutable
// piece: ReplacePromotions swaps it atomically so long-running servers can
// pick up newly ingested codes.
type Engine struct {
	seniorAge      int
	birthdayWindow BirthdayWindowFunc

	mu     sync.RWMutex
	promos map[string]Promotion
}

// NewEngine builds an engine over the given set of running promotions.
// Promotion codes are matched case-insensitively.
func NewEngine(cfg EngineConfig, promos []Promotion) *Engine {
	if cfg.SeniorAge <= 0 {
		cfg.SeniorAge = 50
	}
	if cfg.BirthdayWindow == nil {
		cfg.BirthdayWindow = SameCalendarDay
	}

	return &Engine{
		seniorAge:      cfg.SeniorAge,
		birthdayWindow: cfg.BirthdayWindow,
		promos:         indexPromotions(promos),
	}
}

// ReplacePromotions swaps the running promotion set. Codes absent from the
// new set stop matching immediately; in-flight evaluations finish against
// whichever set they started with.
func (e *Engine) ReplacePromotions(promos []Promotion) {
	byCode := indexPromotions(promos)
	e.mu.Lock()
	e.promos = byCode
	e.mu.Unlock()
}

func indexPromotions(promos []Promotion) map[string]Promotion {
	byCode := make(map[string]Promotion, len(promos))
	for _, p := range promos {
		byCode[strings.ToUpper(p.Code)] = p
	}
	return byCode
}

// rule couples a kind with its eligibility predicate. The predicate returns
// the percentage and reason to apply when the rule matches.
type rule struct {
	kind     Kind
	eligible func(c customer.Customer, code string, at time.Time) (decimal.Decimal, string, bool)
}

// rules returns the rule table in priority order. Resolve stops at the first
// match; Eligible reports every match.
func (e *Engine) rules() []rule {
	return []rule{
		{kind: KindSenior, eligible: e.seniorRule},
		{kind: KindPromoCode, eligible: e.promoCodeRule},
		{kind: KindStudentBirthday, eligible: e.studentBirthdayRule},
		{kind: KindPermanent, eligible: e.permanentRule},
	}
}

func (e *Engine) seniorRule(c customer.Customer, _ string, at time.Time) (decimal.Decimal, string, bool) {
	if c.BirthDate == nil || yearsBetween(*c.BirthDate, at) < e.seniorAge {
		return decimal.Zero, "", false
	}
	return decimal.NewFromInt(50), "50% off: customer is 50 or older", true
}

func (e *Engine) promoCodeRule(c customer.Customer, code string, _ time.Time) (decimal.Decimal, string, bool) {
	if code == "" {
		code = c.RegisteredCode
	}
	if code == "" {
		return decimal.Zero, "", false
	}
	e.mu.RLock()
	p, ok := e.promos[strings.ToUpper(code)]
	e.mu.RUnlock()
	if !ok {
		return decimal.Zero, "", false
	}
	reason := p.Description
	if reason == "" {
		reason = "promotional code " + p.Code
	}
	return p.Percent, reason, true
}

func (e *Engine) studentBirthdayRule(c customer.Customer, _ string, at time.Time) (decimal.Decimal, string, bool) {
	if !c.Student || c.BirthDate == nil || !e.birthdayWindow(*c.BirthDate, at) {
		return decimal.Zero, "", false
	}
	return hundred, "student birthday coupon: free item", true
}

func (e *Engine) permanentRule(c customer.Customer, _ string, _ time.Time) (decimal.Decimal, string, bool) {
	if !c.PermanentDiscount.IsPositive() {
		return decimal.Zero, "", false
	}
	return c.PermanentDiscount, "permanent personal discount", true
}

// Resolve evaluates the rules in priority order and returns the decision of
// the first matching rule. Discounts never stack: a customer eligible for
// several rules receives only the highest-priority one. When no rule matches
// the decision has KindNone and a zero percentage, still worth recording for
// a complete audit trail.
//
// candidateCode, when non-empty, is evaluated in place of the customer's
// registered code by the promo-code rule.
func (e *Engine) Resolve(c customer.Customer, candidateCode string, original decimal.Decimal, at time.Time) Decision {
	for _, r := range e.rules() {
		if pct, reason, ok := r.eligible(c, candidateCode, at); ok {
			return e.decision(c.ID, r.kind, pct, reason, original, at)
		}
	}
	return e.NoDiscount(c.ID, original, at)
}

// Eligible reports every rule the customer currently matches, in priority
// order, without picking a winner. It shares the predicates with Resolve.
func (e *Engine) Eligible(c customer.Customer, candidateCode string, at time.Time) []Eligibility {
	var out []Eligibility
	for _, r := range e.rules() {
		if pct, reason, ok := r.eligible(c, candidateCode, at); ok {
			out = append(out, Eligibility{Kind: r.kind, Percent: pct, Reason: reason})
		}
	}
	return out
}

// NoDiscount builds the KindNone decision for the given amount. Used both as
// the Resolve fallthrough and for checkouts that decline a discount.
func (e *Engine) NoDiscount(customerID int64, original decimal.Decimal, at time.Time) Decision {
	return e.decision(customerID, KindNone, decimal.Zero, "no discount applied", original, at)
}

// decision computes the monetary effect of a percentage. The discount amount
// is rounded half-up to cents; final = original - discount.
func (e *Engine) decision(customerID int64, kind Kind, pct decimal.Decimal, reason string, original decimal.Decimal, at time.Time) Decision {
	amount := original.Mul(pct).Div(hundred).Round(2)
	return Decision{
		CustomerID: customerID,
		Kind:       kind,
		Percent:    pct,
		Original:   original,
		Discount:   amount,
		Final:      original.Sub(amount),
		Reason:     reason,
		AppliedAt:  at,
	}
}

// yearsBetween returns full years elapsed from birthDate to at. A Feb 29
// birthday rolls to Mar 1 in non-leap years, per time.AddDate.
func yearsBetween(birthDate, at time.Time) int {
	years := at.Year() - birthDate.Year()
	if years < 0 {
		return 0
	}
	if birthDate.AddDate(years, 0, 0).After(at) {
		years--
	}
	return years
}
