package core

import "github.com/AntonStoeckl/library-catalog/catalog"

// DefaultLoanDays is the loan period used when a request names none.
const DefaultLoanDays = 14

// LoanPolicy decides how long a copy may be kept.
type LoanPolicy struct {
	DefaultDays int
}

// DefaultLoanPolicy returns the policy with a 14-day default period.
func DefaultLoanPolicy() LoanPolicy {
	return LoanPolicy{DefaultDays: DefaultLoanDays}
}

// LoanDays returns the requested number of days if it is positive, otherwise the default.
// A policy without a positive default falls back to DefaultLoanDays.
func (p LoanPolicy) LoanDays(requested int) int {
	if requested > 0 {
		return requested
	}

	if p.DefaultDays > 0 {
		return p.DefaultDays
	}

	return DefaultLoanDays
}

// DueOn returns the day a copy issued on issuedOn has to be back.
func (p LoanPolicy) DueOn(issuedOn catalog.Date, requested int) catalog.Date {
	return issuedOn.AddDays(p.LoanDays(requested))
}
