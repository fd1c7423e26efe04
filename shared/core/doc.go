// Package core contains the pure building blocks of the borrow workflow:
// decision results, the loan-period policy and the state changes that issuing
// or returning a copy produces.
//
// Nothing in here touches storage. The feature slices load the current state,
// hand it to their Decide function and persist the resulting change.
package core
