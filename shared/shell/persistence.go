package shell

import (
	"context"

	"github.com/AntonStoeckl/library-catalog/catalog"
	"github.com/AntonStoeckl/library-catalog/shared/core"
)

// PersistIssuance moves the copy to ISSUED, guarded by its previously observed status,
// and inserts the new borrow. It returns the borrow with its generated id.
// A copy that changed status in the meantime yields catalog.ErrConcurrencyConflict.
func PersistIssuance(ctx context.Context, repos catalog.Repositories, issuance core.Issuance) (catalog.Borrow, error) {
	err := repos.Copies.CompareAndSetStatus(ctx, issuance.Copy.ID, issuance.PreviousStatus, issuance.Copy.Status)
	if err != nil {
		return catalog.Borrow{}, err
	}

	return repos.Borrows.Save(ctx, issuance.Borrow)
}

// PersistRestitution closes the borrow and frees the copy, whichever of them is present.
func PersistRestitution(ctx context.Context, repos catalog.Repositories, restitution core.Restitution) error {
	if restitution.Borrow != nil {
		if _, err := repos.Borrows.Save(ctx, *restitution.Borrow); err != nil {
			return err
		}
	}

	if restitution.Copy != nil {
		return repos.Copies.CompareAndSetStatus(
			ctx,
			restitution.Copy.ID,
			restitution.PreviousCopyStatus,
			restitution.Copy.Status,
		)
	}

	return nil
}
