// Package catalog provides the core types of the library catalog:
// books, physical book copies, and borrow records.
//
// It also defines the repository ports used by the feature slices, the
// closed set of error kinds that the HTTP layer maps to status codes,
// and the observability interfaces implemented by the adapters.
//
// Storage implementations live in sub-packages (see postgresengine);
// feature slices only depend on the interfaces declared here.
//
// Common usage pattern:
//
//	err := store.WithinTx(ctx, func(ctx context.Context, repos catalog.Repositories) error {
//		copy, err := repos.Copies.FindFirstAvailableByBookID(ctx, bookID)
//		if err != nil {
//			return err
//		}
//		return repos.Copies.CompareAndSetStatus(ctx, copy.ID, catalog.CopyStatusAvailable, catalog.CopyStatusIssued)
//	})
package catalog
