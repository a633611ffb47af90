package sheets

import (
	"context"

	"budget/internal/core"
)

// Ports for outbound adapters.
type (
	// TransactionExporter replaces the remote transaction table with txs.
	TransactionExporter interface {
		Export(ctx context.Context, txs []core.Transaction) (ref string, err error)
	}
)
