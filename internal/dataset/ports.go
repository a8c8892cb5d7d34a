package dataset

import (
	"context"

	"autosales/internal/core"
)

// Ports for inbound dataset adapters.
type (
	// SalesReader loads the full sales table. Implementations are called once
	// at startup; the returned table is shared read-only afterwards.
	SalesReader interface {
		Load(ctx context.Context) (*core.Table, error)
	}
)
