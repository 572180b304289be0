package providers

import (
	"context"
)

// ExportSink receives the booking ledger as a tabular row-set. Delivery
// is fire-and-forget; the core consumes no acknowledgment.
type ExportSink interface {
	Export(ctx context.Context, target string, columns []string, rows [][]string) error
}
