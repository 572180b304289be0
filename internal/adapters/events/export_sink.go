package events

import (
	"context"
	"strconv"
	"strings"

	"github.com/medreportai/companion/internal/domain/entities"
	"github.com/medreportai/companion/internal/domain/providers"
)

// BusExportSink delivers ledger exports as workflow events on the
// event bus. Delivery is fire-and-forget; downstream consumers (an SSE
// stream, a spreadsheet writer) pick the row-set up from there.
type BusExportSink struct {
	bus providers.EventBus
}

// NewBusExportSink creates a new event-bus-backed export sink
func NewBusExportSink(bus providers.EventBus) providers.ExportSink {
	return &BusExportSink{bus: bus}
}

// Export publishes the row-set as a ledger_exported event
func (s *BusExportSink) Export(ctx context.Context, target string, columns []string, rows [][]string) error {
	details := map[string]string{
		"target":  target,
		"columns": strings.Join(columns, ","),
		"rows":    strconv.Itoa(len(rows)),
	}
	for i, row := range rows {
		details["row_"+strconv.Itoa(i)] = strings.Join(row, ",")
	}

	event := entities.NewWorkflowEvent(entities.WorkflowEventLedgerExported, "", details)
	return s.bus.Publish(ctx, providers.WorkflowChannel, event)
}
