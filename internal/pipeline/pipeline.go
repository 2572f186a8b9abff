// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline drives batch enrichment runs: each patent identifier in a
// batch is fetched in order, with per-item progress events pushed to a sink.
// One item's failure never stops the rest of the batch.
package pipeline

import (
	"context"
	"fmt"
	"io"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/meshintel/inventor-scout/pkg/types"
)

// Fetcher resolves one patent identifier to a record. Satisfied by
// registry.Client.
type Fetcher interface {
	Fetch(ctx context.Context, patentNumber string) (*types.PatentRecord, error)
}

// Saver persists successfully fetched records. Satisfied by store.Store.
// Optional; a nil Saver disables persistence.
type Saver interface {
	SavePatent(rec *types.PatentRecord) error
}

// EventSink receives batch progress events in emission order.
type EventSink interface {
	Emit(ev types.BatchEvent)
}

// Coordinator runs enrichment batches sequentially. Sequential processing is
// deliberate: the retrieval surface punishes parallel traffic.
type Coordinator struct {
	fetcher Fetcher
	saver   Saver
	log     *zap.Logger
}

// NewCoordinator builds a batch coordinator. saver may be nil.
func NewCoordinator(fetcher Fetcher, saver Saver, log *zap.Logger) *Coordinator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Coordinator{fetcher: fetcher, saver: saver, log: log}
}

// Run processes the batch in input order. Every item produces a started
// event followed by either a completed or an error event; a single finished
// event with the batch total closes the stream. Run returns early only on
// context cancellation.
func (c *Coordinator) Run(ctx context.Context, identifiers []string, sink EventSink) error {
	batchID := uuid.New().String()
	log := c.log.With(zap.String("batch_id", batchID))
	log.Info("batch started", zap.Int("total", len(identifiers)))

	total := len(identifiers)
	for i, id := range identifiers {
		if err := ctx.Err(); err != nil {
			return err
		}

		sink.Emit(types.BatchEvent{
			Type:         types.EventStarted,
			Index:        i,
			PatentNumber: id,
			Total:        total,
		})

		rec, err := c.fetcher.Fetch(ctx, id)
		if err != nil {
			log.Warn("item failed",
				zap.Int("index", i),
				zap.String("identifier", id),
				zap.Error(err))
			sink.Emit(types.BatchEvent{
				Type:         types.EventError,
				Index:        i,
				PatentNumber: id,
				Error:        err.Error(),
			})
			continue
		}

		if c.saver != nil {
			if err := c.saver.SavePatent(rec); err != nil {
				log.Warn("persisting record failed",
					zap.String("patent", rec.PatentNumber),
					zap.Error(err))
			}
		}

		sink.Emit(types.BatchEvent{
			Type:         types.EventCompleted,
			Index:        i,
			PatentNumber: rec.PatentNumber,
			Record:       rec,
		})
	}

	sink.Emit(types.BatchEvent{
		Type:  types.EventFinished,
		Index: -1,
		Total: total,
	})
	log.Info("batch finished")
	return nil
}

// WriterSink renders events as human-readable lines, one per event. Used by
// the CLI.
type WriterSink struct {
	W io.Writer
}

func (s WriterSink) Emit(ev types.BatchEvent) {
	switch ev.Type {
	case types.EventStarted:
		fmt.Fprintf(s.W, "[%d/%d] %s: fetching\n", ev.Index+1, ev.Total, ev.PatentNumber)
	case types.EventCompleted:
		fmt.Fprintf(s.W, "[%d] %s: %q (%d inventors)\n", ev.Index+1, ev.PatentNumber, ev.Record.Title, len(ev.Record.Inventors))
	case types.EventError:
		fmt.Fprintf(s.W, "[%d] %s: failed: %s\n", ev.Index+1, ev.PatentNumber, ev.Error)
	case types.EventFinished:
		fmt.Fprintf(s.W, "done (%d items)\n", ev.Total)
	}
}
