package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/verte-zerg/keysprint/internal/model"
)

// Sink receives finished session results.
type Sink interface {
	Record(ctx context.Context, res model.SessionResult) error
}

// Sinks fans a result out to every sink in order. All sinks are tried; their
// errors are joined.
type Sinks []Sink

// Record implements Sink.
func (s Sinks) Record(ctx context.Context, res model.SessionResult) error {
	var errs []error
	for i, sink := range s {
		if sink == nil {
			continue
		}
		if err := sink.Record(ctx, res); err != nil {
			errs = append(errs, fmt.Errorf("sink %d: %w", i, err))
		}
	}
	return errors.Join(errs...)
}
