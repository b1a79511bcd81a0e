package event

import (
	log "github.com/sirupsen/logrus"

	"github.com/andresguaman0621/precios/pkg/catalog/domain/model"
	"github.com/andresguaman0621/precios/pkg/catalog/domain/service"
)

// LogDispatcher records domain events in the structured log.
type LogDispatcher struct {
	logger log.FieldLogger
}

func NewLogDispatcher(logger log.FieldLogger) *LogDispatcher {
	return &LogDispatcher{logger: logger}
}

func (d *LogDispatcher) Dispatch(event service.Event) error {
	entry := d.logger.WithField("event", event.Type())
	switch e := event.(type) {
	case model.PriceChanged:
		entry = entry.WithFields(log.Fields{
			"catalog":        e.Catalog,
			"identifier":     e.Identifier,
			"previous_price": e.Previous.String(),
			"current_price":  e.Current.String(),
		})
	case model.RoundStarted:
		entry = entry.WithFields(log.Fields{
			"catalog": e.Catalog,
			"records": e.Records,
		})
	}
	entry.Info("domain event")
	return nil
}
