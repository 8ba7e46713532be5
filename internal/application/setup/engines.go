package setup

import (
	"github.com/sirupsen/logrus"

	"github.com/andrescamacho/routing-go/internal/adapters/engine"
	"github.com/andrescamacho/routing-go/internal/application/registry"
	"github.com/andrescamacho/routing-go/internal/domain/solver"
)

// RegisterEngines loads the solver engine registry. All engines are built in,
// so unlike providers there is nothing to disable; duplicate registration is
// still logged and skipped so the bootstrap stays idempotent.
func RegisterEngines(reg *registry.Registry[solver.Engine], logger logrus.FieldLogger) {
	register := func(name string, factory registry.Factory[solver.Engine]) {
		if err := reg.Register(name, factory); err != nil {
			logger.WithError(err).Warnf("skipping engine %q", name)
		}
	}

	register(engine.NameHeuristic, func() (solver.Engine, error) {
		return engine.NewHeuristicEngine(), nil
	})
	register(engine.NameMIP, func() (solver.Engine, error) {
		return engine.NewMIPEngine(), nil
	})
	register(engine.NameTour, func() (solver.Engine, error) {
		return engine.NewTourEngine(), nil
	})

	logger.Infof("registered %d solver engines: %v", reg.Len(), reg.Names())
}
