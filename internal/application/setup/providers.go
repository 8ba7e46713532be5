// Package setup is the composition root: it loads the plugin registries from
// configuration and wires every application handler into the mediator. This
// is the only application package that touches adapter constructors; handlers
// themselves stay on the domain ports.
package setup

import (
	"github.com/sirupsen/logrus"

	"github.com/andrescamacho/routing-go/internal/adapters/matrixprovider"
	"github.com/andrescamacho/routing-go/internal/application/registry"
	"github.com/andrescamacho/routing-go/internal/domain/matrix"
	"github.com/andrescamacho/routing-go/internal/infrastructure/config"
)

// RegisterProviders loads the matrix adapter registry from configuration.
// Registration is tolerant: a provider that cannot start is logged and
// skipped, never fatal. Online providers without their credential are
// skipped so one missing key never takes the service down.
func RegisterProviders(reg *registry.Registry[matrix.Provider], cfg *config.Config, logger logrus.FieldLogger) {
	p := cfg.Providers
	clientOpts := matrixprovider.ClientOptions{
		Timeout:        p.HTTP.Timeout,
		RequestsPerSec: p.HTTP.RequestsPerSec,
		MaxRetries:     p.HTTP.MaxRetries,
		BackoffBase:    p.HTTP.BackoffBase,
	}

	register := func(name string, factory registry.Factory[matrix.Provider]) {
		if err := reg.Register(name, factory); err != nil {
			logger.WithError(err).Warnf("skipping adapter %q", name)
		}
	}

	if p.Euclidean.Enabled {
		register("euclidean", func() (matrix.Provider, error) {
			return matrixprovider.NewEuclidean(), nil
		})
	}

	if p.Haversine.Enabled {
		register("haversine", func() (matrix.Provider, error) {
			return matrixprovider.NewHaversine(), nil
		})
	}

	if p.LocalGraph.Enabled {
		// The graph cache is created once here, outside the factory, so
		// every constructed provider shares the same LRU of built graphs.
		graphCache, err := matrixprovider.NewGraphCache(p.LocalGraph.GraphCacheSize)
		if err != nil {
			logger.WithError(err).Warnf("skipping adapter %q", "localgraph")
		} else {
			builder := matrixprovider.NewOverpassBuilder(p.LocalGraph.OverpassURL, clientOpts)
			opts := matrixprovider.LocalGraphOptions{BufferMeters: p.LocalGraph.BufferMeters}
			register("localgraph", func() (matrix.Provider, error) {
				return matrixprovider.NewLocalGraph(builder, graphCache, opts), nil
			})
		}
	}

	if p.Mapbox.Enabled {
		if token := p.Mapbox.Token; token != "" {
			register("mapbox", func() (matrix.Provider, error) {
				return matrixprovider.NewMapbox(matrixprovider.MapboxOptions{Token: token, Client: clientOpts})
			})
		} else {
			logger.Infof("adapter %q not registered: MAPBOX_TOKEN is not set", "mapbox")
		}
	}

	if p.Google.Enabled {
		if key := p.Google.APIKey; key != "" {
			register("google", func() (matrix.Provider, error) {
				return matrixprovider.NewGoogle(matrixprovider.GoogleOptions{APIKey: key, Client: clientOpts})
			})
		} else {
			logger.Infof("adapter %q not registered: GOOGLE_API_KEY is not set", "google")
		}
	}

	if p.ORS.Enabled {
		if key := p.ORS.APIKey; key != "" {
			register("ors", func() (matrix.Provider, error) {
				return matrixprovider.NewORS(matrixprovider.ORSOptions{APIKey: key, Client: clientOpts})
			})
		} else {
			logger.Infof("adapter %q not registered: ORS_API_KEY is not set", "ors")
		}
	}

	logger.Infof("registered %d matrix adapters: %v", reg.Len(), reg.Names())
}
