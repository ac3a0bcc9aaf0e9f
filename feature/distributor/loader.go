package distributor

import (
	"context"

	"github.com/gofiber/fiber/v2"
)

// Feature implements the loader.Feature interface.
type Feature struct {
	service *Service
	handler *Handler
}

// NewFeature creates the distributor feature around service.
func NewFeature(base context.Context, service *Service, webhookSecret string) *Feature {
	return &Feature{service: service, handler: NewHandler(base, service, webhookSecret)}
}

// Name returns the name of the feature.
func (f *Feature) Name() string {
	return "distributor"
}

// IsEnabled checks if the feature is enabled.
func (f *Feature) IsEnabled() bool {
	return f.service.remote != nil
}

// Load registers the feature's routes.
func (f *Feature) Load(app fiber.Router) error {
	f.handler.RegisterRoutes(app)
	return nil
}
