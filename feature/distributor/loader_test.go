package distributor

import (
	"context"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestLoader(t *testing.T) {
	svc := NewService(Options{Remote: NewCrowdinRemote(newFakeCrowdin(), ""), Logger: zap.NewNop()})
	feature := NewFeature(context.Background(), svc, "")

	assert.Equal(t, "distributor", feature.Name())
	assert.True(t, feature.IsEnabled())

	app := fiber.New()
	assert.NoError(t, feature.Load(app))
}

func TestLoader_DisabledWithoutRemote(t *testing.T) {
	feature := NewFeature(context.Background(), NewService(Options{}), "")
	assert.False(t, feature.IsEnabled())
}
