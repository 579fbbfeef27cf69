package base

import (
	"context"
	"strings"

	"github.com/rs/zerolog"
)

// Enity is the common identity of a long-lived managed component, such as
// a connection pool. It carries naming and the context logger.
type Enity struct {
	name         string
	providerName string
}

type EnityDeps struct {
	Name         string
	ProviderName string
}

func NewEnity(deps *EnityDeps) *Enity {
	return &Enity{
		name:         deps.Name,
		providerName: deps.ProviderName,
	}
}

func (e *Enity) GetName() string {
	return e.name
}

func (e *Enity) GetFullName() string {
	return strings.Join([]string{e.providerName, e.name}, "_")
}

// GetLogger returns the context logger tagged with the enity identity.
func (e *Enity) GetLogger(ctx context.Context) *zerolog.Logger {
	logger := zerolog.Ctx(ctx).With().
		Str("provider_type", e.providerName).
		Str("enity_name", e.name).
		Logger()
	return &logger
}
