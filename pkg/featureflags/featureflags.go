package featureflags

import (
	"context"

	"license-tracker/pkg/config"

	"github.com/Flagsmith/flagsmith-go-client/v2"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("featureflags", fx.Provide(ProvideFeatureFlag))

// FeatureFlag answers whether a named feature is switched on. Unknown
// features and an unreachable flag service count as enabled.
type FeatureFlag interface {
	IsEnabled(ctx context.Context, feature string) bool
}

type flagSource interface {
	GetEnvironmentFlags() (flagsmith.Flags, error)
}

type featureflag struct {
	client flagSource
}

type FeatureParams struct {
	fx.In
	Config *config.Config
}

func ProvideFeatureFlag(p FeatureParams) FeatureFlag {
	if p.Config.Flagsmith.ApiKey == "" {
		return &featureflag{}
	}

	opts := []flagsmith.Option{
		flagsmith.WithAnalytics(),
	}
	if p.Config.Flagsmith.Addr != "" {
		opts = append(opts, flagsmith.WithBaseURL(p.Config.Flagsmith.Addr))
	}

	return &featureflag{
		client: flagsmith.NewClient(p.Config.Flagsmith.ApiKey, opts...),
	}
}

func (s *featureflag) IsEnabled(ctx context.Context, feature string) bool {
	if s.client == nil {
		return true
	}

	flags, err := s.client.GetEnvironmentFlags()
	if err != nil {
		zap.L().Warn("feature flags unavailable, assuming enabled", zap.String("feature", feature), zap.Error(err))
		return true
	}

	for _, f := range flags.AllFlags() {
		if f.FeatureName == feature {
			return f.Enabled
		}
	}
	return true
}
