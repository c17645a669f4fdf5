package expiry

import (
	"time"

	"license-tracker/pkg/config"
	"license-tracker/pkg/featureflags"
	"license-tracker/pkg/notify"
	"license-tracker/services/license"

	"go.uber.org/fx"
)

var Module = fx.Module("expiry.scanner",
	fx.Provide(
		newStore,
		NewScanner,
	),
)

type Params struct {
	fx.In

	Config   *config.Config
	Store    Store
	Channels *notify.Channels         `optional:"true"`
	Flags    featureflags.FeatureFlag `optional:"true"`
}

func newStore(repo license.Repository) Store {
	return repo
}

func NewScanner(p Params) (*Scanner, error) {
	sc := p.Config.Scanner
	policy, err := NewPolicy(sc.Milestones, sc.UrgentCutoff, sc.Expression)
	if err != nil {
		return nil, err
	}

	loc, err := LoadLocation(sc.Timezone)
	if err != nil {
		return nil, err
	}

	return newScanner(p.Store, policy, p.Channels, p.Flags, loc), nil
}

// LoadLocation resolves an IANA zone name, UTC when empty.
func LoadLocation(name string) (*time.Location, error) {
	if name == "" {
		return time.UTC, nil
	}
	return time.LoadLocation(name)
}
