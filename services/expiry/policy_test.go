package expiry

import (
	"testing"

	"license-tracker/services/license"

	"github.com/stretchr/testify/require"
)

func TestIsNotifyDay(t *testing.T) {
	milestones := []int{45, 30, 15, 7, 1}
	cutoff := 3

	require.True(t, IsNotifyDay(30, milestones, nil))
	require.True(t, IsNotifyDay(1, milestones, nil))
	require.False(t, IsNotifyDay(29, milestones, nil))
	require.False(t, IsNotifyDay(0, milestones, nil))
	require.False(t, IsNotifyDay(-5, milestones, nil))

	require.True(t, IsNotifyDay(2, milestones, &cutoff))
	require.True(t, IsNotifyDay(-5, milestones, &cutoff))
	require.False(t, IsNotifyDay(3, milestones, &cutoff))
}

func TestNewPolicyDefaults(t *testing.T) {
	p, err := NewPolicy(nil, nil, "")
	require.NoError(t, err)

	l := &license.License{Name: "x"}
	for _, d := range DefaultMilestones {
		require.True(t, p.Match(d, l), d)
	}
	require.False(t, p.Match(10, l))
}

func TestPolicyExpression(t *testing.T) {
	p, err := NewPolicy([]int{30}, nil, "days_left < 0 && days_left % 7 == 0")
	require.NoError(t, err)

	l := &license.License{Name: "Acme", ExpiryDate: "2026-01-01"}
	require.True(t, p.Match(30, l))
	require.True(t, p.Match(-14, l))
	require.False(t, p.Match(-13, l))
	require.False(t, p.Match(14, l))

	desc := p.Describe()
	require.Equal(t, "days_left < 0 && days_left % 7 == 0", desc["expression"])
}

func TestPolicyExpressionOverName(t *testing.T) {
	p, err := NewPolicy([]int{30}, nil, `name.startsWith("prod-") && days_left <= 60`)
	require.NoError(t, err)

	require.True(t, p.Match(50, &license.License{Name: "prod-db"}))
	require.False(t, p.Match(50, &license.License{Name: "dev-db"}))
}

func TestNewPolicyRejectsInvalidExpression(t *testing.T) {
	_, err := NewPolicy(nil, nil, "days_left +")
	require.Error(t, err)

	_, err = NewPolicy(nil, nil, "days_left + 1")
	require.Error(t, err)

	_, err = NewPolicy(nil, nil, "unknown_attr > 1")
	require.Error(t, err)
}
