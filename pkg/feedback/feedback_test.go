package feedback_test

import (
	"context"
	"testing"

	"github.com/aretw0/trustroute/pkg/domain"
	"github.com/aretw0/trustroute/pkg/feedback"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStub(t *testing.T) {
	d := domain.Decision{Src: "a", Dst: "b", Action: 3}

	o, err := feedback.Stub().Outcome(context.Background(), d)
	require.NoError(t, err)
	assert.Equal(t, domain.Outcome{
		Src: "a", Dst: "b", Action: 3, Reward: 1, Node: "a", SuccessRate: 0.9,
	}, o)
}

func TestFunc(t *testing.T) {
	src := feedback.Func(func(_ context.Context, d domain.Decision) (domain.Outcome, error) {
		return domain.Outcome{Src: d.Src, Dst: d.Dst, Action: d.Action, Node: d.Dst, SuccessRate: 0.2}, nil
	})

	o, err := src.Outcome(context.Background(), domain.Decision{Src: "a", Dst: "b", Action: domain.Flood})
	require.NoError(t, err)
	assert.Equal(t, domain.NodeID("b"), o.Node)
	assert.Equal(t, 0.2, o.SuccessRate)
}
