package domain_test

import (
	"encoding/json"
	"testing"

	"github.com/aretw0/trustroute/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestAction_Text(t *testing.T) {
	cases := []struct {
		in   string
		want domain.Action
	}{
		{"FLOOD", domain.Flood},
		{"flood", domain.Flood},
		{" 3 ", 3},
		{"4294967040", domain.MaxPort},
	}
	for _, tc := range cases {
		got, err := domain.ParseAction(tc.in)
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, got)
	}

	for _, bad := range []string{"", "0", "-1", "port1", "4294967293"} {
		_, err := domain.ParseAction(bad)
		assert.ErrorIs(t, err, domain.ErrInvalidArgument, bad)
	}
	assert.Equal(t, "FLOOD", domain.Flood.String())
	assert.Equal(t, "12", domain.Action(12).String())
}

func TestAction_JSON(t *testing.T) {
	data, err := json.Marshal([]domain.Action{domain.Flood, 2})
	require.NoError(t, err)
	assert.JSONEq(t, `["FLOOD","2"]`, string(data))

	var actions []domain.Action
	require.NoError(t, json.Unmarshal([]byte(`[1, "2", "FLOOD"]`), &actions))
	assert.Equal(t, []domain.Action{1, 2, domain.Flood}, actions)

	assert.Error(t, json.Unmarshal([]byte(`[0]`), &actions))
}

func TestAction_YAML(t *testing.T) {
	var doc struct {
		Candidates []domain.Action `yaml:"candidates"`
	}
	require.NoError(t, yaml.Unmarshal([]byte("candidates: [1, FLOOD, \"5\"]"), &doc))
	assert.Equal(t, []domain.Action{1, domain.Flood, 5}, doc.Candidates)
}

func TestNodeID(t *testing.T) {
	assert.NoError(t, domain.NodeID("00:00:00:00:00:01").Validate())
	assert.NoError(t, domain.NodeID("host-7").Validate())
	for _, bad := range []domain.NodeID{"", "a|b", "a b", "a\tb", "a\x00"} {
		assert.ErrorIs(t, bad.Validate(), domain.ErrInvalidArgument, "%q", string(bad))
	}

	id, err := domain.ParseNodeID("00-1A-2B-3C-4D-5E")
	require.NoError(t, err)
	assert.Equal(t, domain.NodeID("00:1a:2b:3c:4d:5e"), id)

	_, err = domain.ParseNodeID("not-a-mac")
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)

	src, dst, ok := domain.SplitPairKey(domain.PairKey("a", "b"))
	assert.True(t, ok)
	assert.Equal(t, domain.NodeID("a"), src)
	assert.Equal(t, domain.NodeID("b"), dst)
}

func TestActionValues(t *testing.T) {
	var empty domain.ActionValues
	assert.Equal(t, domain.Flood, empty.Best().Action)
	assert.Equal(t, 0.0, empty.Max())

	av := domain.ActionValues{{Action: domain.Flood, Value: 0.4}}
	av2 := av.With(3, 0.7).With(5, 0.7).With(domain.Flood, 0.1)

	assert.Equal(t, domain.ActionValues{{Action: domain.Flood, Value: 0.4}}, av, "With does not mutate the receiver")
	assert.Equal(t, domain.ActionValues{
		{Action: domain.Flood, Value: 0.1},
		{Action: 3, Value: 0.7},
		{Action: 5, Value: 0.7},
	}, av2)
	assert.Equal(t, domain.ActionValue{Action: 3, Value: 0.7}, av2.Best(), "Ties go to the first inserted action")
	assert.Equal(t, 0.7, av2.Max())

	v, ok := av2.Get(5)
	assert.True(t, ok)
	assert.Equal(t, 0.7, v)
	_, ok = av2.Get(9)
	assert.False(t, ok)

	negative := domain.ActionValues{{Action: domain.Flood, Value: -2}, {Action: 1, Value: -1}}
	assert.Equal(t, -1.0, negative.Max())
}

func TestHyperparameters_Validate(t *testing.T) {
	assert.NoError(t, domain.DefaultHyperparameters().Validate())

	mutate := []func(*domain.Hyperparameters){
		func(h *domain.Hyperparameters) { h.LearningRate = 0 },
		func(h *domain.Hyperparameters) { h.LearningRate = 1.5 },
		func(h *domain.Hyperparameters) { h.DiscountFactor = 1 },
		func(h *domain.Hyperparameters) { h.TrustDecay = -0.1 },
		func(h *domain.Hyperparameters) { h.TrustThreshold = 2 },
		func(h *domain.Hyperparameters) { h.DefaultTrust = 1.1 },
	}
	for i, m := range mutate {
		h := domain.DefaultHyperparameters()
		m(&h)
		assert.ErrorIs(t, h.Validate(), domain.ErrInvalidArgument, "case %d", i)
	}
}
