package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/aretw0/trustroute"
	"github.com/aretw0/trustroute/pkg/adapters/memory"
	"github.com/aretw0/trustroute/pkg/controller"
	"github.com/aretw0/trustroute/pkg/domain"
	"github.com/aretw0/trustroute/pkg/observability"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	hostA = "aa:aa:aa:aa:aa:01"
	hostB = "bb:bb:bb:bb:bb:02"
)

// opaqueStore hides Snapshot from the engine.
type opaqueStore struct{ *memory.Store }

func (opaqueStore) Snapshot() {}

func newTestServer(t *testing.T, opts ...trustroute.Option) (*trustroute.Engine, http.Handler) {
	t.Helper()
	store := memory.NewStore(memory.WithSeeder(func() float64 { return 0.25 }))
	eng, err := trustroute.New(append([]trustroute.Option{trustroute.WithStore(store)}, opts...)...)
	require.NoError(t, err)
	return eng, NewHandler(eng, "", WithSwitch(controller.New(eng)))
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestPostDecision(t *testing.T) {
	_, h := newTestServer(t)

	w := do(t, h, "POST", "/v1/decisions", `{"src":"`+hostA+`","dst":"`+hostB+`","candidates":[1,"2"]}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var d domain.Decision
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &d))
	assert.Equal(t, domain.Flood, d.Action)
	assert.True(t, d.Seeded)
	assert.True(t, d.InCandidates, "FLOOD is always admissible")
	assert.Contains(t, w.Body.String(), `"action":"FLOOD"`)
}

func TestPostDecision_Errors(t *testing.T) {
	_, h := newTestServer(t)

	w := do(t, h, "POST", "/v1/decisions", `{"src":"","dst":"`+hostB+`"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, h, "POST", "/v1/decisions", `not json`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid request body")
}

func TestPostOutcome(t *testing.T) {
	eng, h := newTestServer(t)
	ctx := context.Background()

	w := do(t, h, "POST", "/v1/outcomes",
		`{"src":"`+hostA+`","dst":"`+hostB+`","action":3,"reward":1,"node":"`+hostA+`","success_rate":0}`)
	require.Equal(t, http.StatusNoContent, w.Code, w.Body.String())

	trust, err := eng.Trust(ctx, hostA)
	require.NoError(t, err)
	assert.InDelta(t, 0.9, trust, 1e-9)

	actions, found, err := eng.Actions(ctx, hostA, hostB)
	require.NoError(t, err)
	require.True(t, found)
	v, ok := actions.Get(3)
	require.True(t, ok)
	assert.Equal(t, 0.5, v)

	w = do(t, h, "POST", "/v1/outcomes",
		`{"src":"`+hostA+`","dst":"`+hostB+`","action":"9999999999","reward":1,"node":"`+hostA+`","success_rate":0.5}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetTrustAndFlows(t *testing.T) {
	eng, h := newTestServer(t)
	_, err := eng.UpdateTrust(context.Background(), hostA, 0)
	require.NoError(t, err)

	w := do(t, h, "GET", "/v1/trust/"+hostA, "")
	require.Equal(t, http.StatusOK, w.Code)
	var tr TrustResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &tr))
	assert.InDelta(t, 0.9, tr.Trust, 1e-9)

	w = do(t, h, "GET", "/v1/flows/"+hostA+"/"+hostB, "")
	require.Equal(t, http.StatusOK, w.Code)
	var fr FlowResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &fr))
	assert.False(t, fr.Found)
	assert.Empty(t, fr.Actions)

	_, found, err := eng.Actions(context.Background(), hostA, hostB)
	require.NoError(t, err)
	assert.False(t, found, "Reading a flow never seeds it")
}

func TestGetSnapshot(t *testing.T) {
	_, h := newTestServer(t)
	do(t, h, "POST", "/v1/decisions", `{"src":"`+hostA+`","dst":"`+hostB+`"}`)

	w := do(t, h, "GET", "/v1/snapshot", "")
	require.Equal(t, http.StatusOK, w.Code)
	var before domain.Snapshot
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &before))
	assert.Empty(t, before.Trust, "Decisions never write trust")

	w = do(t, h, "POST", "/v1/outcomes",
		`{"src":"`+hostA+`","dst":"`+hostB+`","action":3,"reward":1,"node":"`+hostA+`","success_rate":1}`)
	require.Equal(t, http.StatusNoContent, w.Code, w.Body.String())

	w = do(t, h, "GET", "/v1/snapshot", "")
	require.Equal(t, http.StatusOK, w.Code)
	var snap domain.Snapshot
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &snap))
	require.Len(t, snap.QTable, 1)
	assert.Equal(t, domain.NodeID(hostA), snap.QTable[0].Src)
	assert.Len(t, snap.Trust, 1)

	eng, err := trustroute.New(trustroute.WithStore(opaqueStore{memory.NewStore()}))
	require.NoError(t, err)
	w = do(t, NewHandler(eng, ""), "GET", "/v1/snapshot", "")
	assert.Equal(t, http.StatusNotImplemented, w.Code)
}

func TestSwitchRoutes(t *testing.T) {
	_, h := newTestServer(t)

	w := do(t, h, "POST", "/v1/switch-features", `{"datapath_id":1}`)
	require.Equal(t, http.StatusOK, w.Code)
	var mod controller.FlowMod
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &mod))
	assert.Equal(t, controller.PortOf(domain.ControllerPort), mod.Actions[0].Port)
	assert.Contains(t, w.Body.String(), `"port":"CONTROLLER"`)

	frame, err := controller.BuildEthernetFrame(
		[]byte{0xaa, 0xaa, 0xaa, 0xaa, 0xaa, 0x01},
		[]byte{0xbb, 0xbb, 0xbb, 0xbb, 0xbb, 0x02},
		controller.ExperimentalEtherType, nil)
	require.NoError(t, err)
	body, err := json.Marshal(controller.PacketIn{BufferID: controller.NoBuffer, InPort: 1, Data: frame})
	require.NoError(t, err)

	w = do(t, h, "POST", "/v1/packet-in", string(body))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var out controller.PacketOut
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	assert.Equal(t, frame, out.Data)
	assert.Equal(t, domain.NodeID(hostA), out.Decision.Src)

	w = do(t, h, "POST", "/v1/packet-in", `{"buffer_id":1,"data":"AAE="}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	eng, err := trustroute.New()
	require.NoError(t, err)
	w = do(t, NewHandler(eng, ""), "POST", "/v1/switch-features", `{"datapath_id":1}`)
	assert.Equal(t, http.StatusNotFound, w.Code, "Switch routes need WithSwitch")
}

func TestHealthAndMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics, err := observability.NewMetrics(reg)
	require.NoError(t, err)
	eng, err := trustroute.New(trustroute.WithLifecycleHooks(metrics.Hooks()))
	require.NoError(t, err)
	h := NewHandler(eng, "/custom-metrics", WithMetrics(reg))

	w := do(t, h, "GET", "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())

	w = do(t, h, "GET", "/info", "")
	assert.Contains(t, w.Body.String(), trustroute.Version)

	do(t, h, "POST", "/v1/decisions", `{"src":"`+hostA+`","dst":"`+hostB+`"}`)
	req := httptest.NewRequest("GET", "/custom-metrics", bytes.NewReader(nil))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "trustroute_decisions_total")
}
