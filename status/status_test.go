package status

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestMetricMap_GetCachesPointer(t *testing.T) {
	reg := NewRegistry()
	a := reg.Ints.Get(FrameAcquired)
	b := reg.Ints.Get(FrameAcquired)
	assert.Same(t, a, b)
	a.Add(3)
	assert.Equal(t, int64(3), b.Load())
	assert.True(t, reg.Ints.Has(FrameAcquired))
	assert.False(t, reg.Ints.Has(FrameSubmitted))
}

func TestAtomicFloat_Add(t *testing.T) {
	var f AtomicFloat
	f.Set(1.5)
	assert.Equal(t, 2.0, f.Add(0.5))
	assert.Equal(t, 2.0, f.Get())
}

func TestAtomicString_Truncates(t *testing.T) {
	var s AtomicString
	assert.Empty(t, s.Load())
	s.Store(strings.Repeat("x", MaxStringLen+5))
	assert.Len(t, s.Load(), MaxStringLen)
}

func TestStoreMax(t *testing.T) {
	reg := NewRegistry()
	m := reg.Ints.Get(BumpHighWater)
	StoreMax(m, 64)
	StoreMax(m, 16)
	assert.Equal(t, int64(64), m.Load())
}

func TestRegistry_Numeric(t *testing.T) {
	reg := NewRegistry()
	reg.Bools.Get(AudioEnabled).Store(true)
	reg.Ints.Get(GameScore).Store(120)
	reg.Floats.Get(FrameGateWait).Set(0.25)
	reg.Strings.Get(PresenterBackend).Store("headless")

	got := reg.Numeric()
	assert.Equal(t, map[string]float64{
		AudioEnabled:  1,
		GameScore:     120,
		FrameGateWait: 0.25,
	}, got)
	assert.Equal(t, 4, reg.TotalCount())
}

func TestCollector_ExportsRegistry(t *testing.T) {
	reg := NewRegistry()
	reg.Ints.Get(FrameCompleted).Store(7)
	reg.Strings.Get(PresenterBackend).Store("terminal")

	c := NewCollector(reg)
	assert.Equal(t, 2, testutil.CollectAndCount(c))

	promReg := prometheus.NewRegistry()
	require.NoError(t, promReg.Register(c))
	expected := `
# HELP gridshooter_frame_completed status metric frame.completed
# TYPE gridshooter_frame_completed gauge
gridshooter_frame_completed 7
`
	assert.NoError(t, testutil.GatherAndCompare(promReg, strings.NewReader(expected), "gridshooter_frame_completed"))
}

func TestServer_Handler(t *testing.T) {
	reg := NewRegistry()
	reg.Ints.Get(GameLevel).Store(2)
	srv, err := NewServer("127.0.0.1:0", reg, zap.NewNop())
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "gridshooter_game_level 2")
}

func TestService_Lifecycle(t *testing.T) {
	svc := NewService(nil)
	require.NoError(t, svc.Init())
	require.NoError(t, svc.Start())
	require.NoError(t, svc.Stop())
	assert.Nil(t, svc.Server())

	svc = NewService(zap.NewNop())
	require.NoError(t, svc.Init("127.0.0.1:0"))
	require.NotNil(t, svc.Server())
	svc.Registry().Ints.Get(GameScore).Store(40)
	require.NoError(t, svc.Start())
	require.NoError(t, svc.Stop())
	require.NoError(t, svc.Stop())
}

func TestAtomicString_TruncatesOnRuneBoundary(t *testing.T) {
	var s AtomicString
	// 31 ASCII bytes then a 3-byte rune straddling the limit
	s.Store(strings.Repeat("a", MaxStringLen-1) + "€")
	assert.Equal(t, strings.Repeat("a", MaxStringLen-1), s.Load())
}
