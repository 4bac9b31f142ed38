package service

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeService struct {
	name     string
	deps     []string
	log      *[]string
	initErr  error
	startErr error
	stopErr  error
	args     []any
}

func (f *fakeService) Name() string           { return f.name }
func (f *fakeService) Dependencies() []string { return f.deps }
func (f *fakeService) Init(args ...any) error {
	f.args = args
	*f.log = append(*f.log, "init:"+f.name)
	return f.initErr
}
func (f *fakeService) Start() error {
	*f.log = append(*f.log, "start:"+f.name)
	return f.startErr
}
func (f *fakeService) Stop() error {
	*f.log = append(*f.log, "stop:"+f.name)
	return f.stopErr
}

func TestHub_LifecycleOrder(t *testing.T) {
	var log []string
	h := NewHub(nil)
	require.NoError(t, h.Register(&fakeService{name: "presenter", deps: []string{"audio", "status"}, log: &log}))
	require.NoError(t, h.Register(&fakeService{name: "status", log: &log}))
	audio := &fakeService{name: "audio", log: &log}
	require.NoError(t, h.Register(audio))
	assert.Error(t, h.Register(&fakeService{name: "audio", log: &log}))

	require.NoError(t, h.InitAll(map[string][]any{"audio": {true}}))
	require.NoError(t, h.StartAll())
	require.NoError(t, h.StopAll())

	assert.Equal(t, []string{
		"init:audio", "init:status", "init:presenter",
		"start:audio", "start:status", "start:presenter",
		"stop:presenter", "stop:status", "stop:audio",
	}, log)
	assert.Equal(t, []any{true}, audio.args)
	assert.Equal(t, []string{"audio", "presenter", "status"}, h.Names())
	assert.Same(t, audio, MustGet[*fakeService](h, "audio"))
	assert.Panics(t, func() { MustGet[*fakeService](h, "missing") })
}

func TestHub_StartFailureRollsBack(t *testing.T) {
	var log []string
	h := NewHub(nil)
	require.NoError(t, h.Register(&fakeService{name: "a", log: &log}))
	require.NoError(t, h.Register(&fakeService{name: "b", deps: []string{"a"}, log: &log, startErr: errors.New("no terminal")}))

	require.NoError(t, h.InitAll(nil))
	err := h.StartAll()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "service b start failed")
	assert.Equal(t, []string{"init:a", "init:b", "start:a", "start:b", "stop:a"}, log)
	assert.NoError(t, h.StopAll(), "nothing left running")
}

func TestHub_DependencyErrors(t *testing.T) {
	var log []string
	h := NewHub(nil)
	require.NoError(t, h.Register(&fakeService{name: "a", deps: []string{"b"}, log: &log}))
	require.NoError(t, h.Register(&fakeService{name: "b", deps: []string{"a"}, log: &log}))
	assert.ErrorContains(t, h.InitAll(nil), "circular")

	h = NewHub(nil)
	require.NoError(t, h.Register(&fakeService{name: "a", deps: []string{"ghost"}, log: &log}))
	assert.ErrorContains(t, h.InitAll(nil), "unregistered")
	assert.Error(t, h.StartAll())
}

func TestHub_StopAllJoinsErrors(t *testing.T) {
	var log []string
	h := NewHub(nil)
	require.NoError(t, h.Register(&fakeService{name: "a", log: &log, stopErr: errors.New("a")}))
	require.NoError(t, h.Register(&fakeService{name: "b", log: &log, stopErr: errors.New("b")}))
	require.NoError(t, h.InitAll(nil))
	require.NoError(t, h.StartAll())
	err := h.StopAll()
	assert.ErrorContains(t, err, "service a stop")
	assert.ErrorContains(t, err, "service b stop")
}
