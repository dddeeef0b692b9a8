package locator

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"checkin-agent/internal/application/port/output"
	"checkin-agent/internal/domain/entity"
	"checkin-agent/internal/infrastructure/logger"
	"checkin-agent/internal/usecase/waiter"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubElement struct {
	id     string
	hidden bool
}

func (e *stubElement) Text(context.Context) (string, error)               { return e.id, nil }
func (e *stubElement) Attribute(context.Context, string) (*string, error) { return nil, nil }
func (e *stubElement) Visible(context.Context) (bool, error)              { return !e.hidden, nil }
func (e *stubElement) Fill(context.Context, string) error                 { return nil }
func (e *stubElement) DispatchClick(context.Context) error                { return nil }

type probeLog struct {
	mu    sync.Mutex
	times map[string][]time.Duration
}

// stubFinder returns elements keyed by query value and records when each
// query was probed.
type stubFinder struct {
	start    time.Time
	elements map[string]*stubElement
	errs     map[string]error
	log      probeLog
}

func newStubFinder() *stubFinder {
	return &stubFinder{
		start:    time.Now(),
		elements: map[string]*stubElement{},
		errs:     map[string]error{},
		log:      probeLog{times: map[string][]time.Duration{}},
	}
}

func (f *stubFinder) Find(_ context.Context, q entity.Query) (output.ElementHandle, error) {
	f.log.mu.Lock()
	f.log.times[q.Value] = append(f.log.times[q.Value], time.Since(f.start))
	f.log.mu.Unlock()

	if err, ok := f.errs[q.Value]; ok {
		return nil, err
	}
	if el, ok := f.elements[q.Value]; ok {
		return el, nil
	}
	return nil, entity.ErrNotFound
}

func (f *stubFinder) probes(value string) []time.Duration {
	f.log.mu.Lock()
	defer f.log.mu.Unlock()
	return append([]time.Duration(nil), f.log.times[value]...)
}

func newLocator() *ElementLocator {
	log := logger.NewNop()
	return New(waiter.New(log), log, 5*time.Millisecond)
}

func spec(values ...string) entity.LocatorSpec {
	s := entity.LocatorSpec{Name: "target"}
	for _, v := range values {
		s.Candidates = append(s.Candidates, entity.Query{Kind: entity.QueryCSS, Value: v})
	}
	return s
}

func TestResolve_FirstCandidateWins(t *testing.T) {
	f := newStubFinder()
	f.elements["#a"] = &stubElement{id: "a"}
	f.elements["#b"] = &stubElement{id: "b"}

	h, err := newLocator().Resolve(context.Background(), f, spec("#a", "#b"), time.Second)

	require.NoError(t, err)
	assert.Equal(t, "a", h.(*stubElement).id)
	assert.Empty(t, f.probes("#b"))
}

func TestResolve_FallbackUsesFairShare(t *testing.T) {
	const timeout = 300 * time.Millisecond
	const share = timeout / 3
	const slack = 60 * time.Millisecond

	f := newStubFinder()
	f.elements["#third"] = &stubElement{id: "third"}

	h, err := newLocator().Resolve(context.Background(), f, spec("#first", "#second", "#third"), timeout)

	require.NoError(t, err)
	assert.Equal(t, "third", h.(*stubElement).id)

	first := f.probes("#first")
	require.NotEmpty(t, first)
	assert.Less(t, first[len(first)-1], share+slack, "first candidate overran its share")

	second := f.probes("#second")
	require.NotEmpty(t, second)
	assert.Less(t, second[len(second)-1], 2*share+slack, "second candidate overran its share")

	third := f.probes("#third")
	require.Len(t, third, 1)
	assert.Less(t, third[0], timeout)
}

func TestResolve_AllMissing(t *testing.T) {
	f := newStubFinder()
	start := time.Now()

	_, err := newLocator().Resolve(context.Background(), f, spec("#a", "#b"), 60*time.Millisecond)

	assert.ErrorIs(t, err, entity.ErrNotFound)
	assert.GreaterOrEqual(t, time.Since(start), 60*time.Millisecond)
	assert.NotEmpty(t, f.probes("#a"))
	assert.NotEmpty(t, f.probes("#b"))
}

func TestResolve_ProbeErrorsDoNotAbort(t *testing.T) {
	f := newStubFinder()
	f.errs["#broken"] = errors.New("invalid selector")
	f.elements["#ok"] = &stubElement{id: "ok"}

	h, err := newLocator().Resolve(context.Background(), f, spec("#broken", "#ok"), 100*time.Millisecond)

	require.NoError(t, err)
	assert.Equal(t, "ok", h.(*stubElement).id)
}

func TestResolve_HiddenSkippedWhenVisibleRequired(t *testing.T) {
	f := newStubFinder()
	f.elements["#hidden"] = &stubElement{id: "hidden", hidden: true}
	f.elements["#shown"] = &stubElement{id: "shown"}

	s := spec("#hidden", "#shown")
	s.Visible = true

	h, err := newLocator().Resolve(context.Background(), f, s, 100*time.Millisecond)

	require.NoError(t, err)
	assert.Equal(t, "shown", h.(*stubElement).id)
}

func TestResolve_EmptySpec(t *testing.T) {
	_, err := newLocator().Resolve(context.Background(), newStubFinder(), entity.LocatorSpec{Name: "none"}, time.Second)
	assert.ErrorIs(t, err, entity.ErrNotFound)
}

func TestPresent(t *testing.T) {
	f := newStubFinder()
	l := newLocator()

	_, ok := l.Present(context.Background(), f, spec("#a", "#b"))
	assert.False(t, ok)

	f.elements["#b"] = &stubElement{id: "b"}
	h, ok := l.Present(context.Background(), f, spec("#a", "#b"))
	assert.True(t, ok)
	assert.Equal(t, "b", h.(*stubElement).id)
}
