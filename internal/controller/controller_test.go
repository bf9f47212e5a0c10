package controller

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/Veraticus/hntax/internal/common"
	"github.com/Veraticus/hntax/internal/model"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var validAddress = strings.Repeat("a", model.AddressLength)

type pollReply struct {
	err    error
	result model.PollResult
}

type fakeQueue struct {
	enqueueErr error
	replies    []pollReply
	calls      []string
	enqueued   int
	polled     int
}

func (q *fakeQueue) Enqueue(_ context.Context, addr model.Address, year model.TaxYear) error {
	q.enqueued++
	q.calls = append(q.calls, fmt.Sprintf("enqueue %s %d", addr.Short(), year))
	return q.enqueueErr
}

func (q *fakeQueue) Poll(_ context.Context, addr model.Address, year model.TaxYear) (model.PollResult, error) {
	q.polled++
	q.calls = append(q.calls, fmt.Sprintf("poll %s %d", addr.Short(), year))
	if len(q.replies) == 0 {
		return model.PollResult{}, nil
	}
	reply := q.replies[0]
	q.replies = q.replies[1:]
	return reply.result, reply.err
}

type fakeClock struct {
	delays []time.Duration
}

func (f *fakeClock) schedule(d time.Duration, fn func(time.Time) tea.Msg) tea.Cmd {
	f.delays = append(f.delays, d)
	return func() tea.Msg { return fn(time.Time{}) }
}

func readyResult() model.PollResult {
	return model.PollResult{
		Ready: true,
		Data: model.DataSet{{
			Date:     model.NewDate(2021, time.January, 1),
			Earnings: decimal.RequireFromString("1.5"),
			Tokens:   decimal.RequireFromString("0.2"),
			Price:    decimal.RequireFromString("7.5"),
		}},
	}
}

func newTestController(t *testing.T, q *fakeQueue, clock *fakeClock) *Controller {
	t.Helper()
	c, err := New(q, WithScheduler(clock.schedule))
	require.NoError(t, err)
	return c
}

func TestNew_RequiresQueue(t *testing.T) {
	_, err := New(nil)
	assert.Error(t, err)
}

func TestNew_Defaults(t *testing.T) {
	c, err := New(&fakeQueue{})
	require.NoError(t, err)
	assert.Equal(t, StateInitial, c.State())
	assert.Equal(t, Regions{}, c.Regions())
	assert.Equal(t, DefaultPollInterval, c.PollInterval())
	assert.Nil(t, c.Result())
}

func TestSetState_Regions(t *testing.T) {
	tests := []struct {
		name   string
		from   Regions
		target UIState
		want   Regions
	}{
		{
			name:   "initial hides everything",
			from:   Regions{Loaded: true, CSV: true, InputError: true},
			target: StateInitial,
			want:   Regions{},
		},
		{
			name:   "bad address only marks input",
			from:   Regions{Loaded: true},
			target: StateBadAddress,
			want:   Regions{Loaded: true, InputError: true},
		},
		{
			name:   "loading clears results and input error",
			from:   Regions{Loaded: true, CSV: true, InputError: true, Error: true},
			target: StateLoading,
			want:   Regions{Loading: true},
		},
		{
			name:   "loaded replaces loading",
			from:   Regions{Loading: true},
			target: StateLoaded,
			want:   Regions{Loaded: true},
		},
		{
			name:   "failed shows error",
			from:   Regions{Loading: true},
			target: StateFailed,
			want:   Regions{Error: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestController(t, &fakeQueue{}, &fakeClock{})
			c.regions = tt.from

			c.SetState(tt.target)
			assert.Equal(t, tt.target, c.State())
			assert.Equal(t, tt.want, c.Regions())

			c.SetState(tt.target)
			assert.Equal(t, tt.want, c.Regions(), "second call must not change anything")
		})
	}
}

func TestSubmit_InvalidAddress(t *testing.T) {
	for _, addr := range []string{"", "abc", validAddress + "a", strings.Repeat("a", 49) + "é"} {
		t.Run(fmt.Sprintf("%d bytes", len(addr)), func(t *testing.T) {
			q := &fakeQueue{}
			c := newTestController(t, q, &fakeClock{})

			cmd := c.Submit(addr, 2020)
			assert.Nil(t, cmd)
			assert.Equal(t, StateBadAddress, c.State())
			assert.True(t, c.Regions().InputError)
			assert.ErrorIs(t, c.Err(), common.ErrInvalidAddress)
			assert.Zero(t, q.enqueued)
			assert.Zero(t, q.polled)
		})
	}
}

func TestSubmit_InvalidTaxYear(t *testing.T) {
	q := &fakeQueue{}
	c := newTestController(t, q, &fakeClock{})

	assert.Nil(t, c.Submit(validAddress, 1999))
	assert.Equal(t, StateBadAddress, c.State())
	assert.ErrorIs(t, c.Err(), common.ErrInvalidTaxYear)
	assert.Zero(t, q.enqueued)
}

func TestSubmit_Valid(t *testing.T) {
	q := &fakeQueue{}
	c := newTestController(t, q, &fakeClock{})
	c.SetState(StateBadAddress)

	cmd := c.Submit(validAddress, 2021)
	require.NotNil(t, cmd)
	assert.Equal(t, StateLoading, c.State())
	assert.Equal(t, Regions{Loading: true}, c.Regions())
	assert.Zero(t, q.enqueued, "enqueue happens when the command runs")

	msg := cmd()
	enq, ok := msg.(EnqueuedMsg)
	require.True(t, ok)
	assert.NoError(t, enq.Err)
	assert.Equal(t, 1, q.enqueued)

	addr, year := c.Request()
	assert.Equal(t, model.Address(validAddress), addr)
	assert.Equal(t, model.TaxYear(2021), year)
}

func TestSubmit_MultibyteAddress(t *testing.T) {
	q := &fakeQueue{}
	c := newTestController(t, q, &fakeClock{})

	require.NotNil(t, c.Submit(strings.Repeat("é", model.AddressLength), 2021))
	assert.Equal(t, StateLoading, c.State())
}

func TestLoad_EntersLoadedBeforeFormatting(t *testing.T) {
	q := &fakeQueue{}
	c := newTestController(t, q, &fakeClock{})
	require.NotNil(t, c.Submit(validAddress, 2021))

	assert.Panics(t, func() { c.load(model.DataSet{}) })
	assert.Equal(t, StateLoaded, c.State())
	assert.True(t, c.Regions().Loaded)
	assert.Nil(t, c.Result())
}

func TestUpdate_ImmediateReady(t *testing.T) {
	q := &fakeQueue{replies: []pollReply{{result: readyResult()}}}
	clock := &fakeClock{}
	c := newTestController(t, q, clock)

	state, err := Run(context.Background(), c, c.Submit(validAddress, 2020), nil)
	require.NoError(t, err)
	assert.Equal(t, StateLoaded, state)
	assert.Equal(t, Regions{Loaded: true}, c.Regions())
	assert.Empty(t, clock.delays)
	assert.Equal(t, 1, c.Polls())

	result := c.Result()
	require.NotNil(t, result)
	assert.Equal(t, "1.5", result.Summary.Total.String())
	assert.Contains(t, result.Summary.TotalText, "1.50")
	assert.Equal(t, "date, earnings, tokens mined, daily price\n2021-01-01,1.5,0.2,7.5\n", result.Summary.CSV)
}

func TestUpdate_PollsUntilReady(t *testing.T) {
	q := &fakeQueue{replies: []pollReply{
		{result: model.PollResult{}},
		{result: model.PollResult{}},
		{result: readyResult()},
	}}
	clock := &fakeClock{}
	c := newTestController(t, q, clock)

	state, err := Run(context.Background(), c, c.Submit(validAddress, 2020), nil)
	require.NoError(t, err)
	assert.Equal(t, StateLoaded, state)
	assert.Equal(t, 3, c.Polls())
	assert.Equal(t, []time.Duration{DefaultPollInterval, DefaultPollInterval}, clock.delays)

	short := model.Address(validAddress).Short()
	assert.Equal(t, []string{
		"enqueue " + short + " 2020",
		"poll " + short + " 2020",
		"poll " + short + " 2020",
		"poll " + short + " 2020",
	}, q.calls)
}

func TestUpdate_NoPollBeforeDelay(t *testing.T) {
	q := &fakeQueue{replies: []pollReply{{result: model.PollResult{}}}}
	clock := &fakeClock{}
	c := newTestController(t, q, clock)

	enq := c.Submit(validAddress, 2020)()
	poll := c.Update(enq)
	require.NotNil(t, poll)

	wait := c.Update(poll())
	require.NotNil(t, wait)
	assert.Equal(t, StateLoading, c.State())
	assert.Equal(t, []time.Duration{10 * time.Second}, clock.delays)
	assert.Equal(t, 1, q.polled)

	due := wait()
	assert.Equal(t, PollDueMsg{Chain: enq.(EnqueuedMsg).Chain}, due)
	assert.Equal(t, 1, q.polled, "no poll until the due message is handled")

	next := c.Update(due)
	require.NotNil(t, next)
	next()
	assert.Equal(t, 2, q.polled)
}

func TestUpdate_Failures(t *testing.T) {
	transport := fmt.Errorf("%w: connection refused", common.ErrTransport)

	tests := []struct {
		name    string
		queue   *fakeQueue
		polls   int
		enqueue int
	}{
		{
			name:    "enqueue fails",
			queue:   &fakeQueue{enqueueErr: transport},
			polls:   0,
			enqueue: 1,
		},
		{
			name:    "first poll fails",
			queue:   &fakeQueue{replies: []pollReply{{err: transport}}},
			polls:   1,
			enqueue: 1,
		},
		{
			name: "poll fails after retries",
			queue: &fakeQueue{replies: []pollReply{
				{result: model.PollResult{}},
				{err: transport},
			}},
			polls:   2,
			enqueue: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clock := &fakeClock{}
			c := newTestController(t, tt.queue, clock)

			state, err := Run(context.Background(), c, c.Submit(validAddress, 2022), nil)
			require.NoError(t, err)
			assert.Equal(t, StateFailed, state)
			assert.Equal(t, Regions{Error: true}, c.Regions())
			assert.ErrorIs(t, c.Err(), common.ErrTransport)
			assert.Nil(t, c.Result())
			assert.Equal(t, tt.polls, tt.queue.polled)
			assert.Equal(t, tt.enqueue, tt.queue.enqueued)
		})
	}
}

func TestUpdate_FailedIsTerminal(t *testing.T) {
	q := &fakeQueue{replies: []pollReply{{err: errors.New("boom")}}}
	c := newTestController(t, q, &fakeClock{})

	enq := c.Submit(validAddress, 2020)()
	c.Update(c.Update(enq)())
	require.Equal(t, StateFailed, c.State())

	chain := enq.(EnqueuedMsg).Chain
	assert.Nil(t, c.Update(PollDueMsg{Chain: chain}))
	assert.Nil(t, c.Update(PolledMsg{Chain: chain, Result: readyResult()}))
	assert.Equal(t, StateFailed, c.State())
	assert.Equal(t, 1, q.polled)
}

func TestUpdate_StaleChainDropped(t *testing.T) {
	q := &fakeQueue{replies: []pollReply{{result: model.PollResult{}}}}
	c := newTestController(t, q, &fakeClock{})

	first := c.Submit(validAddress, 2020)
	firstMsg := first()

	second := c.Submit(validAddress, 2021)
	require.NotNil(t, second)

	assert.Nil(t, c.Update(firstMsg))
	assert.Nil(t, c.Update(PolledMsg{Chain: firstMsg.(EnqueuedMsg).Chain, Result: readyResult()}))
	assert.Equal(t, StateLoading, c.State())
	assert.Zero(t, c.Polls())

	_, year := c.Request()
	assert.Equal(t, model.TaxYear(2021), year)
}

func TestUpdate_IgnoresUnknownMessages(t *testing.T) {
	c := newTestController(t, &fakeQueue{}, &fakeClock{})
	assert.Nil(t, c.Update(tea.KeyMsg{}))
	assert.Equal(t, StateInitial, c.State())
}

func TestResubmitAfterLoaded(t *testing.T) {
	q := &fakeQueue{replies: []pollReply{{result: readyResult()}, {result: readyResult()}}}
	c := newTestController(t, q, &fakeClock{})

	_, err := Run(context.Background(), c, c.Submit(validAddress, 2020), nil)
	require.NoError(t, err)
	c.ToggleCSV()
	require.True(t, c.Regions().CSV)

	cmd := c.Submit(validAddress, 2021)
	require.NotNil(t, cmd)
	assert.Equal(t, Regions{Loading: true}, c.Regions())
	assert.Nil(t, c.Result())

	state, err := Run(context.Background(), c, cmd, nil)
	require.NoError(t, err)
	assert.Equal(t, StateLoaded, state)
	assert.False(t, c.Regions().CSV)
}

func TestToggleCSV(t *testing.T) {
	q := &fakeQueue{replies: []pollReply{{result: readyResult()}}}
	c := newTestController(t, q, &fakeClock{})

	c.ToggleCSV()
	assert.False(t, c.Regions().CSV, "no effect outside Loaded")

	_, err := Run(context.Background(), c, c.Submit(validAddress, 2020), nil)
	require.NoError(t, err)

	c.ToggleCSV()
	assert.True(t, c.Regions().CSV)
	c.ToggleCSV()
	assert.False(t, c.Regions().CSV)

	c.ToggleCSV()
	c.SetState(StateFailed)
	assert.False(t, c.Regions().CSV)
}

func TestReset(t *testing.T) {
	q := &fakeQueue{}
	c := newTestController(t, q, &fakeClock{})

	msg := c.Submit(validAddress, 2020)()
	c.Reset()
	assert.Equal(t, StateInitial, c.State())
	assert.Equal(t, Regions{}, c.Regions())
	assert.Nil(t, c.Update(msg))
	assert.Zero(t, q.polled)
}

func TestRun_ProgressCallback(t *testing.T) {
	q := &fakeQueue{replies: []pollReply{{result: model.PollResult{}}, {result: readyResult()}}}
	c := newTestController(t, q, &fakeClock{})

	var seen []UIState
	_, err := Run(context.Background(), c, c.Submit(validAddress, 2020), func(c *Controller) {
		seen = append(seen, c.State())
	})
	require.NoError(t, err)
	require.NotEmpty(t, seen)
	assert.Equal(t, StateLoaded, seen[len(seen)-1])
}

func TestRun_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	q := &fakeQueue{}
	c, err := New(q, WithScheduler(ContextScheduler(ctx)), WithPollInterval(time.Hour))
	require.NoError(t, err)

	cmd := c.Submit(validAddress, 2020)
	state, err := Run(ctx, c, cmd, func(*Controller) {
		if q.polled == 1 {
			cancel()
		}
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, StateLoading, state)
	assert.Equal(t, 1, q.polled)
}

func TestContextScheduler_Fires(t *testing.T) {
	schedule := ContextScheduler(context.Background())
	msg := schedule(time.Millisecond, func(time.Time) tea.Msg { return PollDueMsg{Chain: 7} })()
	assert.Equal(t, PollDueMsg{Chain: 7}, msg)
}

func TestUIState_String(t *testing.T) {
	assert.Equal(t, "loading", StateLoading.String())
	assert.Equal(t, "unknown", UIState(42).String())
	assert.True(t, StateLoaded.Terminal())
	assert.True(t, StateFailed.Terminal())
	assert.False(t, StateBadAddress.Terminal())
}
