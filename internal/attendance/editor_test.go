package attendance

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeSource struct {
	mu        sync.Mutex
	baselines map[string]*Baseline
	calls     int
	failAfter int
	err       error

	// gateCall blocks that call on release after closing started.
	gateCall int
	started  chan struct{}
	release  chan struct{}
}

func (f *fakeSource) Weekly(ctx context.Context, start, end time.Time) (*Baseline, error) {
	f.mu.Lock()
	call := f.calls + 1
	f.mu.Unlock()
	if f.gateCall > 0 && call == f.gateCall {
		close(f.started)
		<-f.release
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil && f.calls > f.failAfter {
		return nil, f.err
	}
	if b, ok := f.baselines[DateKey(start)]; ok {
		return b, nil
	}
	return NewBaseline(roster), nil
}

type fakeSubmitter struct {
	mu      sync.Mutex
	batches []Batch
	message string
	err     error
	started chan struct{}
	release chan struct{}
}

func (f *fakeSubmitter) SubmitBatch(ctx context.Context, batch Batch) (string, error) {
	if f.started != nil {
		close(f.started)
		<-f.release
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.batches = append(f.batches, batch)
	return f.message, f.err
}

type recordingNotifier struct {
	mu        sync.Mutex
	successes []string
	failures  []error
}

func (n *recordingNotifier) Success(message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.successes = append(n.successes, message)
}

func (n *recordingNotifier) Failure(err error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.failures = append(n.failures, err)
}

func newTestEditor(t *testing.T, source *fakeSource, submitter *fakeSubmitter, today string, confirm Confirmer) (*Editor, *recordingNotifier) {
	t.Helper()
	notifier := &recordingNotifier{}
	now := day(t, today).Add(9 * time.Hour)
	editor, err := NewEditor(EditorParams{
		Source:    source,
		Submitter: submitter,
		Confirmer: confirm,
		Notifier:  notifier,
		Logger:    zap.NewNop(),
		Now:       func() time.Time { return now },
		Location:  time.UTC,
		Anchor:    day(t, "2025-01-08"),
	})
	require.NoError(t, err)
	require.NoError(t, editor.Load(context.Background()))
	return editor, notifier
}

func TestNewEditorRequiresCollaborators(t *testing.T) {
	_, err := NewEditor(EditorParams{Submitter: &fakeSubmitter{}})
	assert.Error(t, err)
	_, err = NewEditor(EditorParams{Source: &fakeSource{}})
	assert.Error(t, err)
}

func TestEditorSaveScenario(t *testing.T) {
	source := &fakeSource{}
	submitter := &fakeSubmitter{message: "Absensi berhasil diperbarui"}
	editor, notifier := newTestEditor(t, source, submitter, "2025-01-15", nil)

	require.NoError(t, editor.BeginEdit())
	require.NoError(t, editor.Activate("2025-01-08"))
	require.NoError(t, editor.Toggle("2025-01-08", 1))

	msg, err := editor.Save(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Absensi berhasil diperbarui", msg)

	require.Len(t, submitter.batches, 1)
	assert.Equal(t, Batch{Attendances: []Operation{{
		Date:      "2025-01-08",
		Action:    ActionUpdate,
		Employees: []EmployeeAttendance{{ID: 1, Status: StatusLeave}, {ID: 2, Status: StatusPresent}},
	}}}, submitter.batches[0])
	assert.Equal(t, ModeView, editor.Mode())
	assert.Equal(t, 2, source.calls)
	assert.Equal(t, []string{"Absensi berhasil diperbarui"}, notifier.successes)
	assert.False(t, editor.Stale())
}

func TestEditorSaveValidationKeepsEditMode(t *testing.T) {
	submitter := &fakeSubmitter{}
	editor, notifier := newTestEditor(t, &fakeSource{}, submitter, "2025-01-15", nil)

	require.NoError(t, editor.BeginEdit())
	_, err := editor.Save(context.Background())

	assert.ErrorIs(t, err, ErrNothingToSave)
	assert.Equal(t, ModeEdit, editor.Mode())
	assert.Empty(t, submitter.batches)
	require.Len(t, notifier.failures, 1)
}

func TestEditorSubmitFailureKeepsStore(t *testing.T) {
	submitErr := errors.New("Periode sudah ditutup")
	submitter := &fakeSubmitter{err: submitErr}
	editor, notifier := newTestEditor(t, &fakeSource{}, submitter, "2025-01-15", nil)

	require.NoError(t, editor.BeginEdit())
	require.NoError(t, editor.Activate("2025-01-06"))

	_, err := editor.Save(context.Background())
	assert.ErrorIs(t, err, submitErr)
	assert.Equal(t, ModeEdit, editor.Mode())
	assert.False(t, editor.Saving())
	_, ok := editor.Store().Entry("2025-01-06")
	assert.True(t, ok)
	assert.Equal(t, []error{submitErr}, notifier.failures)
}

func TestEditorNavigationBlockedWhileEditing(t *testing.T) {
	editor, _ := newTestEditor(t, &fakeSource{}, &fakeSubmitter{}, "2025-02-01", nil)
	require.True(t, editor.CanGoNext())

	require.NoError(t, editor.BeginEdit())
	assert.False(t, editor.CanGoNext())
	assert.False(t, editor.CanGoPrevious())
	assert.ErrorIs(t, editor.NextWeek(context.Background()), ErrEditInProgress)
	assert.ErrorIs(t, editor.PreviousWeek(context.Background()), ErrEditInProgress)
	assert.ErrorIs(t, editor.Load(context.Background()), ErrEditInProgress)
	assert.Equal(t, "2025-01-05", editor.Window().StartKey())
}

func TestEditorNextWeekRefusesFutureWeek(t *testing.T) {
	editor, _ := newTestEditor(t, &fakeSource{}, &fakeSubmitter{}, "2025-01-09", nil)

	assert.False(t, editor.CanGoNext())
	assert.ErrorIs(t, editor.NextWeek(context.Background()), ErrFutureWeek)

	require.NoError(t, editor.PreviousWeek(context.Background()))
	assert.Equal(t, "2024-12-29", editor.Window().StartKey())
	require.NoError(t, editor.NextWeek(context.Background()))
	assert.Equal(t, "2025-01-05", editor.Window().StartKey())
}

func TestEditorCancelDiscardsEdits(t *testing.T) {
	b := baselineWith(t, map[string]map[int]Status{"2025-01-06": {1: StatusPresent, 2: StatusPresent}})
	source := &fakeSource{baselines: map[string]*Baseline{"2025-01-05": b}}
	submitter := &fakeSubmitter{}
	editor, _ := newTestEditor(t, source, submitter, "2025-01-15", nil)

	require.NoError(t, editor.BeginEdit())
	require.NoError(t, editor.Toggle("2025-01-06", 1))
	require.NoError(t, editor.Activate("2025-01-07"))
	require.NoError(t, editor.Cancel())

	assert.Equal(t, ModeView, editor.Mode())
	assert.Equal(t, []string{"2025-01-06"}, editor.Store().Dates())
	assert.Equal(t, StatusPresent, editor.Store().StatusOf("2025-01-06", 1))
	assert.Empty(t, submitter.batches)
	assert.ErrorIs(t, editor.Cancel(), ErrNotEditing)
}

func TestEditorDeactivateAsksBeforeWipingSavedDate(t *testing.T) {
	b := baselineWith(t, map[string]map[int]Status{"2025-01-06": {1: StatusPresent, 2: StatusSick}})
	source := &fakeSource{baselines: map[string]*Baseline{"2025-01-05": b}}
	answer := false
	var prompts []string
	confirm := ConfirmFunc(func(prompt string) bool {
		prompts = append(prompts, prompt)
		return answer
	})
	editor, _ := newTestEditor(t, source, &fakeSubmitter{}, "2025-01-15", confirm)
	require.NoError(t, editor.BeginEdit())

	assert.ErrorIs(t, editor.Deactivate("2025-01-06"), ErrNotConfirmed)
	entry, _ := editor.Store().Entry("2025-01-06")
	assert.False(t, entry.MarkedForDeletion())

	answer = true
	require.NoError(t, editor.Deactivate("2025-01-06"))
	entry, _ = editor.Store().Entry("2025-01-06")
	assert.True(t, entry.MarkedForDeletion())

	require.NoError(t, editor.Activate("2025-01-07"))
	require.NoError(t, editor.Deactivate("2025-01-07"))
	assert.Len(t, prompts, 2)
}

func TestEditorRejectsConcurrentSave(t *testing.T) {
	submitter := &fakeSubmitter{started: make(chan struct{}), release: make(chan struct{})}
	editor, _ := newTestEditor(t, &fakeSource{}, submitter, "2025-01-15", nil)
	require.NoError(t, editor.BeginEdit())
	require.NoError(t, editor.Activate("2025-01-08"))

	done := make(chan error, 1)
	go func() {
		_, err := editor.Save(context.Background())
		done <- err
	}()
	<-submitter.started

	assert.True(t, editor.Saving())
	_, err := editor.Save(context.Background())
	assert.ErrorIs(t, err, ErrSaveInProgress)
	assert.ErrorIs(t, editor.Toggle("2025-01-08", 1), ErrSaveInProgress)
	assert.ErrorIs(t, editor.Cancel(), ErrSaveInProgress)

	close(submitter.release)
	require.NoError(t, <-done)
	assert.Len(t, submitter.batches, 1)
	assert.Equal(t, ModeView, editor.Mode())
}

func TestEditorMarksStaleWhenRefetchFails(t *testing.T) {
	source := &fakeSource{err: errors.New("timeout"), failAfter: 1}
	editor, notifier := newTestEditor(t, source, &fakeSubmitter{}, "2025-01-15", nil)
	require.NoError(t, editor.BeginEdit())
	require.NoError(t, editor.Activate("2025-01-08"))

	msg, err := editor.Save(context.Background())
	require.NoError(t, err)
	assert.Equal(t, DefaultSuccessMessage, msg)
	assert.Equal(t, ModeView, editor.Mode())
	assert.True(t, editor.Stale())
	assert.Len(t, notifier.successes, 1)
}

func TestEditorRejectsDatesOutsideWindow(t *testing.T) {
	editor, _ := newTestEditor(t, &fakeSource{}, &fakeSubmitter{}, "2025-01-15", nil)

	assert.ErrorIs(t, editor.Activate("2025-01-08"), ErrNotEditing)
	require.NoError(t, editor.BeginEdit())
	assert.ErrorIs(t, editor.Activate("2025-01-10"), ErrDateOutsideWindow)
	assert.ErrorIs(t, editor.Toggle("2025-01-13", 1), ErrDateOutsideWindow)
}

func TestEditorLoadDuringEditKeepsSession(t *testing.T) {
	b := baselineWith(t, map[string]map[int]Status{"2025-01-06": {1: StatusPresent, 2: StatusPresent}})
	source := &fakeSource{
		baselines: map[string]*Baseline{"2025-01-05": b},
		gateCall:  2,
		started:   make(chan struct{}),
		release:   make(chan struct{}),
	}
	editor, _ := newTestEditor(t, source, &fakeSubmitter{}, "2025-01-15", nil)

	done := make(chan error, 1)
	go func() { done <- editor.Load(context.Background()) }()
	<-source.started

	require.NoError(t, editor.BeginEdit())
	require.NoError(t, editor.Activate("2025-01-08"))
	require.NoError(t, editor.Toggle("2025-01-06", 2))

	source.mu.Lock()
	source.baselines["2025-01-05"] = NewBaseline(roster)
	source.mu.Unlock()
	close(source.release)
	require.NoError(t, <-done)

	assert.Equal(t, ModeEdit, editor.Mode())
	assert.Equal(t, []string{"2025-01-06", "2025-01-08"}, editor.Store().Dates())
	assert.Equal(t, StatusLeave, editor.Store().StatusOf("2025-01-06", 2))
	assert.Same(t, b, editor.Baseline())
}
