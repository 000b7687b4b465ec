package attendance

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Mode is the editor state.
type Mode int

const (
	ModeView Mode = iota
	ModeEdit
)

func (m Mode) String() string {
	if m == ModeEdit {
		return "edit"
	}
	return "view"
}

var (
	ErrEditInProgress    = errors.New("selesaikan atau batalkan perubahan terlebih dahulu")
	ErrNotEditing        = errors.New("editor tidak dalam mode edit")
	ErrSaveInProgress    = errors.New("penyimpanan sedang berlangsung")
	ErrFutureWeek        = errors.New("minggu berikutnya belum dimulai")
	ErrDateOutsideWindow = errors.New("tanggal di luar minggu yang ditampilkan")
	ErrNotConfirmed      = errors.New("dibatalkan oleh pengguna")
	ErrBaselineMissing   = errors.New("data absensi belum dimuat")
)

// DefaultSuccessMessage is shown when the server acknowledges without a message.
const DefaultSuccessMessage = "Absensi berhasil disimpan"

// BaselineSource fetches the persisted attendance for a date range.
type BaselineSource interface {
	Weekly(ctx context.Context, start, end time.Time) (*Baseline, error)
}

// BatchSubmitter persists a batch and returns the server's message.
type BatchSubmitter interface {
	SubmitBatch(ctx context.Context, batch Batch) (string, error)
}

// Confirmer asks the operator before destructive steps.
type Confirmer interface {
	Confirm(prompt string) bool
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(prompt string) bool

func (f ConfirmFunc) Confirm(prompt string) bool { return f(prompt) }

// Notifier surfaces outcomes to the operator.
type Notifier interface {
	Success(message string)
	Failure(err error)
}

type nopNotifier struct{}

func (nopNotifier) Success(string) {}
func (nopNotifier) Failure(error)  {}

// EditorParams wires an Editor. Source and Submitter are required. A nil
// Confirmer approves every prompt.
type EditorParams struct {
	Source    BaselineSource
	Submitter BatchSubmitter
	Confirmer Confirmer
	Notifier  Notifier
	Logger    *zap.Logger
	Now       func() time.Time
	Location  *time.Location
	Anchor    time.Time
}

// Editor drives one weekly attendance grid through view and edit modes.
// It is safe for concurrent use; only one save may be in flight.
type Editor struct {
	mu sync.Mutex

	source    BaselineSource
	submitter BatchSubmitter
	confirmer Confirmer
	notifier  Notifier
	logger    *zap.Logger
	now       func() time.Time
	loc       *time.Location

	window   Window
	baseline *Baseline
	store    Store
	mode     Mode
	saving   bool
	stale    bool
}

// NewEditor builds an editor positioned on the week containing params.Anchor,
// or today when no anchor is given.
func NewEditor(params EditorParams) (*Editor, error) {
	if params.Source == nil {
		return nil, errors.New("attendance editor requires a baseline source")
	}
	if params.Submitter == nil {
		return nil, errors.New("attendance editor requires a batch submitter")
	}
	e := &Editor{
		source:    params.Source,
		submitter: params.Submitter,
		confirmer: params.Confirmer,
		notifier:  params.Notifier,
		logger:    params.Logger,
		now:       params.Now,
		loc:       params.Location,
	}
	if e.notifier == nil {
		e.notifier = nopNotifier{}
	}
	if e.logger == nil {
		e.logger = zap.NewNop()
	}
	if e.now == nil {
		e.now = time.Now
	}
	if e.loc == nil {
		e.loc = time.Local
	}
	anchor := params.Anchor
	if anchor.IsZero() {
		anchor = e.now()
	}
	e.window = ComputeWeek(anchor.In(e.loc))
	e.store = Reset(e.window, nil)
	return e, nil
}

// Window returns the displayed week.
func (e *Editor) Window() Window {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.window
}

// Mode returns the current mode.
func (e *Editor) Mode() Mode {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.mode
}

// Baseline returns the last fetched baseline, nil before the first load.
func (e *Editor) Baseline() *Baseline {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.baseline
}

// Store returns the edit session snapshot.
func (e *Editor) Store() Store {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.store
}

// Saving reports whether a submit is in flight.
func (e *Editor) Saving() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.saving
}

// Stale reports that the refetch after the last save failed.
func (e *Editor) Stale() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stale
}

// CanGoNext reports whether NextWeek would be accepted right now.
func (e *Editor) CanGoNext() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.mode == ModeView && CanGoNext(e.window, e.now())
}

// CanGoPrevious reports whether PreviousWeek would be accepted right now.
func (e *Editor) CanGoPrevious() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.mode == ModeView
}

// Load fetches the baseline for the displayed week. A result that arrives
// after an edit session has begun is dropped and the session is kept.
func (e *Editor) Load(ctx context.Context) error {
	e.mu.Lock()
	if e.mode == ModeEdit {
		e.mu.Unlock()
		return ErrEditInProgress
	}
	window := e.window
	e.mu.Unlock()

	baseline, err := e.source.Weekly(ctx, window.Start, window.End)
	if err != nil {
		e.logger.Warn("attendance baseline fetch failed", zap.String("start", window.StartKey()), zap.Error(err))
		e.notifier.Failure(err)
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.window.Start.Equal(window.Start) {
		// navigated away while fetching
		return nil
	}
	if e.mode == ModeEdit || e.saving {
		// an edit session started while fetching owns the store
		e.logger.Debug("attendance baseline discarded during edit", zap.String("start", window.StartKey()))
		return nil
	}
	e.baseline = baseline
	e.store = Reset(e.window, baseline)
	e.stale = false
	e.logger.Debug("attendance baseline loaded",
		zap.String("start", window.StartKey()),
		zap.Int("employees", baseline.TotalEmployees()))
	return nil
}

// NextWeek moves to the following week and loads it.
func (e *Editor) NextWeek(ctx context.Context) error {
	e.mu.Lock()
	if e.mode == ModeEdit {
		e.mu.Unlock()
		return ErrEditInProgress
	}
	if !CanGoNext(e.window, e.now()) {
		e.mu.Unlock()
		return ErrFutureWeek
	}
	e.moveTo(e.window.Next())
	e.mu.Unlock()
	return e.Load(ctx)
}

// PreviousWeek moves to the preceding week and loads it.
func (e *Editor) PreviousWeek(ctx context.Context) error {
	e.mu.Lock()
	if e.mode == ModeEdit {
		e.mu.Unlock()
		return ErrEditInProgress
	}
	e.moveTo(e.window.Previous())
	e.mu.Unlock()
	return e.Load(ctx)
}

func (e *Editor) moveTo(w Window) {
	e.window = w
	e.baseline = nil
	e.store = Reset(w, nil)
	e.logger.Debug("attendance week changed", zap.String("start", w.StartKey()))
}

// BeginEdit switches to edit mode, seeding the store from the baseline.
func (e *Editor) BeginEdit() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.mode == ModeEdit {
		return ErrEditInProgress
	}
	if e.baseline == nil {
		return ErrBaselineMissing
	}
	e.store = Reset(e.window, e.baseline)
	e.mode = ModeEdit
	e.logger.Debug("attendance edit started", zap.Int("seeded_dates", e.store.Len()))
	return nil
}

// Cancel discards the session without contacting the backend.
func (e *Editor) Cancel() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.editableLocked(); err != nil {
		return err
	}
	e.store = Reset(e.window, e.baseline)
	e.mode = ModeView
	e.logger.Debug("attendance edit cancelled")
	return nil
}

// Activate opens a date column with everyone present.
func (e *Editor) Activate(date string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.checkDateLocked(date); err != nil {
		return err
	}
	e.store = e.store.Activate(date, e.baseline.Roster)
	return nil
}

// Deactivate closes a date column. Closing a date that already has saved
// attendance asks for confirmation first.
func (e *Editor) Deactivate(date string) error {
	e.mu.Lock()
	if err := e.checkDateLocked(date); err != nil {
		e.mu.Unlock()
		return err
	}
	destructive := e.baseline.HasData(date)
	e.mu.Unlock()

	if destructive && e.confirmer != nil {
		prompt := fmt.Sprintf("Hapus semua data absensi tanggal %s?", date)
		if !e.confirmer.Confirm(prompt) {
			return ErrNotConfirmed
		}
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.checkDateLocked(date); err != nil {
		return err
	}
	e.store = e.store.Deactivate(date, e.baseline.Roster, e.baseline)
	return nil
}

// Toggle cycles one cell.
func (e *Editor) Toggle(date string, employeeID int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.checkDateLocked(date); err != nil {
		return err
	}
	e.store = e.store.Toggle(date, employeeID)
	return nil
}

// Save validates and submits the session. Validation and submit failures
// keep edit mode and the store intact. On success the baseline is refetched
// and the editor returns to view mode.
func (e *Editor) Save(ctx context.Context) (string, error) {
	e.mu.Lock()
	if err := e.editableLocked(); err != nil {
		e.mu.Unlock()
		return "", err
	}
	batch, err := BuildBatch(e.store, e.baseline.TotalEmployees())
	if err != nil {
		e.mu.Unlock()
		e.notifier.Failure(err)
		return "", err
	}
	e.saving = true
	window := e.window
	e.mu.Unlock()

	updates, deletes := batch.Counts()
	message, err := e.submitter.SubmitBatch(ctx, batch)
	if err != nil {
		e.mu.Lock()
		e.saving = false
		e.mu.Unlock()
		e.logger.Warn("attendance batch submit failed",
			zap.Int("updates", updates),
			zap.Int("deletes", deletes),
			zap.Error(err))
		e.notifier.Failure(err)
		return "", err
	}
	if message == "" {
		message = DefaultSuccessMessage
	}

	baseline, fetchErr := e.source.Weekly(ctx, window.Start, window.End)

	e.mu.Lock()
	if fetchErr != nil {
		e.stale = true
		e.logger.Warn("attendance refetch after save failed", zap.Error(fetchErr))
	} else {
		e.baseline = baseline
		e.stale = false
	}
	e.store = Reset(e.window, e.baseline)
	e.mode = ModeView
	e.saving = false
	e.mu.Unlock()

	e.logger.Info("attendance batch saved",
		zap.String("week", window.StartKey()),
		zap.Int("updates", updates),
		zap.Int("deletes", deletes))
	e.notifier.Success(message)
	return message, nil
}

func (e *Editor) editableLocked() error {
	if e.mode != ModeEdit {
		return ErrNotEditing
	}
	if e.saving {
		return ErrSaveInProgress
	}
	return nil
}

func (e *Editor) checkDateLocked(date string) error {
	if err := e.editableLocked(); err != nil {
		return err
	}
	if !e.window.Contains(date) {
		return ErrDateOutsideWindow
	}
	return nil
}
