package mapview

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"ecobot/internal/logger"
	"ecobot/internal/model"
)

var (
	// ErrAlreadyInitialized is returned by Init on a view that is initializing or ready.
	ErrAlreadyInitialized = errors.New("map view already initialized")
	// ErrDisposed is returned by every call on a disposed view.
	ErrDisposed = errors.New("map view disposed")
	// ErrMissingToken is returned when the provider requires an access token.
	ErrMissingToken = errors.New("map access token is not configured")
	// ErrInvalidFocus is returned for out of range focus coordinates.
	ErrInvalidFocus = errors.New("focus coordinates out of range")
	// ErrUnknownEvent is returned for interaction events the view does not handle.
	ErrUnknownEvent = errors.New("unknown map event")
)

// Mode selects what the view shows.
type Mode string

const (
	// ModeDetail shows a single detection with a pulsing marker.
	ModeDetail Mode = "detail"
	// ModeGlobal shows every record on a rotating globe.
	ModeGlobal Mode = "global"
)

// Camera defaults.
const (
	DetailZoom = 13
	GlobalZoom = 1.5
)

// GlobalCenter is the initial globe centre as [lng, lat].
var GlobalCenter = [2]float64{0, 20}

// State is the lifecycle state of a view.
type State int

const (
	StateUninitialized State = iota
	StateInitializing
	StateReady
	StateDisposed
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateInitializing:
		return "initializing"
	case StateReady:
		return "ready"
	case StateDisposed:
		return "disposed"
	default:
		return "unknown"
	}
}

// MapView is a map that can be focused on one detection or fed a dataset.
type MapView interface {
	Init(ctx context.Context) error
	SetFocus(lat, lng float64, level model.PlasticLevel) error
	SetDataset(records []model.DetectionRecord) error
	Dispose()
}

// Options configure a View.
type Options struct {
	Mode             Mode
	Token            string
	TileURL          string
	RotationInterval time.Duration
	RotationStep     float64
	RotationMaxZoom  float64
}

// Camera positions the map. Center is [lng, lat].
type Camera struct {
	Center [2]float64 `json:"center"`
	Zoom   float64    `json:"zoom"`
}

// Marker is the detail mode detection marker.
type Marker struct {
	Latitude  float64            `json:"latitude"`
	Longitude float64            `json:"longitude"`
	Level     model.PlasticLevel `json:"plasticLevel"`
	Color     string             `json:"color"`
	Pulse     bool               `json:"pulse"`
}

// Layer is a provider specific overlay drawn from SourceID.
type Layer struct {
	ID     string                 `json:"id"`
	Type   string                 `json:"type"`
	Source string                 `json:"source"`
	Paint  map[string]interface{} `json:"paint"`
}

// Style describes the base map of a provider.
type Style struct {
	URL         string                 `json:"url,omitempty"`
	TileURL     string                 `json:"tileUrl,omitempty"`
	Attribution string                 `json:"attribution,omitempty"`
	Token       string                 `json:"token,omitempty"`
	Projection  string                 `json:"projection"`
	MaxZoom     float64                `json:"maxZoom"`
	Fog         map[string]interface{} `json:"fog,omitempty"`
}

// Scene is the complete render state of a view.
type Scene struct {
	Provider    string          `json:"provider"`
	Mode        Mode            `json:"mode"`
	Style       Style           `json:"style"`
	Camera      Camera          `json:"camera"`
	Marker      *Marker         `json:"marker,omitempty"`
	Source      string          `json:"source"`
	Data        json.RawMessage `json:"data"`
	RecordCount int             `json:"recordCount"`
	Layers      []Layer         `json:"layers"`
	Rotation    string          `json:"rotation"`
}

// Frame types.
const (
	FrameScene   = "scene"
	FrameCamera  = "camera"
	FrameDataset = "dataset"
)

// Frame is one update pushed to the browser.
type Frame struct {
	Type   string          `json:"type"`
	Scene  *Scene          `json:"scene,omitempty"`
	Camera *Camera         `json:"camera,omitempty"`
	Marker *Marker         `json:"marker,omitempty"`
	Data   json.RawMessage `json:"data,omitempty"`
	Count  int             `json:"count,omitempty"`
}

// Sink receives frames. It is called with the view locked and must not
// call back into the view.
type Sink interface {
	Send(frame Frame) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(frame Frame) error

func (f SinkFunc) Send(frame Frame) error {
	return f(frame)
}

// Adapter renders scenes for one map provider.
type Adapter interface {
	Provider() string
	Prepare(ctx context.Context, opts Options) (Style, error)
	Layers(mode Mode) []Layer
}

// ClientEvent is an interaction reported by the browser.
type ClientEvent struct {
	Type   string      `json:"type"`
	Zoom   *float64    `json:"zoom,omitempty"`
	Center *[2]float64 `json:"center,omitempty"`
}

// View is the MapView implementation backed by the adapter chosen at
// build time.
type View struct {
	adapter Adapter
	opts    Options
	sink    Sink
	logger  *logger.Logger

	mu      sync.Mutex
	state   State
	scene   Scene
	rotator *Rotator
	cancel  context.CancelFunc
	done    chan struct{}
}

var _ MapView = (*View)(nil)

// New creates a view using the compiled-in provider.
func New(opts Options, sink Sink, logger *logger.Logger) *View {
	return NewWithAdapter(newAdapter(), opts, sink, logger)
}

// DefaultProvider names the compiled-in provider.
func DefaultProvider() string {
	return newAdapter().Provider()
}

// NewWithAdapter creates a view with an explicit adapter.
func NewWithAdapter(adapter Adapter, opts Options, sink Sink, logger *logger.Logger) *View {
	if opts.Mode == "" {
		opts.Mode = ModeDetail
	}
	if sink == nil {
		sink = SinkFunc(func(Frame) error { return nil })
	}

	v := &View{
		adapter: adapter,
		opts:    opts,
		sink:    sink,
		logger:  logger,
		scene: Scene{
			Provider: adapter.Provider(),
			Mode:     opts.Mode,
			Source:   SourceID,
			Data:     emptyCollection,
		},
	}
	if opts.Mode == ModeGlobal {
		v.scene.Camera = Camera{Center: GlobalCenter, Zoom: GlobalZoom}
	} else {
		v.scene.Camera = Camera{Zoom: DetailZoom}
	}
	return v
}

var emptyCollection = json.RawMessage(`{"type":"FeatureCollection","features":[]}`)

// Provider returns the adapter name.
func (v *View) Provider() string {
	return v.adapter.Provider()
}

func (v *View) State() State {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.state
}

// RotationState returns the idle rotation state. Detail views never rotate.
func (v *View) RotationState() RotationState {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.rotator == nil {
		return Idle
	}
	return v.rotator.State()
}

// Scene returns a copy of the current scene.
func (v *View) Scene() Scene {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.snapshot()
}

// Init prepares the provider and emits the first scene frame. In global
// mode it also starts the rotation loop, which runs until Dispose or until
// ctx is cancelled. A failed Init leaves the view uninitialized.
func (v *View) Init(ctx context.Context) error {
	v.mu.Lock()
	switch v.state {
	case StateDisposed:
		v.mu.Unlock()
		return ErrDisposed
	case StateInitializing, StateReady:
		v.mu.Unlock()
		return ErrAlreadyInitialized
	}
	v.state = StateInitializing
	v.mu.Unlock()

	style, err := v.adapter.Prepare(ctx, v.opts)

	v.mu.Lock()
	defer v.mu.Unlock()

	if v.state == StateDisposed {
		return ErrDisposed
	}
	if err != nil {
		v.state = StateUninitialized
		return err
	}

	v.scene.Style = style
	v.scene.Layers = v.adapter.Layers(v.opts.Mode)
	v.state = StateReady

	if v.opts.Mode == ModeGlobal {
		v.rotator = NewRotator(v.opts.RotationStep, v.opts.RotationMaxZoom, v.scene.Camera.Zoom)
		if v.opts.RotationInterval > 0 && v.opts.RotationStep != 0 {
			rctx, cancel := context.WithCancel(ctx)
			v.cancel = cancel
			v.done = make(chan struct{})
			go v.rotate(rctx, v.done)
		}
	}

	scene := v.snapshot()
	return v.emit(Frame{Type: FrameScene, Scene: &scene})
}

// SetFocus centres the map on a detection. Before Init the focus is kept
// for the first scene; once ready the camera is re-centred, never rebuilt.
func (v *View) SetFocus(lat, lng float64, level model.PlasticLevel) error {
	if !(model.Coordinates{Latitude: lat, Longitude: lng}).Valid() {
		return fmt.Errorf("%w: %.6f, %.6f", ErrInvalidFocus, lat, lng)
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	if v.state == StateDisposed {
		return ErrDisposed
	}

	v.scene.Camera.Center = [2]float64{lng, lat}
	if v.opts.Mode == ModeDetail {
		v.scene.Camera.Zoom = DetailZoom
		v.scene.Marker = &Marker{
			Latitude:  lat,
			Longitude: lng,
			Level:     level,
			Color:     LevelColor(level),
			Pulse:     true,
		}
	}

	if v.state != StateReady {
		return nil
	}
	camera := v.scene.Camera
	frame := Frame{Type: FrameCamera, Camera: &camera}
	if v.scene.Marker != nil {
		marker := *v.scene.Marker
		frame.Marker = &marker
	}
	return v.emit(frame)
}

// SetDataset replaces the records shown by the view.
func (v *View) SetDataset(records []model.DetectionRecord) error {
	data, err := EncodeRecords(records)
	if err != nil {
		return err
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	if v.state == StateDisposed {
		return ErrDisposed
	}

	v.scene.Data = data
	v.scene.RecordCount = len(records)

	if v.state != StateReady {
		return nil
	}
	return v.emit(Frame{Type: FrameDataset, Data: data, Count: len(records)})
}

// Handle applies a browser interaction to the camera and rotation state.
func (v *View) Handle(ev ClientEvent) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.state == StateDisposed {
		return ErrDisposed
	}

	switch ev.Type {
	case EventPointerDown:
		if v.rotator != nil {
			v.rotator.PointerDown()
		}
	case EventPointerUp, EventDragEnd, EventTouchEnd:
		if v.rotator != nil {
			v.rotator.PointerUp()
		}
	case EventZoom:
		if ev.Zoom == nil {
			return fmt.Errorf("%w: zoom event without zoom", ErrUnknownEvent)
		}
		v.scene.Camera.Zoom = *ev.Zoom
		if v.rotator != nil {
			v.rotator.SetZoom(*ev.Zoom)
		}
	case EventMoveEnd:
		if ev.Center != nil {
			v.scene.Camera.Center = [2]float64{WrapLongitude(ev.Center[0]), ev.Center[1]}
		}
		if ev.Zoom != nil {
			v.scene.Camera.Zoom = *ev.Zoom
			if v.rotator != nil {
				v.rotator.SetZoom(*ev.Zoom)
			}
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownEvent, ev.Type)
	}
	return nil
}

// Dispose stops the rotation loop and releases the view. It is safe to
// call more than once.
func (v *View) Dispose() {
	v.mu.Lock()
	if v.state == StateDisposed {
		v.mu.Unlock()
		return
	}
	v.state = StateDisposed
	cancel, done := v.cancel, v.done
	v.cancel, v.done = nil, nil
	v.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}
}

func (v *View) rotate(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(v.opts.RotationInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			v.tick()
		}
	}
}

// tick advances the globe by one rotation step.
func (v *View) tick() bool {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.state != StateReady || v.rotator == nil {
		return false
	}
	lng, moved := v.rotator.Tick(v.scene.Camera.Center[0])
	if !moved {
		return false
	}
	v.scene.Camera.Center[0] = lng

	camera := v.scene.Camera
	if err := v.emit(Frame{Type: FrameCamera, Camera: &camera}); err != nil {
		v.logger.Debug("Dropping rotation frame: %v", err)
	}
	return true
}

func (v *View) emit(frame Frame) error {
	if err := v.sink.Send(frame); err != nil {
		return fmt.Errorf("failed to send %s frame: %w", frame.Type, err)
	}
	return nil
}

func (v *View) snapshot() Scene {
	scene := v.scene
	if v.scene.Marker != nil {
		marker := *v.scene.Marker
		scene.Marker = &marker
	}
	scene.Layers = make([]Layer, len(v.scene.Layers))
	copy(scene.Layers, v.scene.Layers)
	if v.rotator != nil {
		scene.Rotation = v.rotator.State().String()
	} else {
		scene.Rotation = Idle.String()
	}
	return scene
}
