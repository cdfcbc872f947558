package pvc

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/sgctrl/go-pvcam/pkg/frame"
)

// MockDriver is a pure-Go driver simulator for tests and hardware-free
// development. It models a small fleet of cameras with realistic
// parameter attributes (current/min/max/count/increment), enumerated
// binning and readout tables, speed-dependent pixel time and bit
// depth, and synthetic gradient frames.
type MockDriver struct {
	mu      sync.Mutex
	logger  *slog.Logger
	cameras []*mockCamera
	opened  map[Handle]*mockCamera
	nextH   Handle

	captureDelay time.Duration
	captureCount int
	failAfter    int
	failErr      error

	writes   map[ParamID][]int64
	captures []CaptureRecord
}

// CaptureRecord describes one synchronous capture call, for test
// assertions.
type CaptureRecord struct {
	Region  Region
	ExpTime uint32
	Mode    int32
	Frames  int
}

// MockDriverOption configures a MockDriver.
type MockDriverOption func(*MockDriver)

// WithCameras replaces the default single simulated camera with one
// camera per name, all sharing the default sensor geometry.
func WithCameras(names ...string) MockDriverOption {
	return func(m *MockDriver) {
		m.cameras = m.cameras[:0]
		for _, n := range names {
			m.cameras = append(m.cameras, newMockCamera(n, defaultSensorW, defaultSensorH))
		}
	}
}

// WithSensorSize sets the sensor geometry of all simulated cameras.
func WithSensorSize(w, h int) MockDriverOption {
	return func(m *MockDriver) {
		for _, c := range m.cameras {
			c.resize(w, h)
		}
	}
}

// WithoutParam removes a parameter from every simulated camera, so
// capability-gap paths can be exercised.
func WithoutParam(id ParamID) MockDriverOption {
	return func(m *MockDriver) {
		for _, c := range m.cameras {
			c.remove(id)
		}
	}
}

// WithCaptureDelay makes every synchronous capture block for d,
// approximating exposure plus readout.
func WithCaptureDelay(d time.Duration) MockDriverOption {
	return func(m *MockDriver) {
		m.captureDelay = d
	}
}

// WithDriverLogger sets the logger.
func WithDriverLogger(logger *slog.Logger) MockDriverOption {
	return func(m *MockDriver) {
		m.logger = logger
	}
}

const (
	defaultSensorW = 2048
	defaultSensorH = 2048

	// ATTR_ACCESS values.
	accessReadOnly  = 1
	accessReadWrite = 2
)

// NewMockDriver creates a driver simulating one camera named
// "FakeCam00" with a 2048x2048 sensor.
func NewMockDriver(opts ...MockDriverOption) *MockDriver {
	m := &MockDriver{
		logger: slog.Default(),
		opened: make(map[Handle]*mockCamera),
		writes: make(map[ParamID][]int64),
	}
	m.cameras = []*mockCamera{newMockCamera("FakeCam00", defaultSensorW, defaultSensorH)}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// FailCaptureAfter makes the n+1th and later synchronous captures fail
// with err. Zero n fails the first capture.
func (m *MockDriver) FailCaptureAfter(n int, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failAfter = n
	m.failErr = err
	m.captureCount = 0
}

// ParamWrites returns every value written to the given parameter, in
// order, across all cameras.
func (m *MockDriver) ParamWrites(id ParamID) []int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]int64, len(m.writes[id]))
	copy(out, m.writes[id])
	return out
}

// Captures returns every synchronous capture issued so far.
func (m *MockDriver) Captures() []CaptureRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]CaptureRecord, len(m.captures))
	copy(out, m.captures)
	return out
}

// ListCameras implements Driver.
func (m *MockDriver) ListCameras() ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	names := make([]string, len(m.cameras))
	for i, c := range m.cameras {
		names[i] = c.name
	}
	return names, nil
}

// Open implements Driver.
func (m *MockDriver) Open(name string) (Handle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, c := range m.cameras {
		if c.name != name {
			continue
		}
		for _, open := range m.opened {
			if open == c {
				return InvalidHandle, &DriverError{Op: "open_camera", Message: "camera already open"}
			}
		}
		h := m.nextH
		m.nextH++
		m.opened[h] = c
		m.logger.Debug("mock driver: camera opened", "name", name, "handle", h)
		return h, nil
	}
	return InvalidHandle, ErrCameraNotFound
}

// Close implements Driver.
func (m *MockDriver) Close(h Handle) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.opened[h]; !ok {
		return ErrInvalidHandle
	}
	delete(m.opened, h)
	m.logger.Debug("mock driver: camera closed", "handle", h)
	return nil
}

func (m *MockDriver) cam(h Handle) (*mockCamera, error) {
	c, ok := m.opened[h]
	if !ok {
		return nil, ErrInvalidHandle
	}
	return c, nil
}

// GetParam implements Driver.
func (m *MockDriver) GetParam(h Handle, id ParamID, attr Attr) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, err := m.cam(h)
	if err != nil {
		return 0, err
	}
	return c.get(id, attr)
}

// GetParamStr implements Driver.
func (m *MockDriver) GetParamStr(h Handle, id ParamID, attr Attr) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, err := m.cam(h)
	if err != nil {
		return "", err
	}
	s, ok := c.strings[id]
	if !ok {
		return "", &UnsupportedError{Param: id}
	}
	return s, nil
}

// SetParam implements Driver.
func (m *MockDriver) SetParam(h Handle, id ParamID, value int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, err := m.cam(h)
	if err != nil {
		return err
	}
	if err := c.set(id, value); err != nil {
		return err
	}
	m.writes[id] = append(m.writes[id], value)
	return nil
}

// CheckParam implements Driver.
func (m *MockDriver) CheckParam(h Handle, id ParamID) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, err := m.cam(h)
	if err != nil {
		return false
	}
	return c.has(id)
}

// ReadEnum implements Driver.
func (m *MockDriver) ReadEnum(h Handle, id ParamID) (map[string]int32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, err := m.cam(h)
	if err != nil {
		return nil, err
	}
	table, ok := c.enums[id]
	if !ok {
		return nil, &UnsupportedError{Param: id}
	}
	out := make(map[string]int32, len(table))
	for k, v := range table {
		out[k] = v
	}
	return out, nil
}

// ArmExposureMode implements Driver. The composed mode is split back
// into its sub-modes so subsequent parameter reads reflect it, the way
// real hardware behaves after a setup/abort cycle.
func (m *MockDriver) ArmExposureMode(h Handle, mode int32) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, err := m.cam(h)
	if err != nil {
		return err
	}
	c.armedMode = mode
	if p, ok := c.params[ParamExposureMode]; ok {
		p.cur = int64(mode &^ 0xFF)
	}
	if p, ok := c.params[ParamExposeOutMode]; ok {
		p.cur = int64(mode & 0xFF)
	}
	return nil
}

// ArmedMode returns the last mode armed on the camera, for tests.
func (m *MockDriver) ArmedMode(h Handle) int32 {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, err := m.cam(h)
	if err != nil {
		return 0
	}
	return c.armedMode
}

// GetFrame implements Driver.
func (m *MockDriver) GetFrame(h Handle, rgn Region, expTime uint32, mode int32) ([]uint16, error) {
	buf, err := m.capture(h, 1, rgn, expTime, mode)
	if err != nil {
		return nil, err
	}
	return buf, nil
}

// GetSequence implements Driver.
func (m *MockDriver) GetSequence(h Handle, frameCount uint16, rgn Region, expTime uint32, mode int32) ([]uint16, error) {
	return m.capture(h, int(frameCount), rgn, expTime, mode)
}

func (m *MockDriver) capture(h Handle, frames int, rgn Region, expTime uint32, mode int32) ([]uint16, error) {
	m.mu.Lock()
	c, err := m.cam(h)
	if err != nil {
		m.mu.Unlock()
		return nil, err
	}

	m.captureCount++
	if m.failErr != nil && m.captureCount > m.failAfter {
		err := m.failErr
		m.mu.Unlock()
		return nil, err
	}

	m.captures = append(m.captures, CaptureRecord{Region: rgn, ExpTime: expTime, Mode: mode, Frames: frames})
	if p, ok := c.params[ParamExposureTime]; ok {
		p.cur = int64(expTime)
	}
	seed := uint32(m.captureCount)
	delay := m.captureDelay
	m.mu.Unlock()

	if delay > 0 {
		time.Sleep(time.Duration(frames) * delay)
	}

	w, hgt := rgn.Size()
	if w <= 0 || hgt <= 0 {
		return nil, &DriverError{Op: "exp_setup", Message: "degenerate region"}
	}
	buf := make([]uint16, 0, frames*w*hgt)
	for n := 0; n < frames; n++ {
		buf = append(buf, synthFrame(w, hgt, seed+uint32(n))...)
	}
	return buf, nil
}

// ResetPostProcessing implements Driver.
func (m *MockDriver) ResetPostProcessing(h Handle) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, err := m.cam(h)
	if err != nil {
		return err
	}
	for i := range c.ppFeatures {
		for j := range c.ppFeatures[i].params {
			p := &c.ppFeatures[i].params[j]
			p.cur = p.def
		}
	}
	c.syncPP()
	return nil
}

// synthFrame renders the moving diagonal gradient the simulated sensor
// produces, offset by the frame counter so consecutive frames differ.
func synthFrame(w, h int, n uint32) []uint16 {
	pix := make([]uint16, w*h)
	off := int(n) * 8
	for y := 0; y < h; y++ {
		row := y * w
		for x := 0; x < w; x++ {
			pix[row+x] = uint16((x + y + off) % 4096)
		}
	}
	return pix
}

// Ensure MockDriver implements Driver.
var _ Driver = (*MockDriver)(nil)

// mockParam holds one numeric parameter with its attribute block.
type mockParam struct {
	cur, min, max int64
	def, inc      int64
	count         int64
	hasRange      bool
	readOnly      bool
}

type mockPPParam struct {
	name     string
	cur, def int64
	min, max int64
}

type mockPPFeature struct {
	name   string
	params []mockPPParam
}

type mockSpeed struct {
	pixTime  int64
	bitDepth int64
	gainMax  int64
}

// mockCamera is one simulated device with its full parameter store.
type mockCamera struct {
	name    string
	params  map[ParamID]*mockParam
	strings map[ParamID]string
	enums   map[ParamID]map[string]int32

	speeds     map[int32][]mockSpeed
	ppFeatures []mockPPFeature
	armedMode  int32
}

func newMockCamera(name string, w, h int) *mockCamera {
	c := &mockCamera{
		name:    name,
		params:  make(map[ParamID]*mockParam),
		strings: make(map[ParamID]string),
		enums:   make(map[ParamID]map[string]int32),
	}

	c.strings[ParamChipName] = "GS2048BSI"
	c.strings[ParamHeadSerNumAlpha] = "A20D203015"

	c.params[ParamSerSize] = &mockParam{cur: int64(w), readOnly: true}
	c.params[ParamParSize] = &mockParam{cur: int64(h), readOnly: true}
	c.params[ParamDDVersion] = &mockParam{cur: 5<<8 | 1<<4 | 2, readOnly: true}
	c.params[ParamCamFwVersion] = &mockParam{cur: 8<<8 | 10, readOnly: true}
	c.params[ParamBitDepth] = &mockParam{cur: 16, readOnly: true}
	c.params[ParamPixTime] = &mockParam{cur: 10, readOnly: true}
	c.params[ParamAdcOffset] = &mockParam{cur: 100, readOnly: true}
	c.params[ParamFrameCapable] = &mockParam{cur: 1, readOnly: true}
	c.params[ParamPMode] = &mockParam{cur: int64(PModeNormal), min: 0, max: 1, hasRange: true}

	c.params[ParamExposureMode] = &mockParam{cur: int64(TrigInternal), readOnly: true}
	c.params[ParamExposeOutMode] = &mockParam{cur: int64(ExposeOutFirstRow), readOnly: true}
	c.params[ParamExposureTime] = &mockParam{cur: 10, min: 0, max: 10000, hasRange: true}
	c.params[ParamExpTime] = &mockParam{cur: 0, min: 0, max: 65535, hasRange: true}
	c.params[ParamExpRes] = &mockParam{cur: 0, min: 0, max: 1, hasRange: true}
	c.params[ParamExpResIndex] = &mockParam{cur: 0, readOnly: true}

	c.params[ParamTemp] = &mockParam{cur: -1996, readOnly: true}
	c.params[ParamTempSetpoint] = &mockParam{cur: -2000, min: -8000, max: 1500, hasRange: true}

	c.params[ParamReadoutTime] = &mockParam{cur: 11240, readOnly: true}
	c.params[ParamClearingTime] = &mockParam{cur: 13000, readOnly: true}
	c.params[ParamPreTriggerDelay] = &mockParam{cur: 120, readOnly: true}
	c.params[ParamPostTriggerDelay] = &mockParam{cur: 150, readOnly: true}

	c.params[ParamClearMode] = &mockParam{cur: int64(ClearPreSequence), min: 0, max: 5, hasRange: true}
	clearing := make(map[string]int32, len(ClearModes))
	for k, v := range ClearModes {
		clearing[k] = v
	}
	c.enums[ParamClearMode] = clearing

	c.enums[ParamBinningSer] = map[string]int32{"1x1": 1, "2x2": 2, "4x4": 4}
	c.enums[ParamBinningPar] = map[string]int32{"1x1": 1, "2x2": 2, "4x4": 4}

	c.enums[ParamReadoutPort] = map[string]int32{"Sensitivity": 0, "Dynamic Range": 1}
	c.params[ParamReadoutPort] = &mockParam{cur: 0, count: 2}
	c.params[ParamSpdtabIndex] = &mockParam{cur: 0}
	c.params[ParamGainIndex] = &mockParam{cur: 1, min: 1, inc: 1, hasRange: true}
	c.speeds = map[int32][]mockSpeed{
		0: {
			{pixTime: 10, bitDepth: 16, gainMax: 3},
			{pixTime: 5, bitDepth: 12, gainMax: 2},
		},
		1: {
			{pixTime: 20, bitDepth: 16, gainMax: 1},
		},
	}
	c.syncSpeed()

	c.ppFeatures = []mockPPFeature{
		{
			name: "DENOISING",
			params: []mockPPParam{
				{name: "ENABLED", cur: 1, def: 1, min: 0, max: 1},
				{name: "STRENGTH", cur: 2, def: 2, min: 0, max: 10},
			},
		},
		{
			name: "DESPECKLE BRIGHT LOW",
			params: []mockPPParam{
				{name: "ENABLED", cur: 0, def: 0, min: 0, max: 1},
			},
		},
	}
	c.params[ParamPPIndex] = &mockParam{cur: 0, min: 0, hasRange: true}
	c.params[ParamPPParamIndex] = &mockParam{cur: 0, min: 0, hasRange: true}
	c.params[ParamPPParam] = &mockParam{}
	c.syncPP()

	return c
}

func (c *mockCamera) resize(w, h int) {
	c.params[ParamSerSize].cur = int64(w)
	c.params[ParamParSize].cur = int64(h)
}

func (c *mockCamera) remove(id ParamID) {
	delete(c.params, id)
	delete(c.strings, id)
	delete(c.enums, id)
}

func (c *mockCamera) has(id ParamID) bool {
	if _, ok := c.params[id]; ok {
		return true
	}
	if _, ok := c.strings[id]; ok {
		return true
	}
	_, ok := c.enums[id]
	return ok
}

func (c *mockCamera) get(id ParamID, attr Attr) (int64, error) {
	p, ok := c.params[id]
	if !ok {
		if table, isEnum := c.enums[id]; isEnum && attr == AttrCount {
			return int64(len(table)), nil
		}
		return 0, &UnsupportedError{Param: id}
	}

	switch attr {
	case AttrCurrent:
		return p.cur, nil
	case AttrMin:
		return p.min, nil
	case AttrMax:
		return p.max, nil
	case AttrDefault:
		return p.def, nil
	case AttrIncrement:
		if p.inc == 0 {
			return 1, nil
		}
		return p.inc, nil
	case AttrCount:
		if p.count != 0 {
			return p.count, nil
		}
		if table, isEnum := c.enums[id]; isEnum {
			return int64(len(table)), nil
		}
		return 1, nil
	case AttrAvail:
		return 1, nil
	case AttrAccess:
		if p.readOnly {
			return accessReadOnly, nil
		}
		return accessReadWrite, nil
	case AttrType:
		return int64(id >> 24), nil
	default:
		return 0, &DriverError{Op: "get_param", Param: id, Message: fmt.Sprintf("unknown attribute %d", attr)}
	}
}

func (c *mockCamera) set(id ParamID, value int64) error {
	p, ok := c.params[id]
	if !ok {
		return &UnsupportedError{Param: id}
	}
	if p.readOnly {
		return &DriverError{Op: "set_param", Param: id, Message: "parameter is read only"}
	}
	if p.hasRange && (value < p.min || value > p.max) {
		return &DriverError{Op: "set_param", Param: id,
			Message: fmt.Sprintf("value %d outside [%d, %d]", value, p.min, p.max)}
	}

	switch id {
	case ParamReadoutPort:
		if _, ok := c.speeds[int32(value)]; !ok {
			return &DriverError{Op: "set_param", Param: id, Message: "no such readout port"}
		}
		p.cur = value
		c.params[ParamSpdtabIndex].cur = 0
		c.syncSpeed()
	case ParamSpdtabIndex:
		port := int32(c.params[ParamReadoutPort].cur)
		if value < 0 || int(value) >= len(c.speeds[port]) {
			return &DriverError{Op: "set_param", Param: id, Message: "no such speed entry"}
		}
		p.cur = value
		c.syncSpeed()
	case ParamPPIndex:
		p.cur = value
		c.params[ParamPPParamIndex].cur = 0
		c.syncPP()
	case ParamPPParamIndex:
		p.cur = value
		c.syncPP()
	case ParamPPParam:
		feat := int(c.params[ParamPPIndex].cur)
		idx := int(c.params[ParamPPParamIndex].cur)
		pp := &c.ppFeatures[feat].params[idx]
		if value < pp.min || value > pp.max {
			return &DriverError{Op: "set_param", Param: id,
				Message: fmt.Sprintf("value %d outside [%d, %d]", value, pp.min, pp.max)}
		}
		pp.cur = value
		c.syncPP()
	case ParamExpRes:
		p.cur = value
		c.params[ParamExpResIndex].cur = value
	default:
		p.cur = value
	}
	return nil
}

// syncSpeed mirrors the currently selected readout port and speed into
// the dependent parameters, the way firmware does.
func (c *mockCamera) syncSpeed() {
	port := int32(c.params[ParamReadoutPort].cur)
	idx := int(c.params[ParamSpdtabIndex].cur)
	table := c.speeds[port]
	if idx >= len(table) {
		idx = 0
	}
	sp := table[idx]

	c.params[ParamPixTime].cur = sp.pixTime
	c.params[ParamBitDepth].cur = sp.bitDepth
	gain := c.params[ParamGainIndex]
	gain.max = sp.gainMax
	gain.count = sp.gainMax
	if gain.cur > gain.max {
		gain.cur = gain.max
	}
	spd := c.params[ParamSpdtabIndex]
	spd.count = int64(len(table))
	spd.max = int64(len(table) - 1)
	spd.hasRange = true
}

// syncPP mirrors the selected post-processing feature and parameter
// indices into the name and value parameters.
func (c *mockCamera) syncPP() {
	if len(c.ppFeatures) == 0 {
		return
	}
	fi := int(c.params[ParamPPIndex].cur)
	if fi >= len(c.ppFeatures) {
		fi = 0
	}
	feat := c.ppFeatures[fi]
	c.strings[ParamPPFeatName] = feat.name
	c.params[ParamPPIndex].max = int64(len(c.ppFeatures) - 1)
	c.params[ParamPPIndex].count = int64(len(c.ppFeatures))

	pi := int(c.params[ParamPPParamIndex].cur)
	if pi >= len(feat.params) {
		pi = 0
	}
	pp := feat.params[pi]
	c.strings[ParamPPParamName] = pp.name
	c.params[ParamPPParamIndex].max = int64(len(feat.params) - 1)
	c.params[ParamPPParamIndex].count = int64(len(feat.params))

	v := c.params[ParamPPParam]
	v.cur = pp.cur
	v.min = pp.min
	v.max = pp.max
}

// MockEngine is a pure-Go stream engine simulator. It produces the
// same synthetic gradient frames as MockDriver at a fixed pace, tracks
// throughput stats, and for bounded runs writes one placeholder .tif
// file per frame so directory watchers have real events to observe.
// The production engine writes actual TIFF stacks; the placeholder
// files here carry raw pixel bytes under the same naming scheme.
type MockEngine struct {
	mu     sync.Mutex
	logger *slog.Logger

	attached   string
	configured bool
	bounded    bool
	frameCount uint32
	expTime    uint32
	rgn        Region
	outputDir  string

	started    bool
	aborted    bool
	stopCh     chan struct{}
	stopClosed bool
	doneCh     chan struct{}

	framePeriod time.Duration
	frameNum    uint32
	latched     *frame.Frame
	stats       StreamStats
}

// MockEngineOption configures a MockEngine.
type MockEngineOption func(*MockEngine)

// WithFramePeriod sets the simulated sensor frame period.
func WithFramePeriod(d time.Duration) MockEngineOption {
	return func(m *MockEngine) {
		m.framePeriod = d
	}
}

// WithEngineLogger sets the logger.
func WithEngineLogger(logger *slog.Logger) MockEngineOption {
	return func(m *MockEngine) {
		m.logger = logger
	}
}

// NewMockEngine creates an unattached engine simulator.
func NewMockEngine(opts ...MockEngineOption) *MockEngine {
	m := &MockEngine{
		logger:      slog.Default(),
		framePeriod: 5 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Attach implements StreamEngine.
func (m *MockEngine) Attach(cameraName string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if cameraName == "" {
		return ErrCameraNotFound
	}
	m.attached = cameraName
	return nil
}

// ConfigureLive implements StreamEngine.
func (m *MockEngine) ConfigureLive(expTime uint32, rgn Region) error {
	return m.configure(false, 0, expTime, rgn, "")
}

// ConfigureBounded implements StreamEngine.
func (m *MockEngine) ConfigureBounded(frameCount uint32, expTime uint32, rgn Region, outputDir string) error {
	return m.configure(true, frameCount, expTime, rgn, outputDir)
}

func (m *MockEngine) configure(bounded bool, count uint32, expTime uint32, rgn Region, outDir string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.attached == "" {
		return ErrNotAttached
	}
	if m.started {
		return ErrAlreadyRunning
	}
	if w, h := rgn.Size(); w <= 0 || h <= 0 {
		return &DriverError{Op: "setup_stream", Message: "degenerate region"}
	}

	m.bounded = bounded
	m.frameCount = count
	m.expTime = expTime
	m.rgn = rgn
	m.outputDir = outDir
	m.configured = true
	return nil
}

// Start implements StreamEngine.
func (m *MockEngine) Start() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.configured {
		return ErrNotConfigured
	}
	if m.started {
		return ErrAlreadyRunning
	}

	m.started = true
	m.aborted = false
	m.stopClosed = false
	m.frameNum = 0
	m.latched = nil
	m.stats = StreamStats{}
	m.stopCh = make(chan struct{})
	m.doneCh = make(chan struct{})

	go m.run(m.bounded, m.frameCount, m.rgn, m.outputDir, m.stopCh, m.doneCh)

	m.logger.Debug("mock engine: run started",
		"camera", m.attached,
		"bounded", m.bounded,
		"frames", m.frameCount,
	)
	return nil
}

func (m *MockEngine) run(bounded bool, count uint32, rgn Region, outDir string, stopCh, doneCh chan struct{}) {
	defer close(doneCh)

	w, h := rgn.Size()
	ticker := time.NewTicker(m.framePeriod)
	defer ticker.Stop()
	start := time.Now()

	var n uint32
	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			n++
			m.mu.Lock()
			m.frameNum = n
			m.stats.AcqFramesValid++
			if el := time.Since(start).Seconds(); el > 0 {
				m.stats.AcqFPS = float64(m.stats.AcqFramesValid) / el
			}
			m.mu.Unlock()

			if bounded {
				if err := writeFrameFile(outDir, n, w, h); err != nil {
					m.logger.Warn("mock engine: frame write failed", "frame", n, "error", err)
					m.mu.Lock()
					m.stats.DiskFramesLost++
					m.mu.Unlock()
				} else {
					m.mu.Lock()
					m.stats.DiskFramesValid++
					if el := time.Since(start).Seconds(); el > 0 {
						m.stats.DiskFPS = float64(m.stats.DiskFramesValid) / el
					}
					m.mu.Unlock()
				}
				if n >= count {
					return
				}
			}
		}
	}
}

func writeFrameFile(dir string, n uint32, w, h int) error {
	pix := synthFrame(w, h, n)
	buf := make([]byte, len(pix)*2)
	for i, p := range pix {
		buf[i*2] = byte(p)
		buf[i*2+1] = byte(p >> 8)
	}
	name := filepath.Join(dir, fmt.Sprintf("frame_%06d.tif", n))
	return os.WriteFile(name, buf, 0o644)
}

// Tick implements StreamEngine. It latches the newest frame so a
// following LastFrame sees fresh data.
func (m *MockEngine) Tick() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.frameNum == 0 {
		return
	}
	w, h := m.rgn.Size()
	f := frame.New(w, h)
	copy(f.Pix, synthFrame(w, h, m.frameNum))
	f.Number = m.frameNum
	m.latched = f
}

// LastFrame implements StreamEngine.
func (m *MockEngine) LastFrame() (*frame.Frame, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.latched == nil {
		return nil, ErrNoFrame
	}
	return m.latched.Clone(), nil
}

// Stats implements StreamEngine.
func (m *MockEngine) Stats() (StreamStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.attached == "" {
		return StreamStats{}, ErrNotAttached
	}
	return m.stats, nil
}

// Active implements StreamEngine.
func (m *MockEngine) Active() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.started
}

// Abort implements StreamEngine.
func (m *MockEngine) Abort() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.started || m.stopClosed {
		return
	}
	m.aborted = true
	m.stopClosed = true
	close(m.stopCh)
}

// Join implements StreamEngine. The engine is reusable after Join: a
// new Configure and Start begin the next run.
func (m *MockEngine) Join() error {
	m.mu.Lock()
	if !m.started {
		m.mu.Unlock()
		return ErrNotConfigured
	}
	done := m.doneCh
	m.mu.Unlock()

	<-done

	m.mu.Lock()
	defer m.mu.Unlock()
	m.started = false
	m.configured = false
	if m.aborted {
		return ErrAborted
	}
	return nil
}

// Close implements StreamEngine.
func (m *MockEngine) Close() error {
	m.Abort()
	m.mu.Lock()
	if m.started {
		done := m.doneCh
		m.mu.Unlock()
		<-done
		m.mu.Lock()
		m.started = false
		m.configured = false
	}
	m.attached = ""
	m.mu.Unlock()
	return nil
}

// Ensure MockEngine implements StreamEngine.
var _ StreamEngine = (*MockEngine)(nil)
