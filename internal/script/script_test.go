package script

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeHost struct {
	logs   []string
	taps   []tapCall
	swipes []swipeCall
	keys   []keyCall
	pastes []string
}

type tapCall struct {
	pointerID uint64
	x, y      int32
	action    string
}

type swipeCall struct {
	pointerID  uint64
	intervalMS uint64
	points     [][2]int32
}

type keyCall struct{ name, action, metastate string }

func (h *fakeHost) Tap(pointerID uint64, x, y int32, action string) error {
	h.taps = append(h.taps, tapCall{pointerID, x, y, action})
	return nil
}

func (h *fakeHost) Swipe(pointerID uint64, intervalMS uint64, points [][2]int32) error {
	h.swipes = append(h.swipes, swipeCall{pointerID, intervalMS, points})
	return nil
}

func (h *fakeHost) SendKey(name, action, metastate string) error {
	h.keys = append(h.keys, keyCall{name, action, metastate})
	return nil
}

func (h *fakeHost) PasteText(text string) error {
	h.pastes = append(h.pastes, text)
	return nil
}

func (h *fakeHost) Log(line string) { h.logs = append(h.logs, line) }

func TestLetAndPrintLogsComputedValue(t *testing.T) {
	s, err := New("let x = 1 + 2; print(x);")
	require.Nil(t, err)

	host := &fakeHost{}
	require.Nil(t, s.Run(Env{Host: host}))

	require.Len(t, host.logs, 1)
	assert.Equal(t, "3", host.logs[0])
}

func TestSwipeMatchesExplicitSequence(t *testing.T) {
	s, err := New("swipe(0, 100, 0, 0, 100, 0);")
	require.Nil(t, err)

	host := &fakeHost{}
	require.Nil(t, s.Run(Env{Host: host}))

	require.Len(t, host.swipes, 1)
	call := host.swipes[0]
	assert.Equal(t, uint64(0), call.pointerID)
	assert.Equal(t, uint64(100), call.intervalMS)
	assert.Equal(t, [][2]int32{{0, 0}, {100, 0}}, call.points)
}

func TestSendKeyDefaultActionSendsDownThenUpWithNoneMetastate(t *testing.T) {
	s, err := New(`send_key("a", "default");`)
	require.Nil(t, err)

	host := &fakeHost{}
	require.Nil(t, s.Run(Env{Host: host}))

	require.Len(t, host.keys, 2)
	assert.Equal(t, keyCall{"a", "down", "NONE"}, host.keys[0])
	assert.Equal(t, keyCall{"a", "up", "NONE"}, host.keys[1])
}

func TestDivisionByZeroReportsSpanOfTheExpression(t *testing.T) {
	s, err := New("1/0;")
	require.Nil(t, err)

	host := &fakeHost{}
	runErr := s.Run(Env{Host: host})
	require.NotNil(t, runErr)
	assert.Contains(t, runErr.Message, "division by zero")
	assert.Equal(t, 1, runErr.Span.StartLine)
	assert.Equal(t, 1, runErr.Span.StartCol)

	rendered := runErr.String()
	assert.True(t, strings.Contains(rendered, "1/0"))
	assert.True(t, strings.Contains(rendered, "^"))
}

func TestPresetVariablesAreBoundPerInvocation(t *testing.T) {
	s, err := New("tap(0, CURSOR_X, CURSOR_Y);")
	require.Nil(t, err)

	host := &fakeHost{}
	require.Nil(t, s.Run(Env{CursorX: 42, CursorY: 7, Host: host}))

	require.Len(t, host.taps, 2) // default action: down then up
	assert.Equal(t, int32(42), host.taps[0].x)
	assert.Equal(t, int32(7), host.taps[0].y)
}

func TestUndefinedVariableIsRuntimeError(t *testing.T) {
	s, err := New("print(missing);")
	require.Nil(t, err)
	runErr := s.Run(Env{Host: &fakeHost{}})
	require.NotNil(t, runErr)
	assert.Contains(t, runErr.Message, "not defined")
}

func TestStringConcatenationAndComparison(t *testing.T) {
	s, err := New(`let a = "foo"; let b = a + "bar"; if b == "foobar" { print("yes"); } else { print("no"); }`)
	require.Nil(t, err)
	host := &fakeHost{}
	require.Nil(t, s.Run(Env{Host: host}))
	require.Len(t, host.logs, 1)
	assert.Equal(t, "yes", host.logs[0])
}

func TestWhileLoopAccumulates(t *testing.T) {
	s, err := New("let i = 0; let sum = 0; while i < 5 { sum = sum + i; i = i + 1; } print(sum);")
	require.Nil(t, err)
	host := &fakeHost{}
	require.Nil(t, s.Run(Env{Host: host}))
	require.Len(t, host.logs, 1)
	assert.Equal(t, "10", host.logs[0])
}

func TestParseErrorOnUnterminatedBlock(t *testing.T) {
	_, err := New("if true { print(1);")
	require.NotNil(t, err)
	assert.Contains(t, err.Message, "expected '}'")
}

func TestEmptyScriptIsNoop(t *testing.T) {
	s, err := New("")
	require.Nil(t, err)
	assert.True(t, s.Empty())
	assert.Nil(t, s.Run(Env{Host: &fakeHost{}}))
}

func TestTapExplicitActionSendsOnlyOneEvent(t *testing.T) {
	s, err := New(`tap(1, 10, 20, "move");`)
	require.Nil(t, err)
	host := &fakeHost{}
	require.Nil(t, s.Run(Env{Host: host}))
	require.Len(t, host.taps, 1)
	assert.Equal(t, "move", host.taps[0].action)
}

func TestPasteTextPublishesViaHost(t *testing.T) {
	s, err := New(`paste_text("hello");`)
	require.Nil(t, err)
	host := &fakeHost{}
	require.Nil(t, s.Run(Env{Host: host}))
	require.Len(t, host.pastes, 1)
	assert.Equal(t, "hello", host.pastes[0])
}

func TestSwipeRejectsOddCoordinateCount(t *testing.T) {
	s, err := New("swipe(0, 100, 0, 0, 100);")
	require.Nil(t, err)
	runErr := s.Run(Env{Host: &fakeHost{}})
	require.NotNil(t, runErr)
	assert.Contains(t, runErr.Message, "at least 6 arguments")
}
