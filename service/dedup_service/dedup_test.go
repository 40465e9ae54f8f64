package dedup_service

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShouldDisplayOncePerID(t *testing.T) {
	w := NewWindow(30, time.Hour)

	assert.True(t, w.ShouldDisplay("msg-1"))
	assert.False(t, w.ShouldDisplay("msg-1"))
	assert.True(t, w.ShouldDisplay("msg-2"))
	assert.False(t, w.ShouldDisplay("msg-2"))
	assert.False(t, w.ShouldDisplay("msg-1"))
}

func TestFIFOEviction(t *testing.T) {
	w := NewWindow(30, time.Hour)

	// 插入31个不同ID，最早的ID应被淘汰并可再次展示
	for i := 0; i < 31; i++ {
		require.True(t, w.ShouldDisplay(fmt.Sprintf("msg-%d", i)))
	}
	assert.Equal(t, 30, w.Len())

	// 淘汰严格按插入顺序：msg-0 已出窗，msg-1 仍被抑制
	assert.False(t, w.ShouldDisplay("msg-1"), "次早的ID仍在窗口内")
	assert.True(t, w.ShouldDisplay("msg-0"), "最早插入的ID应已被淘汰")

	// 重录 msg-0 挤掉当前最早的 msg-1，窗口大小不变
	assert.Equal(t, 30, w.Len())
	assert.True(t, w.ShouldDisplay("msg-1"), "重录后轮到 msg-1 被淘汰")
	assert.False(t, w.ShouldDisplay("msg-30"), "最新的ID仍被抑制")
}

func TestHourlyClearBackstop(t *testing.T) {
	w := NewWindow(30, time.Hour)

	fake := time.Now()
	w.now = func() time.Time { return fake }
	w.lastClear = fake

	require.True(t, w.ShouldDisplay("msg-1"))
	require.False(t, w.ShouldDisplay("msg-1"))

	// 时间推进超过清空周期后，整窗清空，ID可再次展示
	fake = fake.Add(time.Hour + time.Minute)
	assert.True(t, w.ShouldDisplay("msg-1"))
}

func TestEmptyIDAlwaysDisplays(t *testing.T) {
	w := NewWindow(30, time.Hour)
	assert.True(t, w.ShouldDisplay(""))
	assert.True(t, w.ShouldDisplay(""))
	assert.Equal(t, 0, w.Len())
}

func TestDeriveMessageID(t *testing.T) {
	assert.Equal(t, "provider-id", DeriveMessageID("provider-id", "collapse", "sw"))
	assert.Equal(t, "collapse", DeriveMessageID("", "collapse", "sw"))

	fallback := DeriveMessageID("", "", "sw")
	assert.True(t, strings.HasPrefix(fallback, "sw:"))
}

func TestIndependentWindows(t *testing.T) {
	// worker 与前台页面各自独立的窗口互不影响
	swWindow := NewWindow(30, time.Hour)
	pageWindow := NewWindow(30, time.Hour)

	assert.True(t, swWindow.ShouldDisplay("msg-1"))
	assert.True(t, pageWindow.ShouldDisplay("msg-1"))
	assert.False(t, swWindow.ShouldDisplay("msg-1"))
	assert.False(t, pageWindow.ShouldDisplay("msg-1"))
}
