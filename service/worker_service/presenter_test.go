package worker_service

import (
	"errors"
	"testing"

	"wolf-push-service/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	androidUA = "Mozilla/5.0 (Linux; Android 14; Pixel 8) Chrome/120.0"
	iphoneUA  = "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) Safari/604.1"
	desktopUA = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) Chrome/120.0"
)

func TestBuildAndroidRules(t *testing.T) {
	p := NewPresenter(nil)
	n := p.Build(&models.NotificationMessage{Title: "Table ready", Body: "Party of 4"}, androidUA)

	assert.Equal(t, AndroidIcon, n.Icon)
	assert.Equal(t, AndroidBadge, n.Badge)
	assert.False(t, n.Silent)
	assert.False(t, n.RequireInteraction)
}

func TestBuildIOSRules(t *testing.T) {
	p := NewPresenter(nil)
	n := p.Build(&models.NotificationMessage{Title: "Table ready", Body: "Party of 4"}, iphoneUA)

	assert.Equal(t, IOSIcon, n.Icon)
	assert.Empty(t, n.Badge)
	assert.True(t, n.Silent)
	assert.False(t, n.RequireInteraction)
}

func TestBuildWebRules(t *testing.T) {
	p := NewPresenter(nil)
	n := p.Build(&models.NotificationMessage{Title: "Table ready", Body: "Party of 4"}, desktopUA)

	assert.Equal(t, WebIcon, n.Icon)
	assert.Equal(t, WebBadge, n.Badge)
	assert.True(t, n.RequireInteraction)
	assert.False(t, n.Silent)
}

func TestBuildImageValidation(t *testing.T) {
	p := NewPresenter(nil)

	cases := []struct {
		image string
		kept  bool
	}{
		{"/images/special.jpg", true},
		{"https://cdn.example.com/special.jpg", true},
		{"http://cdn.example.com/special.jpg", true},
		{"data:image/png;base64,iVBOR", true},
		{"javascript:alert(1)", false},
		{"ftp://files.example.com/x.png", false},
		{"special.jpg", false},
		{"", false},
	}

	for _, tc := range cases {
		n := p.Build(&models.NotificationMessage{Title: "x", Image: tc.image}, desktopUA)
		if tc.kept {
			assert.Equal(t, tc.image, n.Image, "image %q should be kept", tc.image)
		} else {
			assert.Empty(t, n.Image, "image %q should be dropped", tc.image)
		}
	}
}

func TestPresentNeverPropagatesFailures(t *testing.T) {
	failing := NewPresenter(func(n *DisplayNotification) error {
		return errors.New("display refused")
	})
	panicking := NewPresenter(func(n *DisplayNotification) error {
		panic("display exploded")
	})

	msg := &models.NotificationMessage{Title: "x"}

	assert.NotPanics(t, func() { failing.Present(msg, desktopUA) })
	assert.NotPanics(t, func() { panicking.Present(msg, desktopUA) })
}

func TestResolveClickFocusesMatchingWindow(t *testing.T) {
	action := ResolveClick("/menu", []string{
		"https://wolf.example/reservations",
		"https://wolf.example/menu?week=35",
	})

	require.Equal(t, "focus", action.Action)
	assert.Equal(t, "https://wolf.example/menu?week=35", action.WindowURL)
}

func TestResolveClickOpensWhenNoMatch(t *testing.T) {
	action := ResolveClick("/menu", []string{"https://wolf.example/about"})

	assert.Equal(t, "open", action.Action)
	assert.Equal(t, "/menu", action.Target)
}

func TestResolveClickDefaultsToRoot(t *testing.T) {
	action := ResolveClick("", nil)

	assert.Equal(t, "open", action.Action)
	assert.Equal(t, "/", action.Target)
}
