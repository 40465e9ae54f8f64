package socket_client_service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSiteEventDataFromMap(t *testing.T) {
	c := NewClient(&Config{ServerURL: "http://localhost"})

	event, err := c.parseSiteEventData(map[string]interface{}{
		"eventId": "evt-001",
		"title":   "今晚特惠",
		"body":    "主厨推荐菜单上新",
		"link":    "/menu",
		"image":   "/images/promo.jpg",
	})
	require.NoError(t, err)
	assert.Equal(t, "evt-001", event.EventID)
	assert.Equal(t, "今晚特惠", event.Title)
	assert.Equal(t, "/menu", event.Link)
}

func TestParseSiteEventDataFromString(t *testing.T) {
	c := NewClient(&Config{ServerURL: "http://localhost"})

	event, err := c.parseSiteEventData(`{"eventId":"evt-002","title":"订座确认","body":"您的座位已确认"}`)
	require.NoError(t, err)
	assert.Equal(t, "evt-002", event.EventID)
	assert.Equal(t, "订座确认", event.Title)
}

func TestParseSiteEventDataRejectsUnsupported(t *testing.T) {
	c := NewClient(&Config{ServerURL: "http://localhost"})

	_, err := c.parseSiteEventData(nil)
	assert.Error(t, err)

	_, err = c.parseSiteEventData(12345)
	assert.Error(t, err)
}

func TestHandleSocketDataRoutesSiteEvents(t *testing.T) {
	c := NewClient(&Config{ServerURL: "http://localhost"})

	received := make(chan *SiteEventMessage, 1)
	c.OnSiteEvent = func(msg *SiteEventMessage) {
		received <- msg
	}

	c.handleSocketData([]interface{}{map[string]interface{}{
		"M": WS_SERVER_NOTIFY_PROMO,
		"C": WS_CODE_SERVER,
		"D": map[string]interface{}{
			"eventId": "evt-003",
			"title":   "周末酬宾",
			"body":    "全场八折",
		},
	}})

	select {
	case msg := <-received:
		assert.Equal(t, "promo", msg.Type)
		require.NotNil(t, msg.Data)
		assert.Equal(t, "evt-003", msg.Data.EventID)
	case <-time.After(2 * time.Second):
		t.Fatal("站点事件未被分发")
	}
}

func TestManagerHandlersSetBeforeStartReachClient(t *testing.T) {
	m := NewManager(&Config{ServerURL: "http://localhost"})

	received := make(chan *SiteEventMessage, 1)
	m.SetSiteEventHandler(func(msg *SiteEventMessage) {
		received <- msg
	})
	m.SetConnectHandler(func() {})

	require.NotNil(t, m.client)
	require.NotNil(t, m.client.OnSiteEvent)
	require.NotNil(t, m.client.OnConnect)

	// 启动前注册的处理器必须在事件到达时生效
	m.client.handleSocketData([]interface{}{map[string]interface{}{
		"M": WS_SERVER_NOTIFY_RESERVATION,
		"C": WS_CODE_SERVER,
		"D": map[string]interface{}{
			"eventId": "evt-010",
			"title":   "订座确认",
			"body":    "今晚 7 点 4 人桌",
		},
	}})

	select {
	case msg := <-received:
		assert.Equal(t, "reservation", msg.Type)
		require.NotNil(t, msg.Data)
		assert.Equal(t, "evt-010", msg.Data.EventID)
	case <-time.After(2 * time.Second):
		t.Fatal("启动前注册的处理器被丢弃")
	}
}

func TestHandleSocketDataIgnoresUnknownMethod(t *testing.T) {
	c := NewClient(&Config{ServerURL: "http://localhost"})

	c.OnSiteEvent = func(msg *SiteEventMessage) {
		t.Errorf("unexpected site event: %v", msg)
	}

	c.handleSocketData([]interface{}{map[string]interface{}{
		"M": "WS_SERVER_NOTIFY_SOMETHING_ELSE",
		"C": WS_CODE_SERVER,
	}})

	time.Sleep(100 * time.Millisecond)
}
