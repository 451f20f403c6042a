package bus

import (
	"context"
	"testing"
	"time"

	"stutterclock-go/errcode"
)

var (
	statsTopic    = T("clock", "stats")
	tickTopic     = T("clock", "tick")
	positionGet   = T("clock", "position", "get")
	clockConfig   = T("config", "clock")
	monitorConfig = T("config", "monitor")
)

const waitFor = 200 * time.Millisecond

// next returns the next queued message or fails after waitFor.
func next(t *testing.T, s *Subscription) *Message {
	t.Helper()
	select {
	case m, ok := <-s.Channel():
		if !ok {
			t.Fatalf("%v: channel closed", s.Topic())
		}
		return m
	case <-time.After(waitFor):
		t.Fatalf("%v: nothing delivered", s.Topic())
	}
	return nil
}

func quiet(t *testing.T, s *Subscription) {
	t.Helper()
	select {
	case m := <-s.Channel():
		t.Fatalf("%v: unexpected %v = %v", s.Topic(), m.Topic, m.Payload)
	case <-time.After(30 * time.Millisecond):
	}
}

func TestLiveTickDelivery(t *testing.T) {
	b := NewBus(4)
	clock := b.NewConnection("clock")
	mon := b.NewConnection("monitor")
	ticks := mon.Subscribe(tickTopic)
	stats := mon.Subscribe(statsTopic)

	clock.Publish(clock.NewMessage(tickTopic, uint32(7), false))

	if m := next(t, ticks); m.Payload.(uint32) != 7 || m.Retained {
		t.Fatalf("tick = %+v", m)
	}
	quiet(t, stats)

	// Non-retained messages are not replayed.
	late := mon.Subscribe(tickTopic)
	quiet(t, late)
}

func TestRetainedStatsReachLateSubscriber(t *testing.T) {
	b := NewBus(4)
	clock := b.NewConnection("clock")
	for _, total := range []uint64{4, 8, 12} {
		clock.Publish(clock.NewMessage(statsTopic, total, true))
	}

	late := b.NewConnection("window").Subscribe(statsTopic)
	if m := next(t, late); m.Payload.(uint64) != 12 {
		t.Fatalf("retained stats = %v, want the latest (12)", m.Payload)
	}
	quiet(t, late)

	// A nil retained payload clears the topic.
	clock.Publish(clock.NewMessage(statsTopic, nil, true))
	next(t, late)
	quiet(t, b.NewConnection("later").Subscribe(statsTopic))
}

func TestConfigWildcardDelivery(t *testing.T) {
	b := NewBus(8)
	cfg := b.NewConnection("config")
	cfg.Publish(cfg.NewMessage(clockConfig, "pico", true))
	cfg.Publish(cfg.NewMessage(monitorConfig, map[string]any{"interval": 5.0}, true))
	cfg.Publish(cfg.NewMessage(T("config", "clock", "pins"), "nested", true))

	sub := b.NewConnection("monitor").Subscribe(T("config", "+"))
	got := map[string]any{}
	for i := 0; i < 2; i++ {
		m := next(t, sub)
		got[m.Topic.String()] = m.Payload
	}
	quiet(t, sub)
	if got["config/clock"] != "pico" {
		t.Fatalf("config/clock = %v", got["config/clock"])
	}
	if m, ok := got["config/monitor"].(map[string]any); !ok || m["interval"] != 5.0 {
		t.Fatalf("config/monitor = %v", got["config/monitor"])
	}

	all := b.NewConnection("debug").Subscribe(T("config", "#"))
	for i := 0; i < 3; i++ {
		next(t, all)
	}
	quiet(t, all)
}

func TestPositionRequestReply(t *testing.T) {
	b := NewBus(4)
	clock := b.NewConnection("clock")
	mon := b.NewConnection("monitor")

	reqs := clock.Subscribe(positionGet)
	go func() {
		for m := range reqs.Channel() {
			clock.Reply(m, [2]uint8{2, 1}, false)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), waitFor)
	defer cancel()
	req := mon.NewMessage(positionGet, nil, false)
	reply, err := mon.RequestWait(ctx, req)
	if err != nil {
		t.Fatal(err)
	}
	if reply.Payload.([2]uint8) != [2]uint8{2, 1} {
		t.Fatalf("reply = %v", reply.Payload)
	}
	if len(req.ReplyTo) != 3 || req.ReplyTo[0] != replyPrefix || req.ReplyTo[1] != "monitor" {
		t.Fatalf("ReplyTo = %v", req.ReplyTo)
	}
	if !reply.Topic.Matches(req.ReplyTo) {
		t.Fatalf("reply on %v, want %v", reply.Topic, req.ReplyTo)
	}

	clock.Unsubscribe(reqs)
}

func TestPositionRequestTimesOut(t *testing.T) {
	b := NewBus(4)
	mon := b.NewConnection("monitor")

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	start := time.Now()
	_, err := mon.RequestWait(ctx, mon.NewMessage(positionGet, nil, false))
	if err == nil {
		t.Fatal("no responder, yet a reply arrived")
	}
	if errcode.Of(err) != errcode.Error || time.Since(start) > time.Second {
		t.Fatalf("err = %v after %v", err, time.Since(start))
	}
	// The private reply subscription is gone once RequestWait returns.
	mon.mu.Lock()
	n := len(mon.subs)
	mon.mu.Unlock()
	if n != 0 {
		t.Fatalf("%d subscriptions left on the connection", n)
	}
}

func TestReplyWithoutReplyToIsIgnored(t *testing.T) {
	b := NewBus(4)
	c := b.NewConnection("clock")
	watch := c.Subscribe(T(replyPrefix, "#"))
	c.Reply(c.NewMessage(positionGet, nil, false), "lost", false)
	c.Reply(nil, "lost", false)
	quiet(t, watch)
}

func TestTopicMatches(t *testing.T) {
	cases := []struct {
		pattern, topic Topic
		want           bool
	}{
		{T("clock", "stats"), T("clock", "stats"), true},
		{T("clock", "stats"), T("clock", "tick"), false},
		{T("clock", "+"), T("clock", "tick"), true},
		{T("clock", "+"), T("clock"), false},
		{T("clock", "#"), T("clock"), true},
		{T("clock", "#"), T("clock", "a", "b"), true},
		{T("#"), T(), true},
		{T("config", "+", "x"), T("config", "clock", "y"), false},
		{T("a"), T("a", "b"), false},
	}
	for _, c := range cases {
		if got := c.pattern.Matches(c.topic); got != c.want {
			t.Errorf("%v.Matches(%v) = %v, want %v", c.pattern, c.topic, got, c.want)
		}
	}
}

func TestQueueDropsOldest(t *testing.T) {
	b := NewBus(2)
	c := b.NewConnection("clock")
	s := c.Subscribe(tickTopic)

	for n := uint32(1); n <= 3; n++ {
		c.Publish(c.NewMessage(tickTopic, n, false))
	}
	if a, z := next(t, s).Payload.(uint32), next(t, s).Payload.(uint32); a != 2 || z != 3 {
		t.Fatalf("queue = [%d %d], want [2 3]", a, z)
	}
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	b := NewBus(2)
	c := b.NewConnection("monitor")
	s := c.Subscribe(T("clock", "#"))
	s.Unsubscribe()

	if _, ok := <-s.Channel(); ok {
		t.Fatal("channel still open after Unsubscribe")
	}
	// A second call is a no-op, and publishing to the pruned trie is safe.
	c.Unsubscribe(s)
	c.Publish(c.NewMessage(tickTopic, uint32(1), false))
}

func TestDisconnectClosesAll(t *testing.T) {
	b := NewBus(2)
	c := b.NewConnection("window")
	subs := []*Subscription{c.Subscribe(statsTopic), c.Subscribe(T("config", "+"))}
	c.Disconnect()
	for _, s := range subs {
		if _, ok := <-s.Channel(); ok {
			t.Fatalf("subscription %v still open", s.Topic())
		}
	}
}
