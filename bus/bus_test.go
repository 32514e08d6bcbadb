package bus

import (
	"testing"
)

func recv(t *testing.T, s *Subscription) *Message {
	t.Helper()
	select {
	case m := <-s.Channel():
		return m
	default:
		t.Fatal("no message queued")
		return nil
	}
}

func TestPublishSubscribe(t *testing.T) {
	b := New(4)
	sub := b.Subscribe(T("airnode", "co2"))

	b.Publish(T("airnode", "co2"), 600, false)
	m := recv(t, sub)
	if m.Payload.(int) != 600 {
		t.Fatalf("payload = %v", m.Payload)
	}

	// A different topic does not reach this subscriber.
	b.Publish(T("airnode", "ir"), "x", false)
	select {
	case m := <-sub.Channel():
		t.Fatalf("unexpected message %v", m)
	default:
	}
}

func TestTopicString(t *testing.T) {
	if got := T("airnode", "co2").String(); got != "airnode/co2" {
		t.Fatalf("string = %q", got)
	}
	if !T("a", "b").Equal(T("a", "b")) || T("a").Equal(T("a", "b")) {
		t.Fatal("topic equality broken")
	}
}

func TestRetainedReplay(t *testing.T) {
	b := New(4)
	b.Publish(T("airnode", "co2"), 600, true)

	sub := b.Subscribe(T("airnode", "co2"))
	m := recv(t, sub)
	if !m.Retained || m.Payload.(int) != 600 {
		t.Fatalf("retained replay = %+v", m)
	}

	// A nil retained payload clears the stored message.
	b.Publish(T("airnode", "co2"), nil, true)
	late := b.Subscribe(T("airnode", "co2"))
	select {
	case m := <-late.Channel():
		t.Fatalf("replayed a cleared message: %+v", m)
	default:
	}
}

func TestUnretainedToNobodyIsDropped(t *testing.T) {
	b := New(4)
	b.Publish(T("nobody", "home"), 1, false)
	// The trie must not grow nodes for it.
	sub := b.Subscribe(T("nobody", "home"))
	select {
	case m := <-sub.Channel():
		t.Fatalf("unexpected message %+v", m)
	default:
	}
}

func TestSlowSubscriberLosesOldest(t *testing.T) {
	b := New(2)
	sub := b.Subscribe(T("t"))

	b.Publish(T("t"), 1, false)
	b.Publish(T("t"), 2, false)
	b.Publish(T("t"), 3, false) // evicts 1

	if m := recv(t, sub); m.Payload.(int) != 2 {
		t.Fatalf("first = %v, want 2", m.Payload)
	}
	if m := recv(t, sub); m.Payload.(int) != 3 {
		t.Fatalf("second = %v, want 3", m.Payload)
	}
}

func TestUnsubscribePrunes(t *testing.T) {
	b := New(2)
	sub := b.Subscribe(T("a", "b", "c"))
	sub.Unsubscribe()

	if _, ok := <-sub.Channel(); ok {
		t.Fatal("channel not closed")
	}
	if len(b.root.children) != 0 {
		t.Fatal("trie not pruned after last unsubscribe")
	}

	// A second unsubscribe is a no-op.
	sub.Unsubscribe()
}

func TestRetainedNodeSurvivesPrune(t *testing.T) {
	b := New(2)
	b.Publish(T("a", "b"), 7, true)
	sub := b.Subscribe(T("a", "b"))
	recv(t, sub)
	sub.Unsubscribe()

	// The retained message keeps the node alive for the next subscriber.
	again := b.Subscribe(T("a", "b"))
	if m := recv(t, again); m.Payload.(int) != 7 {
		t.Fatalf("retained lost: %+v", m)
	}
}
