package ledger

import (
	"testing"
)

func TestBroadcasterDeliversToSubscribers(t *testing.T) {
	b := NewBroadcaster()
	a := b.Subscribe()
	c := b.Subscribe()

	b.Publish(Entry{TenantID: "loc-1", Status: StatusSuccess})

	for name, ch := range map[string]chan Entry{"first": a, "second": c} {
		select {
		case got := <-ch:
			if got.TenantID != "loc-1" {
				t.Errorf("%s subscriber: got tenant %q, want loc-1", name, got.TenantID)
			}
		default:
			t.Errorf("%s subscriber received nothing", name)
		}
	}
}

func TestBroadcasterSkipsFullSubscriber(t *testing.T) {
	b := NewBroadcaster()
	slow := b.Subscribe()
	fast := b.Subscribe()

	// Fill the slow subscriber's buffer, then drain fast only.
	for i := 0; i < 20; i++ {
		b.Publish(Entry{Status: StatusSuccess})
		for {
			select {
			case <-fast:
				continue
			default:
			}
			break
		}
	}

	// The publish loop must never have blocked; slow holds at most its
	// buffer worth of entries.
	if n := len(slow); n > 16 {
		t.Errorf("slow subscriber holds %d entries, want at most 16", n)
	}
}

func TestBroadcasterUnsubscribeClosesChannel(t *testing.T) {
	b := NewBroadcaster()
	ch := b.Subscribe()
	b.Unsubscribe(ch)

	if _, ok := <-ch; ok {
		t.Error("channel still open after unsubscribe")
	}

	// Publishing after unsubscribe must not panic on the closed channel.
	b.Publish(Entry{Status: StatusError})
}
