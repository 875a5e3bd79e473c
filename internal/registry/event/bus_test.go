package event

import (
	"context"
	"testing"
	"time"
)

func testEvent(seq uint64) Event {
	evt, err := NewAssetCreated(fixedTimestamp(), AssetCreatedPayload{
		AssetAddress: "paper-1",
		AssetType:    AssetTypePaper,
		Creator:      "alice",
	})
	if err != nil {
		panic(err)
	}
	evt.Seq = seq
	return evt
}

func TestBusDeliversToAllSubscribers(t *testing.T) {
	bus := NewBus()
	defer bus.Close()

	first, cancelFirst := bus.Subscribe(context.Background())
	defer cancelFirst()
	second, cancelSecond := bus.Subscribe(context.Background())
	defer cancelSecond()

	bus.Publish(testEvent(1))

	for name, ch := range map[string]<-chan Event{"first": first, "second": second} {
		select {
		case evt := <-ch:
			if evt.Seq != 1 {
				t.Fatalf("%s subscriber: expected seq 1, got %d", name, evt.Seq)
			}
		case <-time.After(time.Second):
			t.Fatalf("%s subscriber: timed out waiting for event", name)
		}
	}
}

func TestBusCancelStopsDelivery(t *testing.T) {
	bus := NewBus()
	defer bus.Close()

	ch, cancel := bus.Subscribe(context.Background())
	cancel()

	if _, open := <-ch; open {
		t.Fatal("expected channel closed after cancel")
	}
	// Publishing after cancel must not panic on the closed channel.
	bus.Publish(testEvent(2))
}

func TestBusContextCancelClosesChannel(t *testing.T) {
	bus := NewBus()
	defer bus.Close()

	ctx, cancel := context.WithCancel(context.Background())
	ch, _ := bus.Subscribe(ctx)
	cancel()

	select {
	case _, open := <-ch:
		if open {
			t.Fatal("expected closed channel, got event")
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for channel close")
	}
}

func TestBusDropsWhenSubscriberFull(t *testing.T) {
	bus := NewBus()
	defer bus.Close()

	ch, cancel := bus.Subscribe(context.Background())
	defer cancel()

	for seq := uint64(1); seq <= subscriberBuffer+10; seq++ {
		bus.Publish(testEvent(seq))
	}

	received := 0
	for {
		select {
		case <-ch:
			received++
		default:
			if received != subscriberBuffer {
				t.Fatalf("expected %d buffered events, got %d", subscriberBuffer, received)
			}
			return
		}
	}
}

func TestBusSubscribeAfterClose(t *testing.T) {
	bus := NewBus()
	bus.Close()

	ch, cancel := bus.Subscribe(context.Background())
	defer cancel()
	if _, open := <-ch; open {
		t.Fatal("expected closed channel from closed bus")
	}
}
