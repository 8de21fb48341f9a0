package conduit

import (
	"testing"
	"time"
)

func TestPair_RoundTripOverInproc(t *testing.T) {
	listener, err := NewPairListener("inproc://bridge-pair-test")
	if err != nil {
		t.Fatalf("listen failed: %v", err)
	}
	defer listener.Close()

	dialer, err := NewPairDialer("inproc://bridge-pair-test")
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	defer dialer.Close()

	inbox := make(chan []byte, 1)
	if err := listener.Receive(func(data []byte) { inbox <- data }); err != nil {
		t.Fatalf("receive failed: %v", err)
	}

	if err := dialer.Send([]byte("over-the-pair")); err != nil {
		t.Fatalf("send failed: %v", err)
	}

	select {
	case data := <-inbox:
		if string(data) != "over-the-pair" {
			t.Errorf("received %q, want over-the-pair", data)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for pair delivery")
	}
}

func TestPair_BadURL(t *testing.T) {
	if _, err := NewPairListener("not-a-scheme://nope"); err == nil {
		t.Fatal("expected listener error for bad URL")
	}
	if _, err := NewPairDialer("not-a-scheme://nope"); err == nil {
		t.Fatal("expected dialer error for bad URL")
	}
}

func TestPair_SecondReceiveFails(t *testing.T) {
	p, err := NewPairListener("inproc://bridge-pair-recv-test")
	if err != nil {
		t.Fatalf("listen failed: %v", err)
	}
	defer p.Close()

	if err := p.Receive(func([]byte) {}); err != nil {
		t.Fatalf("first receive failed: %v", err)
	}
	if err := p.Receive(func([]byte) {}); err == nil {
		t.Fatal("expected second receive to fail")
	}
}
