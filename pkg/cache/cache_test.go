package cache

import (
	"testing"
	"time"
)

func TestSetAndGet(t *testing.T) {
	c := New()
	c.Set("key1", "value1", 1*time.Second)
	val, ok := c.Get("key1")
	if !ok || val != "value1" {
		t.Fatalf("expected value1, got %v, exists=%v", val, ok)
	}
}

func TestExpiration(t *testing.T) {
	c := New()
	c.Set("key1", "value1", 100*time.Millisecond)
	time.Sleep(150 * time.Millisecond)
	_, ok := c.Get("key1")
	if ok {
		t.Fatalf("expected expired key to return false")
	}
}

func TestDelete(t *testing.T) {
	c := New()
	c.Set("key1", "value1", 1*time.Second)
	c.Delete("key1")
	_, ok := c.Get("key1")
	if ok {
		t.Fatalf("expected deleted key to return false")
	}
}

func TestInvalidate(t *testing.T) {
	c := New()
	c.Set("bookings:all", "b1", 1*time.Second)
	c.Set("bookings:status:pending", "b2", 1*time.Second)
	c.Set("emails:all", "e1", 1*time.Second)
	c.Invalidate("bookings:")
	_, ok1 := c.Get("bookings:all")
	_, ok2 := c.Get("bookings:status:pending")
	_, ok3 := c.Get("emails:all")
	if ok1 || ok2 {
		t.Fatalf("expected booking keys to be invalidated")
	}
	if !ok3 {
		t.Fatalf("expected emails:all to still exist")
	}
}
