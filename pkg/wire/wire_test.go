package wire

import (
	"reflect"
	"testing"

	"wlproxy/pkg/fixed"
)

func TestRoundTripBasicArgs(t *testing.T) {
	w := NewMessage(42, 3)
	w.PutUint32(7)
	w.PutInt32(-5)
	w.PutFixed(fixed.FromInt32Saturating(2))
	w.PutObject(99)
	w.PutString("hello")
	w.PutArray([]byte{1, 2, 3})

	encoded, fds := w.Finish()
	if len(fds) != 0 {
		t.Fatalf("expected no fds, got %d", len(fds))
	}

	r := &Reader{}
	r.Push(encoded, nil)
	hdr, body, ok, err := r.NextMessage()
	if err != nil {
		t.Fatalf("NextMessage: %v", err)
	}
	if !ok {
		t.Fatal("expected a complete message")
	}
	if hdr.ObjectID != 42 || hdr.Opcode != 3 {
		t.Fatalf("hdr = %+v", hdr)
	}

	args := NewArgs(body)
	u, err := args.Uint32("u")
	if err != nil || u != 7 {
		t.Fatalf("Uint32 = %d, %v", u, err)
	}
	i, err := args.Int32("i")
	if err != nil || i != -5 {
		t.Fatalf("Int32 = %d, %v", i, err)
	}
	f, err := args.Fixed("f")
	if err != nil || f != fixed.FromInt32Saturating(2) {
		t.Fatalf("Fixed = %v, %v", f, err)
	}
	o, err := args.Object("o")
	if err != nil || o != 99 {
		t.Fatalf("Object = %d, %v", o, err)
	}
	s, err := args.String("s")
	if err != nil || s != "hello" {
		t.Fatalf("String = %q, %v", s, err)
	}
	arr, err := args.Array("a")
	if err != nil || !reflect.DeepEqual(arr, []byte{1, 2, 3}) {
		t.Fatalf("Array = %v, %v", arr, err)
	}
	if args.Remaining() != 0 {
		t.Fatalf("Remaining() = %d, want 0", args.Remaining())
	}
}

func TestNullableStringNull(t *testing.T) {
	w := NewMessage(1, 0)
	w.PutNullableString(nil)
	encoded, _ := w.Finish()

	r := &Reader{}
	r.Push(encoded, nil)
	_, body, ok, err := r.NextMessage()
	if err != nil || !ok {
		t.Fatalf("NextMessage: ok=%v err=%v", ok, err)
	}
	args := NewArgs(body)
	s, present, err := args.NullableString("s")
	if err != nil {
		t.Fatalf("NullableString: %v", err)
	}
	if present || s != "" {
		t.Fatalf("expected null string, got present=%v s=%q", present, s)
	}
}

func TestNonNullStringRejectsZeroLength(t *testing.T) {
	w := NewMessage(1, 0)
	w.words = append(w.words, 0) // zero-length encodes null; invalid for non-nullable
	encoded, _ := w.Finish()

	r := &Reader{}
	r.Push(encoded, nil)
	_, body, _, _ := r.NextMessage()
	_, err := NewArgs(body).String("s")
	werr, ok := err.(*Error)
	if !ok || werr.Kind != ErrNullString {
		t.Fatalf("err = %v, want NullString", err)
	}
}

func TestPartialMessageNotReady(t *testing.T) {
	r := &Reader{}
	r.Push([]byte{1, 0, 0, 0, 0, 0, 16, 0}, nil) // header says 16 bytes, only 8 buffered
	_, _, ok, err := r.NextMessage()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Fatal("expected incomplete message")
	}
}

func TestMissingArgument(t *testing.T) {
	args := NewArgs(nil)
	_, err := args.Uint32("x")
	werr, ok := err.(*Error)
	if !ok || werr.Kind != ErrMissingArgument || werr.Arg != "x" {
		t.Fatalf("err = %v", err)
	}
}

func TestFdRoundTrip(t *testing.T) {
	w := NewMessage(1, 0)
	w.PutFd(7)
	_, fds := w.Finish()
	if len(fds) != 1 || fds[0] != 7 {
		t.Fatalf("fds = %v", fds)
	}

	r := &Reader{}
	r.Push([]byte{0, 0, 0, 0, 0, 0, 8, 0}, []int{7})
	_, body, ok, err := r.NextMessage()
	if err != nil || !ok {
		t.Fatalf("NextMessage: ok=%v err=%v", ok, err)
	}
	args := NewArgs(body)
	fd, err := args.Fd("fd", r)
	if err != nil || fd != 7 {
		t.Fatalf("Fd = %d, %v", fd, err)
	}
}
