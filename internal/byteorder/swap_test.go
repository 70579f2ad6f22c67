package byteorder

import "testing"

func TestSwap2(t *testing.T) {
	b := []byte{0x01, 0x02, 0x03, 0x04, 0x05}
	Swap2(b)
	want := []byte{0x02, 0x01, 0x04, 0x03, 0x05}
	if string(b) != string(want) {
		t.Fatalf("Swap2 = %v, want %v", b, want)
	}
}

func TestSwap4(t *testing.T) {
	b := []byte{0x01, 0x02, 0x03, 0x04, 0x05}
	Swap4(b)
	want := []byte{0x04, 0x03, 0x02, 0x01, 0x05}
	if string(b) != string(want) {
		t.Fatalf("Swap4 = %v, want %v", b, want)
	}
}

func TestSwap8(t *testing.T) {
	b := []byte{1, 2, 3, 4, 5, 6, 7, 8, 9}
	Swap8(b)
	want := []byte{8, 7, 6, 5, 4, 3, 2, 1, 9}
	if string(b) != string(want) {
		t.Fatalf("Swap8 = %v, want %v", b, want)
	}
}

func TestHostIsSwapped(t *testing.T) {
	// Just exercise the call; result is platform-dependent.
	_ = HostIsSwapped()
}
