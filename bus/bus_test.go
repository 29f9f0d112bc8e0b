package bus

import (
	"testing"

	"github.com/mjholtkamp/c64core/cart"
)

type fakeDevice struct {
	reg [256]uint8
	err error
}

func (f *fakeDevice) Read(addr uint16) uint8    { return f.reg[addr&0xFF] }
func (f *fakeDevice) Write(addr uint16, v uint8) { f.reg[addr&0xFF] = v }
func (f *fakeDevice) PowerOn()                  {}
func (f *fakeDevice) LastError() error {
	e := f.err
	f.err = nil
	return e
}

func newTestBus(t *testing.T) *Bus {
	t.Helper()
	b, err := New(&Def{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return b
}

func TestPowerOnSeedsDefaultProcessorPort(t *testing.T) {
	basic := make([]uint8, 8192)
	basic[0] = 0xAA
	kernal := make([]uint8, 8192)
	kernal[0] = 0xBB
	char := make([]uint8, 4096)
	char[0] = 0xCC
	b, err := New(&Def{BasicROM: basic, KernalROM: kernal, CharROM: char})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	b.PowerOn()

	if got := b.Read(0x0001); got != 0x37 {
		t.Errorf("Read(0x0001) after PowerOn = %#x, want 0x37 (default LORAM/HIRAM/CHAREN all set)", got)
	}
	if got := b.Read(0x0000); got != 0x2F {
		t.Errorf("Read(0x0000) after PowerOn = %#x, want 0x2F (default DDR)", got)
	}
	if got := b.Read(0xA000); got != 0xAA {
		t.Errorf("Read(0xA000) = %#x, want 0xAA (BASIC ROM visible by default)", got)
	}
	if got := b.Read(0xE000); got != 0xBB {
		t.Errorf("Read(0xE000) = %#x, want 0xBB (KERNAL ROM visible by default)", got)
	}
	// Default CHAREN=1 routes $D000 to the I/O window, not CHAR ROM;
	// clearing it switches $D000 over to CHAR ROM.
	b.Write(0x0001, 0x37&^charenBit)
	if got := b.Read(0xD000); got != 0xCC {
		t.Errorf("Read(0xD000) with CHAREN cleared = %#x, want 0xCC (CHAR ROM)", got)
	}
}

func TestRAMReadWrite(t *testing.T) {
	b := newTestBus(t)
	b.Write(0x0300, 0x42)
	if got := b.Read(0x0300); got != 0x42 {
		t.Errorf("Read(0x0300) = %#x, want 0x42", got)
	}
}

func TestBasicROMShadowAndUnderlyingWrite(t *testing.T) {
	basic := make([]uint8, 8192)
	basic[0] = 0xAA
	b, err := New(&Def{BasicROM: basic})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	// A fresh Bus has not been powered on, so $0001 is still 0; force HIRAM=1, LORAM=1, CHAREN=1.
	b.Write(0x0001, 0x07)

	if got := b.Read(0xA000); got != 0xAA {
		t.Errorf("Read(0xA000) = %#x, want 0xAA (BASIC ROM)", got)
	}

	// Underlying RAM write is visible once HIRAM drops and ROM banks out.
	b.Write(0xA000, 0x55)
	b.Write(0x0001, 0x07&^hiramBit)
	if got := b.Read(0xA000); got != 0x55 {
		t.Errorf("Read(0xA000) after HIRAM=0 = %#x, want 0x55", got)
	}
}

func TestIODispatch(t *testing.T) {
	vic := &fakeDevice{}
	b, err := New(&Def{VIC: vic})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	b.Write(0x0001, 0x07) // CHAREN=1 routes $D000 to I/O.
	b.Write(0xD000, 0x11)
	if vic.reg[0] != 0x11 {
		t.Errorf("vic.reg[0] = %#x, want 0x11", vic.reg[0])
	}
	if got := b.Read(0xD000); got != 0x11 {
		t.Errorf("Read(0xD000) = %#x, want 0x11", got)
	}
}

func TestIODeviceErrorSurfaces(t *testing.T) {
	vic := &fakeDevice{}
	b, err := New(&Def{VIC: vic})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	b.Write(0x0001, 0x07)
	vic.err = errTest{}
	b.Write(0xD000, 0x00)
	if b.Err() == nil {
		t.Error("Err() = nil, want non-nil after device latched an error")
	}
	if b.Err() != nil {
		t.Error("Err() should clear on read")
	}
}

type errTest struct{}

func (errTest) Error() string { return "fake device failure" }

func TestCharROMVisibleWhenCharenClear(t *testing.T) {
	char := make([]uint8, 4096)
	char[0] = 0x33
	b, err := New(&Def{CharROM: char})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	b.Write(0x0001, 0x03) // CHAREN=0.
	if got := b.Read(0xD000); got != 0x33 {
		t.Errorf("Read(0xD000) = %#x, want 0x33 (CHAR ROM)", got)
	}
}

func TestCartridgeROMLOverridesRAM(t *testing.T) {
	img := make([]uint8, 8192)
	copy(img[4:9], []uint8{0xC3, 0xC2, 0xCD, 0x38, 0x30})
	img[0] = 0x9A
	c, err := cart.LoadBin(img)
	if err != nil {
		t.Fatalf("LoadBin: %v", err)
	}
	b, err := New(&Def{Cart: c})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if got := b.Read(0x8000); got != 0x9A {
		t.Errorf("Read(0x8000) = %#x, want 0x9A (cartridge ROML)", got)
	}
}

func TestReadWordCrossesPageNormally(t *testing.T) {
	b := newTestBus(t)
	b.Write(0x10FF, 0x34)
	b.Write(0x1100, 0x12)
	if got := b.ReadWord(0x10FF); got != 0x1234 {
		t.Errorf("ReadWord(0x10FF) = %#x, want 0x1234", got)
	}
}
