package mc

import (
	"math/big"
	"testing"
)

func TestMask(t *testing.T) {
	if got := Mask(0xFFFF, 8); got != 0xFF {
		t.Fatalf("Mask(0xFFFF, 8) = %#x, want 0xFF", got)
	}
	if got := Mask(-1, 16); got != Mask16 {
		t.Fatalf("Mask(-1, 16) = %#x, want %#x", got, Mask16)
	}
}

func TestMaskSigned(t *testing.T) {
	// 0xFF with the top of 8 bits set should sign-extend to -1.
	if got := MaskSigned(0xFF, 8); got != -1 {
		t.Fatalf("MaskSigned(0xFF, 8) = %d, want -1", got)
	}
	if got := MaskSigned(0x7F, 8); got != 0x7F {
		t.Fatalf("MaskSigned(0x7F, 8) = %d, want 127", got)
	}
}

func TestGetPow2AndGetMask(t *testing.T) {
	if GetPow2(10) != 1024 {
		t.Fatalf("GetPow2(10) = %d, want 1024", GetPow2(10))
	}
	if GetMask(10) != 1023 {
		t.Fatalf("GetMask(10) = %d, want 1023", GetMask(10))
	}
}

func TestModInverse_IsInverseMod2Pow48(t *testing.T) {
	for _, v := range []int64{1, 3, 5, 0x5DEECE66D, -1, 0x123456789} {
		odd := v | 1
		inv := ModInverse(odd, 48)
		product := Mask(odd*inv, 48)
		if product != 1 {
			t.Fatalf("ModInverse(%#x, 48) = %#x, product mod 2^48 = %#x, want 1", odd, inv, product)
		}
	}
}

func TestModInverse16_IsInverseMod2Pow16(t *testing.T) {
	for _, v := range []int64{1, 3, 5, 7, 0x5DEECE66D, -1} {
		odd := v | 1
		inv := ModInverse16(odd)
		product := Mask(odd*inv, 16)
		if product != 1 {
			t.Fatalf("ModInverse16(%#x) = %#x, product mod 2^16 = %#x, want 1", odd, inv, product)
		}
	}
}

func TestModInverse16_PanicsOnEvenInput(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("ModInverse16(2) did not panic")
		}
	}()
	ModInverse16(2)
}

func TestLCMBigInt(t *testing.T) {
	got := LCMBigInt(big.NewInt(4), big.NewInt(6))
	if got.Cmp(big.NewInt(12)) != 0 {
		t.Fatalf("LCMBigInt(4, 6) = %s, want 12", got.String())
	}
	if got := LCMBigInt(big.NewInt(0), big.NewInt(5)); got.Sign() != 0 {
		t.Fatalf("LCMBigInt(0, 5) = %s, want 0", got.String())
	}
}
