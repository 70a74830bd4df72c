//
// transpose.go
//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package ot

// transpose64 transposes the 64x64 bit matrix a in place so that bit
// j of a[i] becomes bit i of a[j].
func transpose64(a *[64]uint64) {
	j := 32
	m := uint64(0x00000000ffffffff)
	for j != 0 {
		for k := 0; k < 64; k = (k + j + 1) &^ j {
			t := (a[k]>>j ^ a[k+j]) & m
			a[k+j] ^= t
			a[k] ^= t << j
		}
		j >>= 1
		m ^= m << j
	}
}

// Transpose128 transposes the 128x128 bit matrix m in place so that
// bit j of m[i] becomes bit i of m[j].
func Transpose128(m *[128]Block) {
	var a, b, c, d [64]uint64

	for i := 0; i < 64; i++ {
		a[i] = m[i].D1
		b[i] = m[i].D0
		c[i] = m[64+i].D1
		d[i] = m[64+i].D0
	}
	transpose64(&a)
	transpose64(&b)
	transpose64(&c)
	transpose64(&d)

	for i := 0; i < 64; i++ {
		m[i].D1 = a[i]
		m[i].D0 = c[i]
		m[64+i].D1 = b[i]
		m[64+i].D0 = d[i]
	}
}
