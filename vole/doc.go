//
// Copyright (c) 2025-2026 Markku Rossi
//
// All rights reserved.
//

// Package vole implements the small-field subspace vector oblivious
// linear evaluation (VOLE) that is the base correlation of the
// SoftSpoken OT extension.
//
// The field width k is between 1 and 8 bits. The 128 bit correlation
// is split into ceil(128/k) independent VOLEs, each with 2^k leaves of
// a GGM tree. The Sender owns the trees. The Receiver holds the secret
// point p_g of each VOLE and learns every leaf except leaf p_g through
// k base OTs per VOLE.
//
// For every chunk of 128 OTs, leaf x yields the row r_x. The Sender
// computes
//
//	u_g   = ⊕_x r_x
//	v_g,b = ⊕_{x_b=1} r_x
//
// and the Receiver computes
//
//	w_g,b = ⊕_{x≠p_g} (x⊕p_g)_b r_x = v_g,b ⊕ (p_g)_b·u_g
//
// After the Sender corrects u_g to the common value c (the OT choice
// bits), the transposed rows satisfy q_i = t_i ⊕ c_i·Δ where Δ is the
// concatenation of the points p_g.
//
// The OT extension sender runs the Receiver and the OT extension
// receiver runs the Sender.
package vole
