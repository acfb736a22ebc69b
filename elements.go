/*
 * elements.go, part of molpy
 *
 * Copyright 2024 The molpy authors
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 */

package molpy

import "strings"

// Bohr2A converts bohr to aangstroms.
const Bohr2A = 0.52917721092

//Element symbols indexed by atomic number. Enough of the periodic table
//for the basis sets these formats carry in practice.
var elementSymbol = []string{"X",
	"H", "He",
	"Li", "Be", "B", "C", "N", "O", "F", "Ne",
	"Na", "Mg", "Al", "Si", "P", "S", "Cl", "Ar",
	"K", "Ca", "Sc", "Ti", "V", "Cr", "Mn", "Fe", "Co", "Ni", "Cu", "Zn",
	"Ga", "Ge", "As", "Se", "Br", "Kr",
	"Rb", "Sr", "Y", "Zr", "Nb", "Mo", "Tc", "Ru", "Rh", "Pd", "Ag", "Cd",
	"In", "Sn", "Sb", "Te", "I", "Xe",
}

// SymbolFromCharge returns the element symbol for a nuclear charge, "X"
// for anything it does not know (ghost centers included).
func SymbolFromCharge(z float64) string {
	n := int(z + 0.5)
	if n <= 0 || n >= len(elementSymbol) {
		return "X"
	}
	return elementSymbol[n]
}

// SymbolFromLabel guesses the element from a center label like "C1" or
// "Cl03", trimming the numeric tail.
func SymbolFromLabel(label string) string {
	s := strings.TrimRight(strings.TrimSpace(label), "0123456789 ")
	if len(s) > 2 {
		s = s[:2]
	}
	return s
}

// AngMomLetter names an angular momentum: s, p, d, f...
func AngMomLetter(l int) string {
	letters := "spdfghik"
	if l < 0 || l >= len(letters) {
		return "?"
	}
	return string(letters[l])
}
