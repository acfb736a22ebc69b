/*
 * doc.go, part of molpy
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

/*
Package molpy handles quantum-chemical wavefunction data: molecular
orbitals, basis-set metadata and symmetry information, as produced by
Molcas-family programs.

The root package holds the shared data model (Wavefunction, OrbitalSet,
BasisSet) and the numerical operations over it (natural orbitals, initial
guesses, Mulliken populations, symmetry handling). File formats live in
their own subpackages (h5orb, inporb, molden, fchk), each exposing a codec
over the shared model. Package pipeline sequences loading, transformation,
export and printing for the penny command.

Coefficient matrices are stored basis functions by orbitals, one column per
molecular orbital. When a wavefunction carries native symmetry, coefficient
matrices are block diagonal over the NBas block sizes and every orbital is
tagged with the index of the symmetry block it belongs to.
*/
package molpy
