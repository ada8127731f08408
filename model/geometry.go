package model

// Matrix maps a PDF transformation matrix [a b c d e f],
// representing the 3x3 matrix
//
//	a b 0
//	c d 0
//	e f 1
//
// which acts on row vectors (x y 1).
type Matrix [6]Fl

// Identity is the neutral transformation.
var Identity = Matrix{1, 0, 0, 1, 0, 0}

// Translation returns the matrix translating by (tx, ty).
func Translation(tx, ty Fl) Matrix {
	return Matrix{1, 0, 0, 1, tx, ty}
}

// Scaling returns the matrix scaling by (sx, sy).
func Scaling(sx, sy Fl) Matrix {
	return Matrix{sx, 0, 0, sy, 0, 0}
}

// Mul returns the product m x n, the transformation
// applying m first, then n.
func (m Matrix) Mul(n Matrix) Matrix {
	return Matrix{
		m[0]*n[0] + m[1]*n[2],
		m[0]*n[1] + m[1]*n[3],
		m[2]*n[0] + m[3]*n[2],
		m[2]*n[1] + m[3]*n[3],
		m[4]*n[0] + m[5]*n[2] + n[4],
		m[4]*n[1] + m[5]*n[3] + n[5],
	}
}

// Apply transforms the point (x, y).
func (m Matrix) Apply(x, y Fl) (Fl, Fl) {
	return m[0]*x + m[2]*y + m[4], m[1]*x + m[3]*y + m[5]
}

// Shift translates the matrix origin by (tx, ty) expressed
// in the coordinate space of the matrix, as done by the Td operator.
func (m Matrix) Shift(tx, ty Fl) Matrix {
	return Translation(tx, ty).Mul(m)
}
