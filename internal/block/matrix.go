package block

// Mat3 is a 3x3 integer rotation matrix. Every entry of every matrix
// produced by Orientation.Matrix is in {-1,0,1} because the
// orientation group only contains multiples of 90 degrees.
type Mat3 [3][3]int

var identity3 = Mat3{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}

func mulMat3(a, b Mat3) Mat3 {
	var out Mat3
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			sum := 0
			for k := 0; k < 3; k++ {
				sum += a[i][k] * b[k][j]
			}
			out[i][j] = sum
		}
	}
	return out
}

// Apply rotates the integer vector v by the matrix.
func (m Mat3) Apply(v [3]int) [3]int {
	return [3]int{
		m[0][0]*v[0] + m[0][1]*v[1] + m[0][2]*v[2],
		m[1][0]*v[0] + m[1][1]*v[1] + m[1][2]*v[2],
		m[2][0]*v[0] + m[2][1]*v[1] + m[2][2]*v[2],
	}
}

// ApplyF rotates the float vector v by the matrix.
func (m Mat3) ApplyF(v [3]float64) [3]float64 {
	return [3]float64{
		float64(m[0][0])*v[0] + float64(m[0][1])*v[1] + float64(m[0][2])*v[2],
		float64(m[1][0])*v[0] + float64(m[1][1])*v[1] + float64(m[1][2])*v[2],
		float64(m[2][0])*v[0] + float64(m[2][1])*v[1] + float64(m[2][2])*v[2],
	}
}

// faceMatrix rotates the local +Y (up) axis onto the given face.
func faceMatrix(f Face) Mat3 {
	switch f {
	case FaceUp:
		return identity3
	case FaceDown:
		// 180 degrees about X.
		return Mat3{{1, 0, 0}, {0, -1, 0}, {0, 0, -1}}
	case FaceRight:
		// -90 degrees about Z: Y -> X.
		return Mat3{{0, 1, 0}, {-1, 0, 0}, {0, 0, 1}}
	case FaceLeft:
		// +90 degrees about Z: Y -> -X.
		return Mat3{{0, -1, 0}, {1, 0, 0}, {0, 0, 1}}
	case FaceFront:
		// +90 degrees about X: Y -> Z.
		return Mat3{{1, 0, 0}, {0, 0, -1}, {0, 1, 0}}
	case FaceBack:
		// -90 degrees about X: Y -> -Z.
		return Mat3{{1, 0, 0}, {0, 0, 1}, {0, -1, 0}}
	default:
		return identity3
	}
}

// turnMatrix rotates about the local Y axis by the given quarter turn.
func turnMatrix(t Turn) Mat3 {
	switch t {
	case Turn0:
		return identity3
	case Turn90:
		return Mat3{{0, 0, 1}, {0, 1, 0}, {-1, 0, 0}}
	case Turn180:
		return Mat3{{-1, 0, 0}, {0, 1, 0}, {0, 0, -1}}
	case Turn270:
		return Mat3{{0, 0, -1}, {0, 1, 0}, {1, 0, 0}}
	default:
		return identity3
	}
}

// Matrix returns the rotation matrix for this orientation: turn about
// the local up axis first, then align up with the face.
func (o Orientation) Matrix() Mat3 {
	return mulMat3(faceMatrix(o.Face), turnMatrix(o.Turn))
}
