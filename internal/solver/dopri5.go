package solver

import (
	"math"
	"math/cmplx"

	"github.com/averyparr/qpulse/internal/quantum"
)

// Dormand-Prince 5(4) coefficients.
var (
	a2 = 1.0 / 5.0
	a3 = 3.0 / 10.0
	a4 = 4.0 / 5.0
	a5 = 8.0 / 9.0

	b21 = 1.0 / 5.0
	b31 = 3.0 / 40.0
	b32 = 9.0 / 40.0
	b41 = 44.0 / 45.0
	b42 = -56.0 / 15.0
	b43 = 32.0 / 9.0
	b51 = 19372.0 / 6561.0
	b52 = -25360.0 / 2187.0
	b53 = 64448.0 / 6561.0
	b54 = -212.0 / 729.0
	b61 = 9017.0 / 3168.0
	b62 = -355.0 / 33.0
	b63 = 46732.0 / 5247.0
	b64 = 49.0 / 176.0
	b65 = -5103.0 / 18656.0

	c1 = 35.0 / 384.0
	c3 = 500.0 / 1113.0
	c4 = 125.0 / 192.0
	c5 = -2187.0 / 6784.0
	c6 = 11.0 / 84.0

	dc1 = c1 - 5179.0/57600.0
	dc3 = c3 - 7571.0/16695.0
	dc4 = c4 - 393.0/640.0
	dc5 = c5 - -92097.0/339200.0
	dc6 = c6 - 187.0/2100.0
	dc7 = -1.0 / 40.0
)

// dopri5Step advances one trial step of size dt and returns the candidate
// state together with the scaled error norm (accept when <= 1).
func dopri5Step(rhs RHS, y quantum.State, t, dt float64, atol, rtol float64) (quantum.State, float64) {
	n := len(y)

	k1 := rhs(t, y)

	x := make(quantum.State, n)
	for i := 0; i < n; i++ {
		x[i] = y[i] + complex(dt*b21, 0)*k1[i]
	}
	k2 := rhs(t+a2*dt, x)

	for i := 0; i < n; i++ {
		x[i] = y[i] + complex(dt, 0)*(complex(b31, 0)*k1[i]+complex(b32, 0)*k2[i])
	}
	k3 := rhs(t+a3*dt, x)

	for i := 0; i < n; i++ {
		x[i] = y[i] + complex(dt, 0)*(complex(b41, 0)*k1[i]+complex(b42, 0)*k2[i]+complex(b43, 0)*k3[i])
	}
	k4 := rhs(t+a4*dt, x)

	for i := 0; i < n; i++ {
		x[i] = y[i] + complex(dt, 0)*(complex(b51, 0)*k1[i]+complex(b52, 0)*k2[i]+complex(b53, 0)*k3[i]+complex(b54, 0)*k4[i])
	}
	k5 := rhs(t+a5*dt, x)

	for i := 0; i < n; i++ {
		x[i] = y[i] + complex(dt, 0)*(complex(b61, 0)*k1[i]+complex(b62, 0)*k2[i]+complex(b63, 0)*k3[i]+complex(b64, 0)*k4[i]+complex(b65, 0)*k5[i])
	}
	k6 := rhs(t+dt, x)

	yNew := make(quantum.State, n)
	for i := 0; i < n; i++ {
		yNew[i] = y[i] + complex(dt, 0)*(complex(c1, 0)*k1[i]+complex(c3, 0)*k3[i]+complex(c4, 0)*k4[i]+complex(c5, 0)*k5[i]+complex(c6, 0)*k6[i])
	}

	k7 := rhs(t+dt, yNew)

	var sum float64
	for i := 0; i < n; i++ {
		errEst := dt * cmplx.Abs(complex(dc1, 0)*k1[i]+complex(dc3, 0)*k3[i]+complex(dc4, 0)*k4[i]+complex(dc5, 0)*k5[i]+complex(dc6, 0)*k6[i]+complex(dc7, 0)*k7[i])
		scale := atol + rtol*math.Max(cmplx.Abs(y[i]), cmplx.Abs(yNew[i]))
		ratio := errEst / scale
		sum += ratio * ratio
	}
	return yNew, math.Sqrt(sum / float64(n))
}
