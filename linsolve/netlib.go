//go:build cgo && netlib

package linsolve

/*
#cgo LDFLAGS: -lopenblas -lgfortran -lm -lpthread
#include <cblas.h>
*/
import "C"

import (
	"gonum.org/v1/gonum/blas/blas64"
	netblas "gonum.org/v1/netlib/blas/netlib"
)

// Route the dense LU through OpenBLAS
func init() {
	blas64.Use(netblas.Implementation{})
}
