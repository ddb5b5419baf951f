//go:build cgo && netlib

package utils

/*
#cgo CFLAGS: -march=native -mavx -mavx2
#cgo LDFLAGS: -lopenblas -llapacke -lgfortran -lm -lpthread
#include <cblas.h>
#include <lapacke.h>
*/
import "C"

import (
	"fmt"

	"gonum.org/v1/gonum/blas/blas64"
	netblas "gonum.org/v1/netlib/blas/netlib"
)

// Dense blocks in fe and assembly go through blas64, built with -tags netlib
// they run on OpenBLAS
func init() {
	blas64.Use(netblas.Implementation{})
	fmt.Println("Using netlib to accelerate BLAS")
}
