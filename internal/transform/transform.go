// Package transform wraps scalar-valued parameterized simulations with
// generic rewriting layers: a compiling wrapper that locks the parameter
// shape on a first probing call and reuses cached results, a differentiating
// wrapper built on central finite differences, and an asynchronous job
// submission with explicit wait-for-completion.
//
// Every wrapped function must satisfy the purity contract: its result may
// depend only on the parameter values, it must not mutate shared state, and
// its control flow must not branch on parameter values. Wrappers are free to
// call it repeatedly, concurrently and out of order.
package transform

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"
)

// Func is a scalar-valued parameterized simulation.
type Func func(params []float64) (float64, error)

// Transform rewrites a Func into a semantically equivalent Func.
type Transform func(Func) Func

// cacheLimit bounds the compiled result cache; the cache is dropped
// wholesale when full, mirroring a recompile on plan overflow.
const cacheLimit = 256

// Compiled is a Func with a locked parameter shape and a result cache. The
// first call traces the function once to fix the arity; later calls with a
// different number of parameters fail instead of silently retracing.
type Compiled struct {
	fn Func

	mu    sync.Mutex
	arity int // -1 until the first call
	cache map[string]float64
}

// Compile wraps fn in a Compiled. See the package comment for the purity
// contract fn must satisfy.
func Compile(fn Func) *Compiled {
	return &Compiled{fn: fn, arity: -1, cache: make(map[string]float64)}
}

// Call evaluates the compiled function. Results for previously seen
// parameter values are served from the cache.
func (c *Compiled) Call(params []float64) (float64, error) {
	c.mu.Lock()
	if c.arity >= 0 && c.arity != len(params) {
		arity := c.arity
		c.mu.Unlock()
		return 0, fmt.Errorf("transform: compiled for %d parameters, called with %d", arity, len(params))
	}
	key := cacheKey(params)
	if v, ok := c.cache[key]; ok {
		c.mu.Unlock()
		return v, nil
	}
	c.mu.Unlock()

	v, err := c.fn(params)
	if err != nil {
		return 0, err
	}

	c.mu.Lock()
	if c.arity < 0 {
		c.arity = len(params)
	}
	if len(c.cache) >= cacheLimit {
		c.cache = make(map[string]float64)
	}
	c.cache[key] = v
	c.mu.Unlock()
	return v, nil
}

// Func returns the compiled function with the plain Func signature, making
// Compile usable as a Transform.
func (c *Compiled) Func() Func {
	return c.Call
}

func cacheKey(params []float64) string {
	var b strings.Builder
	for _, p := range params {
		b.WriteString(strconv.FormatUint(math.Float64bits(p), 16))
		b.WriteByte(':')
	}
	return b.String()
}

// Job is an in-flight asynchronous evaluation.
type Job struct {
	done chan struct{}
	val  float64
	err  error
}

// Wait blocks until the evaluation completes and returns its result.
func (j *Job) Wait() (float64, error) {
	<-j.done
	return j.val, j.err
}

// Submit starts an asynchronous evaluation. The caller must Wait before
// using the result.
func (c *Compiled) Submit(params []float64) *Job {
	p := append([]float64(nil), params...)
	j := &Job{done: make(chan struct{})}
	go func() {
		j.val, j.err = c.Call(p)
		close(j.done)
	}()
	return j
}
