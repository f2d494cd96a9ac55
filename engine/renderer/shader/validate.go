package shader

import (
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/gogpu/naga"
)

// spirvMagic is the first word of every SPIR-V module.
const spirvMagic = 0x07230203

// validatePool compiles sources for ValidateAll. Workers in the pool never exit on
// their own, so one pool is created on first use and reused by every call.
var (
	validatePool     worker.DynamicWorkerPool
	validatePoolOnce sync.Once
)

func sharedPool() worker.DynamicWorkerPool {
	validatePoolOnce.Do(func() {
		validatePool = worker.NewDynamicWorkerPool(runtime.NumCPU(), 64, time.Second)
	})
	return validatePool
}

// Validate compiles WGSL to SPIR-V offline so that authoring errors surface
// before a device exists. The SPIR-V is discarded; backends compile the WGSL
// themselves.
//
// Parameters:
//   - src: the shader source to check
//
// Returns:
//   - error: the compiler error, if any
func Validate(src Source) error {
	spirv, err := naga.Compile(src.Code)
	if err != nil {
		return fmt.Errorf("shader: %s: %w", src.Name, err)
	}
	if len(spirv) < 4 {
		return fmt.Errorf("shader: %s: compiler produced %d bytes", src.Name, len(spirv))
	}
	magic := uint32(spirv[0]) | uint32(spirv[1])<<8 | uint32(spirv[2])<<16 | uint32(spirv[3])<<24
	if magic != spirvMagic {
		return fmt.Errorf("shader: %s: bad SPIR-V magic 0x%08x", src.Name, magic)
	}
	return nil
}

// ValidateAll validates the sources concurrently on a worker pool. Failures are
// joined in source order.
//
// Parameters:
//   - sources: the shader sources to check
//
// Returns:
//   - error: the joined compiler errors, or nil if every source compiled
func ValidateAll(sources ...Source) error {
	if len(sources) == 0 {
		return nil
	}
	pool := sharedPool()

	errs := make([]error, len(sources))
	var wg sync.WaitGroup
	for i, src := range sources {
		wg.Add(1)
		pool.SubmitTask(worker.Task{
			ID: i,
			Do: func() (any, error) {
				defer wg.Done()
				errs[i] = Validate(src)
				return nil, nil
			},
		})
	}
	wg.Wait()
	return errors.Join(errs...)
}
