// Package grayscott implements a Gray-Scott reaction-diffusion engine.
//
// Two chemical concentration fields, U and V, live on a periodic grid and
// evolve under
//
//	dU/dt = Du*lap(U) - U*V*V + f*(1-U)
//	dV/dt = Dv*lap(V) + U*V*V - (f+k)*V
//
// integrated with forward Euler and clamped to [0, 1] after every step:
//
//   - [Field]: dense row-major grid of concentrations
//   - [Laplacian]: 3x3 stencil operator with toroidal wrap
//   - [Engine]: field store, kinetics step, seeding and parameter updates
//   - [Preset]: named (f, k) pattern regimes
//
// # Example
//
//	eng, err := grayscott.New(grayscott.Config{Width: 200, Height: 200})
//	if err != nil {
//	    return err
//	}
//	eng.ApplyPreset(2)
//	eng.StepN(1000)
//	v, _ := eng.Field(grayscott.V)
//
// # Thread Safety
//
// Engine instances are NOT safe for concurrent use. A single caller owns the
// engine and serializes every call into it. Step may split the grid into
// row bands internally; this never changes the result.
package grayscott
